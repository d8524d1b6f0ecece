package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"dancereg/cmd/middleware"
	"dancereg/internal/service"
)

type Routers struct {
	Service service.Service
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/v1")
	apiGroup.Use(middleware.Identity())

	apiGroup.POST("/events", r.Service.CreateEvent)
	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.PUT("/events/:id/coordinates", r.Service.UpdateCoordinates)

	apiGroup.POST("/events/:id/applications", r.Service.SubmitApplication)
	apiGroup.GET("/events/:id/applications", r.Service.ListEventApplications)
	apiGroup.GET("/applications", r.Service.ListMyApplications)
	apiGroup.PATCH("/applications/:id/status", r.Service.SetApplicationStatus)
	apiGroup.PATCH("/applications/:id/payment", r.Service.SetPaymentStatus)

	apiGroup.POST("/events/:id/costs", r.Service.AddCost)
	apiGroup.DELETE("/costs/:id", r.Service.RemoveCost)
	apiGroup.GET("/events/:id/dashboard", r.Service.Dashboard)

	return app
}
