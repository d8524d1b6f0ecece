package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wb-go/wbf/ginext"

	"dancereg/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound        = "EVENT_NOT_FOUND"
	UserNotFound         = "USER_NOT_FOUND"
	ApplicationNotFound  = "APPLICATION_NOT_FOUND"
	CostNotFound         = "COST_NOT_FOUND"
	ApplicationDuplicate = "APPLICATION_DUPLICATE"
	NotOrganizer         = "NOT_ORGANIZER"
	Unauthorized         = "UNAUTHORIZED"
)

type CreateEventRequest struct {
	Name           string            `json:"name" validate:"required,min=3,max=255"`
	Description    string            `json:"description"`
	Location       string            `json:"location"`
	StartTime      time.Time         `json:"start_time" validate:"required"`
	EndTime        time.Time         `json:"end_time"`
	Capacity       int               `json:"capacity" validate:"gt=0"`
	MaleCapacity   int               `json:"male_capacity" validate:"gte=0"`
	FemaleCapacity int               `json:"female_capacity" validate:"gte=0"`
	IsPublished    bool              `json:"is_published"`
	Prices         *model.PriceTable `json:"prices"`
}

type UpdateCoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// SubmitApplicationRequest carries the optional pricing selection. The
// total price is client-computed and stored verbatim.
type SubmitApplicationRequest struct {
	PricingOption *string          `json:"pricing_option" validate:"omitempty,pricing_option"`
	NumberOfDays  *int             `json:"number_of_days" validate:"omitempty,gte=1"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=applied accepted waitlisted rejected cancelled"`
}

type UpdatePaymentStatusRequest struct {
	PaymentDone *bool `json:"payment_done" validate:"required"`
}

type AddCostRequest struct {
	Category    string           `json:"category" validate:"required,min=1,max=64"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount" validate:"required,nonnegative"`
	Date        *time.Time       `json:"date"`
}

// ApplicationMessage is the lifecycle message published on the bus for
// every submit and every status/payment change.
type ApplicationMessage struct {
	ApplicationID int64     `json:"application_id"`
	EventID       int64     `json:"event_id"`
	Kind          string    `json:"kind"`
	Detail        string    `json:"detail,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const (
	MessageSubmitted      = "submitted"
	MessageStatusChanged  = "status_changed"
	MessagePaymentChanged = "payment_changed"
)

type EventResponse struct {
	ID             int64            `json:"id"`
	OrganizerID    int64            `json:"organizer_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Location       string           `json:"location"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	Capacity       int              `json:"capacity"`
	MaleCapacity   int              `json:"male_capacity"`
	FemaleCapacity int              `json:"female_capacity"`
	IsPublished    bool             `json:"is_published"`
	Prices         model.PriceTable `json:"prices"`
	AcceptedCount  int              `json:"accepted_count"`
	CreatedAt      time.Time        `json:"created_at"`
}

type DashboardResponse struct {
	TotalCosts                decimal.Decimal            `json:"total_costs"`
	CostsByCategory           map[string]decimal.Decimal `json:"costs_by_category"`
	ConfirmedRevenue          decimal.Decimal            `json:"confirmed_revenue"`
	TheoreticalRevenue        decimal.Decimal            `json:"theoretical_revenue"`
	PendingRevenue            decimal.Decimal            `json:"pending_revenue"`
	NetProfitConfirmed        decimal.Decimal            `json:"net_profit_confirmed"`
	NetProfitTheoretical      decimal.Decimal            `json:"net_profit_theoretical"`
	PaymentCompletionRate     decimal.Decimal            `json:"payment_completion_rate"`
	TotalAcceptedApplications int                        `json:"total_accepted_applications"`
	PaidApplications          int                        `json:"paid_applications"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func EventToResponse(e *model.Event, acceptedCount int) EventResponse {
	return EventResponse{
		ID:             e.ID,
		OrganizerID:    e.OrganizerID,
		Name:           e.Name,
		Description:    e.Description,
		Location:       e.Location,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		Capacity:       e.Capacity,
		MaleCapacity:   e.MaleCapacity,
		FemaleCapacity: e.FemaleCapacity,
		IsPublished:    e.IsPublished,
		Prices:         e.Prices,
		AcceptedCount:  acceptedCount,
		CreatedAt:      e.CreatedAt,
	}
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: "Missing or invalid caller identity",
		},
	})
}

func ForbiddenError(c *ginext.Context, desc string) {
	c.JSON(403, Response{
		Status: "error",
		Error: &Error{
			Code: NotOrganizer,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func ConflictError(c *ginext.Context, code, desc string) {
	c.JSON(409, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func ApplicationNotFoundError(c *ginext.Context) {
	NotFoundError(c, ApplicationNotFound, "Application not found")
}

func ApplicationDuplicateError(c *ginext.Context) {
	ConflictError(c, ApplicationDuplicate, "You have already applied to this event")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
