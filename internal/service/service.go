package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wb-go/wbf/ginext"

	"dancereg/internal/admission"
	"dancereg/internal/dto"
	"dancereg/internal/finance"
	"dancereg/internal/model"
	"dancereg/internal/repo"
	"dancereg/pkg/validator"
)

// CtxCallerID is the gin context key under which the identity middleware
// stores the authenticated user's id.
const CtxCallerID = "caller_id"

// Publisher sends application lifecycle messages to the bus. Satisfied by
// rabbit.Client; a nil publisher disables publishing.
type Publisher interface {
	Publish(message []byte) error
}

type Service interface {
	CreateEvent(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	GetAllEvents(ctx *ginext.Context)
	UpdateCoordinates(ctx *ginext.Context)
	SubmitApplication(ctx *ginext.Context)
	ListEventApplications(ctx *ginext.Context)
	ListMyApplications(ctx *ginext.Context)
	SetApplicationStatus(ctx *ginext.Context)
	SetPaymentStatus(ctx *ginext.Context)
	AddCost(ctx *ginext.Context)
	RemoveCost(ctx *ginext.Context)
	Dashboard(ctx *ginext.Context)
}

type service struct {
	repo repo.Repository
	log  *zerolog.Logger
	rbt  Publisher
}

func NewService(repo repo.Repository, logger *zerolog.Logger, rbt Publisher) Service {
	return &service{
		repo: repo,
		log:  logger,
		rbt:  rbt,
	}
}

func callerID(ctx *ginext.Context) (int64, bool) {
	v, ok := ctx.Get(CtxCallerID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func paramID(ctx *ginext.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ownedEvent loads the event and checks the caller is its organizer.
func (s *service) ownedEvent(ctx *ginext.Context, eventID, caller int64) (*model.Event, bool) {
	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
		} else {
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to load event")
			dto.InternalServerError(ctx)
		}
		return nil, false
	}
	if event.OrganizerID != caller {
		dto.ForbiddenError(ctx, "Only the event organizer may do this")
		return nil, false
	}
	return event, true
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user, err := s.repo.GetUserByID(ctx.Request.Context(), caller)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.NotFoundError(ctx, dto.UserNotFound, "User not found")
		} else {
			s.log.Error().Err(err).Msg("failed to load caller")
			dto.InternalServerError(ctx)
		}
		return
	}
	if user.OrganizerStatus != model.OrganizerApproved {
		dto.ForbiddenError(ctx, "Only approved organizers may create events")
		return
	}

	if req.MaleCapacity+req.FemaleCapacity > req.Capacity {
		// Tolerated on purpose: the gender quotas are a soft partition
		// of the total capacity, the aggregate check still binds.
		s.log.Warn().
			Int("capacity", req.Capacity).
			Int("male_capacity", req.MaleCapacity).
			Int("female_capacity", req.FemaleCapacity).
			Msg("gender quotas exceed total capacity")
	}

	event := &model.Event{
		OrganizerID:    caller,
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Capacity:       req.Capacity,
		MaleCapacity:   req.MaleCapacity,
		FemaleCapacity: req.FemaleCapacity,
		IsPublished:    req.IsPublished,
	}
	if req.Prices != nil {
		event.Prices = *req.Prices
	}

	id, err := s.repo.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}
	event.ID = id

	s.log.Info().Int64("event_id", id).Msg("event created successfully")
	dto.SuccessCreatedResponse(ctx, dto.EventToResponse(event, 0))
}

func (s *service) GetEvent(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
		} else {
			dto.InternalServerError(ctx)
		}
		return
	}

	count, err := s.repo.CountAccepted(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count accepted applications")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.EventToResponse(event, count))
}

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetPublishedEvents(ctx.Request.Context())
	if err != nil {
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		count, err := s.repo.CountAccepted(ctx.Request.Context(), events[i].ID)
		if err != nil {
			s.log.Error().Err(err).Int64("event_id", events[i].ID).Msg("failed to count accepted applications")
			dto.InternalServerError(ctx)
			return
		}
		resp = append(resp, dto.EventToResponse(&events[i], count))
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) UpdateCoordinates(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.UpdateCoordinatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if _, ok := s.ownedEvent(ctx, eventID, caller); !ok {
		return
	}

	event, err := s.repo.UpdateEventCoordinates(ctx.Request.Context(), eventID, *req.Latitude, *req.Longitude)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
		} else {
			s.log.Error().Err(err).Msg("failed to update event coordinates")
			dto.InternalServerError(ctx)
		}
		return
	}

	count, err := s.repo.CountAccepted(ctx.Request.Context(), eventID)
	if err != nil {
		count = 0
	}
	dto.SuccessResponse(ctx, dto.EventToResponse(event, count))
}

func (s *service) SubmitApplication(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
		} else {
			dto.InternalServerError(ctx)
		}
		return
	}

	user, err := s.repo.GetUserByID(ctx.Request.Context(), caller)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.NotFoundError(ctx, dto.UserNotFound, "User not found")
		} else {
			dto.InternalServerError(ctx)
		}
		return
	}

	// Deliberately no transaction around count-then-insert: two borderline
	// concurrent submissions may both land as applied. That only grows the
	// review queue; a seat is taken when the organizer accepts.
	occ, err := s.repo.CountAcceptedApplications(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count accepted applications")
		dto.InternalServerError(ctx)
		return
	}

	app := &model.Application{
		UserID:  caller,
		EventID: eventID,
		Status:  admission.Decide(user.Gender, occ, event),
	}
	if req.PricingOption != nil {
		opt := model.PricingOption(*req.PricingOption)
		app.PricingOption = &opt
		app.NumberOfDays = req.NumberOfDays
	}
	if req.TotalPrice != nil {
		app.TotalPrice = decimal.NullDecimal{Decimal: *req.TotalPrice, Valid: true}
	}

	created, err := s.repo.CreateApplication(ctx.Request.Context(), app)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateApplication) {
			dto.ApplicationDuplicateError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to create application")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int64("application_id", created.ID).
		Int64("event_id", eventID).
		Str("status", string(created.Status)).
		Msg("application submitted")

	s.publish(dto.MessageSubmitted, created, string(created.Status))

	dto.SuccessCreatedResponse(ctx, created)
}

func (s *service) ListEventApplications(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if _, ok := s.ownedEvent(ctx, eventID, caller); !ok {
		return
	}

	apps, err := s.repo.GetApplicationsWithApplicants(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get event applications")
		dto.InternalServerError(ctx)
		return
	}
	if apps == nil {
		apps = []model.ApplicationWithApplicant{}
	}

	dto.SuccessResponse(ctx, apps)
}

func (s *service) ListMyApplications(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}

	apps, err := s.repo.GetUserApplications(ctx.Request.Context(), caller)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get user applications")
		dto.InternalServerError(ctx)
		return
	}
	if apps == nil {
		apps = []model.ApplicationWithEvent{}
	}

	dto.SuccessResponse(ctx, apps)
}

func (s *service) SetApplicationStatus(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	appID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid application ID")
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	app, ok := s.authorizedApplication(ctx, appID, caller)
	if !ok {
		return
	}

	// No capacity re-check here: the organizer has the final say and may
	// accept over capacity. The triage at submission time is a one-shot
	// heuristic, not an enforced limit.
	updated, err := s.repo.UpdateApplicationStatus(ctx.Request.Context(), app.ID, model.ApplicationStatus(req.Status))
	if err != nil {
		if errors.Is(err, repo.ErrApplicationNotFound) {
			dto.ApplicationNotFoundError(ctx)
		} else {
			s.log.Error().Err(err).Msg("failed to update application status")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().
		Int64("application_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("application status updated")

	s.publish(dto.MessageStatusChanged, updated, string(updated.Status))

	dto.SuccessResponse(ctx, updated)
}

func (s *service) SetPaymentStatus(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	appID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid application ID")
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	app, ok := s.authorizedApplication(ctx, appID, caller)
	if !ok {
		return
	}

	updated, err := s.repo.UpdateApplicationPayment(ctx.Request.Context(), app.ID, *req.PaymentDone)
	if err != nil {
		if errors.Is(err, repo.ErrApplicationNotFound) {
			dto.ApplicationNotFoundError(ctx)
		} else {
			s.log.Error().Err(err).Msg("failed to update payment status")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().
		Int64("application_id", updated.ID).
		Bool("payment_done", updated.PaymentDone).
		Msg("payment status updated")

	s.publish(dto.MessagePaymentChanged, updated, strconv.FormatBool(updated.PaymentDone))

	dto.SuccessResponse(ctx, updated)
}

func (s *service) AddCost(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.AddCostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if _, ok := s.ownedEvent(ctx, eventID, caller); !ok {
		return
	}

	cost := &model.EventCost{
		EventID:     eventID,
		Category:    req.Category,
		Description: req.Description,
		Amount:      *req.Amount,
		Date:        time.Now(),
	}
	if req.Date != nil {
		cost.Date = *req.Date
	}

	id, err := s.repo.CreateCost(ctx.Request.Context(), cost)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create cost")
		dto.InternalServerError(ctx)
		return
	}
	cost.ID = id

	s.log.Info().Int64("cost_id", id).Int64("event_id", eventID).Msg("cost added")
	dto.SuccessCreatedResponse(ctx, cost)
}

func (s *service) RemoveCost(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	costID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid cost ID")
		return
	}

	cost, err := s.repo.GetCostByID(ctx.Request.Context(), costID)
	if err != nil {
		if errors.Is(err, repo.ErrCostNotFound) {
			dto.NotFoundError(ctx, dto.CostNotFound, "Cost not found")
		} else {
			dto.InternalServerError(ctx)
		}
		return
	}

	if _, ok := s.ownedEvent(ctx, cost.EventID, caller); !ok {
		return
	}

	deleted, err := s.repo.DeleteCost(ctx.Request.Context(), costID)
	if err != nil {
		if errors.Is(err, repo.ErrCostNotFound) {
			dto.NotFoundError(ctx, dto.CostNotFound, "Cost not found")
		} else {
			s.log.Error().Err(err).Msg("failed to delete cost")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int64("cost_id", costID).Msg("cost removed")
	dto.SuccessResponse(ctx, deleted)
}

func (s *service) Dashboard(ctx *ginext.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, ok := paramID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if _, ok := s.ownedEvent(ctx, eventID, caller); !ok {
		return
	}

	costs, err := s.repo.GetEventCosts(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get event costs")
		dto.InternalServerError(ctx)
		return
	}
	apps, err := s.repo.GetEventApplications(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get event applications")
		dto.InternalServerError(ctx)
		return
	}

	summary := finance.Summarize(costs, apps)

	dto.SuccessResponse(ctx, dto.DashboardResponse{
		TotalCosts:                summary.TotalCosts,
		CostsByCategory:           summary.CostsByCategory,
		ConfirmedRevenue:          summary.ConfirmedRevenue,
		TheoreticalRevenue:        summary.TheoreticalRevenue,
		PendingRevenue:            summary.PendingRevenue,
		NetProfitConfirmed:        summary.NetProfitConfirmed,
		NetProfitTheoretical:      summary.NetProfitTheoretical,
		PaymentCompletionRate:     summary.PaymentCompletionRate,
		TotalAcceptedApplications: summary.TotalAcceptedApplications,
		PaidApplications:          summary.PaidApplications,
	})
}

// authorizedApplication loads the application and checks the caller
// organizes its event.
func (s *service) authorizedApplication(ctx *ginext.Context, appID, caller int64) (*model.Application, bool) {
	app, err := s.repo.GetApplicationByID(ctx.Request.Context(), appID)
	if err != nil {
		if errors.Is(err, repo.ErrApplicationNotFound) {
			dto.ApplicationNotFoundError(ctx)
		} else {
			s.log.Error().Err(err).Msg("failed to load application")
			dto.InternalServerError(ctx)
		}
		return nil, false
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), app.EventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
		} else {
			dto.InternalServerError(ctx)
		}
		return nil, false
	}
	if event.OrganizerID != caller {
		dto.ForbiddenError(ctx, "Only the event organizer may do this")
		return nil, false
	}
	return app, true
}

func (s *service) publish(kind string, app *model.Application, detail string) {
	if s.rbt == nil {
		return
	}

	msg := dto.ApplicationMessage{
		ApplicationID: app.ID,
		EventID:       app.EventID,
		Kind:          kind,
		Detail:        detail,
		OccurredAt:    time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal application message")
		return
	}
	if err := s.rbt.Publish(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to publish application message")
	}
}
