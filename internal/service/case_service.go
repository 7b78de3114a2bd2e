package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/supportkit/case-service/internal/domain"
	"github.com/supportkit/case-service/internal/events"
	"github.com/supportkit/case-service/internal/notification"
	"github.com/supportkit/case-service/internal/repository"
	"github.com/supportkit/case-service/pkg/errorutil"
)

// CaseService coordinates ticket workflows: CRUD, the response-sending flow
// and its audit trail.
type CaseService struct {
	tickets     repository.TicketRepository
	responses   repository.TicketResponseRepository
	gateway     notification.Gateway
	templates   notification.Templates
	numbers     *TicketNumberAllocator
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	sendTimeout time.Duration

	now func() time.Time
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.TicketResponseRepository
	Gateway      notification.Gateway
	Templates    notification.Templates
	Numbers      *TicketNumberAllocator
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	SendTimeout  time.Duration
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	timeout := deps.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseService{
		tickets:     deps.TicketRepo,
		responses:   deps.ResponseRepo,
		gateway:     deps.Gateway,
		templates:   deps.Templates,
		numbers:     deps.Numbers,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		sendTimeout: timeout,
		now:         time.Now,
	}
}

// TicketCreateInput describes ticket creation payload. Caller-supplied status
// is deliberately absent: new tickets always start as new.
type TicketCreateInput struct {
	Title         string
	Description   string
	Category      string
	Priority      domain.TicketPriority
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string
	Department    *string
	DueDate       *time.Time
	Tags          []string
	Notes         *string
}

// TicketUpdateInput mirrors the externally mutable fields of a ticket.
// Nil fields are left untouched.
type TicketUpdateInput struct {
	Title         *string
	Description   *string
	Status        *domain.TicketStatus
	Category      *string
	Priority      *domain.TicketPriority
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string
	AssignedTo    *string
	Department    *string
	DueDate       *time.Time
	Tags          *[]string
	SatisfactionRating *int
	ReopenedCount      *int
	Escalated          *bool
	Notes              *string
}

// TicketListFilter narrows listing to exact status/category matches.
type TicketListFilter struct {
	Status   *domain.TicketStatus
	Category *string
}

// SendResponseInput describes an explicit response-send request.
type SendResponseInput struct {
	ResponseText  string
	CustomerEmail string
	CustomerName  string
	TicketTitle   string
	SentBy        *string
}

// CreateTicket validates and persists a new ticket, then emits the created
// event. The confirmation email rides on the event and can never fail the
// creation.
func (s *CaseService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      strings.TrimSpace(input.Category),
		Priority:      input.Priority,
		Status:        domain.TicketStatusNew,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		CustomerID:    input.CustomerID,
		Department:    input.Department,
		DueDate:       input.DueDate,
		Tags:          input.Tags,
		Notes:         input.Notes,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if err := ticket.ValidateNew(); err != nil {
		return nil, errorutil.NewValidationError(err.Error(), nil)
	}

	if s.numbers != nil {
		number := s.numbers.Next(ctx, s.now())
		ticket.TicketNumber = &number
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	payload := events.TicketCreatedPayload{
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
	}
	if ticket.CustomerName != nil {
		payload.CustomerName = *ticket.CustomerName
	}
	if ticket.CustomerEmail != nil {
		payload.CustomerEmail = *ticket.CustomerEmail
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  payload,
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *CaseService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *CaseService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, errorutil.NewValidationError("invalid status filter", map[string]any{"status": *filter.Status})
	}
	repoFilter := repository.TicketFilter{
		Status:   filter.Status,
		Category: filter.Category,
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// UpdateTicket applies a partial update. Timeline stamps are derived here:
// assignment stamps assigned_at, a transition to resolved stamps resolved_at
// and the resolution metric, a transition to closed (or legacy done) stamps
// closed_at. Stamps are set once and left alone on repeat transitions.
func (s *CaseService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}

	patch := repository.TicketPatch{
		Title:              input.Title,
		Description:        input.Description,
		Status:             input.Status,
		Category:           input.Category,
		Priority:           input.Priority,
		CustomerName:       input.CustomerName,
		CustomerEmail:      input.CustomerEmail,
		CustomerPhone:      input.CustomerPhone,
		CustomerID:         input.CustomerID,
		AssignedTo:         input.AssignedTo,
		Department:         input.Department,
		DueDate:            input.DueDate,
		Tags:               input.Tags,
		SatisfactionRating: input.SatisfactionRating,
		ReopenedCount:      input.ReopenedCount,
		Escalated:          input.Escalated,
		Notes:              input.Notes,
	}

	now := s.now()
	if input.AssignedTo != nil && (current.AssignedTo == nil || *current.AssignedTo != *input.AssignedTo) {
		stamp := now
		patch.AssignedAt = &stamp
	}
	if input.Status != nil {
		switch {
		case *input.Status == domain.TicketStatusResolved && current.ResolvedAt == nil:
			stamp := now
			patch.ResolvedAt = &stamp
			minutes := wholeMinutesSince(current.CreatedAt, now)
			patch.ResolutionTimeMinutes = &minutes
		case input.Status.Terminal() && current.ClosedAt == nil:
			stamp := now
			patch.ClosedAt = &stamp
		}
	}

	updated, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return updated, nil
}

// DeleteTicket removes a ticket and, by cascade, its responses.
func (s *CaseService) DeleteTicket(ctx context.Context, id int64) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return mapTicketErr(err)
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return mapTicketErr(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return nil
}

// SendResponse runs the explicit response flow: existence check, gateway
// availability check, durable pending row, bounded send, durable outcome.
// The pending row is written before any network attempt so an audit record
// exists even if the process dies mid-call. The three writes around the send
// are intentionally separate commits.
func (s *CaseService) SendResponse(ctx context.Context, ticketID int64, input SendResponseInput) (*domain.TicketResponse, error) {
	if strings.TrimSpace(input.ResponseText) == "" {
		return nil, errorutil.NewValidationError("response text is required", nil)
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, errorutil.NewValidationError("customer email is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketErr(err)
	}

	// Unlike ticket creation, an unconfigured gateway is a hard failure here:
	// the caller explicitly asked for an email. No pending row is written.
	if !s.gateway.Configured() {
		return nil, errorutil.NewServiceUnavailable("email service is not configured")
	}

	title := strings.TrimSpace(input.TicketTitle)
	if title == "" {
		title = ticket.Title
	}

	resp := &domain.TicketResponse{
		TicketID:     ticket.ID,
		Subject:      s.templates.ResponseSubject(title),
		ResponseText: input.ResponseText,
		SentTo:       input.CustomerEmail,
		SentBy:       input.SentBy,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, mapTicketErr(err)
	}

	sentBy := ""
	if input.SentBy != nil {
		sentBy = *input.SentBy
	}
	msg := notification.Message{
		Subject:  resp.Subject,
		HTMLBody: s.templates.ResponseHTML(input.CustomerName, ticket.ID, title, input.ResponseText, sentBy),
		TextBody: s.templates.ResponseText(input.CustomerName, ticket.ID, title, input.ResponseText, sentBy),
		To:       input.CustomerEmail,
		ToName:   input.CustomerName,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	outcome, sendErr := s.gateway.Send(sendCtx, msg)
	if sendErr != nil {
		if markErr := s.responses.MarkFailed(ctx, resp.ID, sendErr.Error()); markErr != nil {
			s.logger.Error("failed to record send failure",
				zap.Int64("response_id", resp.ID), zap.Error(markErr))
		}
		errMsg := sendErr.Error()
		resp.EmailStatus = domain.EmailStatusFailed
		resp.ErrorMessage = &errMsg
		s.publishEvent(ctx, events.Event{
			Type:     events.EventResponseFailed,
			TicketID: ticket.ID,
			Payload:  events.ResponseFailedPayload{ResponseID: resp.ID, Error: errMsg},
		})
		return resp, errorutil.NewSendFailure(sendErr)
	}

	sentAt := s.now()
	if err := s.responses.MarkSent(ctx, resp.ID, sentAt, outcome.MessageID); err != nil {
		s.logger.Error("failed to record send success",
			zap.Int64("response_id", resp.ID), zap.Error(err))
	}
	resp.EmailStatus = domain.EmailStatusSent
	resp.SentAt = &sentAt
	messageID := outcome.MessageID
	resp.MessageID = &messageID

	// first_response_at is set at most once. The conditional update in the
	// store resolves the race between concurrent senders; a failed attempt
	// never reaches this point.
	minutes := wholeMinutesSince(ticket.CreatedAt, sentAt)
	stamped, err := s.tickets.SetFirstResponse(ctx, ticket.ID, sentAt, minutes)
	if err != nil {
		s.logger.Error("failed to stamp first response",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	} else if !stamped {
		s.logger.Debug("first response already recorded", zap.Int64("ticket_id", ticket.ID))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventResponseSent,
		TicketID: ticket.ID,
		Payload: events.ResponseSentPayload{
			ResponseID: resp.ID,
			MessageID:  outcome.MessageID,
			SentTo:     resp.SentTo,
		},
	})
	return resp, nil
}

// ListResponses returns the communication log for a ticket, newest first.
// A missing ticket is NotFound, never an empty list.
func (s *CaseService) ListResponses(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, mapTicketErr(err)
	}
	responses, err := s.responses.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = []domain.TicketResponse{}
	}
	return responses, nil
}

func validateUpdate(input TicketUpdateInput) error {
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" || len(*input.Title) > 200 {
			return errorutil.NewValidationError("title must be 1-200 characters", nil)
		}
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" || len(*input.Category) > 100 {
			return errorutil.NewValidationError("category must be 1-100 characters", nil)
		}
	}
	if input.Status != nil && !input.Status.Valid() {
		return errorutil.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return errorutil.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}
	if input.SatisfactionRating != nil {
		if err := domain.ValidateRating(*input.SatisfactionRating); err != nil {
			return errorutil.NewValidationError(err.Error(), nil)
		}
	}
	if input.ReopenedCount != nil && *input.ReopenedCount < 0 {
		return errorutil.NewValidationError("reopened_count must be non-negative", nil)
	}
	return nil
}

func wholeMinutesSince(from, to time.Time) int {
	minutes := int(to.Sub(from).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

func mapTicketErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound("ticket", nil)
	}
	return err
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
