package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportkit/case-service/internal/domain"
	"github.com/supportkit/case-service/internal/events"
	"github.com/supportkit/case-service/internal/notification"
	"github.com/supportkit/case-service/internal/repository"
	"github.com/supportkit/case-service/pkg/errorutil"
)

type fakeGateway struct {
	configured bool
	failWith   error
	messageID  string
	sent       []notification.Message
}

func (g *fakeGateway) Configured() bool { return g.configured }

func (g *fakeGateway) Send(ctx context.Context, msg notification.Message) (notification.Outcome, error) {
	if g.failWith != nil {
		return notification.Outcome{}, g.failWith
	}
	g.sent = append(g.sent, msg)
	return notification.Outcome{MessageID: g.messageID}, nil
}

type caseFixture struct {
	svc     *CaseService
	store   *repository.MemoryStore
	gateway *fakeGateway
	clock   *time.Time
}

func newFixture(t *testing.T, gateway *fakeGateway) *caseFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	store.Now = now

	svc := NewCaseService(CaseDependencies{
		TicketRepo:   store,
		ResponseRepo: store.ResponseRepo(),
		Gateway:      gateway,
		Templates:    notification.Templates{CompanyName: "Tax Support"},
		Dispatcher:   events.NewInMemoryDispatcher(),
		Logger:       zap.NewNop(),
	})
	svc.now = now

	return &caseFixture{svc: svc, store: store, gateway: gateway, clock: &clock}
}

func (f *caseFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *caseFixture) createTicket(t *testing.T, email string) *domain.Ticket {
	t.Helper()
	input := TicketCreateInput{
		Title:    "Cannot file VAT return",
		Category: "vat",
	}
	if email != "" {
		input.CustomerEmail = &email
	}
	ticket, err := f.svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	return ticket
}

func domainErr(t *testing.T, err error) *errorutil.DomainError {
	t.Helper()
	var de *errorutil.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de
}

func TestCreateTicketForcesStatusNew(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ticket := f.createTicket(t, "a@b.com")

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority, "priority defaults to medium")
	assert.False(t, ticket.CreatedAt.IsZero())
	assert.Nil(t, ticket.FirstResponseAt)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()

	_, err := f.svc.CreateTicket(ctx, TicketCreateInput{Title: "", Category: "vat"})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)

	_, err = f.svc.CreateTicket(ctx, TicketCreateInput{Title: "ok", Category: ""})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)

	_, err = f.svc.CreateTicket(ctx, TicketCreateInput{Title: "ok", Category: "vat", Priority: "urgent"})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestListTicketsFilterConjunction(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()

	first := f.createTicket(t, "")
	f.advance(time.Minute)
	_, err := f.svc.CreateTicket(ctx, TicketCreateInput{Title: "income question", Category: "income_tax"})
	require.NoError(t, err)
	f.advance(time.Minute)
	second := f.createTicket(t, "")

	statusNew := domain.TicketStatusNew
	categoryVAT := "vat"
	tickets, err := f.svc.ListTickets(ctx, TicketListFilter{Status: &statusNew, Category: &categoryVAT})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, second.ID, tickets[0].ID, "newest created first")
	assert.Equal(t, first.ID, tickets[1].ID)

	bad := domain.TicketStatus("bogus")
	_, err = f.svc.ListTickets(ctx, TicketListFilter{Status: &bad})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestUpdateTicketPartial(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()
	ticket := f.createTicket(t, "")

	f.advance(time.Minute)
	assignee := "jane"
	updated, err := f.svc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{AssignedTo: &assignee})
	require.NoError(t, err)

	assert.Equal(t, ticket.Title, updated.Title, "fields outside the payload keep their value")
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "jane", *updated.AssignedTo)
	require.NotNil(t, updated.AssignedAt, "assignment stamps assigned_at")
	assert.True(t, updated.UpdatedAt.After(ticket.UpdatedAt))
}

func TestUpdateTicketStatusStamps(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()
	ticket := f.createTicket(t, "")

	f.advance(90 * time.Minute)
	resolved := domain.TicketStatusResolved
	updated, err := f.svc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	require.NotNil(t, updated.ResolutionTimeMinutes)
	assert.Equal(t, 90, *updated.ResolutionTimeMinutes)

	f.advance(time.Minute)
	closed := domain.TicketStatusClosed
	updated, err = f.svc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedAt)
}

func TestUpdateTicketErrors(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()
	ticket := f.createTicket(t, "")

	bad := domain.TicketStatus("bogus")
	_, err := f.svc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{Status: &bad})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)

	rating := 9
	_, err = f.svc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{SatisfactionRating: &rating})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)

	title := "x"
	_, err = f.svc.UpdateTicket(ctx, 999, TicketUpdateInput{Title: &title})
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code)
}

func TestDeleteTicketCascades(t *testing.T) {
	gw := &fakeGateway{configured: true, messageID: "m1"}
	f := newFixture(t, gw)
	ctx := context.Background()
	ticket := f.createTicket(t, "a@b.com")

	_, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText:  "We are investigating",
		CustomerEmail: "a@b.com",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTicket(ctx, ticket.ID))

	_, err = f.svc.ListResponses(ctx, ticket.ID)
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code, "responses for a deleted ticket are NotFound, not empty")

	err = f.svc.DeleteTicket(ctx, ticket.ID)
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code)
}

func TestSendResponseUnconfiguredGateway(t *testing.T) {
	f := newFixture(t, &fakeGateway{configured: false})
	ctx := context.Background()
	ticket := f.createTicket(t, "a@b.com")

	_, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText:  "hello",
		CustomerEmail: "a@b.com",
	})
	assert.Equal(t, "SERVICE_UNAVAILABLE", domainErr(t, err).Code)

	// contract: no pending row is written when the gateway is unavailable
	rows, err := f.svc.ListResponses(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSendResponseMissingTicket(t *testing.T) {
	f := newFixture(t, &fakeGateway{configured: true})
	_, err := f.svc.SendResponse(context.Background(), 404, SendResponseInput{
		ResponseText:  "hello",
		CustomerEmail: "a@b.com",
	})
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code)
}

func TestSendResponseGatewayFailure(t *testing.T) {
	gw := &fakeGateway{configured: true, failWith: errors.New("smtp: connection refused")}
	f := newFixture(t, gw)
	ctx := context.Background()
	ticket := f.createTicket(t, "a@b.com")

	_, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText:  "hello",
		CustomerEmail: "a@b.com",
	})
	de := domainErr(t, err)
	assert.Equal(t, "SEND_FAILED", de.Code)
	assert.Contains(t, de.Message, "smtp: connection refused")

	rows, err := f.svc.ListResponses(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "exactly one audit row for the failed attempt")
	assert.Equal(t, domain.EmailStatusFailed, rows[0].EmailStatus)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Contains(t, *rows[0].ErrorMessage, "connection refused")
	assert.Nil(t, rows[0].SentAt)

	got, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FirstResponseAt, "a failed attempt does not count as a response")
}

func TestSendResponseSuccess(t *testing.T) {
	gw := &fakeGateway{configured: true, messageID: "abc123"}
	f := newFixture(t, gw)
	ctx := context.Background()
	ticket := f.createTicket(t, "a@b.com")

	f.advance(45 * time.Minute)
	resp, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText:  "We are investigating",
		CustomerEmail: "a@b.com",
		CustomerName:  "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EmailStatusSent, resp.EmailStatus)
	require.NotNil(t, resp.MessageID)
	assert.Equal(t, "abc123", *resp.MessageID)
	require.NotNil(t, resp.SentAt)
	assert.Equal(t, "Tax Support - Response to: Cannot file VAT return", resp.Subject)

	got, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstResponseAt)
	require.NotNil(t, got.ResponseTimeMinutes)
	assert.Equal(t, 45, *got.ResponseTimeMinutes)
	assert.GreaterOrEqual(t, *got.ResponseTimeMinutes, 0)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "a@b.com", gw.sent[0].To)
	assert.Contains(t, gw.sent[0].TextBody, "We are investigating")
	assert.Contains(t, gw.sent[0].HTMLBody, "We are investigating")
}

func TestFirstResponseSetOnce(t *testing.T) {
	gw := &fakeGateway{configured: true, messageID: "m1"}
	f := newFixture(t, gw)
	ctx := context.Background()
	ticket := f.createTicket(t, "a@b.com")

	f.advance(10 * time.Minute)
	_, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText: "first", CustomerEmail: "a@b.com",
	})
	require.NoError(t, err)

	afterFirst, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, afterFirst.FirstResponseAt)
	firstStamp := *afterFirst.FirstResponseAt

	f.advance(2 * time.Hour)
	gw.messageID = "m2"
	_, err = f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText: "second", CustomerEmail: "a@b.com",
	})
	require.NoError(t, err)

	afterSecond, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, afterSecond.FirstResponseAt)
	assert.Equal(t, firstStamp, *afterSecond.FirstResponseAt,
		"first_response_at keeps the stamp of the first successful send")
	assert.Equal(t, 10, *afterSecond.ResponseTimeMinutes)

	rows, err := f.svc.ListResponses(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "second", rows[0].ResponseText, "newest first")
}

func TestSendResponseValidation(t *testing.T) {
	f := newFixture(t, &fakeGateway{configured: true})
	ctx := context.Background()
	ticket := f.createTicket(t, "a@b.com")

	_, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{CustomerEmail: "a@b.com"})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)

	_, err = f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{ResponseText: "x"})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestEndToEndScenario(t *testing.T) {
	gw := &fakeGateway{configured: true, messageID: "abc123"}
	f := newFixture(t, gw)
	ctx := context.Background()

	email := "a@b.com"
	ticket, err := f.svc.CreateTicket(ctx, TicketCreateInput{
		Title:         "Cannot file VAT return",
		Category:      "vat",
		CustomerEmail: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.False(t, ticket.CreatedAt.IsZero())
	assert.Nil(t, ticket.FirstResponseAt)

	f.advance(time.Minute)
	resp, err := f.svc.SendResponse(ctx, ticket.ID, SendResponseInput{
		ResponseText:  "We are investigating",
		CustomerEmail: email,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EmailStatusSent, resp.EmailStatus)
	assert.Equal(t, "abc123", *resp.MessageID)

	got, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstResponseAt)
	assert.GreaterOrEqual(t, *got.ResponseTimeMinutes, 0)
}

func TestConfirmationEmailBestEffort(t *testing.T) {
	gw := &fakeGateway{configured: true, messageID: "c1"}
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	templates := notification.Templates{CompanyName: "Tax Support"}

	svc := NewCaseService(CaseDependencies{
		TicketRepo:   store,
		ResponseRepo: store.ResponseRepo(),
		Gateway:      gw,
		Templates:    templates,
		Dispatcher:   dispatcher,
		Logger:       zap.NewNop(),
	})
	NewNotificationService(dispatcher, gw, templates, zap.NewNop()).RegisterHandlers()

	email := "a@b.com"
	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:         "Cannot file VAT return",
		Description:   "It errors out",
		Category:      "vat",
		CustomerEmail: &email,
	})
	require.NoError(t, err)
	require.Len(t, gw.sent, 1, "confirmation goes out when gateway is configured")
	assert.Contains(t, gw.sent[0].Subject, "Ticket #")
	assert.Contains(t, gw.sent[0].TextBody, ticket.Title)

	// a failing gateway never fails the creation
	gw.failWith = errors.New("smtp down")
	_, err = svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:         "Second ticket",
		Category:      "vat",
		CustomerEmail: &email,
	})
	require.NoError(t, err)
}

func TestConfirmationSkippedWithoutEmailOrGateway(t *testing.T) {
	templates := notification.Templates{CompanyName: "Tax Support"}

	newSvc := func(gw *fakeGateway) *CaseService {
		store := repository.NewMemoryStore()
		dispatcher := events.NewInMemoryDispatcher()
		svc := NewCaseService(CaseDependencies{
			TicketRepo:   store,
			ResponseRepo: store.ResponseRepo(),
			Gateway:      gw,
			Templates:    templates,
			Dispatcher:   dispatcher,
			Logger:       zap.NewNop(),
		})
		NewNotificationService(dispatcher, gw, templates, zap.NewNop()).RegisterHandlers()
		return svc
	}

	// no customer email: nothing to send
	gw := &fakeGateway{configured: true, messageID: "c1"}
	_, err := newSvc(gw).CreateTicket(context.Background(), TicketCreateInput{Title: "t", Category: "vat"})
	require.NoError(t, err)
	assert.Empty(t, gw.sent)

	// unconfigured gateway: creation still succeeds, nothing sent
	gw = &fakeGateway{configured: false}
	email := "a@b.com"
	_, err = newSvc(gw).CreateTicket(context.Background(), TicketCreateInput{Title: "t", Category: "vat", CustomerEmail: &email})
	require.NoError(t, err)
	assert.Empty(t, gw.sent)
}
