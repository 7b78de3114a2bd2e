package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/supportkit/case-service/internal/events"
	"github.com/supportkit/case-service/internal/notification"
)

// NotificationService sends the best-effort confirmation email when a ticket
// is created and logs response delivery outcomes. Failures here are absorbed:
// ticket creation must never fail because of email problems.
type NotificationService struct {
	dispatcher events.Dispatcher
	gateway    notification.Gateway
	templates  notification.Templates
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, gateway notification.Gateway, templates notification.Templates, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		gateway:    gateway,
		templates:  templates,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventResponseSent, n.handleResponseSent)
	n.dispatcher.Subscribe(events.EventResponseFailed, n.handleResponseFailed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	if payload.CustomerEmail == "" {
		return nil
	}
	if n.gateway == nil || !n.gateway.Configured() {
		n.logger.Debug("email gateway unconfigured, skipping confirmation",
			zap.Int64("ticket_id", event.TicketID))
		return nil
	}

	msg := notification.Message{
		Subject:  n.templates.ConfirmationSubject(event.TicketID),
		HTMLBody: n.templates.ConfirmationHTML(payload.CustomerName, event.TicketID, payload.Title, payload.Description, payload.Category),
		TextBody: n.templates.ConfirmationText(payload.CustomerName, event.TicketID, payload.Title, payload.Description, payload.Category),
		To:       payload.CustomerEmail,
		ToName:   payload.CustomerName,
	}
	outcome, err := n.gateway.Send(ctx, msg)
	if err != nil {
		n.logger.Warn("confirmation email failed",
			zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	n.logger.Info("confirmation email sent",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("message_id", outcome.MessageID))
	return nil
}

func (n *NotificationService) handleResponseSent(ctx context.Context, event events.Event) error {
	n.logger.Info("ResponseSent", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleResponseFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("ResponseFailed", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}
