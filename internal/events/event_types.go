package events

import (
	"time"

	"github.com/supportkit/case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventResponseSent   EventType = "response_sent"
	EventResponseFailed EventType = "response_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries enough of the new ticket to render the
// confirmation email without a second lookup.
type TicketCreatedPayload struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      string                `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	CustomerName  string                `json:"customer_name,omitempty"`
	CustomerEmail string                `json:"customer_email,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title string `json:"title"`
}

// ResponseSentPayload payload.
type ResponseSentPayload struct {
	ResponseID int64  `json:"response_id"`
	MessageID  string `json:"message_id"`
	SentTo     string `json:"sent_to"`
}

// ResponseFailedPayload payload.
type ResponseFailedPayload struct {
	ResponseID int64  `json:"response_id"`
	Error      string `json:"error"`
}
