package dto

import (
	"time"

	"github.com/supportkit/case-service/internal/domain"
)

// SendResponseRequest payload for POST /tickets/:id/respond.
type SendResponseRequest struct {
	Response      string  `json:"response"`
	CustomerEmail string  `json:"customer_email"`
	CustomerName  string  `json:"customer_name"`
	TicketTitle   string  `json:"ticket_title"`
	SentBy        *string `json:"sent_by"`
}

// ResponseRecord is the wire representation of one ticket response.
type ResponseRecord struct {
	ID           int64              `json:"id"`
	TicketID     int64              `json:"ticket_id"`
	Subject      string             `json:"subject"`
	ResponseText string             `json:"response_text"`
	SentTo       string             `json:"sent_to"`
	SentBy       *string            `json:"sent_by"`
	CreatedAt    time.Time          `json:"created_at"`
	SentAt       *time.Time         `json:"sent_at"`
	EmailStatus  domain.EmailStatus `json:"email_status"`
	ErrorMessage *string            `json:"error_message"`
	MessageID    *string            `json:"message_id"`
}

// FromResponse maps the domain record onto the wire shape.
func FromResponse(r *domain.TicketResponse) ResponseRecord {
	return ResponseRecord{
		ID:           r.ID,
		TicketID:     r.TicketID,
		Subject:      r.Subject,
		ResponseText: r.ResponseText,
		SentTo:       r.SentTo,
		SentBy:       r.SentBy,
		CreatedAt:    r.CreatedAt,
		SentAt:       r.SentAt,
		EmailStatus:  r.EmailStatus,
		ErrorMessage: r.ErrorMessage,
		MessageID:    r.MessageID,
	}
}
