package domain

import "time"

// EmailStatus tracks delivery state of an outbound response.
// A row is created as pending before any network attempt and transitions
// exactly once to sent or failed. delivered is reserved for provider
// delivery callbacks and is never produced by the send flow itself.
type EmailStatus string

const (
	EmailStatusPending   EmailStatus = "pending"
	EmailStatusSent      EmailStatus = "sent"
	EmailStatusFailed    EmailStatus = "failed"
	EmailStatusDelivered EmailStatus = "delivered"
)

// Valid reports whether the status is a member of the enumerated set.
func (s EmailStatus) Valid() bool {
	switch s {
	case EmailStatusPending, EmailStatusSent, EmailStatusFailed, EmailStatusDelivered:
		return true
	}
	return false
}

// TicketResponse is one attempted or successful outbound communication for a
// ticket. Rows are append-only: a failed send is retried by creating a new
// row, never by resetting an existing one.
type TicketResponse struct {
	ID           int64
	TicketID     int64
	Subject      string
	ResponseText string
	SentTo       string
	SentBy       *string
	CreatedAt    time.Time
	SentAt       *time.Time
	EmailStatus  EmailStatus
	ErrorMessage *string
	MessageID    *string
}
