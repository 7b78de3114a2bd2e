package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew             TicketStatus = "new"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusPendingCustomer TicketStatus = "pending_customer"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
	// TicketStatusDone is a legacy synonym for closed. Accepted on input for
	// backward compatibility, never produced by new writes.
	TicketStatusDone TicketStatus = "done"
)

// Valid reports whether the status is a member of the enumerated set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusPendingCustomer,
		TicketStatusResolved, TicketStatusClosed, TicketStatusDone:
		return true
	}
	return false
}

// Terminal reports whether the status ends the ticket lifecycle.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed || s == TicketStatusDone
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Valid reports whether the priority is a member of the enumerated set.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

const (
	maxTitleLen    = 200
	maxCategoryLen = 100
)

// Ticket is the aggregate for support cases.
type Ticket struct {
	ID           int64
	TicketNumber *string
	Title        string
	Description  string
	Category     string
	Priority     TicketPriority
	Status       TicketStatus

	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string

	AssignedTo *string
	AssignedAt *time.Time
	Department *string

	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	DueDate         *time.Time

	ResponseTimeMinutes   *int
	ResolutionTimeMinutes *int

	Tags               []string
	SatisfactionRating *int
	ReopenedCount      int
	Escalated          bool
	Notes              *string
}

// ValidateNew checks the fields a caller must supply at creation.
func (t *Ticket) ValidateNew() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if err := validateCategory(t.Category); err != nil {
		return err
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", t.Priority)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("title exceeds %d characters", maxTitleLen)
	}
	return nil
}

func validateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category is required")
	}
	if len(category) > maxCategoryLen {
		return fmt.Errorf("category exceeds %d characters", maxCategoryLen)
	}
	return nil
}

// ValidateRating checks a satisfaction rating.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("satisfaction_rating must be between 1 and 5")
	}
	return nil
}
