package dto

import (
	"time"

	"github.com/supportkit/case-service/internal/domain"
)

// CreateTicketRequest payload. A status field is intentionally not accepted:
// new tickets always start as new.
type CreateTicketRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      string                `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	CustomerName  *string               `json:"customer_name"`
	CustomerEmail *string               `json:"customer_email"`
	CustomerPhone *string               `json:"customer_phone"`
	CustomerID    *string               `json:"customer_id"`
	Department    *string               `json:"department"`
	DueDate       *time.Time            `json:"due_date"`
	Tags          []string              `json:"tags"`
	Notes         *string               `json:"notes"`
}

// UpdateTicketRequest payload for partial updates. Absent fields are left
// untouched. Timeline stamps and derived metrics are not accepted here; the
// service derives them from status and assignment changes.
type UpdateTicketRequest struct {
	Title              *string                `json:"title"`
	Description        *string                `json:"description"`
	Status             *domain.TicketStatus   `json:"status"`
	Category           *string                `json:"category"`
	Priority           *domain.TicketPriority `json:"priority"`
	CustomerName       *string                `json:"customer_name"`
	CustomerEmail      *string                `json:"customer_email"`
	CustomerPhone      *string                `json:"customer_phone"`
	CustomerID         *string                `json:"customer_id"`
	AssignedTo         *string                `json:"assigned_to"`
	Department         *string                `json:"department"`
	DueDate            *time.Time             `json:"due_date"`
	Tags               *[]string              `json:"tags"`
	SatisfactionRating *int                   `json:"satisfaction_rating"`
	ReopenedCount      *int                   `json:"reopened_count"`
	Escalated          *bool                  `json:"escalated"`
	Notes              *string                `json:"notes"`
}

// TicketResponse is the full wire representation of a ticket.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	TicketNumber *string               `json:"ticket_number"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`

	CustomerName  *string `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
	CustomerPhone *string `json:"customer_phone"`
	CustomerID    *string `json:"customer_id"`

	AssignedTo *string    `json:"assigned_to"`
	AssignedAt *time.Time `json:"assigned_at"`
	Department *string    `json:"department"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	FirstResponseAt *time.Time `json:"first_response_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	ClosedAt        *time.Time `json:"closed_at"`
	DueDate         *time.Time `json:"due_date"`

	ResponseTimeMinutes   *int `json:"response_time_minutes"`
	ResolutionTimeMinutes *int `json:"resolution_time_minutes"`

	Tags               []string `json:"tags"`
	SatisfactionRating *int     `json:"satisfaction_rating"`
	ReopenedCount      int      `json:"reopened_count"`
	Escalated          bool     `json:"escalated"`
	Notes              *string  `json:"notes"`
}

// FromTicket maps the domain aggregate onto the wire shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                    t.ID,
		TicketNumber:          t.TicketNumber,
		Title:                 t.Title,
		Description:           t.Description,
		Category:              t.Category,
		Priority:              t.Priority,
		Status:                t.Status,
		CustomerName:          t.CustomerName,
		CustomerEmail:         t.CustomerEmail,
		CustomerPhone:         t.CustomerPhone,
		CustomerID:            t.CustomerID,
		AssignedTo:            t.AssignedTo,
		AssignedAt:            t.AssignedAt,
		Department:            t.Department,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		FirstResponseAt:       t.FirstResponseAt,
		ResolvedAt:            t.ResolvedAt,
		ClosedAt:              t.ClosedAt,
		DueDate:               t.DueDate,
		ResponseTimeMinutes:   t.ResponseTimeMinutes,
		ResolutionTimeMinutes: t.ResolutionTimeMinutes,
		Tags:                  t.Tags,
		SatisfactionRating:    t.SatisfactionRating,
		ReopenedCount:         t.ReopenedCount,
		Escalated:             t.Escalated,
		Notes:                 t.Notes,
	}
}
