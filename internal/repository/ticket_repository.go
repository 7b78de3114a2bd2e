package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supportkit/case-service/internal/domain"
)

// TicketFilter captures listing parameters. Absent fields impose no
// constraint; present fields are an exact-match conjunction.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Category *string
}

// TicketPatch holds partial-update fields. Nil fields are left untouched.
// Timeline stamps (AssignedAt, ResolvedAt, ClosedAt) and derived metrics are
// written by the service layer only; the HTTP boundary never maps them.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Category    *string
	Priority    *domain.TicketPriority

	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string

	AssignedTo *string
	AssignedAt *time.Time
	Department *string

	ResolvedAt            *time.Time
	ClosedAt              *time.Time
	DueDate               *time.Time
	ResolutionTimeMinutes *int

	Tags               *[]string
	SatisfactionRating *int
	ReopenedCount      *int
	Escalated          *bool
	Notes              *string
}

// Empty reports whether the patch carries no fields.
func (p TicketPatch) Empty() bool {
	return p == TicketPatch{}
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error)
	// SetFirstResponse stamps first_response_at and the derived response time
	// only when first_response_at is still unset. Returns whether the stamp
	// was applied, so concurrent senders lose the race cleanly.
	SetFirstResponse(ctx context.Context, id int64, at time.Time, minutes int) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the pgx-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, category, priority, status,
       customer_name, customer_email, customer_phone, customer_id,
       assigned_to, assigned_at, department,
       created_at, updated_at, first_response_at, resolved_at, closed_at, due_date,
       response_time_minutes, resolution_time_minutes,
       tags, satisfaction_rating, reopened_count, escalated, notes`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, title, description, category, priority, status,
            customer_name, customer_email, customer_phone, customer_id,
            assigned_to, department, due_date, tags, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerPhone,
		ticket.CustomerID,
		ticket.AssignedTo,
		ticket.Department,
		ticket.DueDate,
		ticket.Tags,
		ticket.Notes,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Update(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error) {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.CustomerName != nil {
		add("customer_name", *patch.CustomerName)
	}
	if patch.CustomerEmail != nil {
		add("customer_email", *patch.CustomerEmail)
	}
	if patch.CustomerPhone != nil {
		add("customer_phone", *patch.CustomerPhone)
	}
	if patch.CustomerID != nil {
		add("customer_id", *patch.CustomerID)
	}
	if patch.AssignedTo != nil {
		add("assigned_to", *patch.AssignedTo)
	}
	if patch.AssignedAt != nil {
		add("assigned_at", *patch.AssignedAt)
	}
	if patch.Department != nil {
		add("department", *patch.Department)
	}
	if patch.ResolvedAt != nil {
		add("resolved_at", *patch.ResolvedAt)
	}
	if patch.ClosedAt != nil {
		add("closed_at", *patch.ClosedAt)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.ResolutionTimeMinutes != nil {
		add("resolution_time_minutes", *patch.ResolutionTimeMinutes)
	}
	if patch.Tags != nil {
		add("tags", *patch.Tags)
	}
	if patch.SatisfactionRating != nil {
		add("satisfaction_rating", *patch.SatisfactionRating)
	}
	if patch.ReopenedCount != nil {
		add("reopened_count", *patch.ReopenedCount)
	}
	if patch.Escalated != nil {
		add("escalated", *patch.Escalated)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, args...), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) SetFirstResponse(ctx context.Context, id int64, at time.Time, minutes int) (bool, error) {
	const query = `
        UPDATE tickets SET first_response_at=$2, response_time_minutes=$3, updated_at=NOW()
        WHERE id=$1 AND first_response_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id, at, minutes)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.CustomerPhone,
		&ticket.CustomerID,
		&ticket.AssignedTo,
		&ticket.AssignedAt,
		&ticket.Department,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.DueDate,
		&ticket.ResponseTimeMinutes,
		&ticket.ResolutionTimeMinutes,
		&ticket.Tags,
		&ticket.SatisfactionRating,
		&ticket.ReopenedCount,
		&ticket.Escalated,
		&ticket.Notes,
	)
}
