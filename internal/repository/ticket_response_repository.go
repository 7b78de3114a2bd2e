package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supportkit/case-service/internal/domain"
)

// TicketResponseRepository manages the append-only communication log.
type TicketResponseRepository interface {
	// Create persists a response row in the pending state, before any
	// network attempt is made.
	Create(ctx context.Context, resp *domain.TicketResponse) error
	MarkSent(ctx context.Context, id int64, sentAt time.Time, messageID string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error)
}

type ticketResponseRepository struct {
	pool *pgxpool.Pool
}

// NewTicketResponseRepository instantiates the pgx-backed repository.
func NewTicketResponseRepository(pool *pgxpool.Pool) TicketResponseRepository {
	return &ticketResponseRepository{pool: pool}
}

func (r *ticketResponseRepository) Create(ctx context.Context, resp *domain.TicketResponse) error {
	const query = `
        INSERT INTO ticket_responses (ticket_id, subject, response_text, sent_to, sent_by, email_status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	resp.EmailStatus = domain.EmailStatusPending
	return r.pool.QueryRow(ctx, query,
		resp.TicketID,
		resp.Subject,
		resp.ResponseText,
		resp.SentTo,
		resp.SentBy,
		resp.EmailStatus,
	).Scan(&resp.ID, &resp.CreatedAt)
}

func (r *ticketResponseRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time, messageID string) error {
	const query = `
        UPDATE ticket_responses SET email_status=$2, sent_at=$3, message_id=$4, error_message=NULL
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, domain.EmailStatusSent, sentAt, messageID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketResponseRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	const query = `
        UPDATE ticket_responses SET email_status=$2, error_message=$3
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, domain.EmailStatusFailed, errorMessage)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketResponseRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	const query = `
        SELECT id, ticket_id, subject, response_text, sent_to, sent_by,
               created_at, sent_at, email_status, error_message, message_id
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var resp domain.TicketResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.Subject,
			&resp.ResponseText,
			&resp.SentTo,
			&resp.SentBy,
			&resp.CreatedAt,
			&resp.SentAt,
			&resp.EmailStatus,
			&resp.ErrorMessage,
			&resp.MessageID,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}
