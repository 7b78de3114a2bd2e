package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/supportkit/case-service/internal/domain"
)

// MemoryStore is an in-memory implementation of both repositories. It backs
// the service when no POSTGRES_DSN is configured and doubles as the test
// store. Missing rows surface as pgx.ErrNoRows so error mapping is identical
// to the SQL implementation.
type MemoryStore struct {
	mu        sync.Mutex
	tickets   map[int64]*domain.Ticket
	responses map[int64]*domain.TicketResponse
	nextID    int64
	nextRspID int64

	// Now is swappable for deterministic timestamps in tests.
	Now func() time.Time
}

// NewMemoryStore initializes an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:   make(map[int64]*domain.Ticket),
		responses: make(map[int64]*domain.TicketResponse),
		Now:       time.Now,
	}
}

var _ TicketRepository = (*MemoryStore)(nil)

// ResponseRepo exposes the store through the TicketResponseRepository
// interface (both repositories share one Create name, so the response side
// is a thin view).
func (s *MemoryStore) ResponseRepo() TicketResponseRepository {
	return &memoryResponseRepo{store: s}
}

type memoryResponseRepo struct {
	store *MemoryStore
}

func (r *memoryResponseRepo) Create(ctx context.Context, resp *domain.TicketResponse) error {
	return r.store.CreateResponse(ctx, resp)
}

func (r *memoryResponseRepo) MarkSent(ctx context.Context, id int64, sentAt time.Time, messageID string) error {
	return r.store.MarkSent(ctx, id, sentAt, messageID)
}

func (r *memoryResponseRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	return r.store.MarkFailed(ctx, id, errorMessage)
}

func (r *memoryResponseRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	return r.store.ListByTicket(ctx, ticketID)
}

func (s *MemoryStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.Now()
	ticket.ID = s.nextID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	stored := *ticket
	s.tickets[ticket.ID] = &stored
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (s *MemoryStore) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Ticket
	for _, stored := range s.tickets {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && stored.Category != *filter.Category {
			continue
		}
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	if patch.Category != nil {
		stored.Category = *patch.Category
	}
	if patch.Priority != nil {
		stored.Priority = *patch.Priority
	}
	if patch.CustomerName != nil {
		stored.CustomerName = patch.CustomerName
	}
	if patch.CustomerEmail != nil {
		stored.CustomerEmail = patch.CustomerEmail
	}
	if patch.CustomerPhone != nil {
		stored.CustomerPhone = patch.CustomerPhone
	}
	if patch.CustomerID != nil {
		stored.CustomerID = patch.CustomerID
	}
	if patch.AssignedTo != nil {
		stored.AssignedTo = patch.AssignedTo
	}
	if patch.AssignedAt != nil {
		stored.AssignedAt = patch.AssignedAt
	}
	if patch.Department != nil {
		stored.Department = patch.Department
	}
	if patch.ResolvedAt != nil {
		stored.ResolvedAt = patch.ResolvedAt
	}
	if patch.ClosedAt != nil {
		stored.ClosedAt = patch.ClosedAt
	}
	if patch.DueDate != nil {
		stored.DueDate = patch.DueDate
	}
	if patch.ResolutionTimeMinutes != nil {
		stored.ResolutionTimeMinutes = patch.ResolutionTimeMinutes
	}
	if patch.Tags != nil {
		stored.Tags = *patch.Tags
	}
	if patch.SatisfactionRating != nil {
		stored.SatisfactionRating = patch.SatisfactionRating
	}
	if patch.ReopenedCount != nil {
		stored.ReopenedCount = *patch.ReopenedCount
	}
	if patch.Escalated != nil {
		stored.Escalated = *patch.Escalated
	}
	if patch.Notes != nil {
		stored.Notes = patch.Notes
	}
	stored.UpdatedAt = s.Now()

	copied := *stored
	return &copied, nil
}

func (s *MemoryStore) SetFirstResponse(ctx context.Context, id int64, at time.Time, minutes int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if stored.FirstResponseAt != nil {
		return false, nil
	}
	stamp := at
	stored.FirstResponseAt = &stamp
	m := minutes
	stored.ResponseTimeMinutes = &m
	stored.UpdatedAt = s.Now()
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.tickets, id)
	for rid, resp := range s.responses {
		if resp.TicketID == id {
			delete(s.responses, rid)
		}
	}
	return nil
}

// CreateResponse persists a response row in the pending state.
func (s *MemoryStore) CreateResponse(ctx context.Context, resp *domain.TicketResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[resp.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	s.nextRspID++
	resp.ID = s.nextRspID
	resp.CreatedAt = s.Now()
	resp.EmailStatus = domain.EmailStatusPending

	stored := *resp
	s.responses[resp.ID] = &stored
	return nil
}

func (s *MemoryStore) MarkSent(ctx context.Context, id int64, sentAt time.Time, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.responses[id]
	if !ok {
		return pgx.ErrNoRows
	}
	at := sentAt
	mid := messageID
	stored.EmailStatus = domain.EmailStatusSent
	stored.SentAt = &at
	stored.MessageID = &mid
	stored.ErrorMessage = nil
	return nil
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.responses[id]
	if !ok {
		return pgx.ErrNoRows
	}
	msg := errorMessage
	stored.EmailStatus = domain.EmailStatusFailed
	stored.ErrorMessage = &msg
	return nil
}

func (s *MemoryStore) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.TicketResponse
	for _, stored := range s.responses {
		if stored.TicketID == ticketID {
			result = append(result, *stored)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
