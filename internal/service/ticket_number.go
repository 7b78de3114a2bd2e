package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TicketNumberAllocator issues human-facing ticket numbers such as
// "TAX-2025-0001". Numbers come from a per-year Redis counter; when Redis is
// unreachable the allocator degrades to a uuid-derived suffix, which stays
// unique but is not sequential.
type TicketNumberAllocator struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewTicketNumberAllocator builds the allocator. client may be nil.
func NewTicketNumberAllocator(client *redis.Client, prefix string, logger *zap.Logger) *TicketNumberAllocator {
	if prefix == "" {
		prefix = "TAX"
	}
	return &TicketNumberAllocator{client: client, prefix: prefix, logger: logger}
}

// Next returns the next ticket number.
func (a *TicketNumberAllocator) Next(ctx context.Context, now time.Time) string {
	year := now.Year()
	if a.client != nil {
		seq, err := a.client.Incr(ctx, fmt.Sprintf("ticket_seq:%d", year)).Result()
		if err == nil {
			return fmt.Sprintf("%s-%d-%04d", a.prefix, year, seq)
		}
		a.logger.Warn("ticket number sequence unavailable, falling back to random suffix", zap.Error(err))
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", a.prefix, year, suffix)
}
