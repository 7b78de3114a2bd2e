package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, deleted int
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		created++
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(ctx context.Context, e Event) error {
		deleted++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketDeleted}))

	assert.Equal(t, 2, created)
	assert.Equal(t, 1, deleted)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	var second bool
	d.Subscribe(EventResponseSent, func(ctx context.Context, e Event) error {
		return errors.New("handler failed")
	})
	d.Subscribe(EventResponseSent, func(ctx context.Context, e Event) error {
		second = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventResponseSent})
	assert.NoError(t, err, "handler errors never reach the publisher")
	assert.True(t, second, "a failing handler does not block later handlers")
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventResponseFailed}))
}
