package sse

import (
	"context"
	"testing"
	"time"

	"staysync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitReachesAllSubscribers(t *testing.T) {
	e := NewBookingEventEmitter()
	ctx := context.Background()

	a := e.Subscribe(ctx)
	b := e.Subscribe(ctx)

	e.Emit(models.BookingEvent{Type: models.BookingEventConfirmed, BookingID: "booking-1"})

	for _, ch := range []chan models.BookingEvent{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, "booking-1", ev.BookingID)
			assert.Equal(t, models.BookingEventConfirmed, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestSubscriberRemovedOnContextDone(t *testing.T) {
	e := NewBookingEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	ch := e.Subscribe(ctx)
	cancel()

	// The channel is closed once the removal goroutine runs.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	// Emitting afterwards must not panic or block.
	e.Emit(models.BookingEvent{Type: models.BookingEventCancelled, BookingID: "booking-2"})
}

func TestEmitDropsWhenSubscriberIsFull(t *testing.T) {
	e := NewBookingEventEmitter()
	ch := e.Subscribe(context.Background())

	// Fill the buffer past capacity; Emit must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			e.Emit(models.BookingEvent{Type: models.BookingEventCreated, BookingID: "booking-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full subscriber")
	}

	assert.Len(t, ch, 10, "buffer holds at most its capacity")
}
