package sse

import (
	"context"
	"sync"

	"staysync/internal/models"
)

// BookingEventEmitter fans booking lifecycle events out to connected admin
// console streams.
type BookingEventEmitter struct {
	clients     []chan models.BookingEvent
	clientMutex sync.RWMutex
}

func NewBookingEventEmitter() *BookingEventEmitter {
	return &BookingEventEmitter{}
}

// Subscribe adds a client stream; it is removed when ctx is done.
func (e *BookingEventEmitter) Subscribe(ctx context.Context) chan models.BookingEvent {
	clientChan := make(chan models.BookingEvent, 10)

	e.clientMutex.Lock()
	e.clients = append(e.clients, clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(clientChan)
	}()

	return clientChan
}

// Emit broadcasts an event to all subscribers. Sends are non-blocking so a
// slow admin console cannot stall the emitter.
func (e *BookingEventEmitter) Emit(event models.BookingEvent) {
	e.clientMutex.RLock()
	clients := make([]chan models.BookingEvent, len(e.clients))
	copy(clients, e.clients)
	e.clientMutex.RUnlock()

	for _, clientChan := range clients {
		select {
		case clientChan <- event:
		default:
			// client buffer full, drop
		}
	}
}

func (e *BookingEventEmitter) removeClient(clientChan chan models.BookingEvent) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	for i, c := range e.clients {
		if c == clientChan {
			e.clients = append(e.clients[:i], e.clients[i+1:]...)
			close(c)
			return
		}
	}
}
