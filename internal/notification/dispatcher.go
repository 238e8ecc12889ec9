package notification

import (
	"fmt"

	"staysync/internal/logger"
	"staysync/internal/models"
)

// Dispatcher sends guest emails off the request path. Every dispatch runs in
// its own goroutine; failures are logged and never reach the caller, so a
// broken mail relay cannot block or roll back a reconciliation.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
}

func NewDispatcher(notifier Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log}
}

func (d *Dispatcher) BookingCreated(booking *models.Booking) {
	d.dispatch(booking, subjectBookingCreated, bookingCreatedBody(booking.BookingID))
}

func (d *Dispatcher) BookingConfirmed(booking *models.Booking) {
	d.dispatch(booking, subjectBookingConfirmed, bookingConfirmedBody(booking.BookingID))
}

func (d *Dispatcher) BookingCancelled(booking *models.Booking) {
	d.dispatch(booking, subjectBookingCancelled, bookingCancelledBody(booking.BookingID))
}

// HandleEvent maps a consumed booking event onto the matching guest email.
// Unknown event types are logged and dropped.
func (d *Dispatcher) HandleEvent(event models.BookingEvent) {
	booking := &models.Booking{
		BookingID:  event.BookingID,
		GuestID:    event.GuestID,
		GuestEmail: event.GuestEmail,
		RoomID:     event.RoomID,
		Status:     event.Status,
	}

	switch event.Type {
	case models.BookingEventCreated:
		d.BookingCreated(booking)
	case models.BookingEventConfirmed:
		d.BookingConfirmed(booking)
	case models.BookingEventCancelled:
		d.BookingCancelled(booking)
	default:
		d.log.Warn("NOTIFY", fmt.Sprintf("unknown booking event type %q for booking %s", event.Type, event.BookingID))
	}
}

func (d *Dispatcher) dispatch(booking *models.Booking, subject, body string) {
	if booking.GuestEmail == "" {
		d.log.Warn("NOTIFY", fmt.Sprintf("booking %s has no guest email, skipping notification", booking.BookingID))
		return
	}

	go func() {
		if err := d.notifier.Send(booking.GuestEmail, subject, body); err != nil {
			d.log.Error("NOTIFY", fmt.Sprintf("failed to notify guest for booking %s: %v", booking.BookingID, err))
			return
		}
		d.log.Info("NOTIFY", fmt.Sprintf("sent %q for booking %s", subject, booking.BookingID))
	}()
}
