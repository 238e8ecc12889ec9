package models

import "time"

// BookingEvent is published to Kafka on every booking lifecycle change and
// consumed by the notify worker.
type BookingEvent struct {
	Type       string        `json:"type"` // created, confirmed, cancelled
	BookingID  string        `json:"booking_id"`
	RoomID     string        `json:"room_id"`
	GuestID    string        `json:"guest_id"`
	GuestEmail string        `json:"guest_email,omitempty"`
	Status     BookingStatus `json:"status"`
	TotalPrice float64       `json:"total_price"`
	Timestamp  time.Time     `json:"timestamp"`
}

const (
	BookingEventCreated   = "created"
	BookingEventConfirmed = "confirmed"
	BookingEventCancelled = "cancelled"
)
