package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// bookingTransitions is the full set of legal status edges. completed is
// terminal and has no outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
	BookingCancelled: {BookingPending},
	BookingCompleted: {},
}

// CanTransition reports whether moving a booking from one status to another
// is a legal edge of the state machine.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID    string        `bun:"booking_id,pk" json:"booking_id"`
	GuestID      string        `bun:"guest_id,notnull" json:"guest_id"`
	GuestEmail   string        `bun:"guest_email,nullzero" json:"guest_email,omitempty"`
	RoomID       string        `bun:"room_id,notnull" json:"room_id"`
	CheckInDate  time.Time     `bun:"check_in_date,notnull" json:"check_in_date"`
	CheckOutDate time.Time     `bun:"check_out_date,notnull" json:"check_out_date"`
	TotalPrice   float64       `bun:"total_price,notnull" json:"total_price"`
	Status       BookingStatus `bun:"status,notnull" json:"status"`
	CreatedAt    time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time     `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// Nights returns the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

type BookingRequest struct {
	RoomID       string `json:"room_id"`
	CheckInDate  string `json:"check_in_date"`  // YYYY-MM-DD
	CheckOutDate string `json:"check_out_date"` // YYYY-MM-DD
}

type OverrideStatusRequest struct {
	Status BookingStatus `json:"status"`
}
