package notification

import "fmt"

const (
	subjectBookingCreated   = "StaySync – Booking Created"
	subjectBookingConfirmed = "StaySync – Booking Confirmed"
	subjectBookingCancelled = "StaySync – Booking Cancelled"
)

func bookingCreatedBody(bookingID string) string {
	return fmt.Sprintf("<p>Your booking <b>%s</b> has been created and is awaiting payment.</p>", bookingID)
}

func bookingConfirmedBody(bookingID string) string {
	return fmt.Sprintf("<p>Your booking <b>%s</b> is confirmed. We look forward to your stay!</p>", bookingID)
}

func bookingCancelledBody(bookingID string) string {
	return fmt.Sprintf("<p>Your booking <b>%s</b> has been cancelled.</p>", bookingID)
}
