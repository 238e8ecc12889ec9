package kafka

import (
	"encoding/json"
	"time"

	"staysync/internal/config"
	"staysync/internal/models"
)

// Emitter receives booking events for in-process fan-out (the admin SSE
// stream) alongside the Kafka publish.
type Emitter interface {
	Emit(event models.BookingEvent)
}

// EventPublisher maps booking lifecycle changes onto their Kafka topics.
type EventPublisher struct {
	Producer *Producer
	Topics   config.TopicConfig
	Emitter  Emitter // optional
}

func NewEventPublisher(producer *Producer, topics config.TopicConfig, emitter Emitter) *EventPublisher {
	return &EventPublisher{Producer: producer, Topics: topics, Emitter: emitter}
}

func (p *EventPublisher) PublishBookingCreated(booking models.Booking) error {
	return p.publishBooking(p.Topics.BookingCreated, models.BookingEventCreated, booking)
}

func (p *EventPublisher) PublishBookingConfirmed(booking models.Booking) error {
	return p.publishBooking(p.Topics.BookingConfirmed, models.BookingEventConfirmed, booking)
}

func (p *EventPublisher) PublishBookingCancelled(booking models.Booking) error {
	return p.publishBooking(p.Topics.BookingCancelled, models.BookingEventCancelled, booking)
}

func (p *EventPublisher) PublishPaymentRecorded(payment models.Payment) error {
	if p.Producer == nil {
		return nil
	}
	msgBytes, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return p.Producer.Publish(p.Topics.PaymentRecorded, payment.BookingID, msgBytes)
}

func (p *EventPublisher) publishBooking(topic, eventType string, booking models.Booking) error {
	event := models.BookingEvent{
		Type:       eventType,
		BookingID:  booking.BookingID,
		RoomID:     booking.RoomID,
		GuestID:    booking.GuestID,
		GuestEmail: booking.GuestEmail,
		Status:     booking.Status,
		TotalPrice: booking.TotalPrice,
		Timestamp:  time.Now(),
	}

	if p.Emitter != nil {
		p.Emitter.Emit(event)
	}

	// Producer is nil when Kafka is disabled; the SSE fan-out above still ran.
	if p.Producer == nil {
		return nil
	}

	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Producer.Publish(topic, booking.BookingID, msgBytes)
}
