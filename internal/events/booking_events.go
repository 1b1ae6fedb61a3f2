// Package events defines the booking lifecycle events published to Kafka.
package events

import "time"

const (
	// Source identifies this service in published CloudEvents.
	Source = "service-booking"

	// TopicBookingEvents is the default topic for booking lifecycle events.
	TopicBookingEvents = "booking.events"

	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
)

// BookingCreatedEvent is published after a booking is committed.
type BookingCreatedEvent struct {
	BookingID     int64     `json:"booking_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Version       int64     `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingUpdatedEvent is published after an update is committed. The
// previous slot lets consumers release it.
type BookingUpdatedEvent struct {
	BookingID    int64     `json:"booking_id"`
	PreviousDate string    `json:"previous_date"`
	PreviousTime string    `json:"previous_time"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Version      int64     `json:"version"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a booking is deleted.
type BookingCancelledEvent struct {
	BookingID  int64     `json:"booking_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	OccurredAt time.Time `json:"occurred_at"`
}
