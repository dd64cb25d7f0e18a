package domain

import "time"

type EventType string

const (
	EventBookingCreated   EventType = "BookingCreated"
	EventBookingModified  EventType = "BookingModified"
	EventBookingCancelled EventType = "BookingCancelled"
)

// ReservationEvent is emitted after a successful write. Reservation is set for
// BookingCreated; Changes is set for modifications.
type ReservationEvent struct {
	Type        EventType      `json:"type"`
	BookingID   string         `json:"booking_id"`
	GuestEmail  string         `json:"guest_email"`
	Reservation *Reservation   `json:"reservation,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}
