package domain

import "context"

type HotelStore interface {
	// Read paths
	HotelsByCity(ctx context.Context, city string) ([]Hotel, error)
	AllHotels(ctx context.Context) ([]Hotel, error)

	// Write path (catalog loader only)
	PutHotel(ctx context.Context, h Hotel) error
}

type ReservationStore interface {
	// CreateReservation fails with ErrPreconditionFailed when a reservation with the same (booking_id, guest_email) already exists.
	CreateReservation(ctx context.Context, r Reservation) error
	// ReservationsByGuest returns newest first. A nil status means no status filter.
	ReservationsByGuest(ctx context.Context, guestEmail string, status *string) ([]Reservation, error)
	// UpdateReservation fails with ErrPreconditionFailed when the key does not exist.
	UpdateReservation(ctx context.Context, key ReservationKey, changes []FieldChange) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

// Advisor answers free-text guest questions from a knowledge base.
type Advisor interface {
	Ask(ctx context.Context, query string) (Advice, error)
}

type Advice struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

type Citation struct {
	Text      string `json:"text,omitempty"`
	SourceURI string `json:"source_uri,omitempty"`
}
