package domain

import (
	"math"
	"strings"
	"time"
)

// Well-known reservation statuses. Status stays an open string: callers may set any value.
const (
	StatusConfirmed = "CONFIRMED"
	StatusModified  = "MODIFIED"
	StatusCancelled = "CANCELLED"
)

// MinCheckInLead is how far ahead of "now" a check-in must be.
const MinCheckInLead = 24 * time.Hour

const DateLayout = "2006-01-02"

// MaxStatusLen bounds the open-ended status string so every backend can store it.
const MaxStatusLen = 255

// Reservation is keyed by (BookingID, GuestEmail). BookingID never changes after creation.
type Reservation struct {
	BookingID     string    `json:"booking_id"`
	GuestEmail    string    `json:"guest_email"`
	HotelID       string    `json:"hotel_id"`
	City          string    `json:"city"`
	HotelName     string    `json:"hotel_name"`
	CheckInDate   string    `json:"check_in_date"`
	CheckOutDate  string    `json:"check_out_date"`
	Nights        int       `json:"nights"`
	RoomsBooked   int       `json:"rooms_booked"`
	PricePerNight float64   `json:"price_per_night"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ReservationKey struct {
	BookingID  string
	GuestEmail string
}

func (r Reservation) Key() ReservationKey {
	return ReservationKey{BookingID: r.BookingID, GuestEmail: r.GuestEmail}
}

// Patchable reservation attributes, in the order Changes emits them.
const (
	FieldCheckInDate   = "check_in_date"
	FieldNights        = "nights"
	FieldRoomsBooked   = "rooms_booked"
	FieldPricePerNight = "price_per_night"
	FieldTotalPrice    = "total_price"
	FieldStatus        = "status"
	FieldUpdatedAt     = "updated_at"
)

// FieldChange is one attribute assignment of a partial update.
// Value is string (check_in_date, status), int (nights, rooms_booked),
// float64 (prices) or time.Time (updated_at).
type FieldChange struct {
	Field string
	Value any
}

// ReservationPatch lists the optional fields of a modification. Nil means untouched.
// TotalPrice is applied as given and is not re-derived from the other fields.
type ReservationPatch struct {
	CheckInDate   *string
	Nights        *int
	RoomsBooked   *int
	PricePerNight *float64
	TotalPrice    *float64
	Status        *string
}

// Changes returns the delta for the supplied fields followed by the updated_at bump.
// Empty strings count as absent.
func (p ReservationPatch) Changes(now time.Time) ([]FieldChange, error) {
	var out []FieldChange
	if p.CheckInDate != nil && *p.CheckInDate != "" {
		out = append(out, FieldChange{FieldCheckInDate, *p.CheckInDate})
	}
	if p.Nights != nil {
		out = append(out, FieldChange{FieldNights, *p.Nights})
	}
	if p.RoomsBooked != nil {
		out = append(out, FieldChange{FieldRoomsBooked, *p.RoomsBooked})
	}
	if p.PricePerNight != nil {
		out = append(out, FieldChange{FieldPricePerNight, *p.PricePerNight})
	}
	if p.TotalPrice != nil {
		out = append(out, FieldChange{FieldTotalPrice, *p.TotalPrice})
	}
	if p.Status != nil && *p.Status != "" {
		out = append(out, FieldChange{FieldStatus, *p.Status})
	}
	if len(out) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	return append(out, FieldChange{FieldUpdatedAt, now.UTC()}), nil
}

// ParseCheckIn accepts a calendar date (YYYY-MM-DD, read as UTC midnight) or an RFC 3339 timestamp.
func ParseCheckIn(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{DateLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Invalid("Invalid check_in_date")
}

// ValidateCheckIn parses raw and enforces MinCheckInLead relative to now.
func ValidateCheckIn(raw string, now time.Time) (time.Time, error) {
	t, err := ParseCheckIn(raw)
	if err != nil {
		return time.Time{}, err
	}
	if t.Before(now.Add(MinCheckInLead)) {
		return time.Time{}, Invalid("check_in_date must be at least 24 hours from now")
	}
	return t, nil
}

// CheckOutDate is the calendar date nights days after checkIn.
func CheckOutDate(checkIn time.Time, nights int) string {
	return checkIn.AddDate(0, 0, nights).Format(DateLayout)
}

// TotalPrice is nights × rooms × price per night, rounded to cents.
func TotalPrice(nights, rooms int, pricePerNight float64) float64 {
	return Round2(float64(nights) * float64(rooms) * pricePerNight)
}

func Round2(v float64) float64 { return math.Round(v*100) / 100 }
