package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

const (
	citiesKey         = "catalog:cities"
	reservationPrefix = "reservation:"
)

func cityKey(city string) string { return "catalog:city:" + city }

func reservationKey(k domain.ReservationKey) string {
	return reservationPrefix + k.BookingID + ":" + k.GuestEmail
}

func guestIndexKey(email string) string { return "reservations:guest:" + email }

// Store keeps hotels and reservations in Redis. Conditional writes run as Lua
// scripts so the existence check and the write are atomic.
type Store struct{ c *redis.Client }

func NewStore(c *redis.Client) *Store { return &Store{c: c} }

// ---- hotels ----

func (s *Store) PutHotel(ctx context.Context, h domain.Hotel) (err error) {
	defer observe("put_hotel", time.Now(), &err)
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	_, err = s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, cityKey(h.City), h.HotelID, b)
		p.SAdd(ctx, citiesKey, h.City)
		return nil
	})
	return err
}

func (s *Store) HotelsByCity(ctx context.Context, city string) (out []domain.Hotel, err error) {
	defer observe("hotels_by_city", time.Now(), &err)
	vals, err := s.c.HVals(ctx, cityKey(city)).Result()
	if err != nil {
		return nil, err
	}
	return decodeHotels(vals)
}

func (s *Store) AllHotels(ctx context.Context) (out []domain.Hotel, err error) {
	defer observe("scan_hotels", time.Now(), &err)
	cities, err := s.c.SMembers(ctx, citiesKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(cities)

	cmds := make([]*redis.StringSliceCmd, len(cities))
	_, err = s.c.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, c := range cities {
			cmds[i] = p.HVals(ctx, cityKey(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		hs, err := decodeHotels(cmd.Val())
		if err != nil {
			return nil, err
		}
		out = append(out, hs...)
	}
	return out, nil
}

func decodeHotels(vals []string) ([]domain.Hotel, error) {
	out := make([]domain.Hotel, 0, len(vals))
	for _, v := range vals {
		var h domain.Hotel
		if err := json.Unmarshal([]byte(v), &h); err != nil {
			return nil, fmt.Errorf("decode hotel: %w", err)
		}
		out = append(out, h)
	}
	// HVALS order is unspecified; keep results deterministic.
	sort.SliceStable(out, func(i, j int) bool { return out[i].HotelID < out[j].HotelID })
	return out, nil
}

// ---- reservations ----

func (s *Store) CreateReservation(ctx context.Context, r domain.Reservation) (err error) {
	defer observe("create_reservation", time.Now(), &err)
	args := []any{r.CreatedAt.UnixMicro(), r.BookingID}
	args = append(args, reservationFields(r)...)

	ok, err := createReservationScript.Run(ctx, s.c,
		[]string{reservationKey(r.Key()), guestIndexKey(r.GuestEmail)}, args...).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return fmt.Errorf("booking %s: %w", r.BookingID, domain.ErrPreconditionFailed)
	}
	return nil
}

func (s *Store) UpdateReservation(ctx context.Context, key domain.ReservationKey, changes []domain.FieldChange) (err error) {
	defer observe("update_reservation", time.Now(), &err)
	args := make([]any, 0, 2*len(changes))
	for _, c := range changes {
		if !patchable[c.Field] {
			return fmt.Errorf("field %q is not updatable", c.Field)
		}
		v, err := encodeValue(c.Value)
		if err != nil {
			return fmt.Errorf("field %s: %w", c.Field, err)
		}
		args = append(args, c.Field, v)
	}
	ok, err := updateReservationScript.Run(ctx, s.c, []string{reservationKey(key)}, args...).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return fmt.Errorf("booking %s: %w", key.BookingID, domain.ErrPreconditionFailed)
	}
	return nil
}

func (s *Store) ReservationsByGuest(ctx context.Context, email string, status *string) (out []domain.Reservation, err error) {
	defer observe("reservations_by_guest", time.Now(), &err)
	st := ""
	if status != nil {
		st = *status
	}
	rows, err := guestReservationsScript.Run(ctx, s.c,
		[]string{guestIndexKey(email)}, reservationPrefix, email, st).Slice()
	if err != nil {
		return nil, err
	}
	out = make([]domain.Reservation, 0, len(rows))
	for _, row := range rows {
		flat, ok := row.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", row)
		}
		r, err := decodeReservation(flat)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

var patchable = map[string]bool{
	domain.FieldCheckInDate:   true,
	domain.FieldNights:        true,
	domain.FieldRoomsBooked:   true,
	domain.FieldPricePerNight: true,
	domain.FieldTotalPrice:    true,
	domain.FieldStatus:        true,
	domain.FieldUpdatedAt:     true,
}

func reservationFields(r domain.Reservation) []any {
	return []any{
		"booking_id", r.BookingID,
		"guest_email", r.GuestEmail,
		"hotel_id", r.HotelID,
		"city", r.City,
		"hotel_name", r.HotelName,
		"check_in_date", r.CheckInDate,
		"check_out_date", r.CheckOutDate,
		"nights", strconv.Itoa(r.Nights),
		"rooms_booked", strconv.Itoa(r.RoomsBooked),
		"price_per_night", formatFloat(r.PricePerNight),
		"total_price", formatFloat(r.TotalPrice),
		"status", r.Status,
		"created_at", r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func encodeValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return formatFloat(t), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// decodeReservation rebuilds a typed reservation from an HGETALL field/value list.
func decodeReservation(flat []any) (domain.Reservation, error) {
	var r domain.Reservation
	for i := 0; i+1 < len(flat); i += 2 {
		k, _ := flat[i].(string)
		v, _ := flat[i+1].(string)
		var err error
		switch k {
		case "booking_id":
			r.BookingID = v
		case "guest_email":
			r.GuestEmail = v
		case "hotel_id":
			r.HotelID = v
		case "city":
			r.City = v
		case "hotel_name":
			r.HotelName = v
		case "check_in_date":
			r.CheckInDate = v
		case "check_out_date":
			r.CheckOutDate = v
		case "nights":
			r.Nights, err = strconv.Atoi(v)
		case "rooms_booked":
			r.RoomsBooked, err = strconv.Atoi(v)
		case "price_per_night":
			r.PricePerNight, err = strconv.ParseFloat(v, 64)
		case "total_price":
			r.TotalPrice, err = strconv.ParseFloat(v, 64)
		case "status":
			r.Status = v
		case "created_at":
			r.CreatedAt, err = time.Parse(time.RFC3339Nano, v)
		case "updated_at":
			r.UpdatedAt, err = time.Parse(time.RFC3339Nano, v)
		}
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("decode %s: %w", k, err)
		}
	}
	return r, nil
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveExternal("redis", op, *err, time.Since(start))
}
