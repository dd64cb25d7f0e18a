package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// MySQL error number for a duplicate primary key.
const errDupEntry = 1062

// updatable maps patch fields to their columns. Only these may appear in an UPDATE.
var updatable = map[string]string{
	domain.FieldCheckInDate:   "check_in_date",
	domain.FieldNights:        "nights",
	domain.FieldRoomsBooked:   "rooms_booked",
	domain.FieldPricePerNight: "price_per_night",
	domain.FieldTotalPrice:    "total_price",
	domain.FieldStatus:        "status",
	domain.FieldUpdatedAt:     "updated_at",
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- hotels ----

func (r *Repo) PutHotel(ctx context.Context, h domain.Hotel) (err error) {
	defer observe("put_hotel", time.Now(), &err)
	amen, _ := json.Marshal(nonNil(h.Amenities))
	imgs, _ := json.Marshal(nonNil(h.Images))
	_, err = r.db.ExecContext(ctx, upsertHotelSQL,
		h.HotelID,
		h.City,
		h.Name,
		h.Address,
		h.Rating,
		h.PricePerNight,
		string(amen),
		h.DistanceFromCenterKm,
		h.AvailableRooms,
		string(imgs),
		valStr(h.Description),
	)
	return err
}

func (r *Repo) HotelsByCity(ctx context.Context, city string) (out []domain.Hotel, err error) {
	defer observe("hotels_by_city", time.Now(), &err)
	return r.queryHotels(ctx, hotelsByCitySQL, city)
}

func (r *Repo) AllHotels(ctx context.Context) (out []domain.Hotel, err error) {
	defer observe("scan_hotels", time.Now(), &err)
	return r.queryHotels(ctx, allHotelsSQL)
}

func (r *Repo) queryHotels(ctx context.Context, q string, args ...any) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		var h domain.Hotel
		var amenitiesJSON, imagesJSON []byte
		var desc sql.NullString
		if err := rows.Scan(
			&h.HotelID,
			&h.City,
			&h.Name,
			&h.Address,
			&h.Rating,
			&h.PricePerNight,
			&amenitiesJSON,
			&h.DistanceFromCenterKm,
			&h.AvailableRooms,
			&imagesJSON,
			&desc,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(amenitiesJSON, &h.Amenities); err != nil {
			return nil, fmt.Errorf("hotel %s amenities: %w", h.HotelID, err)
		}
		if err := json.Unmarshal(imagesJSON, &h.Images); err != nil {
			return nil, fmt.Errorf("hotel %s images: %w", h.HotelID, err)
		}
		if desc.Valid {
			h.Description = desc.String
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ---- reservations ----

func (r *Repo) CreateReservation(ctx context.Context, res domain.Reservation) (err error) {
	defer observe("create_reservation", time.Now(), &err)
	_, err = r.db.ExecContext(ctx, insertReservationSQL,
		res.BookingID,
		res.GuestEmail,
		res.HotelID,
		res.City,
		res.HotelName,
		res.CheckInDate,
		res.CheckOutDate,
		res.Nights,
		res.RoomsBooked,
		res.PricePerNight,
		res.TotalPrice,
		res.Status,
		res.CreatedAt.UTC(),
		res.UpdatedAt.UTC(),
	)
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("booking %s: %w", res.BookingID, domain.ErrPreconditionFailed)
	}
	return err
}

func (r *Repo) UpdateReservation(ctx context.Context, key domain.ReservationKey, changes []domain.FieldChange) (err error) {
	defer observe("update_reservation", time.Now(), &err)
	if len(changes) == 0 {
		return fmt.Errorf("update booking %s: no changes", key.BookingID)
	}

	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+2)
	for _, c := range changes {
		col, ok := updatable[c.Field]
		if !ok {
			return fmt.Errorf("field %q is not updatable", c.Field)
		}
		sets = append(sets, col+" = ?")
		if t, isTime := c.Value.(time.Time); isTime {
			args = append(args, t.UTC())
			continue
		}
		args = append(args, c.Value)
	}
	args = append(args, key.BookingID, key.GuestEmail)

	q := "UPDATE reservations SET " + strings.Join(sets, ", ") + " WHERE booking_id = ? AND guest_email = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// MySQL reports changed rows, not matched rows: an update that rewrote
	// identical values also yields 0, so confirm the row is really missing.
	var one int
	switch err := r.db.QueryRowContext(ctx, reservationExistsSQL, key.BookingID, key.GuestEmail).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("booking %s: %w", key.BookingID, domain.ErrPreconditionFailed)
	case err != nil:
		return err
	}
	return nil
}

func (r *Repo) ReservationsByGuest(ctx context.Context, email string, status *string) (out []domain.Reservation, err error) {
	defer observe("reservations_by_guest", time.Now(), &err)
	q := reservationsByGuestSQL
	args := []any{email}
	if status != nil {
		q += "\n  AND status = ?"
		args = append(args, *status)
	}
	q += reservationsByGuestOrder

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []domain.Reservation{}
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.BookingID,
			&res.GuestEmail,
			&res.HotelID,
			&res.City,
			&res.HotelName,
			&res.CheckInDate,
			&res.CheckOutDate,
			&res.Nights,
			&res.RoomsBooked,
			&res.PricePerNight,
			&res.TotalPrice,
			&res.Status,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveExternal("mysql", op, *err, time.Since(start))
}
