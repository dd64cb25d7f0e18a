package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/domain"
)

func newStore(t *testing.T) (*redisad.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return redisad.NewStore(c), mr
}

func reservation(id, email string, created time.Time) domain.Reservation {
	return domain.Reservation{
		BookingID:     id,
		GuestEmail:    email,
		HotelID:       "h-1",
		City:          "Lisbon",
		HotelName:     "Alfama Rooms",
		CheckInDate:   "2026-05-01",
		CheckOutDate:  "2026-05-04",
		Nights:        3,
		RoomsBooked:   2,
		PricePerNight: 100,
		TotalPrice:    600,
		Status:        domain.StatusConfirmed,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestStore_CityNamesDoNotCollideWithIndexKeys(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutHotel(ctx, domain.Hotel{HotelID: "l1", City: "Lisbon"}))
	for _, city := range []string{"cities", "city", "city:Lisbon"} {
		require.NoError(t, s.PutHotel(ctx, domain.Hotel{HotelID: "x", City: city}), city)
	}

	all, err := s.AllHotels(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	hs, err := s.HotelsByCity(ctx, "cities")
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "cities", hs[0].City)

	members, err := mr.SMembers("catalog:cities")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Lisbon", "cities", "city", "city:Lisbon"}, members)
}

func TestStore_Hotels(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, h := range []domain.Hotel{
		{HotelID: "b", City: "Lisbon", Name: "B", Amenities: []string{"wifi"}},
		{HotelID: "a", City: "Lisbon", Name: "A"},
		{HotelID: "c", City: "Porto", Name: "C"},
	} {
		require.NoError(t, s.PutHotel(ctx, h))
	}

	lisbon, err := s.HotelsByCity(ctx, "Lisbon")
	require.NoError(t, err)
	require.Len(t, lisbon, 2)
	assert.Equal(t, "a", lisbon[0].HotelID)
	assert.Equal(t, []string{"wifi"}, lisbon[1].Amenities)

	none, err := s.HotelsByCity(ctx, "Madrid")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := s.AllHotels(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// same (hotel_id, city) overwrites
	require.NoError(t, s.PutHotel(ctx, domain.Hotel{HotelID: "a", City: "Lisbon", Name: "A2"}))
	lisbon, err = s.HotelsByCity(ctx, "Lisbon")
	require.NoError(t, err)
	require.Len(t, lisbon, 2)
	assert.Equal(t, "A2", lisbon[0].Name)
}

func TestStore_CreateReservation_ExistenceGuard(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	r := reservation("bk-1", "ana@example.com", time.Now().UTC())

	require.NoError(t, s.CreateReservation(ctx, r))
	err := s.CreateReservation(ctx, r)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	got, err := s.ReservationsByGuest(ctx, "ana@example.com", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r.TotalPrice, got[0].TotalPrice)
	assert.Equal(t, r.Nights, got[0].Nights)
	assert.True(t, r.CreatedAt.Equal(got[0].CreatedAt))
}

func TestStore_ReservationsByGuest_NewestFirstAndStatusFilter(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateReservation(ctx, reservation("bk-1", "ana@example.com", t0)))
	require.NoError(t, s.CreateReservation(ctx, reservation("bk-2", "ana@example.com", t0.Add(time.Minute))))
	require.NoError(t, s.CreateReservation(ctx, reservation("bk-3", "ana@example.com", t0.Add(2*time.Minute))))
	require.NoError(t, s.CreateReservation(ctx, reservation("bk-9", "bob@example.com", t0.Add(3*time.Minute))))

	got, err := s.ReservationsByGuest(ctx, "ana@example.com", nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"bk-3", "bk-2", "bk-1"}, ids(got))

	cancelled := domain.StatusCancelled
	require.NoError(t, s.UpdateReservation(ctx,
		domain.ReservationKey{BookingID: "bk-2", GuestEmail: "ana@example.com"},
		[]domain.FieldChange{{Field: domain.FieldStatus, Value: cancelled}, {Field: domain.FieldUpdatedAt, Value: t0.Add(time.Hour)}}))

	got, err = s.ReservationsByGuest(ctx, "ana@example.com", &cancelled)
	require.NoError(t, err)
	assert.Equal(t, []string{"bk-2"}, ids(got))

	got, err = s.ReservationsByGuest(ctx, "nobody@example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_UpdateReservation(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateReservation(ctx, reservation("bk-1", "ana@example.com", created)))

	key := domain.ReservationKey{BookingID: "bk-1", GuestEmail: "ana@example.com"}
	bumped := created.Add(time.Hour)
	require.NoError(t, s.UpdateReservation(ctx, key, []domain.FieldChange{
		{Field: domain.FieldNights, Value: 5},
		{Field: domain.FieldTotalPrice, Value: 999.5},
		{Field: domain.FieldUpdatedAt, Value: bumped},
	}))

	got, err := s.ReservationsByGuest(ctx, "ana@example.com", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Nights)
	assert.Equal(t, 999.5, got[0].TotalPrice)
	assert.Equal(t, 2, got[0].RoomsBooked)
	assert.True(t, bumped.Equal(got[0].UpdatedAt))
	assert.Equal(t, "2026-05-04", got[0].CheckOutDate)

	t.Run("missing key does not create a record", func(t *testing.T) {
		missing := domain.ReservationKey{BookingID: "bk-404", GuestEmail: "ana@example.com"}
		err := s.UpdateReservation(ctx, missing, []domain.FieldChange{{Field: domain.FieldNights, Value: 2}})
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
		assert.False(t, mr.Exists("reservation:bk-404:ana@example.com"))
	})

	t.Run("wrong guest for an existing booking", func(t *testing.T) {
		other := domain.ReservationKey{BookingID: "bk-1", GuestEmail: "eve@example.com"}
		err := s.UpdateReservation(ctx, other, []domain.FieldChange{{Field: domain.FieldNights, Value: 2}})
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("undeclared field is refused", func(t *testing.T) {
		err := s.UpdateReservation(ctx, key, []domain.FieldChange{{Field: "booking_id", Value: "x"}})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrPreconditionFailed)
	})
}

func ids(rs []domain.Reservation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.BookingID
	}
	return out
}
