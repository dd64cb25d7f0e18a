package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"stayfinder/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// ---- hotels ----

type fakeHotelStore struct {
	hotels    []domain.Hotel
	byCity    int
	scans     int
	puts      []domain.Hotel
	err       error
	putErrFor string
}

func (f *fakeHotelStore) HotelsByCity(ctx context.Context, city string) ([]domain.Hotel, error) {
	f.byCity++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Hotel
	for _, h := range f.hotels {
		if h.City == city {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHotelStore) AllHotels(ctx context.Context) ([]domain.Hotel, error) {
	f.scans++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Hotel(nil), f.hotels...), nil
}

func (f *fakeHotelStore) PutHotel(ctx context.Context, h domain.Hotel) error {
	if h.HotelID == f.putErrFor {
		return errors.New("disk full")
	}
	f.puts = append(f.puts, h)
	return nil
}

// fakeCache round-trips through JSON like the Redis cache does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- reservations ----

type fakeReservationStore struct {
	mu      sync.Mutex
	rows    map[domain.ReservationKey]domain.Reservation
	creates int
	updates int
	err     error
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{rows: map[domain.ReservationKey]domain.Reservation{}}
}

func (f *fakeReservationStore) CreateReservation(ctx context.Context, r domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.err != nil {
		return f.err
	}
	for k := range f.rows {
		if k.BookingID == r.BookingID {
			return domain.ErrPreconditionFailed
		}
	}
	f.rows[r.Key()] = r
	return nil
}

func (f *fakeReservationStore) ReservationsByGuest(ctx context.Context, email string, status *string) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Reservation
	for k, r := range f.rows {
		if k.GuestEmail != email || (status != nil && r.Status != *status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeReservationStore) UpdateReservation(ctx context.Context, key domain.ReservationKey, changes []domain.FieldChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.err != nil {
		return f.err
	}
	r, ok := f.rows[key]
	if !ok {
		return domain.ErrPreconditionFailed
	}
	for _, c := range changes {
		switch c.Field {
		case domain.FieldStatus:
			r.Status = c.Value.(string)
		case domain.FieldNights:
			r.Nights = c.Value.(int)
		case domain.FieldCheckInDate:
			r.CheckInDate = c.Value.(string)
		}
	}
	f.rows[key] = r
	return nil
}

type fakePublisher struct {
	events []domain.ReservationEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev domain.ReservationEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

// ---- advisor ----

type fakeAdvisor struct {
	got    string
	advice domain.Advice
	err    error
}

func (a *fakeAdvisor) Ask(ctx context.Context, q string) (domain.Advice, error) {
	a.got = q
	return a.advice, a.err
}
