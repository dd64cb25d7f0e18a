package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

type ReservationService struct {
	store    domain.ReservationStore
	events   domain.EventPublisher
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

type ReservationOption func(*ReservationService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ReservationOption {
	return func(s *ReservationService) { s.now = now }
}

// WithIDGenerator replaces the UUIDv4 booking id generator.
func WithIDGenerator(gen func() string) ReservationOption {
	return func(s *ReservationService) { s.newID = gen }
}

// NewReservationService builds the service. A nil events publisher discards events.
func NewReservationService(store domain.ReservationStore, events domain.EventPublisher, opts ...ReservationOption) *ReservationService {
	if events == nil {
		events = discardEvents{}
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	s := &ReservationService{
		store:    store,
		events:   events,
		validate: v,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ---- Create ----

type CreateReservationInput struct {
	GuestEmail    string   `json:"guest_email" validate:"required,max=320"`
	HotelID       string   `json:"hotel_id" validate:"required,max=255"`
	City          string   `json:"city" validate:"required,max=255"`
	HotelName     string   `json:"hotel_name" validate:"required,max=255"`
	CheckInDate   string   `json:"check_in_date" validate:"required"`
	Nights        *int     `json:"nights" validate:"required,gt=0"`
	RoomsBooked   *int     `json:"rooms_booked" validate:"required,gt=0"`
	PricePerNight *float64 `json:"price_per_night" validate:"required,gte=0"`
}

type CreateReservationResult struct {
	Message      string  `json:"message"`
	BookingID    string  `json:"booking_id"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	TotalPrice   float64 `json:"total_price"`
}

func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (CreateReservationResult, error) {
	in.CheckInDate = strings.TrimSpace(in.CheckInDate)
	if err := s.validateStruct(in); err != nil {
		observability.ObserveReservation("create", "invalid")
		return CreateReservationResult{}, err
	}
	now := s.now().UTC()
	checkIn, err := domain.ValidateCheckIn(in.CheckInDate, now)
	if err != nil {
		observability.ObserveReservation("create", "invalid")
		return CreateReservationResult{}, err
	}

	r := domain.Reservation{
		BookingID:     s.newID(),
		GuestEmail:    in.GuestEmail,
		HotelID:       in.HotelID,
		City:          in.City,
		HotelName:     in.HotelName,
		CheckInDate:   in.CheckInDate,
		CheckOutDate:  domain.CheckOutDate(checkIn, *in.Nights),
		Nights:        *in.Nights,
		RoomsBooked:   *in.RoomsBooked,
		PricePerNight: *in.PricePerNight,
		TotalPrice:    domain.TotalPrice(*in.Nights, *in.RoomsBooked, *in.PricePerNight),
		Status:        domain.StatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateReservation(ctx, r); err != nil {
		observability.ObserveReservation("create", outcomeOf(err))
		log.Error().Err(err).Str("booking_id", r.BookingID).Str("hotel_id", r.HotelID).Msg("create reservation failed")
		return CreateReservationResult{}, fmt.Errorf("create reservation: %w", err)
	}
	observability.ObserveReservation("create", "ok")

	s.publish(ctx, domain.ReservationEvent{
		Type:        domain.EventBookingCreated,
		BookingID:   r.BookingID,
		GuestEmail:  r.GuestEmail,
		Reservation: &r,
		OccurredAt:  now,
	})

	return CreateReservationResult{
		Message:      "Reservation created successfully",
		BookingID:    r.BookingID,
		CheckInDate:  r.CheckInDate,
		CheckOutDate: r.CheckOutDate,
		TotalPrice:   r.TotalPrice,
	}, nil
}

// ---- Query ----

type QueryReservationsInput struct {
	GuestEmail string  `json:"guest_email"`
	Status     *string `json:"status,omitempty"`
}

type QueryReservationsResult struct {
	Count        int                  `json:"count"`
	Reservations []domain.Reservation `json:"reservations"`
}

func (s *ReservationService) Query(ctx context.Context, in QueryReservationsInput) (QueryReservationsResult, error) {
	if strings.TrimSpace(in.GuestEmail) == "" {
		observability.ObserveReservation("query", "invalid")
		return QueryReservationsResult{}, domain.Invalid("guest_email is required")
	}
	status := in.Status
	if status != nil && *status == "" {
		status = nil
	}

	rs, err := s.store.ReservationsByGuest(ctx, in.GuestEmail, status)
	if err != nil {
		observability.ObserveReservation("query", outcomeOf(err))
		log.Error().Err(err).Msg("query reservations failed")
		return QueryReservationsResult{}, fmt.Errorf("query reservations: %w", err)
	}
	observability.ObserveReservation("query", "ok")
	if rs == nil {
		rs = []domain.Reservation{}
	}
	return QueryReservationsResult{Count: len(rs), Reservations: rs}, nil
}

// ---- Modify ----

type ModifyReservationInput struct {
	BookingID     string   `json:"booking_id"`
	GuestEmail    string   `json:"guest_email"`
	CheckInDate   *string  `json:"check_in_date,omitempty"`
	Nights        *int     `json:"nights,omitempty"`
	RoomsBooked   *int     `json:"rooms_booked,omitempty"`
	PricePerNight *float64 `json:"price_per_night,omitempty"`
	TotalPrice    *float64 `json:"total_price,omitempty"`
	Status        *string  `json:"status,omitempty"`
}

type ModifyReservationResult struct {
	Message   string `json:"message"`
	BookingID string `json:"booking_id"`
}

func (s *ReservationService) Modify(ctx context.Context, in ModifyReservationInput) (ModifyReservationResult, error) {
	if in.BookingID == "" || in.GuestEmail == "" {
		observability.ObserveReservation("modify", "invalid")
		return ModifyReservationResult{}, domain.Invalid("booking_id & guest_email is required")
	}
	now := s.now().UTC()

	if in.CheckInDate != nil {
		trimmed := strings.TrimSpace(*in.CheckInDate)
		in.CheckInDate = &trimmed
	}
	if in.CheckInDate != nil && *in.CheckInDate != "" {
		if _, err := domain.ValidateCheckIn(*in.CheckInDate, now); err != nil {
			observability.ObserveReservation("modify", "invalid")
			return ModifyReservationResult{}, err
		}
	}
	if in.Nights != nil && *in.Nights <= 0 {
		observability.ObserveReservation("modify", "invalid")
		return ModifyReservationResult{}, domain.Invalid("nights must be > 0")
	}
	if in.Status != nil && utf8.RuneCountInString(*in.Status) > domain.MaxStatusLen {
		observability.ObserveReservation("modify", "invalid")
		return ModifyReservationResult{}, domain.Invalid(fmt.Sprintf("status must be at most %d characters", domain.MaxStatusLen))
	}

	patch := domain.ReservationPatch{
		CheckInDate:   in.CheckInDate,
		Nights:        in.Nights,
		RoomsBooked:   in.RoomsBooked,
		PricePerNight: in.PricePerNight,
		TotalPrice:    in.TotalPrice,
		Status:        in.Status,
	}
	changes, err := patch.Changes(now)
	if err != nil {
		observability.ObserveReservation("modify", "invalid")
		return ModifyReservationResult{}, err
	}

	key := domain.ReservationKey{BookingID: in.BookingID, GuestEmail: in.GuestEmail}
	if err := s.store.UpdateReservation(ctx, key, changes); err != nil {
		observability.ObserveReservation("modify", outcomeOf(err))
		log.Error().Err(err).Str("booking_id", in.BookingID).Msg("modify reservation failed")
		return ModifyReservationResult{}, fmt.Errorf("modify reservation: %w", err)
	}
	observability.ObserveReservation("modify", "ok")

	ev := domain.ReservationEvent{
		Type:       domain.EventBookingModified,
		BookingID:  in.BookingID,
		GuestEmail: in.GuestEmail,
		Changes:    make(map[string]any, len(changes)),
		OccurredAt: now,
	}
	for _, c := range changes {
		ev.Changes[c.Field] = c.Value
	}
	if in.Status != nil && strings.EqualFold(*in.Status, domain.StatusCancelled) {
		ev.Type = domain.EventBookingCancelled
	}
	s.publish(ctx, ev)

	return ModifyReservationResult{
		Message:   "Reservation modified successfully",
		BookingID: in.BookingID,
	}, nil
}

// ---- helpers ----

// validateStruct turns validator errors into a single caller-facing reason.
// Missing required fields win over range violations.
func (s *ReservationService) validateStruct(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid(err.Error())
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return domain.Invalid("Missing required fields")
		}
	}
	fe := verrs[0]
	if fe.Tag() == "max" {
		return domain.Invalid(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	}
	op := map[string]string{"gt": ">", "gte": ">=", "lt": "<", "lte": "<="}[fe.Tag()]
	if op == "" {
		return domain.Invalid(fmt.Sprintf("invalid %s", fe.Field()))
	}
	return domain.Invalid(fmt.Sprintf("%s must be %s %s", fe.Field(), op, fe.Param()))
}

// publish is best-effort: the write already succeeded.
func (s *ReservationService) publish(ctx context.Context, ev domain.ReservationEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Str("booking_id", ev.BookingID).Msg("publish reservation event failed")
	}
}

type discardEvents struct{}

func (discardEvents) Publish(context.Context, domain.ReservationEvent) error { return nil }

func outcomeOf(err error) string {
	if errors.Is(err, domain.ErrPreconditionFailed) {
		return "precondition"
	}
	return "error"
}
