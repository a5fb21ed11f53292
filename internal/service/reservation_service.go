package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vinoteca/internal/model"
	"vinoteca/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const reservationLayout = "2006-01-02 15:04"

type reservationService struct {
	reservationRepo repository.ReservationRepository
	customerRepo    repository.CustomerRepository
	loc             *time.Location
	logger          zerolog.Logger
	now             func() time.Time
}

// NewReservationService creates a new reservation service. Booking dates and
// times are read in loc, the shop's timezone.
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	customerRepo repository.CustomerRepository,
	loc *time.Location,
	logger zerolog.Logger,
) ReservationService {
	if loc == nil {
		loc = time.UTC
	}
	return &reservationService{
		reservationRepo: reservationRepo,
		customerRepo:    customerRepo,
		loc:             loc,
		logger:          logger.With().Str("service", "reservation").Logger(),
		now:             time.Now,
	}
}

// Book validates the request and records a pending reservation.
func (s *reservationService) Book(ctx context.Context, in *model.ReservationInput) (*model.Reservation, error) {
	if in == nil || in.Date == "" || in.Time == "" {
		return nil, model.ErrInvalidReservation
	}
	exp := model.Experience(in.Experience)
	if !exp.Valid() {
		return nil, model.ErrInvalidReservation
	}
	if in.PartySize < 1 || in.PartySize > model.MaxPartySize {
		return nil, model.ErrInvalidPartySize
	}

	at, err := time.ParseInLocation(reservationLayout, in.Date+" "+in.Time, s.loc)
	if err != nil {
		return nil, model.ErrInvalidReservation
	}
	now := s.now().UTC()
	if !at.After(now) {
		return nil, model.ErrReservationInPast
	}

	customer, err := s.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", in.CustomerID.String()).Msg("failed to get customer")
		return nil, fmt.Errorf("failed to book reservation: %w", err)
	}
	if customer == nil {
		return nil, model.ErrCustomerNotFound
	}

	res := &model.Reservation{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		ScheduledAt: at.UTC(),
		PartySize:   in.PartySize,
		Experience:  exp,
		Status:      model.ReservationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Details != nil {
		if d := strings.TrimSpace(*in.Details); d != "" {
			res.Details = &d
		}
	}

	if err := s.reservationRepo.Create(ctx, res); err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customer.ID.String()).Msg("failed to book reservation")
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ID.String()).
		Str("customer_id", customer.ID.String()).
		Time("scheduled_at", res.ScheduledAt).
		Int("party_size", res.PartySize).
		Msg("reservation booked")

	return res, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("reservation_id", id.String()).Msg("failed to get reservation")
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, model.ErrReservationNotFound
	}
	return res, nil
}

func (s *reservationService) ListCustomerReservations(ctx context.Context, customerID uuid.UUID) ([]model.Reservation, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if customer == nil {
		return nil, model.ErrCustomerNotFound
	}

	reservations, err := s.reservationRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to list reservations")
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) ListReservations(ctx context.Context, status *model.ReservationStatus) ([]model.ReservationDetails, error) {
	reservations, err := s.reservationRepo.List(ctx, status)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list reservations")
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// UpdateReservationStatus applies a legal transition. The update is
// conditional on the status read here, so a concurrent change makes it fail
// with a transition error instead of overwriting.
func (s *reservationService) UpdateReservationStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.ReservationStatus,
) (*model.Reservation, error) {
	if _, err := model.ParseReservationStatus(string(status)); err != nil {
		return nil, err
	}

	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if !res.Status.CanTransitionTo(status) {
		s.logger.Info().
			Str("reservation_id", id.String()).
			Str("from", string(res.Status)).
			Str("to", string(status)).
			Msg("rejected reservation transition")
		return nil, &model.ReservationTransitionError{From: res.Status, To: status}
	}

	now := s.now().UTC()
	ok, err := s.reservationRepo.TransitionStatus(ctx, id, res.Status, status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	if !ok {
		from := res.Status
		if current, gerr := s.reservationRepo.GetByID(ctx, id); gerr == nil && current != nil {
			from = current.Status
		}
		return nil, &model.ReservationTransitionError{From: from, To: status}
	}

	updated := *res
	updated.Status = status
	updated.UpdatedAt = now

	s.logger.Info().
		Str("reservation_id", id.String()).
		Str("status", string(status)).
		Msg("reservation status updated")

	return &updated, nil
}
