package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const reservationColumns = `r.id, r.customer_id, r.scheduled_at, r.party_size, r.experience,
	r.details, r.status, r.created_at, r.updated_at`

type reservationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReservationRepository {
	return &reservationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "reservation").Logger(),
	}
}

func reservationFields(res *model.Reservation) []any {
	return []any{
		&res.ID, &res.CustomerID, &res.ScheduledAt, &res.PartySize, &res.Experience,
		&res.Details, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	}
}

// Create inserts a new reservation.
func (r *reservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (id, customer_id, scheduled_at, party_size, experience,
			details, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		res.ID, res.CustomerID, res.ScheduledAt, res.PartySize, res.Experience,
		res.Details, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if violates(err, pgForeignKey, constraintReservationCustomer) {
			return model.ErrCustomerNotFound
		}
		if violates(err, pgCheckViolation, "") {
			return model.ErrInvalidReservation
		}
		r.logger.Error().Err(err).Str("reservation_id", res.ID.String()).Msg("failed to create reservation")
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

// GetByID retrieves a reservation. Returns nil when absent.
func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`

	var res model.Reservation
	if err := r.pool.QueryRow(ctx, query, id).Scan(reservationFields(&res)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("reservation_id", id.String()).Msg("failed to query reservation")
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}
	return &res, nil
}

// ListByCustomer lists a customer's reservations, soonest first.
func (r *reservationRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.customer_id = $1
		ORDER BY r.scheduled_at
	`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query reservations")
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []model.Reservation{}
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(reservationFields(&res)...); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}

// List lists reservations with their customers, latest first.
func (r *reservationRepository) List(ctx context.Context, status *model.ReservationStatus) ([]model.ReservationDetails, error) {
	query := `
		SELECT ` + reservationColumns + `,
			c.id, c.first_name, c.last_name, c.email, c.birth_date, c.created_at
		FROM reservations r
		JOIN customers c ON c.id = r.customer_id
	`
	var args []any
	if status != nil {
		query += ` WHERE r.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY r.scheduled_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query reservations")
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []model.ReservationDetails{}
	for rows.Next() {
		var (
			d model.ReservationDetails
			c model.Customer
		)
		dest := append(reservationFields(&d.Reservation),
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.BirthDate, &c.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		d.Customer = &c
		reservations = append(reservations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}

// TransitionStatus moves the reservation from one status to another.
func (r *reservationRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to model.ReservationStatus,
	at time.Time,
) (bool, error) {
	query := `
		UPDATE reservations
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from, to, at)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("reservation_id", id.String()).
			Str("to", string(to)).
			Msg("failed to update reservation status")
		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
