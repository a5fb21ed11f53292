package repository

import (
	"context"
	"errors"
	"fmt"

	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const customerColumns = `id, first_name, last_name, email, birth_date, created_at`

type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

func scanCustomer(row pgx.Row, c *model.Customer) error {
	return row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.BirthDate, &c.CreatedAt)
}

func (r *customerRepository) getOne(ctx context.Context, where string, arg any) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + where

	var c model.Customer
	if err := scanCustomer(r.pool.QueryRow(ctx, query, arg), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	return &c, nil
}

// GetByID retrieves a customer. Returns nil when absent.
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a customer by case-insensitive email.
func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return r.getOne(ctx, "lower(email) = lower($1)", email)
}

// Create inserts a new customer.
func (r *customerRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (id, first_name, last_name, email, birth_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, c.ID, c.FirstName, c.LastName, c.Email, c.BirthDate, c.CreatedAt)
	if err != nil {
		if violates(err, pgUniqueViolation, constraintCustomerEmail) {
			return model.ErrCustomerExists
		}
		r.logger.Error().Err(err).Str("customer_id", c.ID.String()).Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// List retrieves every customer ordered by name.
func (r *customerRepository) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY last_name, first_name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query customers")
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}
