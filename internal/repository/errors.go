package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate into domain errors.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgForeignKey      = "23503"
)

const (
	constraintOrderNumber    = "orders_order_number_key"
	constraintOnePending     = "orders_one_pending_per_customer"
	constraintCustomerEmail  = "customers_email_key"
	constraintProductsPKey   = "products_pkey"
	constraintCustomerFKey   = "orders_customer_id_fkey"
	constraintLineProductKey = "order_lines_product_id_fkey"

	constraintReservationCustomer = "reservations_customer_id_fkey"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// violates reports whether err is a Postgres error with the given code, and,
// when constraint is not empty, raised by that constraint.
func violates(err error, code, constraint string) bool {
	pgErr := pgError(err)
	if pgErr == nil || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
