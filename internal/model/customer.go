package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the owner of orders.
type Customer struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	FirstName string     `json:"firstName" db:"first_name"`
	LastName  string     `json:"lastName" db:"last_name"`
	Email     string     `json:"email" db:"email"`
	BirthDate *time.Time `json:"birthDate,omitempty" db:"birth_date"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// CustomerInput is the registration payload. BirthDate is YYYY-MM-DD.
type CustomerInput struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	BirthDate *string `json:"birthDate,omitempty"`
}
