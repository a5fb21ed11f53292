package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxPartySize caps the number of guests on one reservation.
const MaxPartySize = 40

// ReservationStatus is the lifecycle state of a table reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// ParseReservationStatus converts s into a ReservationStatus.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(s); st {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled:
		return st, nil
	}
	return "", ErrInvalidReservationStatus
}

// CanTransitionTo reports whether s -> next is a legal move. Pending
// reservations may be confirmed or cancelled, confirmed ones only cancelled.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationStatusPending:
		return next == ReservationStatusConfirmed || next == ReservationStatusCancelled
	case ReservationStatusConfirmed:
		return next == ReservationStatusCancelled
	}
	return false
}

// Experience is the kind of visit being booked.
type Experience string

const (
	ExperienceTasting Experience = "tasting"
	ExperienceCheese  Experience = "cheese_board"
	ExperiencePairing Experience = "pairing_dinner"
	ExperiencePrivate Experience = "private_event"
)

// Valid reports whether e is one of the offered experiences.
func (e Experience) Valid() bool {
	switch e {
	case ExperienceTasting, ExperienceCheese, ExperiencePairing, ExperiencePrivate:
		return true
	}
	return false
}

// Reservation is a booked visit to the shop.
type Reservation struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	CustomerID  uuid.UUID         `json:"customerId" db:"customer_id"`
	ScheduledAt time.Time         `json:"scheduledAt" db:"scheduled_at"`
	PartySize   int               `json:"partySize" db:"party_size"`
	Experience  Experience        `json:"experience" db:"experience"`
	Details     *string           `json:"details,omitempty" db:"details"`
	Status      ReservationStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// ReservationDetails is a reservation with the customer who booked it.
type ReservationDetails struct {
	Reservation
	Customer *Customer `json:"customer,omitempty"`
}

// ReservationInput is the booking payload. Date is YYYY-MM-DD and Time HH:MM,
// both read in the shop's timezone.
type ReservationInput struct {
	CustomerID uuid.UUID `json:"customerId"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	PartySize  int       `json:"partySize"`
	Experience string    `json:"experience"`
	Details    *string   `json:"details,omitempty"`
}

// ReservationStatusRequest is the admin payload for confirming or cancelling.
type ReservationStatusRequest struct {
	Status string `json:"status"`
}
