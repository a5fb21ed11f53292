package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a wine in the catalogue.
type Product struct {
	ID               string          `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Category         string          `json:"category" db:"category"`
	Country          string          `json:"country" db:"country"`
	Region           string          `json:"region" db:"region"`
	Description      string          `json:"description" db:"description"`
	ImageURL         string          `json:"imageUrl,omitempty" db:"image_url"`
	Price            decimal.Decimal `json:"price" db:"price"`
	QuantityOnHand   int             `json:"quantityOnHand" db:"quantity_on_hand"`
	ReorderThreshold int             `json:"reorderThreshold" db:"reorder_threshold"`
	IsActive         bool            `json:"isActive" db:"is_active"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// LowStock reports whether the product has reached its reorder threshold.
func (p *Product) LowStock() bool {
	return p.QuantityOnHand <= p.ReorderThreshold
}

// ProductInput is the admin payload for creating or editing a wine.
type ProductInput struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Country          string          `json:"country"`
	Region           string          `json:"region"`
	Description      string          `json:"description"`
	ImageURL         string          `json:"imageUrl"`
	Price            decimal.Decimal `json:"price"`
	QuantityOnHand   int             `json:"quantityOnHand"`
	ReorderThreshold int             `json:"reorderThreshold"`
	IsActive         *bool           `json:"isActive,omitempty"`
}

// StockUpdateRequest sets the absolute quantity on hand.
type StockUpdateRequest struct {
	Quantity int `json:"quantity"`
}
