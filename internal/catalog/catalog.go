package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vinoteca/internal/model"

	"github.com/shopspring/decimal"
)

// ErrInvalidCatalog is returned when a catalog file decodes but its entries are unusable.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Loader defines the interface for loading catalog files.
type Loader interface {
	// Load reads a YAML catalog, optionally gzip-compressed.
	Load(ctx context.Context, path string) (*Catalog, error)
}

// Catalog is the decoded content of a catalog file.
type Catalog struct {
	Wines []Entry `yaml:"wines"`
}

// Entry is one wine as written in a catalog file.
type Entry struct {
	ID               string          `yaml:"id"`
	Name             string          `yaml:"name"`
	Category         string          `yaml:"category"`
	Country          string          `yaml:"country"`
	Region           string          `yaml:"region"`
	Description      string          `yaml:"description"`
	ImageURL         string          `yaml:"image_url"`
	Price            decimal.Decimal `yaml:"price"`
	QuantityOnHand   int             `yaml:"quantity_on_hand"`
	ReorderThreshold int             `yaml:"reorder_threshold"`
	// IsActive defaults to true when omitted.
	IsActive *bool `yaml:"is_active"`
}

// Validate checks every entry and rejects repeated IDs.
func (c *Catalog) Validate() error {
	seen := make(map[string]int, len(c.Wines))
	for i, e := range c.Wines {
		id := strings.TrimSpace(e.ID)
		switch {
		case id == "" || strings.TrimSpace(e.Name) == "":
			return fmt.Errorf("%w: entry %d needs an id and a name", ErrInvalidCatalog, i+1)
		case e.Price.IsNegative():
			return fmt.Errorf("%w: %s has a negative price", ErrInvalidCatalog, id)
		case e.QuantityOnHand < 0 || e.ReorderThreshold < 0:
			return fmt.Errorf("%w: %s has negative stock", ErrInvalidCatalog, id)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s appears at entries %d and %d", ErrInvalidCatalog, id, prev+1, i+1)
		}
		seen[id] = i
	}
	return nil
}

// Products converts the entries into products stamped with now.
func (c *Catalog) Products(now time.Time) []model.Product {
	out := make([]model.Product, 0, len(c.Wines))
	for _, e := range c.Wines {
		active := true
		if e.IsActive != nil {
			active = *e.IsActive
		}
		out = append(out, model.Product{
			ID:               strings.TrimSpace(e.ID),
			Name:             strings.TrimSpace(e.Name),
			Category:         e.Category,
			Country:          e.Country,
			Region:           e.Region,
			Description:      e.Description,
			ImageURL:         e.ImageURL,
			Price:            e.Price.Round(2),
			QuantityOnHand:   e.QuantityOnHand,
			ReorderThreshold: e.ReorderThreshold,
			IsActive:         active,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}
	return out
}
