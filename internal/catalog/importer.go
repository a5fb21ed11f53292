package catalog

import (
	"context"
	"fmt"
	"time"

	"vinoteca/internal/model"

	"github.com/rs/zerolog"
)

// Upserter stores products by ID, inserting or replacing them.
type Upserter interface {
	Upsert(ctx context.Context, p *model.Product) error
}

// Importer seeds the products table from catalog files.
type Importer struct {
	loader   Loader
	products Upserter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewImporter creates a new catalog importer.
func NewImporter(loader Loader, products Upserter, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:   loader,
		products: products,
		logger:   logger.With().Str("component", "catalog-importer").Logger(),
		now:      time.Now,
	}
}

// Import loads path and upserts every wine. Entries already written stay
// written when a later one fails; re-running the import is safe.
func (i *Importer) Import(ctx context.Context, path string) (int, error) {
	c, err := i.loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	products := c.Products(i.now().UTC())
	for n := range products {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := i.products.Upsert(ctx, &products[n]); err != nil {
			i.logger.Error().Err(err).Str("product_id", products[n].ID).Msg("failed to import wine")
			return n, fmt.Errorf("failed to import %s: %w", products[n].ID, err)
		}
	}

	i.logger.Info().Str("file", path).Int("imported", len(products)).Msg("catalog imported")
	return len(products), nil
}
