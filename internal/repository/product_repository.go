package repository

import (
	"context"
	"errors"
	"fmt"

	"vinoteca/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, category, country, region, description, image_url,
	price, quantity_on_hand, reorder_threshold, is_active, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Country, &p.Region, &p.Description, &p.ImageURL,
		&p.Price, &p.QuantityOnHand, &p.ReorderThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
}

// queryProducts runs query and scans every row into a product.
func (r *productRepository) queryProducts(ctx context.Context, op string, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// ListActive retrieves active products with pagination support.
func (r *productRepository) ListActive(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	return r.queryProducts(ctx, "list_active", query, limit, offset)
}

// ListAll retrieves every product, inactive ones included.
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY is_active DESC, name
	`
	return r.queryProducts(ctx, "list_all", query)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`
	return r.queryProducts(ctx, "get_by_ids", query, ids)
}

// Search matches active products by name, category, country or region.
func (r *productRepository) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	sql := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		  AND (name ILIKE $1 OR category ILIKE $1 OR country ILIKE $1 OR region ILIKE $1)
		ORDER BY name
		LIMIT $2
	`
	return r.queryProducts(ctx, "search", sql, "%"+query+"%", limit)
}

// LowStock lists active products at or below their reorder threshold.
func (r *productRepository) LowStock(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active AND quantity_on_hand <= reorder_threshold
		ORDER BY quantity_on_hand, name
	`
	return r.queryProducts(ctx, "low_stock", query)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, category, country, region, description, image_url,
			price, quantity_on_hand, reorder_threshold, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.Country, p.Region, p.Description, p.ImageURL,
		p.Price, p.QuantityOnHand, p.ReorderThreshold, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if violates(err, pgUniqueViolation, constraintProductsPKey) {
			return model.ErrProductExists
		}
		if violates(err, pgCheckViolation, "") {
			return model.ErrNegativeStock
		}
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites the editable fields of a product. Stock is left alone.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = $3, country = $4, region = $5, description = $6,
			image_url = $7, price = $8, reorder_threshold = $9, is_active = $10, updated_at = $11
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.Country, p.Region, p.Description,
		p.ImageURL, p.Price, p.ReorderThreshold, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Upsert inserts the product or overwrites the row with the same ID.
func (r *productRepository) Upsert(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, category, country, region, description, image_url,
			price, quantity_on_hand, reorder_threshold, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			category = EXCLUDED.category,
			country = EXCLUDED.country,
			region = EXCLUDED.region,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			price = EXCLUDED.price,
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			reorder_threshold = EXCLUDED.reorder_threshold,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.Country, p.Region, p.Description, p.ImageURL,
		p.Price, p.QuantityOnHand, p.ReorderThreshold, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if violates(err, pgCheckViolation, "") {
			return model.ErrNegativeStock
		}
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to upsert product")
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// Deactivate hides a product from the catalogue.
func (r *productRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to deactivate product")
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// SetStock overwrites quantity_on_hand.
func (r *productRepository) SetStock(ctx context.Context, id string, quantity int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET quantity_on_hand = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		if violates(err, pgCheckViolation, "") {
			return model.ErrNegativeStock
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to set stock")
		return fmt.Errorf("failed to set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// DecrementStock reserves quantity units inside tx.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET quantity_on_hand = quantity_on_hand - $2, updated_at = NOW()
		WHERE id = $1 AND is_active AND quantity_on_hand >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Int("quantity", quantity).Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// StockLevel reads the current quantity on hand inside tx.
func (r *productRepository) StockLevel(ctx context.Context, tx pgx.Tx, id string) (int, error) {
	var quantity int
	err := tx.QueryRow(ctx, `SELECT quantity_on_hand FROM products WHERE id = $1`, id).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to read stock level")
		return 0, fmt.Errorf("failed to read stock level: %w", err)
	}
	return quantity, nil
}

// IncrementStock hands quantity units back inside tx.
func (r *productRepository) IncrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) error {
	query := `
		UPDATE products
		SET quantity_on_hand = quantity_on_hand + $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Int("quantity", quantity).Msg("failed to increment stock")
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}
