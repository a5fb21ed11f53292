package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vinoteca/internal/model"
	"vinoteca/internal/repository"

	"github.com/rs/zerolog"
)

const searchLimit = 50

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
		now:         time.Now,
	}
}

// ListActive retrieves active products with pagination.
func (s *productService) ListActive(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.ListActive(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// ListAll retrieves every product for the back-office.
func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Search matches active products. A blank query returns nothing.
func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

func validateProductInput(in *model.ProductInput) error {
	if in == nil || strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Name) == "" {
		return model.ErrInvalidProduct
	}
	if in.Price.IsNegative() {
		return model.ErrInvalidAmount
	}
	if in.QuantityOnHand < 0 || in.ReorderThreshold < 0 {
		return model.ErrNegativeStock
	}
	return nil
}

func applyProductInput(p *model.Product, in *model.ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Category = in.Category
	p.Country = in.Country
	p.Region = in.Region
	p.Description = in.Description
	p.ImageURL = in.ImageURL
	p.Price = in.Price.Round(2)
	p.ReorderThreshold = in.ReorderThreshold
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

// Create adds a wine to the catalogue. New products are active unless the input says otherwise.
func (s *productService) Create(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &model.Product{
		ID:             strings.TrimSpace(in.ID),
		QuantityOnHand: in.QuantityOnHand,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyProductInput(p, in)

	if err := s.productRepo.Create(ctx, p); err != nil {
		s.logger.Warn().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	return p, nil
}

// Update edits a product's catalogue fields. Stock changes go through SetStock.
func (s *productService) Update(ctx context.Context, id string, in *model.ProductInput) (*model.Product, error) {
	if in != nil {
		in.ID = id
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProductInput(p, in)
	p.UpdatedAt = s.now().UTC()

	if err := s.productRepo.Update(ctx, p); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return p, nil
}

// Deactivate hides a product from the catalogue.
func (s *productService) Deactivate(ctx context.Context, id string) error {
	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to deactivate product")
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product deactivated")
	return nil
}

// SetStock overwrites the quantity on hand.
func (s *productService) SetStock(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return model.ErrNegativeStock
	}
	if err := s.productRepo.SetStock(ctx, id, quantity); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Int("quantity", quantity).Msg("failed to set stock")
		return err
	}
	s.logger.Info().Str("product_id", id).Int("quantity", quantity).Msg("stock updated")
	return nil
}

// LowStock lists products that need reordering.
func (s *productService) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.LowStock(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list low stock products")
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}
