package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"vinoteca/internal/model"
	"vinoteca/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type customerService struct {
	customerRepo repository.CustomerRepository
	logger       zerolog.Logger
	now          func() time.Time
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo repository.CustomerRepository, logger zerolog.Logger) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		logger:       logger.With().Str("service", "customer").Logger(),
		now:          time.Now,
	}
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to get customer")
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, model.ErrCustomerNotFound
	}
	return c, nil
}

// Register creates a customer from the registration form.
func (s *customerService) Register(ctx context.Context, in *model.CustomerInput) (*model.Customer, error) {
	if in == nil || strings.TrimSpace(in.FirstName) == "" {
		return nil, model.ErrInvalidCustomer
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, model.ErrInvalidCustomer
	}

	c := &model.Customer{
		ID:        uuid.New(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(addr.Address),
		CreatedAt: s.now().UTC(),
	}

	if in.BirthDate != nil && *in.BirthDate != "" {
		birth, err := time.Parse(time.DateOnly, *in.BirthDate)
		if err != nil {
			return nil, model.ErrInvalidBirthDate
		}
		c.BirthDate = &birth
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		s.logger.Warn().Err(err).Str("email", c.Email).Msg("failed to register customer")
		return nil, err
	}

	s.logger.Info().Str("customer_id", c.ID.String()).Msg("customer registered")
	return c, nil
}

func (s *customerService) List(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list customers")
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
