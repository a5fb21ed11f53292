package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"vinoteca/internal/config"
	"vinoteca/internal/database"
	"vinoteca/internal/discount"
	"vinoteca/internal/repository"
	"vinoteca/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vinoteca",
		Usage: "wine shop orders and inventory",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			importCatalogCommand(),
			expireOrdersCommand(),
			cartCommand(),
		},
	}
}

// env holds the dependencies shared by every command that touches the store.
type env struct {
	cfg       *config.Config
	logger    zerolog.Logger
	pool      *pgxpool.Pool
	location  *time.Location
	products  repository.ProductRepository
	orders    service.OrderService
	catalogue service.ProductService
	customers service.CustomerService
	bookings  service.ReservationService
	policy    discount.Policy
}

// loadConfig reads configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, config.NewLogger(cfg.Logger), nil
}

// connect opens the pool and wires repositories and services. The caller
// closes the pool.
func connect(ctx context.Context) (*env, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Shop.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load shop timezone: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise database: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	reservationRepo := repository.NewReservationRepository(pool, logger)

	return &env{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		location:  loc,
		products:  productRepo,
		catalogue: service.NewProductService(productRepo, logger),
		customers: service.NewCustomerService(customerRepo, logger),
		bookings:  service.NewReservationService(reservationRepo, customerRepo, loc, logger),
		orders: service.NewOrderService(orderRepo, productRepo, customerRepo, service.OrderPolicy{
			ExpiryWindow:         cfg.Orders.ExpiryWindow,
			RestoreStockOnExpiry: cfg.Orders.SweepRestoresStock,
		}, logger),
		policy: discount.NewPolicy(loc),
	}, nil
}
