package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vinoteca/internal/chat"
	"vinoteca/internal/handler"
	"vinoteca/internal/receipt"
	"vinoteca/internal/router"
	"vinoteca/internal/service"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the order expiry sweep",
		Action: func(c *cli.Context) error {
			return serve(c.Context)
		},
	}
}

func serve(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	logger := e.logger
	logger.Info().Msg("starting vinoteca API server")

	var responder chat.Responder = chat.Disabled{}
	if e.cfg.Chat.Enabled {
		gemini, err := chat.NewGeminiResponder(ctx, e.cfg.Chat, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise chat backend, chat disabled")
		} else {
			responder = gemini
		}
	}

	mux := router.New(router.Handlers{
		Health:    handler.NewHealthHandler(e.pool, logger),
		Products:  handler.NewProductHandler(e.catalogue, logger),
		Orders:    handler.NewOrderHandler(e.orders, e.customers, e.policy, logger),
		Customers: handler.NewCustomerHandler(e.customers, logger),
		Documents: handler.NewDocumentHandler(e.orders, e.customers, e.policy,
			receipt.NewPDFRenderer(e.location), e.cfg.Shop.Name, logger),
		Chat:  handler.NewChatHandler(responder, logger),
		Admin: handler.NewAdminHandler(e.catalogue, e.orders, logger),

		Reservations: handler.NewReservationHandler(e.bookings, logger),
	}, e.cfg.Auth.AdminAPIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         e.cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if e.cfg.Orders.SweepInterval > 0 {
		go runExpirySweep(ctx, e.orders, e.cfg.Orders.SweepInterval, logger)
	} else {
		logger.Info().Msg("order expiry sweep disabled; overdue orders expire when read")
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", e.cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the sweep before draining requests.
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// runExpirySweep expires overdue pending orders every interval until ctx ends.
func runExpirySweep(ctx context.Context, orders service.OrderService, interval time.Duration, logger zerolog.Logger) {
	logger = logger.With().Str("component", "expiry-sweep").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("order expiry sweep started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("order expiry sweep stopped")
			return
		case now := <-ticker.C:
			n, err := orders.ExpireOverdue(ctx, now)
			if err != nil {
				logger.Error().Err(err).Int("expired", n).Msg("expiry sweep finished with errors")
				continue
			}
			if n > 0 {
				logger.Info().Int("expired", n).Msg("overdue orders expired")
			}
		}
	}
}
