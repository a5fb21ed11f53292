package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"vinoteca/internal/config"
	"vinoteca/internal/database"

	"github.com/joho/godotenv"
)

// Connects with the regular configuration and prints a short store summary.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, config.NewLogger(cfg.Logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var (
		dbName   string
		products int
		lowStock int
		pending  int
		overdue  int
	)
	err = pool.QueryRow(ctx, `
		SELECT current_database(),
		       (SELECT COUNT(*) FROM products WHERE is_active),
		       (SELECT COUNT(*) FROM products WHERE is_active AND quantity_on_hand <= reorder_threshold),
		       (SELECT COUNT(*) FROM orders WHERE status = 'pending'),
		       (SELECT COUNT(*) FROM orders WHERE status = 'pending' AND expires_at < NOW())`,
	).Scan(&dbName, &products, &lowStock, &pending, &overdue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n", dbName)
	fmt.Printf("Active wines: %d (%d at or below reorder threshold)\n", products, lowStock)
	fmt.Printf("Pending orders: %d (%d overdue)\n", pending, overdue)
}
