//go:build ignore

// seed_items applies the schema to the configured database and upserts a small
// catalogue so the API has something to sell:
//
//	go run scripts/seed_items.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type seedItem struct {
	id       string
	name     string
	unit     string
	price    string
	discount string
	quantity int
	minStock int
}

var catalogue = []seedItem{
	{"ITEM-APPLE", "Apple", "kg", "3.20", "0", 40, 10},
	{"ITEM-BREAD", "Sourdough Bread", "loaf", "2.50", "0.50", 25, 5},
	{"ITEM-CHEESE", "Cheddar", "block", "7.00", "0", 12, 3},
	{"ITEM-MILK", "Whole Milk", "bottle", "1.10", "0", 30, 8},
	{"ITEM-FALAFEL", "Falafel Wrap", "piece", "6.50", "1.00", 18, 4},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger, "foodhub-seed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	batch := &pgx.Batch{}
	for _, it := range catalogue {
		batch.Queue(`
			INSERT INTO items (id, name, unit, price, discount, quantity, min_stock_level, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, unit = EXCLUDED.unit, price = EXCLUDED.price,
			    discount = EXCLUDED.discount, min_stock_level = EXCLUDED.min_stock_level,
			    updated_at = NOW()`,
			it.id, it.name, it.unit,
			decimal.RequireFromString(it.price), decimal.RequireFromString(it.discount),
			it.quantity, it.minStock,
		)
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d items into database: %s\n", len(catalogue), dbName)
}
