// Command migrate_orders copies every order from the JSON order file into
// Postgres. Orders already present in the database are overwritten with the
// file's version.
package main

import (
	"context"
	"fmt"
	"os"

	"saniteetti/internal/config"
	"saniteetti/internal/database"
	"saniteetti/internal/model"
	"saniteetti/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	source, err := repository.NewFileOrderRepository(cfg.Storage.OrdersFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open order file: %v\n", err)
		os.Exit(1)
	}
	orders, err := source.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to read orders: %v\n", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to create schema: %v\n", err)
		os.Exit(1)
	}

	target := repository.NewPostgresOrderRepository(pool, logger)
	err = target.Update(ctx, func(existing []model.Order) ([]model.Order, error) {
		index := make(map[string]int, len(existing))
		for i, o := range existing {
			index[o.ID] = i
		}
		for _, o := range orders {
			if i, ok := index[o.ID]; ok {
				existing[i] = o
				continue
			}
			existing = append(existing, o)
		}
		return existing, nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Migrated %d orders from %s\n", len(orders), cfg.Storage.OrdersFile)
}
