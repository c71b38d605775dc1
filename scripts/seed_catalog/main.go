// Command seed_catalog writes the current catalog (the built-in defaults when
// nothing is stored yet) back to the catalog blob store, upgrading legacy
// blobs to the current format.
package main

import (
	"context"
	"fmt"
	"os"

	"saniteetti/internal/catalog"
	"saniteetti/internal/config"
	"saniteetti/internal/storage"

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

	var blobs storage.BlobStore = storage.NewFileStore(cfg.Storage.CatalogDir, logger)
	if cfg.S3.Enabled {
		remote, err := storage.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open S3 bucket: %v\n", err)
			os.Exit(1)
		}
		blobs = storage.NewFallbackStore(remote, blobs, logger)
	}

	store, err := catalog.NewStore(ctx, blobs, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load catalog: %v\n", err)
		os.Exit(1)
	}

	if err := store.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to write catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d products in %d categories\n", len(store.Products()), len(store.Categories()))
}
