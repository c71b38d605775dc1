package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"saniteetti/internal/model"
	"saniteetti/internal/storage"

	"github.com/rs/zerolog"
)

// fileOrderRepository keeps every order in one JSON array file.
type fileOrderRepository struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewFileOrderRepository creates a file-backed order repository. A missing
// file is initialised to an empty array.
func NewFileOrderRepository(path string, logger zerolog.Logger) (OrderRepository, error) {
	r := &fileOrderRepository{
		path:   path,
		logger: logger.With().Str("repository", "order").Str("backend", "file").Logger(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create orders directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := storage.WriteFileAtomic(path, []byte("[]\n")); err != nil {
			return nil, fmt.Errorf("failed to initialise orders file: %w", err)
		}
		r.logger.Info().Str("path", path).Msg("orders file initialised")
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat orders file: %w", err)
	}

	return r, nil
}

// List returns every stored order.
func (r *fileOrderRepository) List(ctx context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Update applies fn to the stored orders under the repository mutex.
func (r *fileOrderRepository) Update(ctx context.Context, fn UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	orders, err := r.read()
	if err != nil {
		return err
	}

	next, err := fn(cloneOrders(orders))
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}

	if err := storage.WriteFileAtomic(r.path, data); err != nil {
		r.logger.Error().Err(err).Str("path", r.path).Msg("failed to write orders file")
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	r.logger.Debug().Int("count", len(next)).Msg("orders written")
	return nil
}

func (r *fileOrderRepository) read() ([]model.Order, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Order{}, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("path", r.path).Msg("failed to read orders file")
		return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		r.logger.Error().Err(err).Str("path", r.path).Msg("orders file is not valid JSON")
		return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	if !isJSONArray(raw) {
		r.logger.Warn().Str("path", r.path).Msg("orders file is not an array, treating as empty")
		return []model.Order{}, nil
	}

	var orders []model.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		r.logger.Error().Err(err).Str("path", r.path).Msg("failed to decode orders file")
		return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
