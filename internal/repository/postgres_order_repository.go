package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"saniteetti/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ordersLockKey identifies the advisory lock that serialises order updates
// across every process sharing the database.
const ordersLockKey int64 = 0x53414e49

// postgresOrderRepository stores each order as a JSONB document.
type postgresOrderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresOrderRepository creates a PostgreSQL-backed order repository.
// The orders table must exist (see database.EnsureSchema).
func NewPostgresOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &postgresOrderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Str("backend", "postgres").Logger(),
	}
}

// List returns every stored order oldest first.
func (r *postgresOrderRepository) List(ctx context.Context) ([]model.Order, error) {
	orders, err := r.load(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Update applies fn inside one transaction holding the orders advisory lock.
func (r *postgresOrderRepository) Update(ctx context.Context, fn UpdateFunc) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("%w: failed to begin transaction: %v", model.ErrPersistence, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ordersLockKey); err != nil {
		r.logger.Error().Err(err).Msg("failed to acquire orders lock")
		return fmt.Errorf("%w: failed to acquire orders lock: %v", model.ErrPersistence, err)
	}

	current, err := r.load(ctx, tx)
	if err != nil {
		return err
	}

	before := make(map[string][]byte, len(current))
	for _, o := range current {
		doc, mErr := json.Marshal(o)
		if mErr != nil {
			return fmt.Errorf("failed to encode order %s: %w", o.ID, mErr)
		}
		before[o.ID] = doc
	}

	next, err := fn(cloneOrders(current))
	if errors.Is(err, ErrNoChange) {
		err = tx.Rollback(ctx)
		return err
	}
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, created_at, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document
	`

	batch := &pgx.Batch{}
	var changed []string
	for _, o := range next {
		doc, mErr := json.Marshal(o)
		if mErr != nil {
			err = fmt.Errorf("failed to encode order %s: %w", o.ID, mErr)
			return err
		}
		if prev, ok := before[o.ID]; ok && bytes.Equal(prev, doc) {
			continue
		}
		batch.Queue(query, o.ID, o.CreatedAt, doc)
		changed = append(changed, o.ID)
	}

	if len(changed) > 0 {
		results := tx.SendBatch(ctx, batch)
		for _, id := range changed {
			if _, err = results.Exec(); err != nil {
				results.Close()
				r.logger.Error().Err(err).Str("order_id", id).Msg("failed to upsert order")
				return fmt.Errorf("%w: failed to upsert order %s: %v", model.ErrPersistence, id, err)
			}
		}
		if err = results.Close(); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("%w: failed to commit: %v", model.ErrPersistence, err)
	}

	r.logger.Debug().Int("changed", len(changed)).Msg("orders written")
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *postgresOrderRepository) load(ctx context.Context, q querier) ([]model.Order, error) {
	rows, err := q.Query(ctx, `SELECT document FROM orders ORDER BY created_at, id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("%w: failed to query orders: %v", model.ErrPersistence, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		var o model.Order
		if err := json.Unmarshal(doc, &o); err != nil {
			return nil, fmt.Errorf("failed to decode order document: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
