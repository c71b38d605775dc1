package repository

import (
	"context"
	"errors"

	"saniteetti/internal/model"
)

// ErrNoChange is returned by an UpdateFunc to end an update without writing.
var ErrNoChange = errors.New("no change")

// UpdateFunc receives a copy of every stored order and returns the collection
// to write back.
type UpdateFunc func(orders []model.Order) ([]model.Order, error)

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// List returns every stored order in storage order.
	List(ctx context.Context) ([]model.Order, error)

	// Update loads the full collection, applies fn and writes the result back,
	// all inside one critical section. Errors from fn are returned unchanged
	// and nothing is written; ErrNoChange ends the update with a nil error.
	Update(ctx context.Context, fn UpdateFunc) error
}

func cloneOrders(in []model.Order) []model.Order {
	out := make([]model.Order, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}
