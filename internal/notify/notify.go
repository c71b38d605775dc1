// Package notify sends the order e-mails: the customer confirmation, the
// merchant notification and the shipped notice.
package notify

import (
	"context"
	"sync"

	"saniteetti/internal/model"
)

// Notifier dispatches order notifications.
type Notifier interface {
	// OrderPlaced sends the customer confirmation and the merchant notification.
	OrderPlaced(ctx context.Context, order model.Order) error

	// OrderShipped sends the shipped notice to the customer.
	OrderShipped(ctx context.Context, order model.Order) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) OrderPlaced(context.Context, model.Order) error  { return nil }
func (Nop) OrderShipped(context.Context, model.Order) error { return nil }

// Event names recorded by Recorder.
const (
	EventPlaced  = "placed"
	EventShipped = "shipped"
)

// Event is a notification captured by Recorder.
type Event struct {
	Kind  string
	Order model.Order
}

// Recorder keeps every notification in memory. Err, when set, is returned
// from every call after recording it.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) OrderPlaced(_ context.Context, order model.Order) error {
	return r.record(EventPlaced, order)
}

func (r *Recorder) OrderShipped(_ context.Context, order model.Order) error {
	return r.record(EventShipped, order)
}

// Events returns the recorded notifications in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) record(kind string, order model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Order: order.Clone()})
	return r.Err
}
