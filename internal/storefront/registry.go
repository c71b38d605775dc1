// Package storefront keeps the per-visitor shopping state: one cart and one
// checkout workflow per session.
package storefront

import (
	"sync"
	"time"

	"saniteetti/internal/cart"
	"saniteetti/internal/checkout"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session is the shopping state of one visitor. Callers must hold the session
// through Registry.With; the cart and workflow are not safe for concurrent use.
type Session struct {
	ID       string
	Cart     *cart.Cart
	Checkout *checkout.Workflow

	mu       sync.Mutex
	lastSeen time.Time
}

// Registry owns every storefront session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	pricing  cart.Pricing
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry whose checkouts price with pricing.
func NewRegistry(pricing cart.Pricing, logger zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		pricing:  pricing,
		now:      time.Now,
		logger:   logger.With().Str("component", "storefront").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pricing returns the delivery pricing applied to carts.
func (r *Registry) Pricing() cart.Pricing {
	return r.pricing
}

// Session returns the session with id, creating a new one with a fresh id
// when id is empty or unknown. The boolean reports whether it was created.
func (r *Registry) Session(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, false
	}

	s := &Session{
		ID:       uuid.NewString(),
		Cart:     cart.New(),
		Checkout: checkout.NewWorkflow(r.pricing),
		lastSeen: r.now(),
	}
	r.sessions[s.ID] = s
	r.logger.Debug().Str("session_id", s.ID).Msg("session created")
	return s, true
}

// With runs fn while holding the session lock.
func (r *Registry) With(s *Session, fn func(s *Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = r.now()
	return fn(s)
}

// DropProduct removes a deleted product from every cart and returns the
// number of carts that held it.
func (r *Registry) DropProduct(productID string) int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	dropped := 0
	for _, s := range sessions {
		s.mu.Lock()
		if s.Cart.Quantity(productID) > 0 {
			s.Cart.Drop(productID)
			dropped++
		}
		s.mu.Unlock()
	}

	if dropped > 0 {
		r.logger.Info().Str("product_id", productID).Int("carts", dropped).Msg("deleted product removed from carts")
	}
	return dropped
}

// Expire removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Expire(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Debug().Int("removed", removed).Msg("idle sessions expired")
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
