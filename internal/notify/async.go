package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"saniteetti/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// DefaultQueueSize bounds the number of pending notifications.
const DefaultQueueSize = 256

type job struct {
	kind  string
	order model.Order
}

// Queue delivers notifications in the background, retrying failed sends with
// exponential backoff. Enqueueing never blocks the caller.
type Queue struct {
	next       Notifier
	jobs       chan job
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithBackOff overrides the retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) QueueOption {
	return func(q *Queue) { q.newBackOff = newBackOff }
}

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) QueueOption {
	return func(q *Queue) { q.jobs = make(chan job, n) }
}

// NewQueue creates a queue in front of next and starts its worker.
func NewQueue(next Notifier, maxRetries int, logger zerolog.Logger, opts ...QueueOption) *Queue {
	if maxRetries < 0 {
		maxRetries = 0
	}
	q := &Queue{
		next:       next,
		jobs:       make(chan job, DefaultQueueSize),
		maxRetries: uint64(maxRetries),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = time.Minute
			return b
		},
		logger: logger.With().Str("service", "notify_queue").Logger(),
	}
	for _, opt := range opts {
		opt(q)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.wg.Add(1)
	go q.run(ctx)

	return q
}

// OrderPlaced enqueues the order e-mails.
func (q *Queue) OrderPlaced(_ context.Context, order model.Order) error {
	return q.enqueue(job{kind: EventPlaced, order: order.Clone()})
}

// OrderShipped enqueues the shipped notice.
func (q *Queue) OrderShipped(_ context.Context, order model.Order) error {
	return q.enqueue(job{kind: EventShipped, order: order.Clone()})
}

func (q *Queue) enqueue(j job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("%w: notification queue closed", model.ErrNotificationFailed)
	}

	select {
	case q.jobs <- j:
		q.logger.Debug().Str("order_id", j.order.ID).Str("kind", j.kind).Msg("notification queued")
		return nil
	default:
		q.logger.Error().Str("order_id", j.order.ID).Str("kind", j.kind).Msg("notification queue full")
		return fmt.Errorf("%w: notification queue full", model.ErrNotificationFailed)
	}
}

// Close drains the queued notifications and stops the worker. Retries still
// waiting when ctx expires are abandoned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) run(ctx context.Context) {
	defer q.wg.Done()
	for j := range q.jobs {
		q.deliver(ctx, j)
	}
}

// composer splits a notification into mails that can be retried one by one.
type composer interface {
	Compose(kind string, order model.Order) ([]Mail, error)
	Deliver(ctx context.Context, mail Mail) error
}

func (q *Queue) deliver(ctx context.Context, j job) {
	log := q.logger.With().Str("order_id", j.order.ID).Str("kind", j.kind).Logger()

	c, ok := q.next.(composer)
	if !ok {
		q.retry(ctx, log, func() error {
			switch j.kind {
			case EventPlaced:
				return q.next.OrderPlaced(ctx, j.order)
			case EventShipped:
				return q.next.OrderShipped(ctx, j.order)
			}
			return nil
		})
		return
	}

	mails, err := c.Compose(j.kind, j.order)
	if err != nil {
		log.Error().Err(err).Msg("notification abandoned")
		return
	}
	// Mails are retried one by one; a delivered mail is never resent.
	for _, mail := range mails {
		q.retry(ctx, log.With().Strs("to", mail.To).Logger(), func() error {
			return c.Deliver(ctx, mail)
		})
	}
}

func (q *Queue) retry(ctx context.Context, log zerolog.Logger, send func() error) {
	attempt := 0

	op := func() error {
		attempt++
		err := send()
		if errors.Is(err, model.ErrMailNotConfigured) || errors.Is(err, ErrDeliveryUnknown) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("notification failed, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(q.newBackOff(), q.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		log.Error().Err(err).Int("attempts", attempt).Msg("notification abandoned")
		return
	}
	log.Info().Int("attempts", attempt).Msg("notification delivered")
}
