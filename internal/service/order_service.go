package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"saniteetti/internal/config"
	"saniteetti/internal/model"
	"saniteetti/internal/notify"
	"saniteetti/internal/repository"

	"github.com/rs/zerolog"
)

// firstOrderBase is the id the first order number is derived from.
const firstOrderBase = 11001

// orderService implements OrderService.
type orderService struct {
	orderRepo     repository.OrderRepository
	notifier      notify.Notifier
	shippedPolicy string
	now           func() time.Time
	logger        zerolog.Logger
}

// OrderOption configures the order service.
type OrderOption func(*orderService)

// WithClock overrides the clock used for createdAt and shippedAt.
func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) { s.now = now }
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	notifier notify.Notifier,
	shippedPolicy string,
	logger zerolog.Logger,
	opts ...OrderOption,
) OrderService {
	s := &orderService{
		orderRepo:     orderRepo,
		notifier:      notifier,
		shippedPolicy: shippedPolicy,
		now:           time.Now,
		logger:        logger.With().Str("service", "order").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates the request, persists the order and sends the order e-mails.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid order request")
		return nil, err
	}

	var order model.Order
	err := s.orderRepo.Update(ctx, func(orders []model.Order) ([]model.Order, error) {
		order = model.Order{
			ID:        NextOrderID(orders),
			Lang:      model.NormalizeLang(req.Lang),
			Status:    model.OrderStatusNew,
			CreatedAt: s.now().UTC(),
			Customer:  req.Customer,
			Items:     append([]model.OrderItem(nil), req.Items...),
			Subtotal:  req.Subtotal,
			Shipping:  req.Shipping,
			Total:     req.Total,
		}
		return append(orders, order), nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to persist order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("lang", order.Lang).
		Int("item_count", len(order.Items)).
		Float64("total", order.Total).
		Msg("order created successfully")

	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("order stored but e-mails failed")
		return &order, notificationError(err)
	}

	return &order, nil
}

// ListOrders returns every order, newest first.
func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// GetOrder returns the order with id.
func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	for _, o := range orders {
		if o.ID == id {
			return &o, nil
		}
	}

	s.logger.Debug().Str("order_id", id).Msg("order not found")
	return nil, model.ErrOrderNotFound
}

// MarkShipped moves the order to shipped. An order that is already shipped is
// left untouched; whether the e-mail is sent again depends on the policy.
func (s *orderService) MarkShipped(ctx context.Context, id string) (*model.Order, error) {
	var (
		order      model.Order
		transition bool
	)

	err := s.orderRepo.Update(ctx, func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			if orders[i].IsShipped() {
				order = orders[i]
				return nil, repository.ErrNoChange
			}
			shippedAt := s.now().UTC()
			orders[i].Status = model.OrderStatusShipped
			orders[i].ShippedAt = &shippedAt
			order = orders[i].Clone()
			transition = true
			return orders, nil
		}
		return nil, model.ErrOrderNotFound
	})
	if errors.Is(err, model.ErrOrderNotFound) {
		s.logger.Debug().Str("order_id", id).Msg("order not found")
		return nil, err
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to mark order shipped")
		return nil, fmt.Errorf("failed to mark order shipped: %w", err)
	}

	s.logger.Info().
		Str("order_id", id).
		Bool("transition", transition).
		Msg("order marked shipped")

	if !transition && s.shippedPolicy == config.ShippedEmailTransition {
		return &order, nil
	}

	if err := s.notifier.OrderShipped(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("order shipped but e-mail failed")
		return &order, notificationError(err)
	}

	return &order, nil
}

// NextOrderID returns one more than the largest numeric order id, starting
// from 11002. Numeric ids may be written as "11050", "11050.0" or "1.105e4";
// ids that are not whole numbers are ignored.
func NextOrderID(orders []model.Order) string {
	last := int64(firstOrderBase)
	found := false
	for _, o := range orders {
		n, ok := parseOrderNumber(o.ID)
		if !ok {
			continue
		}
		if !found || n > last {
			last = n
			found = true
		}
	}
	return strconv.FormatInt(last+1, 10)
}

// maxExactOrderNumber bounds ids to the range a float64 holds exactly.
const maxExactOrderNumber = 1 << 53

func parseOrderNumber(id string) (int64, bool) {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > maxExactOrderNumber {
		return 0, false
	}
	return int64(f), true
}

func validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.ErrInvalidOrder
	}
	if strings.TrimSpace(req.Customer.Email) == "" ||
		strings.TrimSpace(req.Customer.Company) == "" ||
		len(req.Items) == 0 {
		return model.ErrInvalidOrder
	}
	return nil
}

// notificationError keeps notification-kind errors as they are and wraps
// anything else as a failed notification.
func notificationError(err error) error {
	if model.KindOf(err) == model.KindNotification {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)
}
