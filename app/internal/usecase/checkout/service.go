package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domcart "example.com/storefront/app/internal/domain/cart"
	domcatalog "example.com/storefront/app/internal/domain/catalog"
	domorder "example.com/storefront/app/internal/domain/order"
)

// ErrCartAdjusted means the live catalog changed the cart since the shopper
// last saw it. The cart now holds the adjusted lines and no order was placed.
var ErrCartAdjusted = errors.New("cart changed to match current stock, review before checkout")

// AdjustedError carries the changes reconciliation made to the cart. It
// matches ErrCartAdjusted with errors.Is.
type AdjustedError struct {
	Adjustments []domcart.Adjustment
}

func (e *AdjustedError) Error() string {
	return ErrCartAdjusted.Error()
}

func (e *AdjustedError) Unwrap() error {
	return ErrCartAdjusted
}

const defaultSubmitTimeout = 10 * time.Second

type CartRepository interface {
	Update(ctx context.Context, sessionID string, fn func(c *domcart.Cart) error) error
}

type CatalogReader interface {
	Index(ctx context.Context, ids []int64) (domcatalog.Index, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error)
}

// Notifier announces placed orders. Delivery is best effort.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *domorder.Order) error
}

type Service struct {
	cartRepo      CartRepository
	catalog       CatalogReader
	orderRepo     OrderRepository
	notifier      Notifier
	logger        *zap.Logger
	newReference  func() string
	submitTimeout time.Duration
}

// NewService accepts a nil notifier or logger. A non-positive timeout uses
// the default.
func NewService(
	cartRepo CartRepository,
	catalog CatalogReader,
	orderRepo OrderRepository,
	notifier Notifier,
	submitTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	return &Service{
		cartRepo:      cartRepo,
		catalog:       catalog,
		orderRepo:     orderRepo,
		notifier:      notifier,
		logger:        logger,
		newReference:  uuid.NewString,
		submitTimeout: submitTimeout,
	}
}

// Checkout snapshots the session's cart, submits it as an order and clears
// the cart once the order is stored. The session lock is not held while the
// order is submitted, so the cart may change meanwhile; the submitted order
// always reflects the snapshot. On failure the cart is left as it was. Once
// the order is stored the cart is cleared even if ctx is canceled.
func (s *Service) Checkout(ctx context.Context, sessionID string) (*domorder.Order, error) {
	var payload domcart.Payload
	err := s.cartRepo.Update(ctx, sessionID, func(c *domcart.Cart) error {
		live, err := s.catalog.Index(ctx, c.IDs())
		if err != nil {
			return err
		}
		if adjustments := c.Reconcile(live); len(adjustments) > 0 {
			return &AdjustedError{Adjustments: adjustments}
		}
		payload = c.OrderPayload()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if payload.IsEmpty() {
		return nil, domorder.ErrEmptyOrderItems
	}

	order := domorder.FromPayload(s.newReference(), payload)

	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()
	created, err := s.orderRepo.Create(submitCtx, order)
	if err != nil {
		s.logger.Warn("order submission failed, cart kept",
			zap.String("session_id", sessionID),
			zap.String("reference", order.Reference),
			zap.Error(err))
		return nil, fmt.Errorf("submit order: %w", err)
	}

	// the order exists now; a canceled request must not leave the cart behind
	afterCtx := context.WithoutCancel(ctx)
	err = s.cartRepo.Update(afterCtx, sessionID, func(c *domcart.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil && !errors.Is(err, domcart.ErrSessionNotFound) {
		s.logger.Error("clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.String("reference", created.Reference),
			zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("reference", created.Reference),
		zap.Int64("order_id", created.ID),
		zap.String("total", created.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(created.Items)))

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(afterCtx, created); err != nil {
			s.logger.Warn("order notification failed",
				zap.String("reference", created.Reference),
				zap.Error(err))
		}
	}

	return created, nil
}
