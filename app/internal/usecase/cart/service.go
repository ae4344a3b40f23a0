package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domcart "example.com/storefront/app/internal/domain/cart"
	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

type CatalogReader interface {
	GetActive(ctx context.Context, id int64) (*domcatalog.Entry, error)
	Index(ctx context.Context, ids []int64) (domcatalog.Index, error)
}

// View is what the storefront renders for a cart. ItemCount feeds the badge.
type View struct {
	SessionID   string
	Lines       []domcart.Line
	Total       decimal.Decimal
	ItemCount   int64
	LineCount   int
	Adjustments []domcart.Adjustment
}

func newView(sessionID string, c *domcart.Cart, adjustments []domcart.Adjustment) *View {
	return &View{
		SessionID:   sessionID,
		Lines:       c.Lines(),
		Total:       c.Total(),
		ItemCount:   c.ItemCount(),
		LineCount:   c.LineCount(),
		Adjustments: adjustments,
	}
}

type Service struct {
	carts   domcart.Repository
	catalog CatalogReader
	newID   func() string
	logger  *zap.Logger
}

func NewService(carts domcart.Repository, catalog CatalogReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		carts:   carts,
		catalog: catalog,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

func (s *Service) StartSession(ctx context.Context) (string, error) {
	id := s.newID()
	if err := s.carts.Create(ctx, id); err != nil {
		return "", err
	}
	s.logger.Debug("cart session started", zap.String("session_id", id))
	return id, nil
}

func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	return s.carts.Delete(ctx, sessionID)
}

// Get reconciles the cart against the live catalog before returning it.
func (s *Service) Get(ctx context.Context, sessionID string) (*View, error) {
	var view *View
	err := s.carts.Update(ctx, sessionID, func(c *domcart.Cart) error {
		live, err := s.catalog.Index(ctx, c.IDs())
		if err != nil {
			return err
		}
		adjustments := c.Reconcile(live)
		if len(adjustments) > 0 {
			s.logger.Info("cart reconciled with catalog",
				zap.String("session_id", sessionID),
				zap.Int("adjustments", len(adjustments)))
		}
		view = newView(sessionID, c, adjustments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem adds quantity of an active catalog entry. If the cart had to be
// clamped to stock, the clamped view is returned together with a
// *domcart.StockExceededError.
func (s *Service) AddItem(ctx context.Context, sessionID string, entryID, quantity int64) (*View, error) {
	if quantity < 1 {
		return nil, domcart.ErrInvalidQuantity
	}
	e, err := s.catalog.GetActive(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var view *View
	var warning error
	err = s.carts.Update(ctx, sessionID, func(c *domcart.Cart) error {
		if err := c.Add(*e, quantity); err != nil {
			if !errors.Is(err, domcart.ErrStockExceeded) {
				return err
			}
			warning = err
		}
		view = newView(sessionID, c, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, warning
}

// SetQuantity refreshes the line from the live catalog and then sets its
// quantity. A line whose entry is no longer sold is removed instead.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, entryID, quantity int64) (*View, error) {
	if quantity < 1 {
		return nil, domcart.ErrInvalidQuantity
	}
	e, err := s.catalog.GetActive(ctx, entryID)
	if err != nil && !errors.Is(err, domcatalog.ErrEntryNotFound) {
		return nil, err
	}

	var view *View
	var warning error
	err = s.carts.Update(ctx, sessionID, func(c *domcart.Cart) error {
		var adjustments []domcart.Adjustment
		if e == nil {
			if line, ok := c.Line(entryID); ok {
				c.Remove(entryID)
				adjustments = append(adjustments, domcart.Adjustment{
					ID:      entryID,
					Name:    line.Name,
					From:    line.Quantity,
					Removed: true,
				})
			}
			view = newView(sessionID, c, adjustments)
			return nil
		}

		if adj := c.Refresh(*e); adj != nil {
			adjustments = append(adjustments, *adj)
		}
		if err := c.SetQuantity(entryID, quantity); err != nil {
			if !errors.Is(err, domcart.ErrStockExceeded) {
				return err
			}
			warning = err
		}
		view = newView(sessionID, c, adjustments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, warning
}

func (s *Service) RemoveItem(ctx context.Context, sessionID string, entryID int64) (*View, error) {
	var view *View
	err := s.carts.Update(ctx, sessionID, func(c *domcart.Cart) error {
		c.Remove(entryID)
		view = newView(sessionID, c, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
