package order

import (
	"time"

	"github.com/shopspring/decimal"

	domcart "example.com/storefront/app/internal/domain/cart"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusShipped  Status = "SHIPPED"
	StatusCanceled Status = "CANCELED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an order in s may move to next.
// Shipped and canceled orders are final.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCanceled
	case StatusPaid:
		return next == StatusShipped || next == StatusCanceled
	default:
		return false
	}
}

type Order struct {
	ID          int64
	Reference   string
	Status      Status
	TotalAmount decimal.Decimal
	Items       []OrderItem
	CreatedAt   time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	CatalogID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// FromPayload builds a pending order from a cart snapshot.
func FromPayload(reference string, p domcart.Payload) *Order {
	o := &Order{
		Reference:   reference,
		Status:      StatusPending,
		TotalAmount: p.Total,
		Items:       make([]OrderItem, 0, len(p.Lines)),
	}
	for _, l := range p.Lines {
		o.Items = append(o.Items, OrderItem{
			CatalogID: l.ID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return o
}
