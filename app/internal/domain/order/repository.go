package order

import "context"

type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
}
