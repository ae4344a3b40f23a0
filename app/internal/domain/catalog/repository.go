package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) (*Entry, error)
	Update(ctx context.Context, e *Entry) (*Entry, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Entry, error)
	List(ctx context.Context, filter ListFilter) ([]*Entry, error)
}
