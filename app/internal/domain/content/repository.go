package content

import "context"

type Repository interface {
	Create(ctx context.Context, p *Page) (*Page, error)
	Update(ctx context.Context, p *Page) (*Page, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Page, error)
	GetByName(ctx context.Context, name string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
}
