package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domcontent "example.com/storefront/app/internal/domain/content"
)

const pageColumns = `id, name, content::text, updated_at`

type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) Create(ctx context.Context, p *domcontent.Page) (*domcontent.Page, error) {
	created, err := scanPage(r.pool.QueryRow(ctx, `
		INSERT INTO pages (name, content) VALUES ($1, $2::jsonb)
		RETURNING `+pageColumns,
		p.Name, string(p.Content)))
	if err != nil {
		if isDuplicate(err) {
			return nil, domcontent.ErrPageNameExists
		}
		return nil, err
	}
	return created, nil
}

func (r *ContentRepository) Update(ctx context.Context, p *domcontent.Page) (*domcontent.Page, error) {
	updated, err := scanPage(r.pool.QueryRow(ctx, `
		UPDATE pages SET content = $1::jsonb, updated_at = now() WHERE id = $2
		RETURNING `+pageColumns,
		string(p.Content), p.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcontent.ErrPageNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domcontent.ErrPageNotFound
	}
	return nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*domcontent.Page, error) {
	return r.get(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
}

func (r *ContentRepository) GetByName(ctx context.Context, name string) (*domcontent.Page, error) {
	return r.get(ctx, `SELECT `+pageColumns+` FROM pages WHERE name = $1`, name)
}

func (r *ContentRepository) List(ctx context.Context) ([]*domcontent.Page, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*domcontent.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *ContentRepository) get(ctx context.Context, query string, arg any) (*domcontent.Page, error) {
	p, err := scanPage(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcontent.ErrPageNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanPage(row pgx.Row) (*domcontent.Page, error) {
	var p domcontent.Page
	var content string
	if err := row.Scan(&p.ID, &p.Name, &content, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Content = []byte(content)
	return &p, nil
}
