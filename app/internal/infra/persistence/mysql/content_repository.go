package mysql

import (
	"context"
	"database/sql"
	"errors"

	domcontent "example.com/storefront/app/internal/domain/content"
)

type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Create(ctx context.Context, p *domcontent.Page) (*domcontent.Page, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO pages (name, content) VALUES (?, ?)
    `, p.Name, []byte(p.Content))
	if err != nil {
		if isDuplicate(err) {
			return nil, domcontent.ErrPageNameExists
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return r.GetByID(ctx, id)
}

func (r *ContentRepository) Update(ctx context.Context, p *domcontent.Page) (*domcontent.Page, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE pages SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
    `, []byte(p.Content), p.ID)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, domcontent.ErrPageNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domcontent.ErrPageNotFound
	}
	return nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*domcontent.Page, error) {
	return r.get(ctx, `SELECT id, name, content, updated_at FROM pages WHERE id = ?`, id)
}

func (r *ContentRepository) GetByName(ctx context.Context, name string) (*domcontent.Page, error) {
	return r.get(ctx, `SELECT id, name, content, updated_at FROM pages WHERE name = ?`, name)
}

func (r *ContentRepository) List(ctx context.Context) ([]*domcontent.Page, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, content, updated_at FROM pages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*domcontent.Page
	for rows.Next() {
		var p domcontent.Page
		if err := rows.Scan(&p.ID, &p.Name, &p.Content, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}

func (r *ContentRepository) get(ctx context.Context, query string, arg any) (*domcontent.Page, error) {
	var p domcontent.Page
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Content, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domcontent.ErrPageNotFound
		}
		return nil, err
	}
	return &p, nil
}
