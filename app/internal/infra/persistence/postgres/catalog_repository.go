package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

const catalogColumns = `id, kind, name, description, image_url, unit_price::text, stock, is_active`

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) Create(ctx context.Context, e *domcatalog.Entry) (*domcatalog.Entry, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO catalog_entries (kind, name, description, image_url, unit_price, stock, is_active)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		RETURNING id
	`, string(e.Kind), e.Name, e.Description, e.ImageURL, e.UnitPrice.String(), e.Stock, e.IsActive).Scan(&e.ID)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *CatalogRepository) Update(ctx context.Context, e *domcatalog.Entry) (*domcatalog.Entry, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE catalog_entries
		SET kind = $1, name = $2, description = $3, image_url = $4, unit_price = $5::numeric, stock = $6, is_active = $7
		WHERE id = $8
	`, string(e.Kind), e.Name, e.Description, e.ImageURL, e.UnitPrice.String(), e.Stock, e.IsActive, e.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domcatalog.ErrEntryNotFound
	}
	return e, nil
}

func (r *CatalogRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalog_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domcatalog.ErrEntryNotFound
	}
	return nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*domcatalog.Entry, error) {
	e, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+catalogColumns+` FROM catalog_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcatalog.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domcatalog.Entry, error) {
	if len(ids) == 0 {
		return []*domcatalog.Entry{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+catalogColumns+` FROM catalog_entries WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (r *CatalogRepository) List(ctx context.Context, filter domcatalog.ListFilter) ([]*domcatalog.Entry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries`
	var clauses []string
	var args []any

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		clauses = append(clauses, "kind = "+arg(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, "name ILIKE "+arg(len(args)))
	}
	if filter.OnlyActive {
		clauses = append(clauses, "is_active")
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func scanEntry(row pgx.Row) (*domcatalog.Entry, error) {
	var e domcatalog.Entry
	var kind, price string
	if err := row.Scan(&e.ID, &kind, &e.Name, &e.Description, &e.ImageURL, &price, &e.Stock, &e.IsActive); err != nil {
		return nil, err
	}
	unitPrice, err := parseNumeric(price)
	if err != nil {
		return nil, err
	}
	e.Kind = domcatalog.Kind(kind)
	e.UnitPrice = unitPrice
	return &e, nil
}

func collectEntries(rows pgx.Rows) ([]*domcatalog.Entry, error) {
	defer rows.Close()

	var entries []*domcatalog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
