package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

const catalogColumns = `id, kind, name, description, image_url, unit_price, stock, is_active`

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Create(ctx context.Context, e *domcatalog.Entry) (*domcatalog.Entry, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO catalog_entries (kind, name, description, image_url, unit_price, stock, is_active)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, e.Kind, e.Name, e.Description, e.ImageURL, e.UnitPrice, e.Stock, e.IsActive)
	if err != nil {
		return nil, err
	}
	e.ID, _ = res.LastInsertId()
	return e, nil
}

func (r *CatalogRepository) Update(ctx context.Context, e *domcatalog.Entry) (*domcatalog.Entry, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE catalog_entries
        SET kind = ?, name = ?, description = ?, image_url = ?, unit_price = ?, stock = ?, is_active = ?
        WHERE id = ?
    `, e.Kind, e.Name, e.Description, e.ImageURL, e.UnitPrice, e.Stock, e.IsActive, e.ID)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, domcatalog.ErrEntryNotFound
	}
	return e, nil
}

func (r *CatalogRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM catalog_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domcatalog.ErrEntryNotFound
	}
	return nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*domcatalog.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM catalog_entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+catalogColumns+` FROM catalog_entries WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *CatalogRepository) List(ctx context.Context, filter domcatalog.ListFilter) ([]*domcatalog.Entry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries`
	var clauses []string
	var args []any

	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Search != "" {
		clauses = append(clauses, "name LIKE ?")
		args = append(args, fmt.Sprintf("%%%s%%", filter.Search))
	}
	if filter.OnlyActive {
		clauses = append(clauses, "is_active = 1")
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domcatalog.Entry, error) {
	var e domcatalog.Entry
	if err := row.Scan(&e.ID, &e.Kind, &e.Name, &e.Description, &e.ImageURL, &e.UnitPrice, &e.Stock, &e.IsActive); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]*domcatalog.Entry, error) {
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
