package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domorder "example.com/storefront/app/internal/domain/order"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	if len(o.Items) == 0 {
		return nil, domorder.ErrEmptyOrderItems
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (reference, status, total_amount)
		VALUES ($1, $2, $3::numeric)
		RETURNING id
	`, o.Reference, string(o.Status), o.TotalAmount.String()).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, catalog_id, item_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4::numeric, $5)
		`, orderID, item.CatalogID, item.Name, item.UnitPrice.String(), item.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, status, total_amount::text, created_at
		FROM orders
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = r.listOrderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `
		SELECT id, reference, status, total_amount::text, created_at
		FROM orders WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	if o.Items, err = r.listOrderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID int64) ([]domorder.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, catalog_id, item_name, unit_price::text, quantity
		FROM order_items WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domorder.OrderItem
	for rows.Next() {
		var item domorder.OrderItem
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.CatalogID, &item.Name, &price, &item.Quantity); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = parseNumeric(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domorder.Order, error) {
	var o domorder.Order
	var status, total string
	if err := row.Scan(&o.ID, &o.Reference, &status, &total, &o.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := parseNumeric(total)
	if err != nil {
		return nil, err
	}
	o.Status = domorder.Status(status)
	o.TotalAmount = amount
	return &o, nil
}
