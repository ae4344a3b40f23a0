package mysql

import (
	"context"
	"database/sql"
	"errors"

	domorder "example.com/storefront/app/internal/domain/order"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order and its items in one transaction. Stock is not
// touched; the catalog owner adjusts it separately.
func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (_ *domorder.Order, retErr error) {
	if len(o.Items) == 0 {
		return nil, domorder.ErrEmptyOrderItems
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (reference, status, total_amount)
        VALUES (?, ?, ?)
    `, o.Reference, o.Status, o.TotalAmount)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, catalog_id, item_name, unit_price, quantity)
            VALUES (?, ?, ?, ?, ?)
        `, orderID, item.CatalogID, item.Name, item.UnitPrice, item.Quantity)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, reference, status, total_amount, created_at
        FROM orders
        ORDER BY id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		var o domorder.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
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
	row := r.db.QueryRowContext(ctx, `
        SELECT id, reference, status, total_amount, created_at
        FROM orders WHERE id = ?
    `, id)

	var o domorder.Order
	if err := row.Scan(&o.ID, &o.Reference, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	items, err := r.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID int64) ([]domorder.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, catalog_id, item_name, unit_price, quantity
        FROM order_items WHERE order_id = ?
        ORDER BY id
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domorder.OrderItem
	for rows.Next() {
		var item domorder.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.CatalogID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
