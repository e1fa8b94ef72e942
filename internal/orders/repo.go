package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so repo helpers can run
// standalone or inside a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, customer_id, order_number, COALESCE(import_batch::text,''),
       order_date, status, subtotal::text, total::text, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status, subtotal, total string
	err := row.Scan(&o.ID, &o.CustomerID, &o.OrderNumber, &o.ImportBatch,
		&o.OrderDate, &status, &subtotal, &total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, err
	}
	o.Status = Status(status)
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("order %d subtotal: %w", o.ID, err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %d total: %w", o.ID, err)
	}
	return &o, nil
}

// Get loads an order with its items.
func (r *Repo) Get(ctx context.Context, id int64) (*Order, error) {
	return GetOrder(ctx, r.DB, id)
}

func GetOrder(ctx context.Context, q Querier, id int64) (*Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT id, order_id, product_id, qty, unit_price::text, line_total::text
	                           FROM order_items WHERE order_id=$1 ORDER BY product_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		var unit, line string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &unit, &line); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.LineTotal, err = decimal.NewFromString(line); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *Repo) GetStatus(ctx context.Context, id int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return "", err
	}
	return Status(s), nil
}

// SetStatus moves an order to `to` only when its current status is one of
// `from`. Returns false when the guard did not match, which keeps stale
// workers from regressing a terminal state.
func (r *Repo) SetStatus(ctx context.Context, id int64, to Status, from ...Status) (bool, error) {
	return UpdateStatus(ctx, r.DB, id, to, from...)
}

func UpdateStatus(ctx context.Context, q Querier, id int64, to Status, from ...Status) (bool, error) {
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}
	ct, err := q.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now()
	                        WHERE id=$1 AND status = ANY($3)`, id, string(to), allowed)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, sku, name, stock, reserved, sold, price::text, created_at, updated_at
	                              FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var price string
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Stock, &p.Reserved, &p.Sold, &price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- import upserts (run inside the import transaction) ----

// UpsertCustomer creates the customer on first sight; an existing customer
// keeps its stored name.
func UpsertCustomer(ctx context.Context, q Querier, email, name string) (*Customer, error) {
	var c Customer
	err := q.QueryRow(ctx, `
		INSERT INTO customers(email, name) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id, email, name, created_at, updated_at`,
		email, name).Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertProduct registers an unknown sku with zero stock so the catalog can
// be topped up later; an existing product keeps its counters and price.
func UpsertProduct(ctx context.Context, q Querier, sku string, price decimal.Decimal) (*Product, error) {
	var p Product
	var stored string
	err := q.QueryRow(ctx, `
		INSERT INTO products(sku, name, stock, reserved, sold, price)
		VALUES ($1, $1, 0, 0, 0, $2)
		ON CONFLICT (sku) DO UPDATE SET updated_at = now()
		RETURNING id, sku, name, stock, reserved, sold, price::text`,
		sku, price.StringFixed(2)).Scan(&p.ID, &p.SKU, &p.Name, &p.Stock, &p.Reserved, &p.Sold, &stored)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(stored); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreateOrder is idempotent over (order_number, import_batch). A re-run
// of the same batch finds the existing order; customer and date follow the
// latest import rows.
func GetOrCreateOrder(ctx context.Context, q Querier, orderNumber, importBatch string, customerID int64, orderDate time.Time) (*Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `
		INSERT INTO orders(customer_id, order_number, import_batch, order_date, status, subtotal, total)
		VALUES ($1, $2, $3, $4, 'pending', 0, 0)
		ON CONFLICT (order_number, import_batch) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
		    order_date  = EXCLUDED.order_date,
		    updated_at  = now()
		RETURNING `+orderColumns,
		customerID, orderNumber, importBatch, orderDate))
	if err != nil {
		return nil, err
	}
	return o, nil
}

// PutItem overwrites the (order, product) item with the merged quantity
// computed by the import plan, keeping re-runs of a batch idempotent.
func PutItem(ctx context.Context, q Querier, orderID, productID int64, qty int, unitPrice, lineTotal decimal.Decimal) error {
	_, err := q.Exec(ctx, `
		INSERT INTO order_items(order_id, product_id, qty, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id, product_id) DO UPDATE
		SET qty = EXCLUDED.qty, unit_price = EXCLUDED.unit_price, line_total = EXCLUDED.line_total`,
		orderID, productID, qty, unitPrice.StringFixed(2), lineTotal.StringFixed(2))
	return err
}

// RecalcTotals sets subtotal/total from the stored items.
func RecalcTotals(ctx context.Context, q Querier, orderID int64) (decimal.Decimal, error) {
	var sum string
	err := q.QueryRow(ctx, `SELECT COALESCE(SUM(line_total),0)::text FROM order_items WHERE order_id=$1`, orderID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	subtotal, err := decimal.NewFromString(sum)
	if err != nil {
		return decimal.Zero, err
	}
	_, err = q.Exec(ctx, `UPDATE orders SET subtotal=$2, total=$2, updated_at=now() WHERE id=$1`,
		orderID, subtotal.StringFixed(2))
	return subtotal, err
}
