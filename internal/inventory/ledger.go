package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/postgres"
)

// Ledger owns every mutation of product stock counters. All operations run
// in one transaction with row locks taken in ascending product id.
type Ledger struct {
	DB  *pgxpool.Pool
	Log *zap.Logger
}

// Reserve places a hold on every item of the order, all-or-nothing. On
// success the order is stamped reserved inside the same transaction. A
// false return means at least one product lacked available stock and
// nothing was changed.
func (l *Ledger) Reserve(ctx context.Context, o *orders.Order) (bool, error) {
	var ok bool
	err := postgres.WithTxRetry(ctx, l.DB, func(tx pgx.Tx) error {
		ok = false
		state, err := lockProducts(ctx, tx, o.Items)
		if err != nil {
			return err
		}
		deltas, shortages := planReserve(o.Items, state)
		if len(shortages) > 0 {
			for _, s := range shortages {
				l.Log.Warn("insufficient stock",
					zap.Int64("order_id", o.ID),
					zap.Int64("product_id", s.ProductID),
					zap.Int("required", s.Required),
					zap.Int("available", s.Available))
			}
			return nil
		}
		if err := applyDeltas(ctx, tx, deltas); err != nil {
			return err
		}
		moved, err := orders.UpdateStatus(ctx, tx, o.ID, orders.StatusReserved, orders.StatusPending)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("order %d left pending during reserve: %w", o.ID, orders.ErrConflict)
		}
		ok = true
		return nil
	})
	return ok, err
}

// Release gives back the order's reservations. Per-product amounts are
// clamped at the current reserved counter, so calling it for an order with
// zero net reservation effect is a no-op.
func (l *Ledger) Release(ctx context.Context, o *orders.Order) error {
	return postgres.WithTxRetry(ctx, l.DB, func(tx pgx.Tx) error {
		state, err := lockProducts(ctx, tx, o.Items)
		if err != nil {
			return err
		}
		return applyDeltas(ctx, tx, planRelease(o.Items, state))
	})
}

// Commit converts the order's reservations into sold stock and stamps the
// order finalized, atomically.
func (l *Ledger) Commit(ctx context.Context, o *orders.Order) error {
	return postgres.WithTxRetry(ctx, l.DB, func(tx pgx.Tx) error {
		if _, err := lockProducts(ctx, tx, o.Items); err != nil {
			return err
		}
		if err := applyDeltas(ctx, tx, planCommit(o.Items)); err != nil {
			return err
		}
		moved, err := orders.UpdateStatus(ctx, tx, o.ID, orders.StatusFinalized,
			orders.StatusReserved, orders.StatusPaid)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("order %d not committable: %w", o.ID, orders.ErrConflict)
		}
		return nil
	})
}

// lockProducts acquires row locks one product at a time in ascending id.
func lockProducts(ctx context.Context, tx pgx.Tx, items []orders.OrderItem) (map[int64]productState, error) {
	state := make(map[int64]productState, len(items))
	for _, id := range productIDs(items) {
		var p productState
		p.ID = id
		err := tx.QueryRow(ctx, `SELECT stock, reserved, sold FROM products WHERE id=$1 FOR UPDATE`, id).
			Scan(&p.Stock, &p.Reserved, &p.Sold)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("product %d: %w", id, orders.ErrNotFound)
			}
			return nil, err
		}
		state[id] = p
	}
	return state, nil
}

func applyDeltas(ctx context.Context, tx pgx.Tx, deltas []delta) error {
	for _, d := range deltas {
		_, err := tx.Exec(ctx, `UPDATE products
			SET reserved = reserved + $2, stock = stock + $3, sold = sold + $4, updated_at = now()
			WHERE id = $1`, d.ProductID, d.Reserved, d.Stock, d.Sold)
		if err != nil {
			return err
		}
	}
	return nil
}
