package importer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/postgres"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

// Service turns one CSV group into a pending order, idempotently over
// (order_number, import_batch).
type Service struct {
	DB  *pgxpool.Pool
	Log *zap.Logger
}

// ImportGroup upserts customer, products, order, and items in a single
// transaction and returns the order id. Items are written with the merged
// plan quantities, so redelivering the same group does not double them.
func (s *Service) ImportGroup(ctx context.Context, batch string, rows []tasks.ImportRow) (int64, error) {
	plan, err := planGroup(rows)
	if err != nil {
		return 0, err
	}

	var orderID int64
	err = postgres.WithTxRetry(ctx, s.DB, func(tx pgx.Tx) error {
		customer, err := orders.UpsertCustomer(ctx, tx, plan.Email, plan.Name)
		if err != nil {
			return err
		}

		order, err := orders.GetOrCreateOrder(ctx, tx, plan.OrderNumber, batch, customer.ID, plan.OrderDate)
		if err != nil {
			return err
		}
		orderID = order.ID

		for _, it := range plan.Items {
			product, err := orders.UpsertProduct(ctx, tx, it.SKU, it.UnitPrice)
			if err != nil {
				return err
			}
			if err := orders.PutItem(ctx, tx, order.ID, product.ID, it.Qty, it.UnitPrice, it.LineTotal); err != nil {
				return err
			}
		}

		_, err = orders.RecalcTotals(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.Log.Info("import group applied",
		zap.String("order_number", plan.OrderNumber),
		zap.String("import_batch", batch),
		zap.Int64("order_id", orderID),
		zap.Int("items", len(plan.Items)))
	return orderID, nil
}
