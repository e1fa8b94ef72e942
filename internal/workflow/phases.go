package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/notify"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

func (r *Runner) handleImport(ctx context.Context, t tasks.Task) error {
	p, err := tasks.UnwrapPayload[tasks.ImportPayload](t.Payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
	}
	orderID, err := r.Importer.ImportGroup(ctx, p.ImportBatch, p.Rows)
	if err != nil {
		return err
	}
	return r.dispatchNext(ctx, tasks.KindReserve, orderID, tasks.OrderPayload{OrderID: orderID})
}

func (r *Runner) handleReserve(ctx context.Context, t tasks.Task) error {
	p, err := tasks.UnwrapPayload[tasks.OrderPayload](t.Payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
	}
	o, err := r.Orders.Get(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if o.Status != orders.StatusPending {
		r.Log.Info("order not reservable, skipping",
			zap.Int64("order_id", o.ID), zap.String("status", string(o.Status)))
		return nil
	}

	reserved, err := r.Ledger.Reserve(ctx, o)
	if err != nil {
		return err
	}
	if !reserved {
		if _, err := r.Orders.SetStatus(ctx, o.ID, orders.StatusFailed, orders.StatusPending); err != nil {
			return err
		}
		r.Log.Warn("insufficient stock, order failed", zap.Int64("order_id", o.ID))
		return nil
	}

	// The ledger stamped the order reserved; now hand it to payments.
	if _, err := r.Payments.Initiate(ctx, o); err != nil {
		if rerr := r.Ledger.Release(ctx, o); rerr != nil {
			r.Log.Error("release after failed payment initiation",
				zap.Int64("order_id", o.ID), zap.Error(rerr))
		}
		if _, serr := r.Orders.SetStatus(ctx, o.ID, orders.StatusRolledBack,
			orders.StatusReserved); serr != nil {
			r.Log.Error("rollback stamp after failed payment initiation",
				zap.Int64("order_id", o.ID), zap.Error(serr))
		}
		// The order is no longer pending, so a retry would be a no-op.
		// Surface as terminal for operator visibility.
		return errors.Join(
			fmt.Errorf("order %d: payment initiation failed, reservation rolled back", o.ID),
			err, orders.ErrConflict)
	}

	r.Log.Info("order reserved, payment initiated", zap.Int64("order_id", o.ID))
	return nil
}

func (r *Runner) handleResolvePayment(ctx context.Context, t tasks.Task) error {
	p, err := tasks.UnwrapPayload[tasks.ResolvePaymentPayload](t.Payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
	}

	outcome, decided, err := r.Payments.Resolve(ctx, p.OrderID, p.PaymentID)
	if err != nil {
		return err
	}
	if !decided {
		r.Log.Info("payment already resolved, skipping",
			zap.Int64("payment_id", p.PaymentID), zap.String("status", string(outcome)))
		return nil
	}

	if outcome == orders.PaymentSuccess {
		r.Log.Info("payment succeeded",
			zap.Int64("order_id", p.OrderID), zap.Int64("payment_id", p.PaymentID))
		return r.dispatchNext(ctx, tasks.KindFinalize, p.OrderID, tasks.OrderPayload{OrderID: p.OrderID})
	}
	r.Log.Warn("payment failed",
		zap.Int64("order_id", p.OrderID), zap.Int64("payment_id", p.PaymentID))
	return r.dispatchNext(ctx, tasks.KindRollback, p.OrderID, tasks.OrderPayload{OrderID: p.OrderID})
}

func (r *Runner) handleFinalize(ctx context.Context, t tasks.Task) error {
	p, err := tasks.UnwrapPayload[tasks.OrderPayload](t.Payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
	}
	o, err := r.Orders.Get(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if o.Status == orders.StatusFinalized {
		r.Log.Info("order already finalized, skipping", zap.Int64("order_id", o.ID))
		return nil
	}
	if o.Status != orders.StatusReserved && o.Status != orders.StatusPaid {
		r.Log.Warn("order not eligible to finalize, skipping",
			zap.Int64("order_id", o.ID), zap.String("status", string(o.Status)))
		return nil
	}

	if err := r.Ledger.Commit(ctx, o); err != nil {
		return err
	}
	o, err = r.Orders.Get(ctx, p.OrderID)
	if err != nil {
		return err
	}

	// Side effects after the primary transition are isolated: a KPI or
	// notification failure never rolls back the finalized order.
	if err := r.KPI.IncrForFinalized(ctx, o); err != nil {
		r.Log.Error("kpi update failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}
	r.notifyAsync(ctx, o.ID, notify.TypeSuccess, nil)

	r.Log.Info("order finalized", zap.Int64("order_id", o.ID))
	return nil
}

func (r *Runner) handleRollback(ctx context.Context, t tasks.Task) error {
	p, err := tasks.UnwrapPayload[tasks.OrderPayload](t.Payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
	}
	o, err := r.Orders.Get(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if o.Status == orders.StatusFinalized {
		r.Log.Warn("order finalized, cannot roll back, skipping", zap.Int64("order_id", o.ID))
		return nil
	}
	if o.Status == orders.StatusRolledBack || o.Status == orders.StatusFailed {
		r.Log.Info("order already terminal, skipping",
			zap.Int64("order_id", o.ID), zap.String("status", string(o.Status)))
		return nil
	}

	// Release tolerates partial state; log and keep going so the order
	// still lands in rolled_back.
	if err := r.Ledger.Release(ctx, o); err != nil {
		r.Log.Error("inventory release failed during rollback",
			zap.Int64("order_id", o.ID), zap.Error(err))
	}
	if _, err := r.Orders.SetStatus(ctx, o.ID, orders.StatusRolledBack,
		orders.StatusPending, orders.StatusReserved, orders.StatusPaid); err != nil {
		return err
	}

	r.notifyAsync(ctx, o.ID, notify.TypeFailure, nil)
	r.Log.Info("order rolled back", zap.Int64("order_id", o.ID))
	return nil
}

func (r *Runner) handleNotify(ctx context.Context, t tasks.Task) error {
	p, err := tasks.UnwrapPayload[tasks.NotifyPayload](t.Payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
	}
	return r.Notifier.Send(ctx, p.OrderID, p.Type, p.Extra)
}
