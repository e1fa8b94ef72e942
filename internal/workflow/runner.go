package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/locks"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

// Collaborators are injected so the orchestrator can be exercised with
// fakes.

type OrderStore interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
	SetStatus(ctx context.Context, id int64, to orders.Status, from ...orders.Status) (bool, error)
}

type Ledger interface {
	Reserve(ctx context.Context, o *orders.Order) (bool, error)
	Release(ctx context.Context, o *orders.Order) error
	Commit(ctx context.Context, o *orders.Order) error
}

type Payments interface {
	Initiate(ctx context.Context, o *orders.Order) (*orders.Payment, error)
	Resolve(ctx context.Context, orderID, paymentID int64) (orders.PaymentStatus, bool, error)
}

type KPI interface {
	IncrForFinalized(ctx context.Context, o *orders.Order) error
}

type Notifier interface {
	Send(ctx context.Context, orderID int64, typ string, extra map[string]any) error
}

type Importer interface {
	ImportGroup(ctx context.Context, batch string, rows []tasks.ImportRow) (int64, error)
}

// Runner executes phase tasks. Each phase is idempotent: redelivery of an
// already-applied phase logs and returns nil.
type Runner struct {
	Orders   OrderStore
	Ledger   Ledger
	Payments Payments
	KPI      KPI
	Notifier Notifier
	Importer Importer
	Bus      tasks.Dispatcher

	Locks   locks.Locker
	LockTTL time.Duration

	Service string
	Log     *zap.Logger
}

// Handle is the task consumer entry point.
func (r *Runner) Handle(ctx context.Context, t tasks.Task) error {
	lockID, needLock, err := lockIDFor(t)
	if err != nil {
		return err
	}
	if needLock {
		key := locks.PhaseKey(string(t.Kind), lockID)
		ok, err := r.Locks.Acquire(ctx, key, r.LockTTL)
		if err != nil {
			return err
		}
		if !ok {
			// Another delivery of this phase is running; drop and let
			// natural redelivery come back after the holder finishes.
			r.Log.Warn("phase lock held, dropping delivery",
				zap.String("task", string(t.Kind)), zap.String("id", lockID))
			return nil
		}
		defer func() {
			if rerr := r.Locks.Release(ctx, key); rerr != nil {
				r.Log.Error("phase lock release failed", zap.String("key", key), zap.Error(rerr))
			}
		}()
	}

	switch t.Kind {
	case tasks.KindImport:
		return r.handleImport(ctx, t)
	case tasks.KindReserve:
		return r.handleReserve(ctx, t)
	case tasks.KindResolvePayment:
		return r.handleResolvePayment(ctx, t)
	case tasks.KindFinalize:
		return r.handleFinalize(ctx, t)
	case tasks.KindRollback:
		return r.handleRollback(ctx, t)
	case tasks.KindNotify:
		return r.handleNotify(ctx, t)
	}
	return fmt.Errorf("unknown task kind %q: %w", t.Kind, orders.ErrInvalidInput)
}

// lockIDFor picks the mutual-exclusion key: order id for order phases,
// payment id for outcome resolution. Import groups and notifications are
// not phase-locked.
func lockIDFor(t tasks.Task) (string, bool, error) {
	switch t.Kind {
	case tasks.KindReserve, tasks.KindFinalize, tasks.KindRollback:
		p, err := tasks.UnwrapPayload[tasks.OrderPayload](t.Payload)
		if err != nil {
			return "", false, fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
		}
		return strconv.FormatInt(p.OrderID, 10), true, nil
	case tasks.KindResolvePayment:
		p, err := tasks.UnwrapPayload[tasks.ResolvePaymentPayload](t.Payload)
		if err != nil {
			return "", false, fmt.Errorf("%v: %w", err, orders.ErrInvalidInput)
		}
		return strconv.FormatInt(p.PaymentID, 10), true, nil
	}
	return "", false, nil
}

func (r *Runner) dispatchNext(ctx context.Context, kind tasks.Kind, orderID int64, payload any) error {
	t := tasks.New(kind, strconv.FormatInt(orderID, 10), r.Service, payload)
	return r.Bus.Dispatch(ctx, t)
}

// notifyAsync dispatches a notification task, best-effort: a dispatch
// failure here never disturbs the primary transition that already happened.
func (r *Runner) notifyAsync(ctx context.Context, orderID int64, typ string, extra map[string]any) {
	err := r.dispatchNext(ctx, tasks.KindNotify, orderID, tasks.NotifyPayload{
		OrderID: orderID, Type: typ, Extra: extra,
	})
	if err != nil {
		r.Log.Error("notification dispatch failed",
			zap.Int64("order_id", orderID), zap.String("type", typ), zap.Error(err))
	}
}
