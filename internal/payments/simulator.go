package payments

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/postgres"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

const provider = "fakepay"

// Scheduler defers the outcome-resolution task.
type Scheduler interface {
	DispatchIn(ctx context.Context, t tasks.Task, delay time.Duration) error
}

// Simulator stands in for a payment gateway: it books an initiated payment
// and resolves its outcome after a configurable delay.
type Simulator struct {
	DB      *pgxpool.Pool
	Sched   Scheduler
	Service string

	Delay       time.Duration
	Forced      string  // "", "success", "failed"/"fail"
	SuccessRate float64 // clamped to [0,1]

	Log *zap.Logger
}

// Initiate creates the payment record and schedules its resolution.
func (s *Simulator) Initiate(ctx context.Context, o *orders.Order) (*orders.Payment, error) {
	p, err := orders.CreatePayment(ctx, s.DB, o.ID, provider, "")
	if err != nil {
		return nil, err
	}
	t := tasks.New(tasks.KindResolvePayment, strconv.FormatInt(o.ID, 10), s.Service,
		tasks.ResolvePaymentPayload{OrderID: o.ID, PaymentID: p.ID})
	if err := s.Sched.DispatchIn(ctx, t, s.Delay); err != nil {
		return nil, err
	}
	s.Log.Info("payment initiated",
		zap.Int64("order_id", o.ID), zap.Int64("payment_id", p.ID))
	return p, nil
}

// Resolve decides and persists the payment outcome. The payment row is
// re-checked under an exclusive lock inside the transaction that writes the
// terminal status, so two concurrent resolvers cannot both report decided.
// The caller dispatches the follow-up phase only when decided is true.
func (s *Simulator) Resolve(ctx context.Context, orderID, paymentID int64) (outcome orders.PaymentStatus, decided bool, err error) {
	err = postgres.WithTxRetry(ctx, s.DB, func(tx pgx.Tx) error {
		decided = false
		p, err := orders.LockPayment(ctx, tx, paymentID, orderID)
		if err != nil {
			return err
		}
		if orders.PaymentTerminal(p.Status) {
			outcome = p.Status
			return nil
		}

		if decide(s.Forced, s.SuccessRate, cryptoDraw) {
			outcome = orders.PaymentSuccess
		} else {
			outcome = orders.PaymentFailed
		}
		if err := orders.SetPaymentStatus(ctx, tx, p.ID, outcome); err != nil {
			return err
		}
		decided = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return outcome, decided, nil
}
