package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreatePayment inserts a fresh initiated payment for the order.
func CreatePayment(ctx context.Context, q Querier, orderID int64, provider, providerRef string) (*Payment, error) {
	var p Payment
	var status string
	err := q.QueryRow(ctx, `
		INSERT INTO payments(order_id, status, provider, provider_ref)
		VALUES ($1, 'initiated', $2, $3)
		RETURNING id, order_id, status, provider, provider_ref, created_at, updated_at`,
		orderID, provider, providerRef).
		Scan(&p.ID, &p.OrderID, &status, &p.Provider, &p.ProviderRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = PaymentStatus(status)
	return &p, nil
}

// LockPayment loads the payment row under an exclusive lock so concurrent
// resolvers serialize on it. Must run inside a transaction.
func LockPayment(ctx context.Context, q Querier, paymentID, orderID int64) (*Payment, error) {
	var p Payment
	var status string
	err := q.QueryRow(ctx, `
		SELECT id, order_id, status, provider, provider_ref, created_at, updated_at
		FROM payments WHERE id=$1 AND order_id=$2 FOR UPDATE`,
		paymentID, orderID).
		Scan(&p.ID, &p.OrderID, &status, &p.Provider, &p.ProviderRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment %d for order %d: %w", paymentID, orderID, ErrNotFound)
		}
		return nil, err
	}
	p.Status = PaymentStatus(status)
	return &p, nil
}

func SetPaymentStatus(ctx context.Context, q Querier, paymentID int64, to PaymentStatus) error {
	_, err := q.Exec(ctx, `UPDATE payments SET status=$2, updated_at=now() WHERE id=$1`,
		paymentID, string(to))
	return err
}
