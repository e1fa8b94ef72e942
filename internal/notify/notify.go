package notify

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

const (
	TypeSuccess = "success"
	TypeFailure = "failure"
	TypeRefund  = "refund"
)

// Sink records order notifications: a structured log line plus a durable
// notification_logs row.
type Sink struct {
	DB  *pgxpool.Pool
	Log *zap.Logger
}

// statusFor maps the notification type onto the customer-facing status
// word; unknown types fall back to the order's own status.
func statusFor(typ string, o *orders.Order) string {
	switch typ {
	case TypeSuccess:
		return "processed"
	case TypeFailure:
		return "failed"
	case TypeRefund:
		return "refunded"
	}
	return string(o.Status)
}

func payloadFor(o *orders.Order, typ string, extra map[string]any) map[string]any {
	payload := map[string]any{
		"order_id":    o.ID,
		"customer_id": o.CustomerID,
		"status":      statusFor(typ, o),
		"total":       o.Total,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}

func (s *Sink) Send(ctx context.Context, orderID int64, typ string, extra map[string]any) error {
	o, err := orders.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		return err
	}

	payload := payloadFor(o, typ, extra)
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = s.DB.Exec(ctx, `
		INSERT INTO notification_logs(order_id, customer_id, type, payload, sent_at)
		VALUES ($1, $2, $3, $4, now())`,
		o.ID, o.CustomerID, typ, b)
	if err != nil {
		return err
	}

	s.Log.Info("order notification sent",
		zap.Int64("order_id", o.ID),
		zap.String("type", typ),
		zap.String("status", payload["status"].(string)))
	return nil
}
