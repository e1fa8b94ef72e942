package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindImport         Kind = "import_order"
	KindReserve        Kind = "reserve_stock"
	KindResolvePayment Kind = "resolve_payment"
	KindFinalize       Kind = "finalize_order"
	KindRollback       Kind = "rollback_order"
	KindNotify         Kind = "send_notification"
)

const (
	TopicTasks      = "orders.tasks"
	TopicDeadLetter = "orders.tasks.dlq"
)

// Task is one dispatched unit of work: kind plus payload. Attempt counts
// deliveries; the dispatch layer bumps it on each retry.
type Task struct {
	ID         string          `json:"task_id"`
	Kind       Kind            `json:"kind"`
	Attempt    int             `json:"attempt"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds a task. Key is the Kafka partition key; tasks for the same
// order share a key so they stay ordered.
func New(kind Kind, key, producer string, payload any) Task {
	return Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Attempt:    1,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Key:        key,
		Payload:    MustMarshal(payload),
	}
}

// ---- payloads ----

type ImportRow struct {
	OrderNumber   string          `json:"order_number"`
	OrderDate     string          `json:"order_date"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	SKU           string          `json:"sku"`
	Qty           int             `json:"qty"`
	Price         decimal.Decimal `json:"price"`
}

type ImportPayload struct {
	ImportBatch string      `json:"import_batch"`
	Rows        []ImportRow `json:"rows"`
}

// OrderPayload drives the reserve, finalize, and rollback phases.
type OrderPayload struct {
	OrderID int64 `json:"order_id"`
}

type ResolvePaymentPayload struct {
	OrderID   int64 `json:"order_id"`
	PaymentID int64 `json:"payment_id"`
}

type NotifyPayload struct {
	OrderID int64          `json:"order_id"`
	Type    string         `json:"type"` // success|failure|refund
	Extra   map[string]any `json:"extra,omitempty"`
}
