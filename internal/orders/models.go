package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        int64
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID        int64
	SKU       string
	Name      string
	Stock     int
	Reserved  int
	Sold      int
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available is the quantity still reservable.
func (p Product) Available() int { return p.Stock - p.Reserved }

type Order struct {
	ID          int64
	CustomerID  int64
	OrderNumber string
	ImportBatch string // uuid, empty when not imported
	OrderDate   time.Time
	Status      Status
	Subtotal    decimal.Decimal
	Total       decimal.Decimal
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Qty       int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type Payment struct {
	ID          int64
	OrderID     int64
	Status      PaymentStatus
	Provider    string
	ProviderRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NotificationLog struct {
	ID         int64
	OrderID    int64
	CustomerID int64
	Type       string
	Payload    []byte
	SentAt     time.Time
}
