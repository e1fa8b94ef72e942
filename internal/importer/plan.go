package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

// groupPlan is what one CSV group boils down to before touching the
// database: order meta from the first row, items merged per sku.
type groupPlan struct {
	OrderNumber string
	OrderDate   time.Time
	Email       string
	Name        string
	Items       []itemPlan
	Subtotal    decimal.Decimal
}

type itemPlan struct {
	SKU       string
	Qty       int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// planGroup validates and normalizes one import group. The first row drives
// order meta; repeated rows for the same sku merge by summing qty, with the
// line total recomputed at 2 decimals. Invalid item rows are skipped.
func planGroup(rows []tasks.ImportRow) (*groupPlan, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty import group: %w", orders.ErrInvalidInput)
	}

	first := rows[0]
	if first.OrderNumber == "" || first.OrderDate == "" || first.CustomerEmail == "" {
		return nil, fmt.Errorf("missing order_number, order_date, or customer_email: %w", orders.ErrInvalidInput)
	}
	date, err := time.Parse("2006-01-02", first.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("order_date %q: %w", first.OrderDate, orders.ErrInvalidInput)
	}

	name := strings.TrimSpace(first.CustomerName)
	if name == "" {
		name, _, _ = strings.Cut(first.CustomerEmail, "@")
	}

	plan := &groupPlan{
		OrderNumber: first.OrderNumber,
		OrderDate:   date,
		Email:       first.CustomerEmail,
		Name:        name,
		Subtotal:    decimal.Zero,
	}

	index := make(map[string]int)
	for _, row := range rows {
		sku := strings.TrimSpace(row.SKU)
		if sku == "" || row.Qty < 1 || row.Price.IsNegative() {
			continue
		}
		i, ok := index[sku]
		if !ok {
			i = len(plan.Items)
			index[sku] = i
			plan.Items = append(plan.Items, itemPlan{SKU: sku})
		}
		plan.Items[i].Qty += row.Qty
		plan.Items[i].UnitPrice = row.Price
	}

	for i := range plan.Items {
		it := &plan.Items[i]
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))).Round(2)
		plan.Subtotal = plan.Subtotal.Add(it.LineTotal)
	}
	plan.Subtotal = plan.Subtotal.Round(2)
	return plan, nil
}
