package importer

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

func row(orderNumber, email, name, sku string, qty int, price string) tasks.ImportRow {
	return tasks.ImportRow{
		OrderNumber:   orderNumber,
		OrderDate:     "2025-10-22",
		CustomerEmail: email,
		CustomerName:  name,
		SKU:           sku,
		Qty:           qty,
		Price:         decimal.RequireFromString(price),
	}
}

func TestPlanGroupTotals(t *testing.T) {
	plan, err := planGroup([]tasks.ImportRow{
		row("ORD-1", "a@example.com", "Alice", "SKU-1", 2, "10.00"),
		row("ORD-1", "a@example.com", "Alice", "SKU-2", 1, "5.00"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if plan.OrderNumber != "ORD-1" || plan.Email != "a@example.com" || plan.Name != "Alice" {
		t.Fatalf("meta = %+v", plan)
	}
	if got := plan.Subtotal.StringFixed(2); got != "25.00" {
		t.Errorf("subtotal = %s, want 25.00", got)
	}
	if len(plan.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(plan.Items))
	}
	if got := plan.Items[0].LineTotal.StringFixed(2); got != "20.00" {
		t.Errorf("line total = %s, want 20.00", got)
	}
}

func TestPlanGroupMergesRepeatedSKU(t *testing.T) {
	plan, err := planGroup([]tasks.ImportRow{
		row("ORD-1", "a@example.com", "", "SKU-1", 2, "3.33"),
		row("ORD-1", "a@example.com", "", "SKU-1", 1, "3.33"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Items) != 1 {
		t.Fatalf("items = %d, want 1 merged item", len(plan.Items))
	}
	it := plan.Items[0]
	if it.Qty != 3 {
		t.Errorf("qty = %d, want 3", it.Qty)
	}
	if got := it.LineTotal.StringFixed(2); got != "9.99" {
		t.Errorf("line total = %s, want 9.99", got)
	}
}

func TestPlanGroupNameDefaultsToEmailLocalPart(t *testing.T) {
	plan, err := planGroup([]tasks.ImportRow{
		row("ORD-1", "bob@example.com", "", "SKU-1", 1, "1.00"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "bob" {
		t.Errorf("name = %q, want bob", plan.Name)
	}
}

func TestPlanGroupSkipsInvalidRows(t *testing.T) {
	plan, err := planGroup([]tasks.ImportRow{
		row("ORD-1", "a@example.com", "Alice", "SKU-1", 1, "2.00"),
		row("ORD-1", "a@example.com", "Alice", "", 1, "2.00"),
		row("ORD-1", "a@example.com", "Alice", "SKU-2", 0, "2.00"),
		row("ORD-1", "a@example.com", "Alice", "SKU-3", 1, "-1.00"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Items) != 1 || plan.Items[0].SKU != "SKU-1" {
		t.Fatalf("items = %+v, want only SKU-1", plan.Items)
	}
}

func TestPlanGroupFatalOnMissingMeta(t *testing.T) {
	cases := []tasks.ImportRow{
		{OrderDate: "2025-10-22", CustomerEmail: "a@example.com"},             // no order number
		{OrderNumber: "ORD-1", CustomerEmail: "a@example.com"},               // no date
		{OrderNumber: "ORD-1", OrderDate: "2025-10-22"},                      // no email
		{OrderNumber: "ORD-1", OrderDate: "22/10/2025", CustomerEmail: "a@b"}, // bad date
	}
	for i, first := range cases {
		if _, err := planGroup([]tasks.ImportRow{first}); !errors.Is(err, orders.ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
	if _, err := planGroup(nil); !errors.Is(err, orders.ErrInvalidInput) {
		t.Errorf("empty group: err = %v, want ErrInvalidInput", err)
	}
}
