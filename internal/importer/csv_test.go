package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

const sampleCSV = `order_number,order_date,customer_email,customer_name,sku,qty,price
ORD-1,2025-10-22,a@example.com,Alice,SKU-1,2,10.00
ORD-1,2025-10-22,a@example.com,Alice,SKU-2,1,5.00
ORD-2,2025-10-23,b@example.com,Bob,SKU-1,1,10.00
`

func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if len(groups["ORD-1"]) != 2 || len(groups["ORD-2"]) != 1 {
		t.Fatalf("group sizes: ORD-1=%d ORD-2=%d", len(groups["ORD-1"]), len(groups["ORD-2"]))
	}

	r := groups["ORD-1"][0]
	if r.CustomerEmail != "a@example.com" || r.SKU != "SKU-1" || r.Qty != 2 {
		t.Errorf("row = %+v", r)
	}
	if got := r.Price.StringFixed(2); got != "10.00" {
		t.Errorf("price = %s, want 10.00", got)
	}
}

func TestParseGroupsColumnOrderIndependent(t *testing.T) {
	csv := "sku,price,qty,order_number,order_date,customer_email\nSKU-9,1.50,3,ORD-9,2025-01-01,x@example.com\n"
	groups, err := ParseGroups(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	r := groups["ORD-9"][0]
	if r.SKU != "SKU-9" || r.Qty != 3 || r.OrderNumber != "ORD-9" {
		t.Errorf("row = %+v", r)
	}
}

func TestParseGroupsEmptyInput(t *testing.T) {
	if _, err := ParseGroups(strings.NewReader("")); !errors.Is(err, orders.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestParseGroupsBadNumbersPassThroughAsZero(t *testing.T) {
	csv := "order_number,order_date,customer_email,sku,qty,price\nORD-1,2025-10-22,a@example.com,SKU-1,two,abc\n"
	groups, err := ParseGroups(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	r := groups["ORD-1"][0]
	if r.Qty != 0 || !r.Price.IsZero() {
		t.Errorf("row = %+v, want zero qty and price", r)
	}
}
