package notify

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

func TestStatusFor(t *testing.T) {
	o := &orders.Order{Status: orders.StatusReserved}
	cases := map[string]string{
		TypeSuccess: "processed",
		TypeFailure: "failed",
		TypeRefund:  "refunded",
		"mystery":   "reserved", // unknown types fall back to order status
	}
	for typ, want := range cases {
		if got := statusFor(typ, o); got != want {
			t.Errorf("statusFor(%q) = %q, want %q", typ, got, want)
		}
	}
}

func TestPayloadFor(t *testing.T) {
	o := &orders.Order{
		ID:         7,
		CustomerID: 3,
		Status:     orders.StatusFinalized,
		Total:      decimal.RequireFromString("25.00"),
	}
	p := payloadFor(o, TypeRefund, map[string]any{"refund_amount": "5.00"})

	if p["order_id"] != int64(7) || p["customer_id"] != int64(3) {
		t.Errorf("ids: %+v", p)
	}
	if p["status"] != "refunded" {
		t.Errorf("status = %v", p["status"])
	}
	if p["refund_amount"] != "5.00" {
		t.Errorf("extra not merged: %+v", p)
	}
	if !p["total"].(decimal.Decimal).Equal(o.Total) {
		t.Errorf("total = %v", p["total"])
	}
}
