package inventory

import (
	"testing"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

func items(pairs ...[2]int64) []orders.OrderItem {
	out := make([]orders.OrderItem, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, orders.OrderItem{ProductID: p[0], Qty: int(p[1])})
	}
	return out
}

func TestProductIDsSortedDistinct(t *testing.T) {
	ids := productIDs(items([2]int64{9, 1}, [2]int64{3, 2}, [2]int64{9, 1}))
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 9 {
		t.Fatalf("got %v, want [3 9]", ids)
	}
}

func TestPlanReserveSufficient(t *testing.T) {
	// Scenario: SKU-1 qty=2 stock=5, SKU-2 qty=1 stock=1.
	state := map[int64]productState{
		1: {ID: 1, Stock: 5},
		2: {ID: 2, Stock: 1},
	}
	deltas, shortages := planReserve(items([2]int64{1, 2}, [2]int64{2, 1}), state)
	if len(shortages) != 0 {
		t.Fatalf("unexpected shortages: %v", shortages)
	}
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas, want 2", len(deltas))
	}
	if deltas[0].ProductID != 1 || deltas[0].Reserved != 2 || deltas[0].Stock != 0 || deltas[0].Sold != 0 {
		t.Errorf("product 1 delta = %+v", deltas[0])
	}
	if deltas[1].ProductID != 2 || deltas[1].Reserved != 1 {
		t.Errorf("product 2 delta = %+v", deltas[1])
	}
}

func TestPlanReserveAllOrNothing(t *testing.T) {
	// Product 2 is out of stock; product 1 must not move either.
	state := map[int64]productState{
		1: {ID: 1, Stock: 5},
		2: {ID: 2, Stock: 0},
	}
	deltas, shortages := planReserve(items([2]int64{1, 2}, [2]int64{2, 1}), state)
	if deltas != nil {
		t.Fatalf("expected no deltas, got %v", deltas)
	}
	if len(shortages) != 1 || shortages[0].ProductID != 2 || shortages[0].Required != 1 || shortages[0].Available != 0 {
		t.Fatalf("shortages = %v", shortages)
	}
}

func TestPlanReserveCountsExistingReservations(t *testing.T) {
	state := map[int64]productState{1: {ID: 1, Stock: 5, Reserved: 4}}
	deltas, shortages := planReserve(items([2]int64{1, 2}), state)
	if deltas != nil || len(shortages) != 1 {
		t.Fatalf("reserved stock must not be reservable again: deltas=%v shortages=%v", deltas, shortages)
	}
	if shortages[0].Available != 1 {
		t.Errorf("available = %d, want 1", shortages[0].Available)
	}
}

func TestPlanReleaseClampsAtZero(t *testing.T) {
	// Product 2 never got its reservation applied; releasing must not
	// push its counter negative.
	state := map[int64]productState{
		1: {ID: 1, Stock: 5, Reserved: 2},
		2: {ID: 2, Stock: 1, Reserved: 0},
	}
	deltas := planRelease(items([2]int64{1, 2}, [2]int64{2, 1}), state)
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1: %v", len(deltas), deltas)
	}
	if deltas[0].ProductID != 1 || deltas[0].Reserved != -2 {
		t.Errorf("delta = %+v", deltas[0])
	}
}

func TestPlanReleaseZeroNetEffect(t *testing.T) {
	state := map[int64]productState{1: {ID: 1, Stock: 5, Reserved: 0}}
	if deltas := planRelease(items([2]int64{1, 3}), state); len(deltas) != 0 {
		t.Fatalf("release with nothing reserved should be a no-op, got %v", deltas)
	}
}

func TestPlanCommit(t *testing.T) {
	deltas := planCommit(items([2]int64{1, 2}, [2]int64{2, 1}))
	want := map[int64]delta{
		1: {ProductID: 1, Reserved: -2, Stock: -2, Sold: 2},
		2: {ProductID: 2, Reserved: -1, Stock: -1, Sold: 1},
	}
	if len(deltas) != len(want) {
		t.Fatalf("got %d deltas, want %d", len(deltas), len(want))
	}
	for _, d := range deltas {
		if d != want[d.ProductID] {
			t.Errorf("product %d: got %+v, want %+v", d.ProductID, d, want[d.ProductID])
		}
	}
}

func TestPlanReserveMergesDuplicateItems(t *testing.T) {
	state := map[int64]productState{1: {ID: 1, Stock: 3}}
	deltas, shortages := planReserve(items([2]int64{1, 2}, [2]int64{1, 2}), state)
	if len(shortages) != 1 {
		t.Fatalf("4 units from stock 3 should be short, got deltas=%v", deltas)
	}
}
