package inventory

import (
	"sort"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

// productState is a product's counters as read under lock.
type productState struct {
	ID       int64
	Stock    int
	Reserved int
	Sold     int
}

// delta is the counter adjustment for one product.
type delta struct {
	ProductID int64
	Reserved  int
	Stock     int
	Sold      int
}

type shortage struct {
	ProductID int64
	Required  int
	Available int
}

// productIDs returns the distinct product ids of an order's items in
// ascending order. Locks are always acquired in this order so two orders
// touching overlapping products cannot deadlock.
func productIDs(items []orders.OrderItem) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func qtyByProduct(items []orders.OrderItem) map[int64]int {
	m := make(map[int64]int, len(items))
	for _, it := range items {
		m[it.ProductID] += it.Qty
	}
	return m
}

// planReserve checks availability for every item before any delta is
// produced. One short product voids the whole plan, so a failed reserve
// leaves no counter touched.
func planReserve(items []orders.OrderItem, state map[int64]productState) ([]delta, []shortage) {
	qty := qtyByProduct(items)
	var shortages []shortage
	deltas := make([]delta, 0, len(qty))
	for _, id := range productIDs(items) {
		p := state[id]
		if avail := p.Stock - p.Reserved; avail < qty[id] {
			shortages = append(shortages, shortage{ProductID: id, Required: qty[id], Available: avail})
			continue
		}
		deltas = append(deltas, delta{ProductID: id, Reserved: qty[id]})
	}
	if len(shortages) > 0 {
		return nil, shortages
	}
	return deltas, nil
}

// planRelease returns the reservation each product gives back, clamped at
// the product's current reserved counter. Releasing an order whose
// reservation never (or only partially) applied is therefore safe.
func planRelease(items []orders.OrderItem, state map[int64]productState) []delta {
	qty := qtyByProduct(items)
	deltas := make([]delta, 0, len(qty))
	for _, id := range productIDs(items) {
		back := qty[id]
		if r := state[id].Reserved; back > r {
			back = r
		}
		if back == 0 {
			continue
		}
		deltas = append(deltas, delta{ProductID: id, Reserved: -back})
	}
	return deltas
}

// planCommit converts reservations into permanent decrements.
func planCommit(items []orders.OrderItem) []delta {
	qty := qtyByProduct(items)
	deltas := make([]delta, 0, len(qty))
	for _, id := range productIDs(items) {
		deltas = append(deltas, delta{ProductID: id, Reserved: -qty[id], Stock: -qty[id], Sold: qty[id]})
	}
	return deltas
}
