package tasks

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

func TestClassify(t *testing.T) {
	transient := errors.New("connection reset")

	cases := []struct {
		name    string
		err     error
		attempt int
		want    disposition
	}{
		{"nil error", nil, 1, dispositionDone},
		{"transient first attempt", transient, 1, dispositionRetry},
		{"transient under budget", transient, 2, dispositionRetry},
		{"transient exhausted", transient, 3, dispositionDeadLetter},
		{"not found never retries", fmt.Errorf("order 9: %w", orders.ErrNotFound), 1, dispositionDeadLetter},
		{"invalid input never retries", fmt.Errorf("bad group: %w", orders.ErrInvalidInput), 1, dispositionDeadLetter},
		{"conflict never retries", fmt.Errorf("stale: %w", orders.ErrConflict), 1, dispositionDeadLetter},
	}
	for _, tc := range cases {
		if got := classify(tc.err, tc.attempt, 3); got != tc.want {
			t.Errorf("%s: classify = %d, want %d", tc.name, got, tc.want)
		}
	}
}
