package orders

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusReserved},
		{StatusPending, StatusFailed},
		{StatusPending, StatusRolledBack},
		{StatusReserved, StatusPaid},
		{StatusReserved, StatusFinalized},
		{StatusReserved, StatusRolledBack},
		{StatusPaid, StatusFinalized},
		{StatusPaid, StatusRolledBack},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusFinalized},
		{StatusReserved, StatusPending},
		{StatusFinalized, StatusRolledBack},
		{StatusFailed, StatusPending},
		{StatusRolledBack, StatusReserved},
		{StatusFinalized, StatusFinalized},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusFinalized, StatusFailed, StatusRolledBack} {
		if !Terminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusReserved, StatusPaid} {
		if Terminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestPaymentTerminal(t *testing.T) {
	if PaymentTerminal(PaymentInitiated) {
		t.Error("initiated payment should not be terminal")
	}
	if !PaymentTerminal(PaymentSuccess) || !PaymentTerminal(PaymentFailed) {
		t.Error("success and failed payments should be terminal")
	}
}
