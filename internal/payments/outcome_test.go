package payments

import "testing"

func fixedDraw(n int) func(int) int {
	return func(int) int { return n }
}

func TestDecideForcedOutcome(t *testing.T) {
	// Forced outcome wins regardless of the draw.
	if !decide("success", 0, fixedDraw(10000)) {
		t.Error("forced success must succeed")
	}
	if decide("failed", 1, fixedDraw(1)) {
		t.Error("forced failed must fail")
	}
	if decide("fail", 1, fixedDraw(1)) {
		t.Error("forced fail must fail")
	}
}

func TestDecideThreshold(t *testing.T) {
	// rate 0.9 -> threshold 9000
	if !decide("", 0.9, fixedDraw(9000)) {
		t.Error("draw on the threshold should succeed")
	}
	if decide("", 0.9, fixedDraw(9001)) {
		t.Error("draw above the threshold should fail")
	}
	if !decide("", 0.9, fixedDraw(1)) {
		t.Error("minimum draw should succeed")
	}
}

func TestDecideClampsRate(t *testing.T) {
	if !decide("", 1.5, fixedDraw(10000)) {
		t.Error("rate above 1 clamps to always-succeed")
	}
	if decide("", -0.5, fixedDraw(1)) {
		t.Error("rate below 0 clamps to never-succeed")
	}
}

func TestCryptoDrawRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := cryptoDraw(drawScale)
		if n < 1 || n > drawScale {
			t.Fatalf("draw %d out of [1,%d]", n, drawScale)
		}
	}
}
