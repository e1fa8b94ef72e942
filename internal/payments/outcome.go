package payments

import (
	"crypto/rand"
	"math"
	"math/big"
)

const drawScale = 10000

// decide resolves a payment outcome. A forced override wins; otherwise a
// uniform draw in [1, drawScale] is compared against the success threshold.
func decide(forced string, successRate float64, draw func(int) int) bool {
	switch forced {
	case "success":
		return true
	case "failed", "fail":
		return false
	}

	successRate = math.Max(0, math.Min(1, successRate))
	threshold := int(math.Round(successRate * drawScale))
	return draw(drawScale) <= threshold
}

// cryptoDraw returns a uniform int in [1, scale] from crypto/rand, so the
// simulation cannot be predicted or biased by a weak PRNG.
func cryptoDraw(scale int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(scale)))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic(err)
	}
	return int(n.Int64()) + 1
}
