package kpi

import "testing"

func TestAvgValue(t *testing.T) {
	cases := []struct {
		revenue float64
		count   int64
		want    float64
	}{
		{0, 0, 0},
		{100, 0, 0},
		{100, 4, 25},
		{25.005, 1, 25.01}, // rounds to 2 decimals
		{-20, 2, -10},      // refunds can push a day negative
	}
	for _, tc := range cases {
		if got := avgValue(tc.revenue, tc.count); got != tc.want {
			t.Errorf("avgValue(%v, %d) = %v, want %v", tc.revenue, tc.count, got, tc.want)
		}
	}
}
