package kpi

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/redisx"
)

// Store keeps the per-day revenue KPIs and the customer leaderboard in
// Redis. Callers treat it as best-effort; counters can be rebuilt from the
// orders table if they drift.
type Store struct {
	Redis *redis.Client
}

func dayKey(o *orders.Order) string {
	return fmt.Sprintf(redisx.KeyKPIDay, o.OrderDate.Format("2006-01-02"))
}

// IncrForFinalized adds the order's total to the day's revenue, bumps the
// order counter, refreshes the average, and scores the customer.
func (s *Store) IncrForFinalized(ctx context.Context, o *orders.Order) error {
	k := dayKey(o)
	total, _ := o.Total.Float64()

	rev, err := s.Redis.HIncrByFloat(ctx, k, "revenue", total).Result()
	if err != nil {
		return err
	}
	cnt, err := s.Redis.HIncrBy(ctx, k, "order_count", 1).Result()
	if err != nil {
		return err
	}
	if err := s.Redis.HSet(ctx, k, "avg_order_value", avgValue(rev, cnt)).Err(); err != nil {
		return err
	}
	return s.Redis.ZIncrBy(ctx, redisx.KeyLeaderboard, total, strconv.FormatInt(o.CustomerID, 10)).Err()
}

// ApplyRefund subtracts a refunded amount from the day's revenue and the
// customer's leaderboard score, then refreshes the average.
func (s *Store) ApplyRefund(ctx context.Context, o *orders.Order, amount decimal.Decimal) error {
	k := dayKey(o)
	f, _ := amount.Float64()

	rev, err := s.Redis.HIncrByFloat(ctx, k, "revenue", -f).Result()
	if err != nil {
		return err
	}
	cnt, err := s.Redis.HGet(ctx, k, "order_count").Int64()
	if err != nil && err != redis.Nil {
		return err
	}
	if err := s.Redis.HSet(ctx, k, "avg_order_value", avgValue(rev, cnt)).Err(); err != nil {
		return err
	}
	return s.Redis.ZIncrBy(ctx, redisx.KeyLeaderboard, -f, strconv.FormatInt(o.CustomerID, 10)).Err()
}

func avgValue(revenue float64, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(revenue/float64(count)*100) / 100
}
