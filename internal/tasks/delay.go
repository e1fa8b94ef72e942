package tasks

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/redisx"
)

// DelayQueue defers task delivery: members of a Redis ZSET scored by due
// time, moved onto the task topic by a polling goroutine. Kafka has no
// native deferred delivery, so the payment delay and retry backoff both go
// through here. Workers never sleep holding a task.
type DelayQueue struct {
	Redis *redis.Client
	Dest  *Producer
	Log   *zap.Logger
}

func (d *DelayQueue) Schedule(ctx context.Context, t Task, delay time.Duration) error {
	due := time.Now().Add(delay).UnixMilli()
	return d.Redis.ZAdd(ctx, redisx.KeyDelayedTasks, redis.Z{
		Score:  float64(due),
		Member: MustMarshal(t),
	}).Err()
}

// Start polls for due tasks until ctx is cancelled.
func (d *DelayQueue) Start(ctx context.Context, poll time.Duration) {
	go func() {
		tick := time.NewTicker(poll)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if err := d.moveDue(ctx); err != nil && ctx.Err() == nil {
					d.Log.Error("delayed task sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

func (d *DelayQueue) moveDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	vals, err := d.Redis.ZRangeByScore(ctx, redisx.KeyDelayedTasks, &redis.ZRangeBy{
		Min: "-inf", Max: now, Offset: 0, Count: 128,
	}).Result()
	if err != nil {
		return err
	}
	for _, v := range vals {
		// ZREM is the claim: only the mover that removed the member
		// publishes it, so concurrent movers cannot double-deliver.
		removed, err := d.Redis.ZRem(ctx, redisx.KeyDelayedTasks, v).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		var t Task
		if err := UnmarshalTask([]byte(v), &t); err != nil {
			d.Log.Error("dropping undecodable delayed task", zap.Error(err))
			continue
		}
		d.Dest.PublishTask(t)
	}
	return nil
}
