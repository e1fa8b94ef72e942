package tasks

import (
	"context"
	"time"
)

// Dispatcher is the orchestrator's handle on the dispatch layer.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Task) error
	DispatchIn(ctx context.Context, t Task, delay time.Duration) error
}

// Bus dispatches immediately via Kafka and deferred via the delay queue.
type Bus struct {
	Prod  *Producer
	Delay *DelayQueue
}

func (b *Bus) Dispatch(ctx context.Context, t Task) error {
	b.Prod.PublishTask(t)
	return nil
}

func (b *Bus) DispatchIn(ctx context.Context, t Task, delay time.Duration) error {
	return b.Delay.Schedule(ctx, t, delay)
}
