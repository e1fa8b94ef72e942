package tasks

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
)

// Handler runs one task. A nil return commits the offset; an error goes
// through the retry/dead-letter policy.
type Handler func(ctx context.Context, t Task) error

type disposition int

const (
	dispositionDone disposition = iota
	dispositionRetry
	dispositionDeadLetter
)

// classify decides what happens to a failed delivery. Fatal errors
// (NotFound, InvalidInput, Conflict) never retry; everything else is
// treated as transient until the attempt budget runs out.
func classify(err error, attempt, maxAttempts int) disposition {
	if err == nil {
		return dispositionDone
	}
	if orders.Fatal(err) || attempt >= maxAttempts {
		return dispositionDeadLetter
	}
	return dispositionRetry
}

type Consumer struct {
	r           *kafka.Reader
	workers     int
	maxAttempts int
	backoff     time.Duration
	delay       *DelayQueue
	dlq         *Producer
	log         *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, workers, maxAttempts int,
	backoff time.Duration, delay *DelayQueue, dlq *Producer, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Consumer{
		r: r, workers: workers, maxAttempts: maxAttempts,
		backoff: backoff, delay: delay, dlq: dlq, log: log,
	}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)

	for i := 0; i < c.workers; i++ {
		go func() {
			for m := range jobs {
				c.handleOne(ctx, m, h)
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					c.log.Error("offset commit failed", zap.Error(err))
				}
			}
		}()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}
	}
}

func (c *Consumer) handleOne(ctx context.Context, m kafka.Message, h Handler) {
	var t Task
	if err := UnmarshalTask(m.Value, &t); err != nil {
		c.log.Error("undecodable task, dead-lettering raw message", zap.Error(err))
		c.dlq.Publish(m.Key, m.Value)
		return
	}

	err := h(ctx, t)
	switch classify(err, t.Attempt, c.maxAttempts) {
	case dispositionDone:
	case dispositionRetry:
		t.Attempt++
		c.log.Warn("task failed, scheduling retry",
			zap.String("task", string(t.Kind)), zap.String("task_id", t.ID),
			zap.Int("attempt", t.Attempt), zap.Error(err))
		if serr := c.delay.Schedule(ctx, t, c.backoff); serr != nil {
			c.log.Error("retry schedule failed, dead-lettering",
				zap.String("task_id", t.ID), zap.Error(serr))
			c.dlq.PublishTask(t)
		}
	case dispositionDeadLetter:
		c.log.Error("task dead-lettered",
			zap.String("task", string(t.Kind)), zap.String("task_id", t.ID),
			zap.Int("attempt", t.Attempt), zap.Error(err))
		c.dlq.PublishTask(t)
	}
}
