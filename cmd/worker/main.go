package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/config"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/importer"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/inventory"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/kpi"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/locks"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/notify"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/payments"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/postgres"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/redisx"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	service := cfg.ServiceName + "-worker"

	prod := tasks.NewProducer(cfg.KafkaBrokers, tasks.TopicTasks, 1024, log)
	prod.Start(ctx)
	dlq := tasks.NewProducer(cfg.KafkaBrokers, tasks.TopicDeadLetter, 256, log)
	dlq.Start(ctx)

	delay := &tasks.DelayQueue{Redis: rdb, Dest: prod, Log: log}
	delay.Start(ctx, cfg.DelayPoll)
	bus := &tasks.Bus{Prod: prod, Delay: delay}

	runner := &workflow.Runner{
		Orders: &orders.Repo{DB: db},
		Ledger: &inventory.Ledger{DB: db, Log: log},
		Payments: &payments.Simulator{
			DB:          db,
			Sched:       bus,
			Service:     service,
			Delay:       cfg.PaymentDelay,
			Forced:      cfg.PaymentForceOutcome,
			SuccessRate: cfg.PaymentSuccessRate,
			Log:         log,
		},
		KPI:      &kpi.Store{Redis: rdb},
		Notifier: &notify.Sink{DB: db, Log: log},
		Importer: &importer.Service{DB: db, Log: log},
		Bus:      bus,
		Locks:    locks.NewRedisLocker(rdb),
		LockTTL:  cfg.PhaseLockTTL,
		Service:  service,
		Log:      log,
	}

	cons := tasks.NewConsumer(cfg.KafkaBrokers, cfg.TaskGroup, tasks.TopicTasks,
		cfg.Workers, cfg.TaskMaxAttempts, cfg.TaskRetryBackoff, delay, dlq, log)

	go func() {
		log.Info("task consumer started",
			zap.String("group", cfg.TaskGroup),
			zap.String("topic", tasks.TopicTasks),
			zap.Int("workers", cfg.Workers))
		if err := cons.Start(ctx, runner.Handle); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	dlq.Close()
	prod.WaitClosed()
	dlq.WaitClosed()
}
