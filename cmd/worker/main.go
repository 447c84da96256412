package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopkit/notifier/notification"
	"github.com/shopkit/notifier/pkg/config"
	"github.com/shopkit/notifier/pkg/email"
	"github.com/shopkit/notifier/pkg/queue"
	"github.com/shopkit/notifier/pkg/redis"
)

// WorkerConfig tunes the consume loop of this worker instance.
type WorkerConfig struct {
	Concurrency int    `env:"WORKER_CONCURRENCY" envDefault:"4"`
	DevOutbox   string `env:"DEV_EMAIL_OUTBOX" envDefault:"./outbox"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var (
		redisCfg  redis.Config
		emailCfg  email.Config
		workerCfg WorkerConfig
	)
	config.MustLoad(&redisCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&workerCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		logger.Error("failed to connect to broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	// Without Postmark credentials emails land in the dev outbox
	// directory instead of a provider.
	var mailer email.EmailSender
	if emailCfg.PostmarkServerToken != "" {
		mailer = email.MustNewPostmarkClient(emailCfg)
	} else {
		logger.Warn("no postmark token configured, using dev sender",
			slog.String("outbox", workerCfg.DevOutbox))
		mailer = email.NewDevSender(workerCfg.DevOutbox)
	}

	sender, err := notification.NewSender(mailer)
	if err != nil {
		logger.Error("failed to create sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	storage, err := queue.NewRedisStorage(client)
	if err != nil {
		logger.Error("failed to create queue storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	worker, err := queue.NewWorker(storage,
		queue.WithLogger(logger),
		queue.WithConcurrency(workerCfg.Concurrency))
	if err != nil {
		logger.Error("failed to create worker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	worker.RegisterHandlers(notification.Handlers(sender)...)

	// Blocks until SIGINT/SIGTERM, then drains in-flight jobs.
	if err := worker.Run(ctx)(); err != nil {
		logger.Error("worker terminated with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
