package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marketplace/api/internal/cache"
	"marketplace/api/internal/config"
	"marketplace/api/internal/log"
	"marketplace/api/internal/mail"
	"marketplace/api/internal/queue"
	"marketplace/api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	var sender mail.Gateway = mail.NewLogGateway(logger)
	if cfg.Mail.SMTP.Host != "" {
		sender = mail.NewSMTPSender(cfg.Mail)
	} else {
		logger.Warn().Msg("mail.smtp.host not set, reset emails are only logged")
	}

	consumer := queue.NewConsumer(client, queue.Options{
		Stream:        cfg.Mail.Stream,
		Group:         cfg.Mail.Group,
		Consumer:      cfg.Mail.Consumer,
		ClaimInterval: cfg.Mail.ClaimInterval,
	}, logger, tasks.NewProcessor(logger, sender))

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
		return
	}
	logger.Info().Msg("worker exited cleanly")
}
