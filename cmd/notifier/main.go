package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/config"
	"github.com/aihotel/hotel-api/internal/pkg/email"
	"github.com/aihotel/hotel-api/internal/pkg/events"
	"github.com/aihotel/hotel-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required")
	}

	var client email.Client = email.NoopClient{}
	if cfg.SMTPEnabled() {
		smtpClient, err := email.NewSMTPClient(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create SMTP client")
		}
		client = smtpClient
	}
	mailer := email.NewService(client, cfg.SMTPFromName)
	defer mailer.Close()

	n := &notifier{
		mailer:      mailer,
		bookingsURL: cfg.FrontendURL + "/bookings",
		window:      cfg.CancellationWindow,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", events.QueueName).Msg("Starting booking notifier")
	if err := events.NewConsumer(cfg.RabbitMQURL, n.Handle).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Notifier stopped")
	}
	log.Info().Msg("Notifier exited properly")
}
