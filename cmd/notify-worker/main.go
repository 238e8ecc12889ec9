package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"staysync/internal/config"
	"staysync/internal/kafka"
	"staysync/internal/logger"
	"staysync/internal/models"
	"staysync/internal/notification"

	"github.com/joho/godotenv"
)

// notify-worker consumes booking lifecycle events from Kafka and turns them
// into guest emails. It runs separately from the API so a slow mail relay
// never backs up the booking service.
func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Notify Worker initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	var notifier notification.Notifier
	if cfg.Email.Enabled {
		notifier = notification.NewSMTPNotifier(cfg.Email)
		logger.Info("NOTIFY", fmt.Sprintf("SMTP notifier enabled via %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort))
	} else {
		notifier = &notification.ConsoleNotifier{Logger: logger}
		logger.Info("NOTIFY", "Email disabled, logging notifications to console")
	}
	dispatcher := notification.NewDispatcher(notifier, logger)

	topics := []string{
		cfg.Kafka.Topics.BookingCreated,
		cfg.Kafka.Topics.BookingConfirmed,
		cfg.Kafka.Topics.BookingCancelled,
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, cfg.Kafka.GroupID)
	defer consumer.Close()

	logger.Info("KAFKA", fmt.Sprintf("Consuming %v as group %s", topics, cfg.Kafka.GroupID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Start(ctx, func(event models.BookingEvent) {
			logger.Info("KAFKA", fmt.Sprintf("received %s event for booking %s", event.Type, event.BookingID))
			dispatcher.HandleEvent(event)
		})
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("APP", "Shutdown signal received, stopping consumer")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.Fatal("KAFKA", fmt.Sprintf("Consumer stopped with error: %v", err))
		}
	}

	logger.Info("APP", "✅ Notify Worker shutdown complete")
}
