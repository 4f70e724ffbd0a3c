package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/vpms/config"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notification worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries(cfg.AppName + "-notify-worker")
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	retries, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
	if err != nil {
		log.Fatalf("amqp publisher: %v", err)
	}
	defer retries.Close()

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	entry := helpers.Component(logger, "notify_worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			res := handle(ctx, msg.Body, mg, entry)
			switch res.Outcome {
			case ack:
				_ = msg.Ack(false)
			case retry:
				if err := republish(ctx, retries, *res.Next, backoff(res.Next.Attempt)); err != nil {
					entry.WithError(err).Warn("republish failed; requeueing original")
					_ = msg.Nack(false, true)
					continue
				}
				_ = msg.Ack(false)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}()

	entry.Infof("listening on queue=%s", cfg.RabbitMQNotifyQueue)
	select {
	case <-ctx.Done():
	case <-done:
		entry.Warn("delivery channel closed")
	}
	entry.Info("shutting down...")
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
