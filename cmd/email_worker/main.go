package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-realestate-listings/config"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer"
)

// maxAttempts bounds redelivery of a job whose send keeps failing.
const maxAttempts = 5

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			handle(ctx, logger, consumer, mg, msg)
		}
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle sends one job. Failed sends are republished with an incremented
// attempt count until maxAttempts, then dropped.
func handle(ctx context.Context, logger *logrus.Logger, consumer *helpers.RabbitConsumer, mg *mailer.Mailgun, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		helpers.LogError(logger, "bad message", err, nil)
		_ = msg.Nack(false, false)
		return
	}
	fields := logrus.Fields{"to": job.To, "subject": job.Subject, "attempt": job.Attempt}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := mg.Send(c, job.Message)
	cancel()
	if err == nil {
		_ = msg.Ack(false)
		logger.WithFields(fields).Info("email sent")
		return
	}

	helpers.LogError(logger, "send failed", err, fields)
	job.Attempt++
	if job.Attempt >= maxAttempts {
		logger.WithFields(fields).Warn("giving up on email")
		_ = msg.Nack(false, false)
		return
	}
	if perr := consumer.Republish(ctx, job); perr != nil {
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}
