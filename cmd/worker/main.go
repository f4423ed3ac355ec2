// Worker consumes OTP mail jobs from NATS and delivers them through Mailtrap.
// Set NATS_URL, NATS_MAIL_SUBJECT, NATS_QUEUE_GROUP and MAILTRAP_API_TOKEN. Run several for load sharing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"company-registration/backend/internal/config"
	"company-registration/backend/internal/logging"
	"company-registration/backend/internal/notify"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	if cfg.MailtrapAPIToken == "" {
		log.Fatal("worker: MAILTRAP_API_TOKEN is required")
	}

	nc, err := notify.Connect(cfg.NATSURL, log)
	if err != nil {
		log.WithError(err).Fatal("worker: nats")
	}
	defer nc.Close()

	client := notify.NewMailtrapClient(cfg.MailtrapAPIToken, cfg.MailtrapBaseURL, cfg.NotifyTimeout())
	worker := notify.NewWorker(client, log, cfg.NotifyTimeout())
	sub, err := worker.Subscribe(nc, cfg.NATSMailSubject, cfg.NATSQueueGroup)
	if err != nil {
		log.WithError(err).Fatal("worker: subscribe")
	}
	log.WithFields(logrus.Fields{
		"subject": cfg.NATSMailSubject,
		"queue":   cfg.NATSQueueGroup,
	}).Info("mail worker started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("worker: shutting down")
	if err := sub.Drain(); err != nil {
		log.WithError(err).Warn("worker: drain subscription")
	}
	if err := nc.Drain(); err != nil {
		log.WithError(err).Warn("worker: drain connection")
	}
}
