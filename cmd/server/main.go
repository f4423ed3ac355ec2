package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"company-registration/backend/internal/company/handler"
	"company-registration/backend/internal/company/repository"
	"company-registration/backend/internal/company/service"
	"company-registration/backend/internal/config"
	"company-registration/backend/internal/db"
	"company-registration/backend/internal/db/migrate"
	"company-registration/backend/internal/devotp"
	healthhandler "company-registration/backend/internal/health/handler"
	"company-registration/backend/internal/logging"
	"company-registration/backend/internal/logostore"
	"company-registration/backend/internal/notify"
	"company-registration/backend/internal/otp"
	"company-registration/backend/internal/security"
	"company-registration/backend/internal/server"
	telemetryotel "company-registration/backend/internal/telemetry/otel"

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: "company-registration",
		Environment: cfg.Env,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("telemetry shutdown")
		}
	}()
	providers.SetGlobal()
	if cfg.OTLPEndpoint != "" {
		log.AddHook(telemetryotel.NewLogHook(providers.LoggerProvider, log.GetLevel()))
	}

	metrics, err := telemetryotel.NewWorkflowMetrics(providers.MeterProvider)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var (
		repo   repository.Repository
		pinger healthhandler.Pinger
	)
	if cfg.DatabaseURL != "" {
		if cfg.AutoMigrate {
			version, err := migrate.Run(cfg.DatabaseURL, migrate.Up)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.WithField("version", version).Info("migrations applied")
		}
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		repo = repository.NewPostgresRepository(conn)
		pinger = conn
	} else {
		if cfg.Env == "production" {
			return errors.New("DATABASE_URL must be set when APP_ENV=production")
		}
		log.Warn("DATABASE_URL not set; companies are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	tokens, err := security.NewTokenProviderFromConfig(
		cfg.JWTSecret, cfg.JWTPrivateKey, cfg.JWTPublicKey,
		cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL(),
	)
	if err != nil {
		return fmt.Errorf("token provider: %w", err)
	}

	otps := otp.NewStore(cfg.OTPTTL())
	otps.StartSweeper(ctx, cfg.OTPSweepInterval(), func(removed int) {
		metrics.RecordSwept(ctx, removed)
		if removed > 0 {
			log.WithField("removed", removed).Debug("expired otps swept")
		}
	})

	logos, err := logostore.NewLocal(cfg.LogoDir, cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("logo store: %w", err)
	}

	var (
		notifier notify.Notifier
		checkers []healthhandler.Checker
		devOTP   *devotp.Handler
	)
	switch cfg.Notifier {
	case config.NotifierNATS:
		nc, err := notify.Connect(cfg.NATSURL, log)
		if err != nil {
			return err
		}
		defer nc.Close()
		sender := notify.NewNATSSender(nc, cfg.NATSMailSubject, cfg.NotifyTimeout())
		notifier = notify.NewEmailNotifier(cfg.MailFrom, sender)
		checkers = append(checkers, notify.ConnChecker{Conn: nc})
	case config.NotifierDev:
		store := devotp.NewMemoryStore()
		notifier = notify.NewDevNotifier(store, log)
		if cfg.OTPReturnToClient && cfg.Env != "production" {
			devOTP = devotp.NewHandler(store)
			log.Warn("dev OTP mode enabled; codes are served on GET /dev/otp")
		}
	default:
		if cfg.MailtrapAPIToken == "" {
			log.Warn("MAILTRAP_API_TOKEN is empty; OTP emails will be rejected")
		}
		client := notify.NewMailtrapClient(cfg.MailtrapAPIToken, cfg.MailtrapBaseURL, cfg.NotifyTimeout())
		notifier = notify.NewEmailNotifier(cfg.MailFrom, client)
	}

	svc := service.NewRegistrationService(
		repo, otps, security.NewHasher(cfg.BcryptCost), tokens, notifier, logos,
		log, metrics, cfg.NotifyTimeout(),
	)

	deps := server.Deps{
		Company:        handler.New(svc, log),
		Tokens:         tokens,
		Health:         healthhandler.NewServer(pinger, log, checkers...),
		Logos:          logos,
		Log:            log,
		TracerProvider: providers.TracerProvider,
		MeterProvider:  providers.MeterProvider,
		CORSOrigins:    cfg.CORSOrigins(),
	}
	if devOTP != nil {
		deps.DevOTP = devOTP
	}

	srv := server.NewHTTPServer(cfg.HTTPAddr, server.NewRouter(deps))
	log.WithFields(logrus.Fields{
		"addr":     cfg.HTTPAddr,
		"notifier": cfg.Notifier,
		"env":      cfg.Env,
	}).Info("company registration API listening")
	return server.Serve(ctx, srv, log)
}
