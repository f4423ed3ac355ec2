// seed inserts a verified demo company with a password for local testing.
// Idempotent: skips the insert if demo@example.com already exists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"company-registration/backend/internal/company/domain"
	"company-registration/backend/internal/company/repository"
	"company-registration/backend/internal/config"
	"company-registration/backend/internal/db"
	"company-registration/backend/internal/logging"
	"company-registration/backend/internal/security"

	"github.com/google/uuid"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
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
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db")
	}
	defer conn.Close()

	repo := repository.NewPostgresRepository(conn)
	existing, err := repo.GetByEmail(ctx, demoEmail)
	if err != nil {
		log.WithError(err).Fatal("seed check")
	}
	if existing != nil {
		log.Infof("Seed already applied (%s exists). Skipping.", demoEmail)
		return
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash(demoPassword)
	if err != nil {
		log.WithError(err).Fatal("hash password")
	}

	now := time.Now().UTC()
	c := &domain.Company{
		ID:            uuid.NewString(),
		ArabicName:    "شركة تجريبية",
		EnglishName:   "Demo Company",
		Email:         demoEmail,
		Phone:         "+966500000000",
		WebsiteURL:    "https://demo.example.com",
		PasswordHash:  hash,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Validate(); err != nil {
		log.WithError(err).Fatal("demo company")
	}
	if err := repo.Create(ctx, c); err != nil {
		log.WithError(err).Fatal("create demo company")
	}
	log.WithField("id", c.ID).Infof("Seeded %s / %s", demoEmail, demoPassword)
}
