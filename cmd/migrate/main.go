// migrate runs DB migrations from embedded SQL; use with go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"fmt"
	"os"

	"company-registration/backend/internal/config"
	"company-registration/backend/internal/db/migrate"
	"company-registration/backend/internal/logging"
)

func main() {
	direction := flag.String("direction", migrate.Up, "Migration direction: up or down")
	flag.Parse()

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

	version, err := migrate.Run(cfg.DatabaseURL, *direction)
	if err != nil {
		log.WithError(err).Fatal("migrate failed")
	}
	log.WithField("direction", *direction).WithField("version", version).Info("migrations complete")
}
