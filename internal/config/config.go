// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notifier backends selectable via NOTIFIER.
const (
	NotifierMailtrap = "mailtrap"
	NotifierNATS     = "nats"
	NotifierDev      = "dev"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AutoMigrate applies embedded migrations at server startup.
	AutoMigrate bool `mapstructure:"AUTO_MIGRATE"`

	// JWTSecret is the shared HMAC secret for HS256 session tokens. Takes precedence over the key pair.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTTTL is the session token lifetime (e.g. "24h").
	JWTTTL string `mapstructure:"JWT_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// OTPTTLRaw is how long a registration OTP stays valid (e.g. "10m").
	OTPTTLRaw string `mapstructure:"OTP_TTL"`
	// OTPSweepIntervalRaw is how often expired OTPs are evicted from memory; "0" disables the sweeper.
	OTPSweepIntervalRaw string `mapstructure:"OTP_SWEEP_INTERVAL"`
	// OTPReturnToClient enables dev OTP mode: OTPs are kept for GET /dev/otp and not mailed.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`

	// LogoDir is the directory uploaded logos are written to and served from.
	LogoDir string `mapstructure:"LOGO_DIR"`
	// PublicBaseURL prefixes logo URLs returned to clients (e.g. https://api.example.com).
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	// Notifier selects how OTP emails leave the process: mailtrap, nats or dev.
	Notifier string `mapstructure:"NOTIFIER"`
	// NotifyTimeout bounds a single delivery attempt (e.g. "10s").
	NotifyTimeoutRaw string `mapstructure:"NOTIFY_TIMEOUT"`
	// MailtrapAPIToken is the bearer token for the Mailtrap send API.
	MailtrapAPIToken string `mapstructure:"MAILTRAP_API_TOKEN"`
	// MailtrapBaseURL is the Mailtrap send endpoint.
	MailtrapBaseURL string `mapstructure:"MAILTRAP_BASE_URL"`
	// MailFrom is the sender address for OTP emails.
	MailFrom string `mapstructure:"MAIL_FROM"`
	// NATSURL is the NATS server URL for the nats notifier and the mail worker.
	NATSURL string `mapstructure:"NATS_URL"`
	// NATSMailSubject is the subject mail jobs are requested on.
	NATSMailSubject string `mapstructure:"NATS_MAIL_SUBJECT"`
	// NATSQueueGroup is the queue group the mail worker subscribes with.
	NATSQueueGroup string `mapstructure:"NATS_QUEUE_GROUP"`

	// CORSAllowedOrigins is a comma-separated list of browser origins allowed to call the API.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the logrus level (trace|debug|info|warn|error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is text or json.
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env-only values.
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "company-registration")
	v.SetDefault("JWT_AUDIENCE", "company-registration-api")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_SWEEP_INTERVAL", "1m")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("LOGO_DIR", "uploads/logos")
	v.SetDefault("PUBLIC_BASE_URL", "")
	v.SetDefault("NOTIFIER", NotifierMailtrap)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("MAILTRAP_API_TOKEN", "")
	v.SetDefault("MAILTRAP_BASE_URL", "https://send.api.mailtrap.io/api/send")
	v.SetDefault("MAIL_FROM", "noreply@companyregistration.com")
	v.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	v.SetDefault("NATS_MAIL_SUBJECT", "company.mail.otp")
	v.SetDefault("NATS_QUEUE_GROUP", "company-mail-worker")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:4200")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.JWTSecret == "" && (cfg.JWTPrivateKey == "" || cfg.JWTPublicKey == "") {
		return nil, errors.New("config: JWT_SECRET or JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	cfg.Notifier = strings.ToLower(strings.TrimSpace(cfg.Notifier))
	if cfg.OTPReturnToClient {
		cfg.Notifier = NotifierDev
	}
	switch cfg.Notifier {
	case NotifierMailtrap, NotifierNATS, NotifierDev:
	default:
		return nil, errors.New("config: NOTIFIER must be one of mailtrap, nats, dev")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.JWTTTL, 24*time.Hour)
}

// OTPTTL parses OTPTTLRaw. Returns 10m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	return parseDuration(c.OTPTTLRaw, 10*time.Minute)
}

// OTPSweepInterval parses OTPSweepIntervalRaw. Returns 0 (sweeper disabled) when "0", 1m when unset or invalid.
func (c *Config) OTPSweepInterval() time.Duration {
	if strings.TrimSpace(c.OTPSweepIntervalRaw) == "0" {
		return 0
	}
	return parseDuration(c.OTPSweepIntervalRaw, time.Minute)
}

// NotifyTimeout parses NotifyTimeoutRaw. Returns 10s if unset or invalid.
func (c *Config) NotifyTimeout() time.Duration {
	return parseDuration(c.NotifyTimeoutRaw, 10*time.Second)
}

// CORSOrigins returns the allowed origins from the comma-separated config.
func (c *Config) CORSOrigins() []string {
	if c == nil || c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
