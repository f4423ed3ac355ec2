package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"company-registration/backend/internal/company/domain"
	"company-registration/backend/internal/company/repository"
	"company-registration/backend/internal/notify"
	"company-registration/backend/internal/otp"
	"company-registration/backend/internal/security"
)

const defaultNotifyTimeout = 10 * time.Second

// OTPStore is the authority for pending verification codes.
type OTPStore interface {
	Generate() (string, error)
	Put(email, code string) time.Time
	Check(email, code string) bool
	Restore(email, code string, expiresAt time.Time)
	Remove(email string)
	TTL() time.Duration
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(accountID, email, name string) (token string, expiresAt time.Time, err error)
}

// LogoStore persists logo files and builds their public URLs.
type LogoStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (name string, err error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// Metrics records workflow outcomes. Outcome is "ok" or an error class.
type Metrics interface {
	Observe(ctx context.Context, operation, outcome string)
}

// RegisterInput holds the registrant's details. Logo is optional.
type RegisterInput struct {
	ArabicName  string
	EnglishName string
	Email       string
	Phone       string
	WebsiteURL  string
	Logo        *LogoUpload
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token       string
	CompanyName string
	CompanyLogo string
	ExpiresAt   time.Time
}

// RegistrationService drives a company through register, verify, set-password, login and profile.
type RegistrationService struct {
	repo          repository.Repository
	otps          OTPStore
	hasher        *security.Hasher
	tokens        TokenIssuer
	notifier      notify.Notifier
	logos         LogoStore
	log           logrus.FieldLogger
	metrics       Metrics
	notifyTimeout time.Duration
	nowF          func() time.Time
}

// NewRegistrationService returns a RegistrationService with the given dependencies.
// metrics may be nil.
func NewRegistrationService(
	repo repository.Repository,
	otps OTPStore,
	hasher *security.Hasher,
	tokens TokenIssuer,
	notifier notify.Notifier,
	logos LogoStore,
	log logrus.FieldLogger,
	metrics Metrics,
	notifyTimeout time.Duration,
) *RegistrationService {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RegistrationService{
		repo:          repo,
		otps:          otps,
		hasher:        hasher,
		tokens:        tokens,
		notifier:      notifier,
		logos:         logos,
		log:           log,
		metrics:       metrics,
		notifyTimeout: notifyTimeout,
		nowF:          func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an unverified company, stores a fresh OTP and sends it. A failed send is
// logged and does not fail the registration; the registrant can ask for a resend.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (err error) {
	defer func() { s.observe(ctx, "register", err) }()

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("lookup company: %w", err)
	}
	if existing != nil {
		return ErrConflict
	}

	var logoExt string
	var logoContent io.Reader
	if in.Logo != nil {
		logoExt, logoContent, err = checkLogo(in.Logo)
		if err != nil {
			return err
		}
	}

	code, err := s.otps.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	now := s.nowF()
	c := &domain.Company{
		ID:          uuid.New().String(),
		ArabicName:  in.ArabicName,
		EnglishName: in.EnglishName,
		Email:       in.Email,
		Phone:       in.Phone,
		WebsiteURL:  in.WebsiteURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.SetPendingOTP(otp.Hash(code), now.Add(s.otps.TTL()))
	if err := c.Validate(); err != nil {
		return invalid(err.Error())
	}

	if logoContent != nil {
		name, err := s.logos.Save(ctx, logoExt, logoContent)
		if err != nil {
			return fmt.Errorf("save logo: %w", err)
		}
		c.LogoPath = name
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.discardLogo(ctx, c.LogoPath)
		if errors.Is(err, repository.ErrEmailTaken) {
			return ErrConflict
		}
		return fmt.Errorf("create company: %w", err)
	}

	s.otps.Put(c.Email, code)

	// The registrant may disconnect once the row exists; delivery still gets its own budget.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.SendOTP(sendCtx, s.otpMessage(c, code, false)); err != nil {
		s.log.WithError(err).WithField("company_id", c.ID).Warn("register: otp delivery failed")
	}
	s.log.WithField("company_id", c.ID).Info("company registered")
	return nil
}

// ValidateOTP checks code for email and marks the company verified on success.
func (s *RegistrationService) ValidateOTP(ctx context.Context, email, code string) (err error) {
	defer func() { s.observe(ctx, "validate_otp", err) }()

	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup company: %w", err)
	}
	if c == nil {
		return ErrNotFound
	}
	if c.EmailVerified {
		return ErrAlreadyVerified
	}
	if !s.otps.Check(email, code) {
		return ErrInvalidOTP
	}

	now := s.nowF()
	if err := s.repo.MarkVerified(ctx, c.ID, now); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return ErrAlreadyVerified
		}
		// Check consumed the code; put it back for a retry.
		expiresAt := now.Add(s.otps.TTL())
		if c.OTPExpiresAt != nil {
			expiresAt = *c.OTPExpiresAt
		}
		s.otps.Restore(email, code, expiresAt)
		return fmt.Errorf("mark verified: %w", err)
	}
	s.log.WithField("company_id", c.ID).Info("company email verified")
	return nil
}

// SetPassword stores a bcrypt hash of newPassword for a verified company. Checks run in order:
// company exists, email verified, password not yet set, password policy, confirmation match.
func (s *RegistrationService) SetPassword(ctx context.Context, email, newPassword, confirmPassword string) (err error) {
	defer func() { s.observe(ctx, "set_password", err) }()

	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup company: %w", err)
	}
	if c == nil {
		return ErrNotFound
	}
	if !c.EmailVerified {
		return ErrNotVerified
	}
	if c.PasswordHash != "" {
		return ErrPasswordAlreadySet
	}
	if violations := CheckPasswordPolicy(newPassword); len(violations) > 0 {
		return invalid(violations...)
	}
	if newPassword != confirmPassword {
		return ErrMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPassword(ctx, c.ID, hash, s.nowF()); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return ErrPasswordAlreadySet
		}
		return fmt.Errorf("set password: %w", err)
	}
	s.otps.Remove(email)
	s.log.WithField("company_id", c.ID).Info("company password set")
	return nil
}

// ResendOTP replaces the pending code for an unverified company and sends it.
// Unlike Register, a failed send is returned as ErrDeliveryFailed.
func (s *RegistrationService) ResendOTP(ctx context.Context, email string) (err error) {
	defer func() { s.observe(ctx, "resend_otp", err) }()

	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup company: %w", err)
	}
	if c == nil {
		return ErrNotFound
	}
	if c.EmailVerified {
		return ErrAlreadyVerified
	}

	code, err := s.otps.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	now := s.nowF()
	if err := s.repo.SetPendingOTP(ctx, c.ID, otp.Hash(code), now.Add(s.otps.TTL()), now); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return ErrAlreadyVerified
		}
		return fmt.Errorf("store otp: %w", err)
	}
	s.otps.Put(email, code)

	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.SendOTP(sendCtx, s.otpMessage(c, code, true)); err != nil {
		s.log.WithError(err).WithField("company_id", c.ID).Warn("resend: otp delivery failed")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// Login verifies email and password and issues a session token. Every failure that could
// reveal whether the account exists, is verified, or has a password returns ErrInvalidCredentials.
func (s *RegistrationService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	defer func() { s.observe(ctx, "login", err) }()

	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup company: %w", err)
	}
	hash := ""
	if c != nil && c.CanAuthenticate() {
		hash = c.PasswordHash
	}
	if err := s.hasher.Compare(hash, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			s.log.WithError(err).Warn("login: stored hash rejected")
		}
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(c.ID, c.Email, c.EnglishName)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{
		Token:       token,
		CompanyName: c.EnglishName,
		CompanyLogo: s.logoURL(c.LogoPath),
		ExpiresAt:   expiresAt,
	}, nil
}

// GetProfile returns the public projection of the company with id accountID.
func (s *RegistrationService) GetProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	c, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lookup company: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return &domain.Profile{
		ID:          c.ID,
		ArabicName:  c.ArabicName,
		EnglishName: c.EnglishName,
		Email:       c.Email,
		PhoneNumber: c.Phone,
		WebsiteURL:  c.WebsiteURL,
		LogoURL:     s.logoURL(c.LogoPath),
		CreatedAt:   c.CreatedAt,
	}, nil
}

func (s *RegistrationService) otpMessage(c *domain.Company, code string, resent bool) notify.OTPMessage {
	return notify.OTPMessage{
		To:          c.Email,
		CompanyName: c.EnglishName,
		Code:        code,
		ExpiresIn:   s.otps.TTL(),
		Resent:      resent,
	}
}

func (s *RegistrationService) logoURL(name string) string {
	if name == "" {
		return ""
	}
	return s.logos.URL(name)
}

func (s *RegistrationService) discardLogo(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.logos.Delete(context.WithoutCancel(ctx), name); err != nil {
		s.log.WithError(err).WithField("logo", name).Warn("register: orphaned logo not removed")
	}
}

func (s *RegistrationService) observe(ctx context.Context, operation string, err error) {
	s.metrics.Observe(ctx, operation, Outcome(err))
}

// Outcome names the error class of err for metrics and logs; "ok" for nil.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotVerified):
		return "not_verified"
	case errors.Is(err, ErrAlreadyVerified):
		return "already_verified"
	case errors.Is(err, ErrPasswordAlreadySet):
		return "password_already_set"
	case errors.Is(err, ErrInvalidOTP):
		return "invalid_otp"
	case errors.Is(err, ErrMismatch):
		return "mismatch"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrDeliveryFailed):
		return "delivery_failed"
	default:
		return "error"
	}
}

type nopMetrics struct{}

func (nopMetrics) Observe(context.Context, string, string) {}

var _ OTPStore = (*otp.Store)(nil)
