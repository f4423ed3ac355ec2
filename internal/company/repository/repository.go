package repository

import (
	"context"
	"errors"
	"time"

	"company-registration/backend/internal/company/domain"
)

var (
	// ErrEmailTaken is returned by Create when another company already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrStateChanged is returned by a state transition when the company is missing or no
	// longer in the state the transition starts from. Nothing is written.
	ErrStateChanged = errors.New("company state changed")
)

// Repository defines persistence for companies. Lookups return (nil, nil) when no row matches.
// State transitions check their precondition in the same write, so a transition based on a
// stale read fails with ErrStateChanged instead of rolling the company back.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetByEmail(ctx context.Context, email string) (*domain.Company, error)
	// Create inserts c. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, c *domain.Company) error
	// SetPendingOTP replaces the OTP mirror of an unverified company.
	SetPendingOTP(ctx context.Context, id, otpHash string, expiresAt, now time.Time) error
	// MarkVerified verifies an unverified company and clears its OTP mirror.
	MarkVerified(ctx context.Context, id string, now time.Time) error
	// SetPassword stores passwordHash on a verified company that has no password yet and
	// clears its OTP mirror.
	SetPassword(ctx context.Context, id, passwordHash string, now time.Time) error
}
