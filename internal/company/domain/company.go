package domain

import (
	"errors"
	"time"
)

// Company is a self-registered company account.
type Company struct {
	ID            string
	ArabicName    string
	EnglishName   string
	Email         string // unique, compared case-sensitively
	Phone         string // optional
	WebsiteURL    string // optional
	LogoPath      string // optional; file name under the logo directory
	PasswordHash  string // empty until the password is set
	EmailVerified bool
	// OTPHash and OTPExpiresAt mirror the pending code for operators. Never consulted for validity.
	OTPHash      string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// State is the registration state derived from the account fields.
type State string

const (
	StateUnverified  State = "unverified"
	StateVerified    State = "verified"
	StatePasswordSet State = "password_set"
)

// State returns the registration state of the company.
func (c *Company) State() State {
	switch {
	case !c.EmailVerified:
		return StateUnverified
	case c.PasswordHash == "":
		return StateVerified
	default:
		return StatePasswordSet
	}
}

// CanAuthenticate reports whether the company may log in with a password.
func (c *Company) CanAuthenticate() bool {
	return c.State() == StatePasswordSet
}

// SetPendingOTP records the hash and expiry of a newly issued code.
func (c *Company) SetPendingOTP(hash string, expiresAt time.Time) {
	c.OTPHash = hash
	exp := expiresAt.UTC()
	c.OTPExpiresAt = &exp
}

// ClearPendingOTP drops the pending code mirror.
func (c *Company) ClearPendingOTP() {
	c.OTPHash = ""
	c.OTPExpiresAt = nil
}

// Validate validates the company for persistence. Returns an error describing the first validation failure.
func (c *Company) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	if c.ArabicName == "" || c.EnglishName == "" {
		return errors.New("arabic and english names are required")
	}
	if c.PasswordHash != "" && !c.EmailVerified {
		return errors.New("password cannot be set before email verification")
	}
	if (c.OTPHash == "") != (c.OTPExpiresAt == nil) {
		return errors.New("otp hash and expiry must be set together")
	}
	return nil
}

// Profile is the public projection of a company. It carries no credential or OTP fields.
type Profile struct {
	ID          string    `json:"id"`
	ArabicName  string    `json:"arabicName"`
	EnglishName string    `json:"englishName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	WebsiteURL  string    `json:"websiteUrl,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
