package repository

import (
	"context"
	"sync"
	"time"

	"company-registration/backend/internal/company/domain"
)

// MemoryRepository keeps companies in process memory. Used when no DATABASE_URL is configured
// outside production, and by tests.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.Company
	byEmail map[string]string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*domain.Company),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) Create(ctx context.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[c.Email]; ok {
		return ErrEmailTaken
	}
	r.byID[c.ID] = clone(c)
	r.byEmail[c.Email] = c.ID
	return nil
}

func (r *MemoryRepository) SetPendingOTP(ctx context.Context, id, otpHash string, expiresAt, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.EmailVerified {
		return ErrStateChanged
	}
	c.SetPendingOTP(otpHash, expiresAt)
	c.UpdatedAt = now
	return nil
}

func (r *MemoryRepository) MarkVerified(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.EmailVerified {
		return ErrStateChanged
	}
	c.EmailVerified = true
	c.ClearPendingOTP()
	c.UpdatedAt = now
	return nil
}

func (r *MemoryRepository) SetPassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || !c.EmailVerified || c.PasswordHash != "" {
		return ErrStateChanged
	}
	c.PasswordHash = passwordHash
	c.ClearPendingOTP()
	c.UpdatedAt = now
	return nil
}

// Len returns the number of stored companies.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func clone(c *domain.Company) *domain.Company {
	cp := *c
	if c.OTPExpiresAt != nil {
		exp := *c.OTPExpiresAt
		cp.OTPExpiresAt = &exp
	}
	return &cp
}
