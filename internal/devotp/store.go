// Package devotp records the OTPs the dev notifier would have mailed, for GET /dev/otp.
// Only wired when OTP_RETURN_TO_CLIENT is true outside production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Delivery is the last code sent to an email.
type Delivery struct {
	Code      string
	ExpiresAt time.Time
	Resent    bool
	// Count is how many codes have been sent to the email so far.
	Count int
}

// Store is an outbox of the last delivery per email. It never decides whether a code is
// valid; reads do not consume, so a dev client may read the same code repeatedly.
type Store interface {
	// Record replaces the last delivery for email. Count is maintained by the store.
	Record(ctx context.Context, email string, d Delivery)
	// Last returns the last delivery for email while its code has not expired.
	Last(ctx context.Context, email string) (Delivery, bool)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.Mutex
	last map[string]Delivery
	nowF func() time.Time
}

// NewMemoryStore returns an empty outbox.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		last: make(map[string]Delivery),
		nowF: time.Now,
	}
}

func (s *MemoryStore) Record(ctx context.Context, email string, d Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Count = s.last[email].Count + 1
	s.last[email] = d
}

// Last keeps expired deliveries so the count survives a later resend; it only hides them.
func (s *MemoryStore) Last(ctx context.Context, email string) (Delivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.last[email]
	if !ok || !d.ExpiresAt.After(s.nowF()) {
		return Delivery{}, false
	}
	return d, true
}
