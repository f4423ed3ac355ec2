// Package otp holds pending email verification codes in memory, keyed by email, with a fixed TTL.
package otp

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a code stays valid after Put.
const DefaultTTL = 10 * time.Minute

type entry struct {
	code      string
	expiresAt time.Time
}

// Store is the authority for code validity. At most one live code per email; Put replaces.
// Entries are lost on restart; callers recover via resend.
type Store struct {
	mu   sync.Mutex
	m    map[string]entry
	ttl  time.Duration
	nowF func() time.Time
}

// NewStore returns an empty store. ttl <= 0 uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		m:    make(map[string]entry),
		ttl:  ttl,
		nowF: time.Now,
	}
}

// Generate returns a fresh code. It does not store it.
func (s *Store) Generate() (string, error) {
	return Generate()
}

// TTL returns the lifetime applied by Put.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Put inserts or replaces the code for email and returns its expiry.
func (s *Store) Put(email, code string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt := s.nowF().Add(s.ttl)
	s.m[email] = entry{code: code, expiresAt: expiresAt}
	return expiresAt
}

// Check reports whether a live code for email equals code. A match consumes the entry.
// An expired entry is evicted and reports false. Mismatch or absence leaves state untouched.
func (s *Store) Check(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[email]
	if !ok {
		return false
	}
	if !e.expiresAt.After(s.nowF()) {
		delete(s.m, email)
		return false
	}
	if !Equal(e.code, code) {
		return false
	}
	delete(s.m, email)
	return true
}

// Restore puts back a code consumed by Check when the caller could not act on it. It keeps
// expiresAt and does nothing if email already holds a newer code or expiresAt has passed.
func (s *Store) Restore(email, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[email]; ok {
		return
	}
	if !expiresAt.After(s.nowF()) {
		return
	}
	s.m[email] = entry{code: code, expiresAt: expiresAt}
}

// Remove deletes any code for email.
func (s *Store) Remove(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, email)
}

// Len returns the number of entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep evicts entries that had expired when the sweep started and returns how many were removed.
// Entries put after the sweep started always expire later than the cutoff and are kept.
func (s *Store) Sweep() int {
	cutoff := s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for email, e := range s.m {
		if !e.expiresAt.After(cutoff) {
			delete(s.m, email)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is done. interval <= 0 disables it.
// onSweep, if non-nil, receives the count from each run.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n := s.Sweep()
				if onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}
