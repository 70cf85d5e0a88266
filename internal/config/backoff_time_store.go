package config

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

type backoffData struct {
	BackoffDelay time.Duration
	NextRetryAt  time.Time
}

// BackoffStore tracks, per upstream name, when the upstream may be called
// again after consecutive failures. The geocoder consults it so a provider
// that is rate limiting us (Nominatim allows one request per second) is left
// alone instead of being hit on every page render.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[string]backoffData
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[string]backoffData),
	}
}

func (s *BackoffStore) NextRetryAt(upstream string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if backoff, exists := s.backoffs[upstream]; exists {
		return backoff.NextRetryAt.UTC(), true
	}
	return time.Time{}, false
}

// InBackoff reports whether upstream should not be called at now.
func (s *BackoffStore) InBackoff(upstream string, now time.Time) bool {
	next, ok := s.NextRetryAt(upstream)
	return ok && now.Before(next)
}

// UpdateBackoff records a failure and pushes NextRetryAt out.
func (s *BackoffStore) UpdateBackoff(upstream string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backoff, exists := s.backoffs[upstream]; exists {
		backoff.BackoffDelay = calculateNewBackoffDelay(backoff.BackoffDelay)
		backoff.NextRetryAt = calculateNextRetryAt(backoff.BackoffDelay)
		s.backoffs[upstream] = backoff
	} else {
		s.backoffs[upstream] = backoffData{
			BackoffDelay: BASE_BACKOFF,
			NextRetryAt:  calculateNextRetryAt(BASE_BACKOFF),
		}
	}
}

func (s *BackoffStore) ResetBackoff(upstream string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, upstream)
}

func calculateNextRetryAt(backoff time.Duration) time.Time {
	jitter := time.Duration(rand.Float64() * float64(backoff) * JITTER_FACTOR)
	backoff += jitter
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return time.Now().Add(backoff).UTC()
}

func calculateNewBackoffDelay(backoffDelay time.Duration) time.Duration {
	backoffDelay *= BACKOFF_FACTOR
	if backoffDelay >= MAX_BACKOFF {
		backoffDelay = MAX_BACKOFF
	}
	return backoffDelay
}
