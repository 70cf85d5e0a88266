package config

import (
	"testing"
	"time"
)

func TestBackoffStore(t *testing.T) {
	store := NewBackoffStore()

	if _, ok := store.NextRetryAt("geocoder"); ok {
		t.Fatal("expected no backoff for an unknown upstream")
	}
	if store.InBackoff("geocoder", time.Now()) {
		t.Fatal("unknown upstream must not be in backoff")
	}

	before := time.Now()
	store.UpdateBackoff("geocoder")

	first, ok := store.NextRetryAt("geocoder")
	if !ok {
		t.Fatal("expected a backoff entry after UpdateBackoff")
	}
	minWait := before.Add(BASE_BACKOFF)
	maxWait := time.Now().Add(time.Duration(float64(BASE_BACKOFF) * (1 + JITTER_FACTOR)))
	if first.Before(minWait) || first.After(maxWait) {
		t.Errorf("first retry %v not within [%v, %v]", first, minWait, maxWait)
	}
	if !store.InBackoff("geocoder", time.Now()) {
		t.Error("expected geocoder to be in backoff right after a failure")
	}
	if store.InBackoff("predict", time.Now()) {
		t.Error("backoff must be tracked per upstream")
	}

	store.UpdateBackoff("geocoder")
	second, _ := store.NextRetryAt("geocoder")
	if !second.After(first) {
		t.Errorf("second retry %v should be after first %v", second, first)
	}

	store.ResetBackoff("geocoder")
	if _, ok := store.NextRetryAt("geocoder"); ok {
		t.Error("expected backoff to be cleared by ResetBackoff")
	}
}

func TestCalculateNewBackoffDelay(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{BASE_BACKOFF, 2 * time.Second},
		{30 * time.Second, time.Minute},
		{time.Minute, MAX_BACKOFF},
		{MAX_BACKOFF, MAX_BACKOFF},
	}
	for _, tt := range tests {
		if got := calculateNewBackoffDelay(tt.in); got != tt.want {
			t.Errorf("calculateNewBackoffDelay(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCalculateNextRetryAtIsCapped(t *testing.T) {
	next := calculateNextRetryAt(MAX_BACKOFF)
	if next.After(time.Now().Add(MAX_BACKOFF + time.Second)) {
		t.Errorf("next retry %v exceeds the cap", next)
	}
}
