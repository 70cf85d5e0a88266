// Package geocode turns free-text addresses into coordinates through an
// external provider (Nominatim or Google), with a shared result cache and
// per-provider backoff in front of it.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taxifare.predict.org/internal/models"
)

var (
	// ErrNoResult means the provider answered but found nothing for the address.
	ErrNoResult = errors.New("geocode: no result for address")
	// ErrEmptyAddress is returned before any provider call for blank input.
	ErrEmptyAddress = errors.New("geocode: empty address")
	// ErrProviderBackoff means the provider failed recently and is not being called.
	ErrProviderBackoff = errors.New("geocode: provider is backing off after recent failures")
)

// Result is the best match for an address.
type Result struct {
	models.Coordinates
	DisplayName string `json:"display_name,omitempty"`
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, address string) (Result, error)
}

// StatusError is returned when the provider answers with a non-200 status.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Code, e.Body)
}

// Transient reports whether the status signals overload rather than a bad request.
func (e *StatusError) Transient() bool {
	return e.Code == 429 || e.Code >= 500
}

// NormalizeAddress is the cache key for an address: trimmed, inner
// whitespace collapsed and lowercased, so "89 E 42nd St" and
// " 89  e 42nd st " share an entry.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
