package geocode

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/metrics"
	"taxifare.predict.org/internal/report"
)

// CachingGeocoder puts a Cache and a BackoffStore in front of a provider.
//
// Lookup order: cache, then backoff check, then provider. Provider failures
// that look like overload (transport errors, 429, 5xx) push the provider
// into backoff; callers see ErrProviderBackoff until it expires and fall back
// to default coordinates. Cache errors are logged and otherwise ignored.
type CachingGeocoder struct {
	next     Geocoder
	cache    Cache
	backoffs *config.BackoffStore
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewCachingGeocoder(next Geocoder, cache Cache, backoffs *config.BackoffStore, ttl time.Duration, logger *slog.Logger) *CachingGeocoder {
	return &CachingGeocoder{
		next:     next,
		cache:    cache,
		backoffs: backoffs,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *CachingGeocoder) Name() string { return c.next.Name() }

func (c *CachingGeocoder) backoffKey() string { return "geocoder:" + c.next.Name() }

func (c *CachingGeocoder) Geocode(ctx context.Context, address string) (Result, error) {
	provider := c.next.Name()
	key := NormalizeAddress(address)
	if key == "" {
		return Result{}, ErrEmptyAddress
	}

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("geocode cache read failed", "provider", provider, "error", err)
	} else if ok {
		metrics.GeocodeRequests.WithLabelValues(provider, metrics.OutcomeHit).Inc()
		return cached, nil
	}

	if c.backoffs.InBackoff(c.backoffKey(), c.now()) {
		metrics.GeocodeRequests.WithLabelValues(provider, metrics.OutcomeBackoff).Inc()
		return Result{}, ErrProviderBackoff
	}

	result, err := c.next.Geocode(ctx, address)
	switch {
	case err == nil:
		c.backoffs.ResetBackoff(c.backoffKey())
		metrics.GeocodeRequests.WithLabelValues(provider, metrics.OutcomeMiss).Inc()
		if err := c.cache.Set(ctx, key, result, c.ttl); err != nil {
			c.logger.Warn("geocode cache write failed", "provider", provider, "error", err)
		}
		return result, nil

	case errors.Is(err, ErrNoResult):
		c.backoffs.ResetBackoff(c.backoffKey())
		metrics.GeocodeRequests.WithLabelValues(provider, metrics.OutcomeNotFound).Inc()
		return Result{}, err

	case ctx.Err() != nil:
		// The caller went away; the provider is not to blame.
		return Result{}, err
	}

	metrics.GeocodeRequests.WithLabelValues(provider, metrics.OutcomeError).Inc()
	if isOverload(err) {
		c.backoffs.UpdateBackoff(c.backoffKey())
	}
	report.ReportUpstreamError("geocoder", err, map[string]interface{}{
		"provider": provider,
	})
	c.logger.Error("geocoding failed", "provider", provider, "error", err)
	return Result{}, err
}

// isOverload is true for transport failures and transient statuses.
// A 4xx other than 429 means the request itself was wrong.
func isOverload(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	return true
}
