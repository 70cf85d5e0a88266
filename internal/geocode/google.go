package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"googlemaps.github.io/maps"
	"taxifare.predict.org/internal/models"
)

// GoogleGeocoder uses the Google Maps Geocoding API. Results are biased to
// the US region, which is where the service area lives.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder builds a geocoder on the given HTTP client. baseURL is
// only set in tests; an empty value talks to maps.googleapis.com.
func NewGoogleGeocoder(client *http.Client, apiKey, baseURL string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google geocoder requires an API key")
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(client),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: c}, nil
}

func (g *GoogleGeocoder) Name() string { return models.GeocoderGoogle }

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, ErrEmptyAddress
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  "us",
	})
	if err != nil {
		return Result{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return Result{}, ErrNoResult
	}

	loc := results[0].Geometry.Location
	return Result{
		Coordinates: models.Coordinates{Lat: loc.Lat, Lon: loc.Lng},
		DisplayName: results[0].FormattedAddress,
	}, nil
}
