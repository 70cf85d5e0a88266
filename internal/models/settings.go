package models

import (
	"errors"
	"fmt"
	"net/url"

	"taxifare.predict.org/internal/geo"
)

const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// Settings is the runtime-tunable part of the configuration. It is loaded
// from a JSON file or URL and may be swapped while the server is running.
type Settings struct {
	PredictURL  string           `json:"predict_url"`
	MaxRetries  int              `json:"max_retries"`
	Geocoder    GeocoderSettings `json:"geocoder"`
	Map         MapSettings      `json:"map"`
	ServiceArea geo.BoundingBox  `json:"service_area"`
	Defaults    DefaultPoints    `json:"defaults"`
	Passengers  PassengerRange   `json:"passengers"`
}

type GeocoderSettings struct {
	Provider        string `json:"provider"`
	BaseURL         string `json:"base_url"`
	UserAgent       string `json:"user_agent"`
	APIKey          string `json:"api_key,omitempty"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
}

type MapSettings struct {
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
	Zoom        int    `json:"zoom"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// DefaultPoint is used when nothing else is known about a trip end:
// on first render, and whenever geocoding comes back empty.
type DefaultPoint struct {
	Address string `json:"address"`
	Coordinates
}

type DefaultPoints struct {
	Pickup  DefaultPoint `json:"pickup"`
	Dropoff DefaultPoint `json:"dropoff"`
}

type PassengerRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// DefaultFor returns the default point for the given role.
func (s Settings) DefaultFor(role PointRole) DefaultPoint {
	if role == RoleDropoff {
		return s.Defaults.Dropoff
	}
	return s.Defaults.Pickup
}

// Validate reports the first problem that would make the settings unusable.
func (s Settings) Validate() error {
	if s.PredictURL == "" {
		return errors.New("predict_url is required")
	}
	if _, err := url.ParseRequestURI(s.PredictURL); err != nil {
		return fmt.Errorf("predict_url is invalid: %w", err)
	}
	if s.MaxRetries < 0 {
		return errors.New("max_retries must be >= 0")
	}
	switch s.Geocoder.Provider {
	case GeocoderNominatim:
		if s.Geocoder.BaseURL == "" {
			return errors.New("geocoder.base_url is required for nominatim")
		}
	case GeocoderGoogle:
	default:
		return fmt.Errorf("unknown geocoder provider %q", s.Geocoder.Provider)
	}
	if err := s.ServiceArea.Validate(); err != nil {
		return fmt.Errorf("service_area: %w", err)
	}
	for _, role := range []PointRole{RolePickup, RoleDropoff} {
		p := s.DefaultFor(role)
		if !s.ServiceArea.Contains(p.Lat, p.Lon) {
			return fmt.Errorf("default %s point (%v, %v) is outside the service area", role, p.Lat, p.Lon)
		}
	}
	if s.Passengers.Min < 1 || s.Passengers.Min > s.Passengers.Max {
		return fmt.Errorf("passengers range %d..%d is invalid", s.Passengers.Min, s.Passengers.Max)
	}
	if s.Passengers.Default < s.Passengers.Min || s.Passengers.Default > s.Passengers.Max {
		return fmt.Errorf("default passenger count %d is outside %d..%d", s.Passengers.Default, s.Passengers.Min, s.Passengers.Max)
	}
	if s.Map.Zoom <= 0 {
		return errors.New("map.zoom must be positive")
	}
	return nil
}
