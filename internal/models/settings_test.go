package models_test

import (
	"strings"
	"testing"

	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/models"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *models.Settings)
		wantErr string
	}{
		{"defaults", func(s *models.Settings) {}, ""},
		{"missing predict url", func(s *models.Settings) { s.PredictURL = "" }, "predict_url is required"},
		{"relative predict url", func(s *models.Settings) { s.PredictURL = "predict" }, "predict_url is invalid"},
		{"negative retries", func(s *models.Settings) { s.MaxRetries = -1 }, "max_retries"},
		{"unknown provider", func(s *models.Settings) { s.Geocoder.Provider = "bing" }, "unknown geocoder provider"},
		{"nominatim without base url", func(s *models.Settings) { s.Geocoder.BaseURL = "" }, "base_url"},
		{"google without base url", func(s *models.Settings) {
			s.Geocoder.Provider = models.GeocoderGoogle
			s.Geocoder.BaseURL = ""
		}, ""},
		{"inverted service area", func(s *models.Settings) { s.ServiceArea.MinLat, s.ServiceArea.MaxLat = 40.9, 40.5 }, "service_area"},
		{"default outside area", func(s *models.Settings) { s.Defaults.Pickup.Lat = 41.5 }, "default pickup point"},
		{"swapped default", func(s *models.Settings) {
			s.Defaults.Dropoff.Coordinates = models.Coordinates{Lat: -74.0, Lon: 40.7}
		}, "default dropoff point"},
		{"min passengers above max", func(s *models.Settings) { s.Passengers.Min = 9 }, "passengers range"},
		{"default passengers above max", func(s *models.Settings) { s.Passengers.Default = 12 }, "default passenger count"},
		{"zero zoom", func(s *models.Settings) { s.Map.Zoom = 0 }, "map.zoom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultFor(t *testing.T) {
	s := config.DefaultSettings()

	if got := s.DefaultFor(models.RolePickup); got.Address != config.DefaultPickupAddress {
		t.Errorf("pickup default = %+v", got)
	}
	if got := s.DefaultFor(models.RoleDropoff); got.Address != config.DefaultDropoffAddress {
		t.Errorf("dropoff default = %+v", got)
	}
}
