package config

import (
	"os"

	"taxifare.predict.org/internal/geo"
	"taxifare.predict.org/internal/models"
)

const (
	DefaultPredictURL        = "https://taxifare-850122041973.europe-west1.run.app/predict"
	DefaultNominatimURL      = "https://nominatim.openstreetmap.org"
	DefaultUserAgent         = "TaxiFareApp/1.0"
	DefaultTileURL           = "https://tiles.stadiamaps.com/styles/osm_bright/{z}/{x}/{y}{r}.png"
	DefaultTileAttribution   = `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a>`
	DefaultGeocodeCacheTTL   = 24 * 60 * 60
	DefaultPickupAddress     = "200 Eastern Pkwy, Brooklyn"
	DefaultDropoffAddress    = "89 E 42nd St, New York"
	GoogleMapsAPIKeyVariable = "GOOGLE_MAPS_API_KEY"
)

// DefaultSettings returns the settings the service runs with when no config
// file or URL is given: New York City, the public prediction endpoint and
// Nominatim.
func DefaultSettings() models.Settings {
	return models.Settings{
		PredictURL: DefaultPredictURL,
		MaxRetries: 0,
		Geocoder: models.GeocoderSettings{
			Provider:        models.GeocoderNominatim,
			BaseURL:         DefaultNominatimURL,
			UserAgent:       DefaultUserAgent,
			CacheTTLSeconds: DefaultGeocodeCacheTTL,
		},
		Map: models.MapSettings{
			TileURL:     DefaultTileURL,
			Attribution: DefaultTileAttribution,
			Zoom:        10,
			Width:       700,
			Height:      500,
		},
		ServiceArea: geo.BoundingBox{
			MinLat: 40.5,
			MaxLat: 40.9,
			MinLon: -74.3,
			MaxLon: -73.7,
		},
		Defaults: models.DefaultPoints{
			Pickup: models.DefaultPoint{
				Address:     DefaultPickupAddress,
				Coordinates: models.Coordinates{Lat: 40.6, Lon: -74.1},
			},
			Dropoff: models.DefaultPoint{
				Address:     DefaultDropoffAddress,
				Coordinates: models.Coordinates{Lat: 40.7, Lon: -74.0},
			},
		},
		Passengers: models.PassengerRange{Min: 1, Max: 8, Default: 1},
	}
}

// applyEnvOverrides lets secrets stay out of the JSON settings.
func applyEnvOverrides(settings *models.Settings) {
	if key := os.Getenv(GoogleMapsAPIKeyVariable); key != "" {
		settings.Geocoder.APIKey = key
	}
}
