package app

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/geocode"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/predict"
	"taxifare.predict.org/internal/quote"
)

// Application wires the configuration, the geocoder, the quote service and
// the logger together; its methods are the HTTP handlers.
type Application struct {
	ConfigService *config.ConfigService
	Geocoder      geocode.Geocoder
	Quotes        *quote.Service
	Logger        *slog.Logger
	Version       string

	page *template.Template
}

// New creates and wires all dependencies for the Application. store may be
// nil, in which case quote history is disabled.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, geocoder geocode.Geocoder, store quote.Store, version string) *Application {
	configService := config.NewConfigService(logger, client, cfg)

	quotes := &quote.Service{
		Geocoder:  geocoder,
		Predictor: &settingsPredictor{client: client},
		Store:     store,
		Config:    cfg,
		Logger:    logger,
	}

	return &Application{
		ConfigService: configService,
		Geocoder:      geocoder,
		Quotes:        quotes,
		Logger:        logger,
		Version:       version,
		page:          pageTemplate,
	}
}

// settingsPredictor builds a predict.Client from the settings snapshot of
// each quote, so a config refresh that moves the endpoint takes effect
// without a restart and never splits a single quote across two endpoints.
type settingsPredictor struct {
	client *http.Client
}

func (p *settingsPredictor) Predict(ctx context.Context, settings models.Settings, trip models.TripRequest) (models.FarePrediction, error) {
	c := &predict.Client{
		BaseURL:    settings.PredictURL,
		HTTPClient: p.client,
		MaxRetries: settings.MaxRetries,
	}
	return c.Predict(ctx, trip)
}
