package app

import (
	"context"
	"time"

	"taxifare.predict.org/internal/metrics"
	"taxifare.predict.org/internal/models"
)

// googleMapsProbeURL is probed when the Google geocoder is selected; its
// base URL is not part of the settings.
const googleMapsProbeURL = "https://maps.googleapis.com/"

const probeInterval = 30 * time.Second

// StartMetricsCollection probes the upstreams once, then every 30 seconds
// until ctx is cancelled.
func (app *Application) StartMetricsCollection(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(probeInterval)
		defer ticker.Stop()

		app.CollectUpstreamMetrics(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.CollectUpstreamMetrics(ctx)
			}
		}
	}()
}

// upstreams lists the services the current settings depend on.
func (app *Application) upstreams(settings models.Settings) []metrics.Upstream {
	var out []metrics.Upstream

	if u, err := metrics.ProbeURL(settings.PredictURL); err == nil {
		out = append(out, metrics.Upstream{Name: "predict", URL: u})
	} else {
		app.Logger.Error("cannot probe prediction endpoint", "url", settings.PredictURL, "error", err)
	}

	geocoderURL := settings.Geocoder.BaseURL
	if settings.Geocoder.Provider == models.GeocoderGoogle {
		geocoderURL = googleMapsProbeURL
	}
	if u, err := metrics.ProbeURL(geocoderURL); err == nil {
		out = append(out, metrics.Upstream{Name: "geocoder", URL: u})
	} else {
		app.Logger.Error("cannot probe geocoder", "url", geocoderURL, "error", err)
	}

	return out
}

// CollectUpstreamMetrics probes every upstream once. Failures are already
// reported to Sentry by PingUpstream and are only logged here.
func (app *Application) CollectUpstreamMetrics(ctx context.Context) {
	settings := app.ConfigService.Config.GetSettings()

	for _, upstream := range app.upstreams(settings) {
		if err := metrics.PingUpstream(ctx, app.ConfigService.Client, upstream); err != nil {
			app.Logger.Error("upstream probe failed", "upstream", upstream.Name, "error", err)
		}
	}
}
