package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"taxifare.predict.org/internal/middleware"
)

// Routes registers every endpoint on an httprouter and wraps it with the
// request logger, Sentry and the security headers.
//
//   - GET  /                 the trip form and map
//   - POST /predict          form submission, re-renders the page
//   - GET  /v1/geocode       address to coordinates
//   - GET  /v1/map           the trip as GeoJSON
//   - POST /v1/predict       JSON quote
//   - GET  /v1/quotes        recent quotes
//   - GET  /v1/healthcheck
//   - GET  /metrics          cached Prometheus exposition
//
// ctx bounds the lifetime of the /metrics refresh loop.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/", app.pageHandler)
	router.HandlerFunc(http.MethodPost, "/predict", app.predictFormHandler)

	router.HandlerFunc(http.MethodGet, "/v1/geocode", app.geocodeHandler)
	router.HandlerFunc(http.MethodGet, "/v1/map", app.mapHandler)
	router.HandlerFunc(http.MethodPost, "/v1/predict", app.predictAPIHandler)
	router.HandlerFunc(http.MethodGet, "/v1/quotes", app.quotesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.SentryMiddleware(router)
	handler = middleware.RequestLogger(app.Logger)(handler)
	return middleware.SecurityHeaders(handler)
}
