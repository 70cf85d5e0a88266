package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamUp reports whether an upstream answered the last probe (0 = down, 1 = up).
	UpstreamUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taxifare_upstream_up",
			Help: "Status of an upstream dependency (0 = not working, 1 = working)",
		},
		[]string{"upstream", "url"},
	)
)

var (
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taxifare_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests to the prediction endpoint and geocoders",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})

	IncomingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taxifare_http_request_duration_seconds",
		Help:    "Latency of requests served by the fare service",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

var (
	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxifare_geocode_requests_total",
		Help: "Geocoding lookups by provider and outcome (hit, miss, not_found, error, backoff)",
	}, []string{"provider", "outcome"})

	GeocodeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxifare_geocode_fallbacks_total",
		Help: "Trip points that fell back to the default coordinates",
	}, []string{"role"})
)

var (
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxifare_predictions_total",
		Help: "Fare predictions by outcome (ok, http_error, request_error)",
	}, []string{"outcome"})

	PredictedFare = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "taxifare_predicted_fare_dollars",
		Help:    "Distribution of predicted fares",
		Buckets: []float64{5, 10, 15, 20, 30, 40, 60, 80, 120},
	})

	TripDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "taxifare_trip_distance_km",
		Help:    "Straight-line distance between pickup and dropoff of quoted trips",
		Buckets: []float64{1, 2, 5, 10, 15, 20, 30, 50},
	})

	QuotesStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxifare_quotes_stored_total",
		Help: "Quotes written to the history store by outcome (ok, error)",
	}, []string{"outcome"})
)

const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeHTTPError    = "http_error"
	OutcomeRequestError = "request_error"
	OutcomeHit          = "hit"
	OutcomeMiss         = "miss"
	OutcomeNotFound     = "not_found"
	OutcomeBackoff      = "backoff"
)
