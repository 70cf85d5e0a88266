package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"taxifare.predict.org/internal/config"
	"taxifare.predict.org/internal/geocode"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/quote"
)

var (
	testBrooklynMuseum = models.Coordinates{Lat: 40.6711927, Lon: -73.9636398}
	testGrandCentral   = models.Coordinates{Lat: 40.7527262, Lon: -73.9772294}
	testTimesSquare    = models.Coordinates{Lat: 40.758, Lon: -73.9855}
)

// testGeocoder knows the default addresses and Times Square.
type testGeocoder struct{}

func (testGeocoder) Name() string { return "test" }

func (testGeocoder) Geocode(_ context.Context, address string) (geocode.Result, error) {
	switch address {
	case config.DefaultPickupAddress:
		return geocode.Result{Coordinates: testBrooklynMuseum, DisplayName: "Brooklyn Museum"}, nil
	case config.DefaultDropoffAddress:
		return geocode.Result{Coordinates: testGrandCentral, DisplayName: "Grand Central Terminal"}, nil
	case "Times Square":
		return geocode.Result{Coordinates: testTimesSquare, DisplayName: "Times Square"}, nil
	case "Paris, France":
		return geocode.Result{Coordinates: models.Coordinates{Lat: 48.8566, Lon: 2.3522}}, nil
	}
	return geocode.Result{}, geocode.ErrNoResult
}

// testStore is an in-memory quote.Store.
type testStore struct {
	mu     sync.Mutex
	quotes []models.Quote
}

func (s *testStore) Save(_ context.Context, q models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *testStore) Recent(_ context.Context, n int) ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Quote{}
	for i := len(s.quotes) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.quotes[i])
	}
	return out, nil
}

// predictServer fakes the prediction endpoint. Each request's query is
// sent on the returned channel.
func predictServer(t *testing.T, status int, body string) (*httptest.Server, chan url.Values) {
	t.Helper()

	queries := make(chan url.Values, 10)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, queries
}

func newTestApplication(t *testing.T, predictURL string, store quote.Store) *Application {
	t.Helper()

	settings := config.DefaultSettings()
	settings.PredictURL = predictURL
	settings.MaxRetries = 0

	cfg := config.NewConfig(4000, "testing", settings)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &http.Client{Timeout: 5 * time.Second}

	return New(cfg, logger, client, testGeocoder{}, store, "test-version")
}

// newTestRoutes returns the full handler chain; the /metrics refresh loop
// stops when the test ends.
func newTestRoutes(t *testing.T, app *Application) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return app.Routes(ctx)
}
