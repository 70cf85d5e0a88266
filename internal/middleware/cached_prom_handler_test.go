package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCachedPromHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taxifare_test_scrapes_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Inc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewCachedPromHandler(ctx, reg, time.Hour)

	scrape := func() string {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		return rr.Body.String()
	}

	// Before the first refresh the handler gathers live.
	if body := scrape(); !strings.Contains(body, "taxifare_test_scrapes_total 1") {
		t.Fatalf("expected live value, got:\n%s", body)
	}

	h.refresh()
	counter.Inc()

	body := scrape()
	if !strings.Contains(body, "taxifare_test_scrapes_total 1") {
		t.Errorf("expected cached value, got:\n%s", body)
	}
	if strings.Contains(body, "taxifare_test_scrapes_total 2") {
		t.Error("cached exposition must not change before the next refresh")
	}

	h.refresh()
	if body := scrape(); !strings.Contains(body, "taxifare_test_scrapes_total 2") {
		t.Errorf("expected refreshed value, got:\n%s", body)
	}
}
