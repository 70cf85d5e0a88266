package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestProbeURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
		wantErr  bool
	}{
		{"predict endpoint", "https://taxifare-850122041973.europe-west1.run.app/predict", "https://taxifare-850122041973.europe-west1.run.app/", false},
		{"nominatim base", "https://nominatim.openstreetmap.org", "https://nominatim.openstreetmap.org/", false},
		{"with query", "http://localhost:8000/predict?x=1", "http://localhost:8000/", false},
		{"relative", "/predict", "", true},
		{"unparseable", "://bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProbeURL(tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProbeURL(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ProbeURL(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestPingUpstream(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}

	tests := []struct {
		name       string
		statusCode int
		wantUp     float64
		wantErr    bool
	}{
		{"root answers 404", http.StatusNotFound, 1, false},
		{"healthy", http.StatusOK, 1, false},
		{"server error", http.StatusServiceUnavailable, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupUpstreamServer(t, tt.statusCode)
			upstream := Upstream{Name: "predict", URL: ts.URL + "/"}

			err := PingUpstream(context.Background(), client, upstream)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PingUpstream error = %v, wantErr %v", err, tt.wantErr)
			}

			got, err := getMetricValue(UpstreamUp, map[string]string{"upstream": "predict", "url": upstream.URL})
			if err != nil {
				t.Fatalf("failed to read metric: %v", err)
			}
			if got != tt.wantUp {
				t.Errorf("taxifare_upstream_up = %v, want %v", got, tt.wantUp)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		ts := setupUpstreamServer(t, http.StatusOK)
		target := ts.URL + "/"
		ts.Close()

		upstream := Upstream{Name: "geocoder", URL: target}
		if err := PingUpstream(context.Background(), client, upstream); err == nil {
			t.Fatal("expected error for a closed server")
		}
		got, _ := getMetricValue(UpstreamUp, map[string]string{"upstream": "geocoder", "url": target})
		if got != 0 {
			t.Errorf("taxifare_upstream_up = %v, want 0", got)
		}
	})
}
