package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil))

	want := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"Cache-Control":                "no-store, no-cache, must-revalidate",
		"Pragma":                       "no-cache",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
		"X-XSS-Protection":             "1; mode=block",
		"Content-Security-Policy":      DefaultContentSecurityPolicy,
	}
	for header, value := range want {
		if got := rr.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestSecurityHeadersPageOverride(t *testing.T) {
	policy := PageContentSecurityPolicy("https://tiles.stadiamaps.com/styles/osm_bright/{z}/{x}/{y}{r}.png")
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", policy)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("Content-Security-Policy"); got != policy {
		t.Errorf("expected page policy, got %q", got)
	}
}

func TestPageContentSecurityPolicy(t *testing.T) {
	tests := []struct {
		name    string
		tileURL string
		wantImg string
	}{
		{
			name:    "stadia tiles",
			tileURL: "https://tiles.stadiamaps.com/styles/osm_bright/{z}/{x}/{y}{r}.png",
			wantImg: "img-src 'self' data: https://unpkg.com https://tiles.stadiamaps.com",
		},
		{
			name:    "subdomain placeholder",
			tileURL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			wantImg: "img-src 'self' data: https://unpkg.com https://*.tile.openstreetmap.org",
		},
		{
			name:    "host with port",
			tileURL: "http://localhost:8081/tiles/{z}/{x}/{y}.png",
			wantImg: "img-src 'self' data: https://unpkg.com http://localhost:8081",
		},
		{
			name:    "relative url",
			tileURL: "/tiles/{z}/{x}/{y}.png",
			wantImg: "img-src 'self' data: https://unpkg.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageContentSecurityPolicy(tt.tileURL)
			if !strings.HasSuffix(got, tt.wantImg) {
				t.Errorf("policy = %q, want it to end with %q", got, tt.wantImg)
			}
			if !strings.Contains(got, "script-src 'self' 'unsafe-inline' https://unpkg.com;") {
				t.Errorf("policy %q lost the script sources", got)
			}
		})
	}
}
