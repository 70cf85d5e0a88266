package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"taxifare.predict.org/internal/metrics"
)

// latencyTrackingRoundTripper records the duration of every outgoing
// request in metrics.OutgoingLatency, labelled by URL (without the query,
// which carries trip coordinates and addresses), method and status.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(
		safeURL,
		req.Method,
		status,
	).Observe(duration)

	return resp, err
}

// NewPooledClient returns the HTTP client shared by the prediction client,
// the geocoders, the config refresh and the upstream probes.
//
//   - MaxIdleConnsPerHost: 10. Nearly all traffic goes to two hosts, the
//     prediction endpoint and the geocoder.
//   - IdleConnTimeout: 90s. Outlives the 30s probe interval, so the probe
//     connection stays warm.
//   - Dial timeout 5s, TLS handshake 5s: fail fast when an upstream is gone.
//   - Client timeout 10s: the prediction endpoint cold-starts on Cloud Run
//     and can take several seconds on the first request.
func NewPooledClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   10 * time.Second,
	}
}
