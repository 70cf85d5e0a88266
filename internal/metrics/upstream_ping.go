package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"taxifare.predict.org/internal/report"
)

// Upstream is a dependency probed by PingUpstream.
type Upstream struct {
	Name string
	URL  string
}

// ProbeURL reduces an endpoint to its scheme and host. The prediction
// endpoint needs query parameters, so the probe targets the service root;
// any HTTP answer proves the service is reachable.
func ProbeURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no scheme or host", endpoint)
	}
	return u.Scheme + "://" + u.Host + "/", nil
}

// PingUpstream issues a GET to the upstream and records the result in UpstreamUp.
// Any response below 500 counts as up.
func PingUpstream(ctx context.Context, client *http.Client, upstream Upstream) error {
	err := ping(ctx, client, upstream.URL)
	if err != nil {
		err = fmt.Errorf("failed to ping %s upstream %s: %w", upstream.Name, upstream.URL, err)
		report.ReportUpstreamError(upstream.Name, err, map[string]interface{}{
			"url": upstream.URL,
		})
		UpstreamUp.WithLabelValues(upstream.Name, upstream.URL).Set(0)
		return err
	}

	UpstreamUp.WithLabelValues(upstream.Name, upstream.URL).Set(1)
	return nil
}

func ping(ctx context.Context, client *http.Client, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "TaxiFareApp/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
