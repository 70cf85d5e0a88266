package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// getMetricValue retrieves the current float64 value of a Prometheus GaugeVec metric
// for the given set of labels. Returns an error if the metric cannot be parsed.
func getMetricValue(metric *prometheus.GaugeVec, labels map[string]string) (float64, error) {
	c := make(chan prometheus.Metric, 1)
	metric.With(labels).Collect(c)
	m := <-c

	pb := &dto.Metric{}
	if err := m.Write(pb); err != nil {
		return 0, err
	}
	return pb.GetGauge().GetValue(), nil
}

// setupUpstreamServer creates a new httptest.Server that answers every request
// with the given status code. The server is closed when the test ends.
func setupUpstreamServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}))
	t.Cleanup(func() { ts.Close() })
	return ts
}
