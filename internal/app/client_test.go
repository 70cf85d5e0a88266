package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"taxifare.predict.org/internal/metrics"
)

func histogramCount(t *testing.T, vec *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()

	m, ok := vec.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatal("histogram does not implement prometheus.Metric")
	}
	pb := &dto.Metric{}
	if err := m.Write(pb); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestPooledClientRecordsLatency(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	client := NewPooledClient()
	label := ts.URL + "/predict"
	before := histogramCount(t, metrics.OutgoingLatency, label, http.MethodGet, "418")

	resp, err := client.Get(ts.URL + "/predict?pickup_latitude=40.6")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := histogramCount(t, metrics.OutgoingLatency, label, http.MethodGet, "418") - before; got != 1 {
		t.Errorf("expected one observation without the query in the label, got %d", got)
	}
}
