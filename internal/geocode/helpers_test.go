package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"
)

// newReplayClient returns an HTTP client that answers from the named cassette
// under testdata/vcr and fails on any request the cassette does not contain.
func newReplayClient(t *testing.T, name string) *http.Client {
	t.Helper()

	rec, err := recorder.New(filepath.Join("testdata", "vcr", name),
		recorder.WithMode(recorder.ModeReplayOnly),
		recorder.WithMatcher(func(r *http.Request, i cassette.Request) bool {
			return r.Method == i.Method && r.URL.String() == i.URL
		}),
	)
	if err != nil {
		t.Fatalf("Failed to create recorder: %v", err)
	}
	t.Cleanup(func() { _ = rec.Stop() })

	return &http.Client{
		Transport: rec,
		Timeout:   10 * time.Second,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// counterValue reads one series of a CounterVec.
func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	pb := &dto.Metric{}
	if err := vec.WithLabelValues(labels...).Write(pb); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return pb.GetCounter().GetValue()
}

// fakeGeocoder answers from a fixed map and counts provider calls.
type fakeGeocoder struct {
	mu      sync.Mutex
	name    string
	results map[string]Result
	err     error
	calls   int
}

func (f *fakeGeocoder) Name() string { return f.name }

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	r, ok := f.results[address]
	if !ok {
		return Result{}, ErrNoResult
	}
	return r, nil
}

func (f *fakeGeocoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
