package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler serves a Prometheus exposition that is rebuilt every ttl
// instead of on every scrape.
//
// The fare service registers a handful of vectors, but the outgoing latency
// histogram grows one series per upstream URL and status, and several
// scrapers (Prometheus, the load balancer's health probe) hit /metrics.
type CachedPromHandler struct {
	mu    sync.RWMutex
	cache []byte
	ttl   time.Duration
	h     http.Handler
}

// NewCachedPromHandler builds the handler and starts its refresh loop,
// which stops when ctx is cancelled. ttl should not exceed the scrape interval.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		ttl: ttl,
		h:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh()
		}
	}
}

func (c *CachedPromHandler) refresh() {
	var buf bytes.Buffer
	rec := &responseRecorder{buf: &buf}
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	c.h.ServeHTTP(rec, req)

	c.mu.Lock()
	c.cache = buf.Bytes()
	c.mu.Unlock()
}

// ServeHTTP serves the cached exposition, or gathers live until the first refresh.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.cache) == 0 {
		c.h.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(c.cache)
}

// responseRecorder captures the promhttp output into a buffer. Status codes
// are dropped: a gather that fails still yields the series that succeeded.
type responseRecorder struct {
	buf *bytes.Buffer
}

func (rr *responseRecorder) Write(b []byte) (int, error) { return rr.buf.Write(b) }
func (rr *responseRecorder) Header() http.Header         { return http.Header{} }
func (rr *responseRecorder) WriteHeader(statusCode int)  {}
