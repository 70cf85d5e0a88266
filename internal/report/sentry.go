package report

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initialises the global Sentry hub from SENTRY_DSN. An empty DSN
// leaves the client in no-op mode, which is what local runs and tests get.
func SetupSentry(env, version string) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              os.Getenv("SENTRY_DSN"),
		Environment:      env,
		Release:          "taxifare@" + version,
		EnableTracing:    true,
		Debug:            env == "development",
		TracesSampleRate: 1.0,
	}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	sentry.CaptureMessage("TaxiFare started")
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
