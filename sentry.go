package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// initTelemetry starts error reporting. Nothing is sent unless the user opted
// in through settings.json and a DSN is configured.
func initTelemetry(dsn string) error {
	if dsn == "" {
		dsn = os.Getenv("SELTABLE_SENTRY_DSN")
	}
	if dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      telemetryEnvironment(),
		AttachStacktrace: true,
		MaxBreadcrumbs:   breadcrumbLimit,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	InitBreadcrumbs(breadcrumbLimit)
	return nil
}

func telemetryEnvironment() string {
	if os.Getenv("SELTABLE_ENV") == "dev" {
		return "development"
	}
	return "production"
}

// flushTelemetry waits for queued events before the process exits.
func flushTelemetry() {
	sentry.Flush(5 * time.Second)
}

// captureError reports err together with the recent user activity.
func captureError(err error) {
	if err == nil {
		return
	}
	debugLog("error: %v\n", err)
	if breadcrumbs != nil {
		breadcrumbs.Flush()
	}
	sentry.CaptureException(err)
}
