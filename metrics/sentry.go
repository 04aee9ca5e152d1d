// Package metrics reports render and generation timings to Sentry. Nothing
// is sent unless Init has been called with a DSN.
package metrics

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records spans for the expensive steps of turning a song
// into a program.
type SentryMetrics struct {
	enabled bool
}

// Init configures the Sentry client from the SENTRY_DSN environment
// variable. Without it the returned metrics are disabled.
func Init(release string) (*SentryMetrics, error) {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return &SentryMetrics{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize sentry: %w", err)
	}
	return &SentryMetrics{enabled: true}, nil
}

// Flush waits for buffered events to be sent.
func (m *SentryMetrics) Flush() {
	if m != nil && m.enabled {
		sentry.Flush(2 * time.Second)
	}
}

// Start begins a transaction for one song and returns a context carrying it.
// The returned function finishes the transaction.
func (m *SentryMetrics) Start(ctx context.Context, name string) (context.Context, func()) {
	if m == nil || !m.enabled {
		return ctx, func() {}
	}
	transaction := sentry.StartTransaction(ctx, name)
	return transaction.Context(), transaction.Finish
}

// RecordRender records how long rendering a song took and how many
// instructions it produced.
func (m *SentryMetrics) RecordRender(ctx context.Context, duration time.Duration, instructions, symbols int, err error) {
	if m == nil || !m.enabled {
		return
	}
	span := sentry.StartSpan(ctx, "render")
	defer span.Finish()
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("instructions", instructions)
	span.SetData("symbols", symbols)
	status(span, err)
	span.Description = fmt.Sprintf("Render: %d instructions", instructions)
}

// RecordGenerate records one beam search.
func (m *SentryMetrics) RecordGenerate(ctx context.Context, duration time.Duration, steps, width int, err error) {
	if m == nil || !m.enabled {
		return
	}
	span := sentry.StartSpan(ctx, "generate")
	defer span.Finish()
	span.SetTag("width", fmt.Sprintf("%d", width))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("steps", steps)
	status(span, err)
	span.Description = fmt.Sprintf("Generate: %d steps", steps)
}

func status(span *sentry.Span, err error) {
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
		return
	}
	span.Status = sentry.SpanStatusOK
}
