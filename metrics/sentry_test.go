package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-lieck/MusicTreequence/metrics"
)

func TestDisabledWithoutDSN(t *testing.T) {
	t.Setenv("SENTRY_DSN", "")
	m, err := metrics.Init("test")
	require.NoError(t, err)
	ctx := context.Background()
	got, finish := m.Start(ctx, "song")
	assert.Equal(t, ctx, got)
	m.RecordRender(got, time.Millisecond, 10, 2, nil)
	m.RecordGenerate(got, time.Millisecond, 8, 4, errors.New("boom"))
	finish()
	m.Flush()
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.SentryMetrics
	ctx, finish := m.Start(context.Background(), "song")
	m.RecordRender(ctx, 0, 0, 0, nil)
	finish()
	m.Flush()
}
