package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), "merge", 20*time.Millisecond, 1024, nil)
		m.RecordRun(context.Background(), "merge", time.Millisecond, 0, errors.New("failed"))
	})
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), "split", time.Second, 10, nil)
	})

	assert.NotPanics(t, func() {
		(&Metrics{}).RecordRun(context.Background(), "split", time.Second, 10, nil)
	})
}
