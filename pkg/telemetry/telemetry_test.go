package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feelnote-core/config"
)

func TestInitTracer_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitSentry_EmptyDSNIsNoop(t *testing.T) {
	shutdown, err := InitSentry(config.SentryConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitSentry_RejectsBadDSN(t *testing.T) {
	_, err := InitSentry(config.SentryConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}
