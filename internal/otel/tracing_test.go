package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docvault/internal/config"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitUnknownProtocolDegrades(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{
		Enabled:     true,
		ServiceName: "docvault-test",
		Protocol:    "udp",
		SampleRatio: 1,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestNewExporterRejectsUnknownProtocol(t *testing.T) {
	_, err := newExporter(context.Background(), config.TracingConfig{Protocol: "udp"})
	require.Error(t, err)
}
