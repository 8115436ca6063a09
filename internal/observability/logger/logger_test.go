package logger

import (
	"context"
	"testing"

	obscontext "github.com/sandistd/carbon-footprint-app/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapConfigProductionDefaults(t *testing.T) {
	cfg, err := zapConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.False(t, cfg.Development)
}

func TestZapConfigDebug(t *testing.T) {
	cfg, err := zapConfig(Config{Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())

	cfg, err = zapConfig(Config{Debug: true, Level: "WARN", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, zapcore.WarnLevel, cfg.Level.Level())
}

func TestZapConfigRejectsUnknownLevel(t *testing.T) {
	_, err := zapConfig(Config{Level: "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"chatty"`)
}

func TestSamplingDefaults(t *testing.T) {
	s := Sampling{Thereafter: 10}.withDefaults()
	assert.Equal(t, 100, s.Initial)
	assert.Equal(t, 10, s.Thereafter)
	assert.Positive(t, s.Window)
}

func TestNewInstallsGlobalLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	log, err := New(nil, Config{ServiceName: " carbon-test ", Level: "error"})
	require.NoError(t, err)
	assert.Same(t, log, zap.L())
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestWithContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "auditor@example.com")
	WithContext(ctx, base).Info("dashboard built")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "auditor@example.com", fields["actor"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithContextWithoutFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}
