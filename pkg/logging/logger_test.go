package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	assert.Contains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), "warning message")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithSource(ctx, "acme")
	ctx = logging.WithArtifact(ctx, "report-2024-01.xlsx")
	ctx = logging.WithOperation(ctx, "ingest")

	logging.FromContext(ctx).Info().Msg("ingested")

	testLogger.AssertContains(t, `"source":"acme"`)
	testLogger.AssertContains(t, `"artifact":"report-2024-01.xlsx"`)
	testLogger.AssertContains(t, `"operation":"ingest"`)
	testLogger.AssertContains(t, "ingested")
}

func TestRunID(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRunID(ctx, "run-1")

	assert.Equal(t, "run-1", logging.RunID(ctx))
	assert.Empty(t, logging.RunID(context.Background()))

	logging.FromContext(ctx).Debug().Msg("tick")
	testLogger.AssertContains(t, `"run_id":"run-1"`)
}

func TestWithField(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithField(ctx, "records", 3)
	ctx = logging.WithField(ctx, "elapsed", 1500*time.Millisecond)
	logging.FromContext(ctx).Info().Msg("done")

	testLogger.AssertContains(t, `"records":3`)
	testLogger.AssertContains(t, `"elapsed":1500`)
}

func TestFromContextDefaults(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	path := filepath.Join(t.TempDir(), "tablesync.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"service": "tablesync"},
	})
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "shown")
	assert.Contains(t, string(content), `"service":"tablesync"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Error().Str("source", "acme").Msg("fetch failed")

	assert.True(t, captured.Contains("fetch failed"))
	assert.Len(t, captured.Lines(), 1)
}
