package tracing

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupNoneIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Exporter: "none"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Nil(t, CurrentTracer())

	ctx, span := StartSpan(context.Background(), "search.exhaustive")
	assert.Equal(t, "", span.TraceID())
	assert.Equal(t, "", TraceIDFromContext(ctx))
	span.SetAttribute("rotation", 3)
	span.RecordError(errors.New("ignored"))
	span.End()
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), Config{Exporter: "jaeger"})
	require.Error(t, err)

	_, err = Setup(context.Background(), Config{Exporter: ExporterFile})
	require.Error(t, err)
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := Setup(context.Background(), Config{Exporter: ExporterStdout, Writer: buf, ServiceName: "xorsift-test"})
	require.NoError(t, err)
	require.NotNil(t, CurrentTracer())
	assert.Equal(t, "xorsift-test", CurrentTracer().ServiceName())

	ctx, span := StartSpan(context.Background(), "search.single", WithAttributes(map[string]any{"matrix": "8x8"}))
	assert.Len(t, span.TraceID(), 32)
	assert.Equal(t, span.TraceID(), TraceIDFromContext(ctx))
	span.AddEvent("matrix_fallback", map[string]any{"error": "mismatch"})
	span.EndWithStatus(StatusOK, "")

	require.NoError(t, shutdown(context.Background()))
	assert.Nil(t, CurrentTracer())
	assert.Contains(t, buf.String(), "search.single")
	assert.Contains(t, buf.String(), "8x8")
}

func TestFileExporterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.jsonl")
	shutdown, err := Setup(context.Background(), Config{Exporter: ExporterFile, FilePath: path})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "decode", AsServer())
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"Name":"decode"`), string(data))
}
