package tracing_test

import (
	"context"
	"testing"

	"github.com/pilab-dev/shadow-social/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerProvider(t *testing.T) {
	tp, err := tracing.InitTracerProvider("test-service", tracing.ExporterNone)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
}

func TestInitTracerProvider_UnknownExporter(t *testing.T) {
	_, err := tracing.InitTracerProvider("test-service", "zipkin")
	assert.ErrorContains(t, err, "zipkin")
}
