package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func initForTest(t *testing.T, ratio float64) func(context.Context) error {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTelemetry(context.Background(), Options{
		ServiceName:    "voxel-battle-test",
		ServiceVersion: "test",
		Endpoint:       "127.0.0.1:1",
		SampleRatio:    ratio,
	})
	require.NoError(t, err)
	return shutdown
}

func TestInitTelemetry_SetsProvider(t *testing.T) {
	shutdown := initForTest(t, 0)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "Глобальный провайдер заменён на SDK")

	assert.NoError(t, shutdown(context.Background()), "Без спанов выгрузка не обращается к коллектору")
}

func TestInitTelemetry_SampleRatio(t *testing.T) {
	shutdown := initForTest(t, 0)
	defer shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "tick")
	assert.False(t, span.SpanContext().IsSampled(), "Нулевая доля отбрасывает тики")
	span.End()
}
