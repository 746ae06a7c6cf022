// Package observability настраивает трассировку OpenTelemetry.
package observability

import (
	"context"
	"time"

	"github.com/annel0/voxel-battle/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Options параметры трассировки симулятора
type Options struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint host:port коллектора; пусто: OTEL_EXPORTER_OTLP_ENDPOINT или localhost:4318
	Endpoint string
	// SampleRatio доля корневых спанов (тиков), попадающих в выборку
	SampleRatio float64
}

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// Дочерние спаны фаз тика наследуют решение о выборке от спана тика.
// Возвращает функцию shutdown, которую нужно вызвать при завершении приложения.
func InitTelemetry(ctx context.Context, opts Options) (func(context.Context) error, error) {
	var expOpts []otlptracehttp.Option
	if opts.Endpoint != "" {
		expOpts = append(expOpts, otlptracehttp.WithEndpoint(opts.Endpoint), otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, expOpts...)
	if err != nil {
		return nil, err
	}

	attrs := []resource.Option{resource.WithAttributes(semconv.ServiceName(opts.ServiceName))}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(opts.ServiceVersion)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(opts.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (OTLP/HTTP, service=%s, sample=%.2f)", opts.ServiceName, opts.SampleRatio)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}
