package tracer

import (
	"context"
	"fmt"

	attr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktr "go.opentelemetry.io/otel/sdk/trace"
)

func (m *Middleware) InitGRPCExporter(shutdownCtx context.Context) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(shutdownCtx)
	if err != nil {
		return nil, fmt.Errorf("creating gRPC exporter: %w", err)
	}

	tp := sdktr.NewTracerProvider(
		sdktr.WithBatcher(exporter),
		sdktr.WithResource(resource.Empty()))
	m.installProvider(tp)

	return tp.Shutdown, nil
}

func (m *Middleware) InitStdoutExporter() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating stdout exporter: %w", err)
	}

	tp := sdktr.NewTracerProvider(
		sdktr.WithBatcher(exporter),
		sdktr.WithResource(resource.Empty()))
	m.installProvider(tp)

	return tp.Shutdown, nil
}

// InitDummyExporter only for testing purposes
func (m *Middleware) InitDummyExporter() (func(context.Context) error, error) {
	tp := sdktr.NewTracerProvider(
		sdktr.WithResource(resource.NewSchemaless(attr.Bool("debug", true))),
	)
	m.installProvider(tp)
	return tp.Shutdown, nil
}
