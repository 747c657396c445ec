package tracer

import (
	"context"

	tr "go.opentelemetry.io/otel/trace"
)

// RequestInfo describes one request to trace.
type RequestInfo struct {
	// OperationName labels the root span; empty falls back to
	// config.NameAnonymousOp.
	OperationName string

	// Header exposes the transport headers for trace-context propagation.
	// Nil disables propagation for this request.
	Header func(name string) string
}

// FieldInfo describes one resolution node, as supplied by the host's
// resolution engine.
type FieldInfo struct {
	FieldName string
	Alias     string

	// Path is the node's own step; its Parent chain leads to the root.
	Path *PathStep

	// Span is set by the builder once the node is traced, so downstream
	// consumers can annotate it.
	Span tr.Span
}

// Options configures a Middleware. The zero value traces everything and
// installs no hooks.
type Options struct {
	// ShouldTraceRequest gates the whole request; default always true.
	ShouldTraceRequest func(req *RequestInfo) bool

	// ShouldTraceField gates one node; default always true.
	ShouldTraceField func(source, args any, ctx context.Context, field *FieldInfo) bool

	OnRequestResolve     func(root tr.Span, req *RequestInfo)
	OnFieldResolve       func(source, args any, ctx context.Context, field *FieldInfo)
	OnFieldResolveFinish func(err error, result any, span tr.Span)
}

func (o Options) shouldTraceRequest(req *RequestInfo) bool {
	if o.ShouldTraceRequest == nil {
		return true
	}
	return o.ShouldTraceRequest(req)
}

func (o Options) shouldTraceField(source, args any, ctx context.Context, field *FieldInfo) bool {
	if o.ShouldTraceField == nil {
		return true
	}
	return o.ShouldTraceField(source, args, ctx, field)
}
