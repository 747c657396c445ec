package tracer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stleox/gqlspan/pkg/config"
	"go.opentelemetry.io/otel/propagation"
	tr "go.opentelemetry.io/otel/trace"
)

// RequestTrace carries the root span state and span registry of one request.
// It is created by BeginRequest and threaded by the host through every
// WillResolveField call; the Middleware itself keeps no per-request state.
type RequestTrace struct {
	// identifier number
	number int64

	root    tr.Span
	rootCtx context.Context

	registry *SpanRegistry

	started  time.Time
	finished atomic.Bool
}

// Root returns the request-level span.
func (rt *RequestTrace) Root() tr.Span {
	return rt.root
}

// FinishRequestFunc ends the request's root span. The host calls it exactly
// once, on both the success and the failure path.
type FinishRequestFunc func()

// headerCarrier adapts a header getter to the propagation API.
type headerCarrier struct {
	get func(name string) string
}

func (c headerCarrier) Get(key string) string {
	if c.get == nil {
		return ""
	}
	return c.get(key)
}

func (c headerCarrier) Set(key, value string) {}

func (c headerCarrier) Keys() []string { return nil }

// BeginRequest opens the root span for req. It returns nil values when the
// request predicate suppresses tracing; nothing of that request gets traced.
//
// When req carries W3C trace-context headers the root span continues the
// remote trace; absent or malformed headers fall back to a fresh root.
func (m *Middleware) BeginRequest(ctx context.Context, req *RequestInfo) (*RequestTrace, FinishRequestFunc, error) {
	if m.tracer == nil {
		return nil, nil, fmt.Errorf("gqlspan: tracer not initialized, call an Init*Exporter first")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if !m.opts.shouldTraceRequest(req) {
		return nil, nil, nil
	}

	if config.Debug {
		config.Log4RawRequest.Debug(req)
	}

	if req != nil && req.Header != nil {
		ctx = (propagation.TraceContext{}).Extract(ctx, headerCarrier{get: req.Header})
	}
	remote := tr.SpanContextFromContext(ctx)

	name := config.NameAnonymousOp
	if req != nil && req.OperationName != "" {
		name = req.OperationName
	}

	ctx, rg := WithRegistry(ctx)
	rootCtx, root := m.tracer.Start(ctx, name, tr.WithSpanKind(tr.SpanKindServer))

	rt := &RequestTrace{
		number:   m.numRequest.Add(1),
		root:     root,
		rootCtx:  rootCtx,
		registry: rg,
		started:  time.Now(),
	}
	m.active.Add(rt.number, rt)

	if m.opts.OnRequestResolve != nil {
		m.opts.OnRequestResolve(root, req)
	}

	finish := func() {
		if rt.finished.Swap(true) {
			logrus.Warnf("GqlSpan finished request #%d twice", rt.number)
			return
		}
		root.End()
		m.olap.InsertSpan(&SpanRecord{
			TraceID:      root.SpanContext().TraceID().String(),
			SpanID:       root.SpanContext().SpanID().String(),
			ParentSpanID: remote.SpanID().String(),
			Path:         "",
			Name:         name,
			StartTime:    rt.started,
			EndTime:      time.Now(),
		})
		m.active.Remove(rt.number)
	}
	return rt, finish, nil
}
