package tracer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stleox/gqlspan/pkg/config"
	attr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	tr "go.opentelemetry.io/otel/trace"
)

// FinishFunc closes one field span, reporting the resolution outcome.
// The host calls it exactly once, after the node's work completes.
type FinishFunc func(err error, result any)

// WillResolveField is called once per resolution node, before the host
// resolves it. A nil return means the node is untraced and there is nothing
// to finish.
//
// A node stays untraced when the request itself is untraced, when the field
// predicate says so, or when its ancestor was untraced: suppression
// propagates down the tree by construction, because descendants fail the
// parent lookup.
func (m *Middleware) WillResolveField(rt *RequestTrace, source, args any, ctx context.Context, field *FieldInfo) FinishFunc {
	if rt == nil || rt.root == nil || field == nil {
		return nil
	}
	rg := rt.registry

	if !m.opts.shouldTraceField(source, args, ctx, field) {
		rg.MarkUntraced(field.Path)
		return nil
	}

	var parentStep *PathStep
	if field.Path != nil {
		parentStep = field.Path.Parent
	}
	entry, state := rg.LookupParent(parentStep)

	var parentCtx context.Context
	switch state {
	case ParentFound:
		parentCtx = entry.Ctx
	case NoParent:
		parentCtx = rt.rootCtx
	default: // ParentUntraced
		rg.MarkUntraced(field.Path)
		return nil
	}

	name := fieldSpanName(field)
	pathKey := PathKey(field.Path)

	startOpts := make([]tr.SpanStartOption, 0, 2)
	startOpts = append(startOpts, tr.WithAttributes(
		attr.String("graphql.field", field.FieldName),
		attr.String("graphql.path", pathKey)))
	if field.Alias != "" {
		startOpts = append(startOpts, tr.WithAttributes(attr.String("graphql.alias", field.Alias)))
	}

	spanCtx, span := m.tracer.Start(parentCtx, name, startOpts...)
	rg.AddSpan(field.Path, &SpanEntry{Ctx: spanCtx, Span: span})
	field.Span = span

	if config.Debug {
		logrus.Debugf("span name: %s, span id: %s, path: %s",
			name, span.SpanContext().SpanID(), pathKey)
	}

	if m.opts.OnFieldResolve != nil {
		m.opts.OnFieldResolve(source, args, ctx, field)
	}

	parentSpanID := tr.SpanContextFromContext(parentCtx).SpanID()
	started := time.Now()

	return func(err error, result any) {
		// closure survives a panicking hook
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
			m.olap.InsertSpan(&SpanRecord{
				TraceID:      span.SpanContext().TraceID().String(),
				SpanID:       span.SpanContext().SpanID().String(),
				ParentSpanID: parentSpanID.String(),
				Path:         pathKey,
				Name:         name,
				StartTime:    started,
				EndTime:      time.Now(),
			})
		}()
		if m.opts.OnFieldResolveFinish != nil {
			m.opts.OnFieldResolveFinish(err, result, span)
		}
	}
}

// fieldSpanName prefers the alias, then the field name, then the fallback.
func fieldSpanName(field *FieldInfo) string {
	if field.Alias != "" {
		return field.Alias
	}
	if field.FieldName != "" {
		return field.FieldName
	}
	return config.NameFieldFallback
}
