package tracer

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stleox/gqlspan/pkg/config"
	tr "go.opentelemetry.io/otel/trace"
)

// SpanEntry pairs an open span with the context that chains children under it.
type SpanEntry struct {
	Ctx  context.Context
	Span tr.Span
}

// ParentLookup classifies the result of resolving a node's governing ancestor.
type ParentLookup int

const (
	// NoParent: top-level node, chain under the request root.
	NoParent ParentLookup = iota
	// ParentUntraced: the ancestor was suppressed, the node stays untraced.
	ParentUntraced
	// ParentFound: the returned entry holds the governing ancestor span.
	ParentFound
)

// SpanRegistry maps canonical path keys to the spans governing them.
// One instance per request, owned by that request's flow of control;
// never shared across requests.
type SpanRegistry struct {
	spans    map[string]*SpanEntry
	untraced map[string]struct{}
}

func NewSpanRegistry() *SpanRegistry {
	return &SpanRegistry{
		spans:    make(map[string]*SpanEntry, config.NumSpanHint),
		untraced: make(map[string]struct{}),
	}
}

// AddSpan stores entry under the step's own full key, brackets included.
// Last write wins.
func (rg *SpanRegistry) AddSpan(step *PathStep, entry *SpanEntry) {
	rg.spans[PathKey(step)] = entry
}

// MarkUntraced records that the node at step was deliberately skipped, so
// descendants can tell suppression apart from a registry miss.
func (rg *SpanRegistry) MarkUntraced(step *PathStep) {
	rg.untraced[PathKey(step)] = struct{}{}
}

// spanKeyOf is the lookup key of a step. An indexed step inherits the
// identity of the field that produced the list; its own bracketed key is
// used only when registering the element itself.
func spanKeyOf(step *PathStep) string {
	if step != nil && step.Kind == StepIndex {
		return PathKey(step.Parent)
	}
	return PathKey(step)
}

// SpanByPath returns the span governing step, nil if none was registered.
func (rg *SpanRegistry) SpanByPath(step *PathStep) *SpanEntry {
	return rg.spans[spanKeyOf(step)]
}

// LookupParent resolves the governing ancestor of a node whose parent chain
// starts at parent (the node's own step already stripped off).
func (rg *SpanRegistry) LookupParent(parent *PathStep) (*SpanEntry, ParentLookup) {
	if parent == nil {
		return nil, NoParent
	}
	key := spanKeyOf(parent)
	if key == "" {
		return nil, NoParent
	}
	if entry, hit := rg.spans[key]; hit {
		return entry, ParentFound
	}
	if _, hit := rg.untraced[key]; !hit {
		// genuine miss: the ancestor never went through the builder
		logrus.Warnf("GqlSpan couldn't find ancestor span for %q", key)
	}
	return nil, ParentUntraced
}

type registryCtxKey struct{}

// WithRegistry attaches a fresh SpanRegistry to ctx, unless one is already
// attached, in which case ctx comes back unchanged. Attachment is idempotent:
// every caller during one request observes the same registry.
func WithRegistry(ctx context.Context) (context.Context, *SpanRegistry) {
	if rg, ok := RegistryFrom(ctx); ok {
		return ctx, rg
	}
	rg := NewSpanRegistry()
	return context.WithValue(ctx, registryCtxKey{}, rg), rg
}

// RegistryFrom reads back the registry attached by WithRegistry.
func RegistryFrom(ctx context.Context) (*SpanRegistry, bool) {
	rg, ok := ctx.Value(registryCtxKey{}).(*SpanRegistry)
	return rg, ok
}
