package tracer

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stleox/gqlspan/pkg/config"
	tr "go.opentelemetry.io/otel/trace"
)

// Middleware instruments a host's field resolution with a tree of spans.
// One instance serves many requests; all per-request state lives on the
// RequestTrace returned by BeginRequest.
type Middleware struct {
	// historical request count, also the next request number
	numRequest atomic.Int64

	opts Options

	// cache: request number -> in-flight RequestTrace
	// 淘汰时强制关闭泄漏的根 Span
	active *lru.Cache[int64, *RequestTrace]

	tracerProvider tr.TracerProvider
	tracer         tr.Tracer

	olap *Olap
}

// New builds a Middleware wired from viper configuration. A nil vp disables
// the OLAP archive (testing). An exporter must be installed through one of
// the Init*Exporter methods before the first BeginRequest.
func New(vp *viper.Viper, opts Options) *Middleware {
	var m Middleware
	m.opts = opts
	m.active, _ = lru.NewWithEvict[int64, *RequestTrace](config.MaxActiveRequests, m.evictRequest)

	if vp == nil {
		m.olap = nil // under testing
	} else {
		m.olap = NewOlap(vp)
	}

	return &m
}

// NewWithProvider builds a Middleware on an externally owned tracer
// provider. The provider is required; construction fails without it.
func NewWithProvider(tp tr.TracerProvider, opts Options) (*Middleware, error) {
	if tp == nil {
		return nil, fmt.Errorf("gqlspan: missing tracer provider")
	}
	m := New(nil, opts)
	m.installProvider(tp)
	return m, nil
}

func (m *Middleware) installProvider(tp tr.TracerProvider) {
	m.tracerProvider = tp
	m.tracer = tp.Tracer("gqlspan")
}

// evictRequest is the LRU eviction hook: a request dropped without its
// finish closure leaks its root span, so close it here and record the event.
func (m *Middleware) evictRequest(number int64, rt *RequestTrace) {
	if rt.finished.Load() {
		return
	}
	rt.finished.Store(true)
	rt.root.End()
	logrus.Warnf("GqlSpan force-ended leaked request span #%d", number)
	m.olap.AddExRequest(rt)
}

// These hooked on defer-point of the host:

func (m *Middleware) Flush() {
	m.olap.Flush()
}

func (m *Middleware) Summary() {
	// 日志泄漏请求
	m.olap.SummaryExRequests()
}
