package tracer

import (
	"context"
	"strings"
	"testing"

	r "github.com/stretchr/testify/require"
	"github.com/stleox/gqlspan/pkg/config"
	tr "go.opentelemetry.io/otel/trace"
)

func TestRequest_MissingProviderIsFatal(t *testing.T) {
	m, err := NewWithProvider(nil, Options{})
	r.Error(t, err)
	r.Nil(t, m)
}

func TestRequest_TracerNotInitialized(t *testing.T) {
	m := New(nil, Options{})

	rt, finish, err := m.BeginRequest(context.Background(), &RequestInfo{})
	r.Error(t, err)
	r.Nil(t, rt)
	r.Nil(t, finish)
}

func TestRequest_RootSpan(t *testing.T) {
	m, sr := mockNewMiddleware(Options{})

	rt, finishRequest, err := m.BeginRequest(context.Background(), &RequestInfo{OperationName: "myOp"})
	r.NoError(t, err)
	r.NotNil(t, rt)
	r.NotNil(t, rt.Root())
	finishRequest()

	ended := sr.Ended()
	r.Len(t, ended, 1)
	r.Equal(t, "myOp", ended[0].Name())
	r.Equal(t, tr.SpanKindServer, ended[0].SpanKind())
	r.False(t, ended[0].Parent().IsValid())
}

func TestRequest_AnonymousOperationName(t *testing.T) {
	m, sr := mockNewMiddleware(Options{})

	_, finishRequest, err := m.BeginRequest(context.Background(), &RequestInfo{})
	r.NoError(t, err)
	finishRequest()

	r.Equal(t, config.NameAnonymousOp, sr.Ended()[0].Name())
}

func TestRequest_ContinuesPropagatedTrace(t *testing.T) {
	m, sr := mockNewMiddleware(Options{})

	headers := map[string]string{
		"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
	}
	_, finishRequest, err := m.BeginRequest(context.Background(), &RequestInfo{
		OperationName: "op",
		Header:        func(name string) string { return headers[strings.ToLower(name)] },
	})
	r.NoError(t, err)
	finishRequest()

	ended := sr.Ended()
	r.Len(t, ended, 1)
	r.Equal(t, "0af7651916cd43dd8448eb211c80319c", ended[0].SpanContext().TraceID().String())
	r.Equal(t, "b7ad6b7169203331", ended[0].Parent().SpanID().String())
	r.True(t, ended[0].Parent().IsRemote())
}

func TestRequest_MalformedTraceparentFallsBack(t *testing.T) {
	m, sr := mockNewMiddleware(Options{})

	_, finishRequest, err := m.BeginRequest(context.Background(), &RequestInfo{
		OperationName: "op",
		Header:        func(string) string { return "garbage" },
	})
	r.NoError(t, err)
	finishRequest()

	// extraction failure degrades to a fresh root
	ended := sr.Ended()
	r.Len(t, ended, 1)
	r.True(t, ended[0].SpanContext().TraceID().IsValid())
	r.False(t, ended[0].Parent().IsValid())
}

func TestRequest_FinishTwiceEndsOnce(t *testing.T) {
	m, sr := mockNewMiddleware(Options{})

	_, finishRequest, err := m.BeginRequest(context.Background(), &RequestInfo{OperationName: "op"})
	r.NoError(t, err)

	finishRequest()
	finishRequest()
	r.Len(t, sr.Ended(), 1)
}

func TestRequest_OnRequestResolveHook(t *testing.T) {
	var sawRoot tr.Span
	var sawReq *RequestInfo
	opts := Options{
		OnRequestResolve: func(root tr.Span, req *RequestInfo) {
			sawRoot = root
			sawReq = req
		},
	}
	m, _ := mockNewMiddleware(opts)

	req := &RequestInfo{OperationName: "op"}
	rt, finishRequest, err := m.BeginRequest(context.Background(), req)
	r.NoError(t, err)
	r.Equal(t, rt.Root(), sawRoot)
	r.Same(t, req, sawReq)
	finishRequest()
}

func TestRequest_EvictionForceEndsLeakedRoot(t *testing.T) {
	oldMax := config.MaxActiveRequests
	config.MaxActiveRequests = 2
	defer func() { config.MaxActiveRequests = oldMax }()

	m, sr := mockNewMiddleware(Options{})

	// three unfinished requests against a cap of two: the oldest leaks
	_, finish1, err := m.BeginRequest(context.Background(), &RequestInfo{OperationName: "op1"})
	r.NoError(t, err)
	_, _, err = m.BeginRequest(context.Background(), &RequestInfo{OperationName: "op2"})
	r.NoError(t, err)
	_, _, err = m.BeginRequest(context.Background(), &RequestInfo{OperationName: "op3"})
	r.NoError(t, err)

	ended := sr.Ended()
	r.Len(t, ended, 1)
	r.Equal(t, "op1", ended[0].Name())

	// the dropped finish closure turning up late must not end the span again
	finish1()
	r.Len(t, sr.Ended(), 1)
}
