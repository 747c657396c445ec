package config

import (
	"time"
)

const (
	// fallback span name for a node with neither alias nor field name
	NameFieldFallback = "field"

	// root span name for a request without an operation name
	NameAnonymousOp = "request"
)

// for root
var (
	Debug = false
)

// for pkg tracer
var (
	// 同时在途的请求上限，淘汰未完成的请求时强制关闭其根 Span
	MaxActiveRequests = 128

	// capacity hint for one request's span registry
	NumSpanHint = 32
)

// for cmd
var (
	// 触发 OLAP Flush 的时间间隔
	FlushInterval = time.Second
)

// for DB
var (
	// 测试账号
	GQLSPAN_DEFAULT_DSN = "root:@tcp(127.0.0.1:9030)/gqlspan"

	// layout of DATETIME(6) columns
	LayoutDate6 = "2006-01-02 15:04:05.000000"
)
