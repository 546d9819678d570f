// Package transport performs one blocking request/response exchange per call.
package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hurlbench/hurlbench/internal/tracing"
)

// UnsupportedMethodError is returned for methods the exchange cannot drive.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q, expected GET, POST or PUT", e.Method)
}

// ValidateMethod reports whether a method can be performed, so callers can
// fail at setup instead of on the first exchange.
func ValidateMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
		return nil
	default:
		return &UnsupportedMethodError{Method: method}
	}
}

// HTTPTransport performs exchanges over a private HTTP client. Each worker
// owns one instance; connection state is never shared across workers.
type HTTPTransport struct {
	client    *http.Client
	tracer    trace.Tracer
	propagate bool
}

// Option customizes an HTTPTransport.
type Option func(*HTTPTransport)

// WithTracer attaches a tracer; each exchange gets a client span.
func WithTracer(tracer trace.Tracer, propagate bool) Option {
	return func(t *HTTPTransport) {
		t.tracer = tracer
		t.propagate = propagate
	}
}

// New creates a transport with its own tuned HTTP client. A zero timeout
// means no per-request limit.
func New(timeout time.Duration, opts ...Option) *HTTPTransport {
	if timeout < 0 {
		timeout = 0
	}

	t := &HTTPTransport{client: newHTTPClient(timeout)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Perform executes one exchange. A completed exchange is a success whatever
// the status code; only transport-level failures (dial, TLS, timeout, broken
// body) count as errors.
func (t *HTTPTransport) Perform(ctx context.Context, desc *Descriptor) error {
	if err := ValidateMethod(desc.Method); err != nil {
		return err
	}

	var span trace.Span
	if t.tracer != nil {
		ctx, span = tracing.StartRequestSpan(ctx, t.tracer, desc.Method, desc.URL)
	}

	err := t.perform(ctx, desc)

	if span != nil {
		tracing.EndSpan(span, err, attribute.String("http.method", desc.Method))
	}
	return err
}

func (t *HTTPTransport) perform(ctx context.Context, desc *Descriptor) error {
	req, err := http.NewRequestWithContext(ctx, desc.Method, desc.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for _, h := range desc.Headers {
		req.Header.Add(h.Name, h.Value)
	}
	if t.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("perform %s %s: %w", desc.Method, desc.URL, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
