package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hurlbench/hurlbench/internal/transport"
)

func TestPerformSuccess(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	tr := transport.New(5 * time.Second)
	desc := &transport.Descriptor{
		URL:    server.URL,
		Method: http.MethodGet,
		Headers: []transport.HeaderField{
			{Name: "X-Api-Key", Value: "secret"},
		},
	}
	if err := tr.Perform(context.Background(), desc); err != nil {
		t.Fatalf("Perform() error = %v", err)
	}
	if gotHeader != "secret" {
		t.Errorf("header not sent, got %q", gotHeader)
	}
}

func TestPerformServerErrorIsStillSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := transport.New(5 * time.Second)
	desc := &transport.Descriptor{URL: server.URL, Method: http.MethodGet}
	if err := tr.Perform(context.Background(), desc); err != nil {
		t.Fatalf("a completed exchange must not fail on status code, got %v", err)
	}
}

func TestPerformConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr := transport.New(time.Second)
	desc := &transport.Descriptor{URL: url, Method: http.MethodGet}
	if err := tr.Perform(context.Background(), desc); err == nil {
		t.Fatal("expected transport error against closed server")
	}
}

func TestPerformUnsupportedMethod(t *testing.T) {
	tr := transport.New(time.Second)
	desc := &transport.Descriptor{URL: "https://example.org/", Method: "DELETE"}
	err := tr.Perform(context.Background(), desc)
	var merr *transport.UnsupportedMethodError
	if !errors.As(err, &merr) {
		t.Fatalf("expected UnsupportedMethodError, got %v", err)
	}
	if merr.Method != "DELETE" {
		t.Errorf("unexpected method in error: %q", merr.Method)
	}
}

func TestPerformCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	tr := transport.New(0)
	desc := &transport.Descriptor{URL: server.URL, Method: http.MethodGet}
	if err := tr.Perform(ctx, desc); err == nil {
		t.Fatal("expected error after context cancellation")
	}
}

func TestValidateMethod(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut} {
		if err := transport.ValidateMethod(method); err != nil {
			t.Errorf("ValidateMethod(%q) = %v, want nil", method, err)
		}
	}
	for _, method := range []string{"DELETE", "PATCH", "HEAD", "OPTIONS", "FOO"} {
		if err := transport.ValidateMethod(method); err == nil {
			t.Errorf("ValidateMethod(%q) = nil, want error", method)
		}
	}
}
