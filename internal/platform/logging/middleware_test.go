package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// withRequestID mimics the RequestID middleware using chi's context key.
func withRequestID(id string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestAccessLoggerUsesRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	access := AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/tea", nil)
	req = req.WithContext(WithLogger(req.Context(), zap.New(core)))
	access.ServeHTTP(httptest.NewRecorder(), req)

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "request completed" {
		t.Fatalf("unexpected log message: %s", entries[0].Message)
	}
	fields := fieldMap(entries[0])
	if f := fields["status"]; f.Integer != http.StatusTeapot {
		t.Fatalf("expected status 418, got %+v", f)
	}
	if f := fields["path"]; f.String != "/tea" {
		t.Fatalf("expected path '/tea', got %+v", f)
	}
	if f := fields["method"]; f.String != http.MethodGet {
		t.Fatalf("expected method GET, got %+v", f)
	}
	if f := fields["bytes"]; f.Integer != int64(len("short and stout")) {
		t.Fatalf("unexpected bytes field: %+v", f)
	}
	if _, ok := fields["duration"]; !ok {
		t.Fatalf("expected duration field, got %+v", fields)
	}
}

func TestAccessLoggerDefaultsStatusToOK(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	access := AccessLogger()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/silent", nil)
	req = req.WithContext(WithLogger(req.Context(), zap.New(core)))
	access.ServeHTTP(httptest.NewRecorder(), req)

	if f := fieldMap(recorded.All()[0])["status"]; f.Integer != http.StatusOK {
		t.Fatalf("expected status 200 for handler that wrote nothing, got %+v", f)
	}
}

func TestRequestLoggerUsesTraceIDAsCorrelationID(t *testing.T) {
	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CorrelationIDFromContext(r.Context())
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected non-nil logger in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("traceparent", validTraceparent)
	resp := httptest.NewRecorder()
	withRequestID("req-1", RequestLogger()(inner)).ServeHTTP(resp, req)

	if got != "3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("expected trace ID as correlation ID, got %q", got)
	}
}

func TestRequestLoggerFallsBackToRequestID(t *testing.T) {
	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CorrelationIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	withRequestID("test-request-id", RequestLogger()(inner)).ServeHTTP(httptest.NewRecorder(), req)

	if got != "test-request-id" {
		t.Fatalf("expected request ID as correlation ID, got %q", got)
	}
}

func TestRequestLoggerWithoutRequestID(t *testing.T) {
	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CorrelationIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	RequestLogger()(inner).ServeHTTP(httptest.NewRecorder(), req)

	if got != "" {
		t.Fatalf("expected empty correlation ID, got %q", got)
	}
}
