package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const validTraceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantOK      bool
		wantSampled bool
	}{
		{"sampled", validTraceparent, true, true},
		{"not sampled", "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", true, false},
		{"other flag bits set", "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-03", true, true},
		{"upper case normalized", "00-3D23D071B5BFD6579171EFCE907685CB-08F067AA0BA902B7-01", true, true},
		{"surrounding whitespace", "  " + validTraceparent + " ", true, true},
		{"empty", "", false, false},
		{"garbage", "invalid", false, false},
		{"short trace id", "00-3d23d071b5bfd657-08f067aa0ba902b7-01", false, false},
		{"zero trace id", "00-00000000000000000000000000000000-08f067aa0ba902b7-01", false, false},
		{"zero span id", "00-3d23d071b5bfd6579171efce907685cb-0000000000000000-01", false, false},
		{"forbidden version", "ff-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, ok := parseTraceparent(tt.header)
			if ok != tt.wantOK {
				t.Fatalf("parseTraceparent(%q) ok = %v, want %v", tt.header, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if tc.TraceID != "3d23d071b5bfd6579171efce907685cb" {
				t.Errorf("unexpected trace ID %q", tc.TraceID)
			}
			if tc.SpanID != "08f067aa0ba902b7" {
				t.Errorf("unexpected span ID %q", tc.SpanID)
			}
			if tc.Sampled != tt.wantSampled {
				t.Errorf("sampled = %v, want %v", tc.Sampled, tt.wantSampled)
			}
		})
	}
}

func TestLoggerWithTraceAddsFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := loggerWithTrace(zap.New(core), validTraceparent, "req-123")
	logger.Info("traced")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := fieldMap(entries[0])

	if f := fields["traceId"]; f.String != "3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("unexpected traceId field: %+v", f)
	}
	if f := fields["spanId"]; f.String != "08f067aa0ba902b7" {
		t.Fatalf("unexpected spanId field: %+v", f)
	}
	if f := fields["traceSampled"]; f.Type != zapcore.BoolType || f.Integer != 1 {
		t.Fatalf("unexpected traceSampled field: %+v", f)
	}
	if f := fields["requestId"]; f.String != "req-123" {
		t.Fatalf("unexpected requestId field: %+v", f)
	}
}

func TestLoggerWithTraceWithoutMetadataReturnsBase(t *testing.T) {
	base := zap.NewNop()
	if got := loggerWithTrace(base, "", ""); got != base {
		t.Fatal("expected base logger when no trace or request ID is present")
	}
	if got := loggerWithTrace(nil, "", ""); got == nil {
		t.Fatal("expected no-op logger for nil base")
	}
}

func TestLoggerWithTraceInvalidHeaderKeepsRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	loggerWithTrace(zap.New(core), "invalid", "req-456").Info("untraced")

	fields := fieldMap(recorded.All()[0])
	if _, ok := fields["traceId"]; ok {
		t.Fatal("did not expect traceId for an invalid header")
	}
	if f := fields["requestId"]; f.String != "req-456" {
		t.Fatalf("unexpected requestId field: %+v", f)
	}
}
