package logging

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context format: {version}-{trace-id}-{parent-id}-{trace-flags}
// Example: 00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01
var traceHeaderRe = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)

// traceContext is the parsed form of a traceparent header.
type traceContext struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// parseTraceparent returns false for malformed headers and for the all-zero
// trace or span IDs the W3C format declares invalid.
func parseTraceparent(header string) (traceContext, bool) {
	matches := traceHeaderRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(header)))
	if len(matches) != 5 {
		return traceContext{}, false
	}
	if matches[1] == "ff" {
		return traceContext{}, false
	}
	traceID, spanID := matches[2], matches[3]
	if strings.Trim(traceID, "0") == "" || strings.Trim(spanID, "0") == "" {
		return traceContext{}, false
	}
	flags, err := strconv.ParseUint(matches[4], 16, 8)
	if err != nil {
		return traceContext{}, false
	}
	// Only the low bit of trace-flags carries the sampled decision.
	sampled := flags&0x01 == 0x01
	return traceContext{TraceID: traceID, SpanID: spanID, Sampled: sampled}, true
}

func traceFields(tc traceContext) []zap.Field {
	return []zap.Field{
		zap.String("traceId", tc.TraceID),
		zap.String("spanId", tc.SpanID),
		zap.Bool("traceSampled", tc.Sampled),
	}
}

func loggerWithTrace(base *zap.Logger, header, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	var fields []zap.Field
	if tc, ok := parseTraceparent(header); ok {
		fields = traceFields(tc)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
