package reqctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRequestMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1", RequestedAt: time.Now()})
	meta, ok := RequestMetaFromContext(ctx)
	if !ok || meta.RequestID != "req-1" {
		t.Fatalf("RequestMetaFromContext() = %+v, %v", meta, ok)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
}

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithRequestMeta(context.Background(), &RequestMeta{RequestID: "req-42"})
	Logger(ctx, base).Info("hello")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("log line = %q", buf.String())
	}
}
