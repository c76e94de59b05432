package log

import (
	"context"
	"testing"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := New(Config{Component: ComponentHTTP}).With(FieldRequestID, "req_abc123")
	ctx := WithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Errorf("FromContext returned a different logger (%p, want %p)", got, logger)
	}
}

func TestFromContextFallback(t *testing.T) {
	got := FromContext(context.Background())
	if got == nil {
		t.Fatal("FromContext returned nil")
	}
	if got.Component() != "unknown" {
		t.Errorf("component = %q, want unknown", got.Component())
	}
}
