package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracing_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	tp, shutdown, err := InitTracing(ctx, Config{ServiceName: "shop-cart-test", Writer: &buf, Probability: 1})
	if err != nil {
		t.Fatalf("init tracing: %v", err)
	}

	_, span := otel.Tracer("test").Start(ctx, "test-span")
	span.End()

	if err := tp.ForceFlush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if !strings.Contains(buf.String(), "test-span") {
		t.Errorf("expected exported span, got %q", buf.String())
	}
}
