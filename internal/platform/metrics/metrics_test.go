package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveOperation("add", "ok")
	r.ObserveOperation("add", "ok")
	r.ObserveOperation("update", "out_of_stock")
	r.SetCartEntries(3)

	if got := testutil.ToFloat64(r.operations.WithLabelValues("add", "ok")); got != 2 {
		t.Errorf("expected 2 add/ok, got %v", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("update", "out_of_stock")); got != 1 {
		t.Errorf("expected 1 update/out_of_stock, got %v", got)
	}
	if got := testutil.ToFloat64(r.cartEntries); got != 3 {
		t.Errorf("expected gauge 3, got %v", got)
	}
}
