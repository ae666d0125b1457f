// Package metrics exposes Prometheus collectors for cart operations.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "shopcart"

type Recorder struct {
	operations  *prometheus.CounterVec
	cartEntries prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Cart operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		cartEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_entries",
			Help:      "Number of distinct products currently in the cart.",
		}),
	}
	reg.MustRegister(r.operations, r.cartEntries)
	return r
}

func (r *Recorder) ObserveOperation(op, outcome string) {
	r.operations.WithLabelValues(op, outcome).Inc()
}

func (r *Recorder) SetCartEntries(n int) {
	r.cartEntries.Set(float64(n))
}
