package hashtable

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instrumentation a Table reports through
// when constructed with WithMetrics. Each Table that is given Metrics
// should be given its own instance: the gauges are not labeled by
// table identity, following the single-table-per-registerer pattern
// friggdb's queue gauges use.
type Metrics struct {
	size             prometheus.Gauge
	bucketsAllocated prometheus.Gauge
	resizeTotal      prometheus.Counter
	rehashStepsTotal prometheus.Counter
}

// NewMetrics registers a Table's instrumentation under the given
// namespace using promauto, the same construction style as
// friggdb.New's queue-length gauge.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		size: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hashtable_size",
			Help:      "Current number of live elements stored in the table.",
		}),
		bucketsAllocated: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hashtable_buckets_allocated",
			Help:      "Total buckets currently allocated across both physical tables.",
		}),
		resizeTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashtable_resize_total",
			Help:      "Number of times a resize (expand or shrink) was started.",
		}),
		rehashStepsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashtable_rehash_steps_total",
			Help:      "Number of individual source buckets migrated during incremental rehashing.",
		}),
	}
}
