package observability

import (
	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values used by the cache counters.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var _ inventory.Metrics = (*Collector)(nil)

// Collector holds the Prometheus metrics for the product cache. Every
// collector owns its registry so several can live in one process.
type Collector struct {
	registry *prometheus.Registry

	CacheLookups     *prometheus.CounterVec
	Invalidations    *prometheus.CounterVec
	InvalidatedKeys  prometheus.Counter
	PopulateFailures prometheus.Counter
}

// NewCollector creates a collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	lookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Reads of the cached product list by result",
		},
		[]string{"result"},
	)

	invalidations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Pattern invalidations by result",
		},
		[]string{"result"},
	)

	invalidatedKeys := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidated_keys_total",
			Help:      "Cache keys removed by pattern invalidations",
		},
	)

	populateFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_populate_failures_total",
			Help:      "Failed writes of the product list into the cache",
		},
	)

	registry.MustRegister(lookups, invalidations, invalidatedKeys, populateFailures)

	// Pre-create the label combinations so they export as zero.
	for _, result := range []string{ResultHit, ResultMiss} {
		lookups.WithLabelValues(result)
	}
	for _, result := range []string{ResultSuccess, ResultFailure} {
		invalidations.WithLabelValues(result)
	}

	return &Collector{
		registry:         registry,
		CacheLookups:     lookups,
		Invalidations:    invalidations,
		InvalidatedKeys:  invalidatedKeys,
		PopulateFailures: populateFailures,
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CacheLookup implements inventory.Metrics.
func (c *Collector) CacheLookup(hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

// CachePopulateFailed implements inventory.Metrics.
func (c *Collector) CachePopulateFailed() {
	c.PopulateFailures.Inc()
}

// Invalidation implements inventory.Metrics. Keys removed before a partial
// failure are still counted.
func (c *Collector) Invalidation(removed int, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	c.Invalidations.WithLabelValues(result).Inc()
	if removed > 0 {
		c.InvalidatedKeys.Add(float64(removed))
	}
}
