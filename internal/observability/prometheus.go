package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppchow/pettington-product-navigator/internal/shopify"
)

const (
	CacheHit   = "hit"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

// Metrics holds the Prometheus collectors of the navigator. A nil *Metrics
// or one built without a registerer records nothing.
type Metrics struct {
	storefrontRequests *prometheus.CounterVec
	storefrontDuration *prometheus.HistogramVec
	cacheLookups       *prometheus.CounterVec
	collectionLoads    *prometheus.CounterVec
	pricingFailures    prometheus.Counter
	online             prometheus.Gauge
	exports            *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		storefrontRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Storefront GraphQL requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		storefrontDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_request_duration_seconds",
			Help:    "Duration of storefront GraphQL requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Catalog cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		collectionLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_collection_loads_total",
			Help: "Collection loads by data source.",
		}, []string{"source"}),
		pricingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_pricing_failures_total",
			Help: "Variants whose price could not be parsed.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_online",
			Help: "1 when the storefront was reachable on the last request.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_exports_total",
			Help: "Generated exports by format and layout.",
		}, []string{"format", "layout"}),
	}
	reg.MustRegister(
		m.storefrontRequests,
		m.storefrontDuration,
		m.cacheLookups,
		m.collectionLoads,
		m.pricingFailures,
		m.online,
		m.exports,
	)
	m.online.Set(1)
	return m
}

func (m *Metrics) ObserveStorefrontRequest(operation string, duration time.Duration, err error) {
	if m == nil || m.storefrontRequests == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.storefrontRequests.WithLabelValues(operation, outcome(err)).Inc()
	m.storefrontDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) ObserveCacheLookup(kind, result string) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}

func (m *Metrics) ObserveCollectionLoad(source string) {
	if m == nil || m.collectionLoads == nil {
		return
	}
	m.collectionLoads.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *Metrics) AddPricingFailures(n int) {
	if m == nil || m.pricingFailures == nil || n <= 0 {
		return
	}
	m.pricingFailures.Add(float64(n))
}

func (m *Metrics) SetOnline(online bool) {
	if m == nil || m.online == nil {
		return
	}
	if online {
		m.online.Set(1)
		return
	}
	m.online.Set(0)
}

func (m *Metrics) IncExport(format, layout string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(normalizeLabel(format), normalizeLabel(layout)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case shopify.IsUnreachable(err):
		return "unreachable"
	default:
		return "error"
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
