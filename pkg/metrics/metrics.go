package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BundlesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gift_bundles_created_total",
		Help: "Bundles created in DRAFT status.",
	})

	BundlesPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gift_bundles_published_total",
		Help: "Bundles moved from DRAFT to PUBLISHED.",
	})

	BundlesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gift_bundles_completed_total",
		Help: "Bundles moved from PUBLISHED to COMPLETED.",
	})

	ResponsesSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gift_responses_submitted_total",
		Help: "Recipient responses recorded, by tag.",
	}, []string{"tag"})

	RequestErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gift_request_errors_total",
		Help: "Rejected requests by error kind.",
	}, []string{"kind"})

	MetricsItems = []prometheus.Collector{
		BundlesCreated,
		BundlesPublished,
		BundlesCompleted,
		ResponsesSubmitted,
		RequestErrors,
	}
)

// Registry holds the service collectors plus the Go runtime collectors.
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(MetricsItems...)
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
