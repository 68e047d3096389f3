package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	routeDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "route_decisions_total",
		Help:      "Routing decisions by route.",
	}, []string{"route"})

	resultKinds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "results_total",
		Help:      "Final results by kind.",
	}, []string{"kind"})

	sentinelHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "sentinel_hits_total",
		Help:      "Generations the model answered with the not-found marker.",
	})

	emptyRetrievals = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "empty_retrievals_total",
		Help:      "Pipeline runs where retrieval returned no passages.",
	})

	llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "llm_call_seconds",
		Help:      "Latency of model calls by pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"stage"})

	retrievalLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "retrieval_seconds",
		Help:      "Latency of a single vector search.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	retrievalResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "retrieval_results",
		Help:      "Passages returned by a single vector search.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16},
	})
)

// Register adds the assistant collectors to the given registerer. Safe to
// call more than once.
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(routeDecisions, resultKinds, sentinelHits,
			emptyRetrievals, llmLatency, retrievalLatency, retrievalResults)
	})
}

func CountRoute(route string) {
	routeDecisions.WithLabelValues(route).Inc()
}

func CountResult(kind string) {
	resultKinds.WithLabelValues(kind).Inc()
}

func CountSentinelHit() {
	sentinelHits.Inc()
}

func CountEmptyRetrieval() {
	emptyRetrievals.Inc()
}

func ObserveLLMCall(stage string, elapsed time.Duration) {
	llmLatency.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveRetrieval(elapsed time.Duration, results int) {
	retrievalLatency.Observe(elapsed.Seconds())
	retrievalResults.Observe(float64(results))
}
