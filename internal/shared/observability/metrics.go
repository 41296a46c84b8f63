package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultAccept = "accept"
	ResultReject = "reject"
	ResultError  = "error"
	ResultOK     = "ok"
)

// Metrics definitions
var (
	CompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammarfsa_compile_seconds",
		Help:    "Time spent compiling a grammar and lexicon into a graph.",
		Buckets: prometheus.DefBuckets,
	})

	GraphStates = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grammarfsa_graph_states",
		Help: "Number of states in the most recently compiled graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grammarfsa_graph_edges",
		Help: "Number of edges in the most recently compiled graph.",
	})

	RecognitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammarfsa_recognitions_total",
		Help: "Total number of recognition requests by outcome.",
	}, []string{"result"})

	RecognitionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammarfsa_recognition_seconds",
		Help:    "Time spent searching the graph for one input.",
		Buckets: prometheus.DefBuckets,
	})

	SearchSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammarfsa_search_steps",
		Help:    "Hypotheses expanded per recognition.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammarfsa_reloads_total",
		Help: "Total number of grammar reload attempts by outcome.",
	}, []string{"result"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grammarfsa_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grammarfsa_rate_limited_total",
		Help: "Total number of recognition requests rejected by the rate limiter.",
	})
)
