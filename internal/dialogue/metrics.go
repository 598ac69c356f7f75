package dialogue

import "github.com/prometheus/client_golang/prometheus"

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "chatpi",
		Subsystem: "dialogue",
		Name:      "llm_latency_seconds",
		Help:      "Latency of LLM refinement completions",
		// Callback budgets top out under a minute; keep the long tail visible.
		Buckets: []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
	},
	[]string{"model", "status"},
)

var llmTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "chatpi",
		Subsystem: "dialogue",
		Name:      "llm_tokens_total",
		Help:      "Tokens used by the LLM",
	},
	[]string{"model", "type"}, // type: input, output, total
)

var turnsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "chatpi",
		Subsystem: "dialogue",
		Name:      "turns_total",
		Help:      "Inbound turns by routed intent",
	},
	[]string{"intent"},
)

var refineOutcomeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "chatpi",
		Subsystem: "dialogue",
		Name:      "refine_outcome_total",
		Help:      "Draft refinement outcomes by path",
	},
	[]string{"path", "outcome"}, // path: sync, callback; outcome: refined, draft
)

var callbackDeliveryTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "chatpi",
		Subsystem: "dialogue",
		Name:      "callback_delivery_total",
		Help:      "Deferred callback POST results",
	},
	[]string{"status"}, // status: ok, error
)

func init() {
	prometheus.MustRegister(llmLatency)
	prometheus.MustRegister(llmTokensTotal)
	prometheus.MustRegister(turnsTotal)
	prometheus.MustRegister(refineOutcomeTotal)
	prometheus.MustRegister(callbackDeliveryTotal)
}

// RegisterMetrics registers dialogue metrics with a custom registry.
// Use this when exposing a non-default registry (e.g., HTTP handlers with a private registry).
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil || reg == prometheus.DefaultRegisterer {
		return
	}
	reg.MustRegister(llmLatency, llmTokensTotal, turnsTotal, refineOutcomeTotal, callbackDeliveryTotal)
}
