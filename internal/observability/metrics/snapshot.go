package metrics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const llmLatencyMetric = "chatpi_dialogue_llm_latency_seconds"

// LLMLatencySnapshot condenses the refinement latency histogram for the
// debug surface. Quantiles interpolate linearly inside buckets, the
// same estimate PromQL's histogram_quantile gives.
type LLMLatencySnapshot struct {
	SampleCount int64   `json:"sample_count"`
	P50Ms       float64 `json:"p50_ms"`
	P90Ms       float64 `json:"p90_ms"`
	P95Ms       float64 `json:"p95_ms"`
}

// SnapshotLLMLatency aggregates the status="ok" series of the LLM
// latency histogram across models. A nil gatherer reads the default
// registry; a missing or empty family yields a zero snapshot.
func SnapshotLLMLatency(gatherer prometheus.Gatherer) LLMLatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return LLMLatencySnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == llmLatencyMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return LLMLatencySnapshot{}
	}

	cumulative := map[float64]uint64{}
	var samples uint64
	for _, metric := range family.Metric {
		if metric == nil || !hasLabel(metric, "status", "ok") {
			continue
		}
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		samples += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b == nil {
				continue
			}
			cumulative[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if samples == 0 || len(cumulative) == 0 {
		return LLMLatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulative))
	for upper := range cumulative {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	return LLMLatencySnapshot{
		SampleCount: int64(samples),
		P50Ms:       histogramQuantile(0.50, samples, uppers, cumulative) * 1000,
		P90Ms:       histogramQuantile(0.90, samples, uppers, cumulative) * 1000,
		P95Ms:       histogramQuantile(0.95, samples, uppers, cumulative) * 1000,
	}
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.Label {
		if lp == nil {
			continue
		}
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulative map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulative[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		// If we can't interpolate, return the bucket upper bound.
		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		return prevUpper + fraction*(upper-prevUpper)
	}

	return uppers[len(uppers)-1]
}
