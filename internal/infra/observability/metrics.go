package observability

import (
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	snapshots       *prometheus.CounterVec
	actions         *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recruit_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		aiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_ai_responses_total",
				Help: "Rich responses produced, by outcome (ok, fallback).",
			},
			[]string{"outcome"},
		),
		snapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_insight_snapshots_total",
				Help: "Insight snapshot decisions (written, skipped, failed).",
			},
			[]string{"result"},
		),
		actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recruit_actions_total",
				Help: "Actions executed by name.",
			},
			[]string{"action"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// IncrAIResponse counts one rich response.
func (m *Metrics) IncrAIResponse(fallback bool) {
	if fallback {
		m.aiRequests.WithLabelValues("fallback").Inc()
		return
	}
	m.aiRequests.WithLabelValues("ok").Inc()
}

// IncrSnapshot counts one snapshot decision.
func (m *Metrics) IncrSnapshot(result string) {
	m.snapshots.WithLabelValues(result).Inc()
}

// IncrAction counts one executed action.
func (m *Metrics) IncrAction(action string) {
	m.actions.WithLabelValues(action).Inc()
}

// GetAISnapshot returns cumulative AI usage for GET /api/metrics/ai.
func (m *Metrics) GetAISnapshot() *domain.AIMetrics {
	promptTokens := getCounterValue(m.tokensUsed, "prompt")
	completionTokens := getCounterValue(m.tokensUsed, "completion")
	ok := getCounterValue(m.aiRequests, "ok")
	fallbacks := getCounterValue(m.aiRequests, "fallback")
	cacheHits := getCounterValue(m.cacheHits, "insights")
	cacheMisses := getCounterValue(m.cacheMisses, "insights")

	total := ok + fallbacks
	avgTokens := float64(0)
	fallbackRate := float64(0)
	cacheHitRate := float64(0)

	if total > 0 {
		avgTokens = (promptTokens + completionTokens) / total
		fallbackRate = fallbacks / total
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	// gpt-4o-mini list price: $0.15/1M prompt, $0.60/1M completion.
	estimatedCost := (promptTokens/1e6)*0.15 + (completionTokens/1e6)*0.60

	return &domain.AIMetrics{
		TotalRequests:       int64(total),
		FallbackRate:        fallbackRate,
		PromptTokens:        int64(promptTokens),
		CompletionTokens:    int64(completionTokens),
		AvgTokensPerRequest: avgTokens,
		EstimatedCostUsd:    estimatedCost,
		CacheHitRate:        cacheHitRate,
		SnapshotsWritten:    int64(getCounterValue(m.snapshots, "written")),
		SnapshotsSkipped:    int64(getCounterValue(m.snapshots, "skipped")),
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
