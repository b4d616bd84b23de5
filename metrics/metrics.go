package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexdraft_pipeline_runs_total",
		Help: "Pipeline runs by agent and outcome",
	}, []string{"agent", "outcome"})

	PipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lexdraft_pipeline_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"stage"})

	AssertionsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexdraft_assertions_generated_total",
		Help: "Assertions produced by agents, split by validity",
	}, []string{"agent", "valid"})

	AgentFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexdraft_agent_template_fallbacks_total",
		Help: "Times an agent fell back from the language model to templates",
	}, []string{"agent", "reason"})

	Renderings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexdraft_renderings_total",
		Help: "Render attempts by format and outcome",
	}, []string{"format", "outcome"})

	ConstitutionViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexdraft_constitution_violations_total",
		Help: "Rejected operations by law or domain code",
	}, []string{"kind", "code"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
