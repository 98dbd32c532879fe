package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifact_runs_total",
			Help: "Total number of verification runs by terminal status",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verifact_run_duration_seconds",
			Help:    "Verification run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Stage metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verifact_stage_duration_seconds",
			Help:    "Analysis stage duration in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	StageToolCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verifact_stage_tool_calls",
			Help:    "Number of evidence tool calls made by a stage",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		},
		[]string{"stage"},
	)

	// Tool metrics
	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifact_tool_invocations_total",
			Help: "Evidence tool invocations by outcome (success, error, cached)",
		},
		[]string{"tool", "outcome"},
	)

	ToolLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verifact_tool_latency_seconds",
			Help:    "Evidence tool latency in seconds, excluding memo hits",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Verdict metrics
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifact_verdicts_total",
			Help: "Verdicts assigned to completed runs",
		},
		[]string{"verdict"},
	)

	// LLM metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifact_llm_requests_total",
			Help: "Reasoning backend requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifact_llm_tokens_total",
			Help: "Tokens consumed by the reasoning backend",
		},
		[]string{"provider"},
	)
)

// Tool invocation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeCached  = "cached"
)

// RecordRun records a finished run; status is "complete" or "failed"
func RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
}

// RecordStage records one completed stage
func RecordStage(stage string, duration time.Duration, toolCalls int) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	StageToolCalls.WithLabelValues(stage).Observe(float64(toolCalls))
}

// RecordToolInvocation records one evidence tool call
func RecordToolInvocation(tool, outcome string, duration time.Duration) {
	ToolInvocations.WithLabelValues(tool, outcome).Inc()
	if outcome != OutcomeCached && duration > 0 {
		ToolLatency.WithLabelValues(tool).Observe(duration.Seconds())
	}
}

// RecordVerdict increments the verdict counter
func RecordVerdict(verdict string) {
	VerdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordLLMRequest records one backend request and its token usage
func RecordLLMRequest(provider, status string, tokens int) {
	LLMRequests.WithLabelValues(provider, status).Inc()
	if tokens > 0 {
		LLMTokens.WithLabelValues(provider).Add(float64(tokens))
	}
}

// Dump writes the default registry in the Prometheus text exposition format
func Dump(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
