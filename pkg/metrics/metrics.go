package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_total",
			Help: "Total number of HL7 messages processed by the pipeline (count)",
		},
		[]string{"status"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_ms",
			Help:    "Processing duration per pipeline stage in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"stage"},
	)

	ParseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hl7_parse_failures_total",
			Help: "Total number of messages rejected by the HL7 parser (count)",
		},
	)

	ValidationResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_results_total",
			Help: "Validation outcomes by result (count)",
		},
		[]string{"result"},
	)

	FHIRResourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhir_resources_total",
			Help: "FHIR resources produced by conversion, by resource type (count)",
		},
		[]string{"resource_type"},
	)

	AgentResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_results_total",
			Help: "Agent stage results by agent and status (count)",
		},
		[]string{"agent", "status"},
	)

	AgentStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_stage_duration_ms",
			Help:    "Processing duration per agent stage in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"agent"},
	)

	SimulationFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulation_faults_total",
			Help: "Harness-injected simulation faults by scenario, kept apart from real pipeline errors (count)",
		},
		[]string{"scenario"},
	)

	AuditEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audit events published, by outcome (count)",
		},
		[]string{"status"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)
)

func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		PipelineMessagesTotal,
		PipelineStageDuration,
		ParseFailuresTotal,
		ValidationResultsTotal,
		FHIRResourcesTotal,
		AgentResultsTotal,
		AgentStageDuration,
		SimulationFaultsTotal,
	)
}

func RegisterHTTPMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func RegisterAuditMetrics() {
	prometheus.MustRegister(AuditEventsTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObserveStageDuration(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(float64(duration.Microseconds()) / 1000.0)
}

func ObserveAgentDuration(agent string, duration time.Duration) {
	AgentStageDuration.WithLabelValues(agent).Observe(float64(duration.Microseconds()) / 1000.0)
}
