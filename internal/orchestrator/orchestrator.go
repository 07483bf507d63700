// Package orchestrator is the pipeline's top-level entry point. It
// sequences parsing, validation, security classification, FHIR
// conversion and the agent stages, and aggregates everything into a
// single response. It is the only package the HTTP layer touches.
package orchestrator

import (
	"context"
	"net/http"
	"time"

	"interop/internal/agents"
	"interop/internal/audit"
	"interop/internal/config"
	"interop/internal/constants"
	"interop/internal/fhir"
	"interop/internal/hl7"
	"interop/internal/logger"
	"interop/internal/security"
	"interop/internal/validation"
	"interop/pkg/logging"
	"interop/pkg/metrics"
	"interop/pkg/tracing"
)

// Request is one pipeline invocation: the raw HL7 payload plus the
// optional simulation knobs.
type Request struct {
	HL7        string
	Simulation SimulationOptions
}

// SecuritySummary is the externally visible slice of the security
// label. The content hash stays internal.
type SecuritySummary struct {
	Classification     security.Classification `json:"classification"`
	ContainsPHI        bool                    `json:"contains_phi"`
	EncryptionRequired bool                    `json:"encryption_required"`
}

// FHIRSummary reports what conversion produced. Resources is omitted
// when the caller opted out via returnFhir=false; count and types are
// always present.
type FHIRSummary struct {
	ResourceCount int             `json:"resource_count"`
	ResourceTypes []string        `json:"resource_types"`
	Resources     []fhir.Resource `json:"resources,omitempty"`
}

// AgentSummary is derived from the agent result list.
type AgentSummary struct {
	Successful              int     `json:"successful"`
	Failed                  int     `json:"failed"`
	AverageProcessingTimeMs float64 `json:"average_processing_time_ms"`
	ComplianceValidated     bool    `json:"compliance_validated"`
}

// Response is the terminal aggregate returned for every real pipeline
// run, including runs whose validation failed.
type Response struct {
	MessageType          string             `json:"message_type"`
	MessageControlID     string             `json:"message_control_id"`
	PatientID            string             `json:"patient_id,omitempty"`
	SendingApplication   string             `json:"sending_application,omitempty"`
	SendingFacility      string             `json:"sending_facility,omitempty"`
	ReceivingApplication string             `json:"receiving_application,omitempty"`
	ReceivingFacility    string             `json:"receiving_facility,omitempty"`
	Timestamp            time.Time          `json:"timestamp"`
	Validation           validation.Verdict `json:"validation"`
	Security             SecuritySummary    `json:"security"`
	FHIR                 FHIRSummary        `json:"fhir"`
	Agents               []agents.Result    `json:"agents"`
	Summary              AgentSummary       `json:"summary"`
	ProcessingTimeMs     float64            `json:"processing_time_ms"`
}

type Orchestrator struct {
	converter    *fhir.Converter
	pipeline     *agents.Pipeline
	recorder     audit.Recorder
	logger       logger.Logger
	maxDelay     time.Duration
	timeoutDelay time.Duration
	clock        func() time.Time
}

func New(cfg config.PipelineConfig, pipeline *agents.Pipeline, recorder audit.Recorder, log logger.Logger) *Orchestrator {
	maxDelay := time.Duration(cfg.MaxSimulatedDelayMs) * time.Millisecond
	if maxDelay <= 0 {
		maxDelay = constants.MaxSimulatedDelay
	}

	timeoutDelay := time.Duration(cfg.TimeoutScenarioDelayMs) * time.Millisecond
	if timeoutDelay <= 0 {
		timeoutDelay = constants.DefaultTimeoutScenarioDelay
	}

	if recorder == nil {
		recorder = audit.NopRecorder{}
	}

	return &Orchestrator{
		converter:    fhir.NewConverter(),
		pipeline:     pipeline,
		recorder:     recorder,
		logger:       log,
		maxDelay:     maxDelay,
		timeoutDelay: timeoutDelay,
		clock:        time.Now,
	}
}

// Process runs the full pipeline over one message. It returns either a
// complete Response or an error (a *Fault for injected scenarios,
// context errors for cancellation), never a half-filled response.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracing.GetTracer("orchestrator").Start(ctx, "pipeline.process")
	defer span.End()

	start := o.clock()

	if fault := req.Simulation.preParseFault(); fault != nil {
		o.logger.WarnwCtx(ctx, "Simulation fault injected", "scenario", fault.Scenario)
		return nil, recordFault(fault)
	}

	if err := o.applySimulatedDelay(ctx, req.Simulation); err != nil {
		return nil, err
	}

	if req.Simulation.has(ScenarioTimeout) {
		o.logger.WarnwCtx(ctx, "Simulation fault injected", "scenario", ScenarioTimeout)
		return nil, recordFault(&Fault{
			Scenario: ScenarioTimeout,
			Status:   http.StatusGatewayTimeout,
			Message:  "simulated processing timeout",
		})
	}

	msg := o.parse(ctx, req.HL7)
	ctx = logging.WithControlID(ctx, msg.ControlID)

	verdict := o.validate(ctx, msg)
	if req.Simulation.has(ScenarioValidationError) {
		verdict = verdict.WithExtraErrors("Simulated validation failure")
		metrics.SimulationFaultsTotal.WithLabelValues(string(ScenarioValidationError)).Inc()
	}

	label := security.Classify(msg)

	resources := []fhir.Resource{}
	results := []agents.Result{}

	// An unrecoverable parse still yields a full response; only the
	// conversion and agent work is skipped.
	if msg.WellFormed() {
		resources = o.convert(ctx, msg, label)

		var err error
		results, err = o.runAgents(ctx, msg, resources)
		if err != nil {
			return nil, err
		}
	} else {
		metrics.ParseFailuresTotal.Inc()
	}

	elapsed := o.clock().Sub(start)
	response := o.assemble(msg, verdict, label, resources, results, req.Simulation, elapsed)

	o.observe(ctx, msg, verdict, label, results, elapsed)

	return response, nil
}

func (o *Orchestrator) applySimulatedDelay(ctx context.Context, opts SimulationOptions) error {
	delay := time.Duration(opts.DelayMs) * time.Millisecond
	if opts.DelayMs <= 0 && opts.has(ScenarioTimeout) {
		delay = o.timeoutDelay
	}
	if delay <= 0 {
		return ctx.Err()
	}
	if delay > o.maxDelay {
		delay = o.maxDelay
	}
	return sleep(ctx, delay)
}

func (o *Orchestrator) parse(ctx context.Context, raw string) *hl7.Message {
	ctx, span := tracing.GetTracer("orchestrator").Start(ctx, "pipeline.parse")
	defer span.End()

	start := o.clock()
	msg := hl7.Parse(raw)
	metrics.ObserveStageDuration("parse", o.clock().Sub(start))
	return msg
}

func (o *Orchestrator) validate(ctx context.Context, msg *hl7.Message) validation.Verdict {
	ctx, span := tracing.GetTracer("orchestrator").Start(ctx, "pipeline.validate")
	defer span.End()

	start := o.clock()
	verdict := validation.Validate(msg)
	metrics.ObserveStageDuration("validate", o.clock().Sub(start))

	result := "valid"
	if !verdict.Valid {
		result = "invalid"
	}
	metrics.ValidationResultsTotal.WithLabelValues(result).Inc()

	return verdict
}

func (o *Orchestrator) convert(ctx context.Context, msg *hl7.Message, label security.Label) []fhir.Resource {
	ctx, span := tracing.GetTracer("orchestrator").Start(ctx, "pipeline.convert")
	defer span.End()

	start := o.clock()
	resources := o.converter.Convert(msg, label)
	metrics.ObserveStageDuration("convert", o.clock().Sub(start))

	for _, r := range resources {
		metrics.FHIRResourcesTotal.WithLabelValues(string(r.Kind())).Inc()
	}

	return resources
}

func (o *Orchestrator) runAgents(ctx context.Context, msg *hl7.Message, resources []fhir.Resource) ([]agents.Result, error) {
	ctx, span := tracing.GetTracer("orchestrator").Start(ctx, "pipeline.agents")
	defer span.End()

	start := o.clock()
	results, err := o.pipeline.Run(ctx, msg, resources)
	metrics.ObserveStageDuration("agents", o.clock().Sub(start))
	return results, err
}

func (o *Orchestrator) assemble(
	msg *hl7.Message,
	verdict validation.Verdict,
	label security.Label,
	resources []fhir.Resource,
	results []agents.Result,
	opts SimulationOptions,
	elapsed time.Duration,
) *Response {
	fhirSummary := FHIRSummary{
		ResourceCount: len(resources),
		ResourceTypes: fhir.DistinctKinds(resources),
	}
	if opts.includeFHIR() {
		fhirSummary.Resources = resources
	}

	return &Response{
		MessageType:          msg.Type,
		MessageControlID:     msg.ControlID,
		PatientID:            msg.PatientID,
		SendingApplication:   msg.SendingApplication,
		SendingFacility:      msg.SendingFacility,
		ReceivingApplication: msg.ReceivingApplication,
		ReceivingFacility:    msg.ReceivingFacility,
		Timestamp:            msg.Timestamp,
		Validation:           verdict,
		Security: SecuritySummary{
			Classification:     label.Classification,
			ContainsPHI:        label.ContainsPHI,
			EncryptionRequired: label.EncryptionRequired,
		},
		FHIR:             fhirSummary,
		Agents:           results,
		Summary:          summarize(results),
		ProcessingTimeMs: float64(elapsed.Microseconds()) / 1000.0,
	}
}

func summarize(results []agents.Result) AgentSummary {
	summary := AgentSummary{ComplianceValidated: true}

	var totalMs float64
	for _, r := range results {
		totalMs += r.ProcessingTimeMs
		switch r.Status {
		case agents.StatusFailed:
			summary.Failed++
		default:
			summary.Successful++
		}
		if !r.ComplianceValidated {
			summary.ComplianceValidated = false
		}
	}

	if len(results) > 0 {
		summary.AverageProcessingTimeMs = totalMs / float64(len(results))
	}

	return summary
}

func (o *Orchestrator) observe(
	ctx context.Context,
	msg *hl7.Message,
	verdict validation.Verdict,
	label security.Label,
	results []agents.Result,
	elapsed time.Duration,
) {
	status := "processed"
	if !msg.WellFormed() {
		status = "parse_failed"
	}
	metrics.PipelineMessagesTotal.WithLabelValues(status).Inc()

	failed := 0
	for _, r := range results {
		if r.Status == agents.StatusFailed {
			failed++
		}
	}

	o.recorder.Record(ctx, audit.Event{
		OccurredAt:       o.clock(),
		MessageType:      msg.Type,
		MessageControlID: msg.ControlID,
		Valid:            verdict.Valid,
		ContainsPHI:      label.ContainsPHI,
		ContentHash:      label.ContentHash,
		AgentsRun:        len(results),
		AgentsFailed:     failed,
		DurationMs:       float64(elapsed.Microseconds()) / 1000.0,
		Outcome:          status,
	})

	o.logger.InfowCtx(ctx, "Pipeline run complete",
		"message_type", msg.Type,
		"valid", verdict.Valid,
		"contains_phi", label.ContainsPHI,
		"agents_run", len(results),
		"agents_failed", failed,
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
	)
}
