package agents

import (
	"context"
	"time"

	"interop/internal/fhir"
	"interop/internal/hl7"
	"interop/internal/logger"
	"interop/pkg/errors"
	"interop/pkg/metrics"
)

// Pipeline runs the agent stages in a fixed order: prior auth, then
// summarizer, then compliance. Callers may rely on the output list
// matching this order, with non-applicable stages absent.
type Pipeline struct {
	stages []Agent
	logger logger.Logger
	clock  func() time.Time
}

func NewPipeline(log logger.Logger) *Pipeline {
	return &Pipeline{
		stages: []Agent{
			NewPriorAuthAgent(),
			NewSummarizerAgent(),
			NewComplianceAgent(),
		},
		logger: log,
		clock:  time.Now,
	}
}

// Run executes every applicable stage. A fault inside one stage
// produces that stage's failed result and the remaining stages still
// run. The only way Run itself fails is caller cancellation, checked
// before each stage so no half-finished stage leaks into the output.
func (p *Pipeline) Run(ctx context.Context, msg *hl7.Message, resources []fhir.Resource) ([]Result, error) {
	results := make([]Result, 0, len(p.stages))

	for _, stage := range p.stages {
		if !stage.AppliesTo(msg.Type) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := p.runStage(ctx, stage, msg, resources)
		results = append(results, result)

		metrics.AgentResultsTotal.WithLabelValues(string(result.Agent), string(result.Status)).Inc()
	}

	return results, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Agent, msg *hl7.Message, resources []fhir.Resource) Result {
	start := p.clock()
	result, err := p.invoke(ctx, stage, msg, resources)
	elapsed := p.clock().Sub(start)

	metrics.ObserveAgentDuration(string(stage.Name()), elapsed)

	if err != nil {
		p.logger.ErrorwCtx(ctx, "Agent stage failed",
			"agent", stage.Name(),
			"message_type", msg.Type,
			"error", err,
		)
		return Result{
			Agent:               stage.Name(),
			Status:              StatusFailed,
			Message:             err.Error(),
			ComplianceValidated: false,
			ProcessingTimeMs:    durationMs(elapsed),
		}
	}

	result.ProcessingTimeMs = durationMs(elapsed)
	return result
}

// invoke shields the pipeline from a panicking stage implementation.
func (p *Pipeline) invoke(ctx context.Context, stage Agent, msg *hl7.Message, resources []fhir.Resource) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.RecoverPanic(r)
		}
	}()
	return stage.Process(ctx, msg, resources)
}

func durationMs(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		return 0
	}
	return ms
}

// WithStages replaces the stage list, preserving order as given. Test
// hook for fault injection.
func (p *Pipeline) WithStages(stages ...Agent) *Pipeline {
	p.stages = stages
	return p
}
