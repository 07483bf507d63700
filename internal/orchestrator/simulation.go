package orchestrator

import (
	"context"
	"net/http"
	"time"

	"interop/pkg/metrics"
)

type Scenario string

const (
	ScenarioSuccess         Scenario = "success"
	ScenarioValidationError Scenario = "validation_error"
	ScenarioNetworkFailure  Scenario = "network_failure"
	ScenarioTimeout         Scenario = "timeout"
	ScenarioMalformedData   Scenario = "malformed_data"
)

// Fault is a harness-injected failure. It is a distinct type from
// pipeline errors on purpose: injected faults resolve before any real
// parsing runs and must never show up in pipeline error statistics.
type Fault struct {
	Scenario Scenario
	Status   int
	Message  string
}

func (f *Fault) Error() string {
	return f.Message
}

// SimulationOptions are the test-harness knobs accepted alongside the
// raw message. All fields are optional.
type SimulationOptions struct {
	Scenarios []string `json:"scenarios"`
	DelayMs   int      `json:"delay"`
	// ReturnFHIR defaults to true; only an explicit false omits the
	// resource array from the response.
	ReturnFHIR *bool `json:"returnFhir"`
}

func (o SimulationOptions) has(scenario Scenario) bool {
	for _, s := range o.Scenarios {
		if Scenario(s) == scenario {
			return true
		}
	}
	return false
}

func (o SimulationOptions) includeFHIR() bool {
	return o.ReturnFHIR == nil || *o.ReturnFHIR
}

// preParseFault resolves the scenarios that short-circuit the request
// before the parser ever sees the payload.
func (o SimulationOptions) preParseFault() *Fault {
	if o.has(ScenarioMalformedData) {
		return &Fault{
			Scenario: ScenarioMalformedData,
			Status:   http.StatusBadRequest,
			Message:  "simulated malformed payload rejected",
		}
	}
	if o.has(ScenarioNetworkFailure) {
		return &Fault{
			Scenario: ScenarioNetworkFailure,
			Status:   http.StatusServiceUnavailable,
			Message:  "simulated upstream network failure",
		}
	}
	return nil
}

func recordFault(f *Fault) *Fault {
	metrics.SimulationFaultsTotal.WithLabelValues(string(f.Scenario)).Inc()
	return f
}

// sleep waits for d or until the context is canceled, holding no
// shared resources. Returns the context error on cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
