package agents

import (
	"context"
	"fmt"

	"interop/internal/fhir"
	"interop/internal/hl7"
)

// PriorAuthAgent reviews order and financial messages for prior
// authorization readiness. Applies to ORM and DFT only.
type PriorAuthAgent struct{}

func NewPriorAuthAgent() *PriorAuthAgent {
	return &PriorAuthAgent{}
}

func (a *PriorAuthAgent) Name() Name {
	return AgentPriorAuth
}

func (a *PriorAuthAgent) AppliesTo(messageType string) bool {
	return messageType == "ORM" || messageType == "DFT"
}

func (a *PriorAuthAgent) Process(ctx context.Context, msg *hl7.Message, resources []fhir.Resource) (Result, error) {
	result := Result{
		Agent:   AgentPriorAuth,
		Status:  StatusProcessed,
		Actions: []string{"eligibility_check", "coverage_review"},
	}

	completeness := fieldCompleteness(msg)
	coverage := requiredCoverage(msg)

	result.Metrics = Metrics{
		DataQuality: clamp01(completeness),
		Accuracy:    clamp01(coverage),
		Confidence:  clamp01((completeness + coverage) / 2),
	}

	if msg.PatientID == "" {
		result.Status = StatusPartial
		result.Message = "Prior authorization review completed without patient identifier"
		result.Recommendations = append(result.Recommendations,
			"Attach a patient identifier (PID-3) so the authorization can be matched to coverage")
	} else {
		result.Message = fmt.Sprintf("Prior authorization review completed for patient %s", msg.PatientID)
	}

	if !msg.HasSegment("DG1") {
		result.Recommendations = append(result.Recommendations,
			"Include a diagnosis segment (DG1) to support medical necessity")
	}

	result.ComplianceValidated = true
	return result, nil
}
