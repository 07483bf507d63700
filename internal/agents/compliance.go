package agents

import (
	"context"

	"interop/internal/fhir"
	"interop/internal/grammar"
	"interop/internal/hl7"
)

// ComplianceAgent checks every message against the handling rules for
// protected health information. It runs unconditionally and last.
type ComplianceAgent struct{}

func NewComplianceAgent() *ComplianceAgent {
	return &ComplianceAgent{}
}

func (a *ComplianceAgent) Name() Name {
	return AgentCompliance
}

func (a *ComplianceAgent) AppliesTo(messageType string) bool {
	return true
}

func (a *ComplianceAgent) Process(ctx context.Context, msg *hl7.Message, resources []fhir.Resource) (Result, error) {
	result := Result{
		Agent:                AgentCompliance,
		Status:               StatusProcessed,
		Actions:              []string{"phi_handling_review"},
		ComplianceFrameworks: []string{"HIPAA", "HL7v2"},
	}

	containsPHI := false
	for _, segment := range msg.Segments {
		if grammar.IsSensitive(segment.Type) {
			containsPHI = true
			break
		}
	}

	var issues []string

	if containsPHI && msg.PatientID == "" {
		issues = append(issues, "PHI segments present without a patient identifier")
	}

	if msg.ControlID == "" {
		issues = append(issues, "Message control id is empty; the message cannot be traced for audit")
	}

	if containsPHI {
		for _, r := range resources {
			patient, ok := r.(fhir.Patient)
			if !ok {
				continue
			}
			if len(patient.Meta.Security) == 0 {
				issues = append(issues, "Patient resource derived from PHI is missing its Restricted security tag")
			}
		}
	}

	result.ComplianceIssues = issues
	result.ComplianceValidated = len(issues) == 0

	if result.ComplianceValidated {
		result.Message = "Compliance review passed"
	} else {
		result.Message = "Compliance review found issues"
		result.Recommendations = append(result.Recommendations,
			"Resolve compliance issues before forwarding the message downstream")
	}

	completeness := fieldCompleteness(msg)
	issuePenalty := 1.0 - float64(len(issues))*0.25

	result.Metrics = Metrics{
		DataQuality: clamp01(completeness),
		Accuracy:    clamp01(issuePenalty),
		Confidence:  clamp01(completeness * issuePenalty),
	}

	return result, nil
}
