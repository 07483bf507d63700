package agents

import (
	"context"
	"fmt"

	"interop/internal/fhir"
	"interop/internal/hl7"
)

// SummarizerAgent condenses result and document messages into a short
// narrative. Applies to ORU and MDM only.
type SummarizerAgent struct{}

func NewSummarizerAgent() *SummarizerAgent {
	return &SummarizerAgent{}
}

func (a *SummarizerAgent) Name() Name {
	return AgentSummarizer
}

func (a *SummarizerAgent) AppliesTo(messageType string) bool {
	return messageType == "ORU" || messageType == "MDM"
}

func (a *SummarizerAgent) Process(ctx context.Context, msg *hl7.Message, resources []fhir.Resource) (Result, error) {
	result := Result{
		Agent:   AgentSummarizer,
		Status:  StatusProcessed,
		Actions: []string{"generate_summary"},
	}

	observations := 0
	abnormal := 0
	for _, r := range resources {
		obs, ok := r.(fhir.Observation)
		if !ok {
			continue
		}
		observations++
		if obs.Interpretation.Text != "Normal" {
			abnormal++
		}
	}

	result.Message = fmt.Sprintf("Summarized %s message with %d observation(s), %d flagged abnormal",
		msg.Type, observations, abnormal)

	if abnormal > 0 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Route %d abnormal result(s) for clinician review", abnormal))
	}

	completeness := fieldCompleteness(msg)
	observationYield := 1.0
	if segments := msg.SegmentsOfType("OBX"); len(segments) > 0 {
		observationYield = float64(observations) / float64(len(segments))
	}

	result.Metrics = Metrics{
		DataQuality: clamp01(completeness),
		Accuracy:    clamp01(observationYield),
		Confidence:  clamp01(completeness * observationYield),
	}

	result.ComplianceValidated = true
	return result, nil
}
