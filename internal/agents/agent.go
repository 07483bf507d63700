// Package agents runs a fixed-order sequence of post-conversion
// processing stages over a parsed message and its FHIR resources. Each
// stage is isolated: a fault inside one stage surfaces as that stage's
// failed result and never prevents later stages from running.
package agents

import (
	"context"

	"interop/internal/fhir"
	"interop/internal/hl7"
)

type Name string

const (
	AgentPriorAuth  Name = "prior_auth"
	AgentSummarizer Name = "summarizer"
	AgentCompliance Name = "compliance"
)

type Status string

const (
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusPartial   Status = "partial"
)

// Metrics are opaque quality scores in [0,1]. They carry no clinical
// meaning; only the range and per-stage isolation are guaranteed.
type Metrics struct {
	DataQuality float64 `json:"data_quality"`
	Accuracy    float64 `json:"accuracy"`
	Confidence  float64 `json:"confidence"`
}

// Result is one stage's verdict. One instance per applicable agent per
// request; stages are never retried automatically.
type Result struct {
	Agent                Name     `json:"agent"`
	Status               Status   `json:"status"`
	Message              string   `json:"message"`
	Actions              []string `json:"actions,omitempty"`
	Recommendations      []string `json:"recommendations,omitempty"`
	ComplianceFrameworks []string `json:"compliance_frameworks,omitempty"`
	ComplianceValidated  bool     `json:"compliance_validated"`
	ComplianceIssues     []string `json:"compliance_issues,omitempty"`
	Metrics              Metrics  `json:"metrics"`
	ProcessingTimeMs     float64  `json:"processing_time_ms"`
}

// Agent is one processing stage. Process must be a pure function of
// its inputs; the pipeline owns timing, isolation and metrics.
type Agent interface {
	Name() Name
	AppliesTo(messageType string) bool
	Process(ctx context.Context, msg *hl7.Message, resources []fhir.Resource) (Result, error)
}
