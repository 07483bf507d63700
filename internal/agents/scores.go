package agents

import (
	"interop/internal/grammar"
	"interop/internal/hl7"
)

// fieldCompleteness is the fraction of populated fields across all
// segments, used as the data-quality input to stage scores. Always in
// [0,1].
func fieldCompleteness(msg *hl7.Message) float64 {
	total := 0
	populated := 0
	for _, segment := range msg.Segments {
		for _, field := range segment.Fields {
			total++
			if field != "" {
				populated++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(populated) / float64(total)
}

// requiredCoverage is the fraction of the message type's required
// segments actually present. Unrecognized types score full coverage
// since nothing is required of them.
func requiredCoverage(msg *hl7.Message) float64 {
	rule, ok := grammar.Lookup(msg.Type)
	if !ok || len(rule.Required) == 0 {
		return 1
	}
	present := 0
	for _, required := range rule.Required {
		if msg.HasSegment(required) {
			present++
		}
	}
	return float64(present) / float64(len(rule.Required))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
