// Package validation checks a parsed HL7 message against the grammar's
// per-message-type segment rules. Validation never fails: missing
// segments and unknown types accumulate as data in the verdict.
package validation

import (
	"fmt"

	"interop/internal/grammar"
	"interop/internal/hl7"
)

// Verdict is the outcome of validating one message. It is produced
// once and attached to the response; it is never recomputed in place.
type Verdict struct {
	Valid           bool                    `json:"valid"`
	Errors          []string                `json:"errors"`
	Warnings        []string                `json:"warnings"`
	ComplianceLevel grammar.ComplianceLevel `json:"compliance_level"`
}

// WithExtraErrors returns a new verdict superseding v with additional
// error strings appended. Used by the simulation harness; the original
// verdict is left untouched.
func (v Verdict) WithExtraErrors(errs ...string) Verdict {
	out := Verdict{
		Errors:          make([]string, 0, len(v.Errors)+len(errs)),
		Warnings:        append([]string(nil), v.Warnings...),
		ComplianceLevel: v.ComplianceLevel,
	}
	out.Errors = append(out.Errors, v.Errors...)
	out.Errors = append(out.Errors, errs...)
	out.Valid = len(out.Errors) == 0
	return out
}

// Validate checks that every required segment for the message's type is
// present. Parse errors carry through as validation errors so a
// malformed message naturally reports invalid. An unrecognized message
// type is a warning, not an error.
func Validate(msg *hl7.Message) Verdict {
	verdict := Verdict{
		Errors:   []string{},
		Warnings: []string{},
	}

	verdict.Errors = append(verdict.Errors, msg.ParseErrors()...)

	rule, known := grammar.Lookup(msg.Type)
	if !known {
		verdict.Warnings = append(verdict.Warnings, fmt.Sprintf("Unknown message type: %s", msg.Type))
		verdict.ComplianceLevel = grammar.LevelBasic
	} else {
		verdict.ComplianceLevel = rule.Level
		for _, required := range rule.Required {
			if !msg.HasSegment(required) {
				verdict.Errors = append(verdict.Errors, "Missing required segment: "+required)
			}
		}
	}

	verdict.Valid = len(verdict.Errors) == 0
	return verdict
}
