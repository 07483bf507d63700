// Package grammar holds the static HL7 v2 segment layout knowledge the
// parser and validator consume: which segments each message type
// requires, which are optional, and which segment types carry protected
// health information. It is pure data with lookup helpers.
package grammar

type ComplianceLevel string

const (
	LevelBasic      ComplianceLevel = "basic"
	LevelEnhanced   ComplianceLevel = "enhanced"
	LevelEnterprise ComplianceLevel = "enterprise"
)

// Rule describes the segment layout expected for one message type.
type Rule struct {
	Required []string
	Optional []string
	Level    ComplianceLevel
}

var rules = map[string]Rule{
	"ADT": {
		Required: []string{"MSH", "EVN", "PID", "PV1"},
		Optional: []string{"NK1", "AL1", "DG1", "OBX", "IN1"},
		Level:    LevelEnhanced,
	},
	"ORU": {
		Required: []string{"MSH", "PID", "OBR", "OBX"},
		Optional: []string{"PV1", "NTE", "ORC"},
		Level:    LevelEnhanced,
	},
	"ORM": {
		Required: []string{"MSH", "PID", "ORC"},
		Optional: []string{"PV1", "OBR", "NTE", "DG1"},
		Level:    LevelEnterprise,
	},
	"MDM": {
		Required: []string{"MSH", "EVN", "PID", "TXA"},
		Optional: []string{"PV1", "OBX"},
		Level:    LevelEnhanced,
	},
	"DFT": {
		Required: []string{"MSH", "EVN", "PID", "FT1"},
		Optional: []string{"PV1", "DG1", "PR1", "IN1"},
		Level:    LevelEnterprise,
	},
	"SIU": {
		Required: []string{"MSH", "SCH", "PID"},
		Optional: []string{"PV1", "NTE", "AIS", "AIL"},
		Level:    LevelEnhanced,
	},
}

// Segment types whose presence makes a message carry protected health
// information.
var sensitiveSegments = map[string]struct{}{
	"PID": {},
	"OBX": {},
	"DG1": {},
	"PR1": {},
	"AL1": {},
	"TXA": {},
}

// Lookup returns the rule for a message type. The second return value
// is false for unrecognized types.
func Lookup(messageType string) (Rule, bool) {
	rule, ok := rules[messageType]
	return rule, ok
}

// IsRequired reports whether a segment type is required for the given
// message type. Unrecognized message types require nothing.
func IsRequired(segmentType, messageType string) bool {
	rule, ok := rules[messageType]
	if !ok {
		return false
	}
	for _, s := range rule.Required {
		if s == segmentType {
			return true
		}
	}
	return false
}

// IsSensitive reports whether a segment type belongs to the fixed
// health-sensitive set.
func IsSensitive(segmentType string) bool {
	_, ok := sensitiveSegments[segmentType]
	return ok
}

// KnownTypes lists the message types the grammar recognizes.
func KnownTypes() []string {
	types := make([]string, 0, len(rules))
	for t := range rules {
		types = append(types, t)
	}
	return types
}
