// Package security assigns a data-sensitivity label to parsed HL7
// messages. The label drives response labeling and audit correlation
// only; it is not an access-control decision.
package security

import (
	"crypto/sha256"
	"encoding/hex"

	"interop/internal/grammar"
	"interop/internal/hl7"
)

type Classification string

const (
	ClassificationInternal Classification = "INTERNAL"
	ClassificationPHI      Classification = "PHI"
)

// Label is the sensitivity verdict for one message. ContentHash is a
// correlation id for audit logging and is never exposed in API
// responses.
type Label struct {
	Classification     Classification `json:"classification"`
	ContainsPHI        bool           `json:"contains_phi"`
	EncryptionRequired bool           `json:"encryption_required"`
	ContentHash        string         `json:"-"`
}

// Classify inspects the message's segments for health-sensitive types.
// EncryptionRequired tracks ContainsPHI one-for-one: the upstream
// system expresses no richer policy, and inventing one here would
// change behavior.
func Classify(msg *hl7.Message) Label {
	containsPHI := false
	for _, segment := range msg.Segments {
		if grammar.IsSensitive(segment.Type) {
			containsPHI = true
			break
		}
	}

	classification := ClassificationInternal
	if containsPHI {
		classification = ClassificationPHI
	}

	return Label{
		Classification:     classification,
		ContainsPHI:        containsPHI,
		EncryptionRequired: containsPHI,
		ContentHash:        hashContent(msg.Raw()),
	}
}

func hashContent(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
