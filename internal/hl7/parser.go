package hl7

import (
	"fmt"
	"strings"
	"time"

	"interop/internal/grammar"
)

const (
	segmentTerminator  = "\r"
	fieldSeparator     = "|"
	componentSeparator = "^"

	// An MSH segment carries the header metadata we need only from
	// this many pipe-delimited fields onward.
	minMSHFields = 12
)

// MSH field positions after splitting on the field separator. The
// segment id sits at index 0 and the encoding characters at index 1,
// so HL7 numbering is shifted down by one for MSH.
const (
	mshSendingApplication = 2
	mshSendingFacility    = 3
	mshReceivingApp       = 4
	mshReceivingFacility  = 5
	mshTimestamp          = 6
	mshMessageType        = 8
	mshControlID          = 9
)

// PID-3 is the patient identifier list; its first component is the id.
const pidPatientID = 3

// Parse turns raw HL7 v2 wire text into a Message. It never fails:
// structurally broken input produces a malformed-state Message whose
// ParseErrors describe what went wrong.
func Parse(raw string) *Message {
	lines := splitSegments(raw)
	if len(lines) == 0 {
		return malformed(raw, "empty message")
	}

	mshLine := lines[0]
	if !strings.HasPrefix(mshLine, "MSH") {
		return malformed(raw, fmt.Sprintf("message must start with MSH segment, got %q", segmentType(mshLine)))
	}

	mshFields := strings.Split(mshLine, fieldSeparator)
	if len(mshFields) < minMSHFields {
		return malformed(raw, fmt.Sprintf("insufficient MSH fields: got %d, need %d", len(mshFields), minMSHFields))
	}

	messageType := firstComponent(mshFields[mshMessageType])

	msg := &Message{
		Type:                 messageType,
		ControlID:            mshFields[mshControlID],
		Timestamp:            parseTimestampOrNow(mshFields[mshTimestamp]),
		SendingApplication:   mshFields[mshSendingApplication],
		SendingFacility:      mshFields[mshSendingFacility],
		ReceivingApplication: mshFields[mshReceivingApp],
		ReceivingFacility:    mshFields[mshReceivingFacility],
		Segments:             make([]Segment, 0, len(lines)),
		raw:                  raw,
	}

	for i, line := range lines {
		segType := segmentType(line)
		msg.Segments = append(msg.Segments, Segment{
			Type:     segType,
			Fields:   strings.Split(line, fieldSeparator),
			Sequence: i,
			Required: grammar.IsRequired(segType, messageType),
		})
	}

	if pid, ok := msg.Segment("PID"); ok {
		msg.PatientID = pid.Component(pidPatientID, 0)
	}

	return msg
}

func splitSegments(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, segmentTerminator) {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func segmentType(line string) string {
	if len(line) < 3 {
		return line
	}
	return line[:3]
}

func firstComponent(field string) string {
	if idx := strings.Index(field, componentSeparator); idx >= 0 {
		return field[:idx]
	}
	return field
}

// ParseTimestamp parses an HL7 timestamp of the form YYYYMMDD[HHMMSS].
// At least the eight date digits are required; hour, minute and second
// default to zero. No timezone handling. The second return value is
// false when the value cannot be parsed.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 8 || !allDigits(value[:8]) {
		return time.Time{}, false
	}

	date, err := time.Parse("20060102", value[:8])
	if err != nil {
		return time.Time{}, false
	}

	if len(value) >= 14 && allDigits(value[8:14]) {
		clock, err := time.Parse("20060102150405", value[:14])
		if err == nil {
			return clock, true
		}
	}

	return date, true
}

// parseTimestampOrNow applies the documented fallback: a malformed or
// missing timestamp yields "now" so parsing stays total.
func parseTimestampOrNow(value string) time.Time {
	if ts, ok := ParseTimestamp(value); ok {
		return ts
	}
	return time.Now()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
