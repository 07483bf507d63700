// Package hl7 parses raw HL7 v2 wire text into a structured Message.
// Parsing is total: malformed input yields a malformed-state Message
// carrying only the reasons, never an error or a panic.
package hl7

import (
	"strings"
	"time"
)

// Segment is one line of an HL7 message. Segments never mutate after
// construction.
type Segment struct {
	Type     string   `json:"type"`
	Fields   []string `json:"fields"`
	Sequence int      `json:"sequence"`
	Required bool     `json:"required"`
}

// Field returns the field at index i, or "" when the segment is too
// short. Index 0 is the segment type itself, so HL7 field N of a
// non-MSH segment lives at index N.
func (s Segment) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}

// Component returns component j (caret-delimited) of field i, or ""
// when absent.
func (s Segment) Component(i, j int) string {
	field := s.Field(i)
	if field == "" {
		return ""
	}
	components := strings.Split(field, componentSeparator)
	if j < 0 || j >= len(components) {
		return ""
	}
	return components[j]
}

// Message is the structured form of one HL7 v2 message. A Message is
// either well formed or malformed; malformed messages carry only parse
// error reasons and the raw input, nothing else is populated.
type Message struct {
	Type                 string
	ControlID            string
	Timestamp            time.Time
	SendingApplication   string
	SendingFacility      string
	ReceivingApplication string
	ReceivingFacility    string
	PatientID            string
	Segments             []Segment

	raw       string
	parseErrs []string
}

// WellFormed reports whether parsing succeeded.
func (m *Message) WellFormed() bool {
	return len(m.parseErrs) == 0
}

// ParseErrors returns the reasons parsing failed, empty for well-formed
// messages.
func (m *Message) ParseErrors() []string {
	errs := make([]string, len(m.parseErrs))
	copy(errs, m.parseErrs)
	return errs
}

// Raw returns the unparsed wire text the message was built from.
func (m *Message) Raw() string {
	return m.raw
}

// Segment returns the first segment of the given type.
func (m *Message) Segment(segmentType string) (Segment, bool) {
	for _, s := range m.Segments {
		if s.Type == segmentType {
			return s, true
		}
	}
	return Segment{}, false
}

// SegmentsOfType returns every segment of the given type in order.
func (m *Message) SegmentsOfType(segmentType string) []Segment {
	var out []Segment
	for _, s := range m.Segments {
		if s.Type == segmentType {
			out = append(out, s)
		}
	}
	return out
}

// HasSegment reports whether at least one segment of the given type is
// present.
func (m *Message) HasSegment(segmentType string) bool {
	_, ok := m.Segment(segmentType)
	return ok
}

func malformed(raw string, reasons ...string) *Message {
	return &Message{raw: raw, parseErrs: reasons}
}
