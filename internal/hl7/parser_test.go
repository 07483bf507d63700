package hl7

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleADT = "MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG001|P|2.5\rPID|||12345^^^MRN||Doe^John||19800101|M"

func TestParseWellFormed(t *testing.T) {
	msg := Parse(sampleADT)

	require.True(t, msg.WellFormed())
	assert.Empty(t, msg.ParseErrors())
	assert.Equal(t, "ADT", msg.Type)
	assert.Equal(t, "MSG001", msg.ControlID)
	assert.Equal(t, "App", msg.SendingApplication)
	assert.Equal(t, "Fac", msg.SendingFacility)
	assert.Equal(t, "App2", msg.ReceivingApplication)
	assert.Equal(t, "Fac2", msg.ReceivingFacility)
	assert.Equal(t, "12345", msg.PatientID)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), msg.Timestamp)

	require.Len(t, msg.Segments, 2)
	assert.Equal(t, "MSH", msg.Segments[0].Type)
	assert.Equal(t, 0, msg.Segments[0].Sequence)
	assert.True(t, msg.Segments[0].Required)
	assert.Equal(t, "PID", msg.Segments[1].Type)
	assert.Equal(t, 1, msg.Segments[1].Sequence)
	assert.True(t, msg.Segments[1].Required)
}

func TestParseIsTotal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "whitespace only", raw: "   \r \r  "},
		{name: "does not start with MSH", raw: "PID|||12345"},
		{name: "random text", raw: "hello world"},
		{name: "binary garbage", raw: "\x00\x01\x02\xff"},
		{name: "too few MSH fields", raw: "MSH|^~\\&|App|Fac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Parse(tt.raw)
			require.NotNil(t, msg)
			assert.False(t, msg.WellFormed())
			assert.NotEmpty(t, msg.ParseErrors())
		})
	}
}

func TestParseInsufficientMSHFields(t *testing.T) {
	msg := Parse("MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01")

	require.False(t, msg.WellFormed())
	require.Len(t, msg.ParseErrors(), 1)
	assert.Contains(t, msg.ParseErrors()[0], "insufficient MSH fields")
}

func TestParseIdempotent(t *testing.T) {
	first := Parse(sampleADT)
	second := Parse(sampleADT)

	assert.Equal(t, first, second)
}

func TestParseBlankLinesDropped(t *testing.T) {
	raw := "MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG001|P|2.5\r\r\rPID|||12345\r"
	msg := Parse(raw)

	require.True(t, msg.WellFormed())
	assert.Len(t, msg.Segments, 2)
}

func TestParseNoPID(t *testing.T) {
	msg := Parse("MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG001|P|2.5")

	require.True(t, msg.WellFormed())
	assert.Empty(t, msg.PatientID)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{
			name:  "full timestamp",
			value: "20240115103000",
			want:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "date only defaults clock to zero",
			value: "20240115",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "partial clock falls back to date",
			value: "202401151030",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{name: "empty", value: "", ok: false},
		{name: "too short", value: "2024011", ok: false},
		{name: "not digits", value: "January 15", ok: false},
		{name: "invalid month", value: "20241315", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseMalformedTimestampFallsBackToNow(t *testing.T) {
	before := time.Now()
	msg := Parse("MSH|^~\\&|App|Fac|App2|Fac2|garbage||ADT^A01|MSG001|P|2.5")
	after := time.Now()

	require.True(t, msg.WellFormed())
	assert.False(t, msg.Timestamp.Before(before))
	assert.False(t, msg.Timestamp.After(after))
}

func TestSegmentAccessors(t *testing.T) {
	msg := Parse(sampleADT)

	pid, ok := msg.Segment("PID")
	require.True(t, ok)
	assert.Equal(t, "12345^^^MRN", pid.Field(3))
	assert.Equal(t, "12345", pid.Component(3, 0))
	assert.Equal(t, "MRN", pid.Component(3, 3))
	assert.Equal(t, "", pid.Field(99))
	assert.Equal(t, "", pid.Component(3, 9))

	_, ok = msg.Segment("OBX")
	assert.False(t, ok)
	assert.Empty(t, msg.SegmentsOfType("OBX"))
}
