package fhir

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interop/internal/hl7"
	"interop/internal/security"
)

func fixedConverter() *Converter {
	n := 0
	return &Converter{
		now: func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) },
		newID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func TestConvertADT(t *testing.T) {
	raw := "MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG001|P|2.5\r" +
		"EVN|A01|20240115103000\r" +
		"PID|||12345^^^MRN||Doe^John||19800101|M|||123 Main St^^Springfield^IL^62701^USA\r" +
		"PV1||I|ICU"
	msg := hl7.Parse(raw)
	label := security.Classify(msg)

	resources := fixedConverter().Convert(msg, label)

	require.Len(t, resources, 2)

	patient, ok := resources[0].(Patient)
	require.True(t, ok)
	assert.Equal(t, "Patient", patient.ResourceType)
	assert.Equal(t, "12345", patient.ID)
	assert.Equal(t, []Identifier{{Value: "12345"}}, patient.Identifier)
	require.Len(t, patient.Name, 1)
	assert.Equal(t, "Doe", patient.Name[0].Family)
	assert.Equal(t, []string{"John"}, patient.Name[0].Given)
	assert.Equal(t, "1980-01-01", patient.BirthDate)
	assert.Equal(t, "male", patient.Gender)
	require.Len(t, patient.Address, 1)
	assert.Equal(t, []string{"123 Main St"}, patient.Address[0].Line)
	assert.Equal(t, "Springfield", patient.Address[0].City)
	assert.Equal(t, "IL", patient.Address[0].State)
	assert.Equal(t, "62701", patient.Address[0].PostalCode)
	assert.Equal(t, "USA", patient.Address[0].Country)
	require.Len(t, patient.Meta.Security, 1)
	assert.Equal(t, "R", patient.Meta.Security[0].Code)
	assert.Equal(t, "Restricted", patient.Meta.Security[0].Display)
	assert.Equal(t, "hl7v2/App", patient.Meta.Source)

	encounter, ok := resources[1].(Encounter)
	require.True(t, ok)
	assert.Equal(t, "Encounter", encounter.ResourceType)
	assert.Equal(t, "finished", encounter.Status)
	assert.Equal(t, "IMP", encounter.Class.Code)
	assert.Equal(t, "Patient/12345", encounter.Subject.Reference)
}

func TestConvertORUObservations(t *testing.T) {
	raw := "MSH|^~\\&|Lab|Fac|App2|Fac2|20240115103000||ORU^R01|MSG002|P|2.5\r" +
		"PID|||67890||Smith^Jane\r" +
		"OBR|1|||GLU^Glucose\r" +
		"OBX|1|NM|2345-7^Glucose||105|mg/dL|70-100|H\r" +
		"OBX|2|NM|2160-0^Creatinine||0.9|mg/dL|0.6-1.2|"
	msg := hl7.Parse(raw)

	resources := fixedConverter().Convert(msg, security.Classify(msg))

	require.Len(t, resources, 3)

	first, ok := resources[1].(Observation)
	require.True(t, ok)
	assert.Equal(t, "Observation", first.ResourceType)
	assert.Equal(t, "final", first.Status)
	require.Len(t, first.Code.Coding, 1)
	assert.Equal(t, "http://loinc.org", first.Code.Coding[0].System)
	assert.Equal(t, "2345-7", first.Code.Coding[0].Code)
	assert.Equal(t, "Glucose", first.Code.Coding[0].Display)
	assert.Equal(t, "105", first.ValueString)
	assert.Equal(t, "High", first.Interpretation.Text)
	assert.Equal(t, "Patient/67890", first.Subject.Reference)

	second, ok := resources[2].(Observation)
	require.True(t, ok)
	assert.Equal(t, "0.9", second.ValueString)
	assert.Equal(t, "Normal", second.Interpretation.Text)
}

func TestConvertMintsPatientIDWhenMissing(t *testing.T) {
	raw := "MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG003|P|2.5\r" +
		"PID|||||Doe^John\r" +
		"PV1||O"
	msg := hl7.Parse(raw)

	resources := fixedConverter().Convert(msg, security.Classify(msg))

	require.Len(t, resources, 2)
	patient := resources[0].(Patient)
	assert.Equal(t, "id-1", patient.ID)
	assert.Empty(t, patient.Identifier)
	encounter := resources[1].(Encounter)
	assert.Equal(t, "Patient/id-1", encounter.Subject.Reference)
}

func TestConvertAbsentSegmentsOmitResources(t *testing.T) {
	msg := hl7.Parse("MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG004|P|2.5")

	resources := fixedConverter().Convert(msg, security.Classify(msg))

	assert.Empty(t, resources)
}

func TestConvertNoRestrictedTagWithoutPHI(t *testing.T) {
	raw := "MSH|^~\\&|App|Fac|App2|Fac2|20240115103000||ADT^A01|MSG005|P|2.5\r" +
		"PID|||12345"
	msg := hl7.Parse(raw)

	resources := fixedConverter().Convert(msg, security.Label{})

	require.Len(t, resources, 1)
	patient := resources[0].(Patient)
	assert.Empty(t, patient.Meta.Security)
}

func TestMapGenderIsTotal(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "M", want: "male"},
		{code: "F", want: "female"},
		{code: "O", want: "other"},
		{code: "U", want: "unknown"},
		{code: "", want: "unknown"},
		{code: "X", want: "unknown"},
		{code: "male", want: "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapGender(tt.code), tt.code)
	}
}

func TestMapEncounterClass(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "I", want: "IMP"},
		{code: "O", want: "AMB"},
		{code: "E", want: "EMER"},
		{code: "P", want: "PRENC"},
		{code: "R", want: "AMB"},
		{code: "B", want: "OBSENC"},
		{code: "", want: "AMB"},
		{code: "Z", want: "AMB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapEncounterClass(tt.code), tt.code)
	}
}

func TestMapInterpretation(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "L", want: "Low"},
		{code: "H", want: "High"},
		{code: "LL", want: "Critical Low"},
		{code: "HH", want: "Critical High"},
		{code: "A", want: "Abnormal"},
		{code: "", want: "Normal"},
		{code: "N", want: "Normal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapInterpretation(tt.code), tt.code)
	}
}

func TestFormatBirthDate(t *testing.T) {
	assert.Equal(t, "1980-01-01", formatBirthDate("19800101"))
	assert.Equal(t, "1980-01-01", formatBirthDate("19800101123000"))
	assert.Equal(t, "", formatBirthDate(""))
	assert.Equal(t, "", formatBirthDate("1980"))
	assert.Equal(t, "", formatBirthDate("19801341"))
	assert.Equal(t, "", formatBirthDate("not-a-date"))
}

func TestDistinctKinds(t *testing.T) {
	resources := []Resource{
		Patient{ResourceType: "Patient"},
		Observation{ResourceType: "Observation"},
		Observation{ResourceType: "Observation"},
	}

	assert.Equal(t, []string{"Patient", "Observation"}, DistinctKinds(resources))
}
