package fhir

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"interop/internal/hl7"
	"interop/internal/security"
)

// PID, PV1 and OBX field positions after splitting a segment line on
// the field separator (segment id at index 0, so HL7 field N sits at
// index N).
const (
	pidName      = 5
	pidBirthDate = 7
	pidGender    = 8
	pidAddress   = 11

	pv1Class = 2

	obxCode           = 3
	obxValue          = 5
	obxInterpretation = 8
)

const (
	loincSystem           = "http://loinc.org"
	actCodeSystem         = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	confidentialitySystem = "http://terminology.hl7.org/CodeSystem/v3-Confidentiality"
)

var genderMap = map[string]string{
	"M": "male",
	"F": "female",
	"O": "other",
	"U": "unknown",
}

var encounterClassMap = map[string]string{
	"I": "IMP",
	"O": "AMB",
	"E": "EMER",
	"P": "PRENC",
	"R": "AMB",
	"B": "OBSENC",
}

var interpretationMap = map[string]string{
	"L":  "Low",
	"H":  "High",
	"LL": "Critical Low",
	"HH": "Critical High",
	"A":  "Abnormal",
}

// MapGender maps an HL7 administrative sex code to a FHIR gender.
// Total: anything outside M/F/O/U maps to unknown.
func MapGender(code string) string {
	if gender, ok := genderMap[code]; ok {
		return gender
	}
	return "unknown"
}

// MapEncounterClass maps an HL7 patient class to a FHIR ActCode,
// defaulting to ambulatory.
func MapEncounterClass(code string) string {
	if class, ok := encounterClassMap[code]; ok {
		return class
	}
	return "AMB"
}

// MapInterpretation maps an HL7 abnormal flag to display text,
// defaulting to Normal.
func MapInterpretation(code string) string {
	if interp, ok := interpretationMap[code]; ok {
		return interp
	}
	return "Normal"
}

// Converter maps a parsed HL7 message to FHIR resources. Conversion is
// deterministic apart from freshly minted resource ids; a Converter is
// stateless and safe for concurrent use.
type Converter struct {
	now   func() time.Time
	newID func() string
}

func NewConverter() *Converter {
	return &Converter{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Convert produces one resource per present source segment: Patient
// from PID, Encounter from PV1, one Observation per OBX. Absent
// segments simply omit the corresponding resource.
func (c *Converter) Convert(msg *hl7.Message, label security.Label) []Resource {
	resources := make([]Resource, 0, 4)

	patientID := msg.PatientID
	if patientID == "" {
		patientID = c.newID()
	}
	patientRef := Reference{Reference: "Patient/" + patientID}

	if pid, ok := msg.Segment("PID"); ok {
		resources = append(resources, c.convertPatient(msg, pid, patientID, label))
	}

	if pv1, ok := msg.Segment("PV1"); ok {
		resources = append(resources, c.convertEncounter(msg, pv1, patientRef))
	}

	for _, obx := range msg.SegmentsOfType("OBX") {
		resources = append(resources, c.convertObservation(msg, obx, patientRef))
	}

	return resources
}

func (c *Converter) convertPatient(msg *hl7.Message, pid hl7.Segment, patientID string, label security.Label) Patient {
	patient := Patient{
		ResourceType: string(ResourceTypePatient),
		ID:           patientID,
		Meta:         c.meta(msg, label),
		Gender:       MapGender(pid.Field(pidGender)),
	}

	if msg.PatientID != "" {
		patient.Identifier = []Identifier{{Value: msg.PatientID}}
	}

	if family := pid.Component(pidName, 0); family != "" {
		name := HumanName{Family: family}
		if given := pid.Component(pidName, 1); given != "" {
			name.Given = []string{given}
		}
		patient.Name = []HumanName{name}
	}

	if birthDate := formatBirthDate(pid.Field(pidBirthDate)); birthDate != "" {
		patient.BirthDate = birthDate
	}

	if address := convertAddress(pid); address != nil {
		patient.Address = []Address{*address}
	}

	return patient
}

func (c *Converter) convertEncounter(msg *hl7.Message, pv1 hl7.Segment, patientRef Reference) Encounter {
	return Encounter{
		ResourceType: string(ResourceTypeEncounter),
		ID:           c.newID(),
		Meta:         c.meta(msg, security.Label{}),
		Status:       "finished",
		Class: Coding{
			System: actCodeSystem,
			Code:   MapEncounterClass(pv1.Field(pv1Class)),
		},
		Subject: patientRef,
	}
}

func (c *Converter) convertObservation(msg *hl7.Message, obx hl7.Segment, patientRef Reference) Observation {
	return Observation{
		ResourceType: string(ResourceTypeObservation),
		ID:           c.newID(),
		Meta:         c.meta(msg, security.Label{}),
		Status:       "final",
		Code: CodeableConcept{
			Coding: []Coding{{
				System:  loincSystem,
				Code:    obx.Component(obxCode, 0),
				Display: obx.Component(obxCode, 1),
			}},
			Text: obx.Component(obxCode, 1),
		},
		Subject:     patientRef,
		ValueString: obx.Field(obxValue),
		Interpretation: CodeableConcept{
			Text: MapInterpretation(obx.Field(obxInterpretation)),
		},
	}
}

func (c *Converter) meta(msg *hl7.Message, label security.Label) Meta {
	meta := Meta{
		VersionID:   "1",
		Source:      metaSource(msg),
		LastUpdated: c.now(),
	}

	if label.ContainsPHI {
		meta.Security = []Coding{{
			System:  confidentialitySystem,
			Code:    "R",
			Display: "Restricted",
		}}
	}

	return meta
}

func metaSource(msg *hl7.Message) string {
	if msg.SendingApplication == "" {
		return "hl7v2"
	}
	return "hl7v2/" + msg.SendingApplication
}

// formatBirthDate reformats YYYYMMDD to YYYY-MM-DD, returning "" for
// anything that is not an eight-digit date.
func formatBirthDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) < 8 {
		return ""
	}
	value = value[:8]
	if _, err := time.Parse("20060102", value); err != nil {
		return ""
	}
	return value[:4] + "-" + value[4:6] + "-" + value[6:8]
}

// convertAddress splits the caret-delimited XAD components of PID-11:
// street^other^city^state^zip^country.
func convertAddress(pid hl7.Segment) *Address {
	if pid.Field(pidAddress) == "" {
		return nil
	}

	address := &Address{
		City:       pid.Component(pidAddress, 2),
		State:      pid.Component(pidAddress, 3),
		PostalCode: pid.Component(pidAddress, 4),
		Country:    pid.Component(pidAddress, 5),
	}
	if street := pid.Component(pidAddress, 0); street != "" {
		address.Line = []string{street}
	}
	return address
}
