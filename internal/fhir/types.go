// Package fhir defines the closed set of FHIR resources this pipeline
// produces (Patient, Encounter, Observation) and the converter that
// maps a parsed HL7 message onto them. Resources are created fresh per
// request and never mutated after construction.
package fhir

import "time"

type ResourceType string

const (
	ResourceTypePatient     ResourceType = "Patient"
	ResourceTypeEncounter   ResourceType = "Encounter"
	ResourceTypeObservation ResourceType = "Observation"
)

// Resource is the closed variant set; only the three concrete types in
// this package implement it.
type Resource interface {
	ResourceID() string
	Kind() ResourceType
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

type HumanName struct {
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

type Address struct {
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty"`
}

type Meta struct {
	VersionID   string    `json:"versionId,omitempty"`
	Source      string    `json:"source,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	Security    []Coding  `json:"security,omitempty"`
}

type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Meta         Meta         `json:"meta"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	BirthDate    string       `json:"birthDate,omitempty"`
	Address      []Address    `json:"address,omitempty"`
}

func (p Patient) ResourceID() string { return p.ID }
func (p Patient) Kind() ResourceType { return ResourceTypePatient }

type Encounter struct {
	ResourceType string    `json:"resourceType"`
	ID           string    `json:"id"`
	Meta         Meta      `json:"meta"`
	Status       string    `json:"status"`
	Class        Coding    `json:"class"`
	Subject      Reference `json:"subject,omitempty"`
}

func (e Encounter) ResourceID() string { return e.ID }
func (e Encounter) Kind() ResourceType { return ResourceTypeEncounter }

type Observation struct {
	ResourceType   string          `json:"resourceType"`
	ID             string          `json:"id"`
	Meta           Meta            `json:"meta"`
	Status         string          `json:"status"`
	Code           CodeableConcept `json:"code"`
	Subject        Reference       `json:"subject,omitempty"`
	ValueString    string          `json:"valueString,omitempty"`
	Interpretation CodeableConcept `json:"interpretation,omitempty"`
}

func (o Observation) ResourceID() string { return o.ID }
func (o Observation) Kind() ResourceType { return ResourceTypeObservation }

// DistinctKinds returns the distinct resource type names present in
// resources, in first-seen order.
func DistinctKinds(resources []Resource) []string {
	seen := make(map[ResourceType]struct{}, 3)
	var kinds []string
	for _, r := range resources {
		if _, ok := seen[r.Kind()]; ok {
			continue
		}
		seen[r.Kind()] = struct{}{}
		kinds = append(kinds, string(r.Kind()))
	}
	return kinds
}
