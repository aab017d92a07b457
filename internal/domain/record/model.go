package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Value is a raw observation result: a string, or a number whose original
// textual form is preserved ("5.80" stays "5.80"). Booleans and other JSON
// scalars are kept as their literal text.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty result value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal result value: %w", err)
		}
		*v = Value(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return fmt.Errorf("result value must be a scalar, got %s", data[:1])
	}
	*v = Value(data)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// Condition is one diagnosed condition on the patient. LastMenstrualPeriod
// is only meaningful for a condition named "pregnancy".
type Condition struct {
	Name                string `json:"name"`
	DiagnosedDate       string `json:"diagnosed_date,omitempty"`
	LastMenstrualPeriod string `json:"last_menstrual_period,omitempty"`
}

// VisitMeta carries the attribution block of a visit entry.
type VisitMeta struct {
	RefDoc   string `json:"ref_doc,omitempty"`
	Facility string `json:"facility,omitempty"`
}

// TestNode is one entry of a visit's nested test list. A node with a
// non-nil Tests list is a grouping whose own result fields are ignored;
// otherwise it is a leaf result. Nesting is at most one level deep below
// the visit's top-level list.
type TestNode struct {
	Name     string     `json:"name,omitempty"`
	Result   *Value     `json:"result,omitempty"`
	Unit     string     `json:"unit,omitempty"`
	RefRange string     `json:"ref_range,omitempty"`
	Tests    []TestNode `json:"tests,omitempty"`
}

// IsGroup reports whether the node is a grouping rather than a leaf result.
func (n *TestNode) IsGroup() bool { return n.Tests != nil }

// VisitEntry is one dated entry of a patient record. It may carry a flat
// result directly, a nested test list, or both.
type VisitEntry struct {
	Date     string     `json:"date"`
	Name     string     `json:"name,omitempty"`
	Result   *Value     `json:"result,omitempty"`
	Unit     string     `json:"unit,omitempty"`
	RefRange string     `json:"ref_range,omitempty"`
	Context  string     `json:"context,omitempty"`
	Meta     *VisitMeta `json:"meta,omitempty"`
	Tests    []TestNode `json:"tests,omitempty"`
}

// PatientRecord is one imported patient document: identity fields, diagnosed
// conditions, and the visit history.
type PatientRecord struct {
	Name       string       `json:"name"`
	DOB        string       `json:"dob,omitempty"`
	Gender     string       `json:"gender,omitempty"`
	Conditions []Condition  `json:"conditions,omitempty"`
	Visits     []VisitEntry `json:"reading,omitempty"`
}

// Reading is one normalized observation of one named test at one point in
// time. Immutable once emitted by aggregation.
type Reading struct {
	TestName string    `json:"test_name"`
	Date     time.Time `json:"date"`
	DateRaw  string    `json:"date_raw"`
	Value    string    `json:"value"`
	Unit     string    `json:"unit,omitempty"`
	RefRange string    `json:"ref_range,omitempty"`
	Context  string    `json:"context,omitempty"`
}

// Display renders the reading cell text: value plus unit, trimmed.
func (r Reading) Display() string {
	if r.Unit == "" {
		return r.Value
	}
	return r.Value + " " + r.Unit
}

// StoredRecord maps to the patient_record table: an ingested patient record
// kept as its original JSON payload plus the identity columns used for
// listing.
type StoredRecord struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	PatientName string          `db:"patient_name" json:"patient_name"`
	DOB         *string         `db:"dob" json:"dob,omitempty"`
	Gender      *string         `db:"gender" json:"gender,omitempty"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Record decodes the stored payload back into a PatientRecord.
func (s *StoredRecord) Record() (*PatientRecord, error) {
	var rec PatientRecord
	if err := json.Unmarshal(s.Payload, &rec); err != nil {
		return nil, fmt.Errorf("decode stored record %s: %w", s.ID, err)
	}
	return &rec, nil
}
