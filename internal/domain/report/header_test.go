package report

import (
	"testing"
	"time"

	"github.com/labreport/labreport/internal/domain/record"
)

func TestBuildHeader(t *testing.T) {
	now := time.Date(2023, 4, 18, 10, 30, 0, 0, time.UTC)
	rec := &record.PatientRecord{
		Name:   "Maria Santos",
		DOB:    "1990-02-11",
		Gender: "female",
		Conditions: []record.Condition{
			{Name: "Hypothyroidism", DiagnosedDate: "2021-06-01"},
			{Name: "Asthma"},
		},
	}

	h := BuildHeader(rec, "02 Jan 2006", now)
	if h.PatientName != "Maria Santos" || h.Gender != "female" {
		t.Errorf("identity = %+v", h)
	}
	if h.DOB != "11 Feb 1990" {
		t.Errorf("dob = %q", h.DOB)
	}
	if h.GeneratedAt != "18 Apr 2023 10:30" {
		t.Errorf("generated at = %q", h.GeneratedAt)
	}
	if len(h.Conditions) != 2 {
		t.Fatalf("conditions = %v", h.Conditions)
	}
	if h.Conditions[0] != "Hypothyroidism (Diagnosed: 01 Jun 2021)" {
		t.Errorf("diagnosed condition = %q", h.Conditions[0])
	}
	if h.Conditions[1] != "Asthma" {
		t.Errorf("plain condition = %q", h.Conditions[1])
	}
}

func TestBuildHeader_Pregnancy(t *testing.T) {
	// 100 days after LMP: 14 weeks 2 days, EDD 280 days out.
	lmp := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	now := lmp.AddDate(0, 0, 100)
	rec := &record.PatientRecord{
		Name: "Maria Santos",
		Conditions: []record.Condition{
			{Name: "pregnancy", LastMenstrualPeriod: "2023-01-10"},
		},
	}

	h := BuildHeader(rec, "02 Jan 2006", now)
	want := "Pregnancy (14W 2D | EDD: 17 Oct 2023)"
	if len(h.Conditions) != 1 || h.Conditions[0] != want {
		t.Errorf("pregnancy summary = %v, want %q", h.Conditions, want)
	}
}

func TestBuildHeader_Fallbacks(t *testing.T) {
	rec := &record.PatientRecord{
		DOB: "sometime in spring",
		Conditions: []record.Condition{
			{Name: "pregnancy", LastMenstrualPeriod: "not a date"},
		},
	}
	h := BuildHeader(rec, "02 Jan 2006", time.Now())
	if h.PatientName != "Unknown" || h.Gender != "Unknown" {
		t.Errorf("missing identity should read Unknown: %+v", h)
	}
	if h.DOB != "sometime in spring" {
		t.Errorf("unparsable dob should fall back to raw string: %q", h.DOB)
	}
	if h.Conditions[0] != "pregnancy" {
		t.Errorf("unparsable LMP should fall back to the bare name: %q", h.Conditions[0])
	}
}
