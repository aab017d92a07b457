package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/labreport/labreport/internal/domain/record"
	"github.com/labreport/labreport/internal/platform/dates"
)

// gestationDays is the conventional pregnancy term used to compute the
// estimated due date from the last menstrual period.
const gestationDays = 280

// BuildHeader assembles the patient block. Dates that cannot be parsed are
// shown as their raw strings. now drives both the generation stamp and the
// gestational-age arithmetic.
func BuildHeader(rec *record.PatientRecord, dateFormat string, now time.Time) Header {
	h := Header{
		PatientName: orUnknown(rec.Name),
		Gender:      orUnknown(rec.Gender),
		DOB:         "Unknown",
		GeneratedAt: now.Format(dateFormat + " 15:04"),
	}
	if rec.DOB != "" {
		h.DOB = rec.DOB
		if dob, err := dates.Parse(rec.DOB); err == nil {
			h.DOB = dob.Format(dateFormat)
		}
	}
	for _, cond := range rec.Conditions {
		h.Conditions = append(h.Conditions, conditionSummary(cond, dateFormat, now))
	}
	return h
}

func conditionSummary(cond record.Condition, dateFormat string, now time.Time) string {
	if strings.EqualFold(cond.Name, "pregnancy") && cond.LastMenstrualPeriod != "" {
		if lmp, err := dates.Parse(cond.LastMenstrualPeriod); err == nil {
			elapsed := int(now.Sub(lmp).Hours() / 24)
			weeks, days := elapsed/7, elapsed%7
			edd := lmp.AddDate(0, 0, gestationDays)
			return fmt.Sprintf("Pregnancy (%dW %dD | EDD: %s)", weeks, days, edd.Format(dateFormat))
		}
		return cond.Name
	}
	if cond.DiagnosedDate != "" {
		if d, err := dates.Parse(cond.DiagnosedDate); err == nil {
			return fmt.Sprintf("%s (Diagnosed: %s)", cond.Name, d.Format(dateFormat))
		}
	}
	return cond.Name
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
