// Package render turns the report pipeline's contracts into files: an xlsx
// workbook for the grid, an HTML page for the trend charts, and the JSON
// extraction artifacts.
package render

import (
	"strings"
	"time"
)

// ExpandPattern fills an output-file naming pattern. {PATIENT_NAME} becomes
// the patient's first name token, {YYMMDD} and {HHMMSS} the timestamp parts.
func ExpandPattern(pattern, patientName string, ts time.Time) string {
	first := "UnknownPatient"
	if fields := strings.Fields(patientName); len(fields) > 0 {
		first = fields[0]
	}
	out := strings.ReplaceAll(pattern, "{PATIENT_NAME}", first)
	out = strings.ReplaceAll(out, "{YYMMDD}", ts.Format("060102"))
	out = strings.ReplaceAll(out, "{HHMMSS}", ts.Format("150405"))
	return out
}
