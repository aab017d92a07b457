package report

import (
	"fmt"
	"time"

	"github.com/labreport/labreport/internal/domain/record"
	"github.com/labreport/labreport/internal/platform/refrange"
)

// SortStrategy selects the in-series ordering applied after filtering.
type SortStrategy string

const (
	SortDateDesc  SortStrategy = "date_desc"
	SortDateAsc   SortStrategy = "date_asc"
	SortValueAsc  SortStrategy = "value_asc"
	SortValueDesc SortStrategy = "value_desc"
)

// legacy strategy names accepted from older configuration files.
var sortAliases = map[string]SortStrategy{
	"by_date_des": SortDateDesc,
	"by_date_asc": SortDateAsc,
	"by_name_asc": SortValueAsc,
	"by_name_des": SortValueDesc,
}

// ParseSortStrategy resolves a configured sort name, accepting legacy
// aliases. The empty string resolves to the default, date descending.
func ParseSortStrategy(s string) (SortStrategy, error) {
	switch SortStrategy(s) {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortValueAsc, SortValueDesc:
		return SortStrategy(s), nil
	}
	if st, ok := sortAliases[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown sort strategy %q", s)
}

// Options is the full report configuration consumed by the pipeline.
type Options struct {
	IncludeTests       []string
	ExcludeTests       []string
	Sort               SortStrategy
	MaxReadingsPerTest int
	DateStart          *time.Time
	DateEnd            *time.Time
	TestSequence       []string
	DateFormat         string
	NamingPattern      string
	Chart              ChartOptions
}

// ChartOptions configures the per-test trend series.
type ChartOptions struct {
	Create       bool
	MinReadings  int
	IncludeTests []string
	ExcludeTests []string
	DefaultType  string
	DefaultColor string
	Tests        map[string]TestChartOverride
}

// TestChartOverride customizes a single test's chart.
type TestChartOverride struct {
	Type  string
	Color string
}

const (
	DefaultDateFormat    = "02 Jan 2006"
	DefaultNamingPattern = "report_{PATIENT_NAME}_{YYMMDD}_{HHMMSS}.pdf"
	DefaultChartType     = "line"
	DefaultChartColor    = "blue"
	DefaultMinReadings   = 2
)

// ApplyDefaults fills the zero-valued fields that have defined defaults.
func (o *Options) ApplyDefaults() {
	if o.Sort == "" {
		o.Sort = SortDateDesc
	}
	if len(o.IncludeTests) == 0 {
		o.IncludeTests = []string{"*"}
	}
	if o.DateFormat == "" {
		o.DateFormat = DefaultDateFormat
	}
	if o.NamingPattern == "" {
		o.NamingPattern = DefaultNamingPattern
	}
	if o.Chart.MinReadings == 0 {
		o.Chart.MinReadings = DefaultMinReadings
	}
	if len(o.Chart.IncludeTests) == 0 {
		o.Chart.IncludeTests = []string{"*"}
	}
	if o.Chart.DefaultType == "" {
		o.Chart.DefaultType = DefaultChartType
	}
	if o.Chart.DefaultColor == "" {
		o.Chart.DefaultColor = DefaultChartColor
	}
}

// Grid columns of the layout plan. Row 0 of the grid is the column header.
const (
	ColTestName = 0
	ColDate     = 1
	ColReading  = 2
	ColRefRange = 3
	ColContext  = 4
	NumCols     = 5
)

// MergeRun instructs the renderer to merge a vertical cell range. Rows are
// grid row indexes, EndRow inclusive, always EndRow > StartRow.
type MergeRun struct {
	Col      int    `json:"col"`
	StartRow int    `json:"start_row"`
	EndRow   int    `json:"end_row"`
	Value    string `json:"value"`
}

// BlockBand assigns one test block its alternating background, keyed by the
// test's position in the display order.
type BlockBand struct {
	TestName string `json:"test_name"`
	StartRow int    `json:"start_row"`
	EndRow   int    `json:"end_row"`
	Even     bool   `json:"even"`
}

// LayoutPlan is the renderer contract for the tabular part of the report:
// a five-column grid with the header at row 0, merge instructions and
// per-block banding. Cells covered by a merge hold empty strings.
type LayoutPlan struct {
	Rows   [][]string  `json:"rows"`
	Merges []MergeRun  `json:"merges"`
	Bands  []BlockBand `json:"bands"`
}

// Band is the background interval drawn behind a chart series.
type Band struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// ChartPoint is one classified numeric observation.
type ChartPoint struct {
	Date           time.Time               `json:"date"`
	Value          float64                 `json:"value"`
	Classification refrange.Classification `json:"classification"`
}

// ChartSeries is the renderer contract for one test's trend chart. Points
// are date ascending. Band is nil when the series' reference range has no
// interpretable bound.
type ChartSeries struct {
	TestName      string       `json:"test_name"`
	Type          string       `json:"type"`
	FallbackColor string       `json:"fallback_color"`
	Points        []ChartPoint `json:"points"`
	Band          *Band        `json:"band,omitempty"`
}

// Header is the patient block rendered above the grid.
type Header struct {
	PatientName string   `json:"patient_name"`
	DOB         string   `json:"dob"`
	Gender      string   `json:"gender"`
	Conditions  []string `json:"conditions"`
	GeneratedAt string   `json:"generated_at"`
}

// Report is one record's complete rendering contract.
type Report struct {
	Header       Header                      `json:"header"`
	OrderedTests []string                    `json:"ordered_tests"`
	Series       map[string][]record.Reading `json:"series"`
	Layout       LayoutPlan                  `json:"layout"`
	Charts       []ChartSeries               `json:"charts,omitempty"`
}
