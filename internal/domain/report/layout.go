package report

import (
	"sort"
	"strconv"

	"github.com/labreport/labreport/internal/domain/record"
	"github.com/labreport/labreport/internal/platform/refrange"
)

var headerRow = []string{"Test Name", "Date", "Reading", "Ref Range", "Context"}

// spanRun tracks a contiguous cell range sharing one raw string value.
type spanRun struct {
	start, end int
	value      string
}

// BuildLayout produces the five-column grid for the ordered tests. The
// header occupies row 0. Reference-range and context cells are merged over
// maximal runs of identical raw strings; the test-name cell spans its whole
// block when the block has more than one row. Blocks alternate banding by
// their position in the order.
func BuildLayout(series map[string][]record.Reading, ordered []string, dateFormat string) LayoutPlan {
	plan := LayoutPlan{Rows: [][]string{append([]string(nil), headerRow...)}}

	row := 1
	for idx, name := range ordered {
		readings := series[name]
		if len(readings) == 0 {
			continue
		}
		blockStart := row

		refRuns := collectRuns(readings, blockStart, func(r record.Reading) string { return r.RefRange })
		ctxRuns := collectRuns(readings, blockStart, func(r record.Reading) string { return r.Context })

		refStarts := runStarts(refRuns)
		ctxStarts := runStarts(ctxRuns)

		for i, r := range readings {
			cells := make([]string, NumCols)
			if i == 0 {
				cells[ColTestName] = name
			}
			cells[ColDate] = r.Date.Format(dateFormat)
			cells[ColReading] = r.Display()
			if refStarts[row] {
				cells[ColRefRange] = r.RefRange
			}
			if ctxStarts[row] {
				cells[ColContext] = r.Context
			}
			plan.Rows = append(plan.Rows, cells)
			row++
		}

		if len(readings) > 1 {
			plan.Merges = append(plan.Merges, MergeRun{
				Col: ColTestName, StartRow: blockStart, EndRow: row - 1, Value: name,
			})
		}
		plan.Merges = append(plan.Merges, mergesFromRuns(ColRefRange, refRuns)...)
		plan.Merges = append(plan.Merges, mergesFromRuns(ColContext, ctxRuns)...)

		plan.Bands = append(plan.Bands, BlockBand{
			TestName: name, StartRow: blockStart, EndRow: row - 1, Even: idx%2 == 0,
		})
	}

	return plan
}

// collectRuns splits a block into maximal runs of rows whose selected cell
// value is identical by raw string comparison. The runs jointly cover the
// block.
func collectRuns(readings []record.Reading, blockStart int, value func(record.Reading) string) []spanRun {
	var runs []spanRun
	cur := spanRun{start: blockStart, value: value(readings[0])}
	row := blockStart
	for _, r := range readings {
		if v := value(r); v != cur.value {
			cur.end = row - 1
			runs = append(runs, cur)
			cur = spanRun{start: row, value: v}
		}
		row++
	}
	cur.end = row - 1
	return append(runs, cur)
}

func runStarts(runs []spanRun) map[int]bool {
	starts := make(map[int]bool, len(runs))
	for _, run := range runs {
		starts[run.start] = true
	}
	return starts
}

func mergesFromRuns(col int, runs []spanRun) []MergeRun {
	var merges []MergeRun
	for _, run := range runs {
		if run.end > run.start {
			merges = append(merges, MergeRun{Col: col, StartRow: run.start, EndRow: run.end, Value: run.value})
		}
	}
	return merges
}

// BuildChartSeries emits one classified trend series per charted test. A
// test charts when its numeric readings, date ascending, number at least
// the configured minimum. Points classify against the bounds of the most
// recent reading's reference range, and that same range drives the band.
func BuildChartSeries(series map[string][]record.Reading, ordered []string, opts ChartOptions) []ChartSeries {
	if !opts.Create {
		return nil
	}
	includeAll := containsWildcard(opts.IncludeTests)
	includeSet := toSet(opts.IncludeTests)
	excludeSet := toSet(opts.ExcludeTests)

	var out []ChartSeries
	for _, name := range ordered {
		if _, excluded := excludeSet[name]; excluded {
			continue
		}
		if !includeAll {
			if _, ok := includeSet[name]; !ok {
				continue
			}
		}

		numeric := numericByDate(series[name])
		if len(numeric) < opts.MinReadings {
			continue
		}

		chartType, color := opts.DefaultType, opts.DefaultColor
		if ov, ok := opts.Tests[name]; ok {
			if ov.Type != "" {
				chartType = ov.Type
			}
			if ov.Color != "" {
				color = ov.Color
			}
		}

		bounds := refrange.ParseBounds(numeric[len(numeric)-1].RefRange)

		cs := ChartSeries{TestName: name, Type: chartType, FallbackColor: color}
		values := make([]float64, 0, len(numeric))
		for _, nr := range numeric {
			cs.Points = append(cs.Points, ChartPoint{
				Date:           nr.Date,
				Value:          nr.value,
				Classification: refrange.ClassifyNumeric(nr.value, bounds),
			})
			values = append(values, nr.value)
		}
		if lo, hi, ok := refrange.Band(bounds, values); ok {
			cs.Band = &Band{Lo: lo, Hi: hi}
		}
		out = append(out, cs)
	}
	return out
}

type numericReading struct {
	record.Reading
	value float64
}

func numericByDate(readings []record.Reading) []numericReading {
	var out []numericReading
	for _, r := range readings {
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			continue
		}
		out = append(out, numericReading{Reading: r, value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
