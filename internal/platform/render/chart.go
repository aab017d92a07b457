package render

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/labreport/labreport/internal/domain/report"
	"github.com/labreport/labreport/internal/platform/refrange"
)

const (
	colorInRange    = "#1a7a1a"
	colorOutOfRange = "#d92626"
	colorBand       = "#c2f0c2"
	colorTrendLine  = "#888888"

	chartDateFormat = "02 Jan 06"
)

// WriteCharts renders every chart series onto one HTML page at path.
func WriteCharts(series []report.ChartSeries, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart page: %w", err)
	}
	defer f.Close()
	return RenderCharts(series, f)
}

// RenderCharts writes the chart page to w.
func RenderCharts(series []report.ChartSeries, w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	for _, cs := range series {
		if cs.Type == "bar" {
			page.AddCharts(barChart(cs))
			continue
		}
		page.AddCharts(lineChart(cs))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}

func axisLabels(cs report.ChartSeries) []string {
	labels := make([]string, len(cs.Points))
	for i, p := range cs.Points {
		labels[i] = p.Date.Format(chartDateFormat)
	}
	return labels
}

func pointColor(cs report.ChartSeries, p report.ChartPoint) string {
	switch p.Classification {
	case refrange.InRange:
		return colorInRange
	case refrange.OutOfRange:
		return colorOutOfRange
	default:
		return cs.FallbackColor
	}
}

// lineChart draws a faint connecting line with a classified scatter overlay,
// one scatter series per color so each point keeps its verdict.
func lineChart(cs report.ChartSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartGlobals(cs)...)

	lineData := make([]opts.LineData, len(cs.Points))
	for i, p := range cs.Points {
		lineData[i] = opts.LineData{Value: p.Value}
	}
	line.SetXAxis(axisLabels(cs)).
		AddSeries("trend", lineData, charts.WithLineStyleOpts(opts.LineStyle{
			Color:   colorTrendLine,
			Width:   1.5,
			Opacity: 0.4,
		}))
	line.SetSeriesOptions(bandMarks(cs)...)

	scatter := charts.NewScatter()
	scatter.SetXAxis(axisLabels(cs))
	grouped := scatterByColor(cs)
	for _, color := range []string{colorInRange, colorOutOfRange, cs.FallbackColor} {
		data, ok := grouped[color]
		if !ok {
			continue
		}
		delete(grouped, color)
		scatter.AddSeries("", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	}
	line.Overlap(scatter)

	return line
}

// scatterByColor groups points into aligned per-color series; positions
// belonging to another color hold the echarts empty-value marker.
func scatterByColor(cs report.ChartSeries) map[string][]opts.ScatterData {
	grouped := make(map[string][]opts.ScatterData)
	for _, p := range cs.Points {
		color := pointColor(cs, p)
		if _, ok := grouped[color]; !ok {
			blanks := make([]opts.ScatterData, len(cs.Points))
			for i := range blanks {
				blanks[i] = opts.ScatterData{Value: "-"}
			}
			grouped[color] = blanks
		}
	}
	for i, p := range cs.Points {
		grouped[pointColor(cs, p)][i] = opts.ScatterData{Value: p.Value, SymbolSize: 10}
	}
	return grouped
}

func barChart(cs report.ChartSeries) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartGlobals(cs)...)

	barData := make([]opts.BarData, len(cs.Points))
	for i, p := range cs.Points {
		barData[i] = opts.BarData{
			Value:     p.Value,
			ItemStyle: &opts.ItemStyle{Color: pointColor(cs, p), Opacity: 0.8},
		}
	}
	bar.SetXAxis(axisLabels(cs)).AddSeries(cs.TestName, barData)
	bar.SetSeriesOptions(bandMarks(cs)...)
	return bar
}

func chartGlobals(cs report.ChartSeries) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "600px",
			Height: "260px",
		}),
		charts.WithTitleOpts(opts.Title{Title: cs.TestName + " Trend"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	}
}

// bandMarks draws the healthy-range bounds as horizontal mark lines.
func bandMarks(cs report.ChartSeries) []charts.SeriesOpts {
	if cs.Band == nil {
		return nil
	}
	return []charts.SeriesOpts{
		charts.WithMarkLineNameYAxisItemOpts(
			opts.MarkLineNameYAxisItem{Name: "range low", YAxis: cs.Band.Lo},
			opts.MarkLineNameYAxisItem{Name: "range high", YAxis: cs.Band.Hi},
		),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			LineStyle: &opts.LineStyle{Color: colorBand, Width: 2},
		}),
	}
}
