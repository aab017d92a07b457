package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/labreport/labreport/internal/domain/report"
)

const sheetName = "Report"

// headerRows is the patient block above the grid: title, identity, and
// conditions, plus one spacer row.
const headerRows = 5

var colWidths = []float64{32, 14, 16, 14, 14}

// WriteXLSX renders a report into an xlsx workbook at path. The patient
// block sits on top; the grid below it follows the layout plan's merges
// and banding.
func WriteXLSX(rep *report.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	if err := writePatientBlock(f, rep.Header); err != nil {
		return err
	}
	if err := writeGrid(f, rep.Layout); err != nil {
		return err
	}

	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}
	// Keep the patient block and column header visible while scrolling.
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRows + 1,
		TopLeftCell: fmt.Sprintf("A%d", headerRows+2),
		ActivePane:  "bottomLeft",
	})

	f.SetActiveSheet(index)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writePatientBlock(f *excelize.File, h report.Header) error {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "2C3E50"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 8, Color: "808080"},
	})
	if err != nil {
		return fmt.Errorf("label style: %w", err)
	}
	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
	})
	if err != nil {
		return fmt.Errorf("value style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Patient Diagnostic Report")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetCellValue(sheetName, "E1", "Generated: "+h.GeneratedAt)

	f.SetCellValue(sheetName, "A2", "PATIENT NAME")
	f.SetCellValue(sheetName, "B2", "DOB")
	f.SetCellValue(sheetName, "C2", "GENDER")
	f.SetCellStyle(sheetName, "A2", "C2", labelStyle)

	f.SetCellValue(sheetName, "A3", h.PatientName)
	f.SetCellValue(sheetName, "B3", h.DOB)
	f.SetCellValue(sheetName, "C3", h.Gender)
	f.SetCellStyle(sheetName, "A3", "C3", valueStyle)

	conditions := "None Reported"
	if len(h.Conditions) > 0 {
		conditions = strings.Join(h.Conditions, ", ")
	}
	f.SetCellValue(sheetName, "A4", "CONDITIONS")
	f.SetCellStyle(sheetName, "A4", "A4", labelStyle)
	f.SetCellValue(sheetName, "A5", conditions)
	f.SetCellStyle(sheetName, "A5", "A5", valueStyle)
	f.MergeCell(sheetName, "A5", "E5")

	return nil
}

func writeGrid(f *excelize.File, layout report.LayoutPlan) error {
	headStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F5F5F5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    gridBorder(),
	})
	if err != nil {
		return fmt.Errorf("grid header style: %w", err)
	}
	evenStyle, err := bandStyle(f, "F7F7FC")
	if err != nil {
		return err
	}
	oddStyle, err := bandStyle(f, "FFFFFF")
	if err != nil {
		return err
	}

	for i, row := range layout.Rows {
		for j, cell := range row {
			name, _ := excelize.CoordinatesToCellName(j+1, gridRow(i))
			f.SetCellValue(sheetName, name, cell)
		}
	}

	headEnd, _ := excelize.CoordinatesToCellName(report.NumCols, gridRow(0))
	f.SetCellStyle(sheetName, cellAt(0, 0), headEnd, headStyle)

	for _, band := range layout.Bands {
		style := oddStyle
		if band.Even {
			style = evenStyle
		}
		f.SetCellStyle(sheetName, cellAt(band.StartRow, 0), cellAt(band.EndRow, report.NumCols-1), style)
	}

	for _, m := range layout.Merges {
		if err := f.MergeCell(sheetName, cellAt(m.StartRow, m.Col), cellAt(m.EndRow, m.Col)); err != nil {
			return fmt.Errorf("merge rows %d-%d col %d: %w", m.StartRow, m.EndRow, m.Col, err)
		}
	}

	return nil
}

func bandStyle(f *excelize.File, color string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    gridBorder(),
	})
	if err != nil {
		return 0, fmt.Errorf("band style: %w", err)
	}
	return style, nil
}

func gridBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "D0D0D0", Style: 1},
		{Type: "right", Color: "D0D0D0", Style: 1},
		{Type: "top", Color: "D0D0D0", Style: 1},
		{Type: "bottom", Color: "D0D0D0", Style: 1},
	}
}

// gridRow maps a layout row index to its worksheet row (1-based, below the
// patient block).
func gridRow(layoutRow int) int { return layoutRow + headerRows + 1 }

func cellAt(layoutRow, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, gridRow(layoutRow))
	return name
}
