package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"adreport/internal/report"
)

// Fill colours per ROAS grade.
var gradeColors = map[report.Grade]string{
	report.GradeGood: "#C6EFCE",
	report.GradeWarn: "#FFEB9C",
	report.GradeBad:  "#FFC7CE",
}

const summarySheet = "Summary"

type styles struct {
	header  int
	title   int
	integer int
	ratio   int
	grade   map[report.Grade]int
}

func newStyles(f *excelize.File) (*styles, error) {
	s := &styles{grade: make(map[report.Grade]int)}
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	if s.integer, err = f.NewStyle(&excelize.Style{NumFmt: 3}); err != nil { // #,##0
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}
	if s.ratio, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil { // #,##0.00
		return nil, fmt.Errorf("failed to create ratio style: %w", err)
	}
	for g, color := range gradeColors {
		id, err := f.NewStyle(&excelize.Style{
			NumFmt: 4,
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create grade style: %w", err)
		}
		s.grade[g] = id
	}
	return s, nil
}

// WriteWorkbook renders the report as an xlsx workbook.
func WriteWorkbook(rep *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSummary(f, st, rep); err != nil {
		return nil, err
	}

	for _, t := range []*table{productTable(rep), keywordTable(rep), dailyTable(rep), accountTable(rep), placementTable(rep)} {
		if err := writeTable(f, st, t); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, st *styles, rep *report.Report) error {
	ov := rep.Overview
	period := ""
	if !ov.From.IsZero() {
		period = dateCell(ov.From) + " ~ " + dateCell(ov.To)
	}

	rows := [][]any{
		{"기간", period},
		{"계정 수", int64(ov.Accounts)},
		{"상품 수", int64(ov.Products)},
		{"키워드 수", int64(ov.Keywords)},
		{"행 수", int64(ov.Records)},
		{"노출수", ov.Metrics.Impressions},
		{"클릭수", ov.Metrics.Clicks},
		{"주문수", ov.Metrics.Orders},
		{"광고비", ov.Metrics.Spend},
		{"전환매출액", ov.Metrics.Sales},
		{"ROAS(%)", round2(ov.Metrics.ROAS())},
		{"CTR(%)", round2(ov.Metrics.CTR())},
		{"CPC", round2(ov.Metrics.CPC())},
		{"CVR(%)", round2(ov.Metrics.CVR())},
		{"목표ROAS(%)", ov.Target},
		{"생성시각", rep.GeneratedAt.Format("2006-01-02 15:04:05")},
	}

	if err := f.SetCellValue(summarySheet, "A1", "광고 성과 요약"); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", st.title); err != nil {
		return err
	}
	for i, r := range rows {
		rowNum := i + 3
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", rowNum), r[0]); err != nil {
			return err
		}
		cell := fmt.Sprintf("B%d", rowNum)
		if err := setCell(f, st, summarySheet, cell, r[1]); err != nil {
			return err
		}
		if r[0] == "ROAS(%)" {
			if id, ok := st.grade[ov.Grade]; ok {
				if err := f.SetCellStyle(summarySheet, cell, cell, id); err != nil {
					return err
				}
			}
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 16); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 24)
}

func writeTable(f *excelize.File, st *styles, t *table) error {
	if _, err := f.NewSheet(t.sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", t.sheet, err)
	}

	for i, h := range t.header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(t.sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(t.header), 1)
	if err := f.SetCellStyle(t.sheet, "A1", last, st.header); err != nil {
		return err
	}

	for r, rw := range t.rows {
		for c, v := range rw.cells {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := setCell(f, st, t.sheet, cell, v); err != nil {
				return err
			}
			if c == t.roasCol {
				if id, ok := st.grade[rw.grade]; ok {
					if err := f.SetCellStyle(t.sheet, cell, cell, id); err != nil {
						return err
					}
				}
			}
		}
	}

	for i, w := range t.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(t.sheet, col, col, w); err != nil {
			return err
		}
	}

	if err := f.SetPanes(t.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header of %s: %w", t.sheet, err)
	}
	return nil
}

// setCell writes a value with the number format for its type.
func setCell(f *excelize.File, st *styles, sheet, cell string, v any) error {
	switch x := v.(type) {
	case int64:
		if err := f.SetCellValue(sheet, cell, x); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, st.integer)
	case decimal.Decimal:
		if err := f.SetCellValue(sheet, cell, x.InexactFloat64()); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, st.integer)
	case float64:
		if err := f.SetCellValue(sheet, cell, x); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, st.ratio)
	default:
		return f.SetCellValue(sheet, cell, x)
	}
}
