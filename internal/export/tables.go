// Package export writes reports as Excel workbooks and CSV files.
package export

import (
	"errors"
	"math"
	"time"

	"adreport/internal/models"
	"adreport/internal/report"
)

// ErrUnknownTable is returned for a table name that has no writer.
var ErrUnknownTable = errors.New("unknown table")

// Table names accepted by WriteCSV.
const (
	TableProducts   = "products"
	TableKeywords   = "keywords"
	TableDaily      = "daily"
	TableAccounts   = "accounts"
	TablePlacements = "placements"
	TableRecords    = "records"
)

// TableNames lists every exportable table.
var TableNames = []string{TableProducts, TableKeywords, TableDaily, TableAccounts, TablePlacements, TableRecords}

// ValidTable reports whether name is an exportable table.
func ValidTable(name string) bool {
	for _, t := range TableNames {
		if t == name {
			return true
		}
	}
	return false
}

// row is one output line. Grade colours the ROAS cell in workbooks.
type row struct {
	cells []any
	grade report.Grade
}

// table is a header plus rows, shared by the CSV and workbook writers.
type table struct {
	sheet   string
	header  []string
	widths  []float64
	roasCol int // -1 when the table has no ROAS column
	rows    []row
}

var metricHeader = []string{"노출수", "클릭수", "주문수", "광고비", "전환매출액", "ROAS(%)", "CTR(%)", "CPC", "CVR(%)"}

func metricCells(m report.Metrics) []any {
	return []any{m.Impressions, m.Clicks, m.Orders, m.Spend, m.Sales, round2(m.ROAS()), round2(m.CTR()), round2(m.CPC()), round2(m.CVR())}
}

// roasOffset is the index of ROAS within metricCells.
const roasOffset = 5

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func dateCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func withMetrics(width int, lead []string) []float64 {
	w := make([]float64, 0, len(lead)+len(metricHeader))
	for range lead {
		w = append(w, float64(width))
	}
	for range metricHeader {
		w = append(w, 13)
	}
	return w
}

func productTable(rep *report.Report) *table {
	lead := []string{"상품코드", "상품명", "목표ROAS(%)", "등급"}
	t := &table{
		sheet:   "Products",
		header:  append(lead, metricHeader...),
		widths:  withMetrics(16, lead),
		roasCol: len(lead) + roasOffset,
	}
	for _, p := range rep.Products {
		cells := append([]any{p.Label(), p.Name, p.Target, p.Grade.Label()}, metricCells(p.Metrics)...)
		t.rows = append(t.rows, row{cells: cells, grade: p.Grade})
	}
	return t
}

func keywordTable(rep *report.Report) *table {
	lead := []string{"상품코드", "키워드", "비검색", "목표ROAS(%)", "등급"}
	t := &table{
		sheet:   "Keywords",
		header:  append(lead, metricHeader...),
		widths:  withMetrics(16, lead),
		roasCol: len(lead) + roasOffset,
	}
	for _, k := range rep.Keywords {
		nonSearch := ""
		if k.NonSearch {
			nonSearch = "Y"
		}
		cells := append([]any{k.ProductLabel, k.Keyword, nonSearch, k.Target, k.Grade.Label()}, metricCells(k.Metrics)...)
		t.rows = append(t.rows, row{cells: cells, grade: k.Grade})
	}
	return t
}

func dailyTable(rep *report.Report) *table {
	lead := []string{"날짜"}
	t := &table{
		sheet:   "Daily",
		header:  append(lead, metricHeader...),
		widths:  withMetrics(12, lead),
		roasCol: len(lead) + roasOffset,
	}
	for _, d := range rep.Daily {
		cells := append([]any{dateCell(d.Date)}, metricCells(d.Metrics)...)
		t.rows = append(t.rows, row{cells: cells, grade: d.Grade})
	}
	return t
}

func accountTable(rep *report.Report) *table {
	lead := []string{"계정", "상품수"}
	t := &table{
		sheet:   "Accounts",
		header:  append(lead, metricHeader...),
		widths:  withMetrics(16, lead),
		roasCol: len(lead) + roasOffset,
	}
	for _, a := range rep.Accounts {
		cells := append([]any{a.Account, int64(a.Products)}, metricCells(a.Metrics)...)
		t.rows = append(t.rows, row{cells: cells, grade: a.Grade})
	}
	return t
}

func placementTable(rep *report.Report) *table {
	lead := []string{"노출지면", "광고비 비중(%)"}
	t := &table{
		sheet:   "Placements",
		header:  append(lead, metricHeader...),
		widths:  withMetrics(16, lead),
		roasCol: -1,
	}
	for _, p := range rep.Placements {
		cells := append([]any{p.Placement, round2(p.SpendShare)}, metricCells(p.Metrics)...)
		t.rows = append(t.rows, row{cells: cells})
	}
	return t
}

func recordTable(records []models.AdRecord) *table {
	t := &table{
		sheet: "Records",
		header: []string{"계정", "파일", "날짜", "캠페인", "광고그룹", "키워드", "노출지면", "상품코드", "목표ROAS(%)", "날짜토큰",
			"노출수", "클릭수", "주문수", "광고비", "전환매출액"},
		roasCol: -1,
	}
	for i := range records {
		r := &records[i]
		t.rows = append(t.rows, row{cells: []any{
			r.Account, r.SourceFile, dateCell(r.Date), r.Campaign, r.AdGroup, r.Keyword, r.Placement,
			r.ProductCode, r.Target, r.DateToken, r.Impressions, r.Clicks, r.Orders, r.Spend, r.Sales,
		}})
	}
	return t
}

func buildTable(name string, rep *report.Report, records []models.AdRecord) (*table, error) {
	switch name {
	case TableProducts:
		return productTable(rep), nil
	case TableKeywords:
		return keywordTable(rep), nil
	case TableDaily:
		return dailyTable(rep), nil
	case TableAccounts:
		return accountTable(rep), nil
	case TablePlacements:
		return placementTable(rep), nil
	case TableRecords:
		return recordTable(records), nil
	}
	return nil, ErrUnknownTable
}
