package server

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"adreport/internal/report"
)

// TemplateFuncs returns the helpers available to every view.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"int":     report.FormatInt,
		"money":   report.FormatMoney,
		"percent": report.FormatPercent,
		"float":   report.FormatFloat,
		"count": func(n int) string {
			return report.FormatInt(int64(n))
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format(time.DateOnly)
		},
		"dateInput": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"gradeClass": func(g report.Grade) string {
			return "grade-" + string(g)
		},
		"gradeLabel": func(g report.Grade) string {
			return g.Label()
		},
		"isZero": func(d decimal.Decimal) bool {
			return d.IsZero()
		},
		"tabLabel": tabLabel,
		"sortLabel": func(key string) string {
			if l, ok := sortLabels[key]; ok {
				return l
			}
			return key
		},
	}
}

var tabLabels = map[string]string{
	"products":   "상품별",
	"keywords":   "키워드별",
	"daily":      "일자별",
	"accounts":   "계정별",
	"placements": "지면별",
	"records":    "원본 행",
}

func tabLabel(tab string) string {
	if l, ok := tabLabels[tab]; ok {
		return l
	}
	return tab
}

var sortLabels = map[string]string{
	report.SortSpend:       "광고비",
	report.SortSales:       "매출",
	report.SortROAS:        "ROAS",
	report.SortClicks:      "클릭",
	report.SortImpressions: "노출",
	report.SortOrders:      "주문",
	report.SortCTR:         "CTR",
	report.SortCPC:         "CPC",
	report.SortCVR:         "CVR",
	report.SortCode:        "상품코드",
	report.SortKeyword:     "키워드",
}
