package analysis

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"adreport/internal/report"
)

// View is a parsed dashboard or API query.
type View struct {
	Filter report.Filter
	Sort   string
	Desc   bool
	Tab    string
}

// Tabs of the dashboard report page.
var Tabs = []string{"products", "keywords", "daily", "accounts", "placements"}

// ParseView reads filter and sort parameters. Each account value is one
// account name, commas included; dates use YYYY-MM-DD.
func ParseView(values url.Values) (View, error) {
	v := View{Sort: report.SortSpend, Desc: true, Tab: Tabs[0]}

	for _, a := range values["account"] {
		if a = strings.TrimSpace(a); a != "" {
			v.Filter.Accounts = append(v.Filter.Accounts, a)
		}
	}

	var err error
	if v.Filter.From, err = parseDay(values.Get("from")); err != nil {
		return v, fmt.Errorf("invalid from date: %w", err)
	}
	if v.Filter.To, err = parseDay(values.Get("to")); err != nil {
		return v, fmt.Errorf("invalid to date: %w", err)
	}
	if !v.Filter.From.IsZero() && !v.Filter.To.IsZero() && v.Filter.To.Before(v.Filter.From) {
		return v, fmt.Errorf("date range ends before it starts")
	}

	v.Filter.Product = strings.TrimSpace(values.Get("product"))
	v.Filter.Query = strings.TrimSpace(values.Get("q"))

	if s := values.Get("sort"); s != "" {
		if !report.ValidSortKey(s) {
			return v, fmt.Errorf("unknown sort key %q", s)
		}
		v.Sort = s
	}
	if values.Get("order") == "asc" {
		v.Desc = false
	}

	if t := values.Get("tab"); t != "" {
		for _, known := range Tabs {
			if t == known {
				v.Tab = t
			}
		}
	}
	return v, nil
}

// Apply sorts the report's product and keyword tables.
func (v View) Apply(rep *report.Report) {
	report.SortProducts(rep.Products, v.Sort, v.Desc)
	report.SortKeywords(rep.Keywords, v.Sort, v.Desc)
	for i := range rep.Products {
		report.SortKeywords(rep.Products[i].Keywords, v.Sort, v.Desc)
	}
}

// Query encodes the filter back into URL parameters for export and chart links.
func (v View) Query() string {
	q := url.Values{}
	for _, a := range v.Filter.Accounts {
		q.Add("account", a)
	}
	if !v.Filter.From.IsZero() {
		q.Set("from", v.Filter.From.Format(time.DateOnly))
	}
	if !v.Filter.To.IsZero() {
		q.Set("to", v.Filter.To.Format(time.DateOnly))
	}
	if v.Filter.Product != "" {
		q.Set("product", v.Filter.Product)
	}
	if v.Filter.Query != "" {
		q.Set("q", v.Filter.Query)
	}
	if v.Sort != report.SortSpend {
		q.Set("sort", v.Sort)
	}
	if !v.Desc {
		q.Set("order", "asc")
	}
	return q.Encode()
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
