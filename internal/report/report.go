// Package report aggregates ad records into the tables shown on the dashboard
// and written to exports.
package report

import (
	"sort"
	"time"

	"adreport/internal/config"
	"adreport/internal/models"
)

// Catalog resolves product codes to curated names and targets.
type Catalog interface {
	Lookup(code string) (models.Product, bool)
}

// Options control how records are grouped and graded.
type Options struct {
	Catalog         Catalog
	DefaultTarget   float64
	WarnRatio       float64
	UnassignedLabel string
}

// OptionsFromRules builds options from the rules file thresholds.
func OptionsFromRules(rules *config.Rules, catalog Catalog) Options {
	return Options{
		Catalog:         catalog,
		DefaultTarget:   rules.Thresholds.DefaultTarget,
		WarnRatio:       rules.Thresholds.WarnRatio,
		UnassignedLabel: rules.Extraction.UnassignedLabel,
	}
}

// ProductRow is one product with its keyword breakdown.
type ProductRow struct {
	Code       string       `json:"code"` // empty for the unassigned bucket
	Name       string       `json:"name"`
	Unassigned bool         `json:"unassigned,omitempty"`
	Target     float64      `json:"target"`
	Grade      Grade        `json:"grade"`
	Metrics    Metrics      `json:"metrics"`
	Keywords   []KeywordRow `json:"keywords,omitempty"`
}

// Label is the code, or the name for the unassigned bucket.
func (p *ProductRow) Label() string {
	if p.Code == "" {
		return p.Name
	}
	return p.Code
}

// KeywordRow is one keyword bucket within a product.
type KeywordRow struct {
	ProductCode  string  `json:"product_code"`
	ProductLabel string  `json:"product_label"`
	Keyword      string  `json:"keyword"`
	NonSearch    bool    `json:"non_search,omitempty"`
	Target       float64 `json:"target"`
	Grade        Grade   `json:"grade"`
	Metrics      Metrics `json:"metrics"`
}

// DailyRow is the total of one report date.
type DailyRow struct {
	Date    time.Time `json:"date"`
	Grade   Grade     `json:"grade"`
	Metrics Metrics   `json:"metrics"`
}

// AccountRow is the total of one advertiser account.
type AccountRow struct {
	Account  string  `json:"account"`
	Products int     `json:"products"`
	Grade    Grade   `json:"grade"`
	Metrics  Metrics `json:"metrics"`
}

// PlacementRow is the total of one placement bucket.
type PlacementRow struct {
	Placement  string  `json:"placement"`
	NonSearch  bool    `json:"non_search,omitempty"`
	SpendShare float64 `json:"spend_share"` // percent of total spend
	Metrics    Metrics `json:"metrics"`
}

// Overview holds the headline numbers.
type Overview struct {
	Records  int       `json:"records"`
	Products int       `json:"products"`
	Keywords int       `json:"keywords"`
	Accounts int       `json:"accounts"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Target   float64   `json:"target"`
	Grade    Grade     `json:"grade"`
	Metrics  Metrics   `json:"metrics"`
}

// Report is every aggregate for one set of records.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Filter      Filter         `json:"filter"`
	WarnRatio   float64        `json:"warn_ratio"`
	Overview    Overview       `json:"overview"`
	Products    []ProductRow   `json:"products"`
	Keywords    []KeywordRow   `json:"keywords"`
	Daily       []DailyRow     `json:"daily"`
	Accounts    []AccountRow   `json:"accounts"`
	Placements  []PlacementRow `json:"placements"`
}

// Build filters records and computes every aggregate.
func Build(records []models.AdRecord, filter Filter, opts Options) *Report {
	records = filter.Apply(records)

	rep := &Report{
		GeneratedAt: time.Now(),
		Filter:      filter,
		WarnRatio:   opts.WarnRatio,
	}

	rep.Products = buildProducts(records, opts)
	for _, p := range rep.Products {
		rep.Keywords = append(rep.Keywords, p.Keywords...)
	}
	SortKeywords(rep.Keywords, SortSpend, true)

	rep.Daily = buildDaily(records, opts)
	rep.Accounts = buildAccounts(records, opts)
	rep.Placements = buildPlacements(records)
	rep.Overview = buildOverview(records, rep, opts)
	return rep
}

type productAcc struct {
	row      ProductRow
	keywords map[string]*KeywordRow
	order    []string
}

func buildProducts(records []models.AdRecord, opts Options) []ProductRow {
	groups := make(map[string]*productAcc)
	var order []string

	for i := range records {
		r := &records[i]
		acc, ok := groups[r.ProductCode]
		if !ok {
			acc = &productAcc{
				row:      ProductRow{Code: r.ProductCode},
				keywords: make(map[string]*KeywordRow),
			}
			if r.ProductCode == "" {
				acc.row.Unassigned = true
				acc.row.Name = opts.UnassignedLabel
			}
			groups[r.ProductCode] = acc
			order = append(order, r.ProductCode)
		}

		acc.row.Metrics.Add(r)
		if acc.row.Target == 0 && r.Target > 0 {
			acc.row.Target = r.Target
		}
		if acc.row.Name == "" && r.ProductName != "" {
			acc.row.Name = r.ProductName
		}

		kw, ok := acc.keywords[r.Keyword]
		if !ok {
			kw = &KeywordRow{ProductCode: r.ProductCode, Keyword: r.Keyword, NonSearch: r.NonSearch}
			acc.keywords[r.Keyword] = kw
			acc.order = append(acc.order, r.Keyword)
		}
		kw.Metrics.Add(r)
	}

	rows := make([]ProductRow, 0, len(order))
	for _, code := range order {
		acc := groups[code]
		row := acc.row

		// Name-embedded targets win over the catalog, which wins over the default.
		if opts.Catalog != nil && code != "" {
			if p, ok := opts.Catalog.Lookup(code); ok {
				if p.Name != "" {
					row.Name = p.Name
				}
				if row.Target == 0 {
					row.Target = p.Target
				}
			}
		}
		if row.Target == 0 {
			row.Target = opts.DefaultTarget
		}
		row.Grade = row.Metrics.Grade(row.Target, opts.WarnRatio)

		for _, k := range acc.order {
			kw := *acc.keywords[k]
			kw.ProductLabel = row.Label()
			kw.Target = row.Target
			kw.Grade = kw.Metrics.Grade(row.Target, opts.WarnRatio)
			row.Keywords = append(row.Keywords, kw)
		}
		SortKeywords(row.Keywords, SortSpend, true)
		rows = append(rows, row)
	}

	SortProducts(rows, SortSpend, true)
	return rows
}

func buildDaily(records []models.AdRecord, opts Options) []DailyRow {
	groups := make(map[time.Time]*DailyRow)
	for i := range records {
		r := &records[i]
		if !r.HasDate() {
			continue
		}
		d := day(r.Date)
		row, ok := groups[d]
		if !ok {
			row = &DailyRow{Date: d}
			groups[d] = row
		}
		row.Metrics.Add(r)
	}

	rows := make([]DailyRow, 0, len(groups))
	for _, row := range groups {
		row.Grade = row.Metrics.Grade(opts.DefaultTarget, opts.WarnRatio)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

func buildAccounts(records []models.AdRecord, opts Options) []AccountRow {
	groups := make(map[string]*AccountRow)
	products := make(map[string]map[string]bool)
	for i := range records {
		r := &records[i]
		row, ok := groups[r.Account]
		if !ok {
			row = &AccountRow{Account: r.Account}
			groups[r.Account] = row
			products[r.Account] = make(map[string]bool)
		}
		row.Metrics.Add(r)
		products[r.Account][r.ProductCode] = true
	}

	rows := make([]AccountRow, 0, len(groups))
	for name, row := range groups {
		row.Products = len(products[name])
		row.Grade = row.Metrics.Grade(opts.DefaultTarget, opts.WarnRatio)
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return bySpend(rows[i].Metrics, rows[j].Metrics, rows[i].Account, rows[j].Account)
	})
	return rows
}

func buildPlacements(records []models.AdRecord) []PlacementRow {
	groups := make(map[string]*PlacementRow)
	var total Metrics
	for i := range records {
		r := &records[i]
		row, ok := groups[r.Placement]
		if !ok {
			row = &PlacementRow{Placement: r.Placement, NonSearch: r.Placement == models.PlacementNonSearch}
			groups[r.Placement] = row
		}
		row.Metrics.Add(r)
		total.Add(r)
	}

	rows := make([]PlacementRow, 0, len(groups))
	for _, row := range groups {
		if total.HasSpend() {
			row.SpendShare = row.Metrics.Spend.Div(total.Spend).Mul(hundred).InexactFloat64()
		}
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return bySpend(rows[i].Metrics, rows[j].Metrics, rows[i].Placement, rows[j].Placement)
	})
	return rows
}

func buildOverview(records []models.AdRecord, rep *Report, opts Options) Overview {
	ov := Overview{
		Records:  len(records),
		Products: len(rep.Products),
		Keywords: len(rep.Keywords),
		Accounts: len(rep.Accounts),
		Target:   opts.DefaultTarget,
	}
	for i := range records {
		ov.Metrics.Add(&records[i])
	}
	if len(rep.Daily) > 0 {
		ov.From = rep.Daily[0].Date
		ov.To = rep.Daily[len(rep.Daily)-1].Date
	}
	ov.Grade = ov.Metrics.Grade(ov.Target, opts.WarnRatio)
	return ov
}

// bySpend orders by spend descending, then key ascending.
func bySpend(a, b Metrics, ka, kb string) bool {
	if c := a.Spend.Cmp(b.Spend); c != 0 {
		return c > 0
	}
	return ka < kb
}
