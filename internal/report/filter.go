package report

import (
	"strings"
	"time"

	"adreport/internal/extract"
	"adreport/internal/models"
)

// Filter narrows the records a report is built from. Zero fields match everything.
type Filter struct {
	Accounts []string  `json:"accounts,omitempty"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Product  string    `json:"product,omitempty"`
	Query    string    `json:"query,omitempty"`
}

// HasDateRange reports whether either bound is set.
func (f Filter) HasDateRange() bool {
	return !f.From.IsZero() || !f.To.IsZero()
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return len(f.Accounts) == 0 && !f.HasDateRange() && f.Product == "" && strings.TrimSpace(f.Query) == ""
}

// Apply returns the matching records. The input slice is not modified.
func (f Filter) Apply(records []models.AdRecord) []models.AdRecord {
	if f.IsZero() {
		return records
	}

	accounts := make(map[string]bool, len(f.Accounts))
	for _, a := range f.Accounts {
		accounts[a] = true
	}
	product := extract.NormalizeCode(f.Product)
	query := strings.ToLower(strings.TrimSpace(f.Query))
	from, to := day(f.From), day(f.To)

	out := make([]models.AdRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if len(accounts) > 0 && !accounts[r.Account] {
			continue
		}
		if f.HasDateRange() {
			if !r.HasDate() {
				continue
			}
			d := day(r.Date)
			if !from.IsZero() && d.Before(from) {
				continue
			}
			if !to.IsZero() && d.After(to) {
				continue
			}
		}
		if product != "" && r.ProductCode != product {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.Keyword), query) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
