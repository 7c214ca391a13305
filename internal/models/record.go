package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Placement labels after normalization.
const (
	PlacementSearch    = "검색 영역"
	PlacementNonSearch = "비검색 영역"
)

// AdRecord is one normalized row of an advertising performance export.
type AdRecord struct {
	Account     string          `json:"account"`
	SourceFile  string          `json:"source_file"`
	Date        time.Time       `json:"date"` // zero when the export has no date column
	Campaign    string          `json:"campaign"`
	AdGroup     string          `json:"ad_group"`
	Keyword     string          `json:"keyword"`
	Placement   string          `json:"placement"`
	NonSearch   bool            `json:"non_search"`
	ProductName string          `json:"product_name,omitempty"`
	ProductCode string          `json:"product_code"`
	Target      float64         `json:"target,omitempty"` // target ROAS in percent, 0 when absent
	DateToken   string          `json:"date_token,omitempty"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Orders      int64           `json:"orders"`
	Spend       decimal.Decimal `json:"spend"`
	Sales       decimal.Decimal `json:"sales"`
}

// HasDate reports whether the record carries a report date.
func (r *AdRecord) HasDate() bool {
	return !r.Date.IsZero()
}
