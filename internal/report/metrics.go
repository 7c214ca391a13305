package report

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"adreport/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Metrics are summed performance counters for one group.
type Metrics struct {
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Orders      int64           `json:"orders"`
	Spend       decimal.Decimal `json:"spend"`
	Sales       decimal.Decimal `json:"sales"`
}

// Add sums one record into m.
func (m *Metrics) Add(r *models.AdRecord) {
	m.Impressions += r.Impressions
	m.Clicks += r.Clicks
	m.Orders += r.Orders
	m.Spend = m.Spend.Add(r.Spend)
	m.Sales = m.Sales.Add(r.Sales)
}

// ROAS is sales / spend in percent.
func (m Metrics) ROAS() float64 {
	if m.Spend.IsZero() {
		return 0
	}
	return m.Sales.Div(m.Spend).Mul(hundred).InexactFloat64()
}

// CTR is clicks / impressions in percent.
func (m Metrics) CTR() float64 {
	if m.Impressions == 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions) * 100
}

// CPC is spend per click.
func (m Metrics) CPC() float64 {
	if m.Clicks == 0 {
		return 0
	}
	return m.Spend.Div(decimal.NewFromInt(m.Clicks)).InexactFloat64()
}

// CVR is orders / clicks in percent.
func (m Metrics) CVR() float64 {
	if m.Clicks == 0 {
		return 0
	}
	return float64(m.Orders) / float64(m.Clicks) * 100
}

// HasSpend reports whether any money was spent.
func (m Metrics) HasSpend() bool {
	return !m.Spend.IsZero()
}

// Grade classifies the group's ROAS against target.
func (m Metrics) Grade(target, warnRatio float64) Grade {
	if !m.HasSpend() {
		return GradeNone
	}
	return GradeROAS(m.ROAS(), target, warnRatio)
}

// MarshalJSON adds the derived ratios, rounded to two decimals.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	return json.Marshal(struct {
		plain
		ROAS float64 `json:"roas"`
		CTR  float64 `json:"ctr"`
		CPC  float64 `json:"cpc"`
		CVR  float64 `json:"cvr"`
	}{plain(m), round2(m.ROAS()), round2(m.CTR()), round2(m.CPC()), round2(m.CVR())})
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
