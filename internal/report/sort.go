package report

import (
	"sort"
	"strings"
)

// Sort keys accepted by SortProducts and SortKeywords.
const (
	SortSpend       = "spend"
	SortSales       = "sales"
	SortROAS        = "roas"
	SortCTR         = "ctr"
	SortCPC         = "cpc"
	SortCVR         = "cvr"
	SortClicks      = "clicks"
	SortImpressions = "impressions"
	SortOrders      = "orders"
	SortCode        = "code"
	SortKeyword     = "keyword"
)

// SortKeys lists the keys in display order.
var SortKeys = []string{SortSpend, SortSales, SortROAS, SortCTR, SortCPC, SortCVR, SortClicks, SortImpressions, SortOrders, SortCode}

// ValidSortKey reports whether key is a known sort key.
func ValidSortKey(key string) bool {
	for _, k := range SortKeys {
		if k == key {
			return true
		}
	}
	return key == SortKeyword
}

// compareMetrics returns -1, 0 or 1 for a metric key. Unknown keys compare by spend.
func compareMetrics(a, b Metrics, key string) int {
	switch key {
	case SortSales:
		return a.Sales.Cmp(b.Sales)
	case SortROAS:
		return cmpFloat(a.ROAS(), b.ROAS())
	case SortCTR:
		return cmpFloat(a.CTR(), b.CTR())
	case SortCPC:
		return cmpFloat(a.CPC(), b.CPC())
	case SortCVR:
		return cmpFloat(a.CVR(), b.CVR())
	case SortClicks:
		return cmpInt(a.Clicks, b.Clicks)
	case SortImpressions:
		return cmpInt(a.Impressions, b.Impressions)
	case SortOrders:
		return cmpInt(a.Orders, b.Orders)
	default:
		return a.Spend.Cmp(b.Spend)
	}
}

// SortProducts sorts rows in place. Ties fall back to the product label.
func SortProducts(rows []ProductRow, key string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if key == SortCode || key == SortKeyword {
			return less(strings.Compare(a.Label(), b.Label()), desc)
		}
		if c := compareMetrics(a.Metrics, b.Metrics, key); c != 0 {
			return less(c, desc)
		}
		return a.Label() < b.Label()
	})
}

// SortKeywords sorts rows in place. Ties fall back to product then keyword.
func SortKeywords(rows []KeywordRow, key string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		switch key {
		case SortKeyword:
			if c := strings.Compare(a.Keyword, b.Keyword); c != 0 {
				return less(c, desc)
			}
		case SortCode:
			if c := strings.Compare(a.ProductLabel, b.ProductLabel); c != 0 {
				return less(c, desc)
			}
		default:
			if c := compareMetrics(a.Metrics, b.Metrics, key); c != 0 {
				return less(c, desc)
			}
		}
		if a.ProductLabel != b.ProductLabel {
			return a.ProductLabel < b.ProductLabel
		}
		return a.Keyword < b.Keyword
	})
}

func less(c int, desc bool) bool {
	if desc {
		return c > 0
	}
	return c < 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
