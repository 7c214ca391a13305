package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var numberCleaner = strings.NewReplacer(
	",", "",
	"₩", "",
	"￦", "",
	"원", "",
	"$", "",
	"%", "",
	" ", "",
	"\u00a0", "",
)

// parseNumber reads a numeric cell. Empty or placeholder cells are zero;
// "(1,234)" is negative.
func parseNumber(raw string, isPlaceholder func(string) bool) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if isPlaceholder(s) {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = numberCleaner.Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// parseCount reads a whole-number cell, rounding fractional values.
func parseCount(raw string, isPlaceholder func(string) bool) (int64, error) {
	d, err := parseNumber(raw, isPlaceholder)
	if err != nil {
		return 0, err
	}
	return d.Round(0).IntPart(), nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006. 1. 2.",
	"2006. 1. 2",
	"2006-1-2",
	"2006/1/2",
	"2006년 01월 02일",
	"2006년 1월 2일",
	"01/02/2006",
}

// parseDate reads a report date, including Excel serial day numbers.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Serial dates appear when cells are read raw. 20000 ≈ 1954, 80000 ≈ 2119.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 20000 && f < 80000 {
		t, err := excelize.ExcelDateToTime(f, false)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
