package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// FormatInt renders n with thousand separators.
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatMoney renders an amount rounded to whole currency units.
func FormatMoney(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(f float64) string {
	return printer.Sprintf("%.2f%%", f)
}

// FormatFloat renders f with two decimals and thousand separators.
func FormatFloat(f float64) string {
	return printer.Sprintf("%.2f", f)
}
