// Package report renders printable documents and spreadsheet exports.
package report

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.AmericanEnglish)
	hundred = decimal.NewFromInt(100)
)

// Money formats an amount in dollars with digit grouping, e.g. $1,234.50.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return printer.Sprintf("%s$%.2f", sign, d.Round(2).InexactFloat64())
}

// Quantity formats a line quantity without trailing zeros.
func Quantity(d decimal.Decimal) string {
	return d.String()
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func datePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date(*t)
}
