// Package format renders metric values for KPIs, legends and tooltips.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter turns a raw metric value into display text.
type Formatter func(float64) string

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency formats whole dollars with thousands separators: 312450.6 -> "$312,451".
func Currency(v float64) string {
	r := math.RoundToEven(v)
	if r < 0 {
		return printer.Sprintf("-$%.0f", -r)
	}
	return printer.Sprintf("$%.0f", math.Abs(r))
}

// Percent formats a value already expressed in percent with one decimal and no
// grouping: 2.345 -> "2.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Plain formats a number with separators and no unit.
func Plain(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Kind names a Formatter so it can be carried in configuration and JSON.
type Kind string

// Formatter kinds.
const (
	KindCurrency Kind = "currency"
	KindPercent  Kind = "percent"
	KindPlain    Kind = "plain"
)

// Formatter returns the function for k, falling back to Plain.
func (k Kind) Formatter() Formatter {
	switch k {
	case KindCurrency:
		return Currency
	case KindPercent:
		return Percent
	default:
		return Plain
	}
}
