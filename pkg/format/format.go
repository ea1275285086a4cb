// Package format turns numbers and dates into axis and tooltip labels.
//
// Number formatting follows the conventions the charts use for their axes:
// SI abbreviations with two significant digits (".2s"), grouped thousands
// (",.0f"), and currency prefixes. Date handling accepts strftime layouts
// such as "%d/%m/%Y" so that fixtures can declare their formats the way the
// source files write them.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

// Func formats a tick or field value as a label.
type Func func(v float64) string

// SI formats v with the given number of significant digits and an SI prefix,
// e.g. SI(1234567, 2) == "1.2M". Zero formats as "0".
func SI(v float64, digits int) string {
	if v == 0 {
		return "0"
	}
	value, prefix := humanize.ComputeSI(v)
	// ComputeSI may leave a value that rounds up into the next prefix
	// (999.7k at two digits), so round first and recompute on overflow.
	rounded := roundSignificant(value, digits)
	if math.Abs(rounded) >= 1000 {
		value, prefix = humanize.ComputeSI(roundSignificant(v, digits))
		rounded = roundSignificant(value, digits)
	}
	return trimFloat(rounded) + prefix
}

// Abbreviate is SI with the financial suffixes used by the coin charts:
// "G" becomes "B" (billion) and "k" becomes "K".
func Abbreviate(v float64) string {
	s := SI(v, 2)
	switch {
	case strings.HasSuffix(s, "G"):
		return strings.TrimSuffix(s, "G") + "B"
	case strings.HasSuffix(s, "k"):
		return strings.TrimSuffix(s, "k") + "K"
	}
	return s
}

// Thousands formats v rounded to decimals places with comma grouping,
// e.g. Thousands(1234567.8, 0) == "1,234,568".
func Thousands(v float64, decimals int) string {
	if decimals <= 0 {
		return humanize.Comma(int64(math.Round(v)))
	}
	return humanize.CommafWithDigits(roundTo(v, decimals), decimals)
}

// Currency prefixes Plain(v) with a dollar sign.
func Currency(v float64) string {
	return "$" + Plain(v)
}

// Plain formats v without exponent and without trailing zeros.
func Plain(v float64) string {
	return trimFloat(v)
}

// Suffix returns a Func appending suffix to Plain(v), e.g. " mil".
func Suffix(suffix string) Func {
	return func(v float64) string { return Plain(v) + suffix }
}

// Millions formats a population given in millions the way the treemap does:
// grouped integer followed by "mil.".
func Millions(v float64) string {
	return Thousands(v, 0) + " mil."
}

// Percent formats v (already in percent units) with one decimal place.
func Percent(v float64) string {
	return strconv.FormatFloat(roundTo(v, 1), 'f', 1, 64) + "%"
}

// Named returns a formatter by its configuration name. "suffix:m" appends
// a unit. Unknown names fall back to Plain.
func Named(name string) Func {
	if unit, ok := strings.CutPrefix(name, "suffix:"); ok {
		return Suffix(unit)
	}
	switch name {
	case "si":
		return func(v float64) string { return SI(v, 2) }
	case "abbrev":
		return Abbreviate
	case "thousands":
		return func(v float64) string { return Thousands(v, 0) }
	case "currency":
		return Currency
	case "millions":
		return Millions
	case "percent":
		return Percent
	}
	return Plain
}

// ParseTime parses value using a strftime layout such as "%d/%m/%Y".
func ParseTime(layout, value string) (time.Time, error) {
	return strftime.Parse(layout, value)
}

// FormatTime formats t using a strftime layout.
func FormatTime(layout string, t time.Time) string {
	return strftime.Format(layout, t)
}

func roundSignificant(v float64, digits int) float64 {
	if v == 0 || digits <= 0 {
		return v
	}
	shift := float64(digits) - math.Ceil(math.Log10(math.Abs(v)))
	if shift >= 0 {
		p := math.Pow(10, shift)
		return math.Round(v*p) / p
	}
	p := math.Pow(10, -shift)
	return math.Round(v/p) * p
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
