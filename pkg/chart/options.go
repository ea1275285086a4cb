package chart

import (
	"strconv"
	"strings"

	"github.com/matzehuels/vizlab/pkg/errors"
)

// OptionFloat returns a numeric option, or def when unset or malformed.
func (c Config) OptionFloat(name string, def float64) float64 {
	v, err := strconv.ParseFloat(c.Option(name, ""), 64)
	if err != nil {
		return def
	}
	return v
}

// OptionList splits a comma separated option.
func (c Config) OptionList(name, def string) []string {
	var out []string
	for _, f := range strings.Split(c.Option(name, def), ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// OptionBool reports whether an option is "true", "yes" or "1".
func (c Config) OptionBool(name string) bool {
	switch strings.ToLower(c.Option(name, "")) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// choose validates a selected value against the allowed choices.
func choose(kind Kind, control, value string, allowed []string) (string, error) {
	for _, a := range allowed {
		if a == value {
			return value, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "%s chart: unknown %s %q (want one of %s)",
		kind, control, value, strings.Join(allowed, ", "))
}

// choiceError rejects a malformed control value.
func choiceError(kind Kind, control, value string) error {
	return errors.New(errors.ErrCodeInvalidInput, "%s chart: invalid %s %q", kind, control, value)
}

// title upper-cases the first letter of each underscore separated word:
// "price_usd" becomes "Price Usd".
func title(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Colours of the continent layers shared by the population charts.
type continentColours struct {
	Continent, Region, Country, Text string
}

var continentPalette = map[string]continentColours{
	"AF": {Continent: "#A8986B", Region: "#DAC999", Country: "#F9EACF", Text: "black"},
	"NA": {Continent: "#0068B9", Region: "#9EC4FF", Country: "#D1F7FF", Text: "white"},
	"OC": {Continent: "#A2228D", Region: "#DD5CC5", Country: "#EFAEEA", Text: "white"},
	"AS": {Continent: "#C16300", Region: "#FA910E", Country: "#FFCC78", Text: "black"},
	"EU": {Continent: "#009900", Region: "#46CB00", Country: "#AEFF62", Text: "black"},
	"SA": {Continent: "#A00000", Region: "#DA2C27", Country: "#FC9E8F", Text: "white"},
}

func paletteFor(code string) continentColours {
	if c, ok := continentPalette[code]; ok {
		return c
	}
	return continentColours{Continent: "#999999", Region: "#BBBBBB", Country: "#DDDDDD", Text: "black"}
}
