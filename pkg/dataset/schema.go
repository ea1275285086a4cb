package dataset

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/format"
)

// DefaultNAValues are the placeholders normalised to zero when a Schema does
// not name its own.
var DefaultNAValues = []string{"N.A."}

// Schema describes how raw fields are coerced.
type Schema struct {
	// Required fields drop the record when absent, empty or null.
	Required []string `json:"required,omitempty" toml:"required" yaml:"required"`
	// Numbers are parsed as float64.
	Numbers []string `json:"numbers,omitempty" toml:"numbers" yaml:"numbers"`
	// Dates maps a field to its strftime layout, e.g. "%d/%m/%Y".
	Dates map[string]string `json:"dates,omitempty" toml:"dates" yaml:"dates"`
	// Percent fields have "%" stripped and are parsed as numbers.
	Percent []string `json:"percent,omitempty" toml:"percent" yaml:"percent"`
	// NAValues are read as zero.
	NAValues []string `json:"na_values,omitempty" toml:"na_values" yaml:"na_values"`
}

type rawField struct {
	name string
	val  any // string, json.Number, bool or nil
}

// Validate checks every field name the schema references. Charts build
// schemas from config options, so a bad name is reported before any data
// is read.
func (s Schema) Validate() error {
	names := slices.Concat(s.Required, s.Numbers, s.Percent)
	for name := range s.Dates {
		names = append(names, name)
	}
	for _, name := range names {
		if err := errors.ValidateFieldName(name); err != nil {
			return err
		}
	}
	return nil
}

func (s Schema) naValues() []string {
	if s.NAValues == nil {
		return DefaultNAValues
	}
	return s.NAValues
}

// coerce turns one raw row into a Record. The boolean is false when the row
// fails a Required check.
func (s Schema) coerce(row int, raw []rawField) (Record, bool, error) {
	present := make(map[string]bool, len(raw))
	for _, f := range raw {
		present[f.name] = !isBlank(f.val)
	}
	for _, req := range s.Required {
		if !present[req] {
			return Record{}, false, nil
		}
	}

	na := s.naValues()
	fields := make([]string, 0, len(raw))
	values := make([]Value, 0, len(raw))
	for _, f := range raw {
		v, err := s.coerceField(f, na)
		if err != nil {
			return Record{}, false, &errors.RowError{Row: row, Field: f.name, Value: rawString(f.val), Err: err}
		}
		fields = append(fields, f.name)
		values = append(values, v)
	}
	return NewRecord(fields, values), true, nil
}

func (s Schema) coerceField(f rawField, na []string) (Value, error) {
	if f.val == nil {
		return Value{}, nil
	}
	text := strings.TrimSpace(rawString(f.val))
	if slices.Contains(na, text) {
		return Num(0), nil
	}
	if layout, ok := s.Dates[f.name]; ok {
		if text == "" {
			return Value{}, nil
		}
		t, err := format.ParseTime(layout, text)
		if err != nil {
			return Value{}, err
		}
		return At(t), nil
	}
	if slices.Contains(s.Percent, f.name) {
		text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
		return parseNumber(text)
	}
	if slices.Contains(s.Numbers, f.name) {
		return parseNumber(text)
	}
	switch v := f.val.(type) {
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return Num(n), nil
		}
	case bool:
		return Str(strconv.FormatBool(v)), nil
	}
	return Str(rawString(f.val)), nil
}

func parseNumber(text string) (Value, error) {
	if text == "" {
		return Value{}, nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, fmt.Errorf("not a number")
	}
	return Num(n), nil
}

func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func rawString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(v)
}
