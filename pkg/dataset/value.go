// Package dataset loads tabular chart fixtures and reshapes them.
//
// Loaders accept CSV or JSON (arrays of objects, objects of arrays, or
// arrays of frames holding nested rows) and coerce raw text into typed
// [Value]s according to a [Schema]. Coercion follows a few fixed rules:
//
//   - A record missing any Required field (absent, empty or null) is dropped.
//     This is filtering, not an error.
//   - Fields listed in NAValues (default "N.A.") become the number zero.
//   - Percent fields have their "%" stripped and become numbers.
//   - Numbers and Dates fields that fail to parse produce a *errors.RowError
//     naming the row and field. Loading stops at the first such error.
//
// A [Table] is immutable after loading: every transformation returns a new
// Table sharing the underlying records.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind tags the dynamic type of a [Value].
type Kind uint8

const (
	Null Kind = iota
	Number
	Time
	String
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Time:
		return "time"
	case String:
		return "string"
	}
	return "null"
}

// Value is a tagged scalar. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	str  string
	t    time.Time
}

// Num returns a number value.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: String, str: s} }

// At returns a time value.
func At(t time.Time) Value { return Value{kind: Time, t: t} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds nothing.
func (v Value) IsNull() bool { return v.kind == Null }

// Float returns the numeric content. Times convert to Unix milliseconds so
// they can feed continuous scales; strings and nulls report false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Number:
		return v.num, true
	case Time:
		return float64(v.t.UnixMilli()), true
	}
	return math.NaN(), false
}

// Time returns the time content.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == Time
}

// String renders the value for labels and keys.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Time:
		return v.t.Format(time.RFC3339)
	case String:
		return v.str
	}
	return ""
}

// MarshalJSON encodes numbers as JSON numbers (NaN and infinities as null),
// times as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Number:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case Time:
		return json.Marshal(v.t.Format(time.RFC3339))
	case String:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

// Compare orders values: nulls first, then by content. Values of different
// non-null kinds compare by kind.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case Number:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case Time:
		return a.t.Compare(b.t)
	case String:
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		}
	}
	return 0
}
