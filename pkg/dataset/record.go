package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Record is an ordered mapping from field name to [Value]. Records are never
// modified in place; [Record.With] returns a copy.
type Record struct {
	fields []string
	values map[string]Value
}

// NewRecord builds a record from parallel slices. Later duplicates of a
// field name overwrite earlier ones but keep the first position.
func NewRecord(fields []string, values []Value) Record {
	r := Record{values: make(map[string]Value, len(fields))}
	for i, f := range fields {
		if _, ok := r.values[f]; !ok {
			r.fields = append(r.fields, f)
		}
		var v Value
		if i < len(values) {
			v = values[i]
		}
		r.values[f] = v
	}
	return r
}

// Fields returns the field names in load order.
func (r Record) Fields() []string { return append([]string(nil), r.fields...) }

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Get returns the named value.
func (r Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Num returns the named field as a number, or NaN.
func (r Record) Num(field string) float64 {
	f, ok := r.values[field].Float()
	if !ok {
		return math.NaN()
	}
	return f
}

// Str returns the named field rendered as a string; empty when absent.
func (r Record) Str(field string) string { return r.values[field].String() }

// Time returns the named field as a time; the zero time when absent or not
// a time.
func (r Record) Time(field string) time.Time {
	t, _ := r.values[field].Time()
	return t
}

// With returns a copy of r with field set to v.
func (r Record) With(field string, v Value) Record {
	out := Record{
		fields: append([]string(nil), r.fields...),
		values: make(map[string]Value, len(r.values)+1),
	}
	for k, val := range r.values {
		out.values[k] = val
	}
	if _, ok := out.values[field]; !ok {
		out.fields = append(out.fields, field)
	}
	out.values[field] = v
	return out
}

// MarshalJSON encodes the record as an object with fields in load order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := r.values[f].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
