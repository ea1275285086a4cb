package dataset

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/vizlab/pkg/errors"
)

// Table is an ordered list of records plus the column order seen at load.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Filter keeps the rows for which keep returns true.
func (t Table) Filter(keep func(Record) bool) Table {
	out := Table{Columns: t.Columns}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Sort orders rows ascending by field. The sort is stable.
func (t Table) Sort(field string) Table {
	return t.SortFunc(func(a, b Record) int { return Compare(a.values[field], b.values[field]) })
}

// SortDesc orders rows descending by field. The sort is stable.
func (t Table) SortDesc(field string) Table {
	return t.SortFunc(func(a, b Record) int { return Compare(b.values[field], a.values[field]) })
}

// SortFunc orders rows with cmp. The sort is stable.
func (t Table) SortFunc(cmp func(a, b Record) int) Table {
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, cmp)
	return Table{Columns: t.Columns, Rows: rows}
}

// Between keeps rows whose field lies in [lo, hi], both ends inclusive.
func (t Table) Between(field string, lo, hi Value) Table {
	return t.Filter(func(r Record) bool {
		v, ok := r.values[field]
		return ok && !v.IsNull() && Compare(v, lo) >= 0 && Compare(v, hi) <= 0
	})
}

// Head returns the first n rows.
func (t Table) Head(n int) Table {
	n = max(0, min(n, len(t.Rows)))
	return Table{Columns: t.Columns, Rows: t.Rows[:n:n]}
}

// Column returns the values of field in row order.
func (t Table) Column(field string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.values[field]
	}
	return out
}

// Floats returns field as numbers; non-numeric entries are NaN.
func (t Table) Floats(field string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Num(field)
	}
	return out
}

// Strings returns field rendered as strings.
func (t Table) Strings(field string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Str(field)
	}
	return out
}

// Extent returns the numeric minimum and maximum of field, ignoring NaN.
// ok is false when no row holds a number.
func (t Table) Extent(field string) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range t.Rows {
		f := r.Num(field)
		if math.IsNaN(f) {
			continue
		}
		lo, hi, ok = math.Min(lo, f), math.Max(hi, f), true
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return lo, hi, true
}

// Sum adds up the numeric values of field, skipping NaN.
func (t Table) Sum(field string) float64 {
	var s float64
	for _, r := range t.Rows {
		if f := r.Num(field); !math.IsNaN(f) {
			s += f
		}
	}
	return s
}

// Group is a keyed subset of a table.
type Group struct {
	Key   string `json:"key"`
	Table Table  `json:"table"`
}

// Groups is an ordered list of groups.
type Groups []Group

// Keys returns the group keys in order.
func (gs Groups) Keys() []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Key
	}
	return out
}

// Get returns the table for key.
func (gs Groups) Get(key string) (Table, bool) {
	for _, g := range gs {
		if g.Key == key {
			return g.Table, true
		}
	}
	return Table{}, false
}

// Index returns the position of key, or -1.
func (gs Groups) Index(key string) int {
	for i, g := range gs {
		if g.Key == key {
			return i
		}
	}
	return -1
}

// GroupBy partitions t by the string form of field, keeping keys in the
// order they are first seen.
func GroupBy(t Table, field string) Groups {
	idx := map[string]int{}
	var out Groups
	for _, r := range t.Rows {
		k := r.Str(field)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Group{Key: k, Table: Table{Columns: t.Columns}})
		}
		out[i].Table.Rows = append(out[i].Table.Rows, r)
	}
	return out
}

// PivotOptions configures [Pivot].
type PivotOptions struct {
	// ID columns identify a row instead of holding a measurement.
	ID []string
	// Keep lists the ID columns copied into every long row, optionally
	// renamed with "from:to".
	Keep []string
	// Key receives the former column name. Defaults to "key".
	Key string
	// Value receives the measurement. Defaults to "value".
	Value string
}

// Pivot turns wide measurement columns (one per year, say) into one long
// table per column. Each resulting table is sorted by value descending, and
// groups follow the column order of t.
func Pivot(t Table, opts PivotOptions) (Groups, error) {
	key, value := opts.Key, opts.Value
	if key == "" {
		key = "key"
	}
	if value == "" {
		value = "value"
	}
	keep := make([]rename, len(opts.Keep))
	for i, k := range opts.Keep {
		from, to, ok := strings.Cut(k, ":")
		if !ok {
			to = from
		}
		keep[i] = rename{from, to}
	}
	columns := make([]string, 0, len(keep)+2)
	for _, k := range keep {
		columns = append(columns, k.to)
	}
	columns = append(columns, value, key)

	var out Groups
	for _, col := range t.Columns {
		if slices.Contains(opts.ID, col) || keepsColumn(keep, col) {
			continue
		}
		g := Group{Key: col, Table: Table{Columns: columns}}
		for i, r := range t.Rows {
			v, err := measurement(r, col)
			if err != nil {
				return nil, &errors.RowError{Row: i + 1, Field: col, Value: r.Str(col), Err: err}
			}
			fields := make([]string, 0, len(columns))
			values := make([]Value, 0, len(columns))
			for _, k := range keep {
				fields = append(fields, k.to)
				values = append(values, r.values[k.from])
			}
			fields = append(fields, value, key)
			values = append(values, Num(v), Str(col))
			g.Table.Rows = append(g.Table.Rows, NewRecord(fields, values))
		}
		g.Table = g.Table.SortDesc(value)
		out = append(out, g)
	}
	return out, nil
}

type rename struct{ from, to string }

func keepsColumn(keep []rename, col string) bool {
	for _, k := range keep {
		if k.from == col {
			return true
		}
	}
	return false
}

func measurement(r Record, col string) (float64, error) {
	v := r.values[col]
	switch v.Kind() {
	case Null:
		return 0, nil
	case Number:
		f, _ := v.Float()
		return f, nil
	}
	s := strings.TrimSuffix(strings.TrimSpace(v.String()), "%")
	if s == "" || slices.Contains(DefaultNAValues, s) {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
