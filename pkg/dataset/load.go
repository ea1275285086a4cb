package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/httputil"
)

// LoadCSV reads a headered CSV table. Short rows leave their trailing fields
// empty; extra fields are ignored.
func LoadCSV(r io.Reader, s Schema) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read CSV header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := Table{Columns: append([]string(nil), header...)}

	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read CSV row %d", row)
		}
		raw := make([]rawField, len(header))
		for i, name := range header {
			var v any
			if i < len(fields) {
				v = fields[i]
			}
			raw[i] = rawField{name: name, val: v}
		}
		rec, ok, err := s.coerce(row, raw)
		if err != nil {
			return Table{}, err
		}
		if ok {
			t.Rows = append(t.Rows, rec)
		}
	}
	return t, nil
}

// LoadJSON reads an array of flat objects. Columns are the union of object
// keys in first-seen order.
func LoadJSON(r io.Reader, s Schema) (Table, error) {
	dec := newDecoder(r)
	v, err := decodeValue(dec)
	if err != nil {
		return Table{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	arr, ok := v.([]any)
	if !ok {
		return Table{}, errors.New(errors.ErrCodeInvalidFormat, "expected a JSON array of objects")
	}
	return tableFromObjects(arr, s)
}

// LoadJSONGroups reads an object whose values are arrays of objects, such as
// coin name to daily rows. Groups keep the object's key order.
func LoadJSONGroups(r io.Reader, s Schema) (Groups, error) {
	dec := newDecoder(r)
	v, err := decodeValue(dec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	obj, ok := v.(*object)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected a JSON object of arrays")
	}
	out := make(Groups, 0, len(obj.keys))
	for _, k := range obj.keys {
		arr, ok := obj.vals[k].([]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "group %q is not an array", k)
		}
		t, err := tableFromObjects(arr, s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedRow, err, "group %q", k)
		}
		out = append(out, Group{Key: k, Table: t})
	}
	return out, nil
}

// LoadJSONNested reads an array of frames, each holding a key field and an
// array of row objects under rowsField, such as one entry per year with its
// countries.
func LoadJSONNested(r io.Reader, s Schema, keyField, rowsField string) (Groups, error) {
	dec := newDecoder(r)
	v, err := decodeValue(dec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected a JSON array of frames")
	}
	out := make(Groups, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(*object)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "frame %d is not an object", i)
		}
		key := rawString(obj.vals[keyField])
		rows, ok := obj.vals[rowsField].([]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "frame %q has no %q array", key, rowsField)
		}
		t, err := tableFromObjects(rows, s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedRow, err, "frame %q", key)
		}
		out = append(out, Group{Key: key, Table: t})
	}
	return out, nil
}

// Lookup is an ordered string map, such as continent code to name.
type Lookup struct {
	keys []string
	m    map[string]string
}

// NewLookup builds a lookup from alternating key/value pairs.
func NewLookup(pairs ...string) Lookup {
	l := Lookup{m: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		l.set(pairs[i], pairs[i+1])
	}
	return l
}

func (l *Lookup) set(k, v string) {
	if _, ok := l.m[k]; !ok {
		l.keys = append(l.keys, k)
	}
	l.m[k] = v
}

// Keys returns the keys in file order.
func (l Lookup) Keys() []string { return append([]string(nil), l.keys...) }

// Get returns the value for k, or k itself when unknown.
func (l Lookup) Get(k string) string {
	if v, ok := l.m[k]; ok {
		return v
	}
	return k
}

// Len returns the number of entries.
func (l Lookup) Len() int { return len(l.keys) }

// LoadLookup reads a flat JSON object of strings.
func LoadLookup(r io.Reader) (Lookup, error) {
	v, err := decodeValue(newDecoder(r))
	if err != nil {
		return Lookup{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	obj, ok := v.(*object)
	if !ok {
		return Lookup{}, errors.New(errors.ErrCodeInvalidFormat, "expected a JSON object")
	}
	l := Lookup{m: make(map[string]string, len(obj.keys))}
	for _, k := range obj.keys {
		l.set(k, rawString(obj.vals[k]))
	}
	return l, nil
}

// Loader resolves data sources that may be local paths or http(s) URLs.
type Loader struct {
	// Fetcher serves URL sources. Nil means URLs are fetched uncached.
	Fetcher *httputil.Fetcher
	// Refresh bypasses cached URL bodies.
	Refresh bool
}

// DefaultLoader is used by the package-level Load functions.
var DefaultLoader = &Loader{}

// Read returns the raw bytes of src.
func (l *Loader) Read(ctx context.Context, src string) ([]byte, error) {
	if errors.IsURL(src) {
		f := l.Fetcher
		if f == nil {
			f = httputil.NewFetcher(nil, nil)
		}
		return f.Fetch(ctx, src, l.Refresh)
	}
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "data source %s not found", src)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", src)
	}
	return data, nil
}

// Table loads a CSV or JSON table, chosen by the extension of src.
func (l *Loader) Table(ctx context.Context, src string, s Schema) (Table, error) {
	if err := s.Validate(); err != nil {
		return Table{}, err
	}
	data, err := l.Read(ctx, src)
	if err != nil {
		return Table{}, err
	}
	switch ext(src) {
	case ".csv":
		return LoadCSV(bytes.NewReader(data), s)
	case ".json":
		return LoadJSON(bytes.NewReader(data), s)
	}
	return Table{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported data format %q", ext(src))
}

// Groups loads an object-of-arrays JSON source.
func (l *Loader) Groups(ctx context.Context, src string, s Schema) (Groups, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := l.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	return LoadJSONGroups(bytes.NewReader(data), s)
}

// Nested loads an array-of-frames JSON source.
func (l *Loader) Nested(ctx context.Context, src string, s Schema, keyField, rowsField string) (Groups, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := l.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	return LoadJSONNested(bytes.NewReader(data), s, keyField, rowsField)
}

// Lookup loads a flat JSON object of strings.
func (l *Loader) Lookup(ctx context.Context, src string) (Lookup, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return Lookup{}, err
	}
	return LoadLookup(bytes.NewReader(data))
}

// Load reads src with [DefaultLoader].
func Load(ctx context.Context, src string, s Schema) (Table, error) {
	return DefaultLoader.Table(ctx, src, s)
}

func ext(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 && errors.IsURL(src) {
		src = src[:i]
	}
	return strings.ToLower(filepath.Ext(src))
}

func tableFromObjects(arr []any, s Schema) (Table, error) {
	var t Table
	seen := map[string]bool{}
	for i, item := range arr {
		obj, ok := item.(*object)
		if !ok {
			return Table{}, &errors.RowError{Row: i + 1, Field: "", Value: fmt.Sprint(item), Err: fmt.Errorf("not an object")}
		}
		raw := make([]rawField, 0, len(obj.keys))
		for _, k := range obj.keys {
			if !seen[k] {
				seen[k] = true
				t.Columns = append(t.Columns, k)
			}
			v := obj.vals[k]
			switch v.(type) {
			case []any, *object:
				continue
			}
			raw = append(raw, rawField{name: k, val: v})
		}
		rec, keep, err := s.coerce(i+1, raw)
		if err != nil {
			return Table{}, err
		}
		if keep {
			t.Rows = append(t.Rows, rec)
		}
	}
	return t, nil
}

// object is a decoded JSON object that remembers key order.
type object struct {
	keys []string
	vals map[string]any
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// decodeValue reads one JSON value, returning *object for objects, []any for
// arrays and string, json.Number, bool or nil for scalars.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '{':
			obj := &object{vals: map[string]any{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, dup := obj.vals[k]; !dup {
					obj.keys = append(obj.keys, k)
				}
				obj.vals[k] = v
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", tok)
	}
	return tok, nil
}
