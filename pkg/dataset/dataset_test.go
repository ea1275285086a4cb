package dataset

import (
	"context"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/errors"
)

const revenues = `month,revenue,profit
January,13432,8342
February,19342,10342
March,17443,15423
`

func TestLoadCSV(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader(revenues), Schema{Numbers: []string{"revenue", "profit"}})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"month", "revenue", "profit"}, tbl.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	if got := tbl.Rows[1].Num("revenue"); got != 19342 {
		t.Errorf("February revenue = %v, want 19342", got)
	}
	if got := tbl.Rows[0].Str("month"); got != "January" {
		t.Errorf("month = %q, want January", got)
	}
	if v, _ := tbl.Rows[0].Get("month"); v.Kind() != String {
		t.Errorf("month kind = %v, want string", v.Kind())
	}
}

func TestLoadCSV_Coercion(t *testing.T) {
	const in = `country,continent_code,population,urban_population,land_area
China,AS,1439323776,61%,9388211
Holy See,EU,801,N.A.,0
Nowhere,,,,
`
	s := Schema{
		Required: []string{"continent_code"},
		Numbers:  []string{"population", "land_area"},
		Percent:  []string{"urban_population"},
	}
	tbl, err := LoadCSV(strings.NewReader(in), s)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (row without continent dropped)", tbl.Len())
	}
	tests := []struct {
		row   int
		field string
		want  float64
	}{
		{0, "urban_population", 61},
		{0, "population", 1439323776},
		{1, "urban_population", 0},
		{1, "population", 801},
	}
	for _, tt := range tests {
		if got := tbl.Rows[tt.row].Num(tt.field); got != tt.want {
			t.Errorf("row %d %s = %v, want %v", tt.row, tt.field, got, tt.want)
		}
	}
}

func TestLoadCSV_MalformedNumber(t *testing.T) {
	const in = "month,revenue\nJanuary,100\nFebruary,lots\n"
	_, err := LoadCSV(strings.NewReader(in), Schema{Numbers: []string{"revenue"}})
	var rowErr *errors.RowError
	if !stderrors.As(err, &rowErr) {
		t.Fatalf("LoadCSV error = %v, want *RowError", err)
	}
	if rowErr.Row != 2 || rowErr.Field != "revenue" || rowErr.Value != "lots" {
		t.Errorf("RowError = %+v, want row 2 field revenue value lots", rowErr)
	}
	if rowErr.Code() != errors.ErrCodeMalformedRow {
		t.Errorf("Code = %v, want %v", rowErr.Code(), errors.ErrCodeMalformedRow)
	}
}

func TestLoadCSV_Dates(t *testing.T) {
	const in = "date,price_usd\n17/12/2017,19000\n"
	tbl, err := LoadCSV(strings.NewReader(in), Schema{
		Dates:   map[string]string{"date": "%d/%m/%Y"},
		Numbers: []string{"price_usd"},
	})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	want := time.Date(2017, 12, 17, 0, 0, 0, 0, time.UTC)
	if got := tbl.Rows[0].Time("date"); !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}

	_, err = LoadCSV(strings.NewReader("date\n2017-12-17\n"), Schema{Dates: map[string]string{"date": "%d/%m/%Y"}})
	var rowErr *errors.RowError
	if !stderrors.As(err, &rowErr) || rowErr.Field != "date" {
		t.Errorf("bad date error = %v, want RowError on date", err)
	}
}

func TestLoadJSONGroups(t *testing.T) {
	const in = `{
		"bitcoin": [
			{"24h_vol": "1000", "date": "12/5/2013", "market_cap": "2000", "price_usd": "118.5"},
			{"24h_vol": null, "date": "13/5/2013", "market_cap": "2100", "price_usd": "119"}
		],
		"ethereum": [
			{"24h_vol": "50", "date": "7/8/2015", "market_cap": "70", "price_usd": 2.77}
		]
	}`
	s := Schema{
		Required: []string{"24h_vol", "market_cap", "price_usd"},
		Numbers:  []string{"24h_vol", "market_cap", "price_usd"},
		Dates:    map[string]string{"date": "%d/%m/%Y"},
	}
	groups, err := LoadJSONGroups(strings.NewReader(in), s)
	if err != nil {
		t.Fatalf("LoadJSONGroups: %v", err)
	}
	if diff := cmp.Diff([]string{"bitcoin", "ethereum"}, groups.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	btc, _ := groups.Get("bitcoin")
	if btc.Len() != 1 {
		t.Errorf("bitcoin rows = %d, want 1 (null volume dropped)", btc.Len())
	}
	eth, _ := groups.Get("ethereum")
	if got := eth.Rows[0].Num("price_usd"); got != 2.77 {
		t.Errorf("ethereum price = %v, want 2.77", got)
	}
}

func TestLoadJSONNested(t *testing.T) {
	const in = `[
		{"year": "1800", "countries": [
			{"continent": "europe", "country": "Austria", "income": 1000, "life_exp": 30, "population": 3000000},
			{"continent": "asia", "country": "Nowhere", "income": null, "life_exp": 30, "population": 1}
		]},
		{"year": "1801", "countries": []}
	]`
	s := Schema{Required: []string{"income", "life_exp"}, Numbers: []string{"income", "life_exp", "population"}}
	frames, err := LoadJSONNested(strings.NewReader(in), s, "year", "countries")
	if err != nil {
		t.Fatalf("LoadJSONNested: %v", err)
	}
	if diff := cmp.Diff([]string{"1800", "1801"}, frames.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if got := frames[0].Table.Len(); got != 1 {
		t.Errorf("1800 rows = %d, want 1", got)
	}
	if got := frames[1].Table.Len(); got != 0 {
		t.Errorf("1801 rows = %d, want 0", got)
	}
}

func TestLoadLookup(t *testing.T) {
	l, err := LoadLookup(strings.NewReader(`{"EU": "Europe", "AF": "Africa", "AS": "Asia"}`))
	if err != nil {
		t.Fatalf("LoadLookup: %v", err)
	}
	if diff := cmp.Diff([]string{"EU", "AF", "AS"}, l.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if got := l.Get("AF"); got != "Africa" {
		t.Errorf("Get(AF) = %q, want Africa", got)
	}
	if got := l.Get("XX"); got != "XX" {
		t.Errorf("Get(XX) = %q, want XX", got)
	}
}

func TestTableOps(t *testing.T) {
	tbl, _ := LoadCSV(strings.NewReader(revenues), Schema{Numbers: []string{"revenue", "profit"}})

	lo, hi, ok := tbl.Extent("revenue")
	if !ok || lo != 13432 || hi != 19342 {
		t.Errorf("Extent = %v, %v, %v; want 13432, 19342, true", lo, hi, ok)
	}
	if _, _, ok := tbl.Extent("month"); ok {
		t.Error("Extent(month) ok = true, want false")
	}

	sorted := tbl.SortDesc("profit")
	if diff := cmp.Diff([]string{"March", "February", "January"}, sorted.Strings("month")); diff != "" {
		t.Errorf("SortDesc mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Strings("month")[0]; got != "January" {
		t.Errorf("Sort modified the receiver: first month = %q", got)
	}

	between := tbl.Between("revenue", Num(13432), Num(17443))
	if diff := cmp.Diff([]string{"January", "March"}, between.Strings("month")); diff != "" {
		t.Errorf("Between mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.Head(2).Len(); got != 2 {
		t.Errorf("Head(2).Len = %d, want 2", got)
	}
	if got := tbl.Head(10).Len(); got != 3 {
		t.Errorf("Head(10).Len = %d, want 3", got)
	}
	if got := tbl.Sum("profit"); got != 34107 {
		t.Errorf("Sum(profit) = %v, want 34107", got)
	}
}

func TestGroupBy(t *testing.T) {
	const in = "country,continent_code\nEgypt,AF\nFrance,EU\nKenya,AF\nSpain,EU\nChile,SA\n"
	tbl, _ := LoadCSV(strings.NewReader(in), Schema{})
	groups := GroupBy(tbl, "continent_code")
	if diff := cmp.Diff([]string{"AF", "EU", "SA"}, groups.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	af, _ := groups.Get("AF")
	if diff := cmp.Diff([]string{"Egypt", "Kenya"}, af.Strings("country")); diff != "" {
		t.Errorf("AF mismatch (-want +got):\n%s", diff)
	}
}

func TestPivot(t *testing.T) {
	const in = `country,country_code,continent_code,1950,1951
China,156,AS,554419,568910
India,356,AS,376325,382377
Russia,643,EU,102799,104306
`
	tbl, err := LoadCSV(strings.NewReader(in), Schema{})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	years, err := Pivot(tbl, PivotOptions{
		ID:    []string{"country_code"},
		Keep:  []string{"country", "continent_code:continent"},
		Key:   "year",
		Value: "population",
	})
	if err != nil {
		t.Fatalf("Pivot: %v", err)
	}
	if diff := cmp.Diff([]string{"1950", "1951"}, years.Keys()); diff != "" {
		t.Fatalf("Keys mismatch (-want +got):\n%s", diff)
	}
	y1950 := years[0].Table
	if diff := cmp.Diff([]string{"country", "continent", "population", "year"}, y1950.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"China", "India", "Russia"}, y1950.Strings("country")); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got := y1950.Rows[2].Str("continent"); got != "EU" {
		t.Errorf("continent = %q, want EU", got)
	}
	if got := y1950.Rows[0].Str("year"); got != "1950" {
		t.Errorf("year = %q, want 1950", got)
	}

	bad, _ := LoadCSV(strings.NewReader("country,1950\nChina,many\n"), Schema{})
	if _, err := Pivot(bad, PivotOptions{Keep: []string{"country"}}); err == nil {
		t.Error("Pivot with non-numeric measurement succeeded, want error")
	}
}

func TestRecordWith(t *testing.T) {
	r := NewRecord([]string{"a"}, []Value{Num(1)})
	r2 := r.With("b", Str("x"))
	if r.Len() != 1 || r2.Len() != 2 {
		t.Errorf("Len = %d, %d; want 1, 2", r.Len(), r2.Len())
	}
	if !math.IsNaN(r.Num("b")) {
		t.Error("With modified the original record")
	}
	got, err := r2.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if want := `{"a":1,"b":"x"}`; string(got) != want {
		t.Errorf("MarshalJSON = %s, want %s", got, want)
	}
}

func TestLoaderLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "revenues.csv")
	if err := os.WriteFile(path, []byte(revenues), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	tbl, err := Load(ctx, path, Schema{Numbers: []string{"revenue"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len = %d, want 3", tbl.Len())
	}

	_, err = Load(ctx, filepath.Join(dir, "missing.csv"), Schema{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}

	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("x"), 0o644)
	if _, err := Load(ctx, txt, Schema{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("txt error = %v, want INVALID_FORMAT", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		ok     bool
	}{
		{"empty", Schema{}, true},
		{"coin metrics", Schema{Numbers: []string{"price_usd", "24h_vol"}, Dates: map[string]string{"date": "%d/%m/%Y"}}, true},
		{"blank required", Schema{Required: []string{"month", " "}}, false},
		{"control char in date field", Schema{Dates: map[string]string{"da\x00te": "%Y"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok %v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidField) {
				t.Errorf("Validate() code = %s, want INVALID_FIELD", errors.GetCode(err))
			}
		})
	}
}
