package cli

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/dataset"
)

const revenuesCSV = `month,revenue,note
January,14000,
February,12000,a fairly long note about February sales
March,9000,
`

func loadRevenues(t *testing.T) dataset.Table {
	t.Helper()
	tbl, err := dataset.LoadCSV(strings.NewReader(revenuesCSV), dataset.Schema{Numbers: []string{"revenue"}})
	if err != nil {
		t.Fatalf("LoadCSV() error: %v", err)
	}
	return tbl
}

func TestColumnSummary(t *testing.T) {
	got := columnSummary(loadRevenues(t))
	want := [][]string{
		{"month", "string", ""},
		{"revenue", "number", "9K … 14K"},
		{"note", "string", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columnSummary() mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRows(t *testing.T) {
	got := tableRows(loadRevenues(t), 2)
	if len(got) != 2 {
		t.Fatalf("tableRows() returned %d rows, want 2", len(got))
	}
	if got[0][0] != "January" || got[0][1] != "14000" {
		t.Errorf("first row = %v, want January 14000", got[0])
	}
	if n := len([]rune(got[1][2])); n != 24 || !strings.HasSuffix(got[1][2], "…") {
		t.Errorf("long note = %q, want it truncated to 24 runes", got[1][2])
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]int{"data": 1, "continents": 2, "codes": 3})
	if diff := cmp.Diff([]string{"codes", "continents", "data"}, got); diff != "" {
		t.Errorf("sortedKeys() mismatch (-want +got):\n%s", diff)
	}
}
