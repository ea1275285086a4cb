package cli

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/config"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/render/sink"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   []string
		want  []string
	}{
		{"empty uses default", "", []string{"svg"}, []string{"svg"}},
		{"single format", "png", []string{"svg"}, []string{"png"}},
		{"multiple formats", "svg,png,dot", nil, []string{"svg", "png", "dot"}},
		{"empty without default", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input, tt.def)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestToFormats(t *testing.T) {
	got, err := toFormats([]string{"svg", "graph"})
	if err != nil {
		t.Fatalf("toFormats() error: %v", err)
	}
	if want := []sink.Format{sink.FormatSVG, sink.FormatGraph}; !cmp.Equal(got, want) {
		t.Errorf("toFormats() = %v, want %v", got, want)
	}

	_, err = toFormats([]string{"svg", "pdf"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("toFormats(pdf) error = %v, want INVALID_FORMAT", err)
	}
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"single", []string{"metric=profit"}, map[string]string{"metric": "profit"}, false},
		{"later wins", []string{"coin=btc", "coin=eth"}, map[string]string{"coin": "eth"}, false},
		{"value with equals", []string{"q=a=b"}, map[string]string{"q": "a=b"}, false},
		{"empty value", []string{"country="}, map[string]string{"country": ""}, false},
		{"missing equals", []string{"metric"}, nil, true},
		{"missing key", []string{"=profit"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments("select", tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAssignments(%v) error = %v, wantErr %v", tt.pairs, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error code = %s, want INVALID_INPUT", errors.GetCode(err))
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseAssignments(%v) mismatch (-want +got):\n%s", tt.pairs, diff)
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"top=5", "speed=-2.5"})
	if err != nil {
		t.Fatalf("parseParams() error: %v", err)
	}
	if diff := cmp.Diff(map[string]float64{"top": 5, "speed": -2.5}, got); diff != "" {
		t.Errorf("parseParams() mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseParams([]string{"top=five"}); err == nil || !strings.Contains(err.Error(), "top") {
		t.Errorf("parseParams(top=five) error = %v, want error naming top", err)
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Title: "Gallery",
		Charts: []chart.Config{
			{Name: "revenue", Kind: chart.Bar, Sources: map[string]string{"data": "revenues.csv"}},
			{Name: "wheel", Kind: chart.Pie, Params: map[string]float64{"speed": 10}},
		},
	}
}

func TestSelectCharts(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		names   []string
		opts    renderOpts
		want    []string
		wantErr errors.Code
	}{
		{"all", nil, renderOpts{}, []string{"revenue", "wheel"}, ""},
		{"named", []string{"wheel"}, renderOpts{}, []string{"wheel"}, ""},
		{"missing", []string{"nope"}, renderOpts{}, nil, errors.ErrCodeNotFound},
		{"ad hoc", nil, renderOpts{kind: "line", data: "prices.csv"}, []string{"line"}, ""},
		{"ad hoc named", []string{"prices"}, renderOpts{kind: "line"}, []string{"prices"}, ""},
		{"bad kind", nil, renderOpts{kind: "radar"}, nil, errors.ErrCodeInvalidChart},
		{"bad select", nil, renderOpts{selects: []string{"metric"}}, nil, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectCharts(cfg, tt.names, tt.opts)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("selectCharts() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectCharts() error: %v", err)
			}
			var names []string
			for _, cc := range got {
				names = append(names, cc.Name)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("selectCharts() names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectChartsAdHocSource(t *testing.T) {
	got, err := selectCharts(testConfig(), nil, renderOpts{kind: "bar", data: "sales.csv", width: 400})
	if err != nil {
		t.Fatalf("selectCharts() error: %v", err)
	}
	if got[0].Kind != chart.Bar || got[0].Source("data") != "sales.csv" || got[0].Width != 400 {
		t.Errorf("selectCharts() = %+v, want bar chart on sales.csv, width 400", got[0])
	}
}

func TestOverride(t *testing.T) {
	base := chart.Config{
		Name:     "wheel",
		Width:    600,
		Selected: map[string]string{"direction": "left"},
		Params:   map[string]float64{"speed": 10, "slices": 2},
	}
	got := override(base, map[string]string{"direction": "right"}, map[string]float64{"speed": 3}, 0, 300)

	want := chart.Config{
		Name:     "wheel",
		Width:    600,
		Height:   300,
		Selected: map[string]string{"direction": "right"},
		Params:   map[string]float64{"speed": 3, "slices": 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("override() mismatch (-want +got):\n%s", diff)
	}
	if base.Params["speed"] != 10 || base.Selected["direction"] != "left" {
		t.Error("override() modified the gallery config")
	}
}

func TestTitleOf(t *testing.T) {
	cc := chart.Config{Name: "revenue"}
	if got := titleOf(&config.Config{Title: "Gallery"}, cc); got != "Gallery - revenue" {
		t.Errorf("titleOf() = %q, want %q", got, "Gallery - revenue")
	}
	if got := titleOf(&config.Config{}, cc); got != "revenue" {
		t.Errorf("titleOf() without title = %q, want %q", got, "revenue")
	}
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		rows   int
		kind   string
		cached bool
		want   []string
	}{
		{1200, "bar", false, []string{"bar", "1,200 rows", iconFresh}},
		{0, "pie", true, []string{"pie", iconCached}},
		{0, "", false, []string{iconFresh}},
	}

	for _, tt := range tests {
		got := statsLine(tt.rows, tt.kind, tt.cached)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("statsLine(%d, %q, %v) = %q, want it to contain %q", tt.rows, tt.kind, tt.cached, got, w)
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"a longer title", 8, "a longe…"},
		{"trailing space here", 9, "trailing…"},
		{"naïve café", 5, "naïv…"},
		{"abc", 1, "a"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestListenURL(t *testing.T) {
	if got := listenURL(":8080"); got != "http://localhost:8080" {
		t.Errorf("listenURL(:8080) = %q", got)
	}
	if got := listenURL("127.0.0.1:9000"); got != "http://127.0.0.1:9000" {
		t.Errorf("listenURL(127.0.0.1:9000) = %q", got)
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg", "png", "json", "dot", "graph"}},
		{"svg,", []string{"svg,png", "svg,json", "svg,dot", "svg,graph"}},
		{"svg,png,j", []string{"svg,png,json", "svg,png,dot", "svg,png,graph"}},
	}
	for _, tt := range tests {
		got, _ := completeFormats(nil, nil, tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("completeFormats(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
