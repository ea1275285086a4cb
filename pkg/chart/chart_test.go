package chart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/view"
)

var fixtures = map[string]string{
	"revenues.csv": `month,revenue,profit
January,14000,8000
February,12000,7000
March,9000,5000
`,
	"population.csv": `country,country_code,continent_code,1950,1960,1970
China,CHN,AS,554,660,820
India,IND,AS,376,450,555
United States,USA,NA,158,186,209
Germany,DEU,EU,70,73,78
Nigeria,NGA,AF,37,45,56
Brazil,BRA,SA,53,72,95
`,
	"continents.json": `{"AF":"Africa","NA":"North America","OC":"Oceania","AS":"Asia","EU":"Europe","SA":"South America"}`,
	"coins.json": `{
  "bitcoin": [
    {"date":"01/01/2020","price_usd":7200,"market_cap":130000000000,"24h_vol":20000000000},
    {"date":"02/01/2020","price_usd":7350,"market_cap":133000000000,"24h_vol":21000000000},
    {"date":"03/01/2020","price_usd":6950,"market_cap":127000000000,"24h_vol":19000000000}
  ],
  "ethereum": [
    {"date":"01/01/2020","price_usd":130,"market_cap":14000000000,"24h_vol":7000000000},
    {"date":"02/01/2020","price_usd":127,"market_cap":13800000000,"24h_vol":6500000000}
  ]
}`,
	"growth.csv": `country,1960,1961,1962
Austria,0.2,0.4,0.5
Chile,2.5,2.4,2.3
`,
	"gapminder.json": `[
  {"year":"1800","countries":[
    {"continent":"europe","country":"Austria","income":1000,"life_exp":40,"population":3000000},
    {"continent":"asia","country":"China","income":600,"life_exp":32,"population":320000000}
  ]},
  {"year":"1801","countries":[
    {"continent":"europe","country":"Austria","income":1010,"life_exp":40.5,"population":3010000},
    {"continent":"asia","country":"China","income":605,"life_exp":32.1,"population":321000000}
  ]}
]`,
	"countries.csv": `country,continent_code,region_code,population,urban_population,land_area,density
China,AS,EAS,1439323776,61%,9388211,153
Japan,AS,EAS,126476461,92%,364555,347
India,AS,SAS,1380004385,35%,2973190,464
Germany,EU,WEU,83783942,76%,348560,240
Monaco,EU,WEU,39242,N.A.,1,26337
`,
	"regions.json":       `{"EAS":"Eastern Asia","SAS":"Southern Asia","WEU":"Western Europe"}`,
	"country-names.json": `{"CN":"China","DE":"Germany","FR":"France"}`,
	"capitals.json":      `{"CN":"Beijing","DE":"Berlin","FR":"Paris"}`,
	"currencies.json":    `{"CN":"CNY","DE":"EUR","FR":"EUR"}`,
	"phones.json":        `{"CN":"86","DE":"49","FR":"33"}`,
	"placement.json":     `{"CN":"AS","DE":"EU","FR":"EU"}`,
	"subway.csv": `start,stop,line,color
Karlsplatz,Stephansplatz,1,#E20613
Stephansplatz,Schwedenplatz,1,#E20613
Karlsplatz,Volkstheater,2,#A862A4
Stephansplatz,Volkstheater,3,#EE7203
Karlsplatz,Pilgramgasse,4,#019A3E
`,
}

// fixtureDir writes the test data sets to a temporary directory.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func configs(dir string) map[Kind]Config {
	p := func(name string) string { return filepath.Join(dir, name) }
	population := map[string]string{"data": p("population.csv"), "continents": p("continents.json")}
	countries := map[string]string{"data": p("countries.csv"), "continents": p("continents.json"), "regions": p("regions.json")}
	return map[Kind]Config{
		Bar:      {Kind: Bar, Sources: map[string]string{"data": p("revenues.csv")}},
		HBar:     {Kind: HBar, Sources: population},
		Line:     {Kind: Line, Sources: map[string]string{"data": p("coins.json")}},
		Timeline: {Kind: Timeline, Sources: population},
		Area:     {Kind: Area, Sources: map[string]string{"data": p("growth.csv")}},
		Stacked:  {Kind: Stacked, Sources: population},
		Pie:      {Kind: Pie},
		Scatter:  {Kind: Scatter, Sources: map[string]string{"data": p("gapminder.json")}},
		Treemap:  {Kind: Treemap, Sources: population},
		Sunburst: {Kind: Sunburst, Sources: countries},
		Pack:     {Kind: Pack, Sources: countries},
		Tree: {Kind: Tree, Sources: map[string]string{
			"continents":        p("continents.json"),
			"countries":         p("country-names.json"),
			"capitals":          p("capitals.json"),
			"currencies":        p("currencies.json"),
			"phones":            p("phones.json"),
			"country_continent": p("placement.json"),
		}},
		NodeLink: {Kind: NodeLink, Sources: map[string]string{"data": p("subway.csv")}},
	}
}

func open(t *testing.T, kind Kind) Chart {
	t.Helper()
	c, err := Open(context.Background(), nil, configs(fixtureDir(t))[kind])
	if err != nil {
		t.Fatalf("Open(%s): %v", kind, err)
	}
	return c
}

func TestOpenEveryKind(t *testing.T) {
	tests := []struct {
		kind     Kind
		selector string
		want     int
	}{
		{Bar, "rect.bar", 3},
		{HBar, "rect.bar", 5},
		{Line, "path.line", 1},
		{Timeline, "rect.selection", 1},
		{Area, "path.area", 1},
		{Stacked, "g.layer", 6},
		{Pie, "path.arc", 2},
		{Scatter, "circle.country", 2},
		{Treemap, "g.cell", 6},
		{Sunburst, "path.sector", 1 + 2 + 3 + 5},
		{Pack, "g.node", 1 + 2 + 5},
		{Tree, "g.node", 1 + 2 + 3},
		{NodeLink, "circle.station", 5},
	}
	dir := fixtureDir(t)
	cfgs := configs(dir)
	if len(tests) != len(Kinds()) {
		t.Fatalf("tested %d kinds, registry has %d", len(tests), len(Kinds()))
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, err := Open(context.Background(), nil, cfgs[tt.kind])
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if c.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", c.Kind(), tt.kind)
			}
			if c.Root().Tag != "svg" {
				t.Errorf("root tag = %q, want svg", c.Root().Tag)
			}
			if got := c.Root().Count(tt.selector); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.selector, got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("treemap"); err != nil || k != Treemap {
		t.Errorf("ParseKind(treemap) = %q, %v", k, err)
	}
	if _, err := ParseKind("radar"); !errors.Is(err, errors.ErrCodeInvalidChart) {
		t.Errorf("ParseKind(radar) error = %v, want INVALID_CHART", err)
	}
}

func TestMissingSource(t *testing.T) {
	_, err := Open(context.Background(), nil, Config{Kind: Bar})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open without data error = %v, want INVALID_INPUT", err)
	}
}

func TestBarMetricToggleKeepsBars(t *testing.T) {
	c := open(t, Bar)
	before := c.Root().Select("rect.bar")
	s := c.Defaults().With("metric", "profit")
	if err := c.Update(s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	c.Scheduler().Flush()
	after := c.Root().Select("rect.bar")
	if len(after) != len(before) {
		t.Fatalf("bars = %d, want %d", len(after), len(before))
	}
	for i := range after {
		if after[i] != before[i] {
			t.Errorf("bar %d was replaced", i)
		}
	}
	if err := c.Update(c.Defaults().With("metric", "loss")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown metric error = %v, want INVALID_INPUT", err)
	}
}

func TestTreemapFilters(t *testing.T) {
	c := open(t, Treemap)
	tests := []struct {
		continent, countries string
		want                 []string
	}{
		// Cells keep the document order they entered in.
		{"all", "all", []string{"China", "India", "United States", "Germany", "Brazil", "Nigeria"}},
		{"AS", "all", []string{"China", "India"}},
		{"all", "2", []string{"China", "India"}},
		{"EU", "all", []string{"Germany"}},
	}
	for _, tt := range tests {
		s := c.Defaults().With("continent", tt.continent).With("countries", tt.countries)
		s.Frame = 2
		if err := c.Update(s); err != nil {
			t.Fatalf("Update(%s, %s): %v", tt.continent, tt.countries, err)
		}
		c.Scheduler().Flush()
		var got []string
		for _, cell := range c.Root().Select("g.cell") {
			got = append(got, cell.Key)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("cells for %s/%s (-want +got):\n%s", tt.continent, tt.countries, diff)
		}
	}
	if err := c.Update(c.Defaults().With("countries", "many")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("countries=many error = %v, want INVALID_INPUT", err)
	}
	caption := c.Root().First("text.population-text")
	if caption == nil || caption.Text == "" {
		t.Errorf("missing population caption")
	}
}

func TestPieWheel(t *testing.T) {
	c := open(t, Pie)
	s := c.Defaults().WithParam("slices", 8)
	if err := c.Update(s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := c.Root().Count("path.arc"); got != 8 {
		t.Errorf("slices = %d, want 8", got)
	}
	for _, tt := range []struct {
		name string
		s    view.State
	}{
		{"one slice", c.Defaults().WithParam("slices", 1)},
		{"inner radius", c.Defaults().WithParam("inner_radius", 1000)},
	} {
		if err := c.Update(tt.s); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%s: error = %v, want INVALID_INPUT", tt.name, err)
		}
	}
}

func TestStackedBrushSync(t *testing.T) {
	c := open(t, Stacked).(*stackedChart)
	got := c.Sync(view.Brush{Empty: true, Source: view.User}, c.Defaults())
	want := []view.Msg{view.SetRange{Min: 1950, Max: 1970, Source: view.Programmatic}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sync(empty brush) (-want +got):\n%s", diff)
	}
	back := c.Sync(view.SetRange{Min: 1950, Max: 1970, Source: view.User}, c.Defaults())
	if len(back) != 1 {
		t.Fatalf("Sync(range) = %v, want one brush", back)
	}
	b, ok := back[0].(view.Brush)
	if !ok || b.Source != view.Programmatic || b.X0 != 0 || b.X1 != c.tv.w {
		t.Errorf("Sync(range) = %+v, want full-width programmatic brush", back[0])
	}
}

func TestSunburstHover(t *testing.T) {
	c := open(t, Sunburst)
	s := c.Defaults()
	s.Tooltip = tooltip.State{Phase: tooltip.Shown, X: 600, Y: 375}
	if err := c.Update(s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	text := c.Root().First("g.info").Children[1]
	if text.Text != "Planet: Earth" {
		t.Errorf("hover = %q, want Planet: Earth", text.Text)
	}
	if err := c.Update(c.Defaults().With("option", "height")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("option=height error = %v, want INVALID_INPUT", err)
	}
}

func TestPackLabelsLargeLeavesOnly(t *testing.T) {
	c := open(t, Pack)
	for _, n := range c.Root().Select("g.node-leaf") {
		text := n.Children[1]
		r, _ := n.Children[0].Attr("r")
		if text.Text != "" && r == "0" {
			t.Errorf("leaf %s labelled with zero radius", n.Key)
		}
	}
	if got := c.(*packChart).at(-10, -10); got != nil {
		t.Errorf("at(-10, -10) = %s, want nothing", got.ID)
	}
}

func TestTreeGraph(t *testing.T) {
	c := open(t, Tree)
	g := c.(Graphical).Graph()
	if len(g.Nodes) != 6 || len(g.Edges) != 5 {
		t.Fatalf("graph = %d nodes / %d edges, want 6 / 5", len(g.Nodes), len(g.Edges))
	}
	labels := map[string]string{}
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}
	if got := labels["World/EU"]; got != "Europe" {
		t.Errorf("label of World/EU = %q, want Europe", got)
	}
}

func TestNodeLinkDrag(t *testing.T) {
	c := open(t, NodeLink)
	nl := c.(*nodeLinkChart)
	s := c.Defaults()
	s.Drag = view.DragState{ID: "Karlsplatz", X: 100, Y: 120, Active: true}
	if err := c.Update(s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	n := nl.byID["Karlsplatz"].node
	if !n.Fixed() || n.X != 100 || n.Y != 120 {
		t.Errorf("dragged node = (%g, %g) fixed=%v, want (100, 120) fixed", n.X, n.Y, n.Fixed())
	}
	if nl.sim.AlphaTarget() != dragAlpha {
		t.Errorf("alpha target = %g, want %g", nl.sim.AlphaTarget(), dragAlpha)
	}

	s.Drag.Active = false
	if err := c.Update(s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n.Fixed() || nl.sim.AlphaTarget() != 0 {
		t.Errorf("released node fixed=%v alpha target=%g", n.Fixed(), nl.sim.AlphaTarget())
	}

	s.Drag = view.DragState{ID: "Nowhere", Active: true}
	if err := c.Update(s); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown station error = %v, want NOT_FOUND", err)
	}
}

func TestSeries(t *testing.T) {
	c := open(t, Line)
	series := c.(Tabular).Series()
	if len(series) != 1 || !series[0].Time {
		t.Fatalf("Series() = %+v, want one time series", series)
	}
	if diff := cmp.Diff([]float64{7200, 7350, 6950}, series[0].Y); diff != "" {
		t.Errorf("bitcoin prices (-want +got):\n%s", diff)
	}
}
