package sink

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

// stub is a minimal chart with a two-bar scene.
type stub struct {
	root   *scene.Element
	sched  *transition.Scheduler
	series []chart.Series
}

func newStub() *stub {
	root := scene.New("svg")
	root.SetAttr("xmlns", "http://www.w3.org/2000/svg").SetNum("width", 400).SetNum("height", 300)
	g := root.Append("g").SetClass("plot")
	for i, label := range []string{"a", "b"} {
		r := g.Append("rect").SetClass("bar")
		r.Key = label
		r.SetNum("x", float64(i*50)).SetNum("y", 10).SetNum("width", 40).SetNum("height", 100)
	}
	g.Append("text").SetText("A & B <total>")
	return &stub{
		root:  root,
		sched: transition.NewScheduler(),
		series: []chart.Series{{
			Name:   "revenue",
			X:      []float64{0, 1},
			Y:      []float64{120, 80},
			Labels: []string{"a", "b"},
		}},
	}
}

func (s *stub) Name() string                     { return "stub" }
func (s *stub) Kind() chart.Kind                 { return chart.Bar }
func (s *stub) Root() *scene.Element             { return s.root }
func (s *stub) Scheduler() *transition.Scheduler { return s.sched }
func (s *stub) Defaults() view.State             { return view.State{} }
func (s *stub) Update(view.State) error          { return nil }
func (s *stub) Series() []chart.Series           { return s.series }

type graphStub struct{ *stub }

func (graphStub) Graph() chart.Graph {
	return chart.Graph{
		Directed: true,
		Nodes: []chart.GraphNode{
			{ID: "world", Label: "World", Colour: "#A3E7FF"},
			{ID: "world/EU", Label: "Europe", Colour: "#C20000", X: 10, Y: 20},
		},
		Edges: []chart.GraphEdge{{From: "world", To: "world/EU"}},
	}
}

// plain hides the optional interfaces of a chart.
type plain struct{ chart.Chart }

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, newStub().Root(), WithTitle("Revenue")); err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`xmlns="http://www.w3.org/2000/svg"`,
		`<title>Revenue</title>`,
		`<g class="plot" >`,
		`<rect class="bar" x="0" y="10" width="40" height="100"/>`,
		`A &amp; B &lt;total&gt;</text>`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "xmlns=\"http://www.w3.org/2000/svg\""); n != 1 {
		t.Errorf("xmlns count = %d, want 1", n)
	}
}

func TestSVGRejectsNonSVGRoot(t *testing.T) {
	err := SVG(&bytes.Buffer{}, scene.New("g"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SVG(g) error = %v, want INVALID_INPUT", err)
	}
}

func TestSVGAnimation(t *testing.T) {
	s := newStub()
	bars := s.root.Select("rect.bar")
	tr := s.sched.Transition(500 * time.Millisecond)
	tr.AttrNum(bars[0], "height", 200)
	bars[1].SetAttr("fill", "#000000")
	tr.Attr(bars[1], "fill", "#ff0000")
	tr.Attr(s.root.First("g.plot"), "transform", "translate(20,10)")
	tr.Remove(bars[1])

	var buf bytes.Buffer
	if err := SVG(&buf, s.root, WithAnimation(s.sched)); err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`attributeName="height" from="100" to="200" dur="0.5s"`,
		`attributeName="fill" from="#000000" to="#ff0000"`,
		`attributeName="transform" type="translate"`,
		`<set xlink:href="#vz-`,
		`fill="freeze"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("animated SVG missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, `id="vz-`) != 3 {
		t.Errorf("animated elements should each get one generated id:\n%s", out)
	}
}

func TestTransformArgs(t *testing.T) {
	tests := []struct {
		from, to   string
		kind, a, b string
		ok         bool
	}{
		{"translate(0,0)", "translate(20,10)", "translate", "0 0", "20 10", true},
		{"rotate(0)", "rotate(90)", "rotate", "0", "90", true},
		{"translate(0,0)", "rotate(90)", "", "", "", false},
		{"translate(0,0) rotate(3)", "translate(1,1)", "", "", "", false},
	}
	for _, tt := range tests {
		kind, a, b, ok := transformArgs(tt.from, tt.to)
		if kind != tt.kind || a != tt.a || b != tt.b || ok != tt.ok {
			t.Errorf("transformArgs(%q, %q) = %q, %q, %q, %v, want %q, %q, %q, %v",
				tt.from, tt.to, kind, a, b, ok, tt.kind, tt.a, tt.b, tt.ok)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := newStub()
	data, err := JSON(s.Root(), WithJSONKeys())
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	back, err := Scene(data)
	if err != nil {
		t.Fatalf("Scene() error: %v", err)
	}

	var want, got bytes.Buffer
	if err := SVG(&want, s.Root()); err != nil {
		t.Fatal(err)
	}
	if err := SVG(&got, back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want.String(), got.String()); diff != "" {
		t.Errorf("rebuilt scene mismatch (-want +got):\n%s", diff)
	}
	if k := back.Select("rect.bar")[1].Key; k != "b" {
		t.Errorf("Key = %q, want %q", k, "b")
	}
}

func TestSceneRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "{", `{"attrs":{}}`} {
		if _, err := Scene([]byte(in)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Scene(%q) error = %v, want INVALID_FORMAT", in, err)
		}
	}
}

func TestPNG(t *testing.T) {
	tests := []struct {
		name   string
		series []chart.Series
	}{
		{"bars", newStub().series},
		{"time", []chart.Series{{
			Name: "price", Time: true,
			X: []float64{1.6e12, 1.6e12 + 864e5, 1.6e12 + 2*864e5},
			Y: []float64{1, 3, 2},
		}}},
		{"scatter", []chart.Series{
			{Name: "Asia", X: []float64{1, 2}, Y: []float64{3, 4}, Labels: []string{"a", "b"}},
			{Name: "Europe", X: []float64{2, 5}, Y: []float64{1, 6}, Labels: []string{"c", "d"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStub()
			s.series = tt.series
			var buf bytes.Buffer
			if err := PNG(&buf, s); err != nil {
				t.Fatalf("PNG() error: %v", err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("png.Decode() error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
				t.Errorf("size = %dx%d, want 400x300", b.Dx(), b.Dy())
			}
		})
	}
}

func TestPNGUnsupported(t *testing.T) {
	err := PNG(&bytes.Buffer{}, plain{newStub()})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("PNG(non-tabular) error = %v, want UNSUPPORTED", err)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(graphStub{newStub()}.Graph(), DOTOptions{})
	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"world/EU" [label="Europe", fillcolor="#C20000"];`,
		`"world" -> "world/EU";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	pinned := ToDOT(graphStub{newStub()}.Graph(), DOTOptions{Positions: true})
	if !strings.Contains(pinned, `pos="10.00,-20.00!"`) {
		t.Errorf("pinned DOT missing position:\n%s", pinned)
	}

	undirected := ToDOT(chart.Graph{Edges: []chart.GraphEdge{{From: "a", To: "b", Colour: "red"}}}, DOTOptions{})
	if !strings.Contains(undirected, `"a" -- "b" [color="red"];`) {
		t.Errorf("undirected DOT = %s", undirected)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		format Format
		c      chart.Chart
		prefix string
		code   errors.Code
	}{
		{FormatSVG, newStub(), "<?xml", ""},
		{FormatJSON, newStub(), "{", ""},
		{FormatDOT, graphStub{newStub()}, "digraph", ""},
		{FormatDOT, newStub(), "", errors.ErrCodeUnsupported},
		{FormatPNG, plain{newStub()}, "", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			out, err := Render(ctx, tt.c, tt.format, Options{})
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("Render() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !bytes.HasPrefix(out, []byte(tt.prefix)) {
				t.Errorf("Render() = %.40s..., want prefix %q", out, tt.prefix)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		if got, err := ParseFormat(strings.ToUpper(string(f))); err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(pdf) error = %v, want INVALID_FORMAT", err)
	}
	if got := FormatGraph.Extension(); got != "graph.svg" {
		t.Errorf("Extension() = %q, want graph.svg", got)
	}
}
