package axis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
)

func labels(g *scene.Element) []string {
	var out []string
	for _, t := range g.Select("g.tick") {
		out = append(out, t.Children[1].Text)
	}
	return out
}

func TestContinuousTicks(t *testing.T) {
	y := scale.NewLinear().SetDomain(0, 100).SetRange(0, 500)
	a := New(Bottom, Continuous(y))
	want := []Tick{
		{0, 0, "0"}, {20, 100, "20"}, {40, 200, "40"},
		{60, 300, "60"}, {80, 400, "80"}, {100, 500, "100"},
	}
	if diff := cmp.Diff(want, a.Ticks()); diff != "" {
		t.Errorf("Ticks mismatch (-want +got):\n%s", diff)
	}

	a.TickValues = []float64{400, 4000}
	a.Format = format.Currency
	got := a.Ticks()
	if got[0].Label != "$400" || got[1].Label != "$4000" {
		t.Errorf("labels = %q %q, want $400 $4000", got[0].Label, got[1].Label)
	}
}

func TestRenderBottom(t *testing.T) {
	x := scale.NewLinear().SetDomain(0, 100).SetRange(0, 500)
	g := scene.New("g")
	New(Bottom, Continuous(x)).Render(g, nil)

	if d, _ := g.First("path.domain").Attr("d"); d != "M0,6V0H500V6" {
		t.Errorf("domain d = %q, want M0,6V0H500V6", d)
	}
	ticks := g.Select("g.tick")
	if len(ticks) != 6 {
		t.Fatalf("ticks = %d, want 6", len(ticks))
	}
	if tf, _ := ticks[1].Attr("transform"); tf != "translate(100,0)" {
		t.Errorf("tick 20 transform = %q, want translate(100,0)", tf)
	}
	if op, _ := ticks[1].Attr("opacity"); op != "1" {
		t.Errorf("tick opacity = %q, want 1", op)
	}
	text := ticks[1].Children[1]
	if text.Num("y") != 9 {
		t.Errorf("label y = %v, want 9", text.Num("y"))
	}
	if anchor, _ := g.Attr("text-anchor"); anchor != "middle" {
		t.Errorf("text-anchor = %q, want middle", anchor)
	}
}

func TestRenderJoinsTicksByLabel(t *testing.T) {
	sched := transition.NewScheduler()
	x := scale.NewLinear().SetDomain(0, 100).SetRange(0, 500)
	a := New(Bottom, Continuous(x))
	g := scene.New("g")
	a.Render(g, nil)
	twenty := g.ByKey("20")

	x.SetDomain(0, 50)
	a.Render(g, sched.Transition(750*time.Millisecond))
	if got := g.Count("g.tick"); got != 9 {
		t.Errorf("ticks during transition = %d, want 9 (6 live + 3 exiting)", got)
	}
	sched.Flush()

	if diff := cmp.Diff([]string{"0", "20", "40", "10", "30", "50"}, labels(g)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if g.ByKey("20") != twenty {
		t.Errorf("tick 20 was recreated instead of updated")
	}
	if tf, _ := twenty.Attr("transform"); tf != "translate(200,0)" {
		t.Errorf("tick 20 transform = %q, want translate(200,0)", tf)
	}
}

func TestBandAxis(t *testing.T) {
	b := scale.NewBand().SetDomain("a", "b", "c").SetRange(0, 300)
	a := New(Left, Band(b))
	var pos []float64
	for _, tk := range a.Ticks() {
		pos = append(pos, tk.Pos)
	}
	if diff := cmp.Diff([]float64{50, 150, 250}, pos); diff != "" {
		t.Errorf("band positions mismatch (-want +got):\n%s", diff)
	}

	g := scene.New("g")
	a.Render(g, nil)
	if d, _ := g.First("path.domain").Attr("d"); d != "M-6,0H0V300H-6" {
		t.Errorf("domain d = %q, want M-6,0H0V300H-6", d)
	}
	if x := g.Select("g.tick")[0].Children[1].Num("x"); x != -9 {
		t.Errorf("label x = %v, want -9", x)
	}
}

func TestTimeAxis(t *testing.T) {
	s := scale.NewTime().SetRange(0, 1000).SetDomain(
		time.Date(2013, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	every := scale.Every(6, scale.Month)
	a := &Axis{Orient: Bottom, Scale: Time(s), TickEvery: &every}
	var got []string
	for _, tk := range a.Ticks() {
		got = append(got, tk.Label)
	}
	if diff := cmp.Diff([]string{"July", "2014"}, got); diff != "" {
		t.Errorf("time labels mismatch (-want +got):\n%s", diff)
	}

	a.TimeFormat = "%m/%Y"
	if lbl := a.Ticks()[0].Label; lbl != "07/2013" {
		t.Errorf("formatted label = %q, want 07/2013", lbl)
	}
}
