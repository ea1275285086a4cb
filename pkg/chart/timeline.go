package chart

import (
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/matzehuels/vizlab/pkg/axis"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

// yearTotal is the population of one year, world wide and per continent.
type yearTotal struct {
	Year       int
	Date       time.Time
	World      float64
	Continents map[string]float64
}

// yearTotals sums the per-year tables of the population data. Continents
// start at zero for every code in codes so that missing ones stack flat.
func yearTotals(years dataset.Groups, codes []string) []yearTotal {
	var out []yearTotal
	for _, g := range years {
		y, err := strconv.Atoi(g.Key)
		if err != nil {
			continue
		}
		yt := yearTotal{Year: y, Date: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), Continents: map[string]float64{}}
		for _, code := range codes {
			yt.Continents[code] = 0
		}
		for _, r := range g.Table.Rows {
			v := r.Num("population")
			yt.World += v
			yt.Continents[r.Str("continent_code")] += v
		}
		out = append(out, yt)
	}
	slices.SortFunc(out, func(a, b yearTotal) int { return a.Year - b.Year })
	return out
}

// timelineView is the context area chart with an x brush. The brush
// selects a range of whole years.
type timelineView struct {
	g     *scene.Element
	w, h  float64
	years []yearTotal

	x      *scale.Time
	y      *scale.Continuous
	xAxis  *axis.Axis
	xGroup *scene.Element
	area   *scene.Element
	brush  *scene.Element
}

const brushHandle = 10

func newTimelineView(g *scene.Element, w, h float64, years []yearTotal) *timelineView {
	tv := &timelineView{g: g, w: w, h: h, years: years}
	tv.x = scale.NewTime().SetRange(0, w)
	tv.y = scale.NewLinear().SetRange(h, 0)
	if len(years) > 0 {
		tv.x.SetDomain(years[0].Date, years[len(years)-1].Date)
	}
	var hi float64
	for _, yt := range years {
		hi = max(hi, yt.World)
	}
	tv.y.SetDomain(0, hi)

	every := scale.Every(10, scale.Year)
	tv.xAxis = axis.New(axis.Bottom, axis.Time(tv.x))
	tv.xAxis.TickEvery = &every
	tv.xAxis.TimeFormat = "%Y"
	tv.xGroup = axisGroup(g, "x axis", 0, h)

	layer := g.Append("g").SetClass("timeline-layer")
	tv.area = layer.Append("path").SetClass("area")
	tv.area.SetAttr("fill", "#EAEAEA").SetAttr("stroke", "#555555")
	area := shape.Area[yearTotal]{
		X:  func(d yearTotal, _ int) float64 { return tv.x.Map(d.Date) },
		Y0: func(yearTotal, int) float64 { return h },
		Y1: func(d yearTotal, _ int) float64 { return tv.y.Map(d.World) },
	}
	tv.area.SetAttr("d", area.Path(years))

	tv.brush = g.Append("g").SetClass("brush")
	tv.brush.Append("rect").SetClass("overlay").
		SetNum("width", w).SetNum("height", h).SetAttr("fill", "none").SetAttr("pointer-events", "all")
	tv.brush.Append("rect").SetClass("selection").
		SetNum("y", 0).SetNum("height", h).SetAttr("fill", "#777777").SetAttr("fill-opacity", "0.3").SetAttr("stroke", "#ffffff")
	for _, side := range []string{"w", "e"} {
		tv.brush.Append("rect").SetClass("handle handle--"+side).
			SetNum("y", -brushHandle/2).SetNum("width", brushHandle).SetNum("height", h+brushHandle).
			SetAttr("fill", "none")
	}
	return tv
}

// render draws the axis and the brush selection of s.
func (tv *timelineView) render(s view.State, tr *transition.Transition) {
	tv.xAxis.Render(tv.xGroup, tr)
	sel := tv.brush.First("rect.selection")
	handles := tv.brush.Select("rect.handle")
	if s.Brush.Empty || (s.Brush.X0 == 0 && s.Brush.X1 == 0) {
		sel.SetAttr("display", "none")
		for _, hd := range handles {
			hd.SetAttr("display", "none")
		}
		return
	}
	x0, x1 := clampPx(s.Brush.X0, tv.w), clampPx(s.Brush.X1, tv.w)
	sel.DelAttr("display")
	sel.SetNum("x", x0).SetNum("width", x1-x0)
	for i, hd := range handles {
		hd.DelAttr("display")
		hd.SetNum("x", []float64{x0, x1}[i]-brushHandle/2)
	}
}

func clampPx(v, w float64) float64 { return math.Max(0, math.Min(w, v)) }

// yearsOf converts a brush selection to an inclusive year range. An empty
// selection covers every year.
func (tv *timelineView) yearsOf(b view.Brush) (lo, hi int) {
	if len(tv.years) == 0 {
		return 0, 0
	}
	if b.Empty || b.X0 == b.X1 {
		return tv.years[0].Year, tv.years[len(tv.years)-1].Year
	}
	x0, x1 := min(b.X0, b.X1), max(b.X0, b.X1)
	return tv.x.Invert(x0).Year(), tv.x.Invert(x1).Year()
}

// pixelsOf places a year range on the brush.
func (tv *timelineView) pixelsOf(lo, hi float64) (x0, x1 float64) {
	at := func(y float64) float64 {
		return tv.x.Map(time.Date(int(y), 1, 1, 0, 0, 0, 0, time.UTC))
	}
	return at(lo), at(hi)
}

// sync mirrors a brush move onto the year range and a range change onto
// the brush.
func (tv *timelineView) sync(msg view.Msg) []view.Msg {
	switch m := msg.(type) {
	case view.Brush:
		lo, hi := tv.yearsOf(m)
		return []view.Msg{view.SetRange{Min: float64(lo), Max: float64(hi), Source: view.Programmatic}}
	case view.SetRange:
		x0, x1 := tv.pixelsOf(m.Min, m.Max)
		return []view.Msg{view.Brush{X0: x0, X1: x1, Source: view.Programmatic}}
	}
	return nil
}

// timelineChart is the context chart on its own: world population over
// all years with a brush selecting a year range.
type timelineChart struct {
	*Frame
	cfg Config
	tv  *timelineView
}

func newTimeline(cfg Config, d Data) (Chart, error) {
	years := yearTotals(d.Groups, d.Lookup("continents").Keys())
	if len(years) == 0 {
		return nil, noData(Timeline, "any year")
	}
	f := newFrame(cfg, Timeline, 1200, 150, Margin{Top: 0, Right: 100, Bottom: 20, Left: 95}, transition.DefaultDuration)
	c := &timelineChart{Frame: f, cfg: cfg}
	c.tv = newTimelineView(f.Plot(), f.InnerWidth(), f.InnerHeight(), years)
	return c, nil
}

func (c *timelineChart) Defaults() view.State {
	s := c.cfg.initial(view.State{})
	s.Brush = view.BrushState{Empty: true}
	return s
}

func (c *timelineChart) Update(s view.State) error {
	c.tv.render(s, c.transition())
	return nil
}

func (c *timelineChart) Sync(msg view.Msg, _ view.State) []view.Msg { return c.tv.sync(msg) }

func (c *timelineChart) Series() []Series {
	s := Series{Name: "world", Time: true}
	for _, yt := range c.tv.years {
		s.X = append(s.X, float64(yt.Date.UnixMilli()))
		s.Y = append(s.Y, yt.World)
	}
	return []Series{s}
}
