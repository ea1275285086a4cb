package chart

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/vizlab/pkg/axis"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

var stackedColours = map[string]string{
	"AF": "#F9EACF",
	"NA": "#D1F7FF",
	"OC": "#4690D0",
	"AS": "#FFCC78",
	"EU": "#AEFF62",
	"SA": "#FC9E8F",
}

// stackedChart stacks continent populations over the selected year range
// and draws the timeline with its brush underneath. The slider range and
// the brush mirror each other.
type stackedChart struct {
	*Frame
	cfg   Config
	years []yearTotal
	codes []string
	names func(code string) string

	x      *scale.Time
	y      *scale.Continuous
	xAxis  *axis.Axis
	yAxis  *axis.Axis
	xGroup *scene.Element
	yGroup *scene.Element
	layers *scene.Element
	tv     *timelineView

	shown []yearTotal
}

const (
	stackedFont   = "Georgia"
	stackedHeight = 550
	contextHeight = 150
)

func newStacked(cfg Config, d Data) (Chart, error) {
	continents := d.Lookup("continents")
	years := yearTotals(d.Groups, continents.Keys())
	if len(years) == 0 {
		return nil, noData(Stacked, "any year")
	}
	f := newFrame(cfg, Stacked, 1200, stackedHeight+contextHeight, Margin{Top: 80, Right: 100, Bottom: 70 + contextHeight, Left: 95}, 3*time.Second)
	c := &stackedChart{Frame: f, cfg: cfg, years: years, names: continents.Get}

	// Largest continent at the bottom.
	c.codes = continents.Keys()
	total := func(code string) float64 {
		var sum float64
		for _, yt := range years {
			sum += yt.Continents[code]
		}
		return sum
	}
	slices.SortStableFunc(c.codes, func(a, b string) int { return cmp.Compare(total(b), total(a)) })

	w, h := f.InnerWidth(), f.InnerHeight()
	c.x = scale.NewTime().SetRange(0, w)
	c.y = scale.NewLinear().SetRange(h, 0)
	every := scale.Every(10, scale.Year)
	c.xAxis = axis.New(axis.Bottom, axis.Time(c.x))
	c.xAxis.TickEvery = &every
	c.xAxis.TimeFormat = "%Y"
	c.yAxis = axis.New(axis.Left, axis.Continuous(c.y))

	p := f.Plot()
	c.xGroup = axisGroup(p, "x axis", 0, h)
	c.yGroup = axisGroup(p, "y axis", 0, 0)
	c.layers = p.Append("g").SetClass("layers")
	addLabel(p, label{Text: "Year", X: w / 2, Y: h + 50, Size: 20, Font: stackedFont})
	addLabel(p, label{Text: cfg.Option("y_label", "Population"), X: -h / 2, Y: -f.Margin.Left + 20, Size: 20, Font: stackedFont, Rotate: -90})

	legend := p.Append("g").SetClass("legend").SetAttr("transform", scene.Translate(0, -50))
	for i, code := range continents.Keys() {
		cat := legend.Append("g").SetClass("category")
		cat.Key = code
		cat.SetAttr("transform", scene.Translate(float64(i)*150, 0))
		cat.Append("rect").SetNum("width", 20).SetNum("height", 20).SetAttr("fill", stackedColour(code))
		cat.Append("text").SetAttr("transform", scene.Translate(30, 15)).SetText(continents.Get(code))
	}

	ctx := f.Root().Append("g").SetClass("context").
		SetAttr("transform", scene.Translate(f.Margin.Left, stackedHeight))
	c.tv = newTimelineView(ctx, w, contextHeight-20, years)
	return c, nil
}

func stackedColour(code string) string {
	if c, ok := stackedColours[code]; ok {
		return c
	}
	return "#CCCCCC"
}

func (c *stackedChart) Defaults() view.State {
	s := c.cfg.initial(view.State{})
	lo, hi := c.years[0].Year, c.years[len(c.years)-1].Year
	if !s.Range.Set {
		s.Range = view.Range{Min: float64(lo), Max: float64(hi), Set: true}
	}
	s.Brush = view.BrushState{Empty: true}
	return s
}

func (c *stackedChart) Sync(msg view.Msg, _ view.State) []view.Msg { return c.tv.sync(msg) }

func (c *stackedChart) Update(s view.State) error {
	var rows []yearTotal
	for _, yt := range c.years {
		if s.Range.Contains(float64(yt.Year)) {
			rows = append(rows, yt)
		}
	}
	if len(rows) == 0 {
		return noData(Stacked, "the selected years")
	}
	c.shown = rows

	c.x.SetDomain(rows[0].Date, rows[len(rows)-1].Date)
	var hi float64
	for _, yt := range rows {
		hi = max(hi, yt.World)
	}
	c.y.SetDomain(0, hi*1.005)

	tr := c.transition()
	c.xAxis.Render(c.xGroup, tr)
	c.yAxis.Render(c.yGroup, tr)

	stack := shape.Stack[yearTotal]{
		Keys:  c.codes,
		Value: func(d yearTotal, key string) float64 { return d.Continents[key] },
	}
	series := stack.Series(rows)
	area := shape.Area[shape.StackPoint[yearTotal]]{
		X:  func(p shape.StackPoint[yearTotal], _ int) float64 { return c.x.Map(p.Data.Date) },
		Y0: func(p shape.StackPoint[yearTotal], _ int) float64 { return c.y.Map(p.Y0) },
		Y1: func(p shape.StackPoint[yearTotal], _ int) float64 { return c.y.Map(p.Y1) },
	}
	key := func(s shape.Series[yearTotal], _ int) string { return s.Key }
	join.Select[shape.Series[yearTotal]](c.layers, "g.layer", c.sched).Data(series, key).Apply(tr, join.Handlers[shape.Series[yearTotal]]{
		Enter: func(el *scene.Element, s shape.Series[yearTotal], _ int) {
			el.Append("path").SetClass("area").SetAttr("fill", stackedColour(s.Key))
		},
		Update: func(el *scene.Element, s shape.Series[yearTotal], _ int, tr *transition.Transition) {
			tr.Attr(el.Children[0], "d", area.Path(s.Points))
		},
	})
	c.tv.render(s, tr)
	return nil
}

func (c *stackedChart) Series() []Series {
	var out []Series
	for _, code := range c.codes {
		s := Series{Name: c.names(code), Time: true}
		for _, yt := range c.shown {
			s.X = append(s.X, float64(yt.Date.UnixMilli()))
			s.Y = append(s.Y, yt.Continents[code])
		}
		out = append(out, s)
	}
	return out
}
