package chart

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/vizlab/pkg/axis"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

func loadScatter(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	src, err := source(cfg, "data")
	if err != nil {
		return Data{}, err
	}
	frames, err := l.Nested(ctx, src, dataset.Schema{
		Required: []string{"income", "life_exp"},
		Numbers:  []string{"income", "life_exp", "population"},
	}, "year", "countries")
	if err != nil {
		return Data{}, err
	}
	return Data{Groups: frames}, nil
}

// scatterChart plots income against life expectancy per country, one
// frame per year, with circle area proportional to population. The
// "continent" control filters the circles ("all" shows every continent).
type scatterChart struct {
	*Frame
	cfg        Config
	frames     dataset.Groups
	continents []string

	x      *scale.Continuous
	y      *scale.Continuous
	r      *scale.Continuous
	colour *scale.Ordinal[string]
	xAxis  *axis.Axis
	yAxis  *axis.Axis
	xGroup *scene.Element
	yGroup *scene.Element
	year   *scene.Element
	dots   *scene.Element
	hover  *scene.Element

	shown []dataset.Record
}

const scatterFont = "Courier"

func newScatter(cfg Config, d Data) (Chart, error) {
	if len(d.Groups) == 0 {
		return nil, noData(Scatter, "any year")
	}
	f := newFrame(cfg, Scatter, 1060, 740, Margin{Top: 10, Right: 10, Bottom: 55, Left: 65}, 100*time.Millisecond)
	c := &scatterChart{Frame: f, cfg: cfg, frames: d.Groups}
	for _, r := range d.Groups[0].Table.Rows {
		if k := r.Str("continent"); !slices.Contains(c.continents, k) {
			c.continents = append(c.continents, k)
		}
	}
	w, h := f.InnerWidth(), f.InnerHeight()
	c.x = scale.NewLog(10).SetDomain(100, 150000).SetRange(0, w)
	c.y = scale.NewLinear().SetDomain(0, 90).SetRange(h, 0)
	c.r = scale.NewLinear().SetRange(5, 25)
	c.colour = scale.NewColor("set3").SetDomain(c.continents...)
	c.xAxis = axis.New(axis.Bottom, axis.Continuous(c.x))
	c.xAxis.TickValues = []float64{400, 4000, 40000}
	c.xAxis.Format = format.Currency
	c.yAxis = axis.New(axis.Left, axis.Continuous(c.y))

	p := f.Plot()
	c.xGroup = axisGroup(p, "x axis", 0, h)
	c.yGroup = axisGroup(p, "y axis", 0, 0)
	c.year = addLabel(p, label{X: w - 45, Y: h - 35, Size: 35, Font: scatterFont, Anchor: "end", Class: "year"})
	addLabel(p, label{Text: "GDP per Capita", X: w / 2, Y: h + 40, Size: 20, Font: scatterFont})
	addLabel(p, label{Text: "Life Expectancy (Years)", X: -h / 2, Y: -f.Margin.Left + 15, Size: 20, Font: scatterFont, Rotate: -90})

	legend := p.Append("g").SetClass("legend")
	for i, k := range c.continents {
		y := h/2 + float64(i)*60
		legend.Append("rect").SetNum("x", w-140).SetNum("y", y).SetNum("width", 120).SetNum("height", 50).
			SetAttr("fill", c.colour.Map(k))
		addLabel(legend, label{Text: k, X: w - 80, Y: y + 30, Size: 20, Font: scatterFont})
	}
	c.dots = p.Append("g").SetClass("dots")
	c.hover = p.Append("g").SetClass("hover")
	return c, nil
}

func (c *scatterChart) Defaults() view.State {
	return c.cfg.initial(view.State{Frames: len(c.frames)}.With("continent", "all"))
}

// Interval is the playback period.
func (c *scatterChart) Interval() time.Duration { return 2 * c.Duration }

// radiusOf is the radius of a circle with the given area; missing
// populations draw the smallest circle.
func radiusOf(population float64) float64 {
	if math.IsNaN(population) || population < 0 {
		return 0
	}
	return math.Sqrt(population / math.Pi)
}

func (c *scatterChart) Update(s view.State) error {
	if s.Frame < 0 || s.Frame >= len(c.frames) {
		return noData(Scatter, fmt.Sprintf("frame %d", s.Frame))
	}
	continent, err := choose(Scatter, "continent", s.Get("continent", "all"), append([]string{"all"}, c.continents...))
	if err != nil {
		return err
	}
	g := c.frames[s.Frame]
	rows := g.Table.Filter(func(r dataset.Record) bool {
		return continent == "all" || r.Str("continent") == continent
	}).Rows
	c.shown = rows

	var rmax float64
	for _, r := range g.Table.Rows {
		rmax = max(rmax, radiusOf(r.Num("population")))
	}
	c.r.SetDomain(0, rmax)

	tr := c.transition()
	c.xAxis.Render(c.xGroup, tr)
	c.yAxis.Render(c.yGroup, tr)
	c.year.SetText(g.Key)

	key := func(r dataset.Record, _ int) string { return r.Str("country") }
	join.Select[dataset.Record](c.dots, "circle.country", c.sched).Data(rows, key).Apply(tr, join.Handlers[dataset.Record]{
		Enter: func(el *scene.Element, r dataset.Record, _ int) {
			el.SetAttr("fill", c.colour.Map(r.Str("continent")))
		},
		Update: func(el *scene.Element, r dataset.Record, _ int, tr *transition.Transition) {
			tr.AttrNum(el, "cx", c.x.Map(r.Num("income")))
			tr.AttrNum(el, "cy", c.y.Map(r.Num("life_exp")))
			tr.AttrNum(el, "r", c.r.Map(radiusOf(r.Num("population"))))
		},
	})
	c.showHover(s.Tooltip)
	return nil
}

// showHover describes the smallest circle under the pointer.
func (c *scatterChart) showHover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown {
		best := math.Inf(1)
		for _, r := range c.shown {
			dx := c.x.Map(r.Num("income")) - st.X
			dy := c.y.Map(r.Num("life_exp")) - st.Y
			rad := c.r.Map(radiusOf(r.Num("population")))
			if dx*dx+dy*dy <= rad*rad && rad < best {
				best = rad
				lines = []string{
					"Country: " + r.Str("country"),
					"Continent: " + r.Str("continent"),
					"Life Expectancy: " + format.Thousands(r.Num("life_exp"), 2),
					"GDP per Capita: " + format.Thousands(r.Num("income"), 0),
					"Population: " + format.Thousands(r.Num("population"), 0),
				}
			}
		}
	}
	infoBox(c.hover, lines, st.X, st.Y)
}

func (c *scatterChart) Series() []Series {
	var out []Series
	for _, k := range c.continents {
		s := Series{Name: k}
		for _, r := range c.shown {
			if r.Str("continent") == k {
				s.X = append(s.X, r.Num("income"))
				s.Y = append(s.Y, r.Num("life_exp"))
				s.Labels = append(s.Labels, r.Str("country"))
			}
		}
		if len(s.X) > 0 {
			out = append(out, s)
		}
	}
	return out
}
