package chart

import (
	"context"
	"fmt"
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

// populationIDs are the identifying columns of the wide UN population
// table; every other column is a year.
var populationIDs = []string{"country", "country_code", "continent_code"}

// loadPopulation reads the wide population table and, when configured, the
// continent code to name lookup.
func loadPopulation(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	t, err := loadTable(ctx, l, cfg, dataset.Schema{Required: []string{"country"}})
	if err != nil {
		return Data{}, err
	}
	var required []string
	if cfg.Kind == Stacked || cfg.Kind == Treemap {
		required = []string{"continents"}
	}
	lookups, err := loadLookups(ctx, l, cfg, required, "continents")
	if err != nil {
		return Data{}, err
	}
	years, err := dataset.Pivot(t, dataset.PivotOptions{
		ID: populationIDs, Keep: populationIDs,
		Key: "year", Value: "population",
	})
	if err != nil {
		return Data{}, err
	}
	return Data{Table: t, Groups: years, Lookups: lookups}, nil
}

// hbarChart ranks the top N rows of a frame as horizontal bars. Frames are
// the groups of the data (years); the "top" param sets N.
type hbarChart struct {
	*Frame
	cfg   Config
	years dataset.Groups

	x     *scale.Continuous
	y     *scale.Band
	xAxis *axis.Axis
	yAxis *axis.Axis

	xGroup, yGroup *scene.Element
	yLabel         *scene.Element
	bars           *scene.Element
	overlay        *scene.Element

	shown []dataset.Record
	year  string
}

const hbarFont = "Georgia"

func newHBar(cfg Config, d Data) (Chart, error) {
	if len(d.Groups) == 0 {
		return nil, noData(HBar, "any year")
	}
	f := newFrame(cfg, HBar, 1200, 650, Margin{Top: 10, Right: 10, Bottom: 60, Left: 170}, transition.DefaultDuration)
	c := &hbarChart{Frame: f, cfg: cfg, years: d.Groups}
	w, h := f.InnerWidth(), f.InnerHeight()
	c.x = scale.NewLinear().SetRange(0, w)
	c.y = scale.NewBand().SetRange(0, h).SetPaddingInner(0.2).SetPaddingOuter(0.2)
	c.xAxis = axis.New(axis.Bottom, axis.Continuous(c.x))
	c.yAxis = axis.New(axis.Left, axis.Band(c.y))

	p := f.Plot()
	c.xGroup = axisGroup(p, "x axis", 0, h)
	c.yGroup = axisGroup(p, "y axis", 0, 0)
	c.bars = p.Append("g").SetClass("bars")
	addLabel(p, label{Text: cfg.Option("x_label", "Population (in milions)"), X: w / 2, Y: h + 55, Size: 20, Font: hbarFont})
	c.yLabel = addLabel(p, label{X: -h/2 + 120, Y: -145, Size: 20, Font: hbarFont, Rotate: -90, Class: "y-label"})
	c.overlay = p.Append("g").SetClass("hover")
	return c, nil
}

func (c *hbarChart) Defaults() view.State {
	s := view.State{Frames: len(c.years)}.WithParam("top", 5)
	return c.cfg.initial(s)
}

// Interval is the playback period: one transition plus a short pause.
func (c *hbarChart) Interval() time.Duration { return c.Duration + 50*time.Millisecond }

func (c *hbarChart) Update(s view.State) error {
	if s.Frame < 0 || s.Frame >= len(c.years) {
		return noData(HBar, fmt.Sprintf("frame %d", s.Frame))
	}
	g := c.years[s.Frame]
	n := max(int(s.Param("top", 5)), 1)
	rows := g.Table.Head(n).Rows
	c.shown, c.year = rows, g.Key

	_, hi, _ := scale.Extent(g.Table.Floats("population"))
	c.x.SetDomain(0, hi)
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Str("country")
	}
	c.y.SetDomain(names...)

	tr := c.transition()
	c.xAxis.Render(c.xGroup, tr)
	c.yAxis.Render(c.yGroup, tr)
	for _, t := range c.Plot().Select("text") {
		if t.Parent() != nil && t.Parent().HasClass("tick") {
			t.SetAttr("font-family", hbarFont)
		}
	}
	c.yLabel.SetText(fmt.Sprintf("Top %d Most Populated Countries", n))

	key := func(r dataset.Record, _ int) string { return r.Str("country") }
	join.Select[dataset.Record](c.bars, "rect.bar", c.sched).Data(rows, key).Apply(tr, join.Handlers[dataset.Record]{
		Enter: func(el *scene.Element, _ dataset.Record, _ int) {
			el.SetAttr("fill", "#ff8c00")
			el.SetNum("x", c.x.Map(0)).SetNum("height", 0).SetNum("width", 0)
		},
		Update: func(el *scene.Element, r dataset.Record, _ int, tr *transition.Transition) {
			y, _ := c.y.Map(r.Str("country"))
			tr.AttrNum(el, "y", y)
			tr.AttrNum(el, "width", c.x.Map(r.Num("population")))
			tr.AttrNum(el, "height", c.y.Bandwidth())
		},
		Exit: func(el *scene.Element, tr *transition.Transition) {
			tr.AttrNum(el, "width", 0)
		},
	})
	c.hover(s.Tooltip)
	return nil
}

// hover shows the bar under the pointer.
func (c *hbarChart) hover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown {
		if name, ok := c.y.Index(st.Y); ok {
			for _, r := range c.shown {
				if r.Str("country") == name {
					lines = []string{
						"Country: " + name,
						"Population: " + format.Millions(r.Num("population")),
						"Year: " + c.year,
					}
				}
			}
		}
	}
	infoBox(c.overlay, lines, st.X, st.Y)
}

func (c *hbarChart) Series() []Series {
	s := Series{Name: c.year}
	for i, r := range c.shown {
		s.X = append(s.X, float64(i))
		s.Y = append(s.Y, r.Num("population"))
		s.Labels = append(s.Labels, r.Str("country"))
	}
	return []Series{s}
}
