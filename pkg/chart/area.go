package chart

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/vizlab/pkg/axis"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/view"
)

func loadArea(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	id := cfg.Option("key", "country")
	t, err := loadTable(ctx, l, cfg, dataset.Schema{Required: []string{id}})
	if err != nil {
		return Data{}, err
	}
	years, err := dataset.Pivot(t, dataset.PivotOptions{ID: []string{id}, Keep: []string{id}, Key: "year", Value: "value"})
	if err != nil {
		return Data{}, err
	}
	return Data{Table: t, Groups: years}, nil
}

type yearValue struct {
	Date  time.Time
	Value float64
}

// areaChart fills the yearly series of the selected row ("country")
// down to its minimum.
type areaChart struct {
	*Frame
	cfg    Config
	keys   []string
	series map[string][]yearValue
	colour *scale.Ordinal[string]

	x      *scale.Time
	y      *scale.Continuous
	xAxis  *axis.Axis
	yAxis  *axis.Axis
	xGroup *scene.Element
	yGroup *scene.Element
	path   *scene.Element

	selected string
}

func newArea(cfg Config, d Data) (Chart, error) {
	id := cfg.Option("key", "country")
	c := &areaChart{cfg: cfg, series: map[string][]yearValue{}}
	for _, r := range d.Table.Rows {
		c.keys = append(c.keys, r.Str(id))
	}
	if len(c.keys) == 0 {
		return nil, noData(Area, "any "+id)
	}
	for _, g := range d.Groups {
		y, err := strconv.Atoi(g.Key)
		if err != nil {
			continue
		}
		date := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		for _, r := range g.Table.Rows {
			k := r.Str(id)
			c.series[k] = append(c.series[k], yearValue{date, r.Num("value")})
		}
	}
	c.colour = scale.NewColor("spectral").SetDomain(c.keys...)

	f := newFrame(cfg, Area, 1200, 750, Margin{Top: 50, Right: 100, Bottom: 100, Left: 75}, 3*time.Second)
	c.Frame = f
	w, h := f.InnerWidth(), f.InnerHeight()
	c.x = scale.NewTime().SetRange(0, w)
	c.y = scale.NewLinear().SetRange(h, 0)
	every := scale.Every(5, scale.Year)
	c.xAxis = axis.New(axis.Bottom, axis.Time(c.x))
	c.xAxis.TickEvery = &every
	c.xAxis.TimeFormat = "%Y"
	c.yAxis = axis.New(axis.Left, axis.Continuous(c.y))
	c.yAxis.Format = func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	p := f.Plot()
	c.xGroup = axisGroup(p, "x axis", 0, h)
	c.yGroup = axisGroup(p, "y axis", 0, 0)
	addLabel(p, label{Text: "Year", X: w / 2, Y: h + 50, Size: 20, Font: "Georgia"})
	addLabel(p, label{Text: cfg.Option("y_label", "Population growth (%)"), X: -h / 2, Y: -f.Margin.Left + 20, Size: 20, Font: "Georgia", Rotate: -90})
	c.path = p.Append("path").SetClass("area").SetAttr("stroke", "grey").SetAttr("stroke-width", "3px")
	return c, nil
}

func (c *areaChart) Defaults() view.State {
	return c.cfg.initial(view.State{}.With("country", c.keys[0]))
}

func (c *areaChart) Update(s view.State) error {
	key, err := choose(Area, "country", s.Get("country", c.keys[0]), c.keys)
	if err != nil {
		return err
	}
	pts := c.series[key]
	if len(pts) == 0 {
		return noData(Area, key)
	}
	c.selected = key

	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = p.Value
	}
	lo, hi, _ := scale.Extent(vals)
	c.x.SetDomain(pts[0].Date, pts[len(pts)-1].Date)
	c.y.SetDomain(scale.PadDomain(lo, hi, 1.005))

	tr := c.transition()
	c.xAxis.Render(c.xGroup, tr)
	c.yAxis.Render(c.yGroup, tr)
	base := c.y.Map(lo)
	area := shape.Area[yearValue]{
		X:  func(p yearValue, _ int) float64 { return c.x.Map(p.Date) },
		Y0: func(yearValue, int) float64 { return base },
		Y1: func(p yearValue, _ int) float64 { return c.y.Map(p.Value) },
	}
	tr.Attr(c.path, "fill", c.colour.Map(key))
	tr.Attr(c.path, "d", area.Path(pts))
	return nil
}

func (c *areaChart) Series() []Series {
	s := Series{Name: c.selected, Time: true}
	for _, p := range c.series[c.selected] {
		s.X = append(s.X, float64(p.Date.UnixMilli()))
		s.Y = append(s.Y, p.Value)
	}
	return []Series{s}
}
