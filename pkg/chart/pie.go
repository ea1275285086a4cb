package chart

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

var pieColours = []string{"#98abc5", "#8a89a6", "#7b6888", "#6b486b", "#a05d56", "#d0743c", "#ff8c00", "#ffcB8a"}

// loadPie reads per-row category shares when a data source is configured.
// Without one the chart is a wheel of equal slices.
func loadPie(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	if cfg.Source("data") == "" {
		return Data{}, nil
	}
	id := cfg.Option("key", "country")
	t, err := loadTable(ctx, l, cfg, dataset.Schema{Required: []string{id}})
	if err != nil {
		return Data{}, err
	}
	ids := cfg.OptionList("ids", "index,country,population")
	categories, err := dataset.Pivot(t, dataset.PivotOptions{ID: ids, Keep: []string{id}, Key: "type", Value: "share"})
	if err != nil {
		return Data{}, err
	}
	return Data{Table: t, Groups: categories}, nil
}

type pieSlice struct {
	Key   string
	Value float64
}

// pieChart is either a data pie (one slice per category of the selected
// row, with a legend) or a wheel of fortune (equal "slices" that rotate
// while a direction is selected). Both read "inner_radius".
type pieChart struct {
	*Frame
	cfg    Config
	wheel  bool
	keys   []string
	shares map[string][]pieSlice
	totals map[string]string
	colour *scale.Ordinal[string]
	outer  float64

	centre     *scene.Element
	population *scene.Element
	current    []pieSlice
}

func newPie(cfg Config, d Data) (Chart, error) {
	wheel := len(d.Groups) == 0
	width := 1000.0
	if wheel {
		width = 700
	}
	f := newFrame(cfg, Pie, width, 650, Margin{}, 3*time.Second)
	c := &pieChart{
		Frame:  f,
		cfg:    cfg,
		wheel:  wheel,
		shares: map[string][]pieSlice{},
		totals: map[string]string{},
		colour: scale.NewOrdinal(pieColours...),
		outer:  min(f.Width, f.Height)/2 - 40,
	}
	c.centre = f.Plot().SetAttr("transform", scene.Translate(f.Width/2, f.Height/2)).Append("g").SetClass("wheel")
	if wheel {
		f.Duration = 0
		return c, nil
	}

	id := cfg.Option("key", "country")
	for _, r := range d.Table.Rows {
		c.keys = append(c.keys, r.Str(id))
		c.totals[r.Str(id)] = r.Str(cfg.Option("total", "population"))
	}
	types := d.Groups.Keys()
	c.colour.SetDomain(types...)
	for _, g := range d.Groups {
		for _, r := range g.Table.Rows {
			k := r.Str(id)
			c.shares[k] = append(c.shares[k], pieSlice{Key: g.Key, Value: r.Num("share")})
		}
	}
	if len(c.keys) == 0 {
		return nil, noData(Pie, "any "+id)
	}

	root := f.Root()
	addLabel(root, label{Text: "Population:", X: 20, Y: f.Height/2 + 50, Anchor: "start"})
	c.population = addLabel(root, label{X: 20, Y: f.Height/2 + 80, Anchor: "start", Class: "population"})
	legend := root.Append("g").SetClass("legend").SetAttr("transform", scene.Translate(20, 50))
	const square = 20
	for i, t := range types {
		row := legend.Append("g").SetClass("legend-row")
		row.Key = t
		row.SetAttr("transform", scene.Translate(0, float64(i)*(square+15)))
		row.Append("rect").SetNum("width", square).SetNum("height", square).SetAttr("fill", c.colour.Map(t))
		row.Append("text").SetAttr("transform", scene.Translate(square+10, square-3)).SetText(t)
	}
	return c, nil
}

func (c *pieChart) Defaults() view.State {
	s := view.State{}.WithParam("inner_radius", 0)
	if c.wheel {
		s = s.WithParam("slices", 2).WithParam("speed", 10)
	} else {
		s = s.With("country", c.keys[0])
	}
	return c.cfg.initial(s)
}

// Interval is the rotation period of the wheel.
func (c *pieChart) Interval() time.Duration { return 100 * time.Millisecond }

func (c *pieChart) Update(s view.State) error {
	inner := s.Param("inner_radius", 0)
	if inner < 0 || inner > c.outer-5 {
		return errors.New(errors.ErrCodeInvalidInput, "pie chart: inner radius %g outside [0, %g]", inner, c.outer-5)
	}
	var data []pieSlice
	if c.wheel {
		n := int(s.Param("slices", 2))
		if n < 2 || n > 50 {
			return errors.New(errors.ErrCodeInvalidInput, "pie chart: %d slices outside [2, 50]", n)
		}
		for i := range n {
			data = append(data, pieSlice{Key: strconv.Itoa(i), Value: 100 / float64(n)})
		}
		c.centre.SetAttr("transform", scene.Rotate(s.Rotation))
	} else {
		key, err := choose(Pie, "country", s.Get("country", c.keys[0]), c.keys)
		if err != nil {
			return err
		}
		data = c.shares[key]
		c.population.SetText(c.totals[key])
	}
	c.current = data

	arc := shape.Arc{InnerRadius: inner, OuterRadius: c.outer}
	arcs := shape.Pie[pieSlice]{Value: func(p pieSlice) float64 { return p.Value }}.Slices(data)
	key := func(sl shape.Slice[pieSlice], _ int) string { return sl.Data.Key }
	tr := c.transition()
	join.Select[shape.Slice[pieSlice]](c.centre, "path.arc", c.sched).Data(arcs, key).Apply(tr, join.Handlers[shape.Slice[pieSlice]]{
		Enter: func(el *scene.Element, sl shape.Slice[pieSlice], _ int) {
			el.SetAttr("fill", c.colour.Map(sl.Data.Key))
		},
		Update: func(el *scene.Element, sl shape.Slice[pieSlice], _ int, tr *transition.Transition) {
			tr.Attr(el, "d", arc.Path(sl.StartAngle, sl.EndAngle, sl.PadAngle))
		},
	})
	return nil
}

func (c *pieChart) Series() []Series {
	s := Series{Name: "share"}
	for i, p := range c.current {
		s.X = append(s.X, float64(i))
		s.Y = append(s.Y, p.Value)
		s.Labels = append(s.Labels, p.Key)
	}
	return []Series{s}
}
