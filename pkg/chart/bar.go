package chart

import (
	"context"
	"slices"

	"github.com/matzehuels/vizlab/pkg/axis"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

// barChart draws one vertical bar per row for the selected metric. The
// "metric" control switches between the configured value fields; bars keep
// their key across switches so a toggle animates heights in place.
//
// Options:
//
//	x            key field (default "month")
//	metrics      comma separated value fields (default "revenue,profit")
//	y_format     tick formatter name (default "currency")
//	x_label      x caption (default "Month")
//	label.<m>    y caption for metric m (default its title)
//	caption      optional chart title
//	drop_first   metric whose view omits the first row
//	value_labels "true" prints each value in the middle of its bar
//	padding      inner band padding (default 0.2)
type barChart struct {
	*Frame
	cfg     Config
	table   dataset.Table
	xField  string
	metrics []string

	x      *scale.Band
	y      *scale.Continuous
	colour *scale.Ordinal[string]
	xAxis  *axis.Axis
	yAxis  *axis.Axis

	xGroup, yGroup *scene.Element
	yLabel         *scene.Element
	bars           *scene.Element
	values         *scene.Element

	shown  []dataset.Record
	metric string
}

func loadBar(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	s := dataset.Schema{
		Required: []string{cfg.Option("x", "month")},
		Numbers:  cfg.OptionList("metrics", "revenue,profit"),
	}
	t, err := loadTable(ctx, l, cfg, s)
	if err != nil {
		return Data{}, err
	}
	return Data{Table: t}, nil
}

func newBar(cfg Config, d Data) (Chart, error) {
	f := newFrame(cfg, Bar, 600, 400, Margin{Top: 10, Right: 10, Bottom: 60, Left: 80}, transition.DefaultDuration)
	c := &barChart{
		Frame:   f,
		cfg:     cfg,
		table:   d.Table,
		xField:  cfg.Option("x", "month"),
		metrics: cfg.OptionList("metrics", "revenue,profit"),
	}
	w, h := f.InnerWidth(), f.InnerHeight()
	pad := cfg.OptionFloat("padding", 0.2)
	c.x = scale.NewBand().SetRange(0, w).SetPaddingInner(pad).SetPaddingOuter(0.2)
	c.y = scale.NewLinear().SetRange(h, 0)
	c.colour = scale.NewColor("tableau10")

	c.xAxis = axis.New(axis.Bottom, axis.Band(c.x))
	c.yAxis = axis.New(axis.Left, axis.Continuous(c.y))
	c.yAxis.Format = format.Named(cfg.Option("y_format", "currency"))

	p := f.Plot()
	c.xGroup = axisGroup(p, "x axis", 0, h)
	c.yGroup = axisGroup(p, "y axis", 0, 0)
	c.bars = p.Append("g").SetClass("bars")
	c.values = p.Append("g").SetClass("values")

	font := "Comic Sans MS"
	addLabel(p, label{Text: cfg.Option("x_label", "Month"), X: w / 2, Y: h + 45, Size: 15, Font: font, Class: "x-label"})
	c.yLabel = addLabel(p, label{X: -h / 2, Y: -55, Size: 15, Font: font, Rotate: -90, Class: "y-label"})
	if t := cfg.Option("caption", ""); t != "" {
		addLabel(p, label{Text: t, X: w / 2, Y: h + 110, Size: 20, Font: font, Class: "caption"})
	}
	return c, nil
}

func (c *barChart) Defaults() view.State {
	return c.cfg.initial(view.State{}.With("metric", c.metrics[0]))
}

func (c *barChart) Update(s view.State) error {
	metric, err := choose(Bar, "metric", s.Get("metric", c.metrics[0]), c.metrics)
	if err != nil {
		return err
	}
	rows := c.table.Rows
	if metric == c.cfg.Option("drop_first", "") && len(rows) > 0 {
		rows = rows[1:]
	}
	c.shown, c.metric = rows, metric

	keys := make([]string, len(rows))
	var hi float64
	for i, r := range rows {
		keys[i] = r.Str(c.xField)
		hi = max(hi, r.Num(metric))
	}
	c.x.SetDomain(keys...)
	c.y.SetDomain(0, hi)

	tr := c.transition()
	c.xAxis.Render(c.xGroup, tr)
	for _, t := range c.xGroup.Select("text") {
		t.SetNum("x", -5).SetNum("y", 10)
		t.SetAttr("text-anchor", "end").SetAttr("transform", scene.Rotate(-40))
	}
	c.yAxis.Render(c.yGroup, tr)
	c.yLabel.SetText(c.cfg.Option("label."+metric, title(metric)))

	key := func(r dataset.Record, _ int) string { return r.Str(c.xField) }
	zero := c.y.Map(0)
	join.Select[dataset.Record](c.bars, "rect.bar", c.sched).Data(rows, key).Apply(tr, join.Handlers[dataset.Record]{
		Enter: func(el *scene.Element, r dataset.Record, _ int) {
			x, _ := c.x.Map(r.Str(c.xField))
			el.SetNum("x", x).SetNum("width", c.x.Bandwidth())
			el.SetNum("y", zero).SetNum("height", 0)
			el.SetAttr("fill", c.colour.Map(r.Str(c.xField)))
		},
		Update: func(el *scene.Element, r dataset.Record, _ int, tr *transition.Transition) {
			x, _ := c.x.Map(r.Str(c.xField))
			y := c.y.Map(r.Num(metric))
			tr.AttrNum(el, "x", x)
			tr.AttrNum(el, "width", c.x.Bandwidth())
			tr.AttrNum(el, "y", y)
			tr.AttrNum(el, "height", zero-y)
		},
		Exit: func(el *scene.Element, tr *transition.Transition) {
			tr.AttrNum(el, "y", zero)
			tr.AttrNum(el, "height", 0)
		},
	})

	if !c.cfg.OptionBool("value_labels") {
		return nil
	}
	yFormat := c.yAxis.Format
	join.Select[dataset.Record](c.values, "text.value", c.sched).Data(rows, key).Apply(tr, join.Handlers[dataset.Record]{
		Enter: func(el *scene.Element, r dataset.Record, _ int) {
			x, _ := c.x.Map(r.Str(c.xField))
			el.SetNum("x", x+c.x.Bandwidth()/2).SetNum("y", zero)
			el.SetAttr("text-anchor", "middle").SetAttr("fill", "white")
		},
		Update: func(el *scene.Element, r dataset.Record, _ int, tr *transition.Transition) {
			x, _ := c.x.Map(r.Str(c.xField))
			v := r.Num(metric)
			el.SetText(yFormat(v))
			tr.AttrNum(el, "x", x+c.x.Bandwidth()/2)
			tr.AttrNum(el, "y", (zero+c.y.Map(v))/2)
		},
	})
	return nil
}

// Series returns the bars on screen, one point per key.
func (c *barChart) Series() []Series {
	s := Series{Name: c.metric}
	for i, r := range c.shown {
		s.X = append(s.X, float64(i))
		s.Y = append(s.Y, r.Num(c.metric))
		s.Labels = append(s.Labels, r.Str(c.xField))
	}
	return []Series{s}
}

// Metrics returns the selectable value fields.
func (c *barChart) Metrics() []string { return slices.Clone(c.metrics) }
