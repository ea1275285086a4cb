package chart

import (
	"context"
	"time"

	"github.com/matzehuels/vizlab/pkg/axis"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/view"
)

var coinMetrics = []string{"price_usd", "market_cap", "24h_vol"}

var coinMetricText = map[string]string{
	"price_usd":  "Price in dollars",
	"market_cap": "Market capitalization",
	"24h_vol":    "24 hour trading volume",
}

func loadCoins(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	src, err := source(cfg, "data")
	if err != nil {
		return Data{}, err
	}
	layout := cfg.Option("date_format", "%d/%m/%Y")
	gs, err := l.Groups(ctx, src, dataset.Schema{
		Required: coinMetrics,
		Numbers:  coinMetrics,
		Dates:    map[string]string{"date": layout},
	})
	if err != nil {
		return Data{}, err
	}
	return Data{Groups: gs}, nil
}

// lineChart plots one metric of one coin over a date range. Controls:
// "coin", "metric" and the range in Unix milliseconds. Selecting a coin
// resets the range to that coin's full extent.
type lineChart struct {
	*Frame
	cfg   Config
	coins dataset.Groups

	x      *scale.Time
	y      *scale.Continuous
	xAxis  *axis.Axis
	yAxis  *axis.Axis
	xGroup *scene.Element
	yGroup *scene.Element
	path   *scene.Element
	yLabel *scene.Element
	tip    tooltip.Tooltip

	shown  []dataset.Record
	metric string
}

const lineFont = "Courier"

func newLine(cfg Config, d Data) (Chart, error) {
	if len(d.Groups) == 0 {
		return nil, noData(Line, "any coin")
	}
	f := newFrame(cfg, Line, 1200, 750, Margin{Top: 50, Right: 100, Bottom: 100, Left: 75}, 3*time.Second)
	c := &lineChart{Frame: f, cfg: cfg, coins: d.Groups}
	w, h := f.InnerWidth(), f.InnerHeight()
	c.x = scale.NewTime().SetRange(0, w)
	c.y = scale.NewLinear().SetRange(h, 0)
	every := scale.Every(6, scale.Month)
	c.xAxis = axis.New(axis.Bottom, axis.Time(c.x))
	c.xAxis.TickEvery = &every
	c.xAxis.TimeFormat = cfg.Option("time_format", "%b %Y")
	c.yAxis = axis.New(axis.Left, axis.Continuous(c.y))
	c.yAxis.TickCount = 6
	c.yAxis.Format = format.Abbreviate

	p := f.Plot()
	c.xGroup = axisGroup(p, "x axis", 0, h)
	c.yGroup = axisGroup(p, "y axis", 0, 0)
	c.path = p.Append("path").SetClass("line")
	c.path.SetAttr("fill", "none").SetAttr("stroke", "grey").SetAttr("stroke-width", "3px")
	addLabel(p, label{Text: "Time", X: w / 2, Y: h + 50, Size: 20, Font: lineFont})
	c.yLabel = addLabel(p, label{X: -h / 2, Y: -f.Margin.Left + 20, Size: 20, Font: lineFont, Rotate: -90, Class: "y-label"})
	p.Append("rect").SetClass("overlay").SetNum("width", w).SetNum("height", h).
		SetAttr("fill", "none").SetAttr("pointer-events", "all")
	c.tip = tooltip.Tooltip{Width: w, Height: h, Radius: 7.5}
	return c, nil
}

func (c *lineChart) Defaults() view.State {
	coin := c.cfg.Selected["coin"]
	if coin == "" {
		coin = c.coins[0].Key
	}
	s := c.cfg.initial(view.State{}).With("coin", coin)
	if _, ok := c.cfg.Selected["metric"]; !ok {
		s = s.With("metric", "price_usd")
	}
	if lo, hi, ok := c.extent(coin); ok {
		s.Range = view.Range{Min: lo, Max: hi, Set: true}
	}
	return s
}

// extent is the date extent of a coin in Unix milliseconds.
func (c *lineChart) extent(coin string) (float64, float64, bool) {
	t, ok := c.coins.Get(coin)
	if !ok || t.Len() == 0 {
		return 0, 0, false
	}
	var ms []float64
	for _, r := range t.Rows {
		ms = append(ms, float64(r.Time("date").UnixMilli()))
	}
	return scale.Extent(ms)
}

// Sync resets the date range when the user picks another coin.
func (c *lineChart) Sync(msg view.Msg, _ view.State) []view.Msg {
	sel, ok := msg.(view.Select)
	if !ok || sel.Control != "coin" {
		return nil
	}
	lo, hi, ok := c.extent(sel.Value)
	if !ok {
		return nil
	}
	return []view.Msg{view.SetRange{Min: lo, Max: hi, Source: view.Programmatic}}
}

func (c *lineChart) Update(s view.State) error {
	coin, err := choose(Line, "coin", s.Get("coin", c.coins[0].Key), c.coins.Keys())
	if err != nil {
		return err
	}
	metric, err := choose(Line, "metric", s.Get("metric", "price_usd"), coinMetrics)
	if err != nil {
		return err
	}
	t, _ := c.coins.Get(coin)
	rows := t.Filter(func(r dataset.Record) bool {
		return s.Range.Contains(float64(r.Time("date").UnixMilli()))
	}).Sort("date").Rows
	if len(rows) == 0 {
		return noData(Line, coin+" in the selected range")
	}
	c.shown, c.metric = rows, metric

	c.x.SetDomain(rows[0].Time("date"), rows[len(rows)-1].Time("date"))
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = r.Num(metric)
	}
	lo, hi, _ := scale.Extent(vals)
	c.y.SetDomain(scale.PadDomain(lo, hi, 1.005))

	tr := c.transition()
	c.xAxis.Render(c.xGroup, tr)
	c.yAxis.Render(c.yGroup, tr)
	c.yLabel.SetText(coinMetricText[metric] + " ($)")

	line := shape.Line[dataset.Record]{
		X: func(r dataset.Record, _ int) float64 { return c.x.Map(r.Time("date")) },
		Y: func(r dataset.Record, _ int) float64 { return c.y.Map(r.Num(metric)) },
	}
	tr.Attr(c.path, "d", line.Path(rows))
	c.focus(s.Tooltip)
	return nil
}

// focus moves the tooltip to the point nearest the pointer.
func (c *lineChart) focus(st tooltip.State) {
	p := tooltip.Point{}
	if st.Phase == tooltip.Shown {
		keys := make([]float64, len(c.shown))
		for i, r := range c.shown {
			keys[i] = float64(r.Time("date").UnixMilli())
		}
		at := float64(c.x.Invert(st.X).UnixMilli())
		if i, ok := tooltip.Nearest(keys, at); ok {
			r := c.shown[i]
			v := r.Num(c.metric)
			p = tooltip.Point{
				X:     c.x.Map(r.Time("date")),
				Y:     c.y.Map(v),
				Lines: []string{format.Thousands(v, 2), format.FormatTime("%d/%m/%Y", r.Time("date"))},
			}
		}
	}
	c.tip.Render(c.Plot(), st, p)
}

func (c *lineChart) Series() []Series {
	s := Series{Name: c.metric, Time: true}
	for _, r := range c.shown {
		s.X = append(s.X, float64(r.Time("date").UnixMilli()))
		s.Y = append(s.Y, r.Num(c.metric))
	}
	return []Series{s}
}
