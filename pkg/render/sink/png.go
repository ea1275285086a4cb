package sink

import (
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/format"
)

// maxBars caps bar exports; longer series keep their first bars.
const maxBars = 40

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	width, height int
	dpi           float64
}

// WithSize overrides the raster size, which defaults to the chart canvas.
func WithSize(width, height int) PNGOption {
	return func(r *pngRenderer) { r.width, r.height = width, height }
}

// WithDPI sets the raster resolution.
func WithDPI(dpi float64) PNGOption { return func(r *pngRenderer) { r.dpi = dpi } }

// PNG draws the series of a tabular chart. Charts that do not implement
// chart.Tabular fail with errors.ErrCodeUnsupported.
func PNG(w io.Writer, c chart.Chart, opts ...PNGOption) error {
	tab, ok := c.(chart.Tabular)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "png: %s charts have no tabular data", c.Kind())
	}
	series := tab.Series()
	if len(series) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "png: %s has nothing on screen", c.Name())
	}

	r := pngRenderer{
		width:  int(c.Root().Num("width")),
		height: int(c.Root().Num("height")),
	}
	for _, opt := range opts {
		opt(&r)
	}

	var err error
	if len(series) == 1 && len(series[0].Labels) > 0 && !series[0].Time {
		err = r.bars(w, c.Name(), series[0])
	} else {
		err = r.plot(w, c.Name(), series)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "png: render %s", c.Name())
	}
	return nil
}

func (r pngRenderer) bars(w io.Writer, title string, s chart.Series) error {
	n := min(len(s.Y), maxBars)
	bc := gochart.BarChart{
		Title:      title,
		TitleStyle: gochart.Style{FontSize: 14},
		Width:      r.width,
		Height:     r.height,
		DPI:        r.dpi,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{TextRotationDegrees: 45},
		YAxis: gochart.YAxis{
			Style:          gochart.Style{FontSize: 10},
			ValueFormatter: siFormatter,
		},
		Bars: make([]gochart.Value, 0, n),
	}
	lo, hi := 0.0, 0.0
	for i := range n {
		v := finite(s.Y[i])
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		bc.Bars = append(bc.Bars, gochart.Value{Label: s.Labels[i], Value: v})
	}
	if hi == lo {
		hi = lo + 1
	}
	bc.YAxis.Range = &gochart.ContinuousRange{Min: lo, Max: hi}
	return bc.Render(gochart.PNG, w)
}

func (r pngRenderer) plot(w io.Writer, title string, series []chart.Series) error {
	ch := gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontSize: 14},
		Width:      r.width,
		Height:     r.height,
		DPI:        r.dpi,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis:      gochart.YAxis{ValueFormatter: siFormatter},
	}
	for i, s := range series {
		colour := gochart.GetDefaultColor(i)
		style := gochart.Style{StrokeColor: colour, StrokeWidth: 2}
		// Labelled points without dates are scattered, not joined.
		if len(s.Labels) > 0 && !s.Time {
			style = pointStyle(colour)
		}
		ys := make([]float64, len(s.Y))
		for j, y := range s.Y {
			ys[j] = finite(y)
		}
		if s.Time {
			xs := make([]time.Time, len(s.X))
			for j, x := range s.X {
				xs[j] = time.UnixMilli(int64(x)).UTC()
			}
			ch.Series = append(ch.Series, gochart.TimeSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style})
			ch.XAxis.ValueFormatter = gochart.TimeDateValueFormatter
			continue
		}
		ch.Series = append(ch.Series, gochart.ContinuousSeries{Name: s.Name, XValues: s.X, YValues: ys, Style: style})
	}
	if len(series) > 1 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	return ch.Render(gochart.PNG, w)
}

func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func siFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return format.Abbreviate(f)
	}
	return gochart.FloatValueFormatter(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
