// Package axis draws reference lines, ticks and labels for a scale.
//
// An [Axis] is re-rendered on every chart update. Tick groups are keyed by
// their label, so rendering after a domain change is itself a join: ticks
// that survive slide to their new position, new ticks fade in and vanished
// ticks fade out before removal.
package axis

import (
	"time"

	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
)

// Orient places the axis relative to the plot.
type Orient int

const (
	Top Orient = iota
	Right
	Bottom
	Left
)

func (o Orient) String() string {
	switch o {
	case Top:
		return "top"
	case Right:
		return "right"
	case Left:
		return "left"
	}
	return "bottom"
}

// Tick is a single reference mark.
type Tick struct {
	Value float64 // data value; Unix milliseconds for time scales, index for bands
	Pos   float64 // position along the axis in pixels
	Label string
}

// Scale is the axis' view of a scale: its pixel range and tick positions.
type Scale interface {
	Range() (float64, float64)
	ticks(a *Axis) []Tick
}

// Continuous adapts a numeric scale.
func Continuous(s *scale.Continuous) Scale { return continuousScale{s} }

// Time adapts a time scale.
func Time(s *scale.Time) Scale { return timeScale{s} }

// Band adapts a band scale; ticks sit in the middle of each band.
func Band(s *scale.Band) Scale { return bandScale{s} }

// Axis configures one axis.
type Axis struct {
	Orient Orient
	Scale  Scale

	// TickCount is the target number of ticks; zero means 10.
	TickCount int
	// TickValues overrides the generated ticks of a continuous scale.
	TickValues []float64
	// TickEvery overrides the generated ticks of a time scale.
	TickEvery *scale.Interval
	// Format labels numeric ticks; nil means format.Plain.
	Format format.Func
	// TimeFormat is a strftime layout for time ticks; empty picks a
	// layout per tick from its calendar alignment.
	TimeFormat string

	TickSize      float64 // inner tick length; zero means 6
	TickSizeOuter float64 // domain end caps; zero means 6, negative means none
	TickPadding   float64 // gap between tick and label; zero means 3
}

// New returns an axis with d3's default tick metrics.
func New(o Orient, s Scale) *Axis {
	return &Axis{Orient: o, Scale: s}
}

// Ticks returns the ticks for the scale's current domain.
func (a *Axis) Ticks() []Tick {
	if a.Scale == nil {
		return nil
	}
	return a.Scale.ticks(a)
}

func (a *Axis) count() int {
	if a.TickCount > 0 {
		return a.TickCount
	}
	return 10
}

func (a *Axis) label(v float64) string {
	if a.Format != nil {
		return a.Format(v)
	}
	return format.Plain(v)
}

func or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Render draws the axis into g, which the chart positions with a
// transform. Ticks are joined by label under tr; tr may be nil.
func (a *Axis) Render(g *scene.Element, tr *transition.Transition) {
	inner := or(a.TickSize, 6)
	outer := or(a.TickSizeOuter, 6)
	if outer < 0 {
		outer = 0
	}
	spacing := max(inner, 0) + or(a.TickPadding, 3)
	k := 1.0
	if a.Orient == Top || a.Orient == Left {
		k = -1
	}
	horizontal := a.Orient == Top || a.Orient == Bottom

	g.SetAttr("fill", "none").SetAttr("font-size", "10").SetAttr("font-family", "sans-serif")
	switch a.Orient {
	case Right:
		g.SetAttr("text-anchor", "start")
	case Left:
		g.SetAttr("text-anchor", "end")
	default:
		g.SetAttr("text-anchor", "middle")
	}

	r0, r1 := a.Scale.Range()
	var p string
	if horizontal {
		p = "M" + scene.FormatNum(r0) + "," + scene.FormatNum(k*outer) + "V0H" + scene.FormatNum(r1) + "V" + scene.FormatNum(k*outer)
	} else {
		p = "M" + scene.FormatNum(k*outer) + "," + scene.FormatNum(r0) + "H0V" + scene.FormatNum(r1) + "H" + scene.FormatNum(k*outer)
	}
	domain := g.First("path.domain")
	if domain == nil {
		domain = g.Insert("path", 0).SetClass("domain").SetAttr("stroke", "currentColor")
	}
	tr.Attr(domain, "d", p)

	place := func(pos float64) string {
		if horizontal {
			return scene.Translate(pos, 0)
		}
		return scene.Translate(0, pos)
	}

	sel := join.Select[Tick](g, "g.tick", tr.Scheduler())
	sel.Data(a.Ticks(), func(t Tick, _ int) string { return t.Label }).Apply(tr, join.Handlers[Tick]{
		Enter: func(el *scene.Element, t Tick, _ int) {
			el.SetAttr("opacity", "0").SetAttr("transform", place(t.Pos))
			line := el.Append("line").SetAttr("stroke", "currentColor")
			text := el.Append("text").SetAttr("fill", "currentColor")
			if horizontal {
				line.SetNum("y2", k*inner)
				text.SetNum("y", k*spacing)
				if a.Orient == Top {
					text.SetAttr("dy", "0em")
				} else {
					text.SetAttr("dy", "0.71em")
				}
			} else {
				line.SetNum("x2", k*inner)
				text.SetNum("x", k*spacing).SetAttr("dy", "0.32em")
			}
		},
		Update: func(el *scene.Element, t Tick, _ int, tr *transition.Transition) {
			el.Children[1].SetText(t.Label)
			tr.Attr(el, "opacity", "1")
			tr.Attr(el, "transform", place(t.Pos))
		},
		Exit: func(el *scene.Element, tr *transition.Transition) {
			tr.Attr(el, "opacity", "0")
		},
	})
}

type continuousScale struct{ s *scale.Continuous }

func (c continuousScale) Range() (float64, float64) { return c.s.Range() }

func (c continuousScale) ticks(a *Axis) []Tick {
	values := a.TickValues
	if values == nil {
		values = c.s.Ticks(a.count())
	}
	out := make([]Tick, len(values))
	for i, v := range values {
		out[i] = Tick{Value: v, Pos: c.s.Map(v), Label: a.label(v)}
	}
	return out
}

type timeScale struct{ s *scale.Time }

func (t timeScale) Range() (float64, float64) { return t.s.Range() }

func (t timeScale) ticks(a *Axis) []Tick {
	var instants []time.Time
	if a.TickEvery != nil {
		instants = t.s.TicksEvery(*a.TickEvery)
	} else {
		instants = t.s.Ticks(a.count())
	}
	out := make([]Tick, len(instants))
	for i, at := range instants {
		layout := a.TimeFormat
		if layout == "" {
			layout = calendarLayout(at)
		}
		out[i] = Tick{
			Value: float64(at.UnixMilli()),
			Pos:   t.s.Map(at),
			Label: format.FormatTime(layout, at),
		}
	}
	return out
}

// calendarLayout labels a tick by its coarsest alignment: years, months,
// days, then clock time.
func calendarLayout(t time.Time) string {
	t = t.UTC()
	switch {
	case t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0:
		return "%H:%M"
	case t.Day() != 1:
		return "%b %d"
	case t.Month() != time.January:
		return "%B"
	}
	return "%Y"
}

type bandScale struct{ s *scale.Band }

func (b bandScale) Range() (float64, float64) { return b.s.Range() }

func (b bandScale) ticks(*Axis) []Tick {
	keys := b.s.Domain()
	out := make([]Tick, 0, len(keys))
	for i, key := range keys {
		pos, ok := b.s.Map(key)
		if !ok {
			continue
		}
		out = append(out, Tick{Value: float64(i), Pos: pos + b.s.Bandwidth()/2, Label: key})
	}
	return out
}
