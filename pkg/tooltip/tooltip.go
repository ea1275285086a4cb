// Package tooltip locates the data point nearest to a pointer and draws the
// hover focus (crosshair lines, marker and label) for it.
//
// Lookups bisect a sorted key column, so they assume keys are ascending, the
// way loaders return time series.
package tooltip

import (
	"sort"

	"github.com/matzehuels/vizlab/pkg/scene"
)

// BisectLeft returns the first index i >= lo with keys[i] >= x, or len(keys)
// when every key from lo on is smaller.
func BisectLeft(keys []float64, x float64, lo int) int {
	lo = max(0, min(lo, len(keys)))
	return lo + sort.Search(len(keys)-lo, func(i int) bool { return keys[lo+i] >= x })
}

// Nearest returns the index of the key closest to x. Bisection starts at
// index 1 so both neighbours exist; when x is equidistant from them the
// later point wins. ok is false for empty keys.
func Nearest(keys []float64, x float64) (int, bool) {
	switch len(keys) {
	case 0:
		return 0, false
	case 1:
		return 0, true
	}
	i := BisectLeft(keys, x, 1)
	if i >= len(keys) {
		return len(keys) - 1, true
	}
	if x-keys[i-1] >= keys[i]-x {
		return i, true
	}
	return i - 1, true
}

// Phase is the visibility of the tooltip.
type Phase int

const (
	Hidden Phase = iota
	Shown
)

func (p Phase) String() string {
	if p == Shown {
		return "shown"
	}
	return "hidden"
}

// Event is a pointer transition over the plot overlay.
type Event int

const (
	Enter Event = iota
	Move
	Leave
)

// State is the tooltip visibility plus the focused point.
type State struct {
	Phase Phase
	Index int
	X, Y  float64
}

// Next returns the state after ev with the point at index idx drawn at
// (x, y). Move while hidden is ignored: only Enter shows the tooltip.
func (s State) Next(ev Event, idx int, x, y float64) State {
	switch ev {
	case Enter:
		return State{Phase: Shown, Index: idx, X: x, Y: y}
	case Move:
		if s.Phase == Hidden {
			return s
		}
		return State{Phase: Shown, Index: idx, X: x, Y: y}
	case Leave:
		return State{Phase: Hidden}
	}
	return s
}

// Tooltip draws the focus group inside a plot of the given size.
type Tooltip struct {
	Width, Height float64
	Radius        float64
}

// Point is a focused datum in plot coordinates with its label lines.
type Point struct {
	X, Y  float64
	Lines []string
}

// Render creates or updates the "focus" group under parent. A hidden state
// hides the group without removing it, so the next Enter reuses it.
func (t Tooltip) Render(parent *scene.Element, st State, p Point) *scene.Element {
	focus := parent.First("g.focus")
	if focus == nil {
		focus = parent.Append("g").SetClass("focus")
		focus.Append("line").SetClass("x-hover-line hover-line")
		focus.Append("line").SetClass("y-hover-line hover-line")
		focus.Append("circle")
		focus.Append("text")
	}
	if st.Phase == Hidden {
		focus.SetAttr("display", "none")
		return focus
	}
	focus.SetAttr("display", "inline")
	focus.SetAttr("transform", scene.Translate(p.X, p.Y))

	r := t.Radius
	if r == 0 {
		r = 7.5
	}
	xLine, yLine := focus.Children[0], focus.Children[1]
	xLine.SetNum("y1", 0).SetNum("y2", t.Height-p.Y)
	yLine.SetNum("x1", 0).SetNum("x2", -p.X)
	focus.Children[2].SetNum("r", r)

	text := focus.Children[3]
	text.SetNum("x", 15).SetAttr("dy", ".31em")
	text.Children = nil
	for i, line := range p.Lines {
		if i == 0 {
			text.SetText(line)
			continue
		}
		text.Append("tspan").SetNum("x", 15).SetAttr("dy", "1.2em").SetText(line)
	}
	if len(p.Lines) == 0 {
		text.SetText("")
	}
	return focus
}
