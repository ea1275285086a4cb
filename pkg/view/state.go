// Package view holds the explicit view state of an interactive chart and
// the messages that change it.
//
// Every control (select box, slider, brush, play button, pointer, drag
// handle) is a [Msg]. [Reduce] folds a message into a [State] and returns
// the new state; it never mutates its input, so a State can be copied into
// chart updates and snapshots by value.
package view

import (
	"maps"
	"math"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/tooltip"
)

// Source tells whether a change came from the user or was mirrored by
// another control. Mirrored changes never trigger further mirroring.
type Source int

const (
	User Source = iota
	Programmatic
)

func (s Source) String() string {
	if s == Programmatic {
		return "programmatic"
	}
	return "user"
}

// Range is a selected data interval in the chart's data units: Unix
// milliseconds for dates, plain numbers for years.
type Range struct {
	Min, Max float64
	Set      bool
}

// Contains reports whether v lies in the range inclusively. An unset range
// contains everything.
func (r Range) Contains(v float64) bool {
	return !r.Set || (v >= r.Min && v <= r.Max)
}

// BrushState is the brush selection in pixels.
type BrushState struct {
	X0, X1 float64
	Empty  bool
}

// DragState is the node currently being dragged.
type DragState struct {
	ID     string
	X, Y   float64
	Active bool
}

// State is the complete view state of a chart.
type State struct {
	// Selected maps a control name (coin, metric, continent, option) to
	// its value.
	Selected map[string]string `json:"selected,omitempty"`
	// Params holds numeric controls (top-N, speed, inner radius).
	Params map[string]float64 `json:"params,omitempty"`

	Range Range      `json:"range"`
	Brush BrushState `json:"brush"`

	// Frame indexes the animation frame (year); Frames is the frame count
	// used to wrap playback.
	Frame   int  `json:"frame"`
	Frames  int  `json:"frames"`
	Playing bool `json:"playing"`

	// Direction is -1, 0 or 1 and Rotation the accumulated angle in
	// degrees, for rotating charts.
	Direction int     `json:"direction"`
	Rotation  float64 `json:"rotation"`

	Tooltip tooltip.State `json:"tooltip"`
	Drag    DragState     `json:"drag"`
}

// Get returns the selected value of a control, or def when unset.
func (s State) Get(control, def string) string {
	if v, ok := s.Selected[control]; ok {
		return v
	}
	return def
}

// Param returns a numeric parameter, or def when unset.
func (s State) Param(name string, def float64) float64 {
	if v, ok := s.Params[name]; ok {
		return v
	}
	return def
}

// With returns a copy of s with control set to value.
func (s State) With(control, value string) State {
	s.Selected = maps.Clone(s.Selected)
	if s.Selected == nil {
		s.Selected = map[string]string{}
	}
	s.Selected[control] = value
	return s
}

// WithParam returns a copy of s with a numeric parameter set.
func (s State) WithParam(name string, v float64) State {
	s.Params = maps.Clone(s.Params)
	if s.Params == nil {
		s.Params = map[string]float64{}
	}
	s.Params[name] = v
	return s
}

// Reduce applies msg to s and returns the new state.
func Reduce(s State, msg Msg) (State, error) {
	switch m := msg.(type) {
	case Select:
		if m.Control == "" {
			return s, errors.New(errors.ErrCodeInvalidMessage, "select: control is required")
		}
		if m.Control == "direction" {
			d, ok := directions[m.Value]
			if !ok {
				return s, errors.New(errors.ErrCodeInvalidMessage, "select: unknown direction %q", m.Value)
			}
			s.Direction = d
		}
		return s.With(m.Control, m.Value), nil

	case SetRange:
		if math.IsNaN(m.Min) || math.IsNaN(m.Max) {
			return s, errors.New(errors.ErrCodeInvalidMessage, "set range: bounds must be numbers")
		}
		lo, hi := m.Min, m.Max
		if lo > hi {
			lo, hi = hi, lo
		}
		s.Range = Range{Min: lo, Max: hi, Set: true}
		return s, nil

	case Brush:
		x0, x1 := m.X0, m.X1
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		s.Brush = BrushState{X0: x0, X1: x1, Empty: m.Empty || x0 == x1}
		return s, nil

	case Play:
		s.Playing = true
		return s, nil

	case Pause:
		s.Playing = false
		return s, nil

	case Reset:
		s.Frame = 0
		s.Rotation = 0
		return s, nil

	case Tick:
		if s.Playing && s.Frames > 0 {
			s.Frame = (s.Frame + 1) % s.Frames
		}
		if s.Direction != 0 {
			s.Rotation = math.Mod(s.Rotation+float64(s.Direction)*s.Param("speed", 1), 360)
		}
		return s, nil

	case SetFrame:
		if s.Frames > 0 && (m.Index < 0 || m.Index >= s.Frames) {
			return s, errors.New(errors.ErrCodeInvalidMessage, "set frame: index %d outside [0, %d)", m.Index, s.Frames)
		}
		s.Frame = m.Index
		return s, nil

	case SetParam:
		if m.Name == "" {
			return s, errors.New(errors.ErrCodeInvalidMessage, "set param: name is required")
		}
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
			return s, errors.New(errors.ErrCodeInvalidMessage, "set param %s: value must be finite", m.Name)
		}
		return s.WithParam(m.Name, m.Value), nil

	case Pointer:
		s.Tooltip = s.Tooltip.Next(m.Phase, s.Tooltip.Index, m.X, m.Y)
		return s, nil

	case Drag:
		switch m.Phase {
		case DragStart:
			s.Drag = DragState{ID: m.ID, X: m.X, Y: m.Y, Active: true}
		case DragMove:
			if s.Drag.Active && s.Drag.ID == m.ID {
				s.Drag.X, s.Drag.Y = m.X, m.Y
			}
		case DragEnd:
			if s.Drag.ID == m.ID {
				s.Drag.Active = false
			}
		}
		return s, nil
	}
	return s, errors.New(errors.ErrCodeInvalidMessage, "unknown message %T", msg)
}

var directions = map[string]int{"left": -1, "stop": 0, "right": 1}
