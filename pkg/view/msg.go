package view

import (
	"encoding/json"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/tooltip"
)

// Msg is an interaction event.
type Msg interface {
	// Type names the message in its JSON envelope.
	Type() string
}

// Select picks a value for a control, e.g. {coin bitcoin}.
type Select struct {
	Control string `json:"control"`
	Value   string `json:"value"`
}

// SetRange selects a data interval from a slider.
type SetRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Source Source  `json:"source,omitempty"`
}

// Brush reports a brush selection in pixels. Empty clears the selection.
type Brush struct {
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Empty  bool    `json:"empty,omitempty"`
	Source Source  `json:"source,omitempty"`
}

// Play starts frame playback.
type Play struct{}

// Pause stops frame playback.
type Pause struct{}

// Reset returns to the first frame.
type Reset struct{}

// Tick advances playback by one step.
type Tick struct{}

// SetFrame jumps to a frame.
type SetFrame struct {
	Index int `json:"index"`
}

// SetParam sets a numeric control.
type SetParam struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Pointer is a pointer event over the plot overlay.
type Pointer struct {
	Phase tooltip.Event `json:"phase"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
}

// DragPhase is the stage of a drag gesture.
type DragPhase int

const (
	DragStart DragPhase = iota
	DragMove
	DragEnd
)

// Drag moves a node.
type Drag struct {
	Phase DragPhase `json:"phase"`
	ID    string    `json:"id"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
}

func (Select) Type() string   { return "select" }
func (SetRange) Type() string { return "range" }
func (Brush) Type() string    { return "brush" }
func (Play) Type() string     { return "play" }
func (Pause) Type() string    { return "pause" }
func (Reset) Type() string    { return "reset" }
func (Tick) Type() string     { return "tick" }
func (SetFrame) Type() string { return "frame" }
func (SetParam) Type() string { return "param" }
func (Pointer) Type() string  { return "pointer" }
func (Drag) Type() string     { return "drag" }

// Decode parses a JSON message envelope: an object with a "type" field
// naming the message plus the message's own fields.
//
//	{"type": "select", "control": "coin", "value": "bitcoin"}
func Decode(data []byte) (Msg, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMessage, err, "decode message")
	}
	var msg Msg
	switch env.Type {
	case "select":
		msg = decode[Select](data)
	case "range":
		msg = decode[SetRange](data)
	case "brush":
		msg = decode[Brush](data)
	case "play":
		return Play{}, nil
	case "pause":
		return Pause{}, nil
	case "reset":
		return Reset{}, nil
	case "tick":
		return Tick{}, nil
	case "frame":
		msg = decode[SetFrame](data)
	case "param":
		msg = decode[SetParam](data)
	case "pointer":
		msg = decode[Pointer](data)
	case "drag":
		msg = decode[Drag](data)
	case "":
		return nil, errors.New(errors.ErrCodeInvalidMessage, "message type is required")
	default:
		return nil, errors.New(errors.ErrCodeInvalidMessage, "unknown message type %q", env.Type)
	}
	if err, ok := msg.(decodeError); ok {
		return nil, errors.Wrap(errors.ErrCodeInvalidMessage, err.err, "decode %s message", env.Type)
	}
	return msg, nil
}

// Encode writes msg in the envelope Decode reads.
func Encode(msg Msg) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMessage, err, "encode %s message", msg.Type())
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s message", msg.Type())
	}
	fields["type"], _ = json.Marshal(msg.Type())
	return json.Marshal(fields)
}

type decodeError struct{ err error }

func (decodeError) Type() string { return "" }

func decode[M Msg](data []byte) Msg {
	var m M
	if err := json.Unmarshal(data, &m); err != nil {
		return decodeError{err}
	}
	return m
}
