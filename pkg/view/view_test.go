package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/tooltip"
)

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := State{}.With("coin", "bitcoin")
	after, err := Reduce(before, Select{Control: "coin", Value: "ethereum"})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := before.Get("coin", ""); got != "bitcoin" {
		t.Errorf("input state changed to %q", got)
	}
	if got := after.Get("coin", ""); got != "ethereum" {
		t.Errorf("coin = %q, want ethereum", got)
	}
}

func TestReducePlayback(t *testing.T) {
	s := State{Frames: 3}
	steps := []struct {
		msg   Msg
		frame int
		play  bool
	}{
		{Tick{}, 0, false},
		{Play{}, 0, true},
		{Tick{}, 1, true},
		{Tick{}, 2, true},
		{Tick{}, 0, true},
		{Pause{}, 0, false},
		{SetFrame{Index: 2}, 2, false},
		{Reset{}, 0, false},
	}
	for i, st := range steps {
		var err error
		s, err = Reduce(s, st.msg)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.Frame != st.frame || s.Playing != st.play {
			t.Errorf("step %d (%s): frame/playing = %d/%v, want %d/%v", i, st.msg.Type(), s.Frame, s.Playing, st.frame, st.play)
		}
	}
	if _, err := Reduce(s, SetFrame{Index: 3}); !errors.Is(err, errors.ErrCodeInvalidMessage) {
		t.Errorf("SetFrame(3) error = %v, want INVALID_MESSAGE", err)
	}
}

func TestReduceRotation(t *testing.T) {
	s := State{}.WithParam("speed", 5)
	s, _ = Reduce(s, Select{Control: "direction", Value: "left"})
	s, _ = Reduce(s, Tick{})
	s, _ = Reduce(s, Tick{})
	if s.Rotation != -10 || s.Direction != -1 {
		t.Errorf("rotation/direction = %v/%d, want -10/-1", s.Rotation, s.Direction)
	}
	s, _ = Reduce(s, Select{Control: "direction", Value: "stop"})
	s, _ = Reduce(s, Tick{})
	if s.Rotation != -10 {
		t.Errorf("rotation after stop = %v, want -10", s.Rotation)
	}
	if _, err := Reduce(s, Select{Control: "direction", Value: "up"}); err == nil {
		t.Errorf("unknown direction accepted")
	}
}

func TestReduceRangeAndBrush(t *testing.T) {
	s, _ := Reduce(State{}, SetRange{Min: 10, Max: 2})
	if diff := cmp.Diff(Range{Min: 2, Max: 10, Set: true}, s.Range); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}
	if !s.Range.Contains(10) || s.Range.Contains(11) {
		t.Errorf("Contains is not inclusive of [2, 10]")
	}
	s, _ = Reduce(s, Brush{X0: 50, X1: 50})
	if !s.Brush.Empty {
		t.Errorf("zero-width brush not empty")
	}
}

func TestReducePointerAndDrag(t *testing.T) {
	s, _ := Reduce(State{}, Pointer{Phase: tooltip.Move, X: 5})
	if s.Tooltip.Phase != tooltip.Hidden {
		t.Errorf("move while hidden showed the tooltip")
	}
	s, _ = Reduce(s, Pointer{Phase: tooltip.Enter, X: 5, Y: 6})
	s, _ = Reduce(s, Pointer{Phase: tooltip.Move, X: 7, Y: 8})
	if s.Tooltip.Phase != tooltip.Shown || s.Tooltip.X != 7 {
		t.Errorf("tooltip = %+v, want shown at x 7", s.Tooltip)
	}

	s, _ = Reduce(s, Drag{Phase: DragStart, ID: "Karlsplatz", X: 1, Y: 2})
	s, _ = Reduce(s, Drag{Phase: DragMove, ID: "Other", X: 9, Y: 9})
	s, _ = Reduce(s, Drag{Phase: DragMove, ID: "Karlsplatz", X: 3, Y: 4})
	want := DragState{ID: "Karlsplatz", X: 3, Y: 4, Active: true}
	if diff := cmp.Diff(want, s.Drag); diff != "" {
		t.Errorf("drag mismatch (-want +got):\n%s", diff)
	}
	s, _ = Reduce(s, Drag{Phase: DragEnd, ID: "Karlsplatz"})
	if s.Drag.Active {
		t.Errorf("drag still active after end")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want Msg
		code errors.Code
	}{
		{`{"type":"select","control":"coin","value":"bitcoin"}`, Select{Control: "coin", Value: "bitcoin"}, ""},
		{`{"type":"range","min":1,"max":2}`, SetRange{Min: 1, Max: 2}, ""},
		{`{"type":"play"}`, Play{}, ""},
		{`{"type":"param","name":"top","value":10}`, SetParam{Name: "top", Value: 10}, ""},
		{`{"type":"frame","index":"x"}`, nil, errors.ErrCodeInvalidMessage},
		{`{"type":"launch"}`, nil, errors.ErrCodeInvalidMessage},
		{`{}`, nil, errors.ErrCodeInvalidMessage},
		{`not json`, nil, errors.ErrCodeInvalidMessage},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("Decode error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := Brush{X0: 10, X1: 90, Source: Programmatic}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(%s): %v", data, err)
	}
	if diff := cmp.Diff(Msg(in), out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
