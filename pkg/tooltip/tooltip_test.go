package tooltip

import (
	"testing"

	"github.com/matzehuels/vizlab/pkg/scene"
)

func TestBisectLeft(t *testing.T) {
	keys := []float64{1, 3, 3, 5}
	tests := []struct {
		x    float64
		lo   int
		want int
	}{
		{0, 0, 0},
		{3, 0, 1},
		{4, 0, 3},
		{9, 0, 4},
		{0, 1, 1},
		{3, 2, 2},
	}
	for _, tt := range tests {
		if got := BisectLeft(keys, tt.x, tt.lo); got != tt.want {
			t.Errorf("BisectLeft(%v, %v, %d) = %d, want %d", keys, tt.x, tt.lo, got, tt.want)
		}
	}
}

func TestNearest(t *testing.T) {
	keys := []float64{10, 20, 30, 40}
	tests := []struct {
		name string
		x    float64
		want int
	}{
		{"before first", 0, 0},
		{"closer to earlier", 22, 1},
		{"closer to later", 28, 2},
		{"exact tie goes later", 25, 2},
		{"on a key", 30, 2},
		{"past last", 99, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nearest(keys, tt.x)
			if !ok || got != tt.want {
				t.Errorf("Nearest(%v) = %d, %v, want %d, true", tt.x, got, ok, tt.want)
			}
		})
	}

	if _, ok := Nearest(nil, 1); ok {
		t.Error("Nearest(nil) ok = true, want false")
	}
	if got, ok := Nearest([]float64{5}, 100); !ok || got != 0 {
		t.Errorf("Nearest(single) = %d, %v, want 0, true", got, ok)
	}
}

func TestStateMachine(t *testing.T) {
	var s State
	s = s.Next(Move, 3, 1, 1)
	if s.Phase != Hidden {
		t.Fatalf("Move while hidden showed the tooltip")
	}
	s = s.Next(Enter, 1, 10, 20)
	if s.Phase != Shown || s.Index != 1 {
		t.Fatalf("after Enter = %+v, want shown at 1", s)
	}
	s = s.Next(Move, 2, 30, 40)
	if s.Phase != Shown || s.Index != 2 || s.X != 30 {
		t.Errorf("after Move = %+v, want shown at 2 (30,40)", s)
	}
	s = s.Next(Leave, 0, 0, 0)
	if s.Phase != Hidden {
		t.Errorf("after Leave = %v, want hidden", s.Phase)
	}
}

func TestRender(t *testing.T) {
	plot := scene.New("g")
	tip := Tooltip{Width: 600, Height: 400}

	focus := tip.Render(plot, State{Phase: Shown}, Point{X: 100, Y: 150, Lines: []string{"$9,200", "28/04/2013"}})
	if got, _ := focus.Attr("transform"); got != "translate(100,150)" {
		t.Errorf("transform = %q", got)
	}
	if got := focus.Children[0].Num("y2"); got != 250 {
		t.Errorf("x hover line y2 = %v, want 250", got)
	}
	if got := focus.Count("tspan"); got != 1 {
		t.Errorf("tspan count = %d, want 1", got)
	}

	again := tip.Render(plot, State{Phase: Hidden}, Point{})
	if again != focus {
		t.Error("Render created a second focus group")
	}
	if got, _ := focus.Attr("display"); got != "none" {
		t.Errorf("display when hidden = %q, want none", got)
	}
}
