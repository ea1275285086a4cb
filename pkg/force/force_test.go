package force

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func dist(a, b *Node) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestPhyllotaxis(t *testing.T) {
	nodes := []*Node{{ID: "a"}, {ID: "b"}, {ID: "c", X: 5, Y: 5}}
	New(nodes)
	if got, want := nodes[0].X, 10*math.Sqrt(0.5); math.Abs(got-want) > 1e-9 || nodes[0].Y != 0 {
		t.Errorf("node a = (%v, %v), want (%v, 0)", nodes[0].X, nodes[0].Y, want)
	}
	if r := math.Hypot(nodes[1].X, nodes[1].Y); math.Abs(r-10*math.Sqrt(1.5)) > 1e-9 {
		t.Errorf("node b radius = %v, want %v", r, 10*math.Sqrt(1.5))
	}
	if nodes[2].X != 5 || nodes[2].Y != 5 {
		t.Errorf("positioned node moved to (%v, %v)", nodes[2].X, nodes[2].Y)
	}
	if nodes[2].Index != 2 {
		t.Errorf("Index = %d, want 2", nodes[2].Index)
	}
}

func TestCenter(t *testing.T) {
	nodes := []*Node{{X: 2, Y: 1}, {X: 4, Y: 3}}
	c := &Center{X: 10, Y: 10}
	c.Initialize(nodes, LCG())
	c.Apply(1)
	got := [][2]float64{{nodes[0].X, nodes[0].Y}, {nodes[1].X, nodes[1].Y}}
	want := [][2]float64{{9, 9}, {11, 11}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Center mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCoolsDown(t *testing.T) {
	s := New([]*Node{{ID: "a"}, {ID: "b"}})
	n := s.Run(0)
	if n < 299 || n > 302 {
		t.Errorf("Run took %d ticks, want about 300", n)
	}
	if !s.Done() {
		t.Errorf("Done = false after Run, alpha %v", s.Alpha())
	}
	if got := s.Run(0); got != 0 {
		t.Errorf("second Run = %d ticks, want 0", got)
	}
	s.SetAlpha(0.5)
	if got := s.Run(10); got != 10 {
		t.Errorf("reheated Run(10) = %d, want 10", got)
	}
}

func TestLinkRestingDistance(t *testing.T) {
	nodes := []*Node{{X: 1, Y: 1}, {X: 101, Y: 1}}
	s := New(nodes).AddForce("link", &Links{Links: []Link{{0, 1}}})
	s.Run(0)
	if d := dist(nodes[0], nodes[1]); math.Abs(d-30) > 1 {
		t.Errorf("linked distance = %v, want about 30", d)
	}
}

func TestManyBodyRepels(t *testing.T) {
	nodes := []*Node{{X: 1, Y: 1}, {X: 3, Y: 1}}
	s := New(nodes).AddForce("charge", Charge(-70))
	s.Tick(20)
	if d := dist(nodes[0], nodes[1]); d <= 2 {
		t.Errorf("distance after repulsion = %v, want > 2", d)
	}
	if nodes[0].X >= 1 || nodes[1].X <= 3 {
		t.Errorf("nodes moved the wrong way: %v %v", nodes[0].X, nodes[1].X)
	}
}

func TestCollideSeparates(t *testing.T) {
	nodes := []*Node{{X: 1, Y: 1}, {X: 2, Y: 1}}
	s := New(nodes).AddForce("collide", CollideRadius(10))
	s.Run(0)
	if d := dist(nodes[0], nodes[1]); d < 19 {
		t.Errorf("collided distance = %v, want >= 19", d)
	}
}

func TestPositionForce(t *testing.T) {
	nodes := []*Node{{X: 1, Y: 1}}
	s := New(nodes).
		AddForce("x", X(func(*Node) float64 { return 100 })).
		AddForce("y", Y(func(*Node) float64 { return -50 }))
	s.Run(0)
	if math.Abs(nodes[0].X-100) > 1 || math.Abs(nodes[0].Y+50) > 1 {
		t.Errorf("node = (%v, %v), want near (100, -50)", nodes[0].X, nodes[0].Y)
	}
}

func TestFixedNodeStays(t *testing.T) {
	nodes := []*Node{{X: 1, Y: 1}, {X: 2, Y: 2}}
	nodes[0].Fix(50, 60)
	s := New(nodes).AddForce("charge", Charge(-70))
	s.Tick(5)
	if nodes[0].X != 50 || nodes[0].Y != 60 {
		t.Errorf("fixed node at (%v, %v), want (50, 60)", nodes[0].X, nodes[0].Y)
	}
	nodes[0].Release()
	s.Tick(5)
	if nodes[0].Fixed() || (nodes[0].X == 50 && nodes[0].Y == 60) {
		t.Errorf("released node did not move")
	}
}

func TestDeterministic(t *testing.T) {
	run := func() [][2]float64 {
		var nodes []*Node
		for range 12 {
			nodes = append(nodes, &Node{})
		}
		links := []Link{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}}
		New(nodes).
			AddForce("charge", Charge(-70)).
			AddForce("collide", CollideRadius(10)).
			AddForce("link", &Links{Links: links}).
			Run(0)
		out := make([][2]float64, len(nodes))
		for i, n := range nodes {
			out[i] = [2]float64{n.X, n.Y}
		}
		return out
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("simulation not reproducible (-first +second):\n%s", diff)
	}
}

func TestAddForceReplaces(t *testing.T) {
	s := New(nil).AddForce("charge", Charge(-30)).AddForce("charge", Charge(-70))
	if got := len(s.forces); got != 1 {
		t.Errorf("forces = %d, want 1", got)
	}
	s.AddForce("charge", nil)
	if s.Force("charge") != nil {
		t.Errorf("Force(charge) still registered after removal")
	}
}
