// Package force runs velocity Verlet force simulations for node-link
// diagrams.
//
// A [Simulation] owns a slice of [Node] values and a set of named forces.
// Each [Simulation.Tick] cools alpha towards alphaTarget, lets every force
// adjust node velocities and then moves the nodes. Nodes without a position
// start on a phyllotaxis spiral, and every random nudge comes from a seeded
// generator so layouts are reproducible.
//
// Dragging pins a node with [Node.Fix] and reheats the simulation with
// [Simulation.SetAlphaTarget]; releasing calls [Node.Release] and lowers the
// target back to zero.
package force

import (
	"math"
	"slices"
)

// Node is a simulated body.
type Node struct {
	ID     string
	Index  int
	X, Y   float64
	VX, VY float64

	fixed  bool
	fx, fy float64
}

// Fix pins the node at (x, y); ticks keep it there with zero velocity.
func (n *Node) Fix(x, y float64) {
	n.fixed, n.fx, n.fy = true, x, y
}

// Release unpins the node.
func (n *Node) Release() { n.fixed = false }

// Fixed reports whether the node is pinned.
func (n *Node) Fixed() bool { return n.fixed }

// Force adjusts node velocities each tick.
type Force interface {
	// Initialize is called whenever the node set changes.
	Initialize(nodes []*Node, random func() float64)
	// Apply nudges velocities for the given alpha.
	Apply(alpha float64)
}

const (
	initialRadius = 10
	defaultTicks  = 300
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Simulation integrates forces over a set of nodes.
type Simulation struct {
	nodes         []*Node
	forces        []namedForce
	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	random        func() float64
	ticks         int
}

type namedForce struct {
	name  string
	force Force
}

// New returns a simulation over nodes with d3's defaults: alpha 1,
// alphaMin 0.001, a decay that cools to alphaMin in 300 ticks and a
// velocity decay of 0.4.
func New(nodes []*Node) *Simulation {
	s := &Simulation{
		alpha:         1,
		alphaMin:      0.001,
		velocityDecay: 0.6,
		random:        LCG(),
	}
	s.alphaDecay = 1 - math.Pow(s.alphaMin, 1.0/defaultTicks)
	s.SetNodes(nodes)
	return s
}

// LCG returns the deterministic linear congruential generator the
// simulation uses for jiggle, yielding values in [0, 1).
func LCG() func() float64 {
	const a, c, m = 1664525, 1013904223, 4294967296
	s := 1.0
	return func() float64 {
		s = math.Mod(a*s+c, m)
		return s / m
	}
}

// Nodes returns the simulated nodes.
func (s *Simulation) Nodes() []*Node { return s.nodes }

// Node returns the node with id, or nil.
func (s *Simulation) Node(id string) *Node {
	for _, n := range s.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// SetNodes replaces the node set, placing unpositioned nodes on a
// phyllotaxis spiral, and reinitialises every force. A node at the origin
// counts as unpositioned.
func (s *Simulation) SetNodes(nodes []*Node) *Simulation {
	s.nodes = nodes
	for i, n := range nodes {
		n.Index = i
		if n.fixed {
			n.X, n.Y = n.fx, n.fy
		}
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || (n.X == 0 && n.Y == 0 && !n.fixed) {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
	for _, f := range s.forces {
		f.force.Initialize(s.nodes, s.random)
	}
	return s
}

// AddForce registers f under name, replacing any force with that name.
// A nil force removes it.
func (s *Simulation) AddForce(name string, f Force) *Simulation {
	s.forces = slices.DeleteFunc(s.forces, func(nf namedForce) bool { return nf.name == name })
	if f != nil {
		f.Initialize(s.nodes, s.random)
		s.forces = append(s.forces, namedForce{name, f})
	}
	return s
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, f := range s.forces {
		if f.name == name {
			return f.force
		}
	}
	return nil
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets alpha, usually to reheat after a change.
func (s *Simulation) SetAlpha(a float64) *Simulation {
	s.alpha = a
	return s
}

// SetAlphaTarget sets the value alpha decays towards.
func (s *Simulation) SetAlphaTarget(a float64) *Simulation {
	s.alphaTarget = a
	return s
}

// AlphaTarget returns the value alpha decays towards.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaDecay sets the per-tick alpha decay rate.
func (s *Simulation) SetAlphaDecay(d float64) *Simulation {
	s.alphaDecay = d
	return s
}

// SetAlphaMin sets the alpha below which the simulation stops.
func (s *Simulation) SetAlphaMin(a float64) *Simulation {
	s.alphaMin = a
	return s
}

// SetVelocityDecay sets the friction applied each tick; 0.4 keeps 60% of
// the velocity.
func (s *Simulation) SetVelocityDecay(d float64) *Simulation {
	s.velocityDecay = 1 - d
	return s
}

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Done reports whether alpha has cooled below alphaMin.
func (s *Simulation) Done() bool { return s.alpha < s.alphaMin }

// Restart reheats a stopped simulation so [Simulation.Run] continues.
func (s *Simulation) Restart() *Simulation {
	if s.alpha < s.alphaMin {
		s.alpha = s.alphaMin
	}
	return s
}

// Tick advances the simulation by n steps regardless of alpha.
func (s *Simulation) Tick(n int) {
	for range n {
		s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
		for _, f := range s.forces {
			f.force.Apply(s.alpha)
		}
		for _, node := range s.nodes {
			if node.fixed {
				node.X, node.Y = node.fx, node.fy
				node.VX, node.VY = 0, 0
				continue
			}
			node.VX *= s.velocityDecay
			node.VY *= s.velocityDecay
			node.X += node.VX
			node.Y += node.VY
		}
		s.ticks++
	}
}

// Run ticks until alpha drops below alphaMin or limit ticks have run
// (limit <= 0 means no limit). It returns the number of ticks taken.
func (s *Simulation) Run(limit int) int {
	n := 0
	for !s.Done() && (limit <= 0 || n < limit) {
		s.Tick(1)
		n++
		if s.alphaTarget >= s.alphaMin && math.Abs(s.alpha-s.alphaTarget) < 1e-9 {
			break
		}
	}
	return n
}

func jiggle(random func() float64) float64 {
	return (random() - 0.5) * 1e-6
}
