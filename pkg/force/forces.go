package force

import "math"

// Center translates all nodes so their mean position is (X, Y). It moves
// positions directly and leaves velocities alone.
type Center struct {
	X, Y     float64
	Strength float64 // defaults to 1

	nodes []*Node
}

func (c *Center) Initialize(nodes []*Node, _ func() float64) { c.nodes = nodes }

func (c *Center) Apply(float64) {
	if len(c.nodes) == 0 {
		return
	}
	k := c.Strength
	if k == 0 {
		k = 1
	}
	var sx, sy float64
	for _, n := range c.nodes {
		sx += n.X
		sy += n.Y
	}
	n := float64(len(c.nodes))
	sx = (sx/n - c.X) * k
	sy = (sy/n - c.Y) * k
	for _, node := range c.nodes {
		node.X -= sx
		node.Y -= sy
	}
}

// Position pulls each node towards a per-node target along one axis.
type Position struct {
	// Target returns the node's target coordinate.
	Target func(n *Node) float64
	// Strength returns the pull per node; nil means 0.1.
	Strength func(n *Node) float64

	vertical bool
	nodes    []*Node
	targets  []float64
	strength []float64
}

// X returns a force pulling nodes towards target along x.
func X(target func(n *Node) float64) *Position { return &Position{Target: target} }

// Y returns a force pulling nodes towards target along y.
func Y(target func(n *Node) float64) *Position {
	return &Position{Target: target, vertical: true}
}

func (p *Position) Initialize(nodes []*Node, _ func() float64) {
	p.nodes = nodes
	p.targets = make([]float64, len(nodes))
	p.strength = make([]float64, len(nodes))
	for i, n := range nodes {
		p.targets[i] = p.Target(n)
		p.strength[i] = 0.1
		if p.Strength != nil {
			p.strength[i] = p.Strength(n)
		}
	}
}

func (p *Position) Apply(alpha float64) {
	for i, n := range p.nodes {
		if p.vertical {
			n.VY += (p.targets[i] - n.Y) * p.strength[i] * alpha
		} else {
			n.VX += (p.targets[i] - n.X) * p.strength[i] * alpha
		}
	}
}

// ManyBody applies mutual attraction (positive strength) or repulsion
// (negative strength) between every pair of nodes, falling off with the
// square of the distance. Pairs are summed exactly.
type ManyBody struct {
	// Strength returns the charge per node; nil means -30.
	Strength    func(n *Node) float64
	DistanceMin float64 // defaults to 1
	DistanceMax float64 // 0 means unbounded

	nodes    []*Node
	strength []float64
	random   func() float64
}

// Charge returns a many-body force with a constant strength.
func Charge(strength float64) *ManyBody {
	return &ManyBody{Strength: func(*Node) float64 { return strength }}
}

func (m *ManyBody) Initialize(nodes []*Node, random func() float64) {
	m.nodes, m.random = nodes, random
	m.strength = make([]float64, len(nodes))
	for i, n := range nodes {
		m.strength[i] = -30
		if m.Strength != nil {
			m.strength[i] = m.Strength(n)
		}
	}
}

func (m *ManyBody) Apply(alpha float64) {
	dmin2 := m.DistanceMin * m.DistanceMin
	if m.DistanceMin == 0 {
		dmin2 = 1
	}
	dmax2 := math.Inf(1)
	if m.DistanceMax > 0 {
		dmax2 = m.DistanceMax * m.DistanceMax
	}
	for i, n := range m.nodes {
		for j, o := range m.nodes {
			if i == j {
				continue
			}
			x, y := o.X-n.X, o.Y-n.Y
			l := x*x + y*y
			if l >= dmax2 {
				continue
			}
			if x == 0 {
				x = jiggle(m.random)
				l += x * x
			}
			if y == 0 {
				y = jiggle(m.random)
				l += y * y
			}
			if l < dmin2 {
				l = math.Sqrt(dmin2 * l)
			}
			w := m.strength[j] * alpha / l
			n.VX += x * w
			n.VY += y * w
		}
	}
}

// Link is an edge between two nodes by index.
type Link struct {
	Source, Target int
}

// Links pulls linked nodes towards a resting distance. The default
// strength of a link is 1/min(degree) of its endpoints so hubs are not
// dragged around, and the correction is split between the endpoints by
// degree.
type Links struct {
	Links []Link
	// Distance returns the resting length of a link; nil means 30.
	Distance func(l Link) float64
	// Strength returns the link stiffness; nil means 1/min(degree).
	Strength   func(l Link) float64
	Iterations int // defaults to 1

	nodes    []*Node
	distance []float64
	strength []float64
	bias     []float64
	random   func() float64
}

func (f *Links) Initialize(nodes []*Node, random func() float64) {
	f.nodes, f.random = nodes, random
	count := make([]int, len(nodes))
	for _, l := range f.Links {
		count[l.Source]++
		count[l.Target]++
	}
	f.distance = make([]float64, len(f.Links))
	f.strength = make([]float64, len(f.Links))
	f.bias = make([]float64, len(f.Links))
	for i, l := range f.Links {
		s, t := float64(count[l.Source]), float64(count[l.Target])
		f.bias[i] = s / (s + t)
		f.distance[i] = 30
		if f.Distance != nil {
			f.distance[i] = f.Distance(l)
		}
		f.strength[i] = 1 / math.Min(s, t)
		if f.Strength != nil {
			f.strength[i] = f.Strength(l)
		}
	}
}

func (f *Links) Apply(alpha float64) {
	iters := max(f.Iterations, 1)
	for range iters {
		for i, l := range f.Links {
			src, tgt := f.nodes[l.Source], f.nodes[l.Target]
			x := tgt.X + tgt.VX - src.X - src.VX
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if x == 0 {
				x = jiggle(f.random)
			}
			if y == 0 {
				y = jiggle(f.random)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - f.distance[i]) / d * alpha * f.strength[i]
			x *= d
			y *= d
			b := f.bias[i]
			tgt.VX -= x * b
			tgt.VY -= y * b
			src.VX += x * (1 - b)
			src.VY += y * (1 - b)
		}
	}
}

// Collide treats nodes as circles and pushes overlapping pairs apart,
// moving the smaller circle further.
type Collide struct {
	// Radius returns the collision radius per node.
	Radius     func(n *Node) float64
	Strength   float64 // defaults to 1
	Iterations int     // defaults to 1

	nodes  []*Node
	radii  []float64
	random func() float64
}

// CollideRadius returns a collision force with a constant radius.
func CollideRadius(r float64) *Collide {
	return &Collide{Radius: func(*Node) float64 { return r }}
}

func (c *Collide) Initialize(nodes []*Node, random func() float64) {
	c.nodes, c.random = nodes, random
	c.radii = make([]float64, len(nodes))
	for i, n := range nodes {
		c.radii[i] = 1
		if c.Radius != nil {
			c.radii[i] = c.Radius(n)
		}
	}
}

func (c *Collide) Apply(float64) {
	k := c.Strength
	if k == 0 {
		k = 1
	}
	for range max(c.Iterations, 1) {
		for i, n := range c.nodes {
			ri := c.radii[i]
			ri2 := ri * ri
			xi, yi := n.X+n.VX, n.Y+n.VY
			for j := i + 1; j < len(c.nodes); j++ {
				o := c.nodes[j]
				rj := c.radii[j]
				r := ri + rj
				x, y := xi-o.X-o.VX, yi-o.Y-o.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle(c.random)
					l += x * x
				}
				if y == 0 {
					y = jiggle(c.random)
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * k
				x *= l
				y *= l
				share := rj * rj / (ri2 + rj*rj)
				n.VX += x * share
				n.VY += y * share
				o.VX -= x * (1 - share)
				o.VY -= y * (1 - share)
			}
		}
	}
}
