package hierarchy

import "math"

// Pack lays out a hierarchy as nested circles: leaves get an area
// proportional to their value, siblings are packed with the front-chain
// algorithm of Wang et al. and every parent is the smallest circle
// enclosing its children.
type Pack struct {
	Width, Height float64
	// Padding is the gap between sibling circles and their parent, in
	// output pixels.
	Padding float64
	// Radius overrides the leaf radius; nil means sqrt(Value).
	Radius func(*Node) float64
}

// Layout assigns X, Y and R to every node. Call Sum first.
func (p Pack) Layout(root *Node) {
	dx, dy := p.Width, p.Height
	root.X, root.Y = dx/2, dy/2

	radius := p.Radius
	if radius == nil {
		radius = func(n *Node) float64 { return math.Sqrt(n.Value) }
	}
	root.eachBefore(func(n *Node) {
		if n.IsLeaf() {
			n.R = math.Max(0, radius(n))
		}
	})

	if p.Radius != nil {
		root.eachAfter(packChildren(p.Padding, 0.5))
		translate(root, nil, 1)
		return
	}

	root.eachAfter(packChildren(0, 1))
	if root.R > 0 {
		root.eachAfter(packChildren(p.Padding, root.R/math.Min(dx, dy)))
		translate(root, nil, math.Min(dx, dy)/(2*root.R))
	} else {
		translate(root, nil, 1)
	}
}

func packChildren(padding, k float64) func(*Node) {
	return func(n *Node) {
		if n.IsLeaf() {
			return
		}
		r := padding * k
		if r != 0 {
			for _, c := range n.Children {
				c.R += r
			}
		}
		e := PackSiblings(n.Children)
		if r != 0 {
			for _, c := range n.Children {
				c.R -= r
			}
		}
		n.R = e + r
	}
}

// translate converts child coordinates, which packing leaves relative to
// the parent centre, into absolute coordinates scaled by k.
func translate(n, parent *Node, k float64) {
	n.R *= k
	if parent != nil {
		n.X = parent.X + k*n.X
		n.Y = parent.Y + k*n.Y
	}
	for _, c := range n.Children {
		translate(c, n, k)
	}
}

// Circle is a circle for enclosure computations.
type Circle struct{ X, Y, R float64 }

type chainNode struct {
	n          *Node
	next, prev *chainNode
}

// PackSiblings positions the nodes (with R already set) so that no two
// overlap, centred on the origin, and returns the radius of the enclosing
// circle.
func PackSiblings(nodes []*Node) float64 {
	n := len(nodes)
	if n == 0 {
		return 0
	}
	a := nodes[0]
	a.X, a.Y = 0, 0
	if n == 1 {
		return a.R
	}
	b := nodes[1]
	a.X = -b.R
	b.X, b.Y = a.R, 0
	if n == 2 {
		return a.R + b.R
	}
	place(b, a, nodes[2])

	ca := &chainNode{n: a}
	cb := &chainNode{n: b}
	cc := &chainNode{n: nodes[2]}
	ca.next, cc.prev = cb, cb
	cb.next, ca.prev = cc, cc
	cc.next, cb.prev = ca, ca

pack:
	for i := 3; i < n; i++ {
		place(ca.n, cb.n, nodes[i])
		cc = &chainNode{n: nodes[i]}

		// Search the front chain in both directions for the closest
		// intersecting circle, weighted by cumulative radius.
		j, k := cb.next, ca.prev
		sj, sk := cb.n.R, ca.n.R
		for {
			if sj <= sk {
				if intersects(j.n, cc.n) {
					cb = j
					ca.next, cb.prev = cb, ca
					i--
					continue pack
				}
				sj += j.n.R
				j = j.next
			} else {
				if intersects(k.n, cc.n) {
					ca = k
					ca.next, cb.prev = cb, ca
					i--
					continue pack
				}
				sk += k.n.R
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		cc.prev, cc.next = ca, cb
		ca.next, cb.prev = cc, cc
		cb = cc

		// Choose the new closest circle pair to the centroid.
		best := score(ca)
		for c := cc.next; c != cb; c = c.next {
			if s := score(c); s < best {
				ca, best = c, s
			}
		}
		cb = ca.next
	}

	chain := []Circle{{cb.n.X, cb.n.Y, cb.n.R}}
	for c := cb.next; c != cb; c = c.next {
		chain = append(chain, Circle{c.n.X, c.n.Y, c.n.R})
	}
	e := Enclose(chain)
	for _, nd := range nodes {
		nd.X -= e.X
		nd.Y -= e.Y
	}
	return e.R
}

// place positions c tangent to both a and b.
func place(b, a, c *Node) {
	dx, dy := b.X-a.X, b.Y-a.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.X, c.Y = a.X+c.R, a.Y
		return
	}
	a2 := (a.R + c.R) * (a.R + c.R)
	b2 := (b.R + c.R) * (b.R + c.R)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.X = b.X - x*dx - y*dy
		c.Y = b.Y - x*dy + y*dx
	} else {
		x := (d2 + a2 - b2) / (2 * d2)
		y := math.Sqrt(math.Max(0, a2/d2-x*x))
		c.X = a.X + x*dx - y*dy
		c.Y = a.Y + x*dy + y*dx
	}
}

func intersects(a, b *Node) bool {
	dr := a.R + b.R - 1e-6
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func score(c *chainNode) float64 {
	a, b := c.n, c.next.n
	ab := a.R + b.R
	dx := (a.X*b.R + b.X*a.R) / ab
	dy := (a.Y*b.R + b.Y*a.R) / ab
	return dx*dx + dy*dy
}
