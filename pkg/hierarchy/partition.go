package hierarchy

import "math"

// Partition lays out an adjacency diagram: each depth is a band of equal
// height and each node spans a width proportional to its value. With the
// default unit size the result feeds a sunburst, X as the angle fraction
// and Y as the radius fraction.
type Partition struct {
	// Width and Height default to 1.
	Width, Height float64
	Padding       float64
	Round         bool
}

// Layout assigns X0, Y0, X1, Y1 to every node. Call Sum first.
func (p Partition) Layout(root *Node) {
	dx, dy := p.Width, p.Height
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	n := float64(root.Height + 1)
	root.X0, root.Y0 = 0, 0
	root.X1, root.Y1 = dx, dy/n
	root.eachBefore(func(node *Node) {
		if !node.IsLeaf() {
			d := float64(node.Depth)
			dice(node.Children, node.Value, node.X0, dy*(d+1)/n, node.X1, dy*(d+2)/n)
		}
		x0, y0 := node.X0, node.Y0
		x1, y1 := node.X1-p.Padding, node.Y1-p.Padding
		if x1 < x0 {
			x0, x1 = (x0+x1)/2, (x0+x1)/2
		}
		if y1 < y0 {
			y0, y1 = (y0+y1)/2, (y0+y1)/2
		}
		node.X0, node.Y0, node.X1, node.Y1 = x0, y0, x1, y1
	})
	if p.Round {
		root.eachBefore(func(node *Node) {
			node.X0, node.Y0 = math.Round(node.X0), math.Round(node.Y0)
			node.X1, node.Y1 = math.Round(node.X1), math.Round(node.Y1)
		})
	}
}
