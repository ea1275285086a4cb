package hierarchy

import (
	"math"
	"slices"
)

// Phi is the golden ratio, the default target aspect ratio for squarified
// treemaps.
var Phi = (1 + math.Sqrt(5)) / 2

// Tiling selects how a treemap subdivides a parent rectangle.
type Tiling int

const (
	// Squarify produces cells with aspect ratios close to Ratio.
	Squarify Tiling = iota
	// Resquarify is Squarify that reuses the previous row structure of a
	// parent while its child key sequence is unchanged, so cells grow and
	// shrink in place across updates instead of jumping rows.
	Resquarify
	// Slice stacks children vertically.
	Slice
	// Dice lines children up horizontally.
	Dice
	// SliceDice alternates Slice and Dice by depth.
	SliceDice
)

// Treemap lays out a summed hierarchy as nested rectangles within
// [0, Width] × [0, Height].
type Treemap struct {
	Width, Height float64
	// PaddingInner separates sibling cells.
	PaddingInner float64
	// PaddingOuter insets children from their parent's edges.
	PaddingOuter float64
	// Round snaps cell edges to integers.
	Round  bool
	Tiling Tiling
	// Ratio is the target aspect ratio; zero means Phi.
	Ratio float64

	rows map[string]rowMemo
}

type rowMemo struct {
	ratio    float64
	children []string
	rows     []row
}

type row struct {
	dice  bool
	start int
	end   int
}

// Layout assigns X0, Y0, X1, Y1 to every node. Call Sum first.
func (tm *Treemap) Layout(root *Node) {
	root.X0, root.Y0, root.X1, root.Y1 = 0, 0, tm.Width, tm.Height
	pad := []float64{0}
	root.eachBefore(func(n *Node) {
		for len(pad) <= n.Depth+1 {
			pad = append(pad, 0)
		}
		p := pad[n.Depth]
		x0, y0, x1, y1 := n.X0+p, n.Y0+p, n.X1-p, n.Y1-p
		if x1 < x0 {
			x0, x1 = (x0+x1)/2, (x0+x1)/2
		}
		if y1 < y0 {
			y0, y1 = (y0+y1)/2, (y0+y1)/2
		}
		n.X0, n.Y0, n.X1, n.Y1 = x0, y0, x1, y1
		if n.IsLeaf() {
			return
		}
		p = tm.PaddingInner / 2
		pad[n.Depth+1] = p
		x0 += tm.PaddingOuter - p
		y0 += tm.PaddingOuter - p
		x1 -= tm.PaddingOuter - p
		y1 -= tm.PaddingOuter - p
		if x1 < x0 {
			x0, x1 = (x0+x1)/2, (x0+x1)/2
		}
		if y1 < y0 {
			y0, y1 = (y0+y1)/2, (y0+y1)/2
		}
		tm.tile(n, x0, y0, x1, y1)
	})
	if tm.Round {
		root.eachBefore(func(n *Node) {
			n.X0, n.Y0 = math.Round(n.X0), math.Round(n.Y0)
			n.X1, n.Y1 = math.Round(n.X1), math.Round(n.Y1)
		})
	}
}

func (tm *Treemap) ratio() float64 {
	if tm.Ratio > 1 {
		return tm.Ratio
	}
	return Phi
}

func (tm *Treemap) tile(n *Node, x0, y0, x1, y1 float64) {
	switch tm.Tiling {
	case Slice:
		slice(n.Children, n.Value, x0, y0, x1, y1)
	case Dice:
		dice(n.Children, n.Value, x0, y0, x1, y1)
	case SliceDice:
		if n.Depth%2 == 1 {
			slice(n.Children, n.Value, x0, y0, x1, y1)
		} else {
			dice(n.Children, n.Value, x0, y0, x1, y1)
		}
	case Resquarify:
		tm.resquarify(n, x0, y0, x1, y1)
	default:
		squarify(tm.ratio(), n.Children, n.Value, x0, y0, x1, y1)
	}
}

func (tm *Treemap) resquarify(n *Node, x0, y0, x1, y1 float64) {
	ratio := tm.ratio()
	keys := make([]string, len(n.Children))
	for i, c := range n.Children {
		keys[i] = c.ID
	}
	memo, ok := tm.rows[n.ID]
	if !ok || memo.ratio != ratio || !slices.Equal(memo.children, keys) {
		if tm.rows == nil {
			tm.rows = map[string]rowMemo{}
		}
		tm.rows[n.ID] = rowMemo{
			ratio:    ratio,
			children: keys,
			rows:     squarify(ratio, n.Children, n.Value, x0, y0, x1, y1),
		}
		return
	}
	value := n.Value
	for _, r := range memo.rows {
		nodes := n.Children[r.start:r.end]
		var rv float64
		for _, c := range nodes {
			rv += c.Value
		}
		if r.dice {
			ny := y1
			if value != 0 {
				ny = y0 + (y1-y0)*rv/value
			}
			dice(nodes, rv, x0, y0, x1, ny)
			if value != 0 {
				y0 = ny
			}
		} else {
			nx := x1
			if value != 0 {
				nx = x0 + (x1-x0)*rv/value
			}
			slice(nodes, rv, x0, y0, nx, y1)
			if value != 0 {
				x0 = nx
			}
		}
		value -= rv
	}
}

// squarify implements the squarified treemap of Bruls, Huizing and van
// Wijk, returning the rows it produced.
func squarify(ratio float64, nodes []*Node, value, x0, y0, x1, y1 float64) []row {
	var rows []row
	n := len(nodes)
	i0, i1 := 0, 0
	for i0 < n {
		dx, dy := x1-x0, y1-y0

		var sum float64
		for {
			sum = nodes[i1].Value
			i1++
			if sum != 0 || i1 >= n {
				break
			}
		}
		minV, maxV := sum, sum
		alpha := math.Max(dy/dx, dx/dy) / (value * ratio)
		beta := sum * sum * alpha
		minRatio := math.Max(maxV/beta, beta/minV)

		for ; i1 < n; i1++ {
			v := nodes[i1].Value
			sum += v
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
			beta = sum * sum * alpha
			r := math.Max(maxV/beta, beta/minV)
			if r > minRatio {
				sum -= v
				break
			}
			minRatio = r
		}

		rw := row{dice: dx < dy, start: i0, end: i1}
		rows = append(rows, rw)
		if rw.dice {
			ny := y1
			if value != 0 {
				ny = y0 + dy*sum/value
			}
			dice(nodes[i0:i1], sum, x0, y0, x1, ny)
			if value != 0 {
				y0 = ny
			}
		} else {
			nx := x1
			if value != 0 {
				nx = x0 + dx*sum/value
			}
			slice(nodes[i0:i1], sum, x0, y0, nx, y1)
			if value != 0 {
				x0 = nx
			}
		}
		value -= sum
		i0 = i1
	}
	return rows
}

// dice lines nodes up left to right across [x0, x1].
func dice(nodes []*Node, value, x0, y0, x1, y1 float64) {
	k := 0.0
	if value != 0 {
		k = (x1 - x0) / value
	}
	for _, n := range nodes {
		n.Y0, n.Y1 = y0, y1
		n.X0 = x0
		x0 += n.Value * k
		n.X1 = x0
	}
}

// slice stacks nodes top to bottom across [y0, y1].
func slice(nodes []*Node, value, x0, y0, x1, y1 float64) {
	k := 0.0
	if value != 0 {
		k = (y1 - y0) / value
	}
	for _, n := range nodes {
		n.X0, n.X1 = x0, x1
		n.Y0 = y0
		y0 += n.Value * k
		n.Y1 = y0
	}
}
