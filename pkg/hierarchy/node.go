// Package hierarchy builds rooted trees from tables and lays them out as
// treemaps, sunbursts, circle packs and tidy trees.
//
// Children are owned by their parent and carry no back references. Layout
// algorithms that need parent links (the tidy tree) build a private wrapper
// tree for the duration of the layout.
package hierarchy

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/vizlab/pkg/dataset"
)

// Node is one vertex of a hierarchy.
type Node struct {
	// ID is unique within the tree: the slash-joined path of names.
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	// Data is the source record for leaves, or the grouping field for
	// internal nodes.
	Data     dataset.Record `json:"data"`
	Children []*Node        `json:"children,omitempty"`

	Depth  int     `json:"depth"`
	Height int     `json:"height"`
	Value  float64 `json:"value"`

	// Rectangle layouts (treemap, partition).
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	// Point layouts (pack, tree).
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Level describes one tier of a hierarchy built by [Build].
type Level struct {
	// Field groups records at internal levels and names records at the leaf
	// level. The root level ignores it.
	Field string
	// Type tags every node on this level, e.g. "Continent".
	Type string
	// Name is used for the root only.
	Name string
}

// Build groups t into a tree. levels[0] describes the root; each following
// level groups by its Field, and the last level creates one leaf per record.
// Groups keep first-seen order.
func Build(t dataset.Table, levels ...Level) *Node {
	if len(levels) == 0 {
		levels = []Level{{Name: "root"}}
	}
	root := &Node{ID: levels[0].Name, Name: levels[0].Name, Type: levels[0].Type}
	build(root, t, levels[1:])
	root.Reindex()
	return root
}

func build(parent *Node, t dataset.Table, levels []Level) {
	if len(levels) == 0 {
		return
	}
	lv := levels[0]
	if len(levels) == 1 {
		seen := map[string]int{}
		for _, r := range t.Rows {
			name := r.Str(lv.Field)
			id := name
			if n := seen[name]; n > 0 {
				id = name + "#" + strconv.Itoa(n)
			}
			seen[name]++
			parent.Children = append(parent.Children, &Node{
				ID:   parent.ID + "/" + id,
				Name: name,
				Type: lv.Type,
				Data: r,
			})
		}
		return
	}
	for _, g := range dataset.GroupBy(t, lv.Field) {
		child := &Node{
			ID:   parent.ID + "/" + g.Key,
			Name: g.Key,
			Type: lv.Type,
			Data: dataset.NewRecord([]string{lv.Field}, []dataset.Value{dataset.Str(g.Key)}),
		}
		build(child, g.Table, levels[1:])
		parent.Children = append(parent.Children, child)
	}
}

// Reindex recomputes Depth and Height for n and its descendants, treating n
// as the root. Build calls it; hand-assembled trees must call it before
// laying out.
func (n *Node) Reindex() {
	var visit func(m *Node, depth int) int
	visit = func(m *Node, depth int) int {
		m.Depth = depth
		h := 0
		for _, c := range m.Children {
			h = max(h, visit(c, depth+1)+1)
		}
		m.Height = h
		return h
	}
	visit(n, 0)
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Sum sets every node's Value to value(node) plus the sum of its
// children's values, in post-order. NaN counts as zero.
func (n *Node) Sum(value func(*Node) float64) *Node {
	n.eachAfter(func(m *Node) {
		v := value(m)
		if math.IsNaN(v) {
			v = 0
		}
		for _, c := range m.Children {
			v += c.Value
		}
		m.Value = v
	})
	return n
}

// SumField sums a numeric record field over the leaves.
func (n *Node) SumField(field string) *Node {
	return n.Sum(func(m *Node) float64 {
		if !m.IsLeaf() {
			return 0
		}
		return m.Data.Num(field)
	})
}

// Count sets Value to the number of leaves under each node.
func (n *Node) Count() *Node {
	return n.Sum(func(m *Node) float64 {
		if m.IsLeaf() {
			return 1
		}
		return 0
	})
}

// Sort orders every node's children with cmp. The sort is stable.
func (n *Node) Sort(cmp func(a, b *Node) int) *Node {
	n.eachBefore(func(m *Node) {
		slices.SortStableFunc(m.Children, cmp)
	})
	return n
}

// ByValueDesc orders nodes by descending Value.
func ByValueDesc(a, b *Node) int {
	switch {
	case a.Value > b.Value:
		return -1
	case a.Value < b.Value:
		return 1
	}
	return 0
}

// Descendants returns n and all nodes below it in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.eachBefore(func(m *Node) { out = append(out, m) })
	return out
}

// Leaves returns the nodes without children in pre-order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.eachBefore(func(m *Node) {
		if m.IsLeaf() {
			out = append(out, m)
		}
	})
	return out
}

// Walk visits nodes in pre-order with their ancestors (root first). The
// ancestors slice is reused between calls. Returning false skips the
// node's children.
func (n *Node) Walk(fn func(m *Node, ancestors []*Node) bool) {
	var stack []*Node
	var visit func(m *Node)
	visit = func(m *Node) {
		if !fn(m, stack) {
			return
		}
		stack = append(stack, m)
		for _, c := range m.Children {
			visit(c)
		}
		stack = stack[:len(stack)-1]
	}
	visit(n)
}

// Link is a parent-child edge.
type Link struct {
	Source, Target *Node
}

// Links returns every parent-child edge in pre-order of the child.
func (n *Node) Links() []Link {
	var out []Link
	n.eachBefore(func(m *Node) {
		for _, c := range m.Children {
			out = append(out, Link{Source: m, Target: c})
		}
	})
	return out
}

// Find returns the node with the given ID.
func (n *Node) Find(id string) *Node {
	if !strings.HasPrefix(id, n.ID) {
		return nil
	}
	var found *Node
	n.Walk(func(m *Node, _ []*Node) bool {
		if found != nil {
			return false
		}
		if m.ID == id {
			found = m
			return false
		}
		return strings.HasPrefix(id, m.ID+"/")
	})
	return found
}

func (n *Node) eachBefore(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.eachBefore(fn)
	}
}

func (n *Node) eachAfter(fn func(*Node)) {
	for _, c := range n.Children {
		c.eachAfter(fn)
	}
	fn(n)
}
