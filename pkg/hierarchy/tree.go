package hierarchy

// Tree lays out a tidy node-link tree with the Buchheim, Jünger and Leipert
// linear-time variant of the Reingold–Tilford algorithm: subtrees never
// overlap, parents sit centred over their children and identical subtrees
// are drawn identically.
//
// X spans the breadth [0, Width] and Y the depth [0, Height]. Horizontal
// trees swap the two when drawing.
type Tree struct {
	Width, Height float64
	// Separation returns the minimum distance between neighbouring nodes
	// a and b, in units of node spacing. Nil means 1 for siblings and 2
	// for cousins.
	Separation func(a, b *Node, siblings bool) float64
}

type treeNode struct {
	node     *Node
	parent   *treeNode
	children []*treeNode
	ancestor *treeNode // default ancestor (A)
	a        *treeNode // ancestor
	thread   *treeNode
	prelim   float64
	mod      float64
	change   float64
	shift    float64
	index    int
}

// Layout assigns X and Y to every node.
func (t Tree) Layout(root *Node) {
	sep := func(a, b *treeNode) float64 {
		siblings := a.parent == b.parent
		if t.Separation != nil {
			return t.Separation(a.node, b.node, siblings)
		}
		if siblings {
			return 1
		}
		return 2
	}

	index := map[*Node]*treeNode{}
	tr := wrap(root, 0, index)
	sentinel := &treeNode{children: []*treeNode{tr}}
	tr.parent = sentinel

	var firstWalk func(v *treeNode)
	firstWalk = func(v *treeNode) {
		for _, c := range v.children {
			firstWalk(c)
		}
		siblings := v.parent.children
		var w *treeNode
		if v.index > 0 {
			w = siblings[v.index-1]
		}
		if len(v.children) > 0 {
			executeShifts(v)
			mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
			if w != nil {
				v.prelim = w.prelim + sep(v, w)
				v.mod = v.prelim - mid
			} else {
				v.prelim = mid
			}
		} else if w != nil {
			v.prelim = w.prelim + sep(v, w)
		}
		anc := v.parent.ancestor
		if anc == nil {
			anc = siblings[0]
		}
		v.parent.ancestor = apportion(v, w, anc, sep)
	}
	firstWalk(tr)
	sentinel.mod = -tr.prelim

	var secondWalk func(v *treeNode)
	secondWalk = func(v *treeNode) {
		v.node.X = v.prelim + v.parent.mod
		v.mod += v.parent.mod
		for _, c := range v.children {
			secondWalk(c)
		}
	}
	secondWalk(tr)

	left, right, bottom := root, root, root
	root.eachBefore(func(n *Node) {
		if n.X < left.X {
			left = n
		}
		if n.X > right.X {
			right = n
		}
		if n.Depth > bottom.Depth {
			bottom = n
		}
	})
	s := 1.0
	if left != right {
		s = sep(index[left], index[right]) / 2
	}
	tx := s - left.X
	kx := t.Width / (right.X + s + tx)
	ky := t.Height / float64(max(bottom.Depth, 1))
	root.eachBefore(func(n *Node) {
		n.X = (n.X + tx) * kx
		n.Y = float64(n.Depth) * ky
	})
}

func wrap(n *Node, i int, index map[*Node]*treeNode) *treeNode {
	t := &treeNode{node: n, index: i}
	t.a = t
	index[n] = t
	for j, c := range n.Children {
		ct := wrap(c, j, index)
		ct.parent = t
		t.children = append(t.children, ct)
	}
	return t
}

func nextLeft(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *treeNode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *treeNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *treeNode) *treeNode {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}

func apportion(v, w, ancestor *treeNode, sep func(a, b *treeNode) float64) *treeNode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod
	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v
		shift := vim.prelim + sim - vip.prelim - sip + sep(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}
