package hierarchy

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/dataset"
)

const countries = `country,continent_code,population
Egypt,AF,102
France,EU,65
Nigeria,AF,206
Germany,EU,83
Brazil,SA,212
Chile,SA,19
Kenya,AF,53
`

func world(t *testing.T) *Node {
	t.Helper()
	tbl, err := dataset.LoadCSV(strings.NewReader(countries), dataset.Schema{Numbers: []string{"population"}})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	return Build(tbl,
		Level{Name: "World", Type: "Earth"},
		Level{Field: "continent_code", Type: "Continent"},
		Level{Field: "country", Type: "Country"},
	)
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuild(t *testing.T) {
	root := world(t)
	if root.Height != 2 || root.Depth != 0 {
		t.Errorf("root height/depth = %d/%d, want 2/0", root.Height, root.Depth)
	}
	if diff := cmp.Diff([]string{"AF", "EU", "SA"}, names(root.Children)); diff != "" {
		t.Errorf("continents mismatch (-want +got):\n%s", diff)
	}
	af := root.Children[0]
	if af.Type != "Continent" || af.ID != "World/AF" {
		t.Errorf("AF = %q %q, want Continent World/AF", af.Type, af.ID)
	}
	if diff := cmp.Diff([]string{"Egypt", "Nigeria", "Kenya"}, names(af.Children)); diff != "" {
		t.Errorf("AF countries mismatch (-want +got):\n%s", diff)
	}
	if got := root.Find("World/EU/Germany"); got == nil || got.Data.Num("population") != 83 {
		t.Errorf("Find(World/EU/Germany) = %v", got)
	}
	if got := root.Find("World/XX"); got != nil {
		t.Errorf("Find(World/XX) = %v, want nil", got.ID)
	}
	if got := len(root.Leaves()); got != 7 {
		t.Errorf("Leaves = %d, want 7", got)
	}
	if got := len(root.Descendants()); got != 11 {
		t.Errorf("Descendants = %d, want 11", got)
	}
	if got := len(root.Links()); got != 10 {
		t.Errorf("Links = %d, want 10", got)
	}
}

func TestSumSort(t *testing.T) {
	root := world(t).SumField("population").Sort(ByValueDesc)
	if root.Value != 740 {
		t.Errorf("root value = %v, want 740", root.Value)
	}
	if diff := cmp.Diff([]string{"AF", "SA", "EU"}, names(root.Children)); diff != "" {
		t.Errorf("sorted continents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Nigeria", "Egypt", "Kenya"}, names(root.Children[0].Children)); diff != "" {
		t.Errorf("sorted AF mismatch (-want +got):\n%s", diff)
	}
	root.Count()
	if root.Value != 7 || root.Children[0].Value != 3 {
		t.Errorf("Count = %v/%v, want 7/3", root.Value, root.Children[0].Value)
	}
}

func TestWalkAncestors(t *testing.T) {
	root := world(t)
	var got []string
	root.Walk(func(n *Node, ancestors []*Node) bool {
		if n.Name == "Chile" {
			got = names(ancestors)
		}
		return n.Type != "Country"
	})
	if diff := cmp.Diff([]string{"World", "SA"}, got); diff != "" {
		t.Errorf("ancestors mismatch (-want +got):\n%s", diff)
	}

	visited := 0
	root.Walk(func(n *Node, _ []*Node) bool {
		visited++
		return n.Depth < 1
	})
	if visited != 4 {
		t.Errorf("pruned walk visited %d, want 4", visited)
	}
}

func leaf(name string, v float64) *Node { return &Node{ID: name, Name: name, Value: v} }

func parent(name string, children ...*Node) *Node {
	n := &Node{ID: name, Name: name, Children: children}
	n.Reindex()
	n.Sum(func(m *Node) float64 {
		if m.IsLeaf() {
			return m.Value
		}
		return 0
	})
	return n
}

func TestTreemapDicePadding(t *testing.T) {
	root := parent("r", leaf("a", 1), leaf("b", 3))
	tm := &Treemap{Width: 100, Height: 50, PaddingInner: 2, Tiling: Dice}
	tm.Layout(root)
	type rect struct{ X0, Y0, X1, Y1 float64 }
	got := []rect{
		{root.Children[0].X0, root.Children[0].Y0, root.Children[0].X1, root.Children[0].Y1},
		{root.Children[1].X0, root.Children[1].Y0, root.Children[1].X1, root.Children[1].Y1},
	}
	want := []rect{{0, 0, 23.5, 50}, {25.5, 0, 100, 50}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dice mismatch (-want +got):\n%s", diff)
	}
}

func checkTreemap(t *testing.T, root *Node, w, h float64) {
	t.Helper()
	total := root.Value
	var area float64
	for i, a := range root.Children {
		if a.X0 < -1e-9 || a.Y0 < -1e-9 || a.X1 > w+1e-9 || a.Y1 > h+1e-9 {
			t.Errorf("%s out of bounds: %+v", a.Name, a)
		}
		got := (a.X1 - a.X0) * (a.Y1 - a.Y0)
		want := a.Value / total * w * h
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("%s area = %v, want %v", a.Name, got, want)
		}
		area += got
		for _, b := range root.Children[i+1:] {
			ox := math.Min(a.X1, b.X1) - math.Max(a.X0, b.X0)
			oy := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
			if ox > 1e-9 && oy > 1e-9 {
				t.Errorf("%s overlaps %s", a.Name, b.Name)
			}
		}
	}
	if math.Abs(area-w*h) > 1e-6 {
		t.Errorf("total area = %v, want %v", area, w*h)
	}
}

func TestTreemapSquarify(t *testing.T) {
	root := parent("r",
		leaf("a", 6), leaf("b", 6), leaf("c", 4), leaf("d", 3),
		leaf("e", 2), leaf("f", 2), leaf("g", 1),
	)
	tm := &Treemap{Width: 600, Height: 400}
	tm.Layout(root)
	checkTreemap(t, root, 600, 400)

	// Bruls et al.: the first row holds the two largest cells side by side
	// along the short edge.
	a, b := root.Children[0], root.Children[1]
	if a.X0 != 0 || b.X0 != 0 || a.X1 != b.X1 {
		t.Errorf("first row = %+v %+v, want a shared column at x=0", a, b)
	}
}

func TestTreemapResquarify(t *testing.T) {
	mk := func(vals ...float64) *Node {
		var cs []*Node
		for i, v := range vals {
			cs = append(cs, leaf(string(rune('a'+i)), v))
		}
		return parent("r", cs...)
	}
	tm := &Treemap{Width: 600, Height: 400, Tiling: Resquarify}
	first := mk(6, 6, 4, 3, 2, 2, 1)
	tm.Layout(first)
	rows := slices.Clone(tm.rows["r"].rows)

	second := mk(1, 6, 4, 3, 2, 2, 6)
	tm.Layout(second)
	checkTreemap(t, second, 600, 400)
	if diff := cmp.Diff(rows, tm.rows["r"].rows, cmp.AllowUnexported(row{})); diff != "" {
		t.Errorf("row structure changed (-want +got):\n%s", diff)
	}

	// A different key sequence squarifies from scratch.
	third := mk(1, 2)
	tm.Layout(third)
	if got := len(tm.rows["r"].children); got != 2 {
		t.Errorf("memo children = %d, want 2", got)
	}
}

func TestPartition(t *testing.T) {
	root := parent("r", parent("A", leaf("a1", 1)), leaf("B", 3))
	Partition{}.Layout(root)
	type band struct{ X0, X1, Y0, Y1 float64 }
	a, b, a1 := root.Children[0], root.Children[1], root.Children[0].Children[0]
	got := []band{
		{root.X0, root.X1, root.Y0, root.Y1},
		{a.X0, a.X1, a.Y0, a.Y1},
		{b.X0, b.X1, b.Y0, b.Y1},
		{a1.X0, a1.X1, a1.Y0, a1.Y1},
	}
	want := []band{
		{0, 1, 0, 1.0 / 3},
		{0, 0.25, 1.0 / 3, 2.0 / 3},
		{0.25, 1, 1.0 / 3, 2.0 / 3},
		{0, 0.25, 2.0 / 3, 1},
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(x, y float64) bool { return math.Abs(x-y) < 1e-9 })); diff != "" {
		t.Errorf("Partition mismatch (-want +got):\n%s", diff)
	}
}

func TestPackTwoLeaves(t *testing.T) {
	root := parent("r", leaf("a", 1), leaf("b", 4))
	Pack{Width: 100, Height: 100}.Layout(root)
	type circle struct{ X, Y, R float64 }
	got := []circle{
		{root.X, root.Y, root.R},
		{root.Children[0].X, root.Children[0].Y, root.Children[0].R},
		{root.Children[1].X, root.Children[1].Y, root.Children[1].R},
	}
	want := []circle{{50, 50, 50}, {50 - 100.0/3, 50, 50.0 / 3}, {50 + 50.0/3, 50, 100.0 / 3}}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(x, y float64) bool { return math.Abs(x-y) < 1e-9 })); diff != "" {
		t.Errorf("Pack mismatch (-want +got):\n%s", diff)
	}
}

func TestPackInvariants(t *testing.T) {
	root := world(t).SumField("population").Sort(ByValueDesc)
	Pack{Width: 800, Height: 600, Padding: 3}.Layout(root)

	if math.Abs(root.R-300) > 1e-6 {
		t.Errorf("root radius = %v, want 300", root.R)
	}
	const eps = 1e-6
	root.Walk(func(p *Node, _ []*Node) bool {
		for i, a := range p.Children {
			d := math.Hypot(a.X-p.X, a.Y-p.Y)
			if d+a.R > p.R+eps {
				t.Errorf("%s escapes %s: %v + %v > %v", a.Name, p.Name, d, a.R, p.R)
			}
			for _, b := range p.Children[i+1:] {
				if gap := math.Hypot(a.X-b.X, a.Y-b.Y) - a.R - b.R; gap < -eps {
					t.Errorf("%s overlaps %s by %v", a.Name, b.Name, -gap)
				}
			}
		}
		return true
	})
}

func TestEnclose(t *testing.T) {
	tests := []struct {
		name string
		in   []Circle
		want Circle
	}{
		{"single", []Circle{{1, 2, 3}}, Circle{1, 2, 3}},
		{"pair", []Circle{{0, 0, 1}, {4, 0, 1}}, Circle{2, 0, 3}},
		{"nested", []Circle{{0, 0, 5}, {1, 0, 1}}, Circle{0, 0, 5}},
		{"triangle", []Circle{{-1, 0, 0}, {1, 0, 0}, {0, 1, 0}}, Circle{0, 0, 1}},
	}
	approx := cmp.Comparer(func(x, y float64) bool { return math.Abs(x-y) < 1e-6 })
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Enclose(tt.in), approx); diff != "" {
				t.Errorf("Enclose mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTreeSimple(t *testing.T) {
	root := parent("r", leaf("a", 0), leaf("b", 0))
	Tree{Width: 100, Height: 10}.Layout(root)
	type pt struct{ X, Y float64 }
	got := []pt{{root.X, root.Y}, {root.Children[0].X, root.Children[0].Y}, {root.Children[1].X, root.Children[1].Y}}
	want := []pt{{50, 0}, {25, 10}, {75, 10}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeTidy(t *testing.T) {
	root := world(t)
	Tree{Width: 1000, Height: 200}.Layout(root)

	byDepth := map[int][]*Node{}
	root.Walk(func(n *Node, _ []*Node) bool {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
		if n.Y != float64(n.Depth)*100 {
			t.Errorf("%s y = %v, want %v", n.Name, n.Y, float64(n.Depth)*100)
		}
		if len(n.Children) > 0 {
			mid := (n.Children[0].X + n.Children[len(n.Children)-1].X) / 2
			if math.Abs(n.X-mid) > 1e-9 {
				t.Errorf("%s x = %v, want centred at %v", n.Name, n.X, mid)
			}
		}
		return true
	})
	for depth, nodes := range byDepth {
		for i := 1; i < len(nodes); i++ {
			if nodes[i].X <= nodes[i-1].X {
				t.Errorf("depth %d: %s (%v) not right of %s (%v)", depth, nodes[i].Name, nodes[i].X, nodes[i-1].Name, nodes[i-1].X)
			}
		}
	}
	leaves := root.Leaves()
	if first, last := leaves[0].X, leaves[len(leaves)-1].X; first <= 0 || last >= 1000 {
		t.Errorf("leaves span [%v, %v], want inside (0, 1000)", first, last)
	}
}
