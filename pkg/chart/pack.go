package chart

import (
	"math"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/hierarchy"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

type packColour struct{ Continent, Country string }

var packColours = map[string]packColour{
	"AF": {"#DAC999", "#F0DEB4"},
	"NA": {"#9EC4FF", "#D1F7FF"},
	"OC": {"#DD5CC5", "#EFAEEA"},
	"AS": {"#FA910E", "#FABE5B"},
	"EU": {"#46CB00", "#AEFF62"},
	"SA": {"#DA2C27", "#FF7763"},
}

// Leaves smaller than this carry no label.
const packLabelRadius = 25

// packChart nests country circles in continent circles inside Earth. The
// "option" control picks the measure that sizes the circles.
type packChart struct {
	*Frame
	cfg        Config
	table      dataset.Table
	continents dataset.Lookup

	font  *scale.Continuous
	nodes *scene.Element
	hover *scene.Element

	root   *hierarchy.Node
	parent map[string]string
}

func newPack(cfg Config, d Data) (Chart, error) {
	if d.Table.Len() == 0 {
		return nil, noData(Pack, "any country")
	}
	f := newFrame(cfg, Pack, 1200, 750, Margin{}, transition.DefaultDuration)
	c := &packChart{Frame: f, cfg: cfg, table: d.Table, continents: d.Lookup("continents")}
	c.font = scale.NewLinear().SetRange(5, 30)
	c.nodes = f.Plot()
	c.hover = f.Root().Append("g").SetClass("hover")
	return c, nil
}

func (c *packChart) Defaults() view.State {
	return c.cfg.initial(view.State{}.With("option", "population"))
}

func (c *packChart) colour(n *hierarchy.Node) string {
	p, ok := packColours[c.parent[n.ID]]
	if !ok {
		p = packColour{"#BBBBBB", "#DDDDDD"}
	}
	switch n.Type {
	case typeContinent:
		return p.Continent
	case typeCountry:
		return p.Country
	}
	return "white"
}

func labelled(n *hierarchy.Node) bool { return n.IsLeaf() && n.R > packLabelRadius }

func (c *packChart) Update(s view.State) error {
	measure, err := choose(Pack, "option", s.Get("option", "population"), countryMeasures)
	if err != nil {
		return err
	}
	root := countryTree(c.table, false, measure)
	hierarchy.Pack{Width: c.Width, Height: c.Height, Padding: 3}.Layout(root)
	c.root, c.parent = root, continentsOf(root)

	var rmax float64
	for _, l := range root.Leaves() {
		rmax = max(rmax, l.R)
	}
	c.font.SetDomain(0, rmax)
	fontSize := func(n *hierarchy.Node) float64 {
		if labelled(n) {
			return c.font.Map(n.R)
		}
		return 0
	}
	text := func(n *hierarchy.Node) string {
		if labelled(n) {
			return n.Name
		}
		return ""
	}

	tr := c.transition()
	key := func(n *hierarchy.Node, _ int) string { return n.ID }
	join.Select[*hierarchy.Node](c.nodes, "g.node", c.sched).Data(root.Descendants(), key).Apply(tr, join.Handlers[*hierarchy.Node]{
		Enter: func(el *scene.Element, n *hierarchy.Node, _ int) {
			if n.IsLeaf() {
				el.SetClass("node node-leaf")
			} else {
				el.SetClass("node node-root")
			}
			el.SetAttr("transform", scene.Translate(n.X, n.Y))
			el.Append("circle").SetNum("r", 0).SetAttr("fill", c.colour(n))
			el.Append("text").SetNum("y", 5).SetAttr("text-anchor", "middle")
		},
		Update: func(el *scene.Element, n *hierarchy.Node, _ int, tr *transition.Transition) {
			tr.Attr(el, "transform", scene.Translate(n.X, n.Y))
			tr.AttrNum(el.Children[0], "r", n.R)
			el.Children[1].SetText(text(n))
			tr.AttrNum(el.Children[1], "font-size", fontSize(n))
		},
	})
	c.showHover(s.Tooltip)
	return nil
}

// at returns the innermost circle under (x, y).
func (c *packChart) at(x, y float64) *hierarchy.Node {
	if c.root == nil {
		return nil
	}
	var hit *hierarchy.Node
	for _, n := range c.root.Descendants() {
		if math.Hypot(x-n.X, y-n.Y) <= n.R && (hit == nil || n.Depth > hit.Depth) {
			hit = n
		}
	}
	return hit
}

func (c *packChart) showHover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown {
		if n := c.at(st.X, st.Y); n != nil {
			lines = countryLines(n, c.continents, dataset.NewLookup())
		}
	}
	infoBox(c.hover, lines, st.X, st.Y)
}

func (c *packChart) Series() []Series { return leafSeries("countries", c.root) }

func (c *packChart) Graph() Graph {
	if c.root == nil {
		return Graph{Directed: true}
	}
	return hierarchyGraph(c.root, c.colour)
}
