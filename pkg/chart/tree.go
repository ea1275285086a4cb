package chart

import (
	"context"
	"math"
	"strconv"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/hierarchy"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

// treeRoles are the lookups the tree diagram is assembled from. Countries
// are keyed by their ISO code.
var treeRoles = []string{"continents", "countries", "capitals", "currencies", "phones", "country_continent"}

// loadTree joins the code lookups into one table with a row per country,
// continents in lookup order.
func loadTree(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	lk, err := loadLookups(ctx, l, cfg, treeRoles)
	if err != nil {
		return Data{}, err
	}
	fields := []string{"code", "continent", "name", "capital", "currency", "phone"}
	t := dataset.Table{Columns: fields}
	placement := lk["country_continent"]
	for _, continent := range lk["continents"].Keys() {
		for _, code := range placement.Keys() {
			if placement.Get(code) != continent {
				continue
			}
			t.Rows = append(t.Rows, dataset.NewRecord(fields, []dataset.Value{
				dataset.Str(code),
				dataset.Str(continent),
				dataset.Str(lk["countries"].Get(code)),
				dataset.Str(lk["capitals"].Get(code)),
				dataset.Str(lk["currencies"].Get(code)),
				dataset.Str(lk["phones"].Get(code)),
			}))
		}
	}
	return Data{Table: t, Lookups: lk}, nil
}

var treeColours = map[string]string{
	"earth": "#A3E7FF",
	"AF":    "#FFD700",
	"NA":    "#00FF00",
	"OC":    "#B50CCB",
	"AN":    "#5163E7",
	"AS":    "#FF6D00",
	"EU":    "#C20000",
	"SA":    "#009D00",
}

const (
	treeFont       = "Georgia"
	treeNodeRadius = 8
)

// treeChart is the static World, continent, country diagram laid out
// left to right.
type treeChart struct {
	*Frame
	cfg        Config
	root       *hierarchy.Node
	continents dataset.Lookup

	links *scene.Element
	nodes *scene.Element
	hover *scene.Element
}

func newTree(cfg Config, d Data) (Chart, error) {
	if d.Table.Len() == 0 {
		return nil, noData(Tree, "any country")
	}
	f := newFrame(cfg, Tree, 1200, 8000, Margin{Top: 10, Bottom: 10, Left: 25, Right: 350}, 0)
	c := &treeChart{Frame: f, cfg: cfg, continents: d.Lookup("continents")}
	c.root = hierarchy.Build(d.Table,
		hierarchy.Level{Name: "World", Type: typeEarth},
		hierarchy.Level{Field: "continent", Type: typeContinent},
		hierarchy.Level{Field: "name", Type: typeCountry},
	)
	hierarchy.Tree{Width: f.InnerHeight(), Height: f.InnerWidth()}.Layout(c.root)
	c.links = f.Plot().Append("g").SetClass("links")
	c.nodes = f.Plot().Append("g").SetClass("nodes")
	c.hover = f.Root().Append("g").SetClass("hover")
	return c, nil
}

func (c *treeChart) Defaults() view.State { return c.cfg.initial(view.State{}) }

// colour of a node: continents by code, countries after their continent.
func (c *treeChart) colour(n *hierarchy.Node) string {
	switch n.Type {
	case typeEarth:
		return treeColours["earth"]
	case typeContinent:
		return treeColours[n.Name]
	}
	return treeColours[n.Data.Str("continent")]
}

func (c *treeChart) name(n *hierarchy.Node) string {
	if n.Type == typeContinent {
		return c.continents.Get(n.Name)
	}
	return n.Name
}

func (c *treeChart) Update(s view.State) error {
	tr := c.transition()
	linkKey := func(l hierarchy.Link, _ int) string { return l.Target.ID }
	join.Select[hierarchy.Link](c.links, "path.line", c.sched).Data(c.root.Links(), linkKey).Apply(tr, join.Handlers[hierarchy.Link]{
		Enter: func(el *scene.Element, l hierarchy.Link, _ int) {
			el.SetAttr("d", shape.LinkHorizontal(l.Source.Y, l.Source.X, l.Target.Y, l.Target.X)).
				SetAttr("fill", "none").SetAttr("stroke", c.colour(l.Source))
		},
	})
	nodeKey := func(n *hierarchy.Node, _ int) string { return n.ID }
	join.Select[*hierarchy.Node](c.nodes, "g.node", c.sched).Data(c.root.Descendants(), nodeKey).Apply(tr, join.Handlers[*hierarchy.Node]{
		Enter: func(el *scene.Element, n *hierarchy.Node, _ int) {
			if n.IsLeaf() {
				el.SetClass("node node-leaf")
			} else {
				el.SetClass("node node-internal")
			}
			el.SetAttr("transform", scene.Translate(n.Y, n.X))
			el.Append("circle").SetNum("r", treeNodeRadius).SetAttr("fill", c.colour(n))
			text := el.Append("text").SetAttr("font-family", treeFont).SetText(c.name(n))
			if n.IsLeaf() {
				text.SetNum("x", treeNodeRadius+10).SetNum("y", 5).SetAttr("text-anchor", "start")
			} else {
				text.SetNum("x", 0).SetNum("y", -treeNodeRadius-10).SetAttr("text-anchor", "middle")
			}
		},
	})
	c.showHover(s.Tooltip)
	return nil
}

// showHover describes the node whose circle is under the pointer.
func (c *treeChart) showHover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown {
		x, y := st.X-c.Margin.Left, st.Y-c.Margin.Top
		for _, n := range c.root.Descendants() {
			if math.Hypot(x-n.Y, y-n.X) > treeNodeRadius {
				continue
			}
			lines = []string{"Type: " + n.Type, "Name: " + c.name(n)}
			switch n.Type {
			case typeEarth:
				lines = append(lines, "Number of continents: "+strconv.Itoa(len(n.Children)))
			case typeContinent:
				lines = append(lines, "Number of countries: "+strconv.Itoa(len(n.Children)))
			default:
				lines = append(lines,
					"Capital City: "+n.Data.Str("capital"),
					"Currency: "+n.Data.Str("currency"),
					"Phone Code: "+n.Data.Str("phone"),
				)
			}
			break
		}
	}
	infoBox(c.hover, lines, st.X, st.Y)
}

// Graph is the diagram as drawn: X runs along depth.
func (c *treeChart) Graph() Graph {
	g := hierarchyGraph(c.root, c.colour)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.X, n.Y = n.Y, n.X
		if m := c.root.Find(n.ID); m != nil {
			n.Label = c.name(m)
		}
	}
	return g
}
