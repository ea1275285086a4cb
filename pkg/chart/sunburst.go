package chart

import (
	"math"
	"time"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/hierarchy"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/shape"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

const tau = 2 * math.Pi

// sunburstChart draws Earth, continents, regions and countries as rings
// of a partition. The "option" control picks the measure that sizes the
// sectors.
type sunburstChart struct {
	*Frame
	cfg                 Config
	table               dataset.Table
	continents, regions dataset.Lookup

	radius *scale.Continuous
	centre *scene.Element
	hover  *scene.Element

	root   *hierarchy.Node
	parent map[string]string
}

func newSunburst(cfg Config, d Data) (Chart, error) {
	if d.Table.Len() == 0 {
		return nil, noData(Sunburst, "any country")
	}
	f := newFrame(cfg, Sunburst, 1200, 750, Margin{}, 3*time.Second)
	c := &sunburstChart{
		Frame: f, cfg: cfg, table: d.Table,
		continents: d.Lookup("continents"), regions: d.Lookup("regions"),
	}
	c.radius = scale.NewSqrt().SetRange(0, min(f.Width, f.Height)/2)
	c.centre = f.Plot().SetAttr("transform", scene.Translate(f.Width/2, f.Height/2))
	c.centre.Append("g").SetClass("sectors")
	if img := cfg.Option("image", "img/earth.png"); img != "none" {
		c.centre.Append("image").SetAttr("href", img).
			SetNum("x", -125).SetNum("y", -125).SetNum("width", 250).SetNum("height", 250)
	}
	c.hover = f.Root().Append("g").SetClass("hover")
	return c, nil
}

func (c *sunburstChart) Defaults() view.State {
	return c.cfg.initial(view.State{}.With("option", "population"))
}

// angles maps a partition column to clamped start and end angles.
func angles(n *hierarchy.Node) (start, end float64) {
	clamp := func(v float64) float64 { return math.Max(0, math.Min(tau, v*tau)) }
	return clamp(n.X0), clamp(n.X1)
}

func (c *sunburstChart) colour(n *hierarchy.Node) string {
	p := paletteFor(c.parent[n.ID])
	switch n.Type {
	case typeContinent:
		return p.Continent
	case typeRegion:
		return p.Region
	case typeCountry:
		return p.Country
	}
	return "white"
}

func (c *sunburstChart) Update(s view.State) error {
	measure, err := choose(Sunburst, "option", s.Get("option", "population"), countryMeasures)
	if err != nil {
		return err
	}
	root := countryTree(c.table, true, measure)
	hierarchy.Partition{}.Layout(root)
	c.root, c.parent = root, continentsOf(root)

	tr := c.transition()
	nodes := root.Descendants()
	key := func(n *hierarchy.Node, _ int) string { return n.ID }
	join.Select[*hierarchy.Node](c.centre.First("g.sectors"), "path.sector", c.sched).Data(nodes, key).Apply(tr, join.Handlers[*hierarchy.Node]{
		Enter: func(el *scene.Element, n *hierarchy.Node, _ int) {
			el.SetAttr("fill", c.colour(n)).SetAttr("stroke", "white")
		},
		Update: func(el *scene.Element, n *hierarchy.Node, _ int, tr *transition.Transition) {
			tr.Attr(el, "d", c.arc(n))
		},
	})
	c.showHover(s.Tooltip)
	return nil
}

func (c *sunburstChart) arc(n *hierarchy.Node) string {
	start, end := angles(n)
	a := shape.Arc{InnerRadius: c.radius.Map(n.Y0), OuterRadius: c.radius.Map(n.Y1)}
	return a.Path(start, end, 0)
}

// at returns the sector under the canvas point (x, y).
func (c *sunburstChart) at(x, y float64) *hierarchy.Node {
	if c.root == nil {
		return nil
	}
	dx, dy := x-c.Width/2, y-c.Height/2
	r := math.Hypot(dx, dy)
	angle := math.Atan2(dx, -dy)
	if angle < 0 {
		angle += tau
	}
	for _, n := range c.root.Descendants() {
		start, end := angles(n)
		if angle >= start && angle < end && r >= c.radius.Map(n.Y0) && r < c.radius.Map(n.Y1) {
			return n
		}
	}
	return nil
}

func (c *sunburstChart) showHover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown {
		if n := c.at(st.X, st.Y); n != nil {
			lines = countryLines(n, c.continents, c.regions)
		}
	}
	infoBox(c.hover, lines, st.X, st.Y)
}

func (c *sunburstChart) Series() []Series { return leafSeries("countries", c.root) }

func (c *sunburstChart) Graph() Graph {
	if c.root == nil {
		return Graph{Directed: true}
	}
	return hierarchyGraph(c.root, c.colour)
}
