package chart

import (
	"fmt"
	"strconv"
	"time"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/format"
	"github.com/matzehuels/vizlab/pkg/hierarchy"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scale"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

type tileColour struct{ Content, Text string }

var tileColours = map[string]tileColour{
	"AF": {"#F0DEB4", "black"},
	"NA": {"#9EC4FF", "white"},
	"OC": {"#DD5CC5", "white"},
	"AS": {"#FFAC1E", "black"},
	"EU": {"#AEFF62", "black"},
	"SA": {"#FF7763", "white"},
}

func tileColourOf(code string) tileColour {
	if c, ok := tileColours[code]; ok {
		return c
	}
	return tileColour{"#CCCCCC", "black"}
}

// treemapChart tiles the countries of one year by population. The
// "continent" control restricts the tiles to one continent and
// "countries" keeps only the N most populated.
type treemapChart struct {
	*Frame
	cfg        Config
	years      dataset.Groups
	continents dataset.Lookup

	layout *hierarchy.Treemap
	font   *scale.Continuous
	cells  *scene.Element
	total  *scene.Element
	hover  *scene.Element

	leaves []*hierarchy.Node
	year   string
}

func newTreemap(cfg Config, d Data) (Chart, error) {
	if len(d.Groups) == 0 {
		return nil, noData(Treemap, "any year")
	}
	f := newFrame(cfg, Treemap, 1200, 650, Margin{}, transition.DefaultDuration)
	c := &treemapChart{Frame: f, cfg: cfg, years: d.Groups, continents: d.Lookup("continents")}
	c.layout = &hierarchy.Treemap{
		Width: f.Width, Height: f.Height - 50,
		PaddingInner: 1, Round: true,
		Tiling: hierarchy.Resquarify,
	}
	c.font = scale.NewLinear().SetRange(5, 40)
	c.total = addLabel(f.Root(), label{X: 20, Y: 30, Anchor: "start", Size: 20, Class: "population-text"})
	c.cells = f.Plot().SetAttr("transform", scene.Translate(0, 50))
	c.hover = f.Root().Append("g").SetClass("hover")
	return c, nil
}

func (c *treemapChart) Defaults() view.State {
	s := view.State{Frames: len(c.years)}.With("continent", "all").With("countries", "all")
	return c.cfg.initial(s)
}

// Interval is the playback period.
func (c *treemapChart) Interval() time.Duration { return c.Duration + 50*time.Millisecond }

func (c *treemapChart) Update(s view.State) error {
	if s.Frame < 0 || s.Frame >= len(c.years) {
		return noData(Treemap, fmt.Sprintf("frame %d", s.Frame))
	}
	continent, err := choose(Treemap, "continent", s.Get("continent", "all"), append([]string{"all"}, c.continents.Keys()...))
	if err != nil {
		return err
	}
	t := c.years[s.Frame].Table.Filter(func(r dataset.Record) bool {
		return continent == "all" || r.Str("continent_code") == continent
	})
	if n := s.Get("countries", "all"); n != "all" {
		top, err := strconv.Atoi(n)
		if err != nil || top < 1 {
			return choiceError(Treemap, "countries", n)
		}
		t = t.Head(top)
	}
	if t.Len() == 0 {
		return noData(Treemap, "continent "+continent)
	}
	c.year = c.years[s.Frame].Key

	root := hierarchy.Build(t, hierarchy.Level{Name: "world"}, hierarchy.Level{Field: "country", Type: "Country"})
	root.SumField("population").Sort(hierarchy.ByValueDesc)
	c.layout.Layout(root)
	c.leaves = root.Leaves()
	n := float64(len(c.leaves))

	var widest float64
	for i, ch := range root.Children {
		widest = max(widest, ch.X1-ch.X0+n-float64(i))
	}
	c.font.SetDomain(0, widest)

	tr := c.transition()
	key := func(nd *hierarchy.Node, _ int) string { return nd.Name }
	join.Select[*hierarchy.Node](c.cells, "g.cell", c.sched).Data(c.leaves, key).Apply(tr, join.Handlers[*hierarchy.Node]{
		Enter: func(el *scene.Element, nd *hierarchy.Node, i int) {
			col := tileColourOf(nd.Data.Str("continent_code"))
			el.SetAttr("transform", scene.Translate(nd.X0, nd.Y0))
			el.Append("rect").SetAttr("fill", col.Content)
			el.Append("text").SetClass("country-name").SetText(nd.Name).
				SetNum("x", (nd.X1-nd.X0)/2).SetNum("y", (nd.Y1-nd.Y0)/2).
				SetNum("font-size", c.font.Map(nd.X1-nd.X0+n-float64(i))).
				SetAttr("text-anchor", "middle").SetAttr("fill", col.Text)
		},
		Update: func(el *scene.Element, nd *hierarchy.Node, _ int, tr *transition.Transition) {
			w, h := nd.X1-nd.X0, nd.Y1-nd.Y0
			tr.Attr(el, "transform", scene.Translate(nd.X0, nd.Y0))
			tr.AttrNum(el.Children[0], "width", w)
			tr.AttrNum(el.Children[0], "height", h)
			tr.AttrNum(el.Children[1], "x", w/2)
			tr.AttrNum(el.Children[1], "y", h/2)
		},
		// Tiles leave at once.
		Exit: func(el *scene.Element, _ *transition.Transition) {
			el.Remove()
		},
	})
	c.total.SetText("Population in total: " + format.Thousands(root.Value, 0) + " mil.")
	c.showHover(s.Tooltip)
	return nil
}

// showHover describes the tile under the pointer.
func (c *treemapChart) showHover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown {
		x, y := st.X, st.Y-50
		for _, nd := range c.leaves {
			if x >= nd.X0 && x < nd.X1 && y >= nd.Y0 && y < nd.Y1 {
				lines = []string{
					"Country: " + nd.Name,
					"Continent: " + c.continents.Get(nd.Data.Str("continent_code")),
					"Population: " + format.Thousands(nd.Value, 0) + " mil.",
					"Year: " + c.year,
				}
				break
			}
		}
	}
	infoBox(c.hover, lines, st.X, st.Y)
}

func (c *treemapChart) Series() []Series {
	s := Series{Name: c.year}
	for i, nd := range c.leaves {
		s.X = append(s.X, float64(i))
		s.Y = append(s.Y, nd.Value)
		s.Labels = append(s.Labels, nd.Name)
	}
	return []Series{s}
}
