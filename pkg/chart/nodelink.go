package chart

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/force"
	"github.com/matzehuels/vizlab/pkg/join"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/tooltip"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

func loadSubway(ctx context.Context, l *dataset.Loader, cfg Config) (Data, error) {
	t, err := loadTable(ctx, l, cfg, dataset.Schema{Required: []string{"start", "stop", "line"}})
	if err != nil {
		return Data{}, err
	}
	return Data{Table: t}, nil
}

type station struct {
	node  *force.Node
	lines []string
}

type connection struct {
	From, To, Line, Colour string
}

const (
	stationRadius = 7
	dragAlpha     = 0.3
)

// nodeLinkChart lays out a subway network with a force simulation. Every
// station is pulled towards the zone of its first line. Dragging pins a
// station and reheats the simulation until it is released.
type nodeLinkChart struct {
	*Frame
	cfg      Config
	stations []*station
	byID     map[string]*station
	links    []connection
	sim      *force.Simulation

	edges    *scene.Element
	circles  *scene.Element
	hover    *scene.Element
	dragging string
}

func newNodeLink(cfg Config, d Data) (Chart, error) {
	if d.Table.Len() == 0 {
		return nil, noData(NodeLink, "any connection")
	}
	f := newFrame(cfg, NodeLink, 1200, 700, Margin{}, 0)
	c := &nodeLinkChart{Frame: f, cfg: cfg, byID: map[string]*station{}}

	add := func(id string) *station {
		if st, ok := c.byID[id]; ok {
			return st
		}
		st := &station{node: &force.Node{ID: id}}
		c.byID[id] = st
		c.stations = append(c.stations, st)
		return st
	}
	for _, r := range d.Table.Rows {
		add(r.Str("start"))
	}
	for _, r := range d.Table.Rows {
		add(r.Str("stop"))
	}
	var links []force.Link
	for _, r := range d.Table.Rows {
		from, to, line := c.byID[r.Str("start")], c.byID[r.Str("stop")], r.Str("line")
		for _, st := range []*station{from, to} {
			if !slices.Contains(st.lines, line) {
				st.lines = append(st.lines, line)
			}
		}
		c.links = append(c.links, connection{From: from.node.ID, To: to.node.ID, Line: line, Colour: r.Str("color")})
		links = append(links, force.Link{Source: slices.Index(c.stations, from), Target: slices.Index(c.stations, to)})
	}

	nodes := make([]*force.Node, len(c.stations))
	for i, st := range c.stations {
		nodes[i] = st.node
	}
	collide := force.CollideRadius(10)
	collide.Strength = 0.8
	c.sim = force.New(nodes).
		AddForce("x", force.X(c.zoneX)).
		AddForce("y", force.Y(c.zoneY)).
		AddForce("charge", force.Charge(-70)).
		AddForce("collide", collide).
		AddForce("link", &force.Links{Links: links})

	c.edges = f.Plot().Append("g").SetClass("links")
	c.circles = f.Plot().Append("g").SetClass("stations")
	c.hover = f.Root().Append("g").SetClass("hover")
	return c, nil
}

// zone returns the centre a station is pulled towards: the canvas is split
// into a 3x2 grid and each line owns one cell.
func (c *nodeLinkChart) zone(n *force.Node) (x, y float64) {
	w, h := c.Width, c.Height
	zw, zh := w/3, h/2
	var first string
	if st := c.byID[n.ID]; st != nil && len(st.lines) > 0 {
		first = st.lines[0]
	}
	switch first {
	case "2":
		return w - zw/2, zh / 2
	case "3":
		return w - zw/2, h - zh/2
	case "4":
		return zw / 2, h - zh/2
	case "6":
		return zw / 2, zh / 2
	}
	return w / 2, h / 2
}

func (c *nodeLinkChart) zoneX(n *force.Node) float64 {
	x, _ := c.zone(n)
	return x
}

func (c *nodeLinkChart) zoneY(n *force.Node) float64 {
	_, y := c.zone(n)
	return y
}

func (c *nodeLinkChart) Defaults() view.State {
	return c.cfg.initial(view.State{}.WithParam("ticks", 300))
}

// drag pins the dragged station, or releases the previous one.
func (c *nodeLinkChart) drag(d view.DragState) error {
	if !d.Active {
		if c.dragging != "" {
			c.byID[c.dragging].node.Release()
			c.sim.SetAlphaTarget(0)
			c.dragging = ""
		}
		return nil
	}
	st, ok := c.byID[d.ID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "%s chart: no station %q", NodeLink, d.ID)
	}
	if c.dragging == "" {
		c.sim.SetAlphaTarget(dragAlpha).Restart()
	} else if c.dragging != d.ID {
		c.byID[c.dragging].node.Release()
	}
	c.dragging = d.ID
	st.node.Fix(d.X, d.Y)
	return nil
}

func (c *nodeLinkChart) Update(s view.State) error {
	if err := c.drag(s.Drag); err != nil {
		return err
	}
	c.sim.Run(int(s.Param("ticks", 300)))

	lineKey := func(l connection, _ int) string { return l.From + "|" + l.To + "|" + l.Line }
	join.Select[connection](c.edges, "line.link", c.sched).Data(c.links, lineKey).Apply(nil, join.Handlers[connection]{
		Enter: func(el *scene.Element, l connection, _ int) {
			el.SetAttr("stroke", l.Colour).SetAttr("stroke-width", "2")
		},
		Update: func(el *scene.Element, l connection, _ int, _ *transition.Transition) {
			a, b := c.byID[l.From].node, c.byID[l.To].node
			el.SetNum("x1", a.X).SetNum("y1", a.Y).SetNum("x2", b.X).SetNum("y2", b.Y)
		},
	})
	key := func(st *station, _ int) string { return st.node.ID }
	join.Select[*station](c.circles, "circle.station", c.sched).Data(c.stations, key).Apply(nil, join.Handlers[*station]{
		Enter: func(el *scene.Element, st *station, _ int) {
			el.SetNum("r", float64(len(st.lines)*stationRadius)).SetAttr("stroke", "white")
		},
		Update: func(el *scene.Element, st *station, _ int, _ *transition.Transition) {
			el.SetNum("cx", st.node.X).SetNum("cy", st.node.Y)
		},
	})
	c.showHover(s.Tooltip)
	return nil
}

// at returns the station under (x, y).
func (c *nodeLinkChart) at(x, y float64) *station {
	for _, st := range slices.Backward(c.stations) {
		if math.Hypot(x-st.node.X, y-st.node.Y) <= float64(len(st.lines)*stationRadius) {
			return st
		}
	}
	return nil
}

func (c *nodeLinkChart) showHover(st tooltip.State) {
	var lines []string
	if st.Phase == tooltip.Shown && c.dragging == "" {
		if s := c.at(st.X, st.Y); s != nil {
			lines = []string{"Stop: " + s.node.ID, "Lines: " + strings.Join(s.lines, ", ")}
		}
	}
	infoBox(c.hover, lines, st.X, st.Y)
}

func (c *nodeLinkChart) Graph() Graph {
	colours := map[string]string{}
	for _, l := range c.links {
		if _, ok := colours[l.Line]; !ok {
			colours[l.Line] = l.Colour
		}
	}
	var g Graph
	for _, st := range c.stations {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:     st.node.ID,
			Label:  st.node.ID,
			Colour: colours[st.lines[0]],
			X:      st.node.X,
			Y:      st.node.Y,
		})
	}
	for _, l := range c.links {
		g.Edges = append(g.Edges, GraphEdge{From: l.From, To: l.To, Colour: l.Colour})
	}
	return g
}
