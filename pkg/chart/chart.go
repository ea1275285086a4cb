// Package chart builds interactive charts on top of the scene tree.
//
// Every chart embeds a [Frame] holding its canvas, margins, plot group and
// transition scheduler, and implements [Chart]. A chart is built once from
// a [Config] and its loaded [Data]; afterwards [Chart.Update] re-renders it
// for a view state, joining the new data against the existing elements so
// that shapes enter, move and exit under animated transitions.
//
// Charts are created through the registry:
//
//	data, err := chart.Load(ctx, dataset.DefaultLoader, cfg)
//	c, err := chart.New(cfg.Kind, cfg, data)
//	err = c.Update(c.Defaults())
//
// Optional interfaces describe what else a chart can do: [Tabular] charts
// expose their series for raster export, [Graphical] charts expose a node
// link graph for DOT export, [Player] charts animate over frames, and
// charts with linked controls implement interact.Syncer.
package chart

import (
	"time"

	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
	"github.com/matzehuels/vizlab/pkg/view"
)

// Kind names a chart type.
type Kind string

const (
	Bar      Kind = "bar"
	HBar     Kind = "hbar"
	Line     Kind = "line"
	Timeline Kind = "timeline"
	Area     Kind = "area"
	Stacked  Kind = "stacked"
	Pie      Kind = "pie"
	Scatter  Kind = "scatter"
	Treemap  Kind = "treemap"
	Sunburst Kind = "sunburst"
	Pack     Kind = "pack"
	Tree     Kind = "tree"
	NodeLink Kind = "nodelink"
)

// Chart is a rendered, updatable chart.
type Chart interface {
	Name() string
	Kind() Kind
	// Root is the <svg> element.
	Root() *scene.Element
	// Scheduler runs the chart's transitions.
	Scheduler() *transition.Scheduler
	// Defaults is the initial view state, including frame counts and the
	// initially selected options.
	Defaults() view.State
	// Update re-renders the chart for s.
	Update(s view.State) error
}

// Series is one named run of points for raster export. Time series carry
// Unix milliseconds in X.
type Series struct {
	Name   string
	X, Y   []float64
	Labels []string
	Time   bool
}

// Tabular charts expose the data currently on screen as series.
type Tabular interface {
	Series() []Series
}

// GraphNode is a vertex of a node-link chart.
type GraphNode struct {
	ID     string
	Label  string
	Colour string
	X, Y   float64
}

// GraphEdge joins two nodes by ID.
type GraphEdge struct {
	From, To string
	Colour   string
}

// Graph is the node-link structure of a chart.
type Graph struct {
	Nodes    []GraphNode
	Edges    []GraphEdge
	Directed bool
}

// Graphical charts expose their node-link structure.
type Graphical interface {
	Graph() Graph
}

// Player charts animate over frames at a fixed interval.
type Player interface {
	Interval() time.Duration
}

// Config describes one chart instance.
type Config struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Kind Kind   `toml:"kind" yaml:"kind" json:"kind"`
	// Width and Height override the canvas size of the chart kind.
	Width  float64 `toml:"width" yaml:"width" json:"width,omitempty"`
	Height float64 `toml:"height" yaml:"height" json:"height,omitempty"`
	// Duration overrides the transition duration of the chart kind.
	Duration time.Duration `toml:"duration" yaml:"duration" json:"duration,omitempty"`
	// Sources maps a data role ("data", "continents", ...) to a path or URL.
	Sources map[string]string `toml:"sources" yaml:"sources" json:"sources,omitempty"`
	// Options are string settings such as field names and axis labels.
	Options map[string]string `toml:"options" yaml:"options" json:"options,omitempty"`
	// Selected and Params seed the initial view state.
	Selected map[string]string  `toml:"selected" yaml:"selected" json:"selected,omitempty"`
	Params   map[string]float64 `toml:"params" yaml:"params" json:"params,omitempty"`
}

// Source returns the data source for role.
func (c Config) Source(role string) string { return c.Sources[role] }

// Option returns a string option, or def when unset.
func (c Config) Option(name, def string) string {
	if v, ok := c.Options[name]; ok && v != "" {
		return v
	}
	return def
}

// initial seeds a view state from the configured selections and params.
func (c Config) initial(s view.State) view.State {
	for k, v := range c.Selected {
		s = s.With(k, v)
	}
	for k, v := range c.Params {
		s = s.WithParam(k, v)
	}
	return s
}

// Data is the loaded input of a chart.
type Data struct {
	// Table is the primary table.
	Table dataset.Table
	// Groups holds keyed tables: coins by name, scatter frames by year.
	Groups dataset.Groups
	// Lookups holds code-to-name maps by role.
	Lookups map[string]dataset.Lookup
}

// Lookup returns the lookup for role, or an empty lookup.
func (d Data) Lookup(role string) dataset.Lookup {
	if l, ok := d.Lookups[role]; ok {
		return l
	}
	return dataset.NewLookup()
}
