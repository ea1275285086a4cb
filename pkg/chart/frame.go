package chart

import (
	"time"

	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
)

// Margin insets the plot area from the canvas edges.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Frame is the scaffold shared by all charts: the <svg> canvas, the plot
// group translated by the margins, and the scheduler.
type Frame struct {
	name string
	kind Kind

	// Width and Height are the canvas size.
	Width, Height float64
	Margin        Margin
	// Duration is the transition length of one update.
	Duration time.Duration

	root  *scene.Element
	plot  *scene.Element
	sched *transition.Scheduler
}

// newFrame builds the canvas for cfg, falling back to the kind's default
// size and duration.
func newFrame(cfg Config, kind Kind, width, height float64, m Margin, d time.Duration) *Frame {
	if cfg.Width > 0 {
		width = cfg.Width
	}
	if cfg.Height > 0 {
		height = cfg.Height
	}
	if cfg.Duration > 0 {
		d = cfg.Duration
	}
	name := cfg.Name
	if name == "" {
		name = string(kind)
	}
	f := &Frame{
		name: name, kind: kind,
		Width: width, Height: height, Margin: m, Duration: d,
		sched: transition.NewScheduler(),
	}
	f.root = scene.New("svg")
	f.root.SetAttr("xmlns", "http://www.w3.org/2000/svg")
	f.root.SetNum("width", width).SetNum("height", height)
	f.root.SetAttr("class", string(kind))
	f.plot = f.root.Append("g").SetClass("plot")
	f.plot.SetAttr("transform", scene.Translate(m.Left, m.Top))
	return f
}

func (f *Frame) Name() string                     { return f.name }
func (f *Frame) Kind() Kind                       { return f.kind }
func (f *Frame) Root() *scene.Element             { return f.root }
func (f *Frame) Scheduler() *transition.Scheduler { return f.sched }

// Plot is the group inside the margins.
func (f *Frame) Plot() *scene.Element { return f.plot }

// InnerWidth is the plot width.
func (f *Frame) InnerWidth() float64 { return f.Width - f.Margin.Left - f.Margin.Right }

// InnerHeight is the plot height.
func (f *Frame) InnerHeight() float64 { return f.Height - f.Margin.Top - f.Margin.Bottom }

// transition starts the transition for one update.
func (f *Frame) transition() *transition.Transition {
	return f.sched.Transition(f.Duration)
}

// label is a text element styled like an axis caption.
type label struct {
	Text     string
	X, Y     float64
	Size     float64
	Font     string
	Anchor   string
	Rotate   float64
	Class    string
	Colour   string
	Baseline string
}

// addLabel appends a caption to parent.
func addLabel(parent *scene.Element, l label) *scene.Element {
	t := parent.Append("text")
	if l.Class != "" {
		t.SetClass(l.Class)
	}
	t.SetNum("x", l.X).SetNum("y", l.Y)
	if l.Size > 0 {
		t.SetNum("font-size", l.Size)
	}
	if l.Font != "" {
		t.SetAttr("font-family", l.Font)
	}
	anchor := l.Anchor
	if anchor == "" {
		anchor = "middle"
	}
	t.SetAttr("text-anchor", anchor)
	if l.Rotate != 0 {
		t.SetAttr("transform", scene.Rotate(l.Rotate))
	}
	if l.Colour != "" {
		t.SetAttr("fill", l.Colour)
	}
	if l.Baseline != "" {
		t.SetAttr("dominant-baseline", l.Baseline)
	}
	t.SetText(l.Text)
	return t
}

// axisGroup appends a group for an axis, translated to (x, y).
func axisGroup(parent *scene.Element, class string, x, y float64) *scene.Element {
	g := parent.Append("g").SetClass(class)
	if x != 0 || y != 0 {
		g.SetAttr("transform", scene.Translate(x, y))
	}
	return g
}

// infoBox draws a hover box of text lines at (x, y), replacing any
// previous one. Empty lines hide it.
func infoBox(parent *scene.Element, lines []string, x, y float64) *scene.Element {
	box := parent.First("g.info")
	if box == nil {
		box = parent.Append("g").SetClass("info")
		box.Append("rect").SetAttr("fill", "white").SetAttr("stroke", "#333333").SetNum("rx", 4)
		box.Append("text").SetNum("x", 8).SetNum("y", 18).SetNum("font-size", 12)
	}
	if len(lines) == 0 {
		box.SetAttr("display", "none")
		return box
	}
	box.SetAttr("display", "inline")
	box.SetAttr("transform", scene.Translate(x+12, y+12))
	width := 0
	for _, l := range lines {
		width = max(width, len(l))
	}
	box.Children[0].SetNum("width", float64(width)*7+16).SetNum("height", float64(len(lines))*16+12)
	text := box.Children[1]
	text.Children = nil
	text.SetText(lines[0])
	for _, l := range lines[1:] {
		text.Append("tspan").SetNum("x", 8).SetAttr("dy", "1.3em").SetText(l)
	}
	return box
}
