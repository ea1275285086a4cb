package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
)

// DOTOptions configures DOT export.
type DOTOptions struct {
	// Positions pins every node at its chart coordinates (in points) so
	// Graphviz reproduces the chart's own layout instead of its own.
	Positions bool
	// RankDir is the Graphviz rank direction; defaults to "LR" for directed
	// graphs.
	RankDir string
}

// ToDOT converts the node-link structure of a chart to Graphviz DOT.
func ToDOT(g chart.Graph, opts DOTOptions) string {
	kind, arrow := "graph", "--"
	if g.Directed {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	if g.Directed {
		rank := opts.RankDir
		if rank == "" {
			rank = "LR"
		}
		fmt.Fprintf(&buf, "  rankdir=%s;\n", rank)
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, width=0.3];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Positions), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Colour != "" {
			fmt.Fprintf(&buf, "  %q %s %q [color=%q];\n", e.From, arrow, e.To, e.Colour)
			continue
		}
		fmt.Fprintf(&buf, "  %q %s %q;\n", e.From, arrow, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n chart.GraphNode, positions bool) []string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Colour != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Colour))
	}
	if positions {
		// Graphviz y grows upwards.
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", strconv.FormatFloat(n.X, 'f', 2, 64), strconv.FormatFloat(-n.Y, 'f', 2, 64)))
	}
	return attrs
}

// RenderDOT lays out a DOT graph with the embedded Graphviz and returns SVG.
// Graphs with pinned positions should be rendered with the "neato" engine.
func RenderDOT(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	if engine != "" {
		gv.SetLayout(engine)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag, sized in points, with
// one sized in pixels from the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
