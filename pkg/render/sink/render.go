package sink

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
)

// Format names an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	// FormatGraph is the DOT export laid out by Graphviz, as SVG.
	FormatGraph Format = "graph"
)

// Formats lists every format in the order the CLI documents them.
var Formats = []Format{FormatSVG, FormatPNG, FormatJSON, FormatDOT, FormatGraph}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want svg, png, json, dot or graph)", s)
}

// Extension is the file extension of f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatGraph:
		return "graph.svg"
	default:
		return string(f)
	}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatGraph:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// Options configures [Render].
type Options struct {
	// Animate exports pending transitions as SMIL instead of flushing them.
	// Only SVG output can be animated.
	Animate bool
	// Title is written into SVG output.
	Title string
	// DOT configures DOT and graph output.
	DOT DOTOptions
}

// Render encodes the chart in format f. Every format except animated SVG
// flushes the chart's transitions first.
func Render(ctx context.Context, c chart.Chart, f Format, opts Options) ([]byte, error) {
	if !(f == FormatSVG && opts.Animate) {
		c.Scheduler().Flush()
	}

	var buf bytes.Buffer
	switch f {
	case FormatSVG:
		var svgOpts []SVGOption
		if opts.Animate {
			svgOpts = append(svgOpts, WithAnimation(c.Scheduler()))
		}
		if opts.Title != "" {
			svgOpts = append(svgOpts, WithTitle(opts.Title))
		}
		if err := SVG(&buf, c.Root(), svgOpts...); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatPNG:
		if err := PNG(&buf, c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return JSON(c.Root(), WithJSONIndent(), WithJSONKeys())
	case FormatDOT, FormatGraph:
		g, ok := c.(chart.Graphical)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "%s: %s charts have no node-link structure", f, c.Kind())
		}
		if f == FormatDOT {
			return []byte(ToDOT(g.Graph(), opts.DOT)), nil
		}
		dotOpts := opts.DOT
		dotOpts.Positions = true
		return RenderDOT(ctx, ToDOT(g.Graph(), dotOpts), graphviz.NEATO)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}
