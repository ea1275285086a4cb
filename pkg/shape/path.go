// Package shape generates SVG path data for lines, areas, arcs, stacks and
// links.
//
// Generators are plain structs of accessor functions over the chart's own
// datum type, so the same Line can draw coins by date or populations by
// year without intermediate slices. Output coordinates are rounded to three
// decimals, which keeps path strings stable for interpolation and golden
// files.
package shape

import (
	"strings"

	"github.com/matzehuels/vizlab/pkg/scene"
)

// Path accumulates SVG path commands.
type Path struct {
	sb strings.Builder
}

func (p *Path) cmd(c byte, xs ...float64) {
	p.sb.WriteByte(c)
	for i, x := range xs {
		if i > 0 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteString(scene.FormatNum(x))
	}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) { p.cmd('M', x, y) }

// LineTo draws a straight segment to (x, y).
func (p *Path) LineTo(x, y float64) { p.cmd('L', x, y) }

// CubicTo draws a cubic Bézier curve to (x, y).
func (p *Path) CubicTo(x1, y1, x2, y2, x, y float64) { p.cmd('C', x1, y1, x2, y2, x, y) }

// ArcTo draws an elliptical arc to (x, y).
func (p *Path) ArcTo(rx, ry, rotation float64, large, sweep bool, x, y float64) {
	p.cmd('A', rx, ry, rotation, flag(large), flag(sweep), x, y)
}

// Close closes the current subpath.
func (p *Path) Close() { p.sb.WriteByte('Z') }

// Empty reports whether no command has been written.
func (p *Path) Empty() bool { return p.sb.Len() == 0 }

// String returns the path data.
func (p *Path) String() string { return p.sb.String() }

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
