package shape

// Line draws a polyline through data. Points for which Defined returns false
// break the line into separate subpaths.
type Line[D any] struct {
	X       func(d D, i int) float64
	Y       func(d D, i int) float64
	Defined func(d D, i int) bool
}

// Path returns the path data for data; empty for no defined points.
func (l Line[D]) Path(data []D) string {
	var p Path
	open := false
	for i, d := range data {
		if l.Defined != nil && !l.Defined(d, i) {
			open = false
			continue
		}
		x, y := l.X(d, i), l.Y(d, i)
		if !open {
			p.MoveTo(x, y)
			open = true
			continue
		}
		p.LineTo(x, y)
	}
	return p.String()
}

// Area draws the region between a baseline Y0 and a topline Y1.
type Area[D any] struct {
	X       func(d D, i int) float64
	Y0      func(d D, i int) float64
	Y1      func(d D, i int) float64
	Defined func(d D, i int) bool
}

// Path returns the closed path data for data.
func (a Area[D]) Path(data []D) string {
	var p Path
	var run []int
	flush := func() {
		if len(run) == 0 {
			return
		}
		for k, i := range run {
			x, y := a.X(data[i], i), a.Y1(data[i], i)
			if k == 0 {
				p.MoveTo(x, y)
			} else {
				p.LineTo(x, y)
			}
		}
		for k := len(run) - 1; k >= 0; k-- {
			i := run[k]
			p.LineTo(a.X(data[i], i), a.Y0(data[i], i))
		}
		p.Close()
		run = run[:0]
	}
	for i, d := range data {
		if a.Defined != nil && !a.Defined(d, i) {
			flush()
			continue
		}
		run = append(run, i)
	}
	flush()
	return p.String()
}

// Link draws a cubic Bézier between two points, as in tree diagrams.
type Link struct {
	// Vertical bends the curve along y (top-down trees); otherwise along x.
	Vertical bool
}

// Path returns the link from (x0, y0) to (x1, y1).
func (l Link) Path(x0, y0, x1, y1 float64) string {
	var p Path
	p.MoveTo(x0, y0)
	if l.Vertical {
		my := (y0 + y1) / 2
		p.CubicTo(x0, my, x1, my, x1, y1)
	} else {
		mx := (x0 + x1) / 2
		p.CubicTo(mx, y0, mx, y1, x1, y1)
	}
	return p.String()
}

// LinkVertical links parent and child in a top-down tree.
func LinkVertical(x0, y0, x1, y1 float64) string { return Link{Vertical: true}.Path(x0, y0, x1, y1) }

// LinkHorizontal links parent and child in a left-to-right tree.
func LinkHorizontal(x0, y0, x1, y1 float64) string { return Link{}.Path(x0, y0, x1, y1) }
