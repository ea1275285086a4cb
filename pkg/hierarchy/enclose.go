package hierarchy

import "math"

// Enclose returns the smallest circle that encloses every circle in cs,
// using Welzl's move-to-front algorithm over a deterministic shuffle.
func Enclose(cs []Circle) Circle {
	if len(cs) == 0 {
		return Circle{}
	}
	circles := append([]Circle(nil), cs...)
	shuffle(circles)

	var (
		basis []Circle
		e     Circle
		have  bool
	)
	for i := 0; i < len(circles); {
		p := circles[i]
		if have && enclosesWeak(e, p) {
			i++
			continue
		}
		nb, ok := extendBasis(basis, p)
		if !ok {
			return encloseFallback(cs)
		}
		basis = nb
		e, have = encloseBasis(basis), true
		i = 0
	}
	return e
}

// shuffle permutes cs with a fixed linear congruential generator so layouts
// are reproducible.
func shuffle(cs []Circle) {
	const a, c, m = 1664525, 1013904223, 4294967296
	s := 1.0
	random := func() float64 {
		s = math.Mod(a*s+c, m)
		return s / m
	}
	for n := len(cs); n > 0; {
		i := int(random() * float64(n))
		n--
		cs[n], cs[i] = cs[i], cs[n]
	}
}

func extendBasis(b []Circle, p Circle) ([]Circle, bool) {
	if enclosesWeakAll(p, b) {
		return []Circle{p}, true
	}
	for i := range b {
		if enclosesNot(p, b[i]) && enclosesWeakAll(encloseBasis2(b[i], p), b) {
			return []Circle{b[i], p}, true
		}
	}
	for i := 0; i < len(b)-1; i++ {
		for j := i + 1; j < len(b); j++ {
			if enclosesNot(encloseBasis2(b[i], b[j]), p) &&
				enclosesNot(encloseBasis2(b[i], p), b[j]) &&
				enclosesNot(encloseBasis2(b[j], p), b[i]) &&
				enclosesWeakAll(encloseBasis3(b[i], b[j], p), b) {
				return []Circle{b[i], b[j], p}, true
			}
		}
	}
	return nil, false
}

func enclosesNot(a, b Circle) bool {
	dr := a.R - b.R
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr < 0 || dr*dr < dx*dx+dy*dy
}

func enclosesWeak(a, b Circle) bool {
	dr := a.R - b.R + math.Max(math.Max(a.R, b.R), 1)*1e-9
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func enclosesWeakAll(a Circle, b []Circle) bool {
	for _, c := range b {
		if !enclosesWeak(a, c) {
			return false
		}
	}
	return true
}

func encloseBasis(b []Circle) Circle {
	switch len(b) {
	case 1:
		return b[0]
	case 2:
		return encloseBasis2(b[0], b[1])
	}
	return encloseBasis3(b[0], b[1], b[2])
}

func encloseBasis2(a, b Circle) Circle {
	x21, y21, r21 := b.X-a.X, b.Y-a.Y, b.R-a.R
	l := math.Sqrt(x21*x21 + y21*y21)
	return Circle{
		X: (a.X + b.X + x21/l*r21) / 2,
		Y: (a.Y + b.Y + y21/l*r21) / 2,
		R: (l + a.R + b.R) / 2,
	}
}

func encloseBasis3(a, b, c Circle) Circle {
	x1, y1, r1 := a.X, a.Y, a.R
	x2, y2, r2 := b.X, b.Y, b.R
	x3, y3, r3 := c.X, c.Y, c.R
	a2, a3 := x1-x2, x1-x3
	b2, b3 := y1-y2, y1-y3
	c2, c3 := r2-r1, r3-r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2*r2
	d3 := d1 - x3*x3 - y3*y3 + r3*r3
	ab := a3*b2 - a2*b3
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab
	A := xb*xb + yb*yb - 1
	B := 2 * (r1 + xa*xb + ya*yb)
	C := xa*xa + ya*ya - r1*r1
	var r float64
	if math.Abs(A) > 1e-6 {
		r = -(B + math.Sqrt(B*B-4*A*C)) / (2 * A)
	} else {
		r = -(C / B)
	}
	return Circle{X: x1 + xa + xb*r, Y: y1 + ya + yb*r, R: r}
}

// encloseFallback centres a circle on the centroid when numerical
// trouble defeats the exact basis search.
func encloseFallback(cs []Circle) Circle {
	var x, y float64
	for _, c := range cs {
		x += c.X
		y += c.Y
	}
	x /= float64(len(cs))
	y /= float64(len(cs))
	var r float64
	for _, c := range cs {
		r = math.Max(r, math.Hypot(c.X-x, c.Y-y)+c.R)
	}
	return Circle{X: x, Y: y, R: r}
}
