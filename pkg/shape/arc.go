package shape

import (
	"cmp"
	"math"
	"slices"
)

const tau = 2 * math.Pi

// Slice is one pie segment. Angles are in radians, clockwise from twelve
// o'clock.
type Slice[D any] struct {
	Data       D
	Index      int
	Value      float64
	StartAngle float64
	EndAngle   float64
	PadAngle   float64
}

// Pie lays out data as adjacent angular segments proportional to Value.
// A nil Sort keeps data order.
type Pie[D any] struct {
	Value      func(d D) float64
	Sort       func(a, b D) int
	StartAngle float64
	EndAngle   float64 // defaults to StartAngle + 2π when equal to StartAngle
	PadAngle   float64
}

// Slices computes the segments. Negative and NaN values count as zero.
func (p Pie[D]) Slices(data []D) []Slice[D] {
	end := p.EndAngle
	if end == p.StartAngle {
		end = p.StartAngle + tau
	}
	span := end - p.StartAngle
	pad := math.Min(math.Abs(span)/math.Max(1, float64(len(data))), p.PadAngle)

	order := make([]int, len(data))
	for i := range order {
		order[i] = i
	}
	if p.Sort != nil {
		slices.SortStableFunc(order, func(a, b int) int { return p.Sort(data[a], data[b]) })
	}

	values := make([]float64, len(data))
	var total float64
	for i, d := range data {
		v := p.Value(d)
		if !(v > 0) {
			v = 0
		}
		values[i] = v
		total += v
	}

	out := make([]Slice[D], len(data))
	k := 0.0
	if total > 0 {
		k = (span - float64(len(data))*pad) / total
	}
	a := p.StartAngle
	for _, i := range order {
		w := values[i] * k
		out[i] = Slice[D]{
			Data:       data[i],
			Index:      i,
			Value:      values[i],
			StartAngle: a,
			EndAngle:   a + w + pad,
			PadAngle:   pad,
		}
		a += w + pad
	}
	return out
}

// ByValueDesc orders pie data by descending value.
func ByValueDesc[D any](value func(D) float64) func(a, b D) int {
	return func(a, b D) int { return cmp.Compare(value(b), value(a)) }
}

// Arc draws annular sectors.
type Arc struct {
	InnerRadius float64
	OuterRadius float64
}

// Path returns the sector between start and end, shrunk by pad.
func (a Arc) Path(start, end, pad float64) string {
	if end < start {
		start, end = end, start
	}
	r0, r1 := math.Max(0, a.InnerRadius), math.Max(0, a.OuterRadius)
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	var p Path
	if r1 == 0 {
		p.MoveTo(0, 0)
		p.Close()
		return p.String()
	}

	if end-start >= tau-1e-9 {
		// Full circle: two half arcs, plus the inner hole for donuts.
		p.MoveTo(0, -r1)
		p.ArcTo(r1, r1, 0, true, true, 0, r1)
		p.ArcTo(r1, r1, 0, true, true, 0, -r1)
		if r0 > 0 {
			p.MoveTo(0, -r0)
			p.ArcTo(r0, r0, 0, true, false, 0, r0)
			p.ArcTo(r0, r0, 0, true, false, 0, -r0)
		}
		p.Close()
		return p.String()
	}

	s1, e1 := padded(start, end, pad, r1, r1)
	x0, y0 := polar(r1, s1)
	x1, y1 := polar(r1, e1)
	p.MoveTo(x0, y0)
	p.ArcTo(r1, r1, 0, e1-s1 > math.Pi, true, x1, y1)
	if r0 > 0 {
		s0, e0 := padded(start, end, pad, r0, r1)
		x2, y2 := polar(r0, e0)
		x3, y3 := polar(r0, s0)
		p.LineTo(x2, y2)
		p.ArcTo(r0, r0, 0, e0-s0 > math.Pi, false, x3, y3)
	} else {
		p.LineTo(0, 0)
	}
	p.Close()
	return p.String()
}

// Centroid returns the midpoint of the sector, where labels go.
func (a Arc) Centroid(start, end float64) (x, y float64) {
	return polar((a.InnerRadius+a.OuterRadius)/2, (start+end)/2)
}

// padded shrinks [start, end] by a constant linear gap measured at the outer
// radius, so inner edges lose proportionally more angle.
func padded(start, end, pad, r, outer float64) (float64, float64) {
	if pad <= 0 || r <= 0 {
		return start, end
	}
	gap := math.Asin(math.Min(1, outer/r*math.Sin(pad/2)))
	if end-start <= 2*gap {
		mid := (start + end) / 2
		return mid, mid
	}
	return start + gap, end - gap
}

func polar(r, angle float64) (x, y float64) {
	return r * math.Sin(angle), -r * math.Cos(angle)
}
