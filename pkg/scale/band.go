package scale

import "math"

// Band maps a list of categories to evenly spaced bands of equal width.
//
// The layout follows the usual band algorithm: the range is divided into
// n - paddingInner + 2*paddingOuter steps, each band is step*(1-paddingInner)
// wide, and the leftover space is distributed according to Align.
type Band struct {
	domain   []string
	index    map[string]int
	r0, r1   float64
	inner    float64
	outer    float64
	align    float64
	round    bool
	step     float64
	width    float64
	starting float64
}

// NewBand returns a band scale with range [0, 1] and centred alignment.
func NewBand() *Band {
	b := &Band{r1: 1, align: 0.5, index: map[string]int{}}
	b.rescale()
	return b
}

// SetDomain replaces the categories. Duplicates keep their first position.
func (b *Band) SetDomain(keys ...string) *Band {
	b.domain = nil
	b.index = make(map[string]int, len(keys))
	for _, k := range keys {
		if _, ok := b.index[k]; ok {
			continue
		}
		b.index[k] = len(b.domain)
		b.domain = append(b.domain, k)
	}
	b.rescale()
	return b
}

// SetRange sets the output interval. r0 may exceed r1.
func (b *Band) SetRange(r0, r1 float64) *Band {
	b.r0, b.r1 = r0, r1
	b.rescale()
	return b
}

// SetPadding sets inner and outer padding to p.
func (b *Band) SetPadding(p float64) *Band {
	b.inner, b.outer = clamp01(p), p
	b.rescale()
	return b
}

// SetPaddingInner sets the fraction of each step left blank between bands.
func (b *Band) SetPaddingInner(p float64) *Band {
	b.inner = clamp01(p)
	b.rescale()
	return b
}

// SetPaddingOuter sets the blank space before the first and after the last
// band, in multiples of the step.
func (b *Band) SetPaddingOuter(p float64) *Band {
	b.outer = p
	b.rescale()
	return b
}

// SetAlign positions the bands within leftover outer space: 0 left, 0.5
// centre, 1 right.
func (b *Band) SetAlign(a float64) *Band {
	b.align = clamp01(a)
	b.rescale()
	return b
}

// SetRound snaps step and band start to whole pixels.
func (b *Band) SetRound(round bool) *Band {
	b.round = round
	b.rescale()
	return b
}

// Domain returns the categories in order.
func (b *Band) Domain() []string { return append([]string(nil), b.domain...) }

// Range returns the output interval.
func (b *Band) Range() (float64, float64) { return b.r0, b.r1 }

// Bandwidth returns the width of each band.
func (b *Band) Bandwidth() float64 { return b.width }

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return b.step }

// Map returns the start of the band for key; ok is false for unknown keys.
func (b *Band) Map(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return math.NaN(), false
	}
	if b.r1 < b.r0 {
		i = len(b.domain) - 1 - i
	}
	return b.starting + b.step*float64(i), true
}

// Index returns the category whose band (including its share of the inner
// padding) contains pixel x; ok is false outside the bands.
func (b *Band) Index(x float64) (string, bool) {
	if len(b.domain) == 0 || b.step == 0 {
		return "", false
	}
	i := int(math.Floor((x - b.starting) / b.step))
	if i < 0 || i >= len(b.domain) {
		return "", false
	}
	if b.r1 < b.r0 {
		i = len(b.domain) - 1 - i
	}
	return b.domain[i], true
}

// Copy returns an independent copy of b.
func (b *Band) Copy() *Band {
	c := *b
	c.domain = append([]string(nil), b.domain...)
	c.index = make(map[string]int, len(b.index))
	for k, v := range b.index {
		c.index[k] = v
	}
	return &c
}

func (b *Band) rescale() {
	n := float64(len(b.domain))
	start, stop := b.r0, b.r1
	if stop < start {
		start, stop = stop, start
	}
	b.step = (stop - start) / math.Max(1, n-b.inner+b.outer*2)
	if b.round {
		b.step = math.Floor(b.step)
	}
	start += (stop - start - b.step*(n-b.inner)) * b.align
	b.width = b.step * (1 - b.inner)
	if b.round {
		start = math.Round(start)
		b.width = math.Round(b.width)
	}
	b.starting = start
}

// Point is a band scale with zero bandwidth: categories map to evenly spaced
// points. Padding is the space before the first and after the last point in
// multiples of the step.
type Point struct {
	band *Band
}

// NewPoint returns a point scale with range [0, 1].
func NewPoint() *Point {
	return &Point{band: NewBand().SetPaddingInner(1)}
}

// SetDomain replaces the categories.
func (p *Point) SetDomain(keys ...string) *Point {
	p.band.SetDomain(keys...)
	return p
}

// SetRange sets the output interval.
func (p *Point) SetRange(r0, r1 float64) *Point {
	p.band.SetRange(r0, r1)
	return p
}

// SetPadding sets the outer padding.
func (p *Point) SetPadding(pad float64) *Point {
	p.band.SetPaddingOuter(pad)
	return p
}

// SetAlign positions the points within leftover space.
func (p *Point) SetAlign(a float64) *Point {
	p.band.SetAlign(a)
	return p
}

// Domain returns the categories in order.
func (p *Point) Domain() []string { return p.band.Domain() }

// Step returns the distance between adjacent points.
func (p *Point) Step() float64 { return p.band.Step() }

// Map returns the position of key; ok is false for unknown keys.
func (p *Point) Map(key string) (float64, bool) { return p.band.Map(key) }

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
