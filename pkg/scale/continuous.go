package scale

import "math"

// transform identifies the domain transform of a continuous scale.
type transform int

const (
	identity transform = iota
	logarithmic
	power
)

// Continuous maps a numeric domain onto a numeric range, optionally through a
// log or power transform. The zero value is not usable; use one of the
// constructors.
type Continuous struct {
	d0, d1   float64
	r0, r1   float64
	clamp    bool
	kind     transform
	base     float64 // log base
	exponent float64 // pow exponent
}

// NewLinear returns a linear scale with domain and range [0, 1].
func NewLinear() *Continuous {
	return &Continuous{d1: 1, r1: 1, kind: identity}
}

// NewLog returns a logarithmic scale with the given base (10 if base <= 1)
// and domain [1, 10]. Domains must be strictly positive or strictly negative.
func NewLog(base float64) *Continuous {
	if base <= 1 {
		base = 10
	}
	return &Continuous{d0: 1, d1: 10, r1: 1, kind: logarithmic, base: base}
}

// NewPow returns a power scale with the given exponent.
func NewPow(exponent float64) *Continuous {
	return &Continuous{d1: 1, r1: 1, kind: power, exponent: exponent}
}

// NewSqrt returns a power scale with exponent 0.5, suitable for sizing
// circles by area.
func NewSqrt() *Continuous {
	return NewPow(0.5)
}

// SetDomain sets the input interval.
func (s *Continuous) SetDomain(d0, d1 float64) *Continuous {
	s.d0, s.d1 = d0, d1
	return s
}

// SetRange sets the output interval. r0 may exceed r1 (inverted y axes).
func (s *Continuous) SetRange(r0, r1 float64) *Continuous {
	s.r0, s.r1 = r0, r1
	return s
}

// SetClamp enables or disables clamping of Map output to the range.
func (s *Continuous) SetClamp(clamp bool) *Continuous {
	s.clamp = clamp
	return s
}

// Domain returns the input interval.
func (s *Continuous) Domain() (float64, float64) { return s.d0, s.d1 }

// Range returns the output interval.
func (s *Continuous) Range() (float64, float64) { return s.r0, s.r1 }

// Copy returns an independent copy of s.
func (s *Continuous) Copy() *Continuous {
	c := *s
	return &c
}

// Map returns the range value for domain value x.
// A degenerate domain maps every value to the middle of the range.
func (s *Continuous) Map(x float64) float64 {
	t0, t1 := s.forward(s.d0), s.forward(s.d1)
	if t0 == t1 || math.IsNaN(t0) || math.IsNaN(t1) {
		return (s.r0 + s.r1) / 2
	}
	t := (s.forward(x) - t0) / (t1 - t0)
	if s.clamp {
		t = math.Max(0, math.Min(1, t))
	}
	return s.r0 + t*(s.r1-s.r0)
}

// Invert returns the domain value for range value y.
func (s *Continuous) Invert(y float64) float64 {
	if s.r0 == s.r1 {
		return s.d0
	}
	t := (y - s.r0) / (s.r1 - s.r0)
	if s.clamp {
		t = math.Max(0, math.Min(1, t))
	}
	t0, t1 := s.forward(s.d0), s.forward(s.d1)
	return s.inverse(t0 + t*(t1-t0))
}

// Ticks returns at most n round values spanning the domain.
func (s *Continuous) Ticks(n int) []float64 {
	lo, hi := s.d0, s.d1
	if lo > hi {
		lo, hi = hi, lo
	}
	if s.kind == logarithmic {
		return logTicks(lo, hi, s.base, n)
	}
	return linearTicks(lo, hi, n)
}

// Nice extends the domain outwards to round tick boundaries for n ticks.
// Log scales are extended to whole powers of the base.
func (s *Continuous) Nice(n int) *Continuous {
	if s.kind == logarithmic {
		lo, hi := s.d0, s.d1
		reversed := lo > hi
		if reversed {
			lo, hi = hi, lo
		}
		if lo < 0 {
			// Negative domains grow outwards by magnitude.
			lo, hi = niceLog(lo, s.base, math.Ceil), niceLog(hi, s.base, math.Floor)
		} else {
			lo, hi = niceLog(lo, s.base, math.Floor), niceLog(hi, s.base, math.Ceil)
		}
		if reversed {
			lo, hi = hi, lo
		}
		s.d0, s.d1 = lo, hi
		return s
	}
	s.d0, s.d1 = niceLinear(s.d0, s.d1, n)
	return s
}

func (s *Continuous) forward(x float64) float64 {
	switch s.kind {
	case logarithmic:
		if s.d0 < 0 {
			return -math.Log(-x) / math.Log(s.base)
		}
		return math.Log(x) / math.Log(s.base)
	case power:
		if x < 0 {
			return -math.Pow(-x, s.exponent)
		}
		return math.Pow(x, s.exponent)
	}
	return x
}

func (s *Continuous) inverse(t float64) float64 {
	switch s.kind {
	case logarithmic:
		if s.d0 < 0 {
			return -math.Pow(s.base, -t)
		}
		return math.Pow(s.base, t)
	case power:
		if t < 0 {
			return -math.Pow(-t, 1/s.exponent)
		}
		return math.Pow(t, 1/s.exponent)
	}
	return t
}

func niceLog(x, base float64, round func(float64) float64) float64 {
	if x == 0 {
		return x
	}
	sign := 1.0
	if x < 0 {
		sign, x = -1, -x
	}
	return sign * math.Pow(base, round(math.Log(x)/math.Log(base)))
}
