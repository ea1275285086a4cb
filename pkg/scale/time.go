package scale

import (
	"math"
	"time"
)

// Time is a linear scale over instants. Domain values are mapped through
// their Unix millisecond timestamps, so daylight-saving and leap seconds do
// not distort spacing.
type Time struct {
	lin *Continuous
}

// NewTime returns a time scale with an empty domain and range [0, 1].
func NewTime() *Time {
	return &Time{lin: NewLinear()}
}

// SetDomain sets the input interval.
func (s *Time) SetDomain(t0, t1 time.Time) *Time {
	s.lin.SetDomain(float64(t0.UnixMilli()), float64(t1.UnixMilli()))
	return s
}

// SetRange sets the output interval.
func (s *Time) SetRange(r0, r1 float64) *Time {
	s.lin.SetRange(r0, r1)
	return s
}

// SetClamp enables or disables clamping of Map output to the range.
func (s *Time) SetClamp(clamp bool) *Time {
	s.lin.SetClamp(clamp)
	return s
}

// Domain returns the input interval in UTC.
func (s *Time) Domain() (time.Time, time.Time) {
	d0, d1 := s.lin.Domain()
	return fromMillis(d0), fromMillis(d1)
}

// Range returns the output interval.
func (s *Time) Range() (float64, float64) { return s.lin.Range() }

// Copy returns an independent copy of s.
func (s *Time) Copy() *Time { return &Time{lin: s.lin.Copy()} }

// Map returns the range value for t.
func (s *Time) Map(t time.Time) float64 {
	return s.lin.Map(float64(t.UnixMilli()))
}

// Invert returns the instant for range value y, truncated to milliseconds.
func (s *Time) Invert(y float64) time.Time {
	return fromMillis(s.lin.Invert(y))
}

// Ticks returns at most n calendar-aligned instants within the domain, using
// the finest interval that keeps the count within n.
func (s *Time) Ticks(n int) []time.Time {
	lo, hi := s.Domain()
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	if n <= 0 {
		return nil
	}
	if lo.Equal(hi) {
		return []time.Time{lo}
	}
	for _, iv := range tickIntervals {
		if iv.count(lo, hi) <= n {
			return iv.Range(lo, hi)
		}
	}
	// Spans too long for fixed year steps fall back to round year numbers.
	years := linearTicks(float64(lo.Year()), float64(hi.Year()), n)
	out := make([]time.Time, 0, len(years))
	for _, y := range years {
		t := time.Date(int(y), time.January, 1, 0, 0, 0, 0, time.UTC)
		if !t.Before(lo) && !t.After(hi) {
			out = append(out, t)
		}
	}
	return out
}

// TicksEvery returns the instants of iv within the domain, e.g. every six
// months or every twenty years.
func (s *Time) TicksEvery(iv Interval) []time.Time {
	lo, hi := s.Domain()
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	return iv.Range(lo, hi)
}

// Nice extends the domain outwards to boundaries of the interval chosen for
// n ticks.
func (s *Time) Nice(n int) *Time {
	lo, hi := s.Domain()
	reversed := hi.Before(lo)
	if reversed {
		lo, hi = hi, lo
	}
	for _, iv := range tickIntervals {
		if iv.count(lo, hi) <= n {
			lo = iv.Floor(lo)
			if c := iv.Floor(hi); !c.Equal(hi) {
				hi = iv.Offset(c, 1)
			}
			break
		}
	}
	if reversed {
		lo, hi = hi, lo
	}
	return s.SetDomain(lo, hi)
}

func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}

// Unit is a calendar unit for time intervals.
type Unit int

const (
	Millisecond Unit = iota
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

// Interval is a step of Step units. Day and coarser intervals are aligned in
// UTC.
type Interval struct {
	Unit Unit
	Step int
}

// Every returns an interval of step units.
func Every(step int, unit Unit) Interval {
	return Interval{Unit: unit, Step: max(step, 1)}
}

var tickIntervals = []Interval{
	{Second, 1}, {Second, 5}, {Second, 15}, {Second, 30},
	{Minute, 1}, {Minute, 5}, {Minute, 15}, {Minute, 30},
	{Hour, 1}, {Hour, 3}, {Hour, 6}, {Hour, 12},
	{Day, 1}, {Day, 2}, {Week, 1},
	{Month, 1}, {Month, 3}, {Month, 6},
	{Year, 1}, {Year, 2}, {Year, 5}, {Year, 10}, {Year, 20}, {Year, 50}, {Year, 100},
}

// Floor rounds t down to the nearest interval boundary.
func (iv Interval) Floor(t time.Time) time.Time {
	t = t.UTC()
	step := max(iv.Step, 1)
	switch iv.Unit {
	case Millisecond, Second, Minute, Hour:
		d := iv.duration()
		return t.Truncate(d)
	case Day:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// Multi-day steps count from the first of the month.
		return d.AddDate(0, 0, -((d.Day() - 1) % step))
	case Week:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 0, -int(d.Weekday()))
	case Month:
		m := (int(t.Month()) - 1) / step * step
		return time.Date(t.Year(), time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
	case Year:
		y := int(math.Floor(float64(t.Year())/float64(step))) * step
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// Offset advances t by k steps.
func (iv Interval) Offset(t time.Time, k int) time.Time {
	step := max(iv.Step, 1) * k
	switch iv.Unit {
	case Day:
		return t.AddDate(0, 0, step)
	case Week:
		return t.AddDate(0, 0, 7*step)
	case Month:
		return t.AddDate(0, step, 0)
	case Year:
		return t.AddDate(step, 0, 0)
	}
	return t.Add(iv.duration() * time.Duration(k))
}

// Range returns the interval boundaries in [lo, hi].
func (iv Interval) Range(lo, hi time.Time) []time.Time {
	var out []time.Time
	t := iv.Floor(lo)
	if t.Before(lo) {
		t = iv.Offset(t, 1)
	}
	for ; !t.After(hi); t = iv.Offset(t, 1) {
		out = append(out, t)
	}
	return out
}

// count estimates the number of boundaries in [lo, hi] without allocating.
func (iv Interval) count(lo, hi time.Time) int {
	var span float64
	switch iv.Unit {
	case Month:
		span = float64((hi.Year()-lo.Year())*12+int(hi.Month())-int(lo.Month())) + 1
	case Year:
		span = float64(hi.Year()-lo.Year()) + 1
	default:
		return int(hi.Sub(lo)/iv.duration()) + 1
	}
	return int(math.Ceil(span / float64(max(iv.Step, 1))))
}

func (iv Interval) duration() time.Duration {
	step := time.Duration(max(iv.Step, 1))
	switch iv.Unit {
	case Second:
		return step * time.Second
	case Minute:
		return step * time.Minute
	case Hour:
		return step * time.Hour
	case Day:
		return step * 24 * time.Hour
	case Week:
		return step * 7 * 24 * time.Hour
	}
	return step * time.Millisecond
}
