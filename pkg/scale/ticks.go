package scale

import (
	"math"

	mscale "github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"
)

// Tick levels enumerate the 1-2-5 sequence: level 3k is 10^k, level 3k+1 is
// 2·10^k and level 3k+2 is 5·10^k. Higher levels space ticks further apart.
var mantissas = [3]float64{1, 2, 5}

func splitLevel(level int) (mant float64, exp int) {
	exp = level / 3
	m := level % 3
	if m < 0 {
		m += 3
		exp--
	}
	return mantissas[m], exp
}

// tickAt returns the i-th multiple of the level step without accumulating
// floating point error for fractional steps.
func tickAt(i float64, level int) float64 {
	mant, exp := splitLevel(level)
	if exp >= 0 {
		return i * mant * math.Pow(10, float64(exp))
	}
	return i * mant / math.Pow(10, float64(-exp))
}

func levelStep(level int) float64 {
	return tickAt(1, level)
}

func levelBounds(lo, hi float64, level int) (first, last float64) {
	step := levelStep(level)
	return math.Ceil(lo/step - 1e-9), math.Floor(hi/step + 1e-9)
}

// guessLevel estimates the level whose step divides [lo, hi] into about n parts.
func guessLevel(lo, hi float64, n int) int {
	span := (hi - lo) / float64(max(n, 1))
	if span <= 0 {
		return 0
	}
	return int(math.Floor(math.Log10(span) * 3))
}

// findLevel returns the densest tick level producing at most n ticks in
// [lo, hi].
func findLevel(lo, hi float64, n int) (int, bool) {
	count := func(level int) int {
		first, last := levelBounds(lo, hi, level)
		return int(last-first) + 1
	}
	ticks := func(level int) []float64 {
		return levelTicks(lo, hi, level)
	}
	guess := guessLevel(lo, hi, n)
	opts := mscale.TickOptions{Max: n, MinLevel: guess - 30, MaxLevel: guess + 30}
	return opts.FindLevel(count, ticks, guess)
}

func levelTicks(lo, hi float64, level int) []float64 {
	first, last := levelBounds(lo, hi, level)
	if last < first {
		return nil
	}
	out := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		out = append(out, tickAt(i, level))
	}
	return out
}

// linearTicks returns at most n round values within [lo, hi].
func linearTicks(lo, hi float64, n int) []float64 {
	if n <= 0 || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}
	level, ok := findLevel(lo, hi, n)
	if !ok {
		return []float64{lo, hi}
	}
	return levelTicks(lo, hi, level)
}

// niceLinear extends [d0, d1] to multiples of the tick step for n ticks.
// Reversed domains stay reversed.
func niceLinear(d0, d1 float64, n int) (float64, float64) {
	lo, hi := d0, d1
	reversed := lo > hi
	if reversed {
		lo, hi = hi, lo
	}
	if lo == hi || n <= 0 {
		return d0, d1
	}
	// Extending the domain can push the count over n at the chosen level,
	// so re-run the search once on the widened interval.
	for range 2 {
		level, ok := findLevel(lo, hi, n)
		if !ok {
			break
		}
		step := levelStep(level)
		lo, hi = math.Floor(lo/step)*step, math.Ceil(hi/step)*step
	}
	if reversed {
		return hi, lo
	}
	return lo, hi
}

// logTicks returns the powers of base within [lo, hi] (positive domains),
// adding the intermediate integer multiples when they fit within n ticks.
// Falls back to linear ticks for domains within a single decade.
func logTicks(lo, hi, base float64, n int) []float64 {
	if n <= 0 || lo <= 0 {
		return linearTicks(lo, hi, n)
	}
	lb := math.Log(base)
	i, j := math.Floor(math.Log(lo)/lb+1e-9), math.Ceil(math.Log(hi)/lb-1e-9)
	if j-i < 1 {
		return linearTicks(lo, hi, n)
	}
	var out []float64
	dense := (j-i)*(base-1)+1 <= float64(n)
	for k := i; k <= j; k++ {
		p := math.Pow(base, k)
		if !dense {
			if p >= lo && p <= hi {
				out = append(out, p)
			}
			continue
		}
		for m := 1.0; m < base; m++ {
			v := p * m
			if v >= lo && v <= hi {
				out = append(out, v)
			}
		}
	}
	return out
}

// Extent returns the minimum and maximum of xs, ignoring NaNs.
// ok is false when xs holds no numbers.
func Extent(xs []float64) (lo, hi float64, ok bool) {
	clean := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			clean = append(clean, x)
		}
	}
	if len(clean) == 0 {
		return 0, 0, false
	}
	lo, hi = stats.Bounds(clean)
	return lo, hi, true
}

// PadDomain widens [lo, hi] multiplicatively by factor (e.g. 1.005): the
// lower bound is divided and the upper bound multiplied. This keeps a line
// off the plot edges without changing the axis's zero.
func PadDomain(lo, hi, factor float64) (float64, float64) {
	if factor <= 0 {
		return lo, hi
	}
	return lo / factor, hi * factor
}
