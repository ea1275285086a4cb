package shape

// StackPoint is one datum's extent within a stacked series.
type StackPoint[D any] struct {
	Y0, Y1 float64
	Data   D
}

// Series is the stacked layer for one key.
type Series[D any] struct {
	Key    string
	Index  int
	Points []StackPoint[D]
}

// Stack layers the values of keys on top of each other in key order, with
// the first key on the zero baseline. Negative values stack downwards from
// zero so positive and negative layers never overlap.
type Stack[D any] struct {
	Keys  []string
	Value func(d D, key string) float64
}

// Series computes one series per key.
func (s Stack[D]) Series(data []D) []Series[D] {
	out := make([]Series[D], len(s.Keys))
	pos := make([]float64, len(data))
	neg := make([]float64, len(data))
	for k, key := range s.Keys {
		ser := Series[D]{Key: key, Index: k, Points: make([]StackPoint[D], len(data))}
		for i, d := range data {
			v := s.Value(d, key)
			if v != v {
				v = 0
			}
			if v >= 0 {
				ser.Points[i] = StackPoint[D]{Y0: pos[i], Y1: pos[i] + v, Data: d}
				pos[i] += v
			} else {
				ser.Points[i] = StackPoint[D]{Y0: neg[i], Y1: neg[i] + v, Data: d}
				neg[i] += v
			}
		}
		out[k] = ser
	}
	return out
}

// Max returns the largest topline across all series, or 0.
func Max[D any](series []Series[D]) float64 {
	var m float64
	for _, s := range series {
		for _, p := range s.Points {
			m = max(m, p.Y1)
		}
	}
	return m
}
