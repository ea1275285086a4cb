package scale

// Ordinal maps categories to values of a discrete range. Unknown keys are
// added to the domain on first lookup (implicit domain growth) and the range
// is reused cyclically once exhausted.
type Ordinal[T any] struct {
	domain  []string
	index   map[string]int
	rng     []T
	unknown *T
}

// NewOrdinal returns an ordinal scale over rng.
func NewOrdinal[T any](rng ...T) *Ordinal[T] {
	return &Ordinal[T]{index: map[string]int{}, rng: rng}
}

// SetDomain replaces the domain. Duplicates keep their first position.
func (o *Ordinal[T]) SetDomain(keys ...string) *Ordinal[T] {
	o.domain = nil
	o.index = make(map[string]int, len(keys))
	for _, k := range keys {
		o.add(k)
	}
	return o
}

// SetRange replaces the output values.
func (o *Ordinal[T]) SetRange(rng ...T) *Ordinal[T] {
	o.rng = rng
	return o
}

// SetUnknown disables implicit growth: unknown keys map to v instead.
func (o *Ordinal[T]) SetUnknown(v T) *Ordinal[T] {
	o.unknown = &v
	return o
}

// Domain returns the categories seen so far, in insertion order.
func (o *Ordinal[T]) Domain() []string { return append([]string(nil), o.domain...) }

// Range returns the output values.
func (o *Ordinal[T]) Range() []T { return append([]T(nil), o.rng...) }

// Map returns the range value for key. An empty range yields the zero value.
func (o *Ordinal[T]) Map(key string) T {
	i, ok := o.index[key]
	if !ok {
		if o.unknown != nil {
			return *o.unknown
		}
		i = o.add(key)
	}
	var zero T
	if len(o.rng) == 0 {
		return zero
	}
	return o.rng[i%len(o.rng)]
}

func (o *Ordinal[T]) add(key string) int {
	if i, ok := o.index[key]; ok {
		return i
	}
	i := len(o.domain)
	o.index[key] = i
	o.domain = append(o.domain, key)
	return i
}
