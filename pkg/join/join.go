// Package join reconciles keyed data with scene elements.
//
// Every chart update runs the same cycle: select the keyed elements under a
// parent, bind the new data by key, and partition the result into enter
// (new keys), update (keys present before and after) and exit (keys that
// vanished). [Join.Apply] then creates entering elements after the existing
// ones, runs the shared final-state handler for enter and update alike, and
// schedules exiting elements for removal at the end of the transition.
//
// Existing elements are never reordered: data order only decides the draw
// order of newly created elements. When new data repeats a key, the first
// occurrence is bound and the rest are reported in [Join.Duplicates].
package join

import (
	"slices"

	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
)

// Result is the three-way partition of two key lists.
type Result[K comparable] struct {
	Enter  []K
	Update []K
	Exit   []K
}

// Diff partitions keys by presence in prev and next. Enter and Update follow
// next's order, Exit follows prev's order. Repeated keys count once.
func Diff[K comparable](prev, next []K) Result[K] {
	before := make(map[K]bool, len(prev))
	for _, k := range prev {
		before[k] = true
	}
	var r Result[K]
	seen := make(map[K]bool, len(next))
	for _, k := range next {
		if seen[k] {
			continue
		}
		seen[k] = true
		if before[k] {
			r.Update = append(r.Update, k)
		} else {
			r.Enter = append(r.Enter, k)
		}
	}
	gone := make(map[K]bool)
	for _, k := range prev {
		if !seen[k] && !gone[k] {
			gone[k] = true
			r.Exit = append(r.Exit, k)
		}
	}
	return r
}

// KeyFunc derives the join key of a datum.
type KeyFunc[D any] func(d D, i int) string

// Selection is the set of keyed elements under a parent matching a tag and
// optional class.
type Selection[D any] struct {
	parent *scene.Element
	tag    string
	class  string
	sched  *transition.Scheduler
}

// Select returns the selection of parent's keyed children matching selector
// ("tag" or "tag.class"; entering elements default to "g" when the tag is
// omitted). Elements with a pending removal on sched are
// treated as already exiting; sched may be nil.
func Select[D any](parent *scene.Element, selector string, sched *transition.Scheduler) *Selection[D] {
	tag, class := splitSelector(selector)
	return &Selection[D]{parent: parent, tag: tag, class: class, sched: sched}
}

func splitSelector(sel string) (tag, class string) {
	for i := 0; i < len(sel); i++ {
		if sel[i] == '.' {
			return sel[:i], sel[i+1:]
		}
	}
	return sel, ""
}

// Elements returns the live bound elements in document order.
func (s *Selection[D]) Elements() []*scene.Element {
	var out []*scene.Element
	for _, c := range s.parent.Children {
		if c.Key == "" || !s.matches(c) {
			continue
		}
		if s.sched != nil && s.sched.Removing(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Keys returns the keys of the live bound elements in document order.
func (s *Selection[D]) Keys() []string {
	els := s.Elements()
	keys := make([]string, len(els))
	for i, el := range els {
		keys[i] = el.Key
	}
	return keys
}

func (s *Selection[D]) matches(el *scene.Element) bool {
	return (s.tag == "" || el.Tag == s.tag) && (s.class == "" || el.HasClass(s.class))
}

// Bound pairs an element with its datum and index in the new data.
type Bound[D any] struct {
	El    *scene.Element
	Key   string
	Datum D
	Index int
}

// Join is a selection partitioned against new data.
type Join[D any] struct {
	sel *Selection[D]

	// Enter holds data with new keys; El is nil until Apply.
	Enter []Bound[D]
	// Update holds existing elements whose key persists, in data order.
	Update []Bound[D]
	// Exit holds live elements whose key vanished, in document order.
	Exit []*scene.Element
	// Duplicates holds data whose key repeats an earlier datum.
	Duplicates []D
}

// Data binds data to the selection by key.
func (s *Selection[D]) Data(data []D, key KeyFunc[D]) *Join[D] {
	j := &Join[D]{sel: s}

	// Surplus elements sharing a key exit along with vanished keys.
	existing := make(map[string]*scene.Element)
	for _, el := range s.Elements() {
		if _, dup := existing[el.Key]; !dup {
			existing[el.Key] = el
		}
	}
	// Exiting elements come back to life when their key reappears.
	reviving := make(map[string]*scene.Element)
	if s.sched != nil {
		for _, c := range s.parent.Children {
			if c.Key != "" && s.matches(c) && s.sched.Removing(c) {
				if _, ok := reviving[c.Key]; !ok {
					reviving[c.Key] = c
				}
			}
		}
	}

	seen := make(map[string]bool, len(data))
	for i, d := range data {
		k := key(d, i)
		if seen[k] {
			j.Duplicates = append(j.Duplicates, d)
			continue
		}
		seen[k] = true
		if el, ok := existing[k]; ok {
			j.Update = append(j.Update, Bound[D]{El: el, Key: k, Datum: d, Index: i})
			continue
		}
		if el, ok := reviving[k]; ok {
			j.Update = append(j.Update, Bound[D]{El: el, Key: k, Datum: d, Index: i})
			continue
		}
		j.Enter = append(j.Enter, Bound[D]{Key: k, Datum: d, Index: i})
	}

	for _, el := range s.Elements() {
		if !seen[el.Key] || existing[el.Key] != el {
			j.Exit = append(j.Exit, el)
		}
	}
	return j
}

// Handlers are the per-partition effects of a join.
type Handlers[D any] struct {
	// Enter sets the initial state of a newly created element.
	Enter func(el *scene.Element, d D, i int)
	// Update sets the final state; it runs for entering and updating
	// elements alike.
	Update func(el *scene.Element, d D, i int, tr *transition.Transition)
	// Exit starts the exit effect; removal is scheduled by Apply.
	Exit func(el *scene.Element, tr *transition.Transition)
}

// Apply creates entering elements, runs the handlers and schedules exits for
// removal at the end of tr. It returns the merged enter and update elements
// in data order.
func (j *Join[D]) Apply(tr *transition.Transition, h Handlers[D]) []Bound[D] {
	s := j.sel
	for _, el := range j.Exit {
		if h.Exit != nil {
			h.Exit(el, tr)
		}
		tr.Remove(el)
	}

	for i := range j.Enter {
		b := &j.Enter[i]
		tag := s.tag
		if tag == "" {
			tag = "g"
		}
		b.El = s.parent.Append(tag)
		b.El.Key = b.Key
		if s.class != "" {
			b.El.SetClass(s.class)
		}
		if h.Enter != nil {
			h.Enter(b.El, b.Datum, b.Index)
		}
	}

	if s.sched != nil {
		for _, b := range j.Update {
			if s.sched.Removing(b.El) {
				s.sched.Interrupt(b.El)
			}
		}
	}

	merged := make([]Bound[D], 0, len(j.Enter)+len(j.Update))
	merged = append(merged, j.Enter...)
	merged = append(merged, j.Update...)
	slices.SortStableFunc(merged, func(a, b Bound[D]) int { return a.Index - b.Index })
	if h.Update != nil {
		for _, b := range merged {
			h.Update(b.El, b.Datum, b.Index, tr)
		}
	}
	return merged
}

