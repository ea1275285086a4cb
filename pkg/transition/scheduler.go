// Package transition animates scene attributes over a logical clock.
//
// A [Scheduler] owns every in-flight tween of a chart. Charts open a
// [Transition] per update, schedule attribute targets on it and the scheduler
// interpolates them as the clock advances. Time never moves on its own: the
// interactive front ends call [Scheduler.Advance] from their frame ticker,
// and batch renders either call [Scheduler.Flush] to land on final values or
// export [Scheduler.Pending] as SMIL animations.
//
// A newer tween on the same element and attribute interrupts the older one:
// the new tween starts from whatever value the attribute holds at scheduling
// time, so last write wins and nothing queues. Scheduling any tween on an
// element with a pending removal from an older transition cancels the
// removal, which is how an exiting element is revived when its key comes
// back.
//
// A nil *Transition is valid and applies every operation immediately.
package transition

import (
	"slices"
	"time"

	"github.com/matzehuels/vizlab/pkg/scene"
)

// DefaultDuration is the duration charts use for update transitions.
const DefaultDuration = 750 * time.Millisecond

// Tween is one scheduled attribute animation.
type Tween struct {
	El       *scene.Element
	Name     string
	From, To string
	Start    time.Duration
	Duration time.Duration
	Ease     Easing

	interp Interpolator
	trID   int
	seq    int
}

// End returns the clock time at which the tween lands.
func (tw *Tween) End() time.Duration { return tw.Start + tw.Duration }

// Progress returns the eased progress at clock time now.
func (tw *Tween) Progress(now time.Duration) float64 {
	if tw.Duration <= 0 || now >= tw.End() {
		return 1
	}
	if now <= tw.Start {
		return 0
	}
	return tw.Ease(float64(now-tw.Start) / float64(tw.Duration))
}

// Removal is a scheduled element removal.
type Removal struct {
	El *scene.Element
	At time.Duration

	trID int
}

type tweenKey struct {
	el   *scene.Element
	name string
}

// Scheduler runs tweens against a logical clock. It is not safe for
// concurrent use; the interaction controller serialises access.
type Scheduler struct {
	now      time.Duration
	tweens   map[tweenKey]*Tween
	removals map[*scene.Element]*Removal
	nextTr   int
	nextSeq  int
}

// NewScheduler returns a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tweens:   make(map[tweenKey]*Tween),
		removals: make(map[*scene.Element]*Removal),
	}
}

// Now returns the logical clock.
func (s *Scheduler) Now() time.Duration { return s.now }

// Transition opens a transition starting now.
func (s *Scheduler) Transition(d time.Duration) *Transition {
	s.nextTr++
	return &Transition{s: s, id: s.nextTr, start: s.now, duration: d, ease: CubicInOut}
}

// Advance moves the clock forward by dt and applies every tween and removal
// due by then.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	s.now += dt
	s.apply()
}

// Flush jumps to the end of every scheduled tween and removal.
func (s *Scheduler) Flush() {
	end := s.now
	for _, tw := range s.tweens {
		end = max(end, tw.End())
	}
	for _, r := range s.removals {
		end = max(end, r.At)
	}
	s.now = end
	s.apply()
}

// Active returns the number of outstanding tweens and removals.
func (s *Scheduler) Active() int { return len(s.tweens) + len(s.removals) }

// Pending returns the outstanding tweens ordered by scheduling sequence.
func (s *Scheduler) Pending() []*Tween {
	out := make([]*Tween, 0, len(s.tweens))
	for _, tw := range s.tweens {
		out = append(out, tw)
	}
	slices.SortFunc(out, func(a, b *Tween) int { return a.seq - b.seq })
	return out
}

// PendingRemovals returns the scheduled removals ordered by time.
func (s *Scheduler) PendingRemovals() []Removal {
	out := make([]Removal, 0, len(s.removals))
	for _, r := range s.removals {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b Removal) int {
		if a.At != b.At {
			return int(a.At - b.At)
		}
		return a.trID - b.trID
	})
	return out
}

// Removing reports whether el has a pending removal.
func (s *Scheduler) Removing(el *scene.Element) bool {
	_, ok := s.removals[el]
	return ok
}

// Interrupt cancels every tween and pending removal on el, leaving its
// attributes at their current values.
func (s *Scheduler) Interrupt(el *scene.Element) {
	for k := range s.tweens {
		if k.el == el {
			delete(s.tweens, k)
		}
	}
	delete(s.removals, el)
}

func (s *Scheduler) apply() {
	for _, tw := range s.Pending() {
		if s.now < tw.Start {
			continue
		}
		tw.El.SetAttr(tw.Name, tw.interp(tw.Progress(s.now)))
		if s.now >= tw.End() {
			delete(s.tweens, tweenKey{tw.El, tw.Name})
		}
	}
	for _, r := range s.PendingRemovals() {
		if s.now < r.At {
			continue
		}
		r.El.Remove()
		delete(s.removals, r.El)
		s.dropTweens(r.El)
	}
}

// dropTweens discards tweens on el and its descendants.
func (s *Scheduler) dropTweens(el *scene.Element) {
	el.Walk(func(n *scene.Element, _ int) bool {
		for k := range s.tweens {
			if k.el == n {
				delete(s.tweens, k)
			}
		}
		delete(s.removals, n)
		return true
	})
}

// Transition is a batch of tweens sharing timing. The zero delay starts at
// the scheduler time the transition was opened.
type Transition struct {
	s        *Scheduler
	id       int
	start    time.Duration
	delay    time.Duration
	duration time.Duration
	ease     Easing
}

// Delay sets the delay applied to subsequently scheduled tweens.
func (tr *Transition) Delay(d time.Duration) *Transition {
	if tr != nil {
		tr.delay = d
	}
	return tr
}

// Ease sets the easing for subsequently scheduled tweens.
func (tr *Transition) Ease(e Easing) *Transition {
	if tr != nil && e != nil {
		tr.ease = e
	}
	return tr
}

// Scheduler returns the scheduler that owns tr; nil for a nil transition.
func (tr *Transition) Scheduler() *Scheduler {
	if tr == nil {
		return nil
	}
	return tr.s
}

// Duration returns the transition duration; zero for a nil transition.
func (tr *Transition) Duration() time.Duration {
	if tr == nil {
		return 0
	}
	return tr.duration
}

// End returns the clock time at which tweens scheduled now will land.
func (tr *Transition) End() time.Duration {
	if tr == nil {
		return 0
	}
	return tr.start + tr.delay + tr.duration
}

// Attr schedules el's attribute to move to target. The start value is the
// attribute's value now; an unset attribute jumps to target.
func (tr *Transition) Attr(el *scene.Element, name, target string) {
	if tr == nil {
		el.SetAttr(name, target)
		return
	}
	s := tr.s
	if r, ok := s.removals[el]; ok && r.trID < tr.id {
		delete(s.removals, el)
	}
	from, ok := el.Attr(name)
	key := tweenKey{el, name}
	if !ok || from == target || (tr.duration <= 0 && tr.delay <= 0) {
		delete(s.tweens, key)
		el.SetAttr(name, target)
		return
	}
	s.nextSeq++
	s.tweens[key] = &Tween{
		El:       el,
		Name:     name,
		From:     from,
		To:       target,
		Start:    tr.start + tr.delay,
		Duration: tr.duration,
		Ease:     tr.ease,
		interp:   Interpolate(from, target),
		trID:     tr.id,
		seq:      s.nextSeq,
	}
}

// AttrNum schedules a numeric attribute.
func (tr *Transition) AttrNum(el *scene.Element, name string, v float64) {
	tr.Attr(el, name, scene.FormatNum(v))
}

// Remove schedules el for removal when the transition ends.
func (tr *Transition) Remove(el *scene.Element) {
	if tr == nil || tr.End() <= tr.s.now {
		if tr != nil {
			tr.s.dropTweens(el)
		}
		el.Remove()
		return
	}
	tr.s.removals[el] = &Removal{El: el, At: tr.End(), trID: tr.id}
}
