// Package scene provides the retained element tree that charts draw into.
//
// An [Element] mirrors an SVG node: a tag, ordered attributes, optional text
// and children. Charts never write output directly; they mutate the tree
// through joins and transitions, and sinks serialize it afterwards. Elements
// bound by a data join carry the join key in [Element.Key].
//
// Attributes keep their insertion order so serialized output is stable
// across runs.
package scene

import (
	"math"
	"strconv"
	"strings"
)

// Attr is a single name/value attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node in the scene tree.
type Element struct {
	Tag      string
	Key      string
	Text     string
	Children []*Element

	attrs  []Attr
	parent *Element
}

// New returns a detached element.
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// Append creates a child with tag after the existing children.
func (e *Element) Append(tag string) *Element {
	c := &Element{Tag: tag, parent: e}
	e.Children = append(e.Children, c)
	return c
}

// Insert creates a child with tag at index i (clamped to the child count).
func (e *Element) Insert(tag string, i int) *Element {
	i = max(0, min(i, len(e.Children)))
	c := &Element{Tag: tag, parent: e}
	e.Children = append(e.Children, nil)
	copy(e.Children[i+1:], e.Children[i:])
	e.Children[i] = c
	return c
}

// Adopt appends an existing element, detaching it from its previous parent.
func (e *Element) Adopt(c *Element) *Element {
	c.Remove()
	c.parent = e
	e.Children = append(e.Children, c)
	return c
}

// Parent returns the containing element, or nil for a root or removed node.
func (e *Element) Parent() *Element { return e.parent }

// Remove detaches e from its parent. Removing a detached element is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == e {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Attached reports whether e is still part of a tree rooted at root.
func (e *Element) Attached(root *Element) bool {
	for n := e; n != nil; n = n.parent {
		if n == root {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute, keeping the position of an existing one.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return e
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
	return e
}

// SetNum sets a numeric attribute formatted with FormatNum.
func (e *Element) SetNum(name string, v float64) *Element {
	return e.SetAttr(name, FormatNum(v))
}

// SetText replaces the text content.
func (e *Element) SetText(s string) *Element {
	e.Text = s
	return e
}

// SetClass sets the class attribute.
func (e *Element) SetClass(class string) *Element {
	return e.SetAttr("class", class)
}

// Attr returns the value of an attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Num returns a numeric attribute, or NaN when unset or not a number.
func (e *Element) Num(name string) float64 {
	v, ok := e.Attr(name)
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// DelAttr removes an attribute.
func (e *Element) DelAttr(name string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns the attributes in insertion order.
func (e *Element) Attrs() []Attr {
	return append([]Attr(nil), e.attrs...)
}

// HasClass reports whether class is one of e's space-separated classes.
func (e *Element) HasClass(class string) bool {
	v, _ := e.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// ByKey returns the direct child bound to key.
func (e *Element) ByKey(key string) *Element {
	for _, c := range e.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// Walk visits e and its descendants in document order. Returning false from
// fn skips the element's children.
func (e *Element) Walk(fn func(el *Element, depth int) bool) {
	e.walk(fn, 0)
}

func (e *Element) walk(fn func(*Element, int) bool, depth int) {
	if !fn(e, depth) {
		return
	}
	for _, c := range e.Children {
		c.walk(fn, depth+1)
	}
}

// Select returns the descendants of e (excluding e) matching selector.
// Selectors are "tag", ".class" or "tag.class".
func (e *Element) Select(selector string) []*Element {
	tag, class, _ := strings.Cut(selector, ".")
	var out []*Element
	for _, c := range e.Children {
		c.Walk(func(el *Element, _ int) bool {
			if (tag == "" || el.Tag == tag) && (class == "" || el.HasClass(class)) {
				out = append(out, el)
			}
			return true
		})
	}
	return out
}

// First returns the first descendant matching selector, or nil.
func (e *Element) First(selector string) *Element {
	if m := e.Select(selector); len(m) > 0 {
		return m[0]
	}
	return nil
}

// Find returns the descendants carrying class.
func (e *Element) Find(class string) []*Element {
	return e.Select("." + class)
}

// Count returns the number of descendants matching selector.
func (e *Element) Count(selector string) int {
	return len(e.Select(selector))
}

// Clone returns a deep copy of e detached from any parent.
func (e *Element) Clone() *Element {
	c := &Element{Tag: e.Tag, Key: e.Key, Text: e.Text, attrs: e.Attrs()}
	for _, ch := range e.Children {
		cc := ch.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// FormatNum formats v with at most three decimals and no trailing zeros.
func FormatNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Translate formats an SVG translate transform.
func Translate(x, y float64) string {
	return "translate(" + FormatNum(x) + "," + FormatNum(y) + ")"
}

// Rotate formats an SVG rotate transform in degrees.
func Rotate(deg float64) string {
	return "rotate(" + FormatNum(deg) + ")"
}
