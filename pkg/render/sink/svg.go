package sink

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	svg "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/transition"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	canvas *svg.SVG
	title  string

	now      time.Duration
	tweens   map[*scene.Element][]*transition.Tween
	removals map[*scene.Element]time.Duration
	ids      map[*scene.Element]string
}

// WithAnimation exports the pending tweens and removals of s as SMIL
// animations that start when the document loads.
func WithAnimation(s *transition.Scheduler) SVGOption {
	return func(r *svgRenderer) {
		r.now = s.Now()
		for _, tw := range s.Pending() {
			r.tweens[tw.El] = append(r.tweens[tw.El], tw)
		}
		for _, rm := range s.PendingRemovals() {
			r.removals[rm.El] = rm.At
		}
	}
}

// WithTitle adds a document <title>.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// SVG writes the scene rooted at root, which must be an <svg> element.
func SVG(w io.Writer, root *scene.Element, opts ...SVGOption) error {
	if root == nil || root.Tag != "svg" {
		return errors.New(errors.ErrCodeInvalidInput, "svg: root must be an <svg> element")
	}
	ew := &errWriter{w: w}
	r := newSVGRenderer(ew, opts...)

	// The xmlns declarations come from svgo.
	r.canvas.Startraw(r.attrs(root, "xmlns", "xmlns:xlink")...)
	if r.title != "" {
		r.canvas.Title(r.title)
	}
	r.children(root)
	r.canvas.End()

	if ew.err != nil {
		return errors.Wrap(errors.ErrCodeInternal, ew.err, "write svg")
	}
	return nil
}

func newSVGRenderer(w io.Writer, opts ...SVGOption) *svgRenderer {
	r := &svgRenderer{
		canvas:   svg.New(w),
		tweens:   make(map[*scene.Element][]*transition.Tween),
		removals: make(map[*scene.Element]time.Duration),
		ids:      make(map[*scene.Element]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *svgRenderer) animated(el *scene.Element) bool {
	_, removing := r.removals[el]
	return removing || len(r.tweens[el]) > 0
}

func (r *svgRenderer) children(el *scene.Element) {
	for _, c := range el.Children {
		r.element(c)
	}
}

func (r *svgRenderer) element(el *scene.Element) {
	switch {
	case el.Tag == "g":
		r.canvas.Group(r.attrs(el)...)
		r.animations(el)
		r.children(el)
		r.canvas.Gend()
	case el.Tag == "path" && len(el.Children) == 0 && !r.animated(el):
		d, _ := el.Attr("d")
		r.canvas.Path(d, r.attrs(el, "d")...)
	case el.Tag == "title":
		r.canvas.Title(el.Text)
	default:
		r.generic(el)
	}
}

// generic writes any other element, with its text, animations and
// children.
func (r *svgRenderer) generic(el *scene.Element) {
	w := r.canvas.Writer
	open := "<" + el.Tag
	if attrs := r.attrs(el); len(attrs) > 0 {
		open += " " + strings.Join(attrs, " ")
	}
	if el.Text == "" && len(el.Children) == 0 && !r.animated(el) {
		fmt.Fprintln(w, open+"/>")
		return
	}
	fmt.Fprint(w, open+">")
	xml.EscapeText(w, []byte(el.Text))
	if len(el.Children) > 0 || r.animated(el) {
		fmt.Fprintln(w)
	}
	r.animations(el)
	r.children(el)
	fmt.Fprintf(w, "</%s>\n", el.Tag)
}

// attrs formats the attributes of el as name="value" pairs, leaving out
// skip. Animated elements get an id if they have none.
func (r *svgRenderer) attrs(el *scene.Element, skip ...string) []string {
	var out []string
	for _, a := range el.Attrs() {
		if slices.Contains(skip, a.Name) {
			continue
		}
		out = append(out, attr(a.Name, a.Value))
	}
	if _, ok := el.Attr("id"); !ok && r.animated(el) {
		out = append(out, attr("id", r.id(el)))
	}
	return out
}

func (r *svgRenderer) id(el *scene.Element) string {
	if v, ok := el.Attr("id"); ok {
		return v
	}
	if v, ok := r.ids[el]; ok {
		return v
	}
	v := "vz-" + strconv.Itoa(len(r.ids)+1)
	r.ids[el] = v
	return v
}

// animations writes one SMIL element per pending tween of el, and a <set>
// hiding it when a removal is due.
func (r *svgRenderer) animations(el *scene.Element) {
	if !r.animated(el) {
		return
	}
	link := "#" + r.id(el)
	w := r.canvas.Writer
	for _, tw := range r.tweens[el] {
		timing := []string{attr("begin", seconds(tw.Start-r.now)), `fill="freeze"`}
		dur := tw.Duration.Seconds()
		if tw.Name == "transform" {
			if kind, from, to, ok := transformArgs(tw.From, tw.To); ok {
				r.canvas.AnimateTransform(link, kind, from, to, dur, 1, timing...)
				continue
			}
		}
		from, errFrom := strconv.ParseFloat(tw.From, 64)
		to, errTo := strconv.ParseFloat(tw.To, 64)
		if errFrom == nil && errTo == nil {
			r.canvas.Animate(link, tw.Name, from, to, dur, 1, timing...)
			continue
		}
		fmt.Fprintf(w, "<animate %s %s %s %s dur=\"%gs\" repeatCount=\"1\" %s/>\n",
			attr("xlink:href", link), attr("attributeName", tw.Name),
			attr("from", tw.From), attr("to", tw.To), dur, strings.Join(timing, " "))
	}
	if at, ok := r.removals[el]; ok {
		fmt.Fprintf(w, "<set %s attributeName=\"visibility\" to=\"hidden\" %s fill=\"freeze\"/>\n",
			attr("xlink:href", link), attr("begin", seconds(at-r.now)))
	}
}

var transformRe = regexp.MustCompile(`^\s*(translate|rotate|scale)\(([^)]*)\)\s*$`)

// transformArgs splits two single-function transforms of the same kind
// into the type and argument lists animateTransform expects.
func transformArgs(from, to string) (kind, a, b string, ok bool) {
	mf, mt := transformRe.FindStringSubmatch(from), transformRe.FindStringSubmatch(to)
	if mf == nil || mt == nil || mf[1] != mt[1] {
		return "", "", "", false
	}
	args := strings.NewReplacer(",", " ")
	return mf[1], args.Replace(mf[2]), args.Replace(mt[2]), true
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(max(0, d.Seconds()), 'g', -1, 64) + "s"
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func attr(name, value string) string {
	return name + `="` + attrEscaper.Replace(value) + `"`
}

// errWriter remembers the first write error; svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
