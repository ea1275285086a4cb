package sink

import (
	"encoding/json"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/scene"
)

// JSONOption configures JSON rendering via [JSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	keys   bool
}

// WithJSONIndent pretty-prints the document.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONKeys includes the data join key of every bound element.
func WithJSONKeys() JSONOption { return func(r *jsonRenderer) { r.keys = true } }

// Node is one element of a JSON scene dump.
type Node struct {
	Tag      string            `json:"tag"`
	Key      string            `json:"key,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Order    []string          `json:"order,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// JSON exports the scene tree rooted at root. Attribute names are listed
// in Order so consumers can rebuild the tree with stable output.
func JSON(root *scene.Element, opts ...JSONOption) ([]byte, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "json: nil scene")
	}
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := r.node(root)
	var (
		data []byte
		err  error
	)
	if r.indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return data, nil
}

func (r jsonRenderer) node(el *scene.Element) Node {
	n := Node{Tag: el.Tag, Text: el.Text}
	if r.keys {
		n.Key = el.Key
	}
	if attrs := el.Attrs(); len(attrs) > 0 {
		n.Attrs = make(map[string]string, len(attrs))
		for _, a := range attrs {
			n.Attrs[a.Name] = a.Value
			n.Order = append(n.Order, a.Name)
		}
	}
	for _, c := range el.Children {
		n.Children = append(n.Children, r.node(c))
	}
	return n
}

// Scene rebuilds a scene tree from a JSON dump.
func Scene(data []byte) (*scene.Element, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode scene")
	}
	if n.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode scene: root has no tag")
	}
	root := scene.New(n.Tag)
	build(root, n)
	return root, nil
}

func build(el *scene.Element, n Node) {
	el.Key, el.Text = n.Key, n.Text
	for _, name := range n.Order {
		el.SetAttr(name, n.Attrs[name])
	}
	for _, c := range n.Children {
		build(el.Append(c.Tag), c)
	}
}
