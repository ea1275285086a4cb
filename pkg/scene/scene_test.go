package scene

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAttrOrderIsStable(t *testing.T) {
	e := New("rect")
	e.SetNum("x", 10).SetNum("y", 2.5).SetAttr("fill", "red").SetNum("x", 12)

	want := []Attr{{"x", "12"}, {"y", "2.5"}, {"fill", "red"}}
	if diff := cmp.Diff(want, e.Attrs()); diff != "" {
		t.Errorf("Attrs mismatch (-want +got):\n%s", diff)
	}
	if got := e.Num("y"); got != 2.5 {
		t.Errorf("Num(y) = %v, want 2.5", got)
	}
	if got := e.Num("missing"); !math.IsNaN(got) {
		t.Errorf("Num(missing) = %v, want NaN", got)
	}
}

func TestAppendInsertRemove(t *testing.T) {
	root := New("g")
	a := root.Append("rect")
	a.Key = "a"
	c := root.Append("rect")
	c.Key = "c"
	b := root.Insert("rect", 1)
	b.Key = "b"

	var keys []string
	for _, ch := range root.Children {
		keys = append(keys, ch.Key)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}

	b.Remove()
	if root.ByKey("b") != nil {
		t.Error("ByKey(b) after Remove is not nil")
	}
	if b.Parent() != nil {
		t.Error("removed element keeps its parent")
	}
	if !c.Attached(root) || b.Attached(root) {
		t.Error("Attached reports wrong membership")
	}
	b.Remove()
}

func TestSelect(t *testing.T) {
	root := New("svg")
	g := root.Append("g").SetClass("bars")
	g.Append("rect").SetClass("bar highlighted")
	g.Append("rect").SetClass("bar")
	g.Append("text").SetClass("label")

	tests := []struct {
		selector string
		want     int
	}{
		{"rect", 2},
		{".bar", 2},
		{"rect.highlighted", 1},
		{"text.bar", 0},
		{"g", 1},
	}
	for _, tt := range tests {
		if got := root.Count(tt.selector); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.selector, got, tt.want)
		}
	}
	if got := root.First(".label"); got == nil || got.Tag != "text" {
		t.Errorf("First(.label) = %v, want text element", got)
	}
}

func TestClone(t *testing.T) {
	root := New("g")
	root.Append("circle").SetNum("r", 4)
	c := root.Clone()
	c.Children[0].SetNum("r", 8)
	if got := root.Children[0].Num("r"); got != 4 {
		t.Errorf("original r = %v after clone mutation, want 4", got)
	}
	if c.Children[0].Parent() != c {
		t.Error("cloned child parent is not the clone")
	}
}

func TestFormatNum(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{1.23456, "1.235"},
		{-0.0001, "0"},
		{100, "100"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		if got := FormatNum(tt.v); got != tt.want {
			t.Errorf("FormatNum(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
	if got := Translate(10, 20.5); got != "translate(10,20.5)" {
		t.Errorf("Translate = %q", got)
	}
}
