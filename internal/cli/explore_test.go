package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/view"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want view.Msg
	}{
		{"play", view.Play{}},
		{"pause", view.Pause{}},
		{"reset", view.Reset{}},
		{"tick", view.Tick{}},
		{"select metric profit", view.Select{Control: "metric", Value: "profit"}},
		{"select country United States", view.Select{Control: "country", Value: "United States"}},
		{"direction left", view.Select{Control: "direction", Value: "left"}},
		{"param top 5", view.SetParam{Name: "top", Value: 5}},
		{"frame 3", view.SetFrame{Index: 3}},
		{"range 2010 1990", view.SetRange{Min: 2010, Max: 1990}},
		{"brush 10 120.5", view.Brush{X0: 10, X1: 120.5}},
		{"brush clear", view.Brush{Empty: true}},
		{"  play  ", view.Play{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if err != nil {
				t.Fatalf("parseCommand(%q) error: %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseCommand(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []string{
		"",
		"jump 3",
		"play now",
		"select metric",
		"param top",
		"param top five",
		"frame one",
		"range 1",
		"brush 1 x",
		"direction",
	}

	for _, line := range tests {
		if msg, err := parseCommand(line); err == nil {
			t.Errorf("parseCommand(%q) = %v, want error", line, msg)
		}
	}
}

func newWheelModel(t *testing.T, output string) exploreModel {
	t.Helper()
	ctx := context.Background()
	c, err := chart.Open(ctx, nil, chart.Config{Name: "wheel", Kind: chart.Pie})
	if err != nil {
		t.Fatalf("chart.Open() error: %v", err)
	}
	m, err := newExploreModel(ctx, c, c.Defaults(), output, "wheel")
	if err != nil {
		t.Fatalf("newExploreModel() error: %v", err)
	}
	return m
}

func press(t *testing.T, m exploreModel, keys ...tea.KeyMsg) (exploreModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(exploreModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestExploreRotation(t *testing.T) {
	m := newWheelModel(t, "")

	m, cmd := press(t, m, runes(">"))
	if got := m.ctrl.State().Direction; got != 1 {
		t.Fatalf("Direction after > = %d, want 1", got)
	}
	if cmd == nil || !m.ticking {
		t.Fatal("> should start the playback clock")
	}

	next, cmd := m.Update(tickMsg{})
	m = next.(exploreModel)
	if got, want := m.ctrl.State().Rotation, 10.0; got != want {
		t.Errorf("Rotation after one tick = %v, want %v", got, want)
	}
	if cmd == nil {
		t.Error("tick while rotating should schedule the next tick")
	}

	m, _ = press(t, m, runes("s"))
	next, cmd = m.Update(tickMsg{})
	m = next.(exploreModel)
	if cmd != nil || m.ticking {
		t.Error("tick after stop should not reschedule")
	}

	m, _ = press(t, m, runes("r"))
	if got := m.ctrl.State().Rotation; got != 0 {
		t.Errorf("Rotation after reset = %v, want 0", got)
	}
}

func TestExploreCommandLine(t *testing.T) {
	m := newWheelModel(t, "")

	m, _ = press(t, m, runes(":"), runes("param"), tea.KeyMsg{Type: tea.KeySpace}, runes("slices 4"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("enter should close the command line")
	}
	if got := m.ctrl.State().Param("slices", 0); got != 4 {
		t.Errorf("slices = %v, want 4", got)
	}
	if m.failed {
		t.Errorf("status = %q, want success", m.status)
	}

	m, _ = press(t, m, runes(":"), runes("bogus"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.failed || !strings.Contains(m.status, "bogus") {
		t.Errorf("status = %q (failed %v), want an error naming bogus", m.status, m.failed)
	}

	m, _ = press(t, m, runes(":"), runes("abc"), tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing || m.input != "ab" {
		t.Errorf("after backspace and esc: editing %v input %q, want false \"ab\"", m.editing, m.input)
	}
}

func TestExploreWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "wheel.svg")
	m := newWheelModel(t, path)

	m, _ = press(t, m, runes("w"))
	if m.failed {
		t.Fatalf("write failed: %s", m.status)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written SVG: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("written file is not an SVG")
	}
	if diff := cmp.Diff([]string{path}, m.written); diff != "" {
		t.Errorf("written mismatch (-want +got):\n%s", diff)
	}

	if v := m.View(); !strings.Contains(v, "slices") || !strings.Contains(v, "wrote") {
		t.Errorf("View() = %q, want state and status", v)
	}
}

func TestStateLines(t *testing.T) {
	s := view.State{Frames: 10, Frame: 2, Playing: true}.With("coin", "bitcoin").WithParam("top", 5)
	s.Range = view.Range{Min: 1, Max: 2, Set: true}
	got := strings.Join(stateLines(s), "\n")
	for _, want := range []string{"coin", "bitcoin", "top", "5", "3/10 playing", "range"} {
		if !strings.Contains(got, want) {
			t.Errorf("stateLines() = %q, want it to contain %q", got, want)
		}
	}
	if got := stateLines(view.State{}); len(got) != 1 {
		t.Errorf("stateLines(empty) = %v, want one placeholder line", got)
	}
}
