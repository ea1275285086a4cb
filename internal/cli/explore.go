package cli

import (
	"context"
	"fmt"
	"os"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/interact"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/view"
)

// defaultTick is the playback period of charts that do not set one.
const defaultTick = 100 * time.Millisecond

var (
	exploreKeyStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	explorePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	explorePrompt     = lipgloss.NewStyle().Foreground(colorCyan).Render(":")
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "explore <chart>",
		Short: "Drive a chart interactively in the terminal",
		Long: `Explore opens a chart in a terminal session. Keys step, play and
rotate the chart; ":" opens a command line for other messages:

  select <control> <value>   param <name> <number>
  range <min> <max>          brush <x0> <x1> | brush clear
  frame <index>              direction left|right|stop
  play  pause  reset  tick   write [file]`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCharts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG file written by the w key (default: <chart>.svg)")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, name, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	cc, err := cfg.Chart(name)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, os.Stderr, "Loading "+name)
	spin.Start()
	d, err := runner.Load(ctx, cc)
	if err != nil {
		spin.Stop()
		return err
	}
	spin.SetMessage("Building " + name)
	ch, state, err := runner.Build(ctx, cc, d, nil)
	spin.Stop()
	if err != nil {
		return err
	}

	if output == "" {
		output = cc.Name + ".svg"
	}
	m, err := newExploreModel(ctx, ch, state, output, titleOf(cfg, cc))
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "explore %s", name)
	}
	if fm, ok := final.(exploreModel); ok && len(fm.written) > 0 {
		for _, p := range fm.written {
			printFileSize(p)
		}
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

type tickMsg struct{}

// exploreModel is the bubbletea model of the explore command.
type exploreModel struct {
	ctx      context.Context
	chart    chart.Chart
	ctrl     *interact.Controller
	interval time.Duration
	output   string
	title    string

	ticking bool
	editing bool
	input   string
	status  string
	failed  bool
	written []string
}

func newExploreModel(ctx context.Context, c chart.Chart, initial view.State, output, title string) (exploreModel, error) {
	ctrl, err := interact.New(c, initial)
	if err != nil {
		return exploreModel{}, err
	}
	return exploreModel{
		ctx:      ctx,
		chart:    c,
		ctrl:     ctrl,
		interval: playInterval(c),
		output:   output,
		title:    title,
	}, nil
}

func (m exploreModel) Init() tea.Cmd { return nil }

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.ticking = false
		if !animating(m.ctrl.State()) {
			return m, nil
		}
		m.dispatch(view.Tick{}, false)
		cmd := m.schedule()
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m exploreModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.ctrl.State()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case ":":
		m.editing, m.input = true, ""
	case " ", "p":
		if s.Playing {
			m.dispatch(view.Pause{}, true)
		} else {
			m.dispatch(view.Play{}, true)
		}
	case "right", "l":
		m.step(s, 1)
	case "left", "h":
		m.step(s, -1)
	case "r":
		m.dispatch(view.Reset{}, true)
	case "<":
		m.dispatch(view.Select{Control: "direction", Value: "left"}, true)
	case ">":
		m.dispatch(view.Select{Control: "direction", Value: "right"}, true)
	case "s":
		m.dispatch(view.Select{Control: "direction", Value: "stop"}, true)
	case "w":
		m.write(m.output)
	}
	cmd := m.schedule()
	return m, cmd
}

func (m exploreModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyEnter:
		m.editing = false
		m.run(strings.TrimSpace(m.input))
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	cmd := m.schedule()
	return m, cmd
}

// run executes a command line.
func (m *exploreModel) run(line string) {
	if line == "" {
		return
	}
	if f := strings.Fields(line); f[0] == "write" {
		path := m.output
		if len(f) > 1 {
			path = f[1]
		}
		m.write(path)
		return
	}
	msg, err := parseCommand(line)
	if err != nil {
		m.setError(err)
		return
	}
	m.dispatch(msg, true)
}

// step moves one frame forward or back, wrapping around.
func (m *exploreModel) step(s view.State, delta int) {
	if s.Frames <= 0 {
		m.status = "chart has no frames"
		return
	}
	m.dispatch(view.SetFrame{Index: (s.Frame + delta + s.Frames) % s.Frames}, true)
}

func (m *exploreModel) dispatch(msg view.Msg, report bool) {
	if err := m.ctrl.Dispatch(msg); err != nil {
		m.setError(err)
		return
	}
	if report {
		m.status, m.failed = msg.Type(), false
	}
}

func (m *exploreModel) write(path string) {
	data, err := sink.Render(m.ctx, m.chart, sink.FormatSVG, sink.Options{Title: m.title})
	if err == nil {
		err = writeFile(path, data)
	}
	if err != nil {
		m.setError(err)
		return
	}
	if !slices.Contains(m.written, path) {
		m.written = append(m.written, path)
	}
	m.status, m.failed = "wrote "+path+" ("+humanize.Bytes(uint64(len(data)))+")", false
}

func (m *exploreModel) setError(err error) {
	m.status, m.failed = errors.UserMessage(err), true
}

// schedule starts the playback clock when the state animates and no tick
// is pending.
func (m *exploreModel) schedule() tea.Cmd {
	if m.ticking || !animating(m.ctrl.State()) {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// playInterval is the tick period of c.
func playInterval(c chart.Chart) time.Duration {
	if p, ok := c.(chart.Player); ok && p.Interval() > 0 {
		return p.Interval()
	}
	return defaultTick
}

func animating(s view.State) bool {
	return (s.Playing && s.Frames > 0) || s.Direction != 0
}

func (m exploreModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render("  " + string(m.chart.Kind())))
	b.WriteString("\n\n")
	b.WriteString(explorePanelStyle.Render(strings.Join(stateLines(m.ctrl.State()), "\n")))
	b.WriteString("\n")

	if m.status != "" {
		if m.failed {
			b.WriteString(styleIconError.Render(iconError) + " " + m.status)
		} else {
			b.WriteString(styleIconInfo.Render(iconInfo) + " " + StyleDim.Render(m.status))
		}
		b.WriteString("\n")
	}
	if m.editing {
		b.WriteString(explorePrompt + m.input + "█\n")
	} else {
		b.WriteString(StyleDim.Render("←/→ frame  space play/pause  r reset  </>/s rotate  w write  : command  q quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// stateLines summarizes the view state, one field per line.
func stateLines(s view.State) []string {
	var lines []string
	add := func(k, v string) {
		lines = append(lines, exploreKeyStyle.Render(k)+StyleValue.Render(v))
	}
	for _, k := range slices.Sorted(maps.Keys(s.Selected)) {
		add(k, s.Selected[k])
	}
	for _, k := range slices.Sorted(maps.Keys(s.Params)) {
		add(k, strconv.FormatFloat(s.Params[k], 'g', -1, 64))
	}
	if s.Frames > 0 {
		play := "paused"
		if s.Playing {
			play = "playing"
		}
		add("frame", fmt.Sprintf("%d/%d %s", s.Frame+1, s.Frames, play))
	}
	if s.Direction != 0 || s.Rotation != 0 {
		add("rotation", fmt.Sprintf("%.0f° dir %+d", s.Rotation, s.Direction))
	}
	if s.Range.Set {
		add("range", fmt.Sprintf("%g … %g", s.Range.Min, s.Range.Max))
	}
	if !s.Brush.Empty && s.Brush.X1 > s.Brush.X0 {
		add("brush", fmt.Sprintf("%.0f … %.0f px", s.Brush.X0, s.Brush.X1))
	}
	if len(lines) == 0 {
		lines = append(lines, StyleDim.Render("initial state"))
	}
	return lines
}

// =============================================================================
// Command Line
// =============================================================================

// parseCommand parses one explorer command into a message.
func parseCommand(line string) (view.Msg, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty command")
	}
	args := f[1:]
	want := func(n int, usage string) error {
		if len(args) != n {
			return errors.New(errors.ErrCodeInvalidInput, "usage: %s", usage)
		}
		return nil
	}

	switch f[0] {
	case "play":
		return view.Play{}, want(0, "play")
	case "pause":
		return view.Pause{}, want(0, "pause")
	case "reset":
		return view.Reset{}, want(0, "reset")
	case "tick":
		return view.Tick{}, want(0, "tick")
	case "select":
		if len(args) < 2 {
			return nil, want(2, "select <control> <value>")
		}
		return view.Select{Control: args[0], Value: strings.Join(args[1:], " ")}, nil
	case "direction":
		if err := want(1, "direction left|right|stop"); err != nil {
			return nil, err
		}
		return view.Select{Control: "direction", Value: args[0]}, nil
	case "param":
		if err := want(2, "param <name> <number>"); err != nil {
			return nil, err
		}
		v, err := parseNumber(args[1])
		if err != nil {
			return nil, err
		}
		return view.SetParam{Name: args[0], Value: v}, nil
	case "frame":
		if err := want(1, "frame <index>"); err != nil {
			return nil, err
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "frame wants an integer, got %q", args[0])
		}
		return view.SetFrame{Index: i}, nil
	case "range":
		if err := want(2, "range <min> <max>"); err != nil {
			return nil, err
		}
		lo, hi, err := parsePair(args)
		if err != nil {
			return nil, err
		}
		return view.SetRange{Min: lo, Max: hi}, nil
	case "brush":
		if len(args) == 1 && args[0] == "clear" {
			return view.Brush{Empty: true}, nil
		}
		if err := want(2, "brush <x0> <x1> | brush clear"); err != nil {
			return nil, err
		}
		x0, x1, err := parsePair(args)
		if err != nil {
			return nil, err
		}
		return view.Brush{X0: x0, X1: x1}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown command %q", f[0])
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "want a number, got %q", s)
	}
	return v, nil
}

func parsePair(args []string) (float64, float64, error) {
	a, err := parseNumber(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseNumber(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
