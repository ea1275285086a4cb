package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/interact"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/view"
)

// defaultRecordFrames is used for charts without a frame count, such as the
// wheel.
const defaultRecordFrames = 36

// recordOpts holds the command-line flags for the record command.
type recordOpts struct {
	frames   int
	output   string
	interval time.Duration
	selects  []string
	params   []string
}

// recordCommand creates the record command.
func (c *CLI) recordCommand() *cobra.Command {
	var opts recordOpts

	cmd := &cobra.Command{
		Use:   "record <chart>",
		Short: "Play a chart and write one SVG per frame",
		Long: `Record plays a chart on its playback clock and writes the rendered SVG
after every tick. Charts with frames (scatter, treemap) play through their
frames; the wheel rotates. The frames can be assembled into a video or GIF
with external tools.`,
		Example: `  vizlab record gapminder
  vizlab record wheel -n 72 --select direction=left -o frames/`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCharts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRecord(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "number of ticks to record (default: one pass over the chart's frames)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "frame directory (default: <output.dir>/<chart>-frames)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "tick period (default: the chart's playback speed)")
	cmd.Flags().StringArrayVar(&opts.selects, "select", nil, "initial selection control=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "initial numeric control name=value (repeatable)")

	return cmd
}

func (c *CLI) runRecord(ctx context.Context, name string, opts recordOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	charts, err := selectCharts(cfg, []string{name}, renderOpts{selects: opts.selects, params: opts.params})
	if err != nil {
		return err
	}
	cc := charts[0]

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

	dir := opts.output
	if dir == "" {
		dir = filepath.Join(cfg.Output.Dir, cc.Name+"-frames")
	}
	if opts.interval <= 0 {
		opts.interval = playInterval(ch)
	}

	prog := newProgress(loggerFromContext(ctx))
	paths, err := recordFrames(ctx, ch, state, frameRecorder{
		dir:      dir,
		name:     cc.Name,
		frames:   opts.frames,
		interval: opts.interval,
		title:    titleOf(cfg, cc),
	})
	if err != nil {
		return err
	}
	for range paths {
		prog.add(false)
	}
	prog.done("Recorded frames")

	var size uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			size += uint64(info.Size())
		}
	}
	printSuccess("Recorded %d frames of %s", len(paths), StyleHighlight.Render(cc.Name))
	printFileDetail(dir, humanize.Bytes(size))
	return nil
}

// frameRecorder configures recordFrames.
type frameRecorder struct {
	dir      string
	name     string
	frames   int
	interval time.Duration
	title    string
}

// recordFrames starts playback of c, which writes the first frame, then
// writes one frame per tick until the requested number of ticks has been rendered.
// It returns the written paths in order.
func recordFrames(ctx context.Context, c chart.Chart, initial view.State, r frameRecorder) ([]string, error) {
	start, err := playback(c, initial)
	if err != nil {
		return nil, err
	}
	n := r.frames
	if n <= 0 {
		n = defaultRecordFrames
		if initial.Frames > 0 {
			n = initial.Frames - 1
		}
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", r.dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		paths    []string
		writeErr error
	)
	write := func() {
		if len(paths) > n || ctx.Err() != nil {
			return
		}
		path := filepath.Join(r.dir, fmt.Sprintf("%s-%04d.svg", r.name, len(paths)))
		data, err := sink.Render(ctx, c, sink.FormatSVG, sink.Options{Title: r.title})
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
		if err != nil {
			writeErr = err
			cancel()
			return
		}
		paths = append(paths, path)
		if len(paths) > n {
			cancel()
		}
	}

	ctrl, err := interact.New(c, initial, interact.OnChange(func(view.State) { write() }))
	if err != nil {
		return nil, err
	}
	if err := ctrl.Dispatch(start); err != nil {
		return nil, err
	}

	msgs := make(chan view.Msg)
	timer := interact.NewTimer(r.interval, msgs)
	timer.Start(ctx)
	err = ctrl.Run(ctx, msgs)
	timer.Stop()

	if writeErr != nil {
		return paths, writeErr
	}
	if len(paths) > n && stderrors.Is(err, context.Canceled) {
		return paths, nil
	}
	if err == nil {
		err = ctx.Err()
	}
	return paths, err
}

// playback returns the message that starts c moving from s: Play for
// charts with frames, a rightward rotation for the wheel.
func playback(c chart.Chart, s view.State) (view.Msg, error) {
	switch {
	case s.Frames > 0:
		return view.Play{}, nil
	case c.Kind() == chart.Pie:
		if s.Direction < 0 {
			return view.Select{Control: "direction", Value: "left"}, nil
		}
		return view.Select{Control: "direction", Value: "right"}, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "%s charts have no playback", c.Kind())
}
