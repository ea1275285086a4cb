package cli

import (
	"context"
	"maps"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/config"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/render/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output directory
	formats  string   // comma-separated output formats
	animate  bool     // export pending transitions as SMIL
	refresh  bool     // skip the render cache and refetch URL sources
	noCache  bool     // disable the render cache
	selects  []string // control=value selections
	params   []string // name=number params
	width    float64  // canvas width override
	height   float64  // canvas height override
	kind     string   // ad hoc chart kind
	data     string   // ad hoc chart data source
	rankDir  string   // DOT rank direction
	pinNodes bool     // pin DOT nodes at chart positions
}

// renderCommand creates the render command.
//
// With no arguments every gallery chart is rendered. With --kind and --data
// an ad hoc chart is rendered without a config file.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [chart...]",
		Short: "Render gallery charts to files",
		Example: `  vizlab render                          # every chart in vizlab.toml
  vizlab render revenue -f svg,png       # one chart, two formats
  vizlab render revenue --select metric=profit --animate
  vizlab render --kind bar --data revenues.csv -o out`,
		ValidArgsFunction: c.completeCharts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: output.dir of the config)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, json, dot, graph (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&opts.animate, "animate", false, "export pending transitions as SVG animation")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "skip the render cache and refetch URL data")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().StringArrayVar(&opts.selects, "select", nil, "initial selection control=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "initial numeric control name=value (repeatable)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width override")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height override")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "render an ad hoc chart of this kind")
	cmd.Flags().StringVar(&opts.data, "data", "", "data source of the ad hoc chart")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "Graphviz rank direction for dot and graph output")
	cmd.Flags().BoolVar(&opts.pinNodes, "pin", false, "pin Graphviz nodes at their chart positions")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, names []string, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	charts, err := selectCharts(cfg, names, opts)
	if err != nil {
		return err
	}
	if len(charts) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no charts to render: add charts to %s or pass --kind and --data", config.Files[0])
	}

	formats, err := toFormats(parseFormats(opts.formats, cfg.Output.Formats))
	if err != nil {
		return err
	}
	outDir := opts.output
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	for _, cc := range charts {
		res, err := runner.Execute(ctx, pipeline.Options{
			Chart:   cc,
			Formats: formats,
			Animate: opts.animate || cfg.Output.Animate,
			Title:   titleOf(cfg, cc),
			DOT:     sink.DOTOptions{RankDir: opts.rankDir, Positions: opts.pinNodes},
			Refresh: opts.refresh,
			Logger:  logger,
		})
		if err != nil {
			printError("%s: %s", cc.Name, errors.UserMessage(err))
			return err
		}
		paths, err := pipeline.WriteArtifacts(outDir, cc.Name, res.Artifacts)
		if err != nil {
			return err
		}

		prog.add(res.CacheInfo.RenderHit)
		printSuccess("Rendered %s", StyleHighlight.Render(cc.Name))
		printStats(res.Stats.Rows, string(res.Chart.Kind()), res.CacheInfo.RenderHit)
		for _, p := range paths {
			printFileSize(p)
		}
	}
	prog.done("Rendered charts")
	if cfg.Path() != "" {
		printNextStep("Serve them interactively", appName+" serve")
	}
	return nil
}

// selectCharts returns the charts to render: the ad hoc chart described by
// opts, the named gallery charts, or all of them.
func selectCharts(cfg *config.Config, names []string, opts renderOpts) ([]chart.Config, error) {
	selected, err := parseAssignments("select", opts.selects)
	if err != nil {
		return nil, err
	}
	params, err := parseParams(opts.params)
	if err != nil {
		return nil, err
	}

	var charts []chart.Config
	switch {
	case opts.kind != "":
		kind, err := chart.ParseKind(opts.kind)
		if err != nil {
			return nil, err
		}
		name := string(kind)
		if len(names) > 0 {
			name = names[0]
		}
		cc := chart.Config{Name: name, Kind: kind}
		if opts.data != "" {
			cc.Sources = map[string]string{"data": opts.data}
		}
		charts = []chart.Config{cc}
	case len(names) > 0:
		for _, name := range names {
			cc, err := cfg.Chart(name)
			if err != nil {
				return nil, err
			}
			charts = append(charts, cc)
		}
	default:
		charts = append(charts, cfg.Charts...)
	}

	for i := range charts {
		charts[i] = override(charts[i], selected, params, opts.width, opts.height)
	}
	return charts, nil
}

// override applies command-line selections and sizes to cc.
func override(cc chart.Config, selected map[string]string, params map[string]float64, width, height float64) chart.Config {
	if len(selected) > 0 {
		merged := make(map[string]string, len(cc.Selected)+len(selected))
		maps.Copy(merged, cc.Selected)
		maps.Copy(merged, selected)
		cc.Selected = merged
	}
	if len(params) > 0 {
		merged := make(map[string]float64, len(cc.Params)+len(params))
		maps.Copy(merged, cc.Params)
		maps.Copy(merged, params)
		cc.Params = merged
	}
	if width > 0 {
		cc.Width = width
	}
	if height > 0 {
		cc.Height = height
	}
	return cc
}

func toFormats(names []string) ([]sink.Format, error) {
	out := make([]sink.Format, 0, len(names))
	for _, n := range names {
		f, err := sink.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// titleOf is the SVG title of cc: the gallery title and the chart name.
func titleOf(cfg *config.Config, cc chart.Config) string {
	if cfg.Title == "" {
		return cc.Name
	}
	return cfg.Title + " - " + cc.Name
}

// printFileSize prints an output file with its size.
func printFileSize(path string) {
	info, err := os.Stat(path)
	if err != nil {
		printFile(path)
		return
	}
	printFileDetail(path, humanize.Bytes(uint64(info.Size())))
}
