package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/render/sink"
)

// exportOpts holds the command-line flags for the export-dot command.
type exportOpts struct {
	output  string // output file; empty writes DOT to stdout
	graph   bool   // also lay the graph out with Graphviz as SVG
	pin     bool   // pin nodes at their chart positions
	rankDir string // Graphviz rank direction
	selects []string
	params  []string
}

// exportDOTCommand creates the export-dot command for node-link and tree
// charts.
func (c *CLI) exportDOTCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:               "export-dot <chart>",
		Short:             "Export the node-link structure of a chart as Graphviz DOT",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCharts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExportDOT(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output .dot file (default: stdout)")
	cmd.Flags().BoolVar(&opts.graph, "graph", false, "also write a Graphviz-rendered SVG next to the output")
	cmd.Flags().BoolVar(&opts.pin, "pin", false, "pin nodes at their chart positions")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "Graphviz rank direction (LR, TB, ...)")
	cmd.Flags().StringArrayVar(&opts.selects, "select", nil, "initial selection control=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "initial numeric control name=value (repeatable)")

	return cmd
}

func (c *CLI) runExportDOT(ctx context.Context, name string, opts exportOpts) error {
	if opts.graph && opts.output == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--graph needs --output")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	charts, err := selectCharts(cfg, []string{name}, renderOpts{selects: opts.selects, params: opts.params})
	if err != nil {
		return err
	}
	cc := charts[0]

	formats := []sink.Format{sink.FormatDOT}
	if opts.graph {
		formats = append(formats, sink.FormatGraph)
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Options{
		Chart:   cc,
		Formats: formats,
		DOT:     sink.DOTOptions{RankDir: opts.rankDir, Positions: opts.pin},
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}

	dot := res.Artifacts[sink.FormatDOT]
	if opts.output == "" {
		_, err := os.Stdout.Write(dot)
		return err
	}
	if err := writeFile(opts.output, dot); err != nil {
		return err
	}
	printSuccess("Exported %s", StyleHighlight.Render(cc.Name))
	printFileDetail(opts.output, humanize.Bytes(uint64(len(dot))))

	if opts.graph {
		svgPath := opts.output[:len(opts.output)-len(filepath.Ext(opts.output))] + "." + sink.FormatGraph.Extension()
		svg := res.Artifacts[sink.FormatGraph]
		if err := writeFile(svgPath, svg); err != nil {
			return err
		}
		printFileDetail(svgPath, humanize.Bytes(uint64(len(svg))))
	}
	return nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
