package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/format"
)

// dataCommand creates the data command group.
func (c *CLI) dataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect chart data",
	}
	cmd.AddCommand(c.dataInspectCommand())
	return cmd
}

// dataInspectCommand creates the "data inspect" subcommand.
func (c *CLI) dataInspectCommand() *cobra.Command {
	var (
		rows    int
		refresh bool
	)
	cmd := &cobra.Command{
		Use:               "inspect <chart>",
		Short:             "Show the columns, rows and lookups a chart is built from",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCharts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDataInspect(cmd.Context(), args[0], rows, refresh)
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "number of rows to show")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch URL sources")
	return cmd
}

func (c *CLI) runDataInspect(ctx context.Context, name string, n int, refresh bool) error {
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
	if refresh {
		runner.Loader.Refresh = true
	}

	spin := newSpinner(ctx, os.Stderr, "Loading "+name)
	spin.Start()
	d, err := runner.Load(ctx, cc)
	spin.Stop()
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(cc.Name))
	printKeyValue("kind", string(cc.Kind))
	for _, role := range sortedKeys(cc.Sources) {
		printKeyValue(role, cc.Sources[role])
	}
	fmt.Println()
	printData(d, n)
	return nil
}

// printData prints the tables, groups and lookups of d.
func printData(d chart.Data, n int) {
	if len(d.Table.Columns) > 0 {
		printInfo("table: %s rows", humanize.Comma(int64(d.Table.Len())))
		fmt.Println(renderTable([]string{"column", "kind", "extent"}, columnSummary(d.Table)))
		if n > 0 && d.Table.Len() > 0 {
			fmt.Println(renderTable(d.Table.Columns, tableRows(d.Table, n)))
			if d.Table.Len() > n {
				printDetail("%s more rows", humanize.Comma(int64(d.Table.Len()-n)))
			}
		}
	}
	if len(d.Groups) > 0 {
		keys := d.Groups.Keys()
		printInfo("groups: %d", len(keys))
		rows := make([][]string, 0, len(keys))
		for _, g := range d.Groups {
			rows = append(rows, []string{g.Key, humanize.Comma(int64(g.Table.Len())), strings.Join(g.Table.Columns, ", ")})
			if n > 0 && len(rows) == n {
				break
			}
		}
		fmt.Println(renderTable([]string{"group", "rows", "columns"}, rows))
		if len(keys) > len(rows) {
			printDetail("%d more groups", len(keys)-len(rows))
		}
	}
	for _, role := range sortedKeys(d.Lookups) {
		l := d.Lookups[role]
		keys := l.Keys()
		sample := keys[:min(3, len(keys))]
		pairs := make([]string, len(sample))
		for i, k := range sample {
			pairs[i] = k + "=" + l.Get(k)
		}
		printInfo("lookup %s: %d entries", StyleHighlight.Render(role), l.Len())
		if len(pairs) > 0 {
			printDetail("%s", strings.Join(pairs, ", "))
		}
	}
}

// columnSummary describes each column by the kind of its first non-null
// value and the numeric extent.
func columnSummary(t dataset.Table) [][]string {
	out := make([][]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		kind := "null"
		for _, v := range t.Column(col) {
			if !v.IsNull() {
				kind = v.Kind().String()
				break
			}
		}
		extent := ""
		if lo, hi, ok := t.Extent(col); ok {
			extent = format.Abbreviate(lo) + " … " + format.Abbreviate(hi)
		}
		out = append(out, []string{col, kind, extent})
	}
	return out
}

func tableRows(t dataset.Table, n int) [][]string {
	head := t.Head(n)
	out := make([][]string, 0, head.Len())
	for _, r := range head.Rows {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = truncate(r.Str(col), 24)
		}
		out = append(out, row)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
