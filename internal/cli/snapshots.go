package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/store"
)

// snapshotsCommand creates the snapshots command group.
func (c *CLI) snapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Manage saved session snapshots",
	}
	cmd.AddCommand(c.snapshotsListCommand())
	cmd.AddCommand(c.snapshotsShowCommand())
	cmd.AddCommand(c.snapshotsDeleteCommand())
	return cmd
}

// snapshotsListCommand creates the "snapshots list" subcommand.
func (c *CLI) snapshotsListCommand() *cobra.Command {
	var opts store.ListOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				snaps, err := s.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if len(snaps) == 0 {
					printInfo("No snapshots")
					return nil
				}
				fmt.Println(renderTable([]string{"id", "chart", "kind", "title", "created"}, snapshotRows(snaps, time.Now())))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "only snapshots of this chart")
	_ = cmd.RegisterFlagCompletionFunc("chart", c.completeCharts)
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of snapshots (0 for all)")
	return cmd
}

// snapshotsShowCommand creates the "snapshots show" subcommand.
func (c *CLI) snapshotsShowCommand() *cobra.Command {
	var svgPath string
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show a snapshot and optionally write its SVG",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				snap, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return snapshotErr(err, args[0])
				}
				printSnapshot(snap)
				if svgPath == "" {
					return nil
				}
				if err := writeFile(svgPath, snap.SVG); err != nil {
					return err
				}
				printFileDetail(svgPath, humanize.Bytes(uint64(len(snap.SVG))))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the snapshot SVG to this file")
	return cmd
}

// snapshotsDeleteCommand creates the "snapshots delete" subcommand.
func (c *CLI) snapshotsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>...",
		Aliases:           []string{"rm"},
		Short:             "Delete snapshots",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				for _, id := range args {
					if err := s.Delete(cmd.Context(), id); err != nil {
						return snapshotErr(err, id)
					}
					printSuccess("Deleted %s", StyleHighlight.Render(id))
				}
				return nil
			})
		},
	}
}

// withStore opens the snapshot store of the config for fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func snapshotErr(err error, id string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
	}
	return err
}

func snapshotRows(snaps []store.Snapshot, now time.Time) [][]string {
	rows := make([][]string, len(snaps))
	for i, s := range snaps {
		rows[i] = []string{
			s.ID,
			s.Chart,
			s.Kind,
			truncate(s.Title, 32),
			humanize.RelTime(s.CreatedAt, now, "ago", "from now"),
		}
	}
	return rows
}

func printSnapshot(s *store.Snapshot) {
	fmt.Println(StyleTitle.Render(s.ID))
	printKeyValue("chart", s.Chart)
	printKeyValue("kind", s.Kind)
	if s.Title != "" {
		printKeyValue("title", s.Title)
	}
	printKeyValue("created", s.CreatedAt.Format(time.RFC3339)+" ("+humanize.Time(s.CreatedAt)+")")
	printKeyValue("svg", humanize.Bytes(uint64(len(s.SVG))))
	if lines := stateLines(s.State); len(lines) > 0 {
		fmt.Println()
		fmt.Println(strings.Join(lines, "\n"))
	}
}
