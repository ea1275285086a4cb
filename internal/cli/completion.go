package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/config"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/store"
)

// completionScripts generates the script for each supported shell.
var completionScripts = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        func(r *cobra.Command, w io.Writer) error { return r.GenZshCompletion(w) },
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": func(r *cobra.Command, w io.Writer) error { return r.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell. Chart names, snapshot
IDs and output formats complete from the current config.`,
		Example: `  source <(vizlab completion bash)
  vizlab completion zsh > "${fpath[1]}/_vizlab"
  vizlab completion fish > ~/.config/fish/completions/vizlab.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionScripts[args[0]](cmd.Root(), os.Stdout)
		},
	}
}

// completeCharts completes gallery chart names.
func (c *CLI) completeCharts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return cfg.Names(), cobra.ShellCompDirectiveNoFileComp
}

// completeSnapshots completes snapshot IDs, described by chart and title.
func (c *CLI) completeSnapshots(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	_ = c.withStore(cmd.Context(), func(s store.Store) error {
		snaps, err := s.List(cmd.Context(), store.ListOptions{Limit: 50})
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if strings.HasPrefix(snap.ID, toComplete) {
				out = append(out, snap.ID+"\t"+snap.Chart+" "+snap.Title)
			}
		}
		return nil
	})
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes the comma-separated --format flag.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	out := make([]string, 0, len(sink.Formats))
	for _, f := range sink.Formats {
		if !strings.Contains(","+prefix, ","+string(f)+",") {
			out = append(out, prefix+string(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
