package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/config"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/schedule"
	"github.com/matzehuels/vizlab/pkg/server"
	"github.com/matzehuels/vizlab/pkg/session"
)

const (
	// sweepSchedule expires idle sessions.
	sweepSchedule = "*/10 * * * *"

	jobRefresh = "refresh"
	jobSweep   = "sweep-sessions"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	noCache   bool
	noRefresh bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve gallery charts and interactive sessions over HTTP",
		Long: `Serve renders gallery charts on request and keeps interactive sessions
whose view state is driven by posted events. When the config has a
[refresh] schedule, charts are re-rendered into the output directory
in the background.`,
		Example: `  vizlab serve
  vizlab serve --addr 127.0.0.1:9000 -c gallery.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: server.addr of the config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.noRefresh, "no-refresh", false, "disable scheduled refreshes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sessStore, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessStore.Close()
	mgr := session.NewManager(sessStore, server.Opener(cfg, runner), cfg.Server.SessionTTL, c.Logger)

	snaps, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer snaps.Close()

	sched, err := c.newScheduler(ctx, cfg, runner, mgr, !opts.noRefresh)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	srv := server.New(server.Options{
		Config:    cfg,
		Runner:    runner,
		Sessions:  mgr,
		Snapshots: snaps,
		Logger:    c.Logger,
	})

	if len(cfg.Charts) == 0 {
		printWarning("No charts configured; only sessions of gallery charts can be created")
	}
	printSuccess("Serving %d chart(s) on %s", len(cfg.Charts), StyleLink.Render(listenURL(addr)))
	printDetail("sessions: %s, snapshots: %s, cache: %s", orDefault(cfg.Server.Sessions, "memory"), cfg.Store.Backend, cfg.Cache.Backend)
	if next, ok := sched.Next(jobRefresh); ok {
		printDetail("next refresh: %s", next.Format(time.RFC3339))
	}
	return srv.ListenAndServe(ctx, addr)
}

// newScheduler registers the session sweep and, when enabled and
// configured, the gallery refresh.
func (c *CLI) newScheduler(ctx context.Context, cfg *config.Config, runner *pipeline.Runner, mgr *session.Manager, refresh bool) (*schedule.Scheduler, error) {
	sched := schedule.New(ctx, c.Logger)

	err := sched.Add(jobSweep, sweepSchedule, func(ctx context.Context) error {
		n, err := mgr.Sweep(ctx)
		if n > 0 {
			c.Logger.Info("expired sessions", "count", n)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if !refresh || cfg.Refresh.Schedule == "" {
		return sched, nil
	}
	r, err := newRefresher(cfg, runner, c)
	if err != nil {
		return nil, err
	}
	if err := sched.Add(jobRefresh, cfg.Refresh.Schedule, r.Run); err != nil {
		return nil, err
	}
	if cfg.Refresh.OnStart {
		go func() { _ = sched.RunNow(jobRefresh) }()
	}
	return sched, nil
}

// newRefresher returns the refresher for the charts named in the refresh
// section, or all charts.
func newRefresher(cfg *config.Config, runner *pipeline.Runner, c *CLI) (*schedule.Refresher, error) {
	charts := cfg.Charts
	if len(cfg.Refresh.Charts) > 0 {
		charts = charts[:0:0]
		for _, name := range cfg.Refresh.Charts {
			cc, err := cfg.Chart(name)
			if err != nil {
				return nil, err
			}
			charts = append(charts, cc)
		}
	}
	return &schedule.Refresher{
		Runner:  runner,
		Charts:  charts,
		Dir:     cfg.Output.Dir,
		Formats: cfg.Formats(),
		Animate: cfg.Output.Animate,
		Logger:  c.Logger,
	}, nil
}

// listenURL turns a listen address into a browsable URL.
func listenURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
