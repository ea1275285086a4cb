package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/buildinfo"
	"github.com/matzehuels/vizlab/pkg/cache"
	"github.com/matzehuels/vizlab/pkg/config"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/httputil"
	"github.com/matzehuels/vizlab/pkg/observability"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/session"
	"github.com/matzehuels/vizlab/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "vizlab"

	// httpCacheTTL bounds cached bodies of URL data sources.
	httpCacheTTL = 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "vizlab renders interactive data charts",
		Long:         `vizlab builds charts from CSV and JSON data, renders them as SVG, PNG, DOT or JSON, and serves them with interactive sessions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "gallery config file (default: vizlab.toml or vizlab.yaml in the working directory)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportDOTCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.recordCommand())
	root.AddCommand(c.dataCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig loads the gallery config named by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path(), "charts", len(cfg.Charts))
	}
	return cfg, nil
}

// newRunner creates a pipeline runner with the render cache of cfg.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	rc, err := openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(rc, nil, newLoader(c.Logger), c.Logger), nil
}

func openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	opts := cache.Options{
		Backend: cache.Backend(cfg.Cache.Backend),
		Dir:     cfg.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		},
	}
	if noCache {
		opts.Backend = cache.BackendNone
	}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		opts.Dir = filepath.Join(dir, "render")
	}
	rc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open render cache")
	}
	return rc, nil
}

// newLoader returns a data loader whose URL sources go through the HTTP
// response cache. Without a cache directory URLs are fetched uncached.
func newLoader(logger *log.Logger) *dataset.Loader {
	dir, err := cacheDir()
	if err != nil {
		return &dataset.Loader{}
	}
	hc, err := httputil.NewCache(filepath.Join(dir, "http"), httpCacheTTL)
	if err != nil {
		logger.Warn("HTTP cache disabled", "error", err)
		return &dataset.Loader{}
	}
	return &dataset.Loader{Fetcher: httputil.NewFetcher(hc, map[string]string{
		"User-Agent": appName + "/" + buildinfo.Version,
	})}
}

// openStore opens the snapshot store of cfg.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	return store.Open(ctx, store.Options{
		Backend: store.Backend(cfg.Store.Backend),
		Path:    cfg.Store.Path,
		Mongo: store.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
		},
	})
}

// openSessions opens the session store of cfg.
func openSessions(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Server.Sessions {
	case "redis":
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case "file":
		return session.NewFileStore(cfg.Server.SessionDir)
	}
	return session.NewMemoryStore(), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/vizlab/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string, falling back to def.
func parseFormats(s string, def []string) []string {
	if s == "" {
		return def
	}
	return strings.Split(s, ",")
}

// parseAssignments parses repeated key=value flags.
func parseAssignments(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--%s wants key=value, got %q", flag, p)
		}
		out[k] = v
	}
	return out, nil
}

// parseParams parses repeated name=number flags.
func parseParams(pairs []string) (map[string]float64, error) {
	raw, err := parseAssignments("param", pairs)
	if err != nil || raw == nil {
		return nil, err
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--param %s wants a number, got %q", k, v)
		}
		out[k] = f
	}
	return out, nil
}
