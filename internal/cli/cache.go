package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vizlab/pkg/cache"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/httputil"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render and HTTP caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var renderOnly, httpOnly bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached renders and HTTP responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if renderOnly && httpOnly {
				return errors.New(errors.ErrCodeInvalidInput, "--render and --http are exclusive")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if !httpOnly {
				rc, err := openCache(cmd.Context(), cfg, false)
				if err != nil {
					return err
				}
				defer rc.Close()
				cl, ok := rc.(cache.Clearer)
				if !ok {
					return errors.New(errors.ErrCodeUnsupported, "%s cache cannot be cleared", cfg.Cache.Backend)
				}
				n, err := cl.Clear(cmd.Context())
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "clear render cache")
				}
				printSuccess("Cleared %d cached renders", n)
				printDetail("backend: %s", cfg.Cache.Backend)
			}

			if !renderOnly {
				n, dir, err := clearHTTPCache()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached HTTP responses", n)
				if dir != "" {
					printDetail("directory: %s", dir)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&renderOnly, "render", false, "only clear the render cache")
	cmd.Flags().BoolVar(&httpOnly, "http", false, "only clear the HTTP response cache")
	return cmd
}

// clearHTTPCache empties the URL source cache. A missing directory is an
// empty cache.
func clearHTTPCache() (int, string, error) {
	dir, err := cacheDir()
	if err != nil {
		return 0, "", errors.Wrap(errors.ErrCodeInternal, err, "get cache dir")
	}
	dir = filepath.Join(dir, "http")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, "", nil
	}
	hc, err := httputil.NewCache(dir, httpCacheTTL)
	if err != nil {
		return 0, "", errors.Wrap(errors.ErrCodeInternal, err, "open HTTP cache")
	}
	n, err := hc.Clear()
	if err != nil {
		return n, dir, errors.Wrap(errors.ErrCodeInternal, err, "clear HTTP cache")
	}
	return n, dir, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "get cache dir")
			}
			fmt.Println(dir)
			return nil
		},
	}
}
