package schedule

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/render/sink"
)

// Refresher re-renders gallery charts from freshly fetched data and writes
// the artifacts to Dir.
type Refresher struct {
	Runner  *pipeline.Runner
	Charts  []chart.Config
	Dir     string
	Formats []sink.Format
	Animate bool
	Logger  *log.Logger
}

// Run renders every chart. A failing chart does not stop the others; the
// returned error counts the failures.
func (r *Refresher) Run(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	failed := 0
	for _, cfg := range r.Charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := r.Runner.Execute(ctx, pipeline.Options{
			Chart:   cfg,
			Formats: r.Formats,
			Animate: r.Animate,
			Refresh: true,
		})
		if err != nil {
			logger.Error("refresh failed", "chart", cfg.Name, "error", err)
			failed++
			continue
		}
		paths, err := pipeline.WriteArtifacts(r.Dir, cfg.Name, res.Artifacts)
		if err != nil {
			logger.Error("refresh failed", "chart", cfg.Name, "error", err)
			failed++
			continue
		}
		logger.Debug("refreshed chart", "chart", cfg.Name, "files", paths)
	}
	if failed > 0 {
		return errors.New(errors.ErrCodeInternal, "%d of %d charts failed to refresh", failed, len(r.Charts))
	}
	return nil
}
