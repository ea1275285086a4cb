// Package pipeline provides the chart pipeline shared by the CLI, the HTTP
// server and the refresh scheduler.
//
// # Architecture
//
// A chart is produced in three stages:
//
//  1. Load: read the data sources named by the chart config (local files
//     or URLs) into a chart.Data
//  2. Build: construct the chart and update it for a view state
//  3. Render: encode the scene in one or more output formats
//
// Rendered artifacts are cached under a key derived from the chart config,
// the view state, a fingerprint of the loaded data and the format, so a
// repeated run with unchanged inputs skips the sinks entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, loader, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Chart:   cfg,
//	    Formats: []sink.Format{sink.FormatSVG, sink.FormatPNG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[sink.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vizlab/pkg/cache"
	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/view"
)

// DefaultFormat is rendered when Options.Formats is empty.
const DefaultFormat = sink.FormatSVG

// Options configures a pipeline run.
type Options struct {
	// Chart is the chart to produce.
	Chart chart.Config `json:"chart"`
	// State is the view state to render; nil means the chart defaults.
	State *view.State `json:"state,omitempty"`

	Formats []sink.Format   `json:"formats,omitempty"`
	Animate bool            `json:"animate,omitempty"`
	Title   string          `json:"title,omitempty"`
	DOT     sink.DOTOptions `json:"dot"`
	// Refresh skips the render cache and refetches URL sources.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the built chart, updated for State.
	Chart chart.Chart
	// Data is what the chart was built from.
	Data chart.Data
	// State is the view state the artifacts show.
	State view.State
	// DataHash fingerprints Data.
	DataHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[sink.Format][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks the chart config and formats and applies
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateChartName(o.Chart.Name); err != nil {
		return err
	}
	if _, err := chart.ParseKind(string(o.Chart.Kind)); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRender checks the formats and applies render defaults.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range o.Formats {
		if _, err := sink.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []sink.Format{DefaultFormat}
	}
	if o.Title == "" {
		o.Title = o.Chart.Name
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SinkOptions returns the options passed to every sink.
func (o *Options) SinkOptions() sink.Options {
	return sink.Options{Animate: o.Animate, Title: o.Title, DOT: o.DOT}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(f sink.Format, s view.State, dataHash string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Kind:    string(o.Chart.Kind),
		Format:  string(f),
		Animate: o.Animate && f == sink.FormatSVG,
		Config:  fingerprint(struct {
			Chart chart.Config
			Title string
			DOT   sink.DOTOptions
		}{o.Chart, o.Title, o.DOT}),
		State: fingerprint(s),
		Data:  dataHash,
	}
}
