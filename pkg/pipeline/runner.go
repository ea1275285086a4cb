package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vizlab/pkg/cache"
	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/dataset"
	"github.com/matzehuels/vizlab/pkg/observability"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/scene"
	"github.com/matzehuels/vizlab/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, loader and logger; it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader *dataset.Loader
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a null cache is used (caching disabled).
// If loader is nil, dataset.DefaultLoader is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, loader *dataset.Loader, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if loader == nil {
		loader = dataset.DefaultLoader
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Loader: loader,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	name := opts.Chart.Name
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	d, err := r.load(ctx, opts.Chart, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Data = d
	result.DataHash = DataHash(d)
	result.Stats.Rows = Rows(d)
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded data",
		"chart", name,
		"rows", result.Stats.Rows,
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	c, state, err := r.Build(ctx, opts.Chart, d, opts.State)
	if err != nil {
		return nil, err
	}
	result.Chart = c
	result.State = state
	result.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Debug("built chart",
		"chart", name,
		"kind", c.Kind(),
		"elements", countElements(c),
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, c, state, result.DataHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"chart", name,
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the data sources of cfg.
func (r *Runner) Load(ctx context.Context, cfg chart.Config) (chart.Data, error) {
	return r.load(ctx, cfg, false)
}

func (r *Runner) load(ctx context.Context, cfg chart.Config, refresh bool) (chart.Data, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, cfg.Name)
	start := time.Now()

	l := r.Loader
	if refresh && !l.Refresh {
		l = &dataset.Loader{Fetcher: l.Fetcher, Refresh: true}
	}
	d, err := chart.Load(ctx, l, cfg)
	hooks.OnLoadComplete(ctx, cfg.Name, Rows(d), time.Since(start), err)
	return d, err
}

// Build constructs the chart for cfg from d and updates it for state, or
// for the chart defaults when state is nil. It returns the state shown.
func (r *Runner) Build(ctx context.Context, cfg chart.Config, d chart.Data, state *view.State) (chart.Chart, view.State, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, cfg.Name, string(cfg.Kind))
	start := time.Now()

	c, s, err := build(cfg, d, state)
	hooks.OnBuildComplete(ctx, cfg.Name, string(cfg.Kind), time.Since(start), err)
	return c, s, err
}

func build(cfg chart.Config, d chart.Data, state *view.State) (chart.Chart, view.State, error) {
	c, err := chart.New(cfg.Kind, cfg, d)
	if err != nil {
		return nil, view.State{}, err
	}
	s := c.Defaults()
	if state != nil {
		s = *state
	}
	if err := c.Update(s); err != nil {
		return nil, view.State{}, err
	}
	return c, s, nil
}

// RenderWithCacheInfo renders c in every format of opts and reports whether
// all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c chart.Chart, state view.State, dataHash string, opts Options) (map[sink.Format][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	name := c.Name()
	formats := renderOrder(opts.Formats, opts.Animate)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, name, formatNames(formats))
	start := time.Now()

	artifacts, hit, err := r.render(ctx, c, state, dataHash, formats, opts)
	hooks.OnRenderComplete(ctx, name, formatNames(formats), time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, c chart.Chart, state view.State, dataHash string, formats []sink.Format, opts Options) (map[sink.Format][]byte, bool, error) {
	keys := make(map[sink.Format]string, len(formats))
	for _, f := range formats {
		keys[f] = r.Keyer.RenderKey(c.Name(), opts.RenderKeyOpts(f, state, dataHash))
	}

	artifacts := make(map[sink.Format][]byte, len(formats))
	if !opts.Refresh {
		for _, f := range formats {
			if data, hit, err := r.Cache.Get(ctx, keys[f]); err == nil && hit {
				artifacts[f] = data
			}
		}
		if len(artifacts) == len(formats) {
			return artifacts, true, nil
		}
	}

	sinkOpts := opts.SinkOptions()
	for _, f := range formats {
		if _, ok := artifacts[f]; ok {
			continue
		}
		data, err := sink.Render(ctx, c, f, sinkOpts)
		if err != nil {
			return nil, false, err
		}
		artifacts[f] = data
		if err := r.Cache.Set(ctx, keys[f], data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "chart", c.Name(), "format", f, "error", err)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, c chart.Chart, state view.State, dataHash string, opts Options) (map[sink.Format][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, c, state, dataHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// renderOrder drops duplicate formats. Animated SVG goes first because
// every other sink flushes the pending transitions it exports.
func renderOrder(formats []sink.Format, animate bool) []sink.Format {
	out := make([]sink.Format, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if i := slices.Index(out, sink.FormatSVG); animate && i > 0 {
		out = slices.Delete(out, i, i+1)
		out = slices.Insert(out, 0, sink.FormatSVG)
	}
	return out
}

func formatNames(formats []sink.Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// Rows counts the records in d across its table and groups.
func Rows(d chart.Data) int {
	n := d.Table.Len()
	for _, g := range d.Groups {
		n += g.Table.Len()
	}
	return n
}

// DataHash fingerprints the loaded data of a chart.
func DataHash(d chart.Data) string {
	lookups := make(map[string]map[string]string, len(d.Lookups))
	for role, l := range d.Lookups {
		m := make(map[string]string, l.Len())
		for _, k := range l.Keys() {
			m[k] = l.Get(k)
		}
		lookups[role] = m
	}
	return fingerprint(struct {
		Table   dataset.Table
		Groups  dataset.Groups
		Lookups map[string]map[string]string
	}{d.Table, d.Groups, lookups})
}

// fingerprint hashes the JSON encoding of v. Values JSON cannot encode
// (NaN) fall back to their Go syntax.
func fingerprint(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = fmt.Appendf(nil, "%#v", v)
	}
	return cache.Hash(data)
}

func countElements(c chart.Chart) int {
	n := 0
	c.Root().Walk(func(*scene.Element, int) bool {
		n++
		return true
	})
	return n
}
