package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged as warnings. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) done(msg string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Warn(msg+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(msg, keyvals...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, chart string) {
	h.logger.Debug("loading data", "chart", chart)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, chart string, rows int, d time.Duration, err error) {
	h.done("loaded data", err, "chart", chart, "rows", rows, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnBuildStart(_ context.Context, chart, kind string) {
	h.logger.Debug("building chart", "chart", chart, "kind", kind)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, chart, kind string, d time.Duration, err error) {
	h.done("built chart", err, "chart", chart, "kind", kind, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnRenderStart(_ context.Context, chart string, formats []string) {
	h.logger.Debug("rendering", "chart", chart, "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, chart string, formats []string, d time.Duration, err error) {
	h.done("rendered", err, "chart", chart, "formats", strings.Join(formats, ","), "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", humanize.Bytes(uint64(size)))
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("fetch", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("fetched", "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("fetch failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
