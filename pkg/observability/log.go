package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, failures at warn.
// It implements all hook interfaces; install it with [Register].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger under the "hooks" prefix.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnFetchStart(_ context.Context, project, view string) {
	h.logger.Debug("fetch start", "project", project, "view", view)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, project, view string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("fetch failed", "project", project, "view", view, "elapsed", d, "error", err)
		return
	}
	h.logger.Debug("fetch done", "project", project, "view", view, "nodes", nodes, "elapsed", d)
}

func (h *LogHooks) OnCluster(_ context.Context, before, after, clusters int) {
	h.logger.Debug("clustered", "before", before, "after", after, "clusters", clusters)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, strategy string, nodes int) {
	h.logger.Debug("layout start", "strategy", strategy, "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, strategy string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "strategy", strategy, "error", err)
		return
	}
	h.logger.Debug("layout done", "strategy", strategy, "elapsed", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", strings.Join(formats, ","), "error", err)
		return
	}
	h.logger.Debug("render done", "formats", strings.Join(formats, ","), "elapsed", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "elapsed", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("request failed", "method", method, "host", host, "path", path, "error", err)
}

func (h *LogHooks) OnFPSSample(_ context.Context, fps float64, frames int64, window time.Duration) {
	h.logger.Debug("fps", "fps", fps, "frames", frames, "window", window)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
	_ FrameHooks    = (*LogHooks)(nil)
)
