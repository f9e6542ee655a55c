package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline, cache and HTTP events to a logger at debug
// level. Layout fallbacks are reported as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

func (h *LogHooks) OnBuildStart(_ context.Context, center string, relations int) {
	h.logger.Debug("build started", "center", center, "relations", relations)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, links int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("build complete", "nodes", nodes, "links", links, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, requested string, nodes int) {
	h.logger.Debug("layout started", "type", requested, "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, requested, used string, fallback bool, d time.Duration, err error) {
	if fallback {
		h.logger.Warn("layout fell back", "requested", requested, "used", used, "error", err)
		return
	}
	h.logger.Debug("layout complete", "type", used, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, failed int, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "failed_items", failed, "duration", d, "error", err)
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

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}
