package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnBuildStart(_ context.Context, harness string) {
	h.logger.Debug("build start", "harness", harness)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, harness string, links int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "harness", harness, "duration", d, "err", err)
		return
	}
	h.logger.Debug("build done", "harness", harness, "links", links, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, harness, format string) {
	h.logger.Debug("render start", "harness", harness, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, harness, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "harness", harness, "format", format, "err", err)
		return
	}
	h.logger.Debug("render done", "harness", harness, "format", format, "bytes", size, "duration", d)
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
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
