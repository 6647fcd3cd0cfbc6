// Package observability defines hook points for instrumenting codegraph.
//
// Libraries report events through the registered hooks: pipeline stages
// (fetch, cluster, layout, render), cache lookups, backend HTTP calls and
// frame-rate samples. Nothing is recorded until a binary registers hooks;
// the defaults are no-ops, so the core packages carry no metrics or tracing
// dependency.
//
// Register hooks once at startup. [Register] installs every hook interface
// its argument implements:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// Call sites fetch the current hooks at the point of use:
//
//	observability.Pipeline().OnFetchStart(ctx, project, view)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the graph pipeline.
type PipelineHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, project, view string)
	OnFetchComplete(ctx context.Context, project, view string, nodeCount int, duration time.Duration, err error)

	// OnCluster records a clustering pass and the node counts around it.
	OnCluster(ctx context.Context, nodesBefore, nodesAfter, clusters int)

	// Layout events
	OnLayoutStart(ctx context.Context, strategy string, nodeCount int)
	OnLayoutComplete(ctx context.Context, strategy string, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Frame Hooks
// =============================================================================

// FrameHooks receives frame-rate samples from the performance monitor.
type FrameHooks interface {
	// OnFPSSample records one sampling window.
	OnFPSSample(ctx context.Context, fps float64, frames int64, window time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnCluster(context.Context, int, int, int)                         {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopFrameHooks is a no-op implementation of FrameHooks.
type NoopFrameHooks struct{}

func (NoopFrameHooks) OnFPSSample(context.Context, float64, int64, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
	frame    FrameHooks
}

var hooks = registry{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
	frame:    NoopFrameHooks{},
}

// Register installs h for every hook interface it implements and reports
// whether it implemented any.
func Register(h any) bool {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	installed := false
	if p, ok := h.(PipelineHooks); ok {
		hooks.pipeline, installed = p, true
	}
	if c, ok := h.(CacheHooks); ok {
		hooks.cache, installed = c, true
	}
	if x, ok := h.(HTTPHooks); ok {
		hooks.http, installed = x, true
	}
	if f, ok := h.(FrameHooks); ok {
		hooks.frame, installed = f, true
	}
	return installed
}

// SetPipelineHooks replaces the pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		hooks.mu.Lock()
		hooks.pipeline = h
		hooks.mu.Unlock()
	}
}

// SetCacheHooks replaces the cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		hooks.mu.Lock()
		hooks.cache = h
		hooks.mu.Unlock()
	}
}

// SetHTTPHooks replaces the HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		hooks.mu.Lock()
		hooks.http = h
		hooks.mu.Unlock()
	}
}

// SetFrameHooks replaces the frame-rate hooks. A nil h is ignored.
func SetFrameHooks(h FrameHooks) {
	if h != nil {
		hooks.mu.Lock()
		hooks.frame = h
		hooks.mu.Unlock()
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.http
}

// Frame returns the registered frame-rate hooks.
func Frame() FrameHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.frame
}

// Reset restores every hook to its no-op default.
func Reset() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.pipeline = NoopPipelineHooks{}
	hooks.cache = NoopCacheHooks{}
	hooks.http = NoopHTTPHooks{}
	hooks.frame = NoopFrameHooks{}
}
