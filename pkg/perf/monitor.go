// Package perf samples rendering frame rate for diagnostics.
//
// A [Monitor] counts frames as they are rendered and, on a roughly
// one-second cadence, turns the count into frames per second:
//
//	fps = frames / elapsed_ms × 1000
//
// The counter is reset after every sample. Samples are purely observational:
// they are shown in the UI and forwarded to the observability frame hooks,
// and never influence clustering or layout.
//
// All methods are safe for concurrent use. Frame ticks typically arrive from
// the render loop while sampling runs on its own goroutine.
package perf

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/codegraph/pkg/observability"
)

// DefaultInterval is the sampling period used by [Monitor.Run] when none is
// given.
const DefaultInterval = time.Second

// Sample is one sampling window.
type Sample struct {
	FPS    float64
	Frames int64
	Window time.Duration
	At     time.Time
}

// Monitor counts frames and computes frame rate. The zero value is a
// disabled monitor; use [New] for an enabled one.
type Monitor struct {
	enabled atomic.Bool
	frames  atomic.Int64
	fps     atomic.Uint64 // math.Float64bits of the last sample

	mu    sync.Mutex
	start time.Time
	last  Sample
}

// New returns an enabled monitor whose first window starts at now.
func New(now time.Time) *Monitor {
	m := &Monitor{start: now}
	m.enabled.Store(true)
	return m
}

// Enabled reports whether frames are being counted.
func (m *Monitor) Enabled() bool { return m.enabled.Load() }

// SetEnabled turns counting on or off. Enabling restarts the window at now;
// disabling clears the counter and the last reading.
func (m *Monitor) SetEnabled(on bool, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled.Store(on)
	m.frames.Store(0)
	m.start = now
	if !on {
		m.fps.Store(0)
		m.last = Sample{}
	}
}

// Tick records one rendered frame. It is a no-op while disabled.
func (m *Monitor) Tick() {
	if m.enabled.Load() {
		m.frames.Add(1)
	}
}

// Sample closes the current window at now, stores and returns its frame rate,
// and starts a new window. A zero-length window yields 0 fps.
func (m *Monitor) Sample(now time.Time) Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled.Load() {
		return Sample{At: now}
	}

	frames := m.frames.Swap(0)
	window := now.Sub(m.start)
	m.start = now

	s := Sample{Frames: frames, Window: window, At: now}
	if ms := float64(window) / float64(time.Millisecond); ms > 0 {
		s.FPS = float64(frames) / ms * 1000
	}
	m.fps.Store(math.Float64bits(s.FPS))
	m.last = s
	return s
}

// FPS returns the frame rate from the most recent sample.
func (m *Monitor) FPS() float64 {
	return math.Float64frombits(m.fps.Load())
}

// Last returns the most recent sample.
func (m *Monitor) Last() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Run samples every interval until ctx is done, reporting each sample to
// the observability frame hooks and, when non-nil, to onSample.
func (m *Monitor) Run(ctx context.Context, interval time.Duration, onSample func(Sample)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !m.enabled.Load() {
				continue
			}
			s := m.Sample(now)
			observability.Frame().OnFPSSample(ctx, s.FPS, s.Frames, s.Window)
			if onSample != nil {
				onSample(s)
			}
		}
	}
}
