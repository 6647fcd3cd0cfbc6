package perf

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSample(t *testing.T) {
	t0 := time.Unix(1000, 0)
	m := New(t0)
	for i := 0; i < 30; i++ {
		m.Tick()
	}

	s := m.Sample(t0.Add(500 * time.Millisecond))

	if s.FPS != 60 {
		t.Errorf("FPS = %v, want 60", s.FPS)
	}
	if s.Frames != 30 || s.Window != 500*time.Millisecond {
		t.Errorf("sample = %+v", s)
	}
	if m.FPS() != 60 || m.Last() != s {
		t.Errorf("stored reading = %v / %+v", m.FPS(), m.Last())
	}

	// The counter resets between windows.
	m.Tick()
	if s := m.Sample(t0.Add(1500 * time.Millisecond)); s.Frames != 1 || s.FPS != 1 {
		t.Errorf("second window = %+v", s)
	}
}

func TestSampleZeroWindow(t *testing.T) {
	t0 := time.Unix(0, 0)
	m := New(t0)
	m.Tick()
	if s := m.Sample(t0); s.FPS != 0 {
		t.Errorf("FPS over zero window = %v", s.FPS)
	}
}

func TestDisabled(t *testing.T) {
	var m Monitor
	if m.Enabled() {
		t.Fatal("zero Monitor should be disabled")
	}
	m.Tick()
	if s := m.Sample(time.Now()); s.Frames != 0 || s.FPS != 0 {
		t.Errorf("disabled sample = %+v", s)
	}

	now := time.Unix(10, 0)
	m.SetEnabled(true, now)
	m.Tick()
	m.Tick()
	if s := m.Sample(now.Add(time.Second)); s.FPS != 2 {
		t.Errorf("FPS = %v, want 2", s.FPS)
	}

	m.SetEnabled(false, now)
	if m.FPS() != 0 {
		t.Errorf("disabling should clear the reading, got %v", m.FPS())
	}
}

func TestConcurrentTicks(t *testing.T) {
	t0 := time.Unix(0, 0)
	m := New(t0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Tick()
			}
		}()
	}
	wg.Wait()

	if s := m.Sample(t0.Add(time.Second)); s.Frames != 800 {
		t.Errorf("Frames = %d, want 800", s.Frames)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	m := New(time.Now())
	ctx, cancel := context.WithCancel(context.Background())

	samples := make(chan Sample, 16)
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond, func(s Sample) {
			select {
			case samples <- s:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-samples:
	case <-time.After(time.Second):
		t.Fatal("no sample within 1s")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
