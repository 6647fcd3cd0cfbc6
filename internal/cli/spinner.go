package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner draws a single animated status line on stderr while a command
// works. Pipeline hooks update its message as stages progress.
type Spinner struct {
	out   io.Writer
	style spinner.Spinner

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	exited  chan struct{}
	once    sync.Once

	mu      sync.Mutex
	message string
	width   int
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext returns a spinner that clears itself when ctx ends.
func newSpinnerWithContext(parent context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(parent)
	return &Spinner{
		out:     os.Stderr,
		style:   spinner.Dot,
		parent:  parent,
		ctx:     ctx,
		cancel:  cancel,
		exited:  make(chan struct{}),
		message: message,
	}
}

// Start animates the spinner until [Spinner.Stop] or context cancellation.
// Call it at most once.
func (s *Spinner) Start() {
	s.started.Store(true)
	go func() {
		defer close(s.exited)
		frames := s.style.Frames
		tick := time.NewTicker(s.style.FPS)
		defer tick.Stop()
		for i := 0; ; i++ {
			s.draw(frames[i%len(frames)])
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-tick.C:
			}
		}
	}()
}

// SetMessage replaces the status text.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Message returns the status text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop ends the animation and clears the line. Extra calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.exited
		}
	})
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context has ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	pad := max(s.width-len(s.message), 0)
	fmt.Fprint(s.out, "\r"+line+strings.Repeat(" ", pad))
	s.width = max(s.width, len(s.message))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", max(s.width, len(s.message))+4)+"\r")
}
