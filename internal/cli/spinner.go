package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// Spinner shows the current step of a pipeline run on one terminal line.
// Its message follows the progress the runner reports, and it remembers
// which formats came from the cache.
type Spinner struct {
	w      io.Writer
	style  spinner.Spinner
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	once    sync.Once
	started chan struct{}
	stopped chan struct{}

	mu       sync.Mutex
	message  string
	width    int
	cached   []string
	rendered []string
}

// newSpinner creates a spinner writing to w that stops when ctx is done.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		style:   spinner.MiniDot,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		started: make(chan struct{}),
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	close(s.started)
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.style.FPS)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.draw(s.style.Frames[i%len(s.style.Frames)])
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Observe updates the spinner from a pipeline progress report. It is
// meant as [pipeline.Options.Progress].
func (s *Spinner) Observe(p pipeline.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch p.Stage {
	case pipeline.StageState:
		s.message = "Building map state..."
	case pipeline.StageCached:
		s.cached = append(s.cached, p.Formats...)
		s.message = fmt.Sprintf("Cached %s", strings.Join(s.cached, ", "))
	case pipeline.StageRender:
		s.rendered = append(s.rendered, p.Formats...)
		s.message = fmt.Sprintf("Rendering %s...", strings.Join(p.Formats, ", "))
	}
}

// Message returns the line currently shown.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Cached returns the formats served from the cache, in report order.
func (s *Spinner) Cached() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cached...)
}

// Rendered returns the formats that were rendered fresh.
func (s *Spinner) Rendered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rendered...)
}

// Stop stops the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		select {
		case <-s.started:
			<-s.stopped
		default:
		}
		s.clearLine()
	})
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context the spinner was created with is
// done. Stop alone does not cancel it.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := strings.TrimSpace(frame) + " " + s.message
	s.width = max(s.width, len(line))
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(strings.TrimSpace(frame)), StyleDim.Render(s.message))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}
