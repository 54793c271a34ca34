package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/htdecomp/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr while a search runs. With a
// counter attached, the line also shows how many separators were tried.
type Spinner struct {
	out     io.Writer
	message string
	counter *observability.SearchCounter

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	stop    sync.Once

	mu    sync.Mutex
	width int // of the last line written
}

// newSearchSpinner creates a spinner that stops when ctx is cancelled.
// counter may be nil.
func newSearchSpinner(ctx context.Context, out io.Writer, message string, counter *observability.SearchCounter) *Spinner {
	if out == nil {
		out = os.Stderr
	}
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     out,
		message: message,
		counter: counter,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	if status := searchStatus(s.counter); status != "" {
		line += " " + StyleDim.Render(status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := max(s.width-lipgloss.Width(line), 0)
	fmt.Fprintf(s.out, "\r%s%s", line, strings.Repeat(" ", pad))
	s.width = lipgloss.Width(line)
}

// searchStatus summarizes the counter, or returns "" before the first
// separator.
func searchStatus(c *observability.SearchCounter) string {
	if c == nil || c.Separators.Load() == 0 {
		return ""
	}
	parts := []string{plural(c.Separators.Load(), "separator")}
	if n := c.MemoHits.Load(); n > 0 {
		parts = append(parts, plural(n, "memo hit"))
	}
	if n := c.Fallbacks.Load(); n > 0 {
		parts = append(parts, plural(n, "fallback"))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func plural(n int64, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Stop stops the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context was cancelled. Stop
// cancels it too, so ask before stopping.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
