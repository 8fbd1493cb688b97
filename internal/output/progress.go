package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar displays a progress bar with percentage and description.
// Example: [=========>          ] 45% Resolving applications
type ProgressBar struct {
	total       int
	current     int
	description string
	width       int
	mu          sync.Mutex
	writer      io.Writer
}

// NewProgress creates a new progress bar writing to stderr.
func NewProgress(total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       40,
		writer:      os.Stderr,
	}
}

// SetWriter sets the output writer (useful for testing).
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Set records progress and redraws the bar. The total may change while
// running, since it is only known once enumeration finished.
func (p *ProgressBar) Set(current, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = min(current, total)
	p.render()
}

// Finish completes the progress bar and moves to a new line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	done := p.current == p.total
	p.current = p.total

	if writerIsTTY(p.writer) {
		p.render()
		fmt.Fprintln(p.writer)
	} else if !done {
		p.render()
	}
}

// render draws the bar. Must be called with lock held.
func (p *ProgressBar) render() {
	percentage, filled := 0, 0
	if p.total > 0 {
		percentage = (p.current * 100) / p.total
		filled = (p.current * p.width) / p.total
	}

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s %3d%% %s", bar.String(), percentage, p.description)
	} else if p.current == p.total {
		// Non-TTY: a single line on completion.
		fmt.Fprintf(p.writer, "%s %3d%% %s\n", bar.String(), percentage, p.description)
	}
}

// Spinner displays an animated spinner with a message while a device is
// being queried.
type Spinner struct {
	message string
	running bool
	chars   []string
	mu      sync.Mutex
	writer  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner creates a new spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  os.Stderr,
		done:    make(chan struct{}),
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the spinner animation.
// On a non-TTY writer the message is printed once instead.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				fmt.Fprintf(s.writer, "\r%s  %s", s.chars[idx], s.message)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	}
}
