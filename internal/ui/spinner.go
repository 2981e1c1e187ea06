package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner displays an animated progress indicator, on stderr by default.
type Spinner struct {
	mu   sync.Mutex
	out  io.Writer
	msg  string
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a new Spinner (not yet running).
func NewSpinner() *Spinner {
	return &Spinner{out: os.Stderr}
}

// Start begins the spinner animation with the given message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(done)
}

// Update changes the spinner message while it's running.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop halts the spinner and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.mu.Unlock()
	s.wg.Wait()

	fmt.Fprintf(s.out, "\r\033[K")
}

func (s *Spinner) run(done <-chan struct{}) {
	defer s.wg.Done()
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(s.out, "\r\033[K%c %s", frames[i%len(frames)], msg)
			i++
		}
	}
}
