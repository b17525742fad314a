package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var spinnerFrames = []rune(`⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏`)

// Spinner is a progress indicator shared by concurrently running tasks.
// Every task calls Start when it begins and Stop when it is done; the
// indicator spins while at least one task is running.
type Spinner struct {
	mu         sync.Mutex
	delay      time.Duration
	w          io.Writer
	message    string
	lastOutput string
	hideCursor bool

	active int
	stop   chan struct{}
	done   chan struct{}
}

// NewSpinner returns a spinner writing msg and the animation to stderr.
func NewSpinner(msg string, d time.Duration, hideCursor bool) *Spinner {
	return &Spinner{
		delay:      d,
		w:          os.Stderr,
		message:    msg,
		hideCursor: hideCursor,
	}
}

// SetOutput changes the writer of a spinner that is not running.
func (s *Spinner) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// Start registers a running task and starts the animation if it is the first one.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active++
	if s.active > 1 {
		return
	}
	if s.hideCursor && runtime.GOOS != "windows" {
		// hides the cursor
		fmt.Fprint(s.w, "\033[?25l")
	}
	s.stop, s.done = make(chan struct{}), make(chan struct{})
	go s.spin(s.stop, s.done)
}

func (s *Spinner) spin(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		s.clear()
		s.lastOutput = fmt.Sprintf("\r%s%s %c%s", s.message, SuccessColor, spinnerFrames[i%len(spinnerFrames)], DefaultColor)
		fmt.Fprint(s.w, s.lastOutput)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop marks a task as finished and prints msg, if any, on its own line.
// The animation ends with the last running task. Extra calls are no-ops.
func (s *Spinner) Stop(msg string) {
	s.mu.Lock()
	if s.active == 0 {
		s.mu.Unlock()
		return
	}
	s.active--
	if s.active > 0 {
		s.clear()
		if msg != "" {
			fmt.Fprintln(s.w, msg)
		}
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.restoreCursor()
	if msg != "" {
		fmt.Fprint(s.w, msg)
	}
}

// RestoreCursor makes the cursor visible again, e.g. after an interrupt.
func (s *Spinner) RestoreCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreCursor()
}

func (s *Spinner) restoreCursor() {
	if s.hideCursor && runtime.GOOS != "windows" {
		fmt.Fprint(s.w, "\033[?25h")
	}
}

// clear deletes the last line. Caller must hold the lock.
func (s *Spinner) clear() {
	n := utf8.RuneCountInString(s.lastOutput)
	if n == 0 {
		return
	}
	if runtime.GOOS == "windows" {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", n)+"\r")
	} else {
		// "\033[K" for macOS Terminal
		for _, c := range []string{"\b", "\127", "\b", "\033[K"} {
			fmt.Fprint(s.w, strings.Repeat(c, n))
		}
		fmt.Fprint(s.w, "\r\033[K")
	}
	s.lastOutput = ""
}
