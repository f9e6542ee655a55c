package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// stderr is where spinners draw; tests swap it out.
var stderr io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line status while a pipeline stage runs. It stops
// on its own when ctx is cancelled.
type spinner struct {
	w    io.Writer
	quit chan struct{}
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	msg   string
	width int // widest message drawn, for clearing
}

// spin starts a spinner on w showing msg.
func spin(ctx context.Context, w io.Writer, msg string) *spinner {
	s := &spinner{
		w:     w,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		msg:   msg,
		width: len(msg),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	defer s.clear()

	t := time.NewTicker(spinnerInterval)
	defer t.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-t.C:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s",
				styleAccent.Render(spinnerFrames[frame%len(spinnerFrames)]),
				styleFaint.Render(s.msg))
			s.mu.Unlock()
		}
	}
}

// set replaces the message shown next to the animation.
func (s *spinner) set(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	s.width = max(s.width, len(msg))
}

// stop ends the animation and clears the line. Safe to call more than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
}
