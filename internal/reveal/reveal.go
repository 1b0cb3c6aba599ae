// Package reveal models the typewriter effect of a dialogue line as a timed
// task that can be skipped at any point.
package reveal

import (
	"math"
	"sync"
	"time"
)

// DefaultCharsPerSecond is the reveal rate used when none is configured.
const DefaultCharsPerSecond = 40

// Task reveals text one rune at a time at a fixed rate. It is safe for use
// from multiple goroutines.
type Task struct {
	mu      sync.Mutex
	text    []rune
	rate    float64
	started time.Time
	skipped bool
	done    chan struct{}
	closed  bool
}

// New prepares a task for text. A non-positive rate reveals everything at
// once.
func New(text string, charsPerSecond float64) *Task {
	return &Task{
		text: []rune(text),
		rate: charsPerSecond,
		done: make(chan struct{}),
	}
}

// Start anchors the reveal at now. Text with nothing to animate completes
// immediately.
func (t *Task) Start(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = now
	if len(t.text) == 0 || t.rate <= 0 || math.IsInf(t.rate, 0) || math.IsNaN(t.rate) {
		t.finishLocked()
	}
}

// Duration is how long the full reveal takes.
func (t *Task) Duration() time.Duration {
	if t.rate <= 0 || math.IsInf(t.rate, 0) || math.IsNaN(t.rate) {
		return 0
	}
	return time.Duration(float64(len(t.text)) / t.rate * float64(time.Second))
}

// Text returns the full text.
func (t *Task) Text() string { return string(t.text) }

// Visible returns the portion revealed at the given instant.
func (t *Task) Visible(at time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.text[:t.shownLocked(at)])
}

func (t *Task) shownLocked(at time.Time) int {
	if t.closed || t.skipped {
		return len(t.text)
	}
	if t.started.IsZero() || at.Before(t.started) {
		return 0
	}
	n := int(at.Sub(t.started).Seconds() * t.rate)
	if n > len(t.text) {
		n = len(t.text)
	}
	return n
}

// Tick finishes the task once at has reached the end of the reveal and
// reports whether it is done.
func (t *Task) Tick(at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed && !t.started.IsZero() && t.shownLocked(at) >= len(t.text) {
		t.finishLocked()
	}
	return t.closed
}

// SkipToEnd completes the reveal immediately. It reports whether the task
// was still running.
func (t *Task) SkipToEnd() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.skipped = true
	t.finishLocked()
	return true
}

// Finished reports whether the reveal completed or was skipped.
func (t *Task) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Done is closed when the reveal completes or is skipped.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) finishLocked() {
	if !t.closed {
		t.closed = true
		close(t.done)
	}
}
