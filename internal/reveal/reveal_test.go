package reveal

import (
	"testing"
	"time"
)

func TestRevealProgress(t *testing.T) {
	task := New("hello", 10)
	if got := task.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration = %v, want 500ms", got)
	}
	start := time.Unix(100, 0)
	task.Start(start)

	if got := task.Visible(start); got != "" {
		t.Errorf("Visible at start = %q", got)
	}
	if got := task.Visible(start.Add(250 * time.Millisecond)); got != "he" {
		t.Errorf("Visible at 250ms = %q, want he", got)
	}
	if task.Tick(start.Add(300 * time.Millisecond)) {
		t.Error("task should still be running at 300ms")
	}
	if !task.Tick(start.Add(time.Second)) {
		t.Error("task should be done after 1s")
	}
	select {
	case <-task.Done():
	default:
		t.Error("Done should be closed")
	}
	if task.SkipToEnd() {
		t.Error("SkipToEnd on a finished task should report false")
	}
}

func TestSkipToEnd(t *testing.T) {
	task := New("a long line of text", 1)
	start := time.Now()
	task.Start(start)
	if !task.SkipToEnd() {
		t.Fatal("SkipToEnd should report a running task")
	}
	if got := task.Visible(start); got != "a long line of text" {
		t.Errorf("Visible after skip = %q", got)
	}
	if !task.Finished() {
		t.Error("task should be finished")
	}
}

func TestInstantReveal(t *testing.T) {
	for _, task := range []*Task{New("", 20), New("text", 0)} {
		task.Start(time.Now())
		if !task.Finished() {
			t.Errorf("task %q should finish immediately", task.Text())
		}
	}
}
