// Package observ records coarse phase timings of CLI runs.
package observ

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase is one timed step of a run.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer collects phases in the order they finish. It is safe for
// concurrent use; the zero value is ready.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

// Start begins a phase; calling the returned func with an optional note
// records it.
func (t *Timer) Start(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	started := time.Now()
	return func(note string) {
		t.mu.Lock()
		t.phases = append(t.phases, Phase{Name: name, Dur: time.Since(started), Note: note})
		t.mu.Unlock()
	}
}

// Phases returns a copy of the recorded phases.
func (t *Timer) Phases() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Phase(nil), t.phases...)
}

// Total sums the recorded phase durations.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Dur
	}
	return total
}

// WriteSummary prints one line per phase followed by the total.
func (t *Timer) WriteSummary(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range t.Phases() {
		line := fmt.Sprintf("  %-12s %8.2f ms", p.Name, millis(p.Dur))
		if p.Note != "" {
			line += "  (" + p.Note + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-12s %8.2f ms\n", "total", millis(t.Total()))
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
