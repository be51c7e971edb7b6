// Package debounce provides a schedule-or-replace coalescing timer.
//
// A Debouncer delays a function call until a quiet period has elapsed.
// Scheduling again before the window expires replaces the pending call, so
// a burst of triggers collapses into one execution of the last function:
//
//	d := debounce.New(500 * time.Millisecond)
//	d.Schedule(refetch) // rapid repeated calls coalesce into the last one
//	defer d.Stop()
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated calls into the last one scheduled
// within the window.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New returns a Debouncer with the given quiet window.
func New(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule arranges for fn to run after the window elapses. A pending
// earlier schedule is cancelled and replaced; fn runs on the timer's
// goroutine.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending call. It does not wait for a call that has
// already started.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs fn immediately, cancelling any pending schedule first.
func (d *Debouncer) Flush(fn func()) {
	d.Stop()
	fn()
}
