// Package debounce provides a re-armed delayed action: repeated triggers
// within the quiet period collapse into a single run of the action after the
// last trigger. A single timer handle is re-armed against a stored deadline
// instead of rescheduling itself recursively.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs an action once per burst of triggers, after the configured
// delay has elapsed without a new trigger. Trigger, Flush and Stop are safe
// for concurrent use, and action runs never overlap: a burst that fires
// while the action is still executing waits for it to return.
type Debouncer struct {
	delay  time.Duration
	action func()

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	stopped  bool

	// runMu serializes action runs: a trigger landing while the action is
	// still executing arms a fresh timer, and its run must wait for the
	// current one to return.
	runMu sync.Mutex
}

// New creates a Debouncer that runs action delay after the most recent
// Trigger. A non-positive delay still defers the action to a timer goroutine
// but applies no quiet period.
func New(delay time.Duration, action func()) *Debouncer {
	return &Debouncer{
		delay:  delay,
		action: action,
	}
}

// Trigger pushes the deadline to now+delay and arms the timer if none is
// pending. An already-armed timer is left alone; when it fires early it
// re-arms itself for the remainder instead of running the action.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.deadline = time.Now().Add(d.delay)
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	}
}

// fire runs when the timer expires. If Trigger moved the deadline since the
// timer was armed, the timer is re-armed for the remaining wait; otherwise
// the action runs once and the pending state clears.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	if remaining := time.Until(d.deadline); remaining > 0 {
		d.timer.Reset(remaining)
		d.mu.Unlock()
		return
	}

	d.timer = nil
	action := d.action
	d.mu.Unlock()

	d.runMu.Lock()
	action()
	d.runMu.Unlock()
}

// Flush runs the action immediately if a trigger is pending, cancelling the
// timer. It does nothing when the debouncer is idle or stopped.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}

	d.timer.Stop()
	d.timer = nil
	action := d.action
	d.mu.Unlock()

	d.runMu.Lock()
	action()
	d.runMu.Unlock()
}

// Stop cancels any pending action and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
