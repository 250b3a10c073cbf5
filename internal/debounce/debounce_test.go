package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// waitForCount polls until the counter reaches want or the deadline passes
func waitForCount(t *testing.T, counter *atomic.Int32, want int32, deadline time.Duration) {
	t.Helper()
	start := time.Now()
	for time.Since(start) < deadline {
		if counter.Load() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Counter reached %d, expected %d within %v", counter.Load(), want, deadline)
}

// TestSingleTrigger verifies the action runs once after the delay
func TestSingleTrigger(t *testing.T) {
	var runs atomic.Int32
	d := New(10*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Trigger()
	waitForCount(t, &runs, 1, time.Second)

	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("Expected exactly 1 run, got %d", got)
	}
}

// TestBurstCollapses verifies rapid triggers produce a single run
func TestBurstCollapses(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	waitForCount(t, &runs, 1, time.Second)

	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("Expected a burst to collapse to 1 run, got %d", got)
	}
}

// TestDeadlineExtension verifies a trigger during the quiet period delays the
// action rather than running it early
func TestDeadlineExtension(t *testing.T) {
	var runs atomic.Int32
	d := New(30*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Trigger()
	time.Sleep(20 * time.Millisecond)
	d.Trigger()

	// Original deadline has passed; the moved one has not.
	time.Sleep(15 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("Expected no run before the extended deadline, got %d", got)
	}

	waitForCount(t, &runs, 1, time.Second)
}

// TestStopCancelsPending verifies Stop prevents a pending action from running
func TestStopCancelsPending(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("Expected no runs after Stop, got %d", got)
	}

	// Triggers after Stop are ignored.
	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("Expected triggers after Stop to be ignored, got %d runs", got)
	}
}

// TestFlushRunsImmediately verifies Flush short-circuits the quiet period
func TestFlushRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	d := New(time.Hour, func() { runs.Add(1) })
	defer d.Stop()

	d.Trigger()
	d.Flush()

	if got := runs.Load(); got != 1 {
		t.Errorf("Expected Flush to run the pending action, got %d runs", got)
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if got := runs.Load(); got != 1 {
		t.Errorf("Expected idle Flush to be a no-op, got %d runs", got)
	}
}

// TestRunsDoNotOverlap verifies a trigger arriving during a slow action run
// waits for it instead of running a second action concurrently
func TestRunsDoNotOverlap(t *testing.T) {
	var active, maxActive, runs atomic.Int32
	d := New(10*time.Millisecond, func() {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(60 * time.Millisecond)
		active.Add(-1)
		runs.Add(1)
	})
	defer d.Stop()

	d.Trigger()
	// Let the first run start, then trigger again while it is in flight.
	time.Sleep(30 * time.Millisecond)
	d.Trigger()

	waitForCount(t, &runs, 2, 2*time.Second)

	if got := maxActive.Load(); got != 1 {
		t.Errorf("Expected action runs to be serialized, saw %d concurrent runs", got)
	}
}

// TestRetriggersAfterRun verifies the debouncer is reusable across bursts
func TestRetriggersAfterRun(t *testing.T) {
	var runs atomic.Int32
	d := New(5*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Trigger()
	waitForCount(t, &runs, 1, time.Second)

	d.Trigger()
	waitForCount(t, &runs, 2, time.Second)
}
