package form

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	t.Parallel()

	var fired, last atomic.Int64
	d := NewDebouncer(40 * time.Millisecond)
	for i := 1; i <= 5; i++ {
		i := i
		d.Schedule(func() {
			fired.Add(1)
			last.Store(int64(i))
		})
	}

	waitFor(t, func() bool { return fired.Load() == 1 })
	if last.Load() != 5 {
		t.Fatalf("only the newest callback should run, got %d", last.Load())
	}

	// Quiet period: nothing else fires.
	time.Sleep(80 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatalf("timer must be single-shot, fired %d times", fired.Load())
	}
}

func TestDebouncerFlushRunsPendingNow(t *testing.T) {
	t.Parallel()

	var fired atomic.Int64
	d := NewDebouncer(time.Hour)
	d.Schedule(func() { fired.Add(1) })
	d.Flush()
	if fired.Load() != 1 {
		t.Fatalf("flush should run the pending callback, got %d", fired.Load())
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if fired.Load() != 1 {
		t.Fatalf("empty flush must not re-run, got %d", fired.Load())
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	t.Parallel()

	var fired atomic.Int64
	d := NewDebouncer(20 * time.Millisecond)
	d.Schedule(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("stopped debouncer must not fire, got %d", fired.Load())
	}
}
