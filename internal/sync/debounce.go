package sync

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into a single invocation of fn with
// the most recent value. A zero delay invokes synchronously.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	value   T
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call schedules fn with value after the delay. A call while a previous
// one is pending replaces its value and restarts the clock.
func (d *Debouncer[T]) Call(value T) {
	if d.delay <= 0 {
		d.fn(value)
		return
	}
	d.mu.Lock()
	d.value = value
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
	d.mu.Unlock()
}

// Flush runs any pending invocation immediately, on the caller's
// goroutine. Returns whether an invocation ran.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	value := d.value
	d.mu.Unlock()

	d.fn(value)
	return true
}

// Cancel drops any pending invocation without running it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}

// Pending reports whether a call is waiting to fire.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	value := d.value
	d.mu.Unlock()

	d.fn(value)
}
