package sync

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncerCoalescesToLastValue(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(10*time.Millisecond, rec.record)

	d.Call("a")
	d.Call("b")
	d.Call("c")

	deadline := time.Now().Add(time.Second)
	for {
		if values := rec.snapshot(); len(values) > 0 {
			if len(values) != 1 || values[0] != "c" {
				t.Fatalf("got %v, want [c]", values)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced call never fired")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDebouncerFlushRunsOnce(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.record)

	d.Call("a")
	d.Call("b")
	if !d.Flush() {
		t.Fatal("expected Flush to report a pending invocation")
	}
	if d.Flush() {
		t.Fatal("second Flush should be a no-op")
	}
	if d.Pending() {
		t.Fatal("nothing should be pending after Flush")
	}

	values := rec.snapshot()
	if len(values) != 1 || values[0] != "b" {
		t.Fatalf("got %v, want [b]", values)
	}
}

func TestDebouncerCancelDropsPending(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(5*time.Millisecond, rec.record)

	d.Call("a")
	d.Cancel()

	time.Sleep(30 * time.Millisecond)
	if values := rec.snapshot(); len(values) != 0 {
		t.Fatalf("cancelled call still fired: %v", values)
	}
	if d.Flush() {
		t.Fatal("Flush after Cancel should be a no-op")
	}
}

func TestDebouncerZeroDelayIsSynchronous(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(0, rec.record)

	d.Call("a")
	if values := rec.snapshot(); len(values) != 1 || values[0] != "a" {
		t.Fatalf("got %v, want [a]", values)
	}
}
