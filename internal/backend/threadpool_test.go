package backend

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func taskOf(fn any, args ...any) Task {
	v := reflect.ValueOf(fn)
	vargs := make([]reflect.Value, len(args))
	for i, a := range args {
		vargs[i] = reflect.ValueOf(a)
	}
	return Task{Fn: v, Args: vargs}
}

func TestRunSequential_CountAndResult(t *testing.T) {
	var calls atomic.Int32
	add := func(a, b int) int {
		calls.Add(1)
		return a + b
	}

	invs := RunSequential(taskOf(add, 1, 2), 5)

	if len(invs) != 5 {
		t.Fatalf("got %d invocations, want 5", len(invs))
	}
	if calls.Load() != 5 {
		t.Errorf("function ran %d times, want 5", calls.Load())
	}
	for i, inv := range invs {
		if inv.Out[0].Interface() != 3 {
			t.Errorf("invocation %d result = %v, want 3", i, inv.Out[0])
		}
		if inv.Duration < 0 {
			t.Errorf("invocation %d has negative duration", i)
		}
		if inv.End.Before(inv.Start) {
			t.Errorf("invocation %d ends before it starts", i)
		}
	}
}

func TestRunSequential_PanicPropagates(t *testing.T) {
	boom := func() { panic("user failure") }
	defer func() {
		if r := recover(); r != "user failure" {
			t.Errorf("recovered %v, want the user's own panic", r)
		}
	}()
	RunSequential(taskOf(boom), 3)
	t.Error("sequential execution must not swallow panics")
}

func TestRunThreadPool_AllRunsComplete(t *testing.T) {
	var calls atomic.Int32
	work := func(d time.Duration) time.Duration {
		calls.Add(1)
		time.Sleep(d)
		return d
	}

	invs := RunThreadPool(taskOf(work, time.Millisecond), 8, 4)

	if len(invs) != 8 {
		t.Fatalf("got %d invocations, want 8", len(invs))
	}
	if calls.Load() != 8 {
		t.Errorf("function ran %d times, want 8", calls.Load())
	}
	for i, inv := range invs {
		if inv.Panic != nil {
			t.Errorf("invocation %d recorded unexpected panic: %v", i, inv.Panic)
		}
		if inv.Duration < time.Millisecond {
			t.Errorf("invocation %d duration %v below the work's sleep", i, inv.Duration)
		}
	}
}

func TestRunThreadPool_RepresentativeHasResult(t *testing.T) {
	answer := func() int { return 42 }
	invs := RunThreadPool(taskOf(answer), 4, 2)
	if invs[0].Out[0].Interface() != 42 {
		t.Errorf("representative result = %v, want 42", invs[0].Out[0])
	}
}

func TestRunThreadPool_PanicRecordedNotRaised(t *testing.T) {
	var calls atomic.Int32
	flaky := func() {
		if calls.Add(1) == 2 {
			panic("discarded repeat failed")
		}
	}

	invs := RunThreadPool(taskOf(flaky), 4, 1)

	if len(invs) != 4 {
		t.Fatalf("got %d invocations, want 4: one failing repeat must not abort the batch", len(invs))
	}
	panicked := 0
	for _, inv := range invs {
		if inv.Panic != nil {
			panicked++
		}
	}
	if panicked != 1 {
		t.Errorf("recorded %d panics, want 1", panicked)
	}
}

func TestRunThreadPool_VariadicTask(t *testing.T) {
	join := func(parts ...string) int { return len(parts) }
	task := taskOf(join, []string{"a", "b", "c"})
	invs := RunThreadPool(task, 2, 2)
	if invs[0].Out[0].Interface() != 3 {
		t.Errorf("variadic call result = %v, want 3", invs[0].Out[0])
	}
}

func TestRunThreadPool_RealTimeOverlaps(t *testing.T) {
	sleepy := func() { time.Sleep(20 * time.Millisecond) }

	batchStart := time.Now()
	invs := RunThreadPool(taskOf(sleepy), 4, 4)
	span := time.Since(batchStart)

	var sum time.Duration
	for _, inv := range invs {
		sum += inv.Duration
	}
	// Four overlapping 20ms sleeps on four workers should finish well
	// before their 80ms sum.
	if span >= sum {
		t.Errorf("batch span %v not below duration sum %v; runs did not overlap", span, sum)
	}
}
