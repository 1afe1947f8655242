// Package backend provides the execution substrates for measured runs:
// sequential in the caller's goroutine, a fixed goroutine pool, and a pool of
// worker subprocesses. The Selector is the state machine that picks a backend
// for a batch and degrades it on failure.
package backend

import (
	"fmt"
	"reflect"
	"time"
)

// Task describes one logical call: the function to invoke and the fixed
// argument set every measured run receives.
type Task struct {
	Fn   reflect.Value
	Args []reflect.Value

	// Name is the registered task name, empty when the function was never
	// registered for cross-process dispatch.
	Name string
}

// Invocation is the record of a single measured run. It is created by a
// backend, owned by the dispatcher, and discarded once folded into the
// statistics record.
type Invocation struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration

	// Out holds the call's return values. Backends only guarantee it for
	// the representative (first) invocation.
	Out []reflect.Value

	// Panic is the recovered panic value from this run, nil on success.
	// Sequential execution never recovers, so it stays nil there.
	Panic any
}

// SerializationError classifies a task that cannot be transported to a
// worker subprocess. It is recovered locally by the Selector's fallback
// transition and never surfaced to the caller.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("task not transportable across processes: %s", e.Reason)
}

// call invokes the task's function with its fixed arguments.
func call(task Task) []reflect.Value {
	if task.Fn.Type().IsVariadic() {
		return task.Fn.CallSlice(task.Args)
	}
	return task.Fn.Call(task.Args)
}
