// Package dispatch orchestrates one outer call of an instrumented function:
// recursion check, backend selection, batch execution, aggregation, and
// report emission. The wrapped function's return values always travel back
// to the caller untouched.
package dispatch

import (
	"io"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stintio/stint/internal/backend"
	"github.com/stintio/stint/internal/guard"
	"github.com/stintio/stint/internal/report"
	"github.com/stintio/stint/stats"
)

// Plan is the resolved configuration for a single call site. It is computed
// once per outer call and never shared.
type Plan struct {
	Runs           int
	Concurrent     bool
	Mode           backend.Mode
	Verbose        bool
	CheckRecursion bool

	// Writer receives the report; nil means stdout.
	Writer io.Writer

	// OnRecord, when set, receives the statistics record after aggregation.
	OnRecord func(stats.Record)
}

// Dispatcher runs measured batches. A single process-wide instance serves
// all wrapped functions; its only mutable state is the recursion guard.
type Dispatcher struct {
	guard *guard.Guard
}

// New returns a Dispatcher with fresh recursion state.
func New() *Dispatcher {
	return &Dispatcher{guard: guard.New()}
}

// Default is the dispatcher used by wrapped functions.
var Default = New()

// Call executes the plan for one outer invocation and returns the
// representative call's results.
func (d *Dispatcher) Call(task backend.Task, plan Plan) []reflect.Value {
	key := task.Fn.Pointer()

	if plan.CheckRecursion {
		outermost := d.guard.Enter(key)
		defer d.guard.Exit(key)

		if !outermost {
			// Re-entrant invocation: execute bare, measure nothing. The
			// outer call's timing absorbs this call's duration.
			if d.guard.FirstDetection(key) {
				logrus.Warnf("stint: recursive function %s detected; inner calls are not measured separately. Consider wrapping the recursive function in another function and instrumenting that one.", shortName(key))
			}
			return bareCall(task)
		}
	}

	invs := d.execute(task, backend.NewSelector(plan.Runs, plan.Concurrent, plan.Mode))

	rep := invs[0]
	d.warnDiscarded(invs[1:])
	if rep.Panic != nil {
		// The representative call's failure belongs to the caller,
		// unchanged. No report: there is no meaningful measurement of a
		// call that did not complete.
		panic(rep.Panic)
	}

	durations := make([]time.Duration, len(invs))
	for i, inv := range invs {
		durations[i] = inv.Duration
	}
	rec := stats.Aggregate(durations, realSpan(invs))

	if plan.OnRecord != nil {
		plan.OnRecord(rec)
	}

	w := plan.Writer
	if w == nil {
		w = os.Stdout
	}
	report.Render(w, metaFor(key, task.Args), rec, plan.Verbose)

	return rep.Out
}

// execute walks the selector's state machine until a backend produces a
// batch. Sequential states never fail internally, so the loop terminates.
func (d *Dispatcher) execute(task backend.Task, sel *backend.Selector) []backend.Invocation {
	for {
		switch sel.State() {
		case backend.StateProcessParallel:
			invs, err := backend.RunProcessPool(task, sel.Runs(), sel.Workers())
			if err == nil {
				return invs
			}
			sel.HandleFailure(err)
		case backend.StateThreadParallel:
			return backend.RunThreadPool(task, sel.Runs(), sel.Workers())
		default:
			return backend.RunSequential(task, sel.Runs())
		}
	}
}

// bareCall runs the task once with no instrumentation and no recovery.
func bareCall(task backend.Task) []reflect.Value {
	if task.Fn.Type().IsVariadic() {
		return task.Fn.CallSlice(task.Args)
	}
	return task.Fn.Call(task.Args)
}

// warnDiscarded logs failures recorded on non-representative repeats. They
// never propagate: masking the primary call's outcome with a repeat's
// failure would break the transparent-wrapper contract.
func (d *Dispatcher) warnDiscarded(invs []backend.Invocation) {
	for _, inv := range invs {
		if inv.Panic != nil {
			logrus.Warnf("stint: discarded repeat run failed: %v", inv.Panic)
		}
	}
}

// realSpan is the wall-clock span from the earliest recorded start to the
// latest recorded end across the batch.
func realSpan(invs []backend.Invocation) time.Duration {
	var first, last time.Time
	for _, inv := range invs {
		if inv.Start.IsZero() {
			continue
		}
		if first.IsZero() || inv.Start.Before(first) {
			first = inv.Start
		}
		if inv.End.After(last) {
			last = inv.End
		}
	}
	if first.IsZero() {
		return 0
	}
	return last.Sub(first)
}

func metaFor(key uintptr, args []reflect.Value) report.Meta {
	printable := make([]any, len(args))
	for i, a := range args {
		printable[i] = a.Interface()
	}
	return report.Meta{
		Name:   shortName(key),
		Symbol: symbolName(key),
		Args:   printable,
	}
}

func symbolName(key uintptr) string {
	fn := runtime.FuncForPC(key)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

// shortName trims an import-qualified symbol down to the bare function
// name: "github.com/acme/pkg.(*T).Get-fm" becomes "Get-fm" stripped to
// "Get", "pkg.add" becomes "add".
func shortName(key uintptr) string {
	name := symbolName(key)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	return name
}
