// Package stint is a function-level instrumentation harness: it wraps an
// arbitrary function, measures wall-clock execution time across one or more
// invocations (optionally in parallel) and prints a statistical report,
// while passing the wrapped function's return values through untouched.
//
// Basic usage:
//
//	timed := stint.MustWrap(fetch, stint.Runs(20), stint.Verbose())
//	body, err := timed(url) // runs 20 times, reports stats, returns fetch's result
//
// Concurrent measurement dispatches runs to worker subprocesses when the
// function was registered with RegisterTask (and the program calls
// WorkerMain at startup), degrading to a goroutine pool and finally to
// plain sequential execution when a backend cannot serve the call:
//
//	func main() {
//		stint.WorkerMain()
//		// ...
//	}
//
// Recursive functions are detected per goroutine: only the outermost call is
// measured and reported, with nested self-calls executing bare.
//
// Instrumentation can be disabled process-wide with Disable, the
// STINT_DISABLED environment variable, or a config file named by
// STINT_CONFIG. The switch is read once per Wrap call: flipping it later
// does not affect functions that are already wrapped.
package stint
