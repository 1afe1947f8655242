package backend

import "time"

// RunSequential executes runs invocations one after another in the caller's
// goroutine. Panics from the measured function are not recovered here: a
// sequential failure is the user's own failure and propagates unchanged.
func RunSequential(task Task, runs int) []Invocation {
	invs := make([]Invocation, 0, runs)
	for i := 0; i < runs; i++ {
		start := time.Now()
		out := call(task)
		end := time.Now()
		invs = append(invs, Invocation{
			Start:    start,
			End:      end,
			Duration: end.Sub(start),
			Out:      out,
		})
	}
	return invs
}
