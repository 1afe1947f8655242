package backend

import (
	"sync"
	"time"
)

// RunThreadPool executes runs invocations of task on a fixed pool of worker
// goroutines. Every run receives the identical argument set.
//
// Panics raised by the measured function are recovered per run and recorded
// on the Invocation so one failing repeat cannot abort the batch; the
// dispatcher decides what to do with them (re-raise for the representative,
// warn for the rest).
func RunThreadPool(task Task, runs, workers int) []Invocation {
	if workers > runs {
		workers = runs
	}

	invs := make([]Invocation, runs)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				invs[i] = runRecovered(task)
			}
		}()
	}

	for i := 0; i < runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return invs
}

// runRecovered measures a single call and captures a panic instead of
// letting it unwind the worker goroutine.
func runRecovered(task Task) (inv Invocation) {
	defer func() {
		if r := recover(); r != nil {
			inv.Panic = r
			inv.End = time.Now()
			inv.Duration = inv.End.Sub(inv.Start)
		}
	}()

	inv.Start = time.Now()
	inv.Out = call(task)
	inv.End = time.Now()
	inv.Duration = inv.End.Sub(inv.Start)
	return inv
}
