package backend

import (
	"errors"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

// State identifies the execution strategy currently selected for a batch.
type State string

const (
	// StateSequential runs every measurement in the caller's goroutine.
	StateSequential State = "sequential"

	// StateThreadParallel runs measurements on a fixed goroutine pool.
	StateThreadParallel State = "thread-parallel"

	// StateProcessParallel runs measurements in worker subprocesses.
	StateProcessParallel State = "process-parallel"

	// StateFallbackSequential is the terminal degraded state: all remaining
	// runs execute sequentially and no further parallel attempt is made.
	StateFallbackSequential State = "fallback-sequential"
)

// Mode is the caller-facing concurrency mode. ModeAuto lets the Selector pick
// the backend; the other modes bypass auto-detection.
type Mode string

const (
	ModeAuto           Mode = "auto"
	ModeMultithreading Mode = "multithreading"
	ModeNone           Mode = "none"
)

// workerEnv marks a process as a stint measurement worker. Spawning further
// subprocess pools from inside a worker is unsafe, so its presence forces the
// thread backend.
const workerEnv = "STINT_WORKER"

// DefaultWorkers returns the worker count for parallel backends: all cores
// but one, and never less than one.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// Selector chooses the execution strategy for one batch and handles the
// fallback transitions when a parallel backend fails. It is created per outer
// call and never shared.
type Selector struct {
	state     State
	requested int
	runs      int
	workers   int
	downsized bool
}

// NewSelector resolves the initial state for a batch of runs.
func NewSelector(runs int, concurrent bool, mode Mode) *Selector {
	return NewSelectorWithWorkers(runs, concurrent, mode, DefaultWorkers())
}

// NewSelectorWithWorkers is NewSelector with an explicit worker count.
func NewSelectorWithWorkers(runs int, concurrent bool, mode Mode, workers int) *Selector {
	if workers < 1 {
		workers = 1
	}
	s := &Selector{requested: runs, runs: runs, workers: workers}

	if mode == ModeMultithreading {
		concurrent = true
	}
	if !concurrent || runs <= 1 || mode == ModeNone {
		s.state = StateSequential
		return s
	}

	// Cap the run count to the worker count: queueing extra runs behind
	// busy workers only oversubscribes the batch without adding signal.
	if runs > workers {
		s.runs = workers
		s.downsized = true
		logrus.Warnf("stint: run count %d exceeds worker count %d, downsizing to %d", runs, workers, workers)
	}
	if s.runs <= 1 {
		// A single run gains nothing from parallelism.
		s.state = StateSequential
		logrus.Warn("stint: single effective run after downsizing, switching to sequential execution")
		return s
	}

	if mode == ModeMultithreading || inWorkerProcess() {
		s.state = StateThreadParallel
	} else {
		s.state = StateProcessParallel
	}
	return s
}

// State returns the currently selected strategy.
func (s *Selector) State() State { return s.state }

// Runs returns the effective run count after any downsizing.
func (s *Selector) Runs() int { return s.runs }

// Workers returns the worker count for parallel backends.
func (s *Selector) Workers() int { return s.workers }

// Downsized reports whether the requested run count was capped.
func (s *Selector) Downsized() bool { return s.downsized }

// HandleFailure transitions the state machine after a parallel backend
// failed and returns the new state. A serialization failure in the process
// backend retries once on the thread backend; everything else lands in the
// terminal fallback state.
func (s *Selector) HandleFailure(err error) State {
	var serr *SerializationError
	if s.state == StateProcessParallel && errors.As(err, &serr) {
		s.state = StateThreadParallel
		logrus.Warnf("stint: %v, retrying on the thread backend", err)
		return s.state
	}
	s.state = StateFallbackSequential
	// The cap existed to avoid oversubscribing workers; sequential
	// execution honors the full requested run count again.
	s.runs = s.requested
	logrus.Warnf("stint: parallel execution failed (%v), falling back to sequential execution", err)
	return s.state
}

func inWorkerProcess() bool {
	return os.Getenv(workerEnv) != ""
}
