package backend

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"time"
)

// workerRequest is the task descriptor shipped to a worker subprocess.
type workerRequest struct {
	Name       string
	Args       []any
	Runs       int
	WantResult bool
}

// workerReply carries the worker's measurements back. Outs holds the
// representative run's results minus any trailing error, which travels as
// ErrText. A recovered panic travels as text with the run index it hit.
type workerReply struct {
	Durations  []time.Duration
	Outs       []any
	HasErr     bool
	ErrText    string
	PanicIndex int
	PanicText  string
}

// RunProcessPool executes runs invocations of task across worker
// subprocesses, splitting the run count over at most workers children.
//
// A task that cannot be transported (unregistered function, signature or
// argument values gob cannot encode) returns a SerializationError so the
// selector can retry on the thread backend. Any other failure (spawn, wire
// protocol) returns a plain error, which lands the selector in the terminal
// sequential fallback.
func RunProcessPool(task Task, runs, workers int) ([]Invocation, error) {
	if task.Name == "" {
		return nil, &SerializationError{Reason: "function not registered with RegisterTask"}
	}
	rt, ok := taskByName(task.Name)
	if !ok {
		return nil, &SerializationError{Reason: fmt.Sprintf("unknown task %q", task.Name)}
	}
	if rt.verdict != nil {
		return nil, rt.verdict
	}

	args := make([]any, len(task.Args))
	for i, a := range task.Args {
		args[i] = a.Interface()
	}
	// Trial encode before spawning anything: argument values may defeat gob
	// even when the static signature check passed.
	if err := trialEncode(args); err != nil {
		return nil, &SerializationError{Reason: err.Error()}
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolving worker executable: %w", err)
	}

	children := workers
	if children > runs {
		children = runs
	}

	results := make([]childResult, children)
	done := make(chan struct{})
	for i := 0; i < children; i++ {
		share := runs / children
		if i < runs%children {
			share++
		}
		req := workerRequest{Name: task.Name, Args: args, Runs: share, WantResult: i == 0}
		go func(i int) {
			results[i] = spawnWorker(exe, req)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < children; i++ {
		<-done
	}

	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
	}

	// Child 0 first, so the representative stays the first invocation.
	var invs []Invocation
	for i, res := range results {
		for j, d := range res.reply.Durations {
			inv := Invocation{Start: res.start, End: res.end, Duration: d}
			if res.reply.PanicIndex == j {
				inv.Panic = res.reply.PanicText
			}
			if i == 0 && j == 0 && inv.Panic == nil {
				out, err := decodeOuts(task.Fn.Type(), &res.reply)
				if err != nil {
					return nil, err
				}
				inv.Out = out
			}
			invs = append(invs, inv)
		}
	}
	return invs, nil
}

type childResult struct {
	reply workerReply
	start time.Time
	end   time.Time
	err   error
}

func spawnWorker(exe string, req workerRequest) childResult {
	var in, out bytes.Buffer
	if err := gob.NewEncoder(&in).Encode(&req); err != nil {
		return childResult{err: &SerializationError{Reason: err.Error()}}
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), workerEnv+"=1")
	cmd.Stdin = &in
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return childResult{err: fmt.Errorf("worker process: %w", err)}
	}
	end := time.Now()

	var reply workerReply
	if err := gob.NewDecoder(&out).Decode(&reply); err != nil {
		return childResult{err: fmt.Errorf("decoding worker reply: %w", err)}
	}
	return childResult{reply: reply, start: start, end: end}
}

func trialEncode(args []any) error {
	return gob.NewEncoder(io.Discard).Encode(&workerRequest{Args: args})
}

// WorkerMain serves a single measurement request when the current process
// was spawned as a stint worker, then exits. Call it at the top of main; in
// a normal process it returns immediately.
func WorkerMain() {
	if !inWorkerProcess() {
		return
	}
	if err := serveWorker(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "stint worker:", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// serveWorker decodes one request, runs the task the requested number of
// times, and encodes the reply. Factored out of WorkerMain so the wire
// protocol is testable in-process.
func serveWorker(r io.Reader, w io.Writer) error {
	var req workerRequest
	if err := gob.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}

	rt, ok := taskByName(req.Name)
	if !ok {
		return fmt.Errorf("unknown task %q", req.Name)
	}

	fnType := rt.fn.Type()
	if len(req.Args) != fnType.NumIn() {
		return fmt.Errorf("task %q: got %d args, want %d", req.Name, len(req.Args), fnType.NumIn())
	}
	args := make([]reflect.Value, len(req.Args))
	for i, a := range req.Args {
		v, err := valueForType(a, fnType.In(i))
		if err != nil {
			return fmt.Errorf("task %q argument %d: %w", req.Name, i, err)
		}
		args[i] = v
	}

	task := Task{Fn: rt.fn, Args: args}
	reply := workerReply{PanicIndex: -1}
	for i := 0; i < req.Runs; i++ {
		inv := runRecovered(task)
		reply.Durations = append(reply.Durations, inv.Duration)
		if inv.Panic != nil {
			if reply.PanicIndex < 0 {
				reply.PanicIndex = i
				reply.PanicText = fmt.Sprint(inv.Panic)
			}
			continue
		}
		if i == 0 && req.WantResult {
			encodeOuts(fnType, inv.Out, &reply)
		}
	}

	return gob.NewEncoder(w).Encode(&reply)
}

// encodeOuts flattens the representative run's results into the reply,
// peeling off a trailing error into its message string.
func encodeOuts(fnType reflect.Type, out []reflect.Value, reply *workerReply) {
	for i, v := range out {
		if i == fnType.NumOut()-1 && fnType.Out(i) == errType {
			if !v.IsNil() {
				reply.HasErr = true
				reply.ErrText = v.Interface().(error).Error()
			}
			continue
		}
		reply.Outs = append(reply.Outs, v.Interface())
	}
}

// decodeOuts rebuilds the representative run's results from a reply. A
// transported error is rehydrated as a plain errors.New value.
func decodeOuts(fnType reflect.Type, reply *workerReply) ([]reflect.Value, error) {
	out := make([]reflect.Value, fnType.NumOut())
	j := 0
	for i := 0; i < fnType.NumOut(); i++ {
		ot := fnType.Out(i)
		if i == fnType.NumOut()-1 && ot == errType {
			if reply.HasErr {
				ev := reflect.New(errType).Elem()
				ev.Set(reflect.ValueOf(errors.New(reply.ErrText)))
				out[i] = ev
			} else {
				out[i] = reflect.Zero(ot)
			}
			continue
		}
		if j >= len(reply.Outs) {
			return nil, fmt.Errorf("worker reply missing result %d", i)
		}
		v, err := valueForType(reply.Outs[j], ot)
		if err != nil {
			return nil, fmt.Errorf("worker result %d: %w", i, err)
		}
		out[i] = v
		j++
	}
	return out, nil
}

func valueForType(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), t)
}
