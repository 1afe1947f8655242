package backend

import (
	"encoding/gob"
	"fmt"
	"reflect"
	"sync"
)

// The process backend ships a task descriptor (registered name plus argument
// values) to a re-exec'd copy of the current binary. Both sides of that
// exchange run the same init code, so registering a task once makes it
// resolvable by name in every worker.

type registeredTask struct {
	name string
	fn   reflect.Value

	// verdict is the static transportability check computed at registration,
	// nil when the signature can cross a process boundary.
	verdict *SerializationError
}

var (
	regMu       sync.RWMutex
	tasksByName = make(map[string]*registeredTask)
	namesByPtr  = make(map[uintptr]string)
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Register makes fn dispatchable to worker subprocesses under the given
// name. It panics if fn is not a function or the name is already taken by a
// different function, mirroring gob.Register's contract.
//
// Signatures whose argument or result types cannot be gob-encoded are still
// accepted: the verdict is kept and reported as a SerializationError at
// dispatch time, where the selector recovers by falling back to the thread
// backend.
func Register(name string, fn any) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("stint: Register(%q): not a function: %T", name, fn))
	}
	if name == "" {
		panic("stint: Register: empty task name")
	}

	regMu.Lock()
	defer regMu.Unlock()

	if existing, ok := tasksByName[name]; ok {
		if existing.fn.Pointer() == v.Pointer() {
			return
		}
		panic(fmt.Sprintf("stint: Register(%q): name already registered for a different function", name))
	}

	rt := &registeredTask{name: name, fn: v, verdict: transportVerdict(v.Type())}
	if rt.verdict == nil {
		registerGobTypes(v.Type())
	}
	tasksByName[name] = rt
	namesByPtr[v.Pointer()] = name
}

// LookupName returns the registered name for a function pointer, or "".
func LookupName(ptr uintptr) string {
	regMu.RLock()
	defer regMu.RUnlock()
	return namesByPtr[ptr]
}

func taskByName(name string) (*registeredTask, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	rt, ok := tasksByName[name]
	return rt, ok
}

// transportVerdict statically checks whether a signature can cross a process
// boundary: argument and result types must be concrete and gob-encodable. A
// trailing error result is allowed; it travels as its message string.
func transportVerdict(fnType reflect.Type) *SerializationError {
	for i := 0; i < fnType.NumIn(); i++ {
		if reason := gobUnfriendly(fnType.In(i)); reason != "" {
			return &SerializationError{Reason: fmt.Sprintf("argument %d: %s", i, reason)}
		}
	}
	for i := 0; i < fnType.NumOut(); i++ {
		ot := fnType.Out(i)
		if i == fnType.NumOut()-1 && ot == errType {
			continue
		}
		if reason := gobUnfriendly(ot); reason != "" {
			return &SerializationError{Reason: fmt.Sprintf("result %d: %s", i, reason)}
		}
	}
	return nil
}

func gobUnfriendly(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("%s values cannot be encoded", t.Kind())
	case reflect.Interface:
		return fmt.Sprintf("interface type %s has no concrete encoding", t)
	default:
		return ""
	}
}

// registerGobTypes registers the signature's concrete types so the []any
// slots in the wire request and reply decode back to the right types.
func registerGobTypes(fnType reflect.Type) {
	for i := 0; i < fnType.NumIn(); i++ {
		gob.Register(reflect.Zero(fnType.In(i)).Interface())
	}
	for i := 0; i < fnType.NumOut(); i++ {
		ot := fnType.Out(i)
		if ot == errType {
			continue
		}
		gob.Register(reflect.Zero(ot).Interface())
	}
}
