// Package guard detects re-entrant invocations of an instrumented function.
//
// State is a depth counter keyed by function identity and goroutine id, never
// a single shared flag: two different instrumented functions, or the same
// function running concurrently on two goroutines, must not interfere with
// each other's recursion bookkeeping.
package guard

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// key identifies one function's activation chain on one goroutine.
type key struct {
	fn  uintptr
	gid uint64
}

// Guard tracks active instrumented invocations. The zero value is not usable;
// call New.
type Guard struct {
	mu     sync.Mutex
	depths map[key]int
	warned map[key]bool
}

// New returns an empty Guard.
func New() *Guard {
	return &Guard{
		depths: make(map[key]int),
		warned: make(map[key]bool),
	}
}

// Enter records an activation of fn on the current goroutine and reports
// whether it is the outermost one. Every Enter must be paired with an Exit on
// all return paths, including panics.
func (g *Guard) Enter(fn uintptr) (outermost bool) {
	k := key{fn: fn, gid: goroutineID()}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.depths[k]++
	return g.depths[k] == 1
}

// Exit records the end of an activation. Only the outermost Exit clears the
// state: the depth counter (rather than a boolean) keeps an inner call's exit
// from wiping out the outer call's active entry.
func (g *Guard) Exit(fn uintptr) {
	k := key{fn: fn, gid: goroutineID()}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.depths[k] {
	case 0:
		// Unbalanced Exit; nothing to clear.
	case 1:
		delete(g.depths, k)
		delete(g.warned, k)
	default:
		g.depths[k]--
	}
}

// FirstDetection reports whether this is the first recursive re-entry seen
// during the current outer call's lifetime. It returns true exactly once per
// outer activation, so the caller can emit a single warning.
func (g *Guard) FirstDetection(fn uintptr) bool {
	k := key{fn: fn, gid: goroutineID()}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.warned[k] {
		return false
	}
	g.warned[k] = true
	return true
}

// goroutineID parses the current goroutine's id from the runtime stack
// header ("goroutine 123 [running]:"). Go deliberately offers no API for
// this; parsing the stack header is the established workaround.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(header, ' '); i >= 0 {
		header = header[:i]
	}
	id, err := strconv.ParseUint(string(header), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
