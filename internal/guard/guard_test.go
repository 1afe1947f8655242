package guard

import (
	"sync"
	"testing"
)

const (
	fnA uintptr = 0x1001
	fnB uintptr = 0x1002
)

func TestEnterExit_Outermost(t *testing.T) {
	g := New()

	if !g.Enter(fnA) {
		t.Fatal("first Enter should be outermost")
	}
	if g.Enter(fnA) {
		t.Error("nested Enter should not be outermost")
	}
	g.Exit(fnA)

	// Still inside the outer activation: a further re-entry is nested.
	if g.Enter(fnA) {
		t.Error("re-entry under an active outer call should not be outermost")
	}
	g.Exit(fnA)
	g.Exit(fnA)

	// Fully unwound: the next Enter starts a fresh outer call.
	if !g.Enter(fnA) {
		t.Error("Enter after full unwind should be outermost again")
	}
	g.Exit(fnA)
}

func TestDepthCounter_InnerExitDoesNotClearOuter(t *testing.T) {
	g := New()

	g.Enter(fnA) // depth 1
	g.Enter(fnA) // depth 2
	g.Enter(fnA) // depth 3
	g.Exit(fnA)  // depth 2
	g.Exit(fnA)  // depth 1

	// The outer activation must still be considered active.
	if g.Enter(fnA) {
		t.Error("outer activation was cleared by an inner exit")
	}
	g.Exit(fnA)
	g.Exit(fnA)
}

func TestDistinctFunctionsDoNotInterfere(t *testing.T) {
	g := New()

	g.Enter(fnA)
	if !g.Enter(fnB) {
		t.Error("a different function should get its own outermost activation")
	}
	g.Exit(fnB)
	g.Exit(fnA)
}

func TestDistinctGoroutinesDoNotInterfere(t *testing.T) {
	g := New()
	g.Enter(fnA)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Enter(fnA)
			g.Exit(fnA)
		}(i)
	}
	wg.Wait()
	g.Exit(fnA)

	for i, outermost := range results {
		if !outermost {
			t.Errorf("goroutine %d saw another goroutine's activation", i)
		}
	}
}

func TestFirstDetection_OncePerOuterCall(t *testing.T) {
	g := New()

	g.Enter(fnA)
	if !g.FirstDetection(fnA) {
		t.Error("first detection should report true")
	}
	if g.FirstDetection(fnA) {
		t.Error("second detection within the same outer call should report false")
	}
	g.Exit(fnA)

	// A new outer call warns again.
	g.Enter(fnA)
	if !g.FirstDetection(fnA) {
		t.Error("detection state should reset after the outer call exits")
	}
	g.Exit(fnA)
}

func TestUnbalancedExitIsHarmless(t *testing.T) {
	g := New()
	g.Exit(fnA)
	if !g.Enter(fnA) {
		t.Error("Enter after a stray Exit should still be outermost")
	}
	g.Exit(fnA)
}
