package stint

import (
	"fmt"
	"io"

	"github.com/stintio/stint/internal/backend"
	"github.com/stintio/stint/internal/dispatch"
	"github.com/stintio/stint/stats"
)

// Mode selects the concurrency backend explicitly instead of letting the
// backend selector auto-detect one.
type Mode string

const (
	// ModeAuto lets the selector pick: worker subprocesses when possible,
	// a goroutine pool otherwise.
	ModeAuto Mode = "auto"

	// ModeMultithreading pins measurement to the goroutine pool.
	ModeMultithreading Mode = "multithreading"

	// ModeNone disables parallel dispatch for this wrapper.
	ModeNone Mode = "none"
)

// Option configures a wrapper.
type Option func(*settings)

type settings struct {
	runs           int
	concurrent     bool
	mode           Mode
	verbose        bool
	checkRecursion bool
	writer         io.Writer
	onRecord       func(stats.Record)
}

func newSettings() settings {
	d := currentDefaults()
	return settings{
		runs:           d.runs,
		concurrent:     d.concurrent,
		verbose:        d.verbose,
		checkRecursion: d.checkRecursion,
		mode:           ModeAuto,
	}
}

// Runs sets how many measured executions each call performs. Must be at
// least 1.
func Runs(n int) Option {
	return func(s *settings) { s.runs = n }
}

// Concurrent enables parallel dispatch of the measured runs.
func Concurrent() Option {
	return func(s *settings) { s.concurrent = true }
}

// ConcurrencyMode chooses the backend explicitly, bypassing auto-detection.
// ModeMultithreading implies Concurrent; ModeNone forces sequential runs.
func ConcurrencyMode(m Mode) Option {
	return func(s *settings) {
		s.mode = m
		if m == ModeMultithreading {
			s.concurrent = true
		}
	}
}

// Verbose selects the detailed report instead of the one-line summary.
func Verbose() Option {
	return func(s *settings) { s.verbose = true }
}

// WithoutRecursionCheck disables re-entrancy detection for this wrapper.
// Only worth it on extremely hot functions that are known not to recurse.
func WithoutRecursionCheck() Option {
	return func(s *settings) { s.checkRecursion = false }
}

// Output redirects the report away from stdout.
func Output(w io.Writer) Option {
	return func(s *settings) { s.writer = w }
}

// OnRecord registers a callback receiving the statistics record of every
// outer call, for programs that want the numbers rather than the text.
func OnRecord(fn func(stats.Record)) Option {
	return func(s *settings) { s.onRecord = fn }
}

func (s *settings) validate() error {
	if s.runs < 1 {
		return &ConfigError{Option: "runs", Message: fmt.Sprintf("must be a positive integer, got %d", s.runs)}
	}
	switch s.mode {
	case ModeAuto, ModeMultithreading, ModeNone:
	default:
		return &ConfigError{Option: "concurrency mode", Message: fmt.Sprintf("unknown mode %q", s.mode)}
	}
	return nil
}

func (s *settings) plan() dispatch.Plan {
	return dispatch.Plan{
		Runs:           s.runs,
		Concurrent:     s.concurrent,
		Mode:           backend.Mode(s.mode),
		Verbose:        s.verbose,
		CheckRecursion: s.checkRecursion,
		Writer:         s.writer,
		OnRecord:       s.onRecord,
	}
}
