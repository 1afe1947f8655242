package stint

import (
	"os"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/stintio/stint/config"
	"github.com/stintio/stint/internal/backend"
	"github.com/stintio/stint/internal/dispatch"
	"github.com/stintio/stint/internal/report"
)

var active atomic.Bool

type wrapDefaults struct {
	runs           int
	concurrent     bool
	verbose        bool
	checkRecursion bool
}

var (
	defaultsMu sync.RWMutex
	defaults   = wrapDefaults{runs: 1, checkRecursion: true}
)

func init() {
	active.Store(true)
	if os.Getenv("STINT_DISABLED") != "" {
		active.Store(false)
	}
	if path := os.Getenv("STINT_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			logrus.Warnf("stint: ignoring config %s: %v", path, err)
			return
		}
		applyConfig(cfg)
	}
}

func currentDefaults() wrapDefaults {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}

func applyConfig(cfg *config.Config) {
	if cfg.Active != nil && !*cfg.Active {
		active.Store(false)
	}

	defaultsMu.Lock()
	if cfg.Defaults.RunTimes > 0 {
		defaults.runs = cfg.Defaults.RunTimes
	}
	defaults.concurrent = cfg.Defaults.Concurrent
	defaults.verbose = cfg.Defaults.Verbose
	if cfg.Defaults.RecursionCheck != nil {
		defaults.checkRecursion = *cfg.Defaults.RecursionCheck
	}
	defaultsMu.Unlock()

	if cfg.Report.Color != "" {
		report.SetColorMode(report.ColorMode(cfg.Report.Color))
	}
	if cfg.Logging.Level != "" {
		if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
			logrus.SetLevel(level)
		}
	}
}

// Enable turns instrumentation back on for wrappers created afterwards.
func Enable() { active.Store(true) }

// Disable turns the entry point into a passthrough: Wrap returns its input
// unmodified. The flag is read once per Wrap call, not per execution, so
// already-wrapped functions keep measuring; this is a deliberate trade of
// retroactivity for zero per-call overhead.
func Disable() { active.Store(false) }

// Enabled reports whether instrumentation is currently active.
func Enabled() bool { return active.Load() }

// Wrap returns fn instrumented according to the options: each call of the
// result measures fn over the configured number of runs, prints a report,
// and returns the representative run's results.
//
// Values that are not functions (a struct standing in for a class, for
// example) are returned unmodified: instrumenting constructors interacts
// badly with cross-process dispatch of the constructed values. Invalid
// options return the original fn along with a ConfigError, before any
// execution.
func Wrap[F any](fn F, opts ...Option) (F, error) {
	if !active.Load() {
		return fn, nil
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fn, nil
	}

	s := newSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return fn, err
	}

	plan := s.plan()
	name := backend.LookupName(v.Pointer())

	wrapper := reflect.MakeFunc(v.Type(), func(args []reflect.Value) []reflect.Value {
		task := backend.Task{Fn: v, Args: args, Name: name}
		return dispatch.Default.Call(task, plan)
	})
	return wrapper.Interface().(F), nil
}

// MustWrap is Wrap panicking on configuration errors.
func MustWrap[F any](fn F, opts ...Option) F {
	wrapped, err := Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return wrapped
}

// RegisterTask makes fn eligible for the worker-subprocess backend under
// the given name. Call it from init or main; since workers re-exec the same
// binary, the registration is visible to them too. Panics on conflicting
// registrations.
func RegisterTask(name string, fn any) {
	backend.Register(name, fn)
}

// WorkerMain serves a measurement request and exits when the current
// process was spawned as a stint worker; in a normal process it returns
// immediately. Call it at the top of main, before any other work.
func WorkerMain() {
	backend.WorkerMain()
}
