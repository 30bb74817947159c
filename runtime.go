// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"log/slog"
	"sync"
)

// Runtime is the public entry point: it owns a root Context, a Clock,
// an execution Strategy, and an optional diagnostic logger, and
// interprets Effect trees handed to Run/RunSafely/RunResult.
type Runtime struct {
	rootCtx  Context
	clock    Clock
	strategy Strategy
	logger   *slog.Logger
}

// RuntimeOption configures a Runtime at construction time, following
// the functional-options idiom used throughout the pack's
// dependency-injection-flavored repos.
type RuntimeOption func(*Runtime)

// WithContext sets the root Context services visible to every Effect
// run by this Runtime (absent an inner Provide).
func WithContext(ctx Context) RuntimeOption {
	return func(r *Runtime) { r.rootCtx = ctx }
}

// WithClock overrides the Runtime's Clock. WithStrategy(Deterministic)
// without an explicit WithClock installs a fresh VirtualClock
// automatically.
func WithClock(c Clock) RuntimeOption {
	return func(r *Runtime) { r.clock = c }
}

// WithStrategy selects one of Synchronous, Cooperative, Deterministic.
func WithStrategy(s Strategy) RuntimeOption {
	return func(r *Runtime) { r.strategy = s }
}

// WithLogger attaches a *slog.Logger the Runtime uses for fiber
// fork/interrupt/completion and scope open/close diagnostics at
// Debug, and uncaught Causes at Error. A nil logger (the default)
// keeps the Runtime silent — a library should not log on a caller's
// behalf unless asked.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = logger }
}

// NewRuntime builds a Runtime from options, defaulting to an empty
// root Context, SystemClock, and the Cooperative strategy.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		rootCtx:  EmptyContext,
		clock:    SystemClock{},
		strategy: Cooperative,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategy == Deterministic {
		if _, ok := r.clock.(*VirtualClock); !ok {
			r.clock = NewVirtualClock()
		}
	}
	return r
}

// WithRootContext returns a new Runtime whose root Context is merged
// with ctx, right-biased toward ctx, leaving the receiver untouched.
func (r *Runtime) WithRootContext(ctx Context) *Runtime {
	next := *r
	next.rootCtx = r.rootCtx.Merge(ctx)
	return &next
}

// Clock returns the Runtime's active Clock.
func (r *Runtime) Clock() Clock { return r.clock }

func (r *Runtime) newScheduler() *scheduler {
	return newScheduler(r.clock, r.logger)
}

// run interprets effect under a fresh root Scope (so a top-level Fork
// is cleaned up even without an explicit Scoped) and drives it to
// completion, returning its boxed value and Cause.
func (r *Runtime) run(node effectNode) (any, Cause, bool) {
	sched := r.newScheduler()
	rootScope := NewScope()
	wrapped := scopedNode{k: func(*Scope) effectNode { return node }}
	fs := newFiberState(wrapped, r.rootCtx, rootScope, sched)
	sched.enqueue(fs)
	sched.runUntilDone(fs)
	v, c, failed := fs.outcome()
	if failed && r.logger != nil {
		r.logger.Error("keffect: effect failed", "cause", c)
	}
	return v, c, failed
}

// Run interprets effect and returns its value, or panics with the
// Cause's leaf error on failure — the spec's "throws on failure"
// entry point, rendered in Go as a returned error rather than an
// actual panic, since idiomatic Go reports failure through a second
// return value.
func Run[A any](r *Runtime, effect Effect[A]) (A, error) {
	v, c, failed := r.run(effect.node)
	var zero A
	if failed {
		return zero, c.ToException()
	}
	return v.(A), nil
}

// RunSafely interprets effect and never raises: it always returns the
// full Either, packaging the Cause intact on failure instead of
// collapsing it to a single error.
func RunSafely[A any](r *Runtime, effect Effect[A]) Either[Cause, A] {
	v, c, failed := r.run(effect.node)
	if failed {
		return LeftOf[Cause, A](c)
	}
	return RightOf[Cause](v.(A))
}

// RunResult interprets effect and returns the alternative Result
// carrier (IsSuccess/IsFailure/Value/CauseOf).
func RunResult[A any](r *Runtime, effect Effect[A]) Result[A] {
	v, c, failed := r.run(effect.node)
	if failed {
		return FailureResult[A](c)
	}
	return SuccessResult(v.(A))
}

var (
	defaultRuntimeOnce sync.Once
	defaultRuntime     *Runtime
	defaultRuntimeUsed bool
	defaultRuntimeMu   sync.Mutex
)

// DefaultRuntime lazily constructs a module-global Runtime backed by
// SystemClock and the Cooperative strategy on first use, per spec.md
// §9's "module-global default runtime" guidance: documented mutable
// process-wide state, safe to replace only before its first use. Tests
// that need isolation should construct an explicit Runtime instead.
func DefaultRuntime() *Runtime {
	defaultRuntimeMu.Lock()
	defaultRuntimeUsed = true
	defaultRuntimeMu.Unlock()
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = NewRuntime()
	})
	return defaultRuntime
}

// SetDefaultRuntime replaces the module-global default Runtime. It is
// a contract violation — and panics, matching the teacher's
// "keffect: "-prefixed convention for programming errors — to call it
// after DefaultRuntime has already been observed once.
func SetDefaultRuntime(rt *Runtime) {
	defaultRuntimeMu.Lock()
	used := defaultRuntimeUsed
	defaultRuntimeMu.Unlock()
	if used {
		contractViolation("SetDefaultRuntime called after the default runtime was already in use")
	}
	defaultRuntimeOnce.Do(func() {})
	defaultRuntime = rt
}
