// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package keffect provides a stack-safe effect system for Go.
//
// An [Effect][A] is an immutable description of a computation that may
// require environment services, fail with a typed error, succeed with a
// value of type A, or suspend (sleep, await an external event, fork a
// child computation). Descriptions are built up with combinators —
// [Map], [FlatMap], [Effect.Catch], [Effect.Retry], [Effect.Timeout],
// [Effect.Ensuring] — and are not run until handed to a [Runtime].
//
// # Design Philosophy
//
// keffect separates description from execution. Building an Effect
// never runs anything; a [Runtime] walks the tree on an explicit heap
// stack (the "interpreter", see interpreter.go) instead of the Go call
// stack, so a million-deep FlatMap chain costs O(N) time and O(1) native
// stack depth. Failure is never a bare error value: it is a [Cause], a
// small algebra of leaf failures, cooperative interruption, and
// parallel/sequential composition, so a failed program always carries
// its whole failure shape, not just the first error encountered.
//
// # Core Types
//
//   - [Effect]: the program description (see effect.go, combinators.go)
//   - [Cause]: the structured failure algebra (see cause.go)
//   - [Context], [Tag]: the immutable service map and its typed keys (see context.go, tag.go)
//   - [Scope], [Fiber]: structured concurrency and cooperative cancellation (see scope.go, fiber.go)
//   - [Schedule]: data-driven retry/repeat policies (see schedule.go)
//   - [Layer]: declarative service construction and composition (see layer.go)
//   - [Runtime]: the public entry points — Run, RunSafely, RunResult (see runtime.go)
//   - [Duration], [Clock], [SystemClock], [VirtualClock]: time (see duration.go, clock.go, virtualclock.go)
//
// # Execution Strategies
//
// Three strategies interpret the same Effect tree differently (see
// strategy.go): [Synchronous] is a selectable name that currently
// behaves exactly like [Cooperative]; forked children are run by the
// same single-threaded scheduler, not lazily on first await;
// [Cooperative] runs any number of fibers as single-threaded
// interleaved tasks scheduled by the runtime itself (no fiber ever
// holds the CPU across a suspension point); [Deterministic] is the same
// scheduler driven by a [VirtualClock] instead of wall-clock time, for
// reproducible tests of time-dependent programs.
//
// # Example
//
//	rt := keffect.NewRuntime()
//	eff := keffect.Map(keffect.Succeed(5), func(x int) int { return x * 2 })
//	eff = keffect.FlatMap(eff, func(x int) keffect.Effect[int] {
//	    return keffect.Succeed(x + 1)
//	})
//	result, err := keffect.Run(rt, eff)
//	// result == 11, err == nil
package keffect
