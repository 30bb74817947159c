// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

// Map and FlatMap are free functions, not methods, because Go forbids
// a method from introducing type parameters beyond its receiver's —
// Effect[A] cannot have a method Map[B](f func(A) B) Effect[B]. This
// mirrors the teacher's own monad.go, which defines Bind/Map/Then as
// free functions for exactly this reason. Combinators that introduce
// no type parameter beyond A (Catch, OrElse, Ensuring, Timeout, Retry,
// Provide, and Fork, whose result type *Fiber[A] is built from A)
// remain methods below.

// Map applies fn to source's success value, propagating failure
// unchanged.
func Map[A, B any](source Effect[A], fn func(A) B) Effect[B] {
	return wrap[B](mapNode{
		source: source.node,
		fn:     func(v any) any { return fn(v.(A)) },
	})
}

// FlatMap binds k to source's success value; k produces the next
// Effect. Trampolined by the interpreter — a chain of any length costs
// heap space, not native call-stack depth.
func FlatMap[A, B any](source Effect[A], k func(A) Effect[B]) Effect[B] {
	return wrap[B](flatMapNode{
		source: source.node,
		k:      func(v any) effectNode { return k(v.(A)).node },
	})
}

// MapError transforms every leaf error in source's Cause, leaving the
// Interrupt/Parallel/Sequential shape untouched — Cause.Map lifted to
// Effect. Grounded on the teacher's MapLeftEither (error.go): this is
// that same operation specialized to Cause instead of Either.
func MapError[A any](source Effect[A], f func(error) error) Effect[A] {
	return wrap[A](mapErrorNode{source: source.node, fn: f})
}

// Tap runs a side-effecting thunk on success without altering the
// value — FlatMap immediately followed by Succeed of the original
// value.
func Tap[A any](source Effect[A], thunk func(A)) Effect[A] {
	return FlatMap(source, func(v A) Effect[A] {
		thunk(v)
		return Succeed(v)
	})
}

// TapError runs a side-effecting thunk on any failure (of any Cause
// shape) without altering or consuming it — the failure still
// propagates afterward exactly as it arrived.
func TapError[A any](source Effect[A], thunk func(Cause)) Effect[A] {
	return wrap[A](tapErrorNode{source: source.node, peek: thunk})
}

// Delay runs eff after sleeping for d — Sleep(d).Then(eff).
func Delay[A any](d Duration, eff Effect[A]) Effect[A] {
	return FlatMap(SleepFor(d), func(struct{}) Effect[A] { return eff })
}

// Catch recovers from a failure whose leaf error matches matcher by
// running handler(error) to produce a recovery Effect. Non-matching
// failures pass through unchanged.
func (e Effect[A]) Catch(matcher func(error) bool, handler func(error) Effect[A]) Effect[A] {
	return wrap[A](catchNode{
		source:  e.node,
		matcher: matcher,
		handler: func(err error) effectNode { return handler(err).node },
	})
}

// OrElse runs fallback iff e fails.
func (e Effect[A]) OrElse(fallback Effect[A]) Effect[A] {
	return wrap[A](orElseNode{primary: e.node, fallback: fallback.node})
}

// Ensuring always runs finalizer after e, whether e succeeds or fails.
// A finalizer failure is joined Sequential with any original failure,
// or reported alone if e succeeded; the finalizer's own success is
// discarded.
func (e Effect[A]) Ensuring(finalizer func() Effect[struct{}]) Effect[A] {
	return wrap[A](ensuringNode{
		source:    e.node,
		finalizer: func() effectNode { return finalizer().node },
	})
}

// Timeout fails with a TimeoutError-carrying interruption if e does
// not complete within d.
func (e Effect[A]) Timeout(d Duration) Effect[A] {
	return wrap[A](timeoutNode{source: e.node, duration: d})
}

// Retry reattempts e while schedule keeps returning Continue.
func (e Effect[A]) Retry(schedule Schedule) Effect[A] {
	return wrap[A](retryNode{source: e.node, schedule: schedule})
}

// Provide locally extends the Context visible to e with ext, right-
// biased on key collision; restored once e completes.
func (e Effect[A]) Provide(ext Context) Effect[A] {
	return wrap[A](provideNode{source: e.node, ext: ext})
}

// Fork starts e concurrently and immediately succeeds with a Fiber
// handle referencing it.
func (e Effect[A]) Fork() Effect[*Fiber[A]] {
	return wrap[*Fiber[A]](forkNode{
		source: e.node,
		wrap:   func(fs *fiberState) any { return &Fiber[A]{state: fs} },
	})
}
