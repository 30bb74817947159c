// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

// Option, Either, and Result are the sum-type utilities used at the
// boundaries of the effect system (e.g. Runtime.RunSafely/RunResult),
// following the teacher's Either[E,A] design in error.go — generalized
// here to also cover Option and a Cause-specific Result carrier.

// Option represents an optional value, avoiding nil for value types.
type Option[A any] struct {
	present bool
	value   A
}

// Some wraps a present value.
func Some[A any](a A) Option[A] { return Option[A]{present: true, value: a} }

// None returns an absent Option.
func None[A any]() Option[A] { return Option[A]{} }

// IsSome reports whether the Option holds a value.
func (o Option[A]) IsSome() bool { return o.present }

// IsNone reports whether the Option is absent.
func (o Option[A]) IsNone() bool { return !o.present }

// Get returns the held value and true, or the zero value and false.
func (o Option[A]) Get() (A, bool) { return o.value, o.present }

// GetOrElse returns the held value, or fallback if absent.
func (o Option[A]) GetOrElse(fallback A) A {
	if o.present {
		return o.value
	}
	return fallback
}

// MapOption transforms a present value, leaving None untouched.
func MapOption[A, B any](o Option[A], f func(A) B) Option[B] {
	if o.present {
		return Some(f(o.value))
	}
	return None[B]()
}

// FromOption converts an Option to an Effect: Some(v) becomes
// Succeed(v); None invokes onNone to produce the failing Effect,
// matching spec.md's fromOption(opt, onNone) factory.
func FromOption[A any](o Option[A], onNone func() Effect[A]) Effect[A] {
	if o.present {
		return Succeed(o.value)
	}
	return onNone()
}

// Either represents a value that is either a Left (typically an error)
// or a Right (typically a success), following the teacher's error.go
// design verbatim (renamed here only in doc comments, not semantics).
type Either[L, R any] struct {
	isRight bool
	left    L
	right   R
}

// LeftOf constructs a Left value.
func LeftOf[L, R any](l L) Either[L, R] { return Either[L, R]{left: l} }

// RightOf constructs a Right value.
func RightOf[L, R any](r R) Either[L, R] { return Either[L, R]{isRight: true, right: r} }

// IsLeft reports whether this is a Left value.
func (e Either[L, R]) IsLeft() bool { return !e.isRight }

// IsRight reports whether this is a Right value.
func (e Either[L, R]) IsRight() bool { return e.isRight }

// Left returns the Left value and true, or zero and false.
func (e Either[L, R]) Left() (L, bool) {
	if !e.isRight {
		return e.left, true
	}
	var zero L
	return zero, false
}

// Right returns the Right value and true, or zero and false.
func (e Either[L, R]) Right() (R, bool) {
	if e.isRight {
		return e.right, true
	}
	var zero R
	return zero, false
}

// Fold pattern-matches on the Either, calling onLeft or onRight.
func Fold[L, R, T any](e Either[L, R], onLeft func(L) T, onRight func(R) T) T {
	if e.isRight {
		return onRight(e.right)
	}
	return onLeft(e.left)
}

// MapEither transforms a Right value, leaving Left untouched.
func MapEither[L, R, S any](e Either[L, R], f func(R) S) Either[L, S] {
	if e.isRight {
		return RightOf[L](f(e.right))
	}
	return LeftOf[L, S](e.left)
}

// FlatMapEither sequences two Either-producing computations.
func FlatMapEither[L, R, S any](e Either[L, R], f func(R) Either[L, S]) Either[L, S] {
	if e.isRight {
		return f(e.right)
	}
	return LeftOf[L, S](e.left)
}

// FromEither converts an Either[error-like, A] into an Effect: Right
// becomes Succeed, Left becomes Fail(FailCause(left)), matching
// spec.md's fromEither(e) factory. L must itself be usable as an
// error; callers typically instantiate with L = error.
func FromEither[A any](e Either[error, A]) Effect[A] {
	if e.isRight {
		return Succeed(e.right)
	}
	return Fail[A](FailCause(e.left))
}

// Result is the alternative outcome carrier named by Runtime.RunResult:
// IsSuccess/IsFailure, Value, CauseOf.
type Result[A any] struct {
	ok    bool
	value A
	cause Cause
}

// SuccessResult wraps a successful value.
func SuccessResult[A any](a A) Result[A] { return Result[A]{ok: true, value: a} }

// FailureResult wraps a Cause.
func FailureResult[A any](c Cause) Result[A] { return Result[A]{cause: c} }

// IsSuccess reports whether the computation succeeded.
func (r Result[A]) IsSuccess() bool { return r.ok }

// IsFailure reports whether the computation failed.
func (r Result[A]) IsFailure() bool { return !r.ok }

// Value returns the success value and true, or zero and false.
func (r Result[A]) Value() (A, bool) {
	if r.ok {
		return r.value, true
	}
	var zero A
	return zero, false
}

// CauseOf returns the failure cause and true, or the zero Cause and
// false if the result succeeded.
func (r Result[A]) CauseOf() (Cause, bool) {
	if !r.ok {
		return r.cause, true
	}
	return Cause{}, false
}
