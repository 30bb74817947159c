// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import "sync"

// frame is a continuation frame pushed onto a fiber's explicit stack by
// the interpreter (interpreter.go), replacing the native call stack so
// that a chain of any depth costs heap, not native-stack, space. This
// generalizes the teacher's Frame marker-interface design (frame.go in
// the reference interpreter) from a single bind/map pair to the full
// set the effect algebra needs.
type frame interface {
	isFrame()
}

// mapFrame applies fn to the value produced by source once it is ready.
type mapFrame struct {
	fn func(any) any
}

func (*mapFrame) isFrame() {}

// flatMapFrame binds k to the value produced by source, continuing
// with whatever node k returns.
type flatMapFrame struct {
	k func(any) effectNode
}

func (*flatMapFrame) isFrame() {}

// catchFrame runs handler(err) when a Throwing cause's leaf error
// matches matcher; non-matching causes pass through untouched.
type catchFrame struct {
	matcher func(error) bool
	handler func(error) effectNode
}

func (*catchFrame) isFrame() {}

// orElseFrame runs fallback if the primary effect fails; discarded on
// success.
type orElseFrame struct {
	fallback effectNode
}

func (*orElseFrame) isFrame() {}

// ensuringFrame always runs finalizer, joining any finalizer failure
// Sequential with the value/cause in flight.
type ensuringFrame struct {
	finalizer func() effectNode
}

func (*ensuringFrame) isFrame() {}

// restoreContextFrame restores ctx to prevCtx once the Provide-d scope
// of a reduction ends, whether by success or failure.
type restoreContextFrame struct {
	prevCtx Context
}

func (*restoreContextFrame) isFrame() {}

// retryFrame reattempts source under schedule while the schedule keeps
// returning Continue.
type retryFrame struct {
	schedule  Schedule
	source    effectNode
	startedAt int64 // millis, clock-relative
	attempt   int
}

func (*retryFrame) isFrame() {}

// timeoutFrame cancels its deadline timer once popped, whether the
// source completed in time or not.
type timeoutFrame struct {
	cancel func()
}

func (*timeoutFrame) isFrame() {}

// mapErrorFrame transforms every leaf error of a Throwing cause with
// fn, leaving Producing values untouched.
type mapErrorFrame struct {
	fn func(error) error
}

func (*mapErrorFrame) isFrame() {}

// tapErrorFrame observes (without altering) a Throwing cause of any
// shape, then lets it continue propagating.
type tapErrorFrame struct {
	peek func(Cause)
}

func (*tapErrorFrame) isFrame() {}

// scopeFrame closes a Scoped boundary's scope on the way out, running
// its finalizers LIFO and joining any finalizer failure Sequential
// with the value/cause in flight, then restores the enclosing scope.
type scopeFrame struct {
	scope     *Scope
	prevScope *Scope
}

func (*scopeFrame) isFrame() {}

var mapFramePool = sync.Pool{New: func() any { return &mapFrame{} }}
var flatMapFramePool = sync.Pool{New: func() any { return &flatMapFrame{} }}

// acquireMapFrame and acquireFlatMapFrame reuse pooled frame structs
// for the two most common combinators, exactly as the teacher's
// pool.go amortizes EffectFrame/BindFrame allocation for its hot path —
// a flatMap chain of a million links must not allocate a struct per
// link when a pooled one is available.
func acquireMapFrame(fn func(any) any) *mapFrame {
	f := mapFramePool.Get().(*mapFrame)
	f.fn = fn
	return f
}

func releaseMapFrame(f *mapFrame) {
	f.fn = nil
	mapFramePool.Put(f)
}

func acquireFlatMapFrame(k func(any) effectNode) *flatMapFrame {
	f := flatMapFramePool.Get().(*flatMapFrame)
	f.k = k
	return f
}

func releaseFlatMapFrame(f *flatMapFrame) {
	f.k = nil
	flatMapFramePool.Put(f)
}
