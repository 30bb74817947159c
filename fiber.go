// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// stepState tags which of the interpreter's Running/Producing/Throwing
// states (§4.2) a fiberState currently occupies; the fourth state,
// Suspended, is not a stepState but the suspend flag plus the armed
// cancelSuspend below.
type stepState int

const (
	stRunning stepState = iota
	stProducing
	stThrowing
)

// fiberState is the untyped, internal runtime object the scheduler
// drives. Fiber[A] (below) is a thin typed façade over one, returned
// to callers by Effect.Fork.
type fiberState struct {
	id uuid.UUID

	sched *scheduler
	ctx   Context
	scope *Scope
	frame []frame

	state stepState
	node  effectNode
	value any
	cause Cause

	interrupted  atomic.Bool
	timeoutFired atomic.Bool

	mu           sync.Mutex
	done         bool
	result       any
	resultC      Cause
	failed       bool
	waiters      []func()
	cancelSuspend func() // set while suspended; invoked to force an early, out-of-band resume

	suspend bool // set by reduceCurrent when the step loop must yield to the scheduler
}

func (fs *fiberState) armSuspend(cancel func()) {
	fs.mu.Lock()
	fs.cancelSuspend = cancel
	fs.mu.Unlock()
}

func (fs *fiberState) disarmSuspend() {
	fs.mu.Lock()
	fs.cancelSuspend = nil
	fs.mu.Unlock()
}

func (fs *fiberState) forceResume() {
	fs.mu.Lock()
	c := fs.cancelSuspend
	fs.cancelSuspend = nil
	fs.mu.Unlock()
	if c != nil {
		c()
	}
}

func newFiberState(node effectNode, ctx Context, scope *Scope, sched *scheduler) *fiberState {
	return &fiberState{
		id:    uuid.New(),
		sched: sched,
		ctx:   ctx,
		scope: scope,
		state: stRunning,
		node:  node,
	}
}

// run drives the fiber's reduction loop until it either completes or
// must suspend and wait for an external event to re-enqueue it.
func (fs *fiberState) run() {
	for {
		if fs.timeoutFired.Load() && fs.state != stThrowing {
			fs.state = stThrowing
			fs.cause = FailCause(&TimeoutError{})
		} else if fs.interrupted.Load() && fs.state != stThrowing {
			fs.state = stThrowing
			fs.cause = InterruptCause()
		}
		switch fs.state {
		case stRunning:
			fs.reduceCurrent()
		case stProducing:
			if len(fs.frame) == 0 {
				fs.complete(fs.value, Cause{}, false)
				return
			}
			fs.popProducing()
		case stThrowing:
			if len(fs.frame) == 0 {
				fs.complete(nil, fs.cause, true)
				return
			}
			fs.popThrowing()
		}
		if fs.suspend {
			fs.suspend = false
			return
		}
	}
}

func (fs *fiberState) complete(value any, cause Cause, failed bool) {
	fs.mu.Lock()
	fs.done = true
	fs.result = value
	fs.resultC = cause
	fs.failed = failed
	waiters := fs.waiters
	fs.waiters = nil
	fs.mu.Unlock()
	fs.logComplete(failed)
	for _, w := range waiters {
		w()
	}
}

func (fs *fiberState) isDone() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.done
}

// addWaiter registers a zero-arg callback to run once the fiber
// completes. If it is already done, the callback runs immediately
// (from the calling goroutine).
func (fs *fiberState) addWaiter(w func()) {
	fs.mu.Lock()
	if fs.done {
		fs.mu.Unlock()
		w()
		return
	}
	fs.waiters = append(fs.waiters, w)
	fs.mu.Unlock()
}

func (fs *fiberState) outcome() (any, Cause, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.result, fs.resultC, fs.failed
}

func (fs *fiberState) interrupt() {
	fs.interrupted.Store(true)
	fs.logInterrupt()
	fs.forceResume()
}

// Fiber is a handle to a running (or completed) child computation
// started by Effect.Fork. Operations: Await blocks the awaiting fiber
// until this one completes; Interrupt requests cooperative
// cancellation, observed within one reduction boundary; IsDone never
// blocks.
type Fiber[A any] struct {
	state *fiberState
}

// ID returns a stable identifier for diagnostics and log lines; it has
// no bearing on scheduling or fiber identity, which remain
// pointer-based.
func (f *Fiber[A]) ID() uuid.UUID { return f.state.id }

// IsDone reports whether the fiber has completed, without blocking.
func (f *Fiber[A]) IsDone() bool { return f.state.isDone() }

// Interrupt flips the fiber's cooperative cancellation flag; the
// interpreter observes it at the next reduction boundary.
func (f *Fiber[A]) Interrupt() { f.state.interrupt() }

// Await builds an Effect that suspends the calling fiber until this
// one completes, yielding its result or propagating its Cause.
func (f *Fiber[A]) Await() Effect[A] {
	return wrap[A](asyncNode{registrar: func(complete func(any, *Cause)) {
		f.state.addWaiter(func() {
			result, cause, failed := f.state.outcome()
			if failed {
				complete(nil, &cause)
				return
			}
			complete(result, nil)
		})
	}})
}
