// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"sync"
	"sync/atomic"
)

// reduceCurrent performs one step of the interpreter's main loop
// (§4.2 step 1): dispatch on the shape of fs.node, either producing an
// immediate value/cause or decomposing into a smaller current plus one
// or more pushed frames. Suspension-capable variants (Sleep, Async,
// ParAll, Race) register an external callback and set fs.suspend so
// the caller (fiberState.run, in fiber.go) yields back to the
// scheduler; Fork enqueues the child and produces its handle at once.
func (fs *fiberState) reduceCurrent() {
	switch n := fs.node.(type) {

	case succeedNode:
		fs.value = n.value
		fs.state = stProducing

	case failNode:
		fs.cause = n.cause
		fs.state = stThrowing

	case syncNode:
		v, err := n.thunk()
		if err != nil {
			fs.cause = FailCause(err)
			fs.state = stThrowing
		} else {
			fs.value = v
			fs.state = stProducing
		}

	case suspendNode:
		fs.node = n.thunk()

	case mapNode:
		fs.frame = append(fs.frame, acquireMapFrame(n.fn))
		fs.node = n.source

	case flatMapNode:
		fs.frame = append(fs.frame, acquireFlatMapFrame(n.k))
		fs.node = n.source

	case catchNode:
		fs.frame = append(fs.frame, &catchFrame{matcher: n.matcher, handler: n.handler})
		fs.node = n.source

	case orElseNode:
		fs.frame = append(fs.frame, &orElseFrame{fallback: n.fallback})
		fs.node = n.primary

	case ensuringNode:
		fs.frame = append(fs.frame, &ensuringFrame{finalizer: n.finalizer})
		fs.node = n.source

	case mapErrorNode:
		fs.frame = append(fs.frame, &mapErrorFrame{fn: n.fn})
		fs.node = n.source

	case tapErrorNode:
		fs.frame = append(fs.frame, &tapErrorFrame{peek: n.peek})
		fs.node = n.source

	case timeoutNode:
		fs.reduceTimeout(n)

	case retryNode:
		fs.frame = append(fs.frame, &retryFrame{
			schedule:  n.schedule,
			source:    n.source,
			startedAt: fs.sched.clock.CurrentTimeMillis(),
			attempt:   0,
		})
		fs.node = n.source

	case provideNode:
		prev := fs.ctx
		fs.ctx = fs.ctx.Merge(n.ext)
		fs.frame = append(fs.frame, &restoreContextFrame{prevCtx: prev})
		fs.node = n.source

	case serviceNode:
		if v, ok := n.lookup(fs.ctx); ok {
			fs.value = v
			fs.state = stProducing
		} else {
			fs.cause = FailCause(&ServiceNotFoundError{Name: n.name})
			fs.state = stThrowing
		}

	case sleepNode:
		fs.reduceSleep(n)

	case asyncNode:
		fs.reduceAsync(n)

	case forkNode:
		fs.reduceFork(n)

	case scopedNode:
		child := NewScope()
		fs.frame = append(fs.frame, &scopeFrame{scope: child, prevScope: fs.scope})
		fs.scope = child
		fs.logScopeOpen()
		fs.node = n.k(child)

	case parAllNode:
		fs.reduceParAll(n)

	case raceNode:
		fs.reduceRace(n)

	default:
		panic("keffect: interpreter encountered an unknown effect node")
	}
}

func (fs *fiberState) reduceSleep(n sleepNode) {
	var once atomicOnce
	cancelTimer := fs.sched.clock.ScheduleAfter(n.duration, func() {
		once.do(func() {
			fs.disarmSuspend()
			fs.value = struct{}{}
			fs.state = stProducing
			fs.sched.enqueue(fs)
		})
	})
	fs.armSuspend(func() {
		once.do(func() {
			cancelTimer()
			fs.value = struct{}{}
			fs.state = stProducing
			fs.sched.enqueue(fs)
		})
	})
	fs.suspend = true
}

func (fs *fiberState) reduceAsync(n asyncNode) {
	var used atomic.Bool
	complete := func(v any, failCause *Cause) {
		if !used.CompareAndSwap(false, true) {
			panic("keffect: Async completion function invoked more than once")
		}
		fs.disarmSuspend()
		if failCause != nil {
			fs.cause = *failCause
			fs.state = stThrowing
		} else {
			fs.value = v
			fs.state = stProducing
		}
		fs.sched.enqueue(fs)
	}
	fs.armSuspend(func() {
		if used.CompareAndSwap(false, true) {
			fs.state = stProducing
			fs.sched.enqueue(fs)
		}
	})
	n.registrar(complete)
	fs.suspend = true
}

func (fs *fiberState) reduceTimeout(n timeoutNode) {
	cancelTimer := fs.sched.clock.ScheduleAfter(n.duration, func() {
		fs.timeoutFired.Store(true)
		fs.forceResume()
	})
	fs.frame = append(fs.frame, &timeoutFrame{cancel: cancelTimer})
	fs.node = n.source
}

func (fs *fiberState) reduceFork(n forkNode) {
	childScope := NewScope()
	child := newFiberState(n.source, fs.ctx, childScope, fs.sched)
	fs.scope.Add(func() Effect[struct{}] {
		return wrap[struct{}](asyncNode{registrar: func(complete func(any, *Cause)) {
			child.interrupt()
			child.addWaiter(func() {
				complete(struct{}{}, nil)
			})
		}})
	})
	fs.sched.enqueue(child)
	fs.logFork(child)
	fs.value = n.wrap(child)
	fs.state = stProducing
}

func (fs *fiberState) reduceParAll(n parAllNode) {
	if len(n.effects) == 0 {
		fs.value = []any{}
		fs.state = stProducing
		return
	}
	childScope := NewScope()
	children := make([]*fiberState, len(n.effects))
	results := make([]any, len(n.effects))
	var mu sync.Mutex
	remaining := len(children)
	failedOnce := false
	settled := false
	var failCauses []Cause

	for i, eff := range n.effects {
		children[i] = newFiberState(eff, fs.ctx, childScope, fs.sched)
	}
	for i, child := range children {
		idx := i
		c := child
		c.addWaiter(func() {
			v, cause, failed := c.outcome()
			mu.Lock()
			if settled {
				mu.Unlock()
				return
			}
			if failed {
				if !failedOnce {
					failedOnce = true
					for _, sib := range children {
						sib.interrupt()
					}
				}
				failCauses = append(failCauses, cause)
			} else {
				results[idx] = v
			}
			remaining--
			allDone := remaining == 0
			if allDone {
				settled = true
			}
			mu.Unlock()
			if allDone {
				fs.disarmSuspend()
				if failedOnce {
					fs.cause = ParallelCause(failCauses...)
					fs.state = stThrowing
				} else {
					fs.value = results
					fs.state = stProducing
				}
				fs.sched.enqueue(fs)
			}
		})
	}

	// Arm a real cancel path: if this fiber itself is interrupted (or
	// a surrounding Timeout fires) while parked here waiting on its
	// own children, forceResume must reach it the same way it does
	// for Sleep/Async, cascading the cancellation down to every sibling
	// instead of leaving them to run to completion unsupervised. The
	// forced resume itself just needs to get fs back onto the run
	// loop; its top-of-loop interrupted/timeoutFired check translates
	// that into the right Cause, exactly as it does for reduceSleep.
	fs.armSuspend(func() {
		mu.Lock()
		if settled {
			mu.Unlock()
			return
		}
		settled = true
		mu.Unlock()
		for _, sib := range children {
			sib.interrupt()
		}
		fs.state = stProducing
		fs.sched.enqueue(fs)
	})

	for _, child := range children {
		fs.sched.enqueue(child)
	}
	fs.suspend = true
}

func (fs *fiberState) reduceRace(n raceNode) {
	if len(n.effects) == 0 {
		panic("keffect: Race requires at least one effect")
	}
	childScope := NewScope()
	children := make([]*fiberState, len(n.effects))
	for i, eff := range n.effects {
		children[i] = newFiberState(eff, fs.ctx, childScope, fs.sched)
	}
	var mu sync.Mutex
	remaining := len(children)
	settled := false
	var failCauses []Cause

	for i := range children {
		c := children[i]
		c.addWaiter(func() {
			v, cause, failed := c.outcome()
			mu.Lock()
			if settled {
				mu.Unlock()
				return
			}
			if !failed {
				settled = true
				mu.Unlock()
				for _, sib := range children {
					if sib != c {
						sib.interrupt()
					}
				}
				fs.disarmSuspend()
				fs.value = v
				fs.state = stProducing
				fs.sched.enqueue(fs)
				return
			}
			failCauses = append(failCauses, cause)
			remaining--
			allFailed := remaining == 0
			if allFailed {
				settled = true
			}
			mu.Unlock()
			if allFailed {
				fs.disarmSuspend()
				fs.cause = ParallelCause(failCauses...)
				fs.state = stThrowing
				fs.sched.enqueue(fs)
			}
		})
	}

	// See reduceParAll: arm the same forced-resume path so an external
	// Interrupt (or enclosing Timeout) parked on a Race propagates down
	// to every still-running sibling instead of waiting them out.
	fs.armSuspend(func() {
		mu.Lock()
		if settled {
			mu.Unlock()
			return
		}
		settled = true
		mu.Unlock()
		for _, sib := range children {
			sib.interrupt()
		}
		fs.state = stProducing
		fs.sched.enqueue(fs)
	})

	for _, child := range children {
		fs.sched.enqueue(child)
	}
	fs.suspend = true
}

// popProducing implements step 2 of §4.2: pop the top frame and react
// to a Producing value according to its kind.
func (fs *fiberState) popProducing() {
	top := fs.frame[len(fs.frame)-1]
	fs.frame = fs.frame[:len(fs.frame)-1]
	switch f := top.(type) {
	case *mapFrame:
		fs.value = f.fn(fs.value)
		releaseMapFrame(f)
	case *flatMapFrame:
		fs.node = f.k(fs.value)
		fs.state = stRunning
		releaseFlatMapFrame(f)
	case *catchFrame:
		// source succeeded; catch is a no-op on success.
	case *orElseFrame:
		// primary succeeded; fallback is discarded.
	case *mapErrorFrame, *tapErrorFrame:
		// only intercept Throwing; pass Producing through unchanged.
	case *ensuringFrame:
		fs.runFinalizer(f.finalizer, nil)
	case *restoreContextFrame:
		fs.ctx = f.prevCtx
	case *retryFrame:
		// source succeeded; retry only ever reacts to Throwing.
	case *timeoutFrame:
		f.cancel()
		fs.timeoutFired.Store(false)
	case *scopeFrame:
		fs.closeScope(f, nil)
	}
}

// popThrowing implements step 3 of §4.2: pop frames until one handles
// the cause, running Ensuring finalizers (and scope closes) along the
// way, joining their own failures Sequential into the cause in flight.
func (fs *fiberState) popThrowing() {
	top := fs.frame[len(fs.frame)-1]
	fs.frame = fs.frame[:len(fs.frame)-1]
	switch f := top.(type) {
	case *mapFrame:
		releaseMapFrame(f)
	case *flatMapFrame:
		releaseFlatMapFrame(f)
	case *catchFrame:
		if fs.cause.IsFail() {
			leaf := fs.cause.ToException()
			if f.matcher(leaf) {
				fs.node = f.handler(leaf)
				fs.state = stRunning
				return
			}
		}
		// non-matching or non-leaf cause: keep propagating.
	case *orElseFrame:
		fs.node = f.fallback
		fs.state = stRunning
	case *mapErrorFrame:
		fs.cause = fs.cause.Map(f.fn)
	case *tapErrorFrame:
		f.peek(fs.cause)
	case *ensuringFrame:
		cause := fs.cause
		fs.runFinalizer(f.finalizer, &cause)
	case *restoreContextFrame:
		fs.ctx = f.prevCtx
	case *retryFrame:
		fs.applyRetry(f)
	case *timeoutFrame:
		// Clear the flag once this Timeout's own frame is consumed:
		// left sticky, it would re-fire on every later loop iteration
		// (e.g. the one right after a wrapping Catch/OrElse frame
		// turns this Throwing back into Running) and stomp a
		// just-computed recovery or retry back into a fresh
		// TimeoutError before it ever reduces.
		f.cancel()
		fs.timeoutFired.Store(false)
	case *scopeFrame:
		cause := fs.cause
		fs.closeScope(f, &cause)
	}
}

// runFinalizer runs finalizer to completion inline (finalizers are
// uninterruptible and may not themselves suspend in this
// implementation — they are expected to be Sync/Succeed/Fail trees,
// matching every finalizer shape this package itself constructs).
// originalCause is nil if the source succeeded.
func (fs *fiberState) runFinalizer(finalizer func() effectNode, originalCause *Cause) {
	finValue, finCause, finFailed := runToCompletionSync(finalizer(), fs.ctx, fs.sched)
	_ = finValue
	switch {
	case finFailed && originalCause != nil:
		fs.cause = SequentialCause(*originalCause, finCause)
		fs.state = stThrowing
	case finFailed:
		fs.cause = finCause
		fs.state = stThrowing
	case originalCause != nil:
		fs.cause = *originalCause
		fs.state = stThrowing
	default:
		fs.state = stProducing
	}
}

func (fs *fiberState) closeScope(f *scopeFrame, originalCause *Cause) {
	finalizers := f.scope.drain()
	var joined []Cause
	if originalCause != nil {
		joined = append(joined, *originalCause)
	}
	finalizerFailures := 0
	for _, fin := range finalizers {
		_, finCause, finFailed := runToCompletionSync(fin(), fs.ctx, fs.sched)
		if finFailed {
			joined = append(joined, finCause)
			finalizerFailures++
		}
	}
	fs.scope = f.prevScope
	fs.logScopeClose(finalizerFailures)
	if len(joined) > 0 {
		fs.cause = SequentialCause(joined...)
		fs.state = stThrowing
	} else {
		fs.state = stProducing
	}
}

func (fs *fiberState) applyRetry(f *retryFrame) {
	if !fs.cause.IsFail() {
		// Interrupt/Parallel/Sequential causes are not retried.
		return
	}
	elapsedMillis := fs.sched.clock.CurrentTimeMillis() - f.startedAt
	decision := f.schedule.Step(f.attempt, Millis(elapsedMillis))
	if !decision.ShouldContinue {
		return
	}
	next := &retryFrame{
		schedule:  f.schedule,
		source:    f.source,
		startedAt: f.startedAt,
		attempt:   f.attempt + 1,
	}
	fs.frame = append(fs.frame, next)
	fs.node = flatMapNode{
		source: sleepNode{duration: decision.Delay},
		k:      func(any) effectNode { return f.source },
	}
	fs.state = stRunning
}

// runToCompletionSync drives a finalizer (or any other node expected
// to be synchronous — no Sleep/Async/Fork/ParAll/Race) to completion
// without involving the scheduler's ready queue, by sharing its clock
// and context. Finalizers in this package never suspend, so this never
// blocks; a finalizer that does suspend is a contract violation.
func runToCompletionSync(node effectNode, ctx Context, sched *scheduler) (any, Cause, bool) {
	fs := newFiberState(node, ctx, NewScope(), sched)
	fs.run()
	if fs.suspend {
		panic("keffect: a finalizer or Ensuring block suspended — finalizers must be synchronous")
	}
	v, c, failed := fs.outcome()
	return v, c, failed
}

// atomicOnce is a minimal do-at-most-once guard used for the race
// between a timer firing and a manual, out-of-band resume.
type atomicOnce struct{ done atomic.Bool }

func (o *atomicOnce) do(f func()) {
	if o.done.CompareAndSwap(false, true) {
		f()
	}
}
