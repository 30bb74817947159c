// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"log/slog"
	"sync"
)

// scheduler runs any number of fibers as single-threaded, interleaved
// tasks: exactly one fiber reduces at a time, and only at an explicit
// suspension point (Sleep, Async, or waiting on ParAll/Race siblings)
// does control pass to another. This directly generalizes the
// teacher's Suspension/Step/StepExpr mechanism (step.go) — a
// resumable state machine driven by plain function calls — from its
// single-effect-family case to the full algebra, deliberately avoiding
// a goroutine-per-fiber design so the only genuine concurrency in this
// package is confined to real-wall-clock timers and Async callbacks
// arriving from a caller's own goroutine.
type scheduler struct {
	mu     sync.Mutex
	ready  []*fiberState
	notify chan struct{}
	clock  Clock
	vclock *VirtualClock // non-nil only for the Deterministic strategy
	logger *slog.Logger
}

func newScheduler(clock Clock, logger *slog.Logger) *scheduler {
	vc, _ := clock.(*VirtualClock)
	return &scheduler{
		notify: make(chan struct{}, 1),
		clock:  clock,
		vclock: vc,
		logger: logger,
	}
}

// enqueue marks fs ready to run on the scheduler's single logical
// thread. Safe to call from any goroutine.
func (s *scheduler) enqueue(fs *fiberState) {
	s.mu.Lock()
	s.ready = append(s.ready, fs)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *scheduler) popReady() *fiberState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		return nil
	}
	fs := s.ready[0]
	s.ready = s.ready[1:]
	return fs
}

func (s *scheduler) drainReady() {
	for {
		fs := s.popReady()
		if fs == nil {
			return
		}
		fs.run()
	}
}

// runUntilDone drives the scheduler's ready queue, and the clock if
// needed, until root completes. For the Deterministic strategy (a
// VirtualClock) this never blocks on a goroutine: an empty ready queue
// with pending timers simply auto-advances to the next one, since
// nothing else could possibly make progress in the meantime. For a
// real clock, an empty ready queue means genuinely waiting on a timer
// or an externally-completed Async — the one place this package blocks
// a goroutine on a channel.
func (s *scheduler) runUntilDone(root *fiberState) {
	for {
		s.drainReady()
		if root.isDone() {
			return
		}
		if s.vclock != nil {
			if s.vclock.advanceToNext() {
				continue
			}
			panic("keffect: deterministic run deadlocked — no ready fiber and no pending timer")
		}
		<-s.notify
	}
}
