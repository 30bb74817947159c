// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import "sync"

// Scope owns an ordered list of finalizers (closures returning an
// Effect). Scope has no Close method: the interpreter closes a scope
// when its Scoped block exits, running the finalizers in LIFO order;
// no finalizer is skipped even if an earlier one fails, and no
// addition is permitted once closed.
// Scope is the resource-safety primitive underlying Scoped, Fork,
// ParAll, and Race (scope.go / scheduler.go).
type Scope struct {
	mu         sync.Mutex
	finalizers []func() effectNode
	closed     bool
}

// NewScope returns an empty, open Scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add appends finalizer to the scope's LIFO list. Adding after the
// scope has closed is a contract violation and panics, matching the teacher's
// "keffect: "-prefixed convention for programming errors.
func (s *Scope) Add(finalizer func() Effect[struct{}]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic("keffect: Scope.Add called after Close")
	}
	s.finalizers = append(s.finalizers, func() effectNode { return finalizer().node })
}

// drain returns the finalizers to run, in LIFO order, and marks the
// scope closed so no further additions are accepted. Called by the
// interpreter when unwinding the scopeFrame installed by Scoped.
func (s *Scope) drain() []func() effectNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	n := len(s.finalizers)
	reversed := make([]func() effectNode, n)
	for i, f := range s.finalizers {
		reversed[n-1-i] = f
	}
	return reversed
}

// IsClosed reports whether the scope has already been closed.
func (s *Scope) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
