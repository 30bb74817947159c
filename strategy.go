// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

// Strategy names one of the three required execution strategies. All
// three are interpreted by the same scheduler (scheduler.go); what
// changes between them is the Clock and, for Deterministic, whether
// the scheduler auto-advances a VirtualClock instead of blocking on a
// real timer. See DESIGN.md for why Synchronous and Cooperative share
// one scheduler implementation rather than two: the reference
// interpreter's "fork is emulated by running to completion on await"
// shortcut is an optimization this package does not need, since its
// single-threaded run-queue already makes forked-but-never-awaited
// siblings cost nothing extra.
type Strategy int

const (
	// Synchronous favors hosts that never truly need concurrent
	// fibers: suspend is expected to complete inline. Here it behaves
	// identically to Cooperative; it exists as a documented, selectable
	// identity for callers porting code that distinguishes the two.
	Synchronous Strategy = iota
	// Cooperative runs any number of fibers as single-threaded,
	// interleaved tasks under a real Clock.
	Cooperative
	// Deterministic runs the same scheduler under a VirtualClock, for
	// reproducible tests of time-dependent programs.
	Deterministic
)

func (s Strategy) String() string {
	switch s {
	case Synchronous:
		return "synchronous"
	case Cooperative:
		return "cooperative"
	case Deterministic:
		return "deterministic"
	default:
		return "unknown"
	}
}
