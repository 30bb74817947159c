// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import "time"

// Clock abstracts time so that the interpreter never calls time.Now or
// time.Sleep directly. SystemClock backs real execution; VirtualClock
// backs deterministic tests (see virtualclock.go).
type Clock interface {
	// CurrentTimeMillis returns milliseconds since the Unix epoch for
	// SystemClock, or the virtual "now" for VirtualClock.
	CurrentTimeMillis() int64
	// NanoTime returns a monotonic nanosecond counter unrelated to the
	// epoch; only differences between two calls are meaningful.
	NanoTime() int64
	// ScheduleAfter arranges for continuation to run once at least d
	// has elapsed, and returns a cancel function. Calling cancel after
	// the continuation has already fired is a safe no-op.
	ScheduleAfter(d Duration, continuation func()) (cancel func())
}

// SystemClock is a Clock backed by the operating system's wall clock
// and a real timer for ScheduleAfter.
type SystemClock struct{}

var _ Clock = SystemClock{}

// CurrentTimeMillis returns the current wall-clock time in milliseconds.
func (SystemClock) CurrentTimeMillis() int64 { return time.Now().UnixMilli() }

// monotonicBase anchors SystemClock.NanoTime to the monotonic reading
// carried by time.Now.
var monotonicBase = time.Now()

// NanoTime returns the monotonic nanoseconds elapsed since the package
// was initialized.
func (SystemClock) NanoTime() int64 { return int64(time.Since(monotonicBase)) }

// ScheduleAfter starts a real timer and invokes continuation from a new
// goroutine when it fires.
func (SystemClock) ScheduleAfter(d Duration, continuation func()) func() {
	t := time.AfterFunc(d.Std(), continuation)
	return func() { t.Stop() }
}
