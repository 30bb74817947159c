// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"container/heap"
	"fmt"
	"sync"
)

// VirtualClock is a deterministic Clock: time only moves forward when
// Advance or SetTime is called by the driving goroutine, or when a
// Deterministic-strategy run auto-advances it to the next pending
// wakeup (advanceToNext). It is the
// clock behind the Deterministic execution strategy (see strategy.go),
// grounded on the teacher's trampolined, single-threaded evaluation
// style generalized to a min-heap of pending wakeups.
type VirtualClock struct {
	mu       sync.Mutex
	nowMilli int64
	nanos    int64
	seq      int64
	pending  wakeHeap
}

// NewVirtualClock returns a VirtualClock starting at time zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

var _ Clock = (*VirtualClock)(nil)

type wakeEntry struct {
	wakeAt int64 // millis
	seq    int64 // insertion order, tie-break
	fn     func()
	active bool
}

type wakeHeap []*wakeEntry

func (h wakeHeap) Len() int { return len(h) }
func (h wakeHeap) Less(i, j int) bool {
	if h[i].wakeAt != h[j].wakeAt {
		return h[i].wakeAt < h[j].wakeAt
	}
	return h[i].seq < h[j].seq
}
func (h wakeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *wakeHeap) Push(x any)        { *h = append(*h, x.(*wakeEntry)) }
func (h *wakeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// CurrentTimeMillis returns the virtual "now" in milliseconds.
func (c *VirtualClock) CurrentTimeMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowMilli
}

// NanoTime returns a monotonic counter advanced in lockstep with the
// virtual clock's millisecond time, scaled to nanoseconds.
func (c *VirtualClock) NanoTime() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowMilli * 1_000_000
}

// ScheduleAfter registers continuation to run when Advance crosses
// now+d. It never fires on its own — only Advance/SetTime, or a
// Deterministic run's advanceToNext, drain it.
func (c *VirtualClock) ScheduleAfter(d Duration, continuation func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := &wakeEntry{
		wakeAt: c.nowMilli + d.AsMillis(),
		seq:    c.seq,
		fn:     continuation,
		active: true,
	}
	c.seq++
	heap.Push(&c.pending, entry)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		entry.active = false
	}
}

// Advance moves the virtual clock forward by d, running every due
// continuation in non-decreasing wakeAt order (ties broken by
// insertion order). Executing a continuation first advances nowMilli
// to exactly that continuation's wakeAt, per spec.
func (c *VirtualClock) Advance(d Duration) {
	target := c.CurrentTimeMillis() + d.AsMillis()
	c.drainUntil(target)
}

// SetTime jumps directly to millis, running every continuation due at
// or before it. It is a precondition failure to move time backwards.
func (c *VirtualClock) SetTime(millis int64) {
	c.mu.Lock()
	if millis < c.nowMilli {
		c.mu.Unlock()
		panic(fmt.Sprintf("keffect: VirtualClock.SetTime(%d) is before current time %d", millis, c.nowMilli))
	}
	c.mu.Unlock()
	c.drainUntil(millis)
}

// advanceToNext pops and runs the single earliest-due pending
// continuation, advancing nowMilli to exactly its wakeAt. Returns
// false if there is nothing pending. Used by the scheduler to drive a
// Deterministic-strategy program to completion without an external
// driver calling Advance for every step.
func (c *VirtualClock) advanceToNext() bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	entry := heap.Pop(&c.pending).(*wakeEntry)
	c.nowMilli = entry.wakeAt
	active := entry.active
	c.mu.Unlock()
	if active {
		entry.fn()
	}
	return true
}

func (c *VirtualClock) drainUntil(target int64) {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 || c.pending[0].wakeAt > target {
			if c.nowMilli < target {
				c.nowMilli = target
			}
			c.mu.Unlock()
			return
		}
		entry := heap.Pop(&c.pending).(*wakeEntry)
		c.nowMilli = entry.wakeAt
		active := entry.active
		c.mu.Unlock()
		if active {
			entry.fn()
		}
	}
}
