// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import "math/rand"

// ScheduleDecision is the outcome of consulting a Schedule for a given
// attempt: either Stop, or Continue after Delay.
type ScheduleDecision struct {
	ShouldContinue bool
	Delay          Duration
}

var stopDecision = ScheduleDecision{}

func continueAfter(d Duration) ScheduleDecision {
	return ScheduleDecision{ShouldContinue: true, Delay: d}
}

// Schedule is a data-driven retry/repeat policy: a tree of decision
// rules, never executable code. Step(attempt, elapsed) decides whether
// to continue and, if so, how long to wait before the next attempt.
// Schedules are immutable and safely shared across fibers.
type Schedule struct {
	step func(attempt int, elapsed Duration) ScheduleDecision
}

// Step evaluates the schedule for the given 0-based attempt number and
// elapsed wall time since the first attempt.
func (s Schedule) Step(attempt int, elapsed Duration) ScheduleDecision {
	return s.step(attempt, elapsed)
}

// OnceSchedule allows exactly one retry (attempt 0 only) with no delay.
func OnceSchedule() Schedule {
	return Schedule{step: func(attempt int, _ Duration) ScheduleDecision {
		if attempt == 0 {
			return continueAfter(ZeroDuration)
		}
		return stopDecision
	}}
}

// FixedSchedule retries forever with a constant delay d.
func FixedSchedule(d Duration) Schedule {
	return Schedule{step: func(int, Duration) ScheduleDecision {
		return continueAfter(d)
	}}
}

// ExponentialSchedule retries forever, with the delay for attempt n
// equal to base * factor^n.
func ExponentialSchedule(base Duration, factor float64) Schedule {
	return Schedule{step: func(attempt int, _ Duration) ScheduleDecision {
		d := base
		for i := 0; i < attempt; i++ {
			d = d.Times(factor)
		}
		return continueAfter(d)
	}}
}

// FibonacciSchedule retries forever, with delays following the
// Fibonacci sequence scaled by base: base, base, 2*base, 3*base, ...
func FibonacciSchedule(base Duration) Schedule {
	return Schedule{step: func(attempt int, _ Duration) ScheduleDecision {
		a, b := int64(1), int64(1)
		for i := 0; i < attempt; i++ {
			a, b = b, a+b
		}
		return continueAfter(base.Times(float64(a)))
	}}
}

// LinearSchedule retries forever, with the delay for attempt n equal
// to base * (n+1).
func LinearSchedule(base Duration) Schedule {
	return Schedule{step: func(attempt int, _ Duration) ScheduleDecision {
		return continueAfter(base.Times(float64(attempt + 1)))
	}}
}

// BoundedSchedule stops after maxAttempts attempts, deferring to s
// otherwise. Bounds are checked before the underlying schedule is
// consulted, per spec.
func BoundedSchedule(s Schedule, maxAttempts int) Schedule {
	return Schedule{step: func(attempt int, elapsed Duration) ScheduleDecision {
		if attempt+1 >= maxAttempts {
			return stopDecision
		}
		return s.Step(attempt, elapsed)
	}}
}

// UpToSchedule stops once elapsed exceeds maxWallDuration, deferring to
// s otherwise. Bounds are checked before the underlying schedule.
func UpToSchedule(s Schedule, maxWallDuration Duration) Schedule {
	return Schedule{step: func(attempt int, elapsed Duration) ScheduleDecision {
		if maxWallDuration.Less(elapsed) {
			return stopDecision
		}
		return s.Step(attempt, elapsed)
	}}
}

// JitteredSchedule multiplies s's delay by a uniform random factor in
// [1-f, 1+f]. f must be in [0,1].
func JitteredSchedule(s Schedule, f float64) Schedule {
	return Schedule{step: func(attempt int, elapsed Duration) ScheduleDecision {
		d := s.Step(attempt, elapsed)
		if !d.ShouldContinue {
			return d
		}
		jitter := 1 - f + rand.Float64()*2*f
		return continueAfter(d.Delay.Times(jitter))
	}}
}
