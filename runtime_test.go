// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/keffect"
	"code.hybscloud.com/keffect/keffecttest"
)

func TestRunSafelyPackagesTheFullCause(t *testing.T) {
	rt := keffect.NewRuntime()
	a := errors.New("a")
	b := errors.New("b")
	eff := keffect.Fail[int](keffect.ParallelCause(keffect.FailCause(a), keffect.FailCause(b)))
	either := keffect.RunSafely(rt, eff)
	cause, isLeft := either.Left()
	if !isLeft {
		t.Fatal("expected a Left carrying the Cause")
	}
	if cause.IsFail() {
		t.Fatal("expected the Parallel shape to survive, not collapse to a single leaf")
	}
}

func TestRunResultReportsSuccessAndFailure(t *testing.T) {
	rt := keffect.NewRuntime()

	ok := keffect.RunResult(rt, keffect.Succeed(5))
	if !ok.IsSuccess() {
		t.Fatal("expected success")
	}
	if v, present := ok.Value(); !present || v != 5 {
		t.Fatalf("got value=%v present=%v, want 5/true", v, present)
	}

	bad := keffect.RunResult(rt, keffect.Fail[int](keffect.FailCause(errors.New("x"))))
	if !bad.IsFailure() {
		t.Fatal("expected failure")
	}
	if _, present := bad.CauseOf(); !present {
		t.Fatal("expected a Cause to be present on failure")
	}
}

func TestProvideMakesServiceVisibleAndRestoresAfter(t *testing.T) {
	tag := keffect.NewTag[int]("counter")
	inner := keffect.ServiceOf(tag).Provide(keffect.With(keffect.EmptyContext, tag, 7))
	rt := keffect.NewRuntime()
	got, err := keffect.Run(rt, inner)
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}

	outer := keffect.FlatMap(inner, func(int) keffect.Effect[int] { return keffect.ServiceOf(tag) })
	rt2 := keffect.NewRuntime()
	if _, err := keffect.Run(rt2, outer); err == nil {
		t.Fatal("expected ServiceNotFoundError outside the Provide block")
	}
}

func TestForkAndAwait(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	eff := keffect.FlatMap(keffect.Succeed(21).Fork(), func(f *keffect.Fiber[int]) keffect.Effect[int] {
		return keffect.Map(f.Await(), func(v int) int { return v * 2 })
	})
	got, err := keffect.Run(rt, eff)
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestForkedFiberFailurePropagatesThroughAwait(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	boom := errors.New("boom")
	eff := keffect.FlatMap(keffect.Fail[int](keffect.FailCause(boom)).Fork(), func(f *keffect.Fiber[int]) keffect.Effect[int] {
		return f.Await()
	})
	_, err := keffect.Run(rt, eff)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
}

func TestCollectParFailsFastAndCancelsSiblings(t *testing.T) {
	rt, clock := keffecttest.NewTestRuntime()
	var cancelledObserved bool

	slowButCancellable := keffect.FlatMap(keffect.SleepFor(keffect.Seconds(10)), func(struct{}) keffect.Effect[int] {
		return keffect.Succeed(1)
	}).Ensuring(func() keffect.Effect[struct{}] {
		return keffect.Sync(func() (struct{}, error) {
			cancelledObserved = true
			return struct{}{}, nil
		})
	})

	fast := keffect.Fail[int](keffect.FailCause(errors.New("fails immediately")))

	eff := keffect.CollectPar([]keffect.Effect[int]{slowButCancellable, fast})
	_, err := keffect.Run(rt, eff)
	if err == nil {
		t.Fatal("expected CollectPar to fail fast on the first sibling failure")
	}
	clock.Advance(keffect.Seconds(1))
	if !cancelledObserved {
		t.Fatal("expected the slower sibling's Ensuring finalizer to run on interruption")
	}
}

// neverEndingChild, plus the yield-then-interrupt shape below, is
// shared by the ParAll and Race external-interrupt tests: fork a
// fiber that immediately parks inside CollectPar/RaceAll, yield once
// so the scheduler actually runs it to that suspension point, then
// interrupt the fiber from the outside and confirm the cancellation
// reaches the still-running child instead of waiting for it to finish
// on its own.
func neverEndingChild(cancelled *bool) keffect.Effect[int] {
	return keffect.FlatMap(keffect.SleepFor(keffect.Seconds(100)), func(struct{}) keffect.Effect[int] {
		return keffect.Succeed(1)
	}).Ensuring(func() keffect.Effect[struct{}] {
		return keffect.Sync(func() (struct{}, error) {
			*cancelled = true
			return struct{}{}, nil
		})
	})
}

func TestInterruptingAFiberParkedInParAllCancelsItsChildren(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	var cancelled bool
	parked := keffect.CollectPar([]keffect.Effect[int]{neverEndingChild(&cancelled)})

	eff := keffect.FlatMap(parked.Fork(), func(f *keffect.Fiber[[]int]) keffect.Effect[struct{}] {
		return keffect.FlatMap(keffect.SleepFor(keffect.ZeroDuration), func(struct{}) keffect.Effect[struct{}] {
			return keffect.Sync(func() (struct{}, error) {
				f.Interrupt()
				return struct{}{}, nil
			})
		})
	})

	if _, err := keffect.Run(rt, eff); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if !cancelled {
		t.Fatal("expected interrupting the parked fiber to cascade into its ParAll child")
	}
}

func TestInterruptingAFiberParkedInRaceCancelsItsChildren(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	var cancelled bool
	parked := keffect.RaceAll([]keffect.Effect[int]{neverEndingChild(&cancelled)})

	eff := keffect.FlatMap(parked.Fork(), func(f *keffect.Fiber[int]) keffect.Effect[struct{}] {
		return keffect.FlatMap(keffect.SleepFor(keffect.ZeroDuration), func(struct{}) keffect.Effect[struct{}] {
			return keffect.Sync(func() (struct{}, error) {
				f.Interrupt()
				return struct{}{}, nil
			})
		})
	})

	if _, err := keffect.Run(rt, eff); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if !cancelled {
		t.Fatal("expected interrupting the parked fiber to cascade into its Race child")
	}
}

func TestRaceAllReturnsFirstSuccess(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	fast := keffect.Map(keffect.SleepFor(keffect.Millis(10)), func(struct{}) int { return 1 })
	slow := keffect.Map(keffect.SleepFor(keffect.Seconds(10)), func(struct{}) int { return 2 })
	got, err := keffect.Run(rt, keffect.RaceAll([]keffect.Effect[int]{fast, slow}))
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if got != 1 {
		t.Fatalf("got %d, want 1 (the faster sibling)", got)
	}
}

func TestTimeoutFailsSlowEffect(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	slow := keffect.Map(keffect.SleepFor(keffect.Seconds(10)), func(struct{}) int { return 1 })
	result := keffect.RunResult(rt, slow.Timeout(keffect.Seconds(1)))
	if !result.IsFailure() {
		t.Fatal("expected Timeout to fail the slower effect")
	}
	cause, _ := result.CauseOf()
	if !keffect.IsTimeout(cause) {
		t.Fatal("expected the failure cause to be a timeout")
	}
}

func TestTimeoutThenCatchRecovers(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	slow := keffect.Map(keffect.SleepFor(keffect.Seconds(10)), func(struct{}) int { return 1 })
	isTimeout := func(err error) bool {
		_, ok := err.(*keffect.TimeoutError)
		return ok
	}
	recovered := slow.Timeout(keffect.Seconds(1)).Catch(isTimeout, func(error) keffect.Effect[int] {
		return keffect.Succeed(99)
	})
	got, err := keffect.Run(rt, recovered)
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if got != 99 {
		t.Fatalf("got %d, want 99 (the Catch recovery value)", got)
	}
}

func TestRetryReattemptsSourceAfterTimeout(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	var attempts int32

	op := keffect.Suspend(func() keffect.Effect[int] {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			return keffect.Map(keffect.SleepFor(keffect.Seconds(10)), func(struct{}) int { return 0 })
		}
		return keffect.Succeed(7)
	})

	schedule := keffect.BoundedSchedule(keffect.FixedSchedule(keffect.Millis(10)), 5)
	got, err := keffect.Run(rt, op.Timeout(keffect.Seconds(1)).Retry(schedule))
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
	if attempts != 3 {
		t.Fatalf("got %d attempts, want 3 (two timeouts then a success)", attempts)
	}
}

func TestDeterministicClockOrdersSleeps(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	var observed []int64

	record := func(at int64) keffect.Effect[struct{}] {
		return keffect.Sync(func() (struct{}, error) {
			observed = append(observed, at)
			return struct{}{}, nil
		})
	}

	prog := keffect.FlatMap(record(0), func(struct{}) keffect.Effect[struct{}] {
		return keffect.FlatMap(keffect.SleepFor(keffect.Millis(1000)), func(struct{}) keffect.Effect[struct{}] {
			return keffect.FlatMap(record(1000), func(struct{}) keffect.Effect[struct{}] {
				return keffect.FlatMap(keffect.SleepFor(keffect.Millis(2000)), func(struct{}) keffect.Effect[struct{}] {
					return record(3000)
				})
			})
		})
	})

	if _, err := keffect.Run(rt, prog); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	want := []int64{0, 1000, 3000}
	if len(observed) != len(want) {
		t.Fatalf("got %v, want %v", observed, want)
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Fatalf("got %v, want %v", observed, want)
		}
	}
}

func TestDefaultRuntimeIsASingleton(t *testing.T) {
	a := keffect.DefaultRuntime()
	b := keffect.DefaultRuntime()
	if a != b {
		t.Fatal("expected DefaultRuntime to return the same instance across calls")
	}
}
