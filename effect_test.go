// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/keffect"
)

func runOrFatal[A any](t *testing.T, eff keffect.Effect[A]) A {
	t.Helper()
	rt := keffect.NewRuntime()
	v, err := keffect.Run(rt, eff)
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	return v
}

func TestMapFlatMapChain(t *testing.T) {
	eff := keffect.FlatMap(keffect.Succeed(3), func(x int) keffect.Effect[int] {
		return keffect.Map(keffect.Succeed(x*2), func(y int) int { return y + 5 })
	})
	got := runOrFatal(t, eff)
	if got != 11 {
		t.Fatalf("got %d, want 11", got)
	}
}

func TestFailurePropagatesThroughMap(t *testing.T) {
	boom := errors.New("boom")
	eff := keffect.Map(keffect.Fail[int](keffect.FailCause(boom)), func(x int) int { return x + 1 })
	rt := keffect.NewRuntime()
	_, err := keffect.Run(rt, eff)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
}

func TestCatchRecovers(t *testing.T) {
	boom := errors.New("boom")
	eff := keffect.Fail[string](keffect.FailCause(boom)).Catch(
		func(error) bool { return true },
		func(error) keffect.Effect[string] { return keffect.Succeed("ok") },
	)
	got := runOrFatal(t, eff)
	if got != "ok" {
		t.Fatalf("got %q, want ok", got)
	}
}

func TestCatchNonMatchingPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	eff := keffect.Fail[string](keffect.FailCause(boom)).Catch(
		func(error) bool { return false },
		func(error) keffect.Effect[string] { return keffect.Succeed("recovered") },
	)
	rt := keffect.NewRuntime()
	_, err := keffect.Run(rt, eff)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom to survive", err)
	}
}

func TestOrElseFallsBackOnFailure(t *testing.T) {
	eff := keffect.Fail[int](keffect.FailCause(errors.New("x"))).OrElse(keffect.Succeed(42))
	got := runOrFatal(t, eff)
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestEnsuringRunsOnSuccessAndFailure(t *testing.T) {
	var ran []string

	succ := keffect.Succeed(1).Ensuring(func() keffect.Effect[struct{}] {
		return keffect.Sync(func() (struct{}, error) {
			ran = append(ran, "after-success")
			return struct{}{}, nil
		})
	})
	runOrFatal(t, succ)

	fail := keffect.Fail[int](keffect.FailCause(errors.New("boom"))).Ensuring(func() keffect.Effect[struct{}] {
		return keffect.Sync(func() (struct{}, error) {
			ran = append(ran, "after-failure")
			return struct{}{}, nil
		})
	})
	rt := keffect.NewRuntime()
	_, err := keffect.Run(rt, fail)
	if err == nil {
		t.Fatal("expected failure to survive Ensuring")
	}

	if len(ran) != 2 || ran[0] != "after-success" || ran[1] != "after-failure" {
		t.Fatalf("got %v, want both finalizers to run", ran)
	}
}

func TestEnsuringJoinsFinalizerFailureSequentially(t *testing.T) {
	original := errors.New("original")
	finalizerErr := errors.New("finalizer")
	eff := keffect.Fail[int](keffect.FailCause(original)).Ensuring(func() keffect.Effect[struct{}] {
		return keffect.Fail[struct{}](keffect.FailCause(finalizerErr))
	})
	rt := keffect.NewRuntime()
	cause, failed := keffect.RunResult(rt, eff).CauseOf()
	if !failed {
		t.Fatal("expected failure")
	}
	if cause.IsFail() {
		t.Fatal("expected a Sequential cause joining both failures")
	}
	if !cause.Contains(func(e error) bool { return errors.Is(e, original) }) {
		t.Fatal("expected original failure to survive in the joined cause")
	}
	if !cause.Contains(func(e error) bool { return errors.Is(e, finalizerErr) }) {
		t.Fatal("expected finalizer failure to survive in the joined cause")
	}
}

func TestWhen(t *testing.T) {
	ran := false
	eff := keffect.When(false, keffect.Sync(func() (int, error) {
		ran = true
		return 1, nil
	}))
	got := runOrFatal(t, eff)
	if ran || got != 0 {
		t.Fatalf("expected When(false, ...) to be a no-op, got ran=%v value=%d", ran, got)
	}
}

func TestAttemptRecoversPanic(t *testing.T) {
	eff := keffect.Attempt(func() int { panic("kaboom") })
	rt := keffect.NewRuntime()
	_, err := keffect.Run(rt, eff)
	if err == nil {
		t.Fatal("expected Attempt to convert the panic into a failure")
	}
}

func TestFlatMapIsStackSafe(t *testing.T) {
	const n = 1_000_000
	var build func(i int) keffect.Effect[int]
	build = func(i int) keffect.Effect[int] {
		if i == n {
			return keffect.Succeed(0)
		}
		return keffect.Suspend(func() keffect.Effect[int] {
			return keffect.FlatMap(build(i+1), func(rest int) keffect.Effect[int] {
				return keffect.Succeed(rest + 1)
			})
		})
	}
	got := runOrFatal(t, build(0))
	if got != n {
		t.Fatalf("got %d, want %d", got, n)
	}
}

func TestCollectRunsSequentially(t *testing.T) {
	var order []int
	effects := make([]keffect.Effect[int], 0, 3)
	for i := 1; i <= 3; i++ {
		i := i
		effects = append(effects, keffect.Sync(func() (int, error) {
			order = append(order, i)
			return i * i, nil
		}))
	}
	got := runOrFatal(t, keffect.Collect(effects))
	want := []int{1, 4, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected sequential left-to-right order, got %v", order)
	}
}
