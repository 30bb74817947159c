// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/keffect"
	"code.hybscloud.com/keffect/keffecttest"
)

func TestMapErrorTransformsLeafAcrossCompositeCauses(t *testing.T) {
	rt := keffect.NewRuntime()
	a := errors.New("a")
	b := errors.New("b")
	eff := keffect.MapError(
		keffect.Fail[int](keffect.ParallelCause(keffect.FailCause(a), keffect.FailCause(b))),
		func(e error) error { return errors.New("mapped: " + e.Error()) },
	)
	either := keffect.RunSafely(rt, eff)
	cause, _ := either.Left()
	if !cause.Contains(func(e error) bool { return e.Error() == "mapped: a" }) {
		t.Fatal("expected the first Parallel leaf to be transformed")
	}
	if !cause.Contains(func(e error) bool { return e.Error() == "mapped: b" }) {
		t.Fatal("expected the second Parallel leaf to be transformed")
	}
}

func TestTapRunsWithoutAlteringValue(t *testing.T) {
	rt := keffect.NewRuntime()
	seen := 0
	eff := keffect.Tap(keffect.Succeed(9), func(v int) { seen = v })
	got, err := keffect.Run(rt, eff)
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if got != 9 || seen != 9 {
		t.Fatalf("got value=%d seen=%d, want both 9", got, seen)
	}
}

func TestTapErrorObservesWithoutConsuming(t *testing.T) {
	rt := keffect.NewRuntime()
	boom := errors.New("boom")
	var observed keffect.Cause
	eff := keffect.TapError(keffect.Fail[int](keffect.FailCause(boom)), func(c keffect.Cause) {
		observed = c
	})
	_, err := keffect.Run(rt, eff)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom to still propagate", err)
	}
	if !observed.IsFail() || !errors.Is(observed.ToException(), boom) {
		t.Fatal("expected TapError to observe the original cause")
	}
}

func TestDelaySleepsBeforeRunning(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	ran := false
	eff := keffect.Delay(keffect.Millis(500), keffect.Sync(func() (int, error) {
		ran = true
		return 3, nil
	}))
	got, err := keffect.Run(rt, eff)
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if !ran || got != 3 {
		t.Fatalf("got ran=%v value=%d, want true/3", ran, got)
	}
}

func TestCollectParProducesResultsInInputOrder(t *testing.T) {
	rt, _ := keffecttest.NewTestRuntime()
	effects := []keffect.Effect[int]{
		keffect.Map(keffect.SleepFor(keffect.Millis(30)), func(struct{}) int { return 1 }),
		keffect.Map(keffect.SleepFor(keffect.Millis(10)), func(struct{}) int { return 2 }),
		keffect.Map(keffect.SleepFor(keffect.Millis(20)), func(struct{}) int { return 3 }),
	}
	got, err := keffect.Run(rt, keffect.CollectPar(effects))
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want input order %v regardless of completion order", got, want)
		}
	}
}
