// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect_test

import (
	"testing"

	"code.hybscloud.com/keffect"
)

func TestVirtualClockAdvanceFiresDueTimersInOrder(t *testing.T) {
	clock := keffect.NewVirtualClock()
	var fired []string

	clock.ScheduleAfter(keffect.Millis(200), func() { fired = append(fired, "second") })
	clock.ScheduleAfter(keffect.Millis(100), func() { fired = append(fired, "first") })
	clock.ScheduleAfter(keffect.Millis(300), func() { fired = append(fired, "third") })

	clock.Advance(keffect.Millis(250))

	want := []string{"first", "second"}
	if len(fired) != len(want) {
		t.Fatalf("got %v, want %v (the 300ms timer should not yet have fired)", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("got %v, want %v", fired, want)
		}
	}
	if clock.CurrentTimeMillis() != 250 {
		t.Fatalf("got now=%d, want 250", clock.CurrentTimeMillis())
	}
}

func TestVirtualClockCancelPreventsFiring(t *testing.T) {
	clock := keffect.NewVirtualClock()
	fired := false
	cancel := clock.ScheduleAfter(keffect.Millis(100), func() { fired = true })
	cancel()
	clock.Advance(keffect.Millis(200))
	if fired {
		t.Fatal("expected a cancelled timer to never fire")
	}
}

func TestVirtualClockSetTimeRejectsGoingBackwards(t *testing.T) {
	clock := keffect.NewVirtualClock()
	clock.SetTime(1000)
	defer func() {
		if recover() == nil {
			t.Fatal("expected SetTime to panic when moving time backwards")
		}
	}()
	clock.SetTime(500)
}
