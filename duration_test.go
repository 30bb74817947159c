// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect_test

import (
	"testing"

	"code.hybscloud.com/keffect"
)

func TestDurationConstructorsAgreeOnMillis(t *testing.T) {
	cases := []struct {
		name string
		d    keffect.Duration
		want int64
	}{
		{"seconds", keffect.Seconds(2), 2000},
		{"millis", keffect.Millis(1500), 1500},
		{"minutes", keffect.Minutes(1), 60_000},
	}
	for _, c := range cases {
		if got := c.d.AsMillis(); got != c.want {
			t.Errorf("%s: got %d millis, want %d", c.name, got, c.want)
		}
	}
}

func TestDurationPlusAndTimes(t *testing.T) {
	sum := keffect.Seconds(1).Plus(keffect.Millis(500))
	if sum.AsMillis() != 1500 {
		t.Fatalf("got %d, want 1500", sum.AsMillis())
	}
	doubled := keffect.Seconds(1).Times(2.5)
	if doubled.AsMillis() != 2500 {
		t.Fatalf("got %d, want 2500", doubled.AsMillis())
	}
}

func TestDurationLessOrdersCorrectly(t *testing.T) {
	short := keffect.Millis(100)
	long := keffect.Seconds(1)
	if !short.Less(long) {
		t.Fatal("expected 100ms < 1s")
	}
	if long.Less(short) {
		t.Fatal("expected 1s to not be less than 100ms")
	}
	if short.Less(short) {
		t.Fatal("expected a duration to not be less than itself")
	}
}

func TestDurationIsZero(t *testing.T) {
	if !keffect.ZeroDuration.IsZero() {
		t.Fatal("expected ZeroDuration.IsZero() to be true")
	}
	if keffect.Millis(1).IsZero() {
		t.Fatal("expected a nonzero duration to report IsZero() false")
	}
}
