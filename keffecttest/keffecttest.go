// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package keffecttest provides the test-tooling ambient stack for
// programs built on keffect: a Runtime wired to a VirtualClock so
// time-dependent programs are deterministic and their results never
// depend on real wall-clock scheduling jitter.
package keffecttest

import "code.hybscloud.com/keffect"

// NewTestRuntime returns a Runtime backed by the Deterministic
// strategy and a fresh VirtualClock, plus the clock itself so the
// caller can Advance or SetTime it around Run calls — the shape the
// time-dependent tests of keffect use.
func NewTestRuntime(opts ...keffect.RuntimeOption) (*keffect.Runtime, *keffect.VirtualClock) {
	clock := keffect.NewVirtualClock()
	allOpts := append([]keffect.RuntimeOption{
		keffect.WithStrategy(keffect.Deterministic),
		keffect.WithClock(clock),
	}, opts...)
	return keffect.NewRuntime(allOpts...), clock
}
