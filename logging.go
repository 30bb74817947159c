// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

// logFork, logInterrupt, logComplete, logScopeOpen, and logScopeClose emit Debug-level
// diagnostics when a Runtime was built WithLogger — fiber lifecycle
// and scope open/close events, structured the way the pack's own
// slog.Handler-based extensions log (pumped-go/extensions/graph_debug.go).
// A nil logger (the default) makes these no-ops: a library should not
// log on a caller's behalf unless asked.

func (fs *fiberState) logFork(child *fiberState) {
	if fs.sched.logger == nil {
		return
	}
	fs.sched.logger.Debug("keffect: fork", "parent", fs.id, "child", child.id)
}

func (fs *fiberState) logInterrupt() {
	if fs.sched.logger == nil {
		return
	}
	fs.sched.logger.Debug("keffect: interrupt", "fiber", fs.id)
}

func (fs *fiberState) logComplete(failed bool) {
	if fs.sched.logger == nil {
		return
	}
	fs.sched.logger.Debug("keffect: fiber complete", "fiber", fs.id, "failed", failed)
}

func (fs *fiberState) logScopeOpen() {
	if fs.sched.logger == nil {
		return
	}
	fs.sched.logger.Debug("keffect: scope open", "fiber", fs.id)
}

func (fs *fiberState) logScopeClose(finalizerFailures int) {
	if fs.sched.logger == nil {
		return
	}
	fs.sched.logger.Debug("keffect: scope close", "fiber", fs.id, "finalizer_failures", finalizerFailures)
}
