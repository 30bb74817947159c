// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import "fmt"

// ServiceNotFoundError is the leaf error of the Cause produced when a
// Service(tag) effect runs against a Context lacking a binding for
// tag.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("keffect: service not found: %s", e.Name)
}

// TimeoutError is the distinguished subclass of Interrupt raised when
// an Effect.Timeout deadline elapses before its source completes.
type TimeoutError struct{}

func (*TimeoutError) Error() string { return "keffect: timed out" }

// IsTimeout reports whether cause's leaf error is a TimeoutError,
// useful in a Catch matcher distinguishing timeouts from other
// interruptions.
func IsTimeout(cause Cause) bool {
	return cause.Contains(func(err error) bool {
		_, ok := err.(*TimeoutError)
		return ok
	})
}

// contractViolation panics with the "keffect: "-prefixed message
// convention used throughout this package for violations of its own
// API contract (as opposed to recoverable domain failures, which are
// always Cause values, never panics).
func contractViolation(msg string) {
	panic("keffect: " + msg)
}
