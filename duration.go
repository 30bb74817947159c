// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"fmt"
	"math"
	"time"
)

// Duration is a signed span of time expressed as seconds plus sub-second
// nanoseconds. Unlike time.Duration it cannot silently overflow: every
// arithmetic operation saturates at the representable extremes instead
// of wrapping.
type Duration struct {
	seconds int64
	nanos   int32
}

const nanosPerSecond = int64(time.Second)

// ZeroDuration is the additive identity.
var ZeroDuration = Duration{}

// Seconds constructs a Duration of s seconds.
func Seconds(s int64) Duration { return Duration{seconds: s} }

// Millis constructs a Duration of ms milliseconds.
func Millis(ms int64) Duration { return fromNanos(ms, int64(time.Millisecond)) }

// Micros constructs a Duration of us microseconds.
func Micros(us int64) Duration { return fromNanos(us, int64(time.Microsecond)) }

// Minutes constructs a Duration of m minutes.
func Minutes(m int64) Duration { return saturatingSeconds(m, 60) }

// Hours constructs a Duration of h hours.
func Hours(h int64) Duration { return saturatingSeconds(h, 3600) }

func fromNanos(units, unitNanos int64) Duration {
	totalNanos, overflow := mulOverflows(units, unitNanos)
	if overflow {
		if (units > 0) == (unitNanos > 0) {
			return Duration{seconds: math.MaxInt64}
		}
		return Duration{seconds: math.MinInt64}
	}
	sec := totalNanos / nanosPerSecond
	nanoRem := totalNanos % nanosPerSecond
	if nanoRem < 0 {
		nanoRem += nanosPerSecond
		sec--
	}
	return Duration{seconds: sec, nanos: int32(nanoRem)}
}

func saturatingSeconds(units, perUnit int64) Duration {
	sec, overflow := mulOverflows(units, perUnit)
	if overflow {
		if (units > 0) == (perUnit > 0) {
			return Duration{seconds: math.MaxInt64}
		}
		return Duration{seconds: math.MinInt64}
	}
	return Duration{seconds: sec}
}

func mulOverflows(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, true
	}
	return r, false
}

// Plus returns d + other, saturating on overflow rather than wrapping.
func (d Duration) Plus(other Duration) Duration {
	sec := d.seconds + other.seconds
	if (other.seconds > 0 && sec < d.seconds) || (other.seconds < 0 && sec > d.seconds) {
		if other.seconds > 0 {
			return Duration{seconds: math.MaxInt64, nanos: 999999999}
		}
		return Duration{seconds: math.MinInt64}
	}
	nanos := d.nanos + other.nanos
	if nanos >= int32(nanosPerSecond) {
		nanos -= int32(nanosPerSecond)
		sec++
	} else if nanos < 0 {
		nanos += int32(nanosPerSecond)
		sec--
	}
	return Duration{seconds: sec, nanos: nanos}
}

// Times scales d by a real factor, saturating on overflow.
func (d Duration) Times(factor float64) Duration {
	total := d.Seconds() * factor
	if math.IsInf(total, 1) || total > math.MaxInt64 {
		return Duration{seconds: math.MaxInt64, nanos: 999999999}
	}
	if math.IsInf(total, -1) || total < math.MinInt64 {
		return Duration{seconds: math.MinInt64}
	}
	sec := math.Floor(total)
	frac := total - sec
	return Duration{seconds: int64(sec), nanos: int32(frac * float64(nanosPerSecond))}
}

// Seconds returns the duration as a floating-point number of seconds.
func (d Duration) Seconds() float64 {
	return float64(d.seconds) + float64(d.nanos)/float64(nanosPerSecond)
}

// AsMillis returns the duration as an integer number of milliseconds,
// truncating any remaining sub-millisecond component.
func (d Duration) AsMillis() int64 {
	return d.seconds*1000 + int64(d.nanos)/int64(time.Millisecond)
}

// Std converts to the standard library's time.Duration, saturating if
// the value does not fit.
func (d Duration) Std() time.Duration {
	sec := d.seconds
	if sec > math.MaxInt64/int64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	if sec < math.MinInt64/int64(time.Second) {
		return time.Duration(math.MinInt64)
	}
	return time.Duration(sec)*time.Second + time.Duration(d.nanos)
}

// IsZero reports whether d is the zero duration.
func (d Duration) IsZero() bool { return d.seconds == 0 && d.nanos == 0 }

// Less reports whether d is strictly shorter than other.
func (d Duration) Less(other Duration) bool {
	if d.seconds != other.seconds {
		return d.seconds < other.seconds
	}
	return d.nanos < other.nanos
}

// String renders the duration for diagnostics.
func (d Duration) String() string {
	return fmt.Sprintf("%gs", d.Seconds())
}
