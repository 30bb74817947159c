// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
)

// causeKind tags which of the four Cause shapes a value holds.
type causeKind int

const (
	causeFail causeKind = iota
	causeInterrupt
	causeParallel
	causeSequential
)

// Cause is the structured failure algebra. A failed Effect never
// degrades to a bare error: it always carries the full shape of what
// went wrong, including interruption and the failures of concurrent
// siblings or finalizers. Construct with FailCause, InterruptCause,
// ParallelCause, or SequentialCause; never via a struct literal.
type Cause struct {
	kind   causeKind
	err    error
	causes []Cause // Parallel / Sequential children, len >= 1
}

// FailCause wraps a leaf error value as a Cause.
func FailCause(err error) Cause {
	return Cause{kind: causeFail, err: err}
}

// InterruptCause returns the singleton cooperative-cancellation Cause.
func InterruptCause() Cause {
	return Cause{kind: causeInterrupt}
}

// ParallelCause joins independent simultaneous failures. A single
// element collapses to that element, per the collapse-singleton
// invariant; Parallel of zero causes is not constructible and panics.
func ParallelCause(causes ...Cause) Cause {
	return collapse(causeParallel, causes)
}

// SequentialCause joins failures accumulated along a sequence (e.g. a
// primary failure followed by a finalizer's own failure). A single
// element collapses to that element; Sequential of zero causes panics.
func SequentialCause(causes ...Cause) Cause {
	return collapse(causeSequential, causes)
}

func collapse(kind causeKind, causes []Cause) Cause {
	flat := make([]Cause, 0, len(causes))
	for _, c := range causes {
		if c.kind == kind {
			flat = append(flat, c.causes...)
		} else {
			flat = append(flat, c)
		}
	}
	switch len(flat) {
	case 0:
		panic("keffect: Cause composition requires at least one child cause")
	case 1:
		return flat[0]
	default:
		return Cause{kind: kind, causes: flat}
	}
}

// IsInterrupt reports whether this Cause is exactly an interruption
// leaf (not a composite that merely contains one).
func (c Cause) IsInterrupt() bool { return c.kind == causeInterrupt }

// IsFail reports whether this Cause is a single leaf failure.
func (c Cause) IsFail() bool { return c.kind == causeFail }

// Contains reports whether any leaf failure in the cause tree matches
// errorKind, as judged by match.
func (c Cause) Contains(match func(error) bool) bool {
	switch c.kind {
	case causeFail:
		return match(c.err)
	case causeInterrupt:
		return false
	default:
		for _, child := range c.causes {
			if child.Contains(match) {
				return true
			}
		}
		return false
	}
}

// Map transforms every leaf error in the cause tree with f, leaving
// the Interrupt/Parallel/Sequential shape untouched.
func (c Cause) Map(f func(error) error) Cause {
	switch c.kind {
	case causeFail:
		return FailCause(f(c.err))
	case causeInterrupt:
		return c
	default:
		mapped := make([]Cause, len(c.causes))
		for i, child := range c.causes {
			mapped[i] = child.Map(f)
		}
		return Cause{kind: c.kind, causes: mapped}
	}
}

// ToException reduces the cause to a single error value for callers
// that cannot consume the full tree. For Sequential it returns the
// last leaf's error; for Parallel, a composite wrapping all leaves;
// Interrupt yields ErrInterrupted.
func (c Cause) ToException() error {
	switch c.kind {
	case causeFail:
		return c.err
	case causeInterrupt:
		return ErrInterrupted
	case causeSequential:
		return c.causes[len(c.causes)-1].ToException()
	default: // causeParallel
		errs := make([]error, len(c.causes))
		for i, child := range c.causes {
			errs[i] = child.ToException()
		}
		return &parallelError{errs: errs}
	}
}

type parallelError struct{ errs []error }

func (p *parallelError) Error() string {
	parts := make([]string, len(p.errs))
	for i, e := range p.errs {
		parts[i] = e.Error()
	}
	return "keffect: parallel failure: " + strings.Join(parts, "; ")
}

func (p *parallelError) Unwrap() []error { return p.errs }

// ErrInterrupted is returned by ToException for an interrupted Cause.
var ErrInterrupted = fmt.Errorf("keffect: interrupted")

// String renders the cause as an indented tree using unicode markers,
// with no external dependency — the fallback for tests that should
// not depend on treedrawer's exact layout.
func (c Cause) String() string {
	var b strings.Builder
	c.writeIndented(&b, "", true)
	return strings.TrimRight(b.String(), "\n")
}

func (c Cause) writeIndented(b *strings.Builder, prefix string, last bool) {
	branch := "├─ "
	nextPrefix := prefix + "│  "
	if last {
		branch = "└─ "
		nextPrefix = prefix + "   "
	}
	b.WriteString(prefix)
	b.WriteString(branch)
	switch c.kind {
	case causeFail:
		b.WriteString("Fail: ")
		b.WriteString(c.err.Error())
		b.WriteString("\n")
	case causeInterrupt:
		b.WriteString("Interrupt\n")
	case causeParallel:
		b.WriteString("Parallel\n")
		for i, child := range c.causes {
			child.writeIndented(b, nextPrefix, i == len(c.causes)-1)
		}
	case causeSequential:
		b.WriteString("Sequential\n")
		for i, child := range c.causes {
			child.writeIndented(b, nextPrefix, i == len(c.causes)-1)
		}
	}
}

// Error satisfies the error interface so a Cause can be returned
// wherever a plain error is expected; the message is that of
// ToException.
func (c Cause) Error() string { return c.ToException().Error() }

// PrettyPrint renders the cause as a tree.Tree using treedrawer,
// grounded on the dependency-graph rendering in the teacher pack's
// extensions/graph_debug.go: Fail/Interrupt draw as a single node;
// Sequential and Parallel both draw their children as sibling branches
// under a labelled root, so Sequential is not drawn as a chain. A child
// that is itself Parallel or Sequential is drawn as a one-line summary
// (its kind and child count); its own children are not drawn.
func (c Cause) PrettyPrint() string {
	t := c.toTree()
	return t.String()
}

func (c Cause) toTree() *tree.Tree {
	switch c.kind {
	case causeFail:
		return tree.NewTree(tree.NodeString("Fail: " + c.err.Error()))
	case causeInterrupt:
		return tree.NewTree(tree.NodeString("Interrupt"))
	case causeParallel:
		t := tree.NewTree(tree.NodeString("Parallel"))
		for _, child := range c.causes {
			t.AddChild(tree.NodeString(child.oneLineSummary()))
		}
		return t
	default:
		t := tree.NewTree(tree.NodeString("Sequential"))
		for _, child := range c.causes {
			t.AddChild(tree.NodeString(child.oneLineSummary()))
		}
		return t
	}
}

func (c Cause) oneLineSummary() string {
	switch c.kind {
	case causeFail:
		return "Fail: " + c.err.Error()
	case causeInterrupt:
		return "Interrupt"
	case causeParallel:
		return fmt.Sprintf("Parallel(%d)", len(c.causes))
	default:
		return fmt.Sprintf("Sequential(%d)", len(c.causes))
	}
}

// LogValue implements slog.LogValuer so a Cause logged via slog renders
// as a structured group (kind + nested children) instead of a raw
// string, following the structured-over-string logging convention
// visible throughout the example pack.
func (c Cause) LogValue() slog.Value {
	switch c.kind {
	case causeFail:
		return slog.GroupValue(
			slog.String("kind", "fail"),
			slog.String("error", c.err.Error()),
		)
	case causeInterrupt:
		return slog.GroupValue(slog.String("kind", "interrupt"))
	default:
		kindName := "parallel"
		if c.kind == causeSequential {
			kindName = "sequential"
		}
		attrs := []slog.Attr{slog.String("kind", kindName), slog.Int("count", len(c.causes))}
		for i, child := range c.causes {
			attrs = append(attrs, slog.Any(fmt.Sprintf("cause[%d]", i), child))
		}
		return slog.GroupValue(attrs...)
	}
}
