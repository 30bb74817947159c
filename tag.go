// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

import "github.com/google/uuid"

// Tag is an opaque, stable key into a Context, carrying a phantom type
// T so that Get returns the correctly-typed value without a
// runtime cast at the call site. Two Tags minted with the same name
// are still distinct keys: identity is the uuid, not the name — the
// name exists purely for diagnostics, following the pack's preference
// (pumped-go/examples/health-monitor, tailored-agentic-units-kernel)
// for uuid-backed stable identifiers over bare strings.
type Tag[T any] struct {
	id   uuid.UUID
	name string
}

// NewTag mints a fresh Tag[T] with a human-readable name used only in
// diagnostics and logging, never in identity comparisons.
func NewTag[T any](name string) Tag[T] {
	return Tag[T]{id: uuid.New(), name: name}
}

// Name returns the diagnostic name the tag was minted with.
func (t Tag[T]) Name() string { return t.name }

// untypedTag is the type-erased identity used as a Context map key.
type untypedTag struct {
	id uuid.UUID
}

func (t Tag[T]) erase() untypedTag { return untypedTag{id: t.id} }
