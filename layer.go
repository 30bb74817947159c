// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

// Layer is the declarative service-construction building block: given
// the Scope that spans the whole provide-and-use operation ProvideTo
// establishes, build produces a Context of newly-bound services. A
// resource-owning layer (see NewScopedLayer) registers its shutdown as
// a finalizer on that Scope, so it stays open for as long as the
// services it provides are in use and closes only once ProvideTo's
// caller is done with them — not the instant build itself completes.
// Layer has no type parameter of its own — its In/Out service sets
// live entirely in the Contexts it reads and returns — so
// Combine/AndThen/ProvideTo never run into Go's "no extra type
// parameters on a method" limit that forces Map/FlatMap to be free
// functions (combinators.go).
type Layer struct {
	build func(*Scope) Effect[Context]
}

// NewLayer wraps an Effect that produces a Context as a Layer with no
// resources of its own to release.
func NewLayer(build Effect[Context]) Layer {
	return Layer{build: func(*Scope) Effect[Context] { return build }}
}

// NewScopedLayer wraps a Scope-aware builder as a Layer. Use this for
// a Layer that acquires a resource and registers its release as a
// finalizer on the scope it is handed, such as a layer that opens a
// database handle and closes it on that scope.
func NewScopedLayer(build func(*Scope) Effect[Context]) Layer {
	return Layer{build: build}
}

// LayerValue builds a Layer that unconditionally provides a single
// service binding, the most common leaf case.
func LayerValue[T any](tag Tag[T], value T) Layer {
	return NewLayer(Succeed(With(EmptyContext, tag, value)))
}

// Combine runs a and b independently and merges their output
// Contexts, right-biased on key collision (b's bindings win).
func (l Layer) Combine(other Layer) Layer {
	return NewScopedLayer(func(scope *Scope) Effect[Context] {
		return FlatMap(l.build(scope), func(ctxA Context) Effect[Context] {
			return Map(other.build(scope), func(ctxB Context) Context {
				return ctxA.Merge(ctxB)
			})
		})
	})
}

// AndThen runs l, then runs next with l's output Context made visible
// as part of next's input Context; the combined output merges both,
// right-biased toward next.
func (l Layer) AndThen(next Layer) Layer {
	return NewScopedLayer(func(scope *Scope) Effect[Context] {
		return FlatMap(l.build(scope), func(ctxA Context) Effect[Context] {
			return Map(next.build(scope).Provide(ctxA), func(ctxB Context) Context {
				return ctxA.Merge(ctxB)
			})
		})
	})
}

// ProvideTo opens a Scope spanning the layer's construction and
// effect's entire run, builds the layer's Context within it, then runs
// effect inside that Context; the Scope (and anything the layer
// registered on it) closes only once effect has fully completed. A
// free function (not a method) because it introduces a type parameter
// Layer itself does not carry, for the same reason Map/FlatMap are
// free functions.
func ProvideTo[A any](l Layer, effect Effect[A]) Effect[A] {
	return Scoped(func(scope *Scope) Effect[A] {
		return FlatMap(l.build(scope), func(ctx Context) Effect[A] {
			return effect.Provide(ctx)
		})
	})
}
