// Copyright 2026 The Keffect Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keffect

// Context is an immutable map from service Tag to service value. Every
// mutating-looking operation (With, Merge) returns a new Context,
// leaving the receiver untouched, so a Provide-d Context can be safely
// shared between fibers.
type Context struct {
	values map[untypedTag]any
}

// EmptyContext is the Context with no bound services.
var EmptyContext = Context{}

// With returns a new Context extending c with tag bound to value.
func With[T any](c Context, tag Tag[T], value T) Context {
	next := make(map[untypedTag]any, len(c.values)+1)
	for k, v := range c.values {
		next[k] = v
	}
	next[tag.erase()] = value
	return Context{values: next}
}

// Get returns the value bound to tag and true, or the zero value of T
// and false if the context has no binding for it.
func Get[T any](c Context, tag Tag[T]) (T, bool) {
	raw, ok := c.values[tag.erase()]
	if !ok {
		var zero T
		return zero, false
	}
	return raw.(T), true
}

// Has reports whether c has a binding for tag.
func (c Context) Has(tag untypedTag) bool {
	_, ok := c.values[tag]
	return ok
}

// Merge combines c with other, right-biased: bindings in other win on
// key collision.
func (c Context) Merge(other Context) Context {
	next := make(map[untypedTag]any, len(c.values)+len(other.values))
	for k, v := range c.values {
		next[k] = v
	}
	for k, v := range other.values {
		next[k] = v
	}
	return Context{values: next}
}

// Size returns the number of bound services, for diagnostics.
func (c Context) Size() int { return len(c.values) }
