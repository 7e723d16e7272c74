// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package walk implements the recursive, type-driven folds that make up
// the contiguous serialization core's hard part: the Size Oracle, the
// Serializer, the Deserializer's descriptor-binding walk, and the
// Integrity Auditor. It mirrors the role the teacher's "reflection"
// package plays for dynssz — a pure, TypeDescriptor-keyed recursion, kept
// separate from the public API so conser and chandle can both depend on
// it without depending on each other.
package walk

import (
	"math"

	"github.com/conser-go/conser/contypes"
)

// Context carries the per-Codec configuration the walk needs: the default
// max array length and the named constants `conser-max` expressions may
// reference.
type Context struct {
	MaxArrayLength uint64
	Consts         map[string]any
}

// NewContext returns a Context with spec.md §6's documented default for
// max_array_length ("machine maximum").
func NewContext() *Context {
	return &Context{
		MaxArrayLength: math.MaxUint64,
		Consts:         map[string]any{},
	}
}

// resolveMax evaluates a field's conser-max expression (if any) against
// ctx.Consts, falling back to inherited when the field has none or the
// expression fails to resolve to a number — grounded on the teacher's
// ResolveSpecValue (specvals.go), which takes the same "best effort,
// otherwise fall back" stance for dynssz-size expressions.
func (ctx *Context) resolveMax(f *contypes.FieldDescriptor, inherited uint64) uint64 {
	if f == nil || f.MaxLenExpr == nil {
		return inherited
	}
	result, err := f.MaxLenExpr.Evaluate(ctx.Consts)
	if err != nil {
		return inherited
	}
	if v, ok := result.(float64); ok && v >= 0 {
		return uint64(v)
	}
	return inherited
}
