// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

import (
	"reflect"

	"github.com/casbin/govaluate"
)

// TypeDescriptor is the cached, classified shape of a Go type as seen by
// the contiguous serialization core. Every recursive fold (Size Oracle,
// Serializer, Deserializer, Integrity Auditor) walks this tree instead of
// re-running reflection classification on every call.
type TypeDescriptor struct {
	Go   reflect.Type // the classified Go type
	Kind Kind

	// Size is unsafe.Sizeof(Go) for KindValue, KindFixedArray, KindRecord
	// and KindUnion — the number of bytes this field occupies inline in
	// the fixed image. For KindDynamicArray it is sizeof(Descriptor[T])
	// (16 bytes on a 64-bit host): the descriptor itself always lives
	// inline, only its payload is appended.
	Size uintptr

	// ContainsDynamic is true if this type, or anything nested inside
	// it, carries a KindDynamicArray field. A KindFixedArray or
	// KindRecord with ContainsDynamic == false can be copied as a flat
	// byte run; one with ContainsDynamic == true must be walked element
	// by element / field by field.
	ContainsDynamic bool

	// Elem is the element descriptor for KindFixedArray and
	// KindDynamicArray.
	Elem *TypeDescriptor

	// ArrayLen is N for KindFixedArray.
	ArrayLen int

	// Fields holds the ordered field list for KindRecord and KindUnion.
	Fields []*FieldDescriptor
}

// FieldDescriptor is one named, ordered field of a record.
type FieldDescriptor struct {
	Name   string
	Index  int           // index into the Go struct, for reflect.Value.Field
	Offset uintptr       // byte offset of the field within its parent struct
	Type   *TypeDescriptor

	// MaxLenExpr, if non-nil, is a compiled `conser-max` expression that
	// overrides the Codec-wide max_array_length for this field (and,
	// transitively, everything nested under it) when decoding. It is
	// only meaningful when Type.Kind == KindDynamicArray.
	MaxLenExpr     *govaluate.EvaluableExpression
	MaxLenVars     []string // variable names referenced by MaxLenExpr
	MaxLenRawExpr  string

	// UnionVariants holds the resolved variant descriptors for a field
	// tagged `conser-union`. Non-nil only on the payload field of a
	// KindUnion record.
	UnionVariants []*UnionVariant
}

// UnionVariant names one live interpretation of a union's fixed payload
// region.
type UnionVariant struct {
	Name string
	Type *TypeDescriptor
}

// FieldByIndex looks up the field descriptor for the i-th struct field, used
// by the Integrity Auditor and the reflection walk to resolve a path
// segment without re-scanning Fields.
func (d *TypeDescriptor) FieldByIndex(i int) *FieldDescriptor {
	if d.Fields == nil || i < 0 || i >= len(d.Fields) {
		return nil
	}
	return d.Fields[i]
}
