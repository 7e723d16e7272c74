// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

// Kind is the classification tag every field of a record is reduced to.
// The Size Oracle, Serializer, Deserializer and Integrity Auditor are all
// structural folds over a tree of these tags — see TypeDescriptor.
type Kind uint8

const (
	// KindValue is a scalar field that carries no indirection: integers,
	// floats and bools. Fixed arrays and nested records are classified as
	// KindFixedArray and KindRecord even when built only from values.
	KindValue Kind = iota

	// KindFixedArray is a compile-time-sized run of N elements. It is
	// classified separately from KindValue even when its element is a
	// value, so that a size/serialize/deserialize walk can tell a block
	// of inline bytes from a field that still needs per-element
	// recursion (the distinction that matters is ContainsDynamic, not
	// the Kind itself).
	KindFixedArray

	// KindDynamicArray is a contypes.Descriptor[T] field: a length plus
	// a pointer into externally-owned storage.
	KindDynamicArray

	// KindRecord is a nested struct.
	KindRecord

	// KindUnion is a KindRecord with a [N]byte payload field tagged
	// `conser-union` whose variants all resolved and passed validation
	// (see tags.go / classify.go); no discriminant field is checked. It walks
	// identically to KindRecord; the distinct tag exists so tooling can
	// tell the two apart without re-scanning tags.
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFixedArray:
		return "fixed-array"
	case KindDynamicArray:
		return "dynamic-array"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}
