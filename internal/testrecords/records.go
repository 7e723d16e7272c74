// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package testrecords holds record types shared by the test suites of
// conser and chandle, so each package's tests exercise the same
// worked shapes (flat, single dynamic array, nested record, branched
// array, union) instead of redefining near-duplicates.
package testrecords

import "github.com/conser-go/conser/contypes"

// Flat has no dynamic content at all; it exists to confirm the walk
// short-circuits for ContainsDynamic == false types.
type Flat struct {
	A uint32
	B uint64
}

// Inventory is the "array of scalars" shape: spec.md's worked Scenario B.
type Inventory struct {
	OwnerID uint64
	Items   contypes.Descriptor[int32]
}

// Tag is a fixed-size element nested inside a dynamic array.
type Tag struct {
	Key   [8]byte
	Value uint32
}

// Bundle nests a dynamic array of plain-value records.
type Bundle struct {
	ID   uint64
	Tags contypes.Descriptor[Tag]
}

// Shelf is a record whose elements themselves carry a dynamic array — the
// "array of records containing dynamic arrays" shape.
type Entry struct {
	Weight uint32
	Labels contypes.Descriptor[int32]
}

type Shelf struct {
	Entries contypes.Descriptor[Entry]
}

// Lexicon is the branched shape: a dynamic array of dynamic byte arrays,
// i.e. an array of strings.
type Lexicon struct {
	Words contypes.Descriptor[contypes.Descriptor[byte]]
}

// Capped caps Values at 4 elements regardless of a Codec's default, via
// conser-max.
type Capped struct {
	Values contypes.Descriptor[uint32] `conser-max:"4"`
}

// Int64Variant and PairVariant are conser-union payload interpretations.
type Int64Variant struct {
	Value int64
}

type PairVariant struct {
	A, B int32
}

// Event carries a union payload, discriminated by Kind.
type Event struct {
	Kind    uint8
	Payload [8]byte `conser-union:"Int64Variant,PairVariant"`
}
