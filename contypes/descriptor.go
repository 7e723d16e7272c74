// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package contypes implements the type introspection layer of the contiguous
// binary serialization core: it classifies an arbitrary Go struct's fields
// into the four shapes the serializer, deserializer, size oracle and
// integrity auditor all fold over (value, fixed array, dynamic array,
// record), and caches the result per reflect.Type.
package contypes

import (
	"reflect"
	"unsafe"
)

// Descriptor is the in-memory representation of a dynamic array field: a
// length plus a pointer to externally-owned element storage, exactly as
// spec'd for the wire format's dynamic-array descriptor. A Go slice header
// carries a third word (capacity) that the wire format has no use for, so
// rather than repurpose []T directly the serializer recognizes this
// generic type by name and treats it as the descriptor primitive.
//
// In a serialized image a Descriptor holds {length, nil}: its length is
// kept and its pointer nulled; Deserialize is the only thing that ever
// rebinds it to point into a live buffer. Nesting is how branched arrays (array of
// array) are expressed: Descriptor[Descriptor[byte]] is "a dynamic array
// of dynamic byte arrays" — an array of strings.
type Descriptor[T any] struct {
	length uint64
	ptr    unsafe.Pointer
}

// Len reports the number of elements this descriptor refers to.
func (d Descriptor[T]) Len() int {
	return int(d.length)
}

// Slice returns a Go slice view over the descriptor's elements. The slice
// is only valid for as long as the owning buffer is not released or
// reallocated; growing it via append detaches the result from the buffer
// and voids the contiguity invariant, so callers must only mutate elements
// in place.
func (d Descriptor[T]) Slice() []T {
	if d.length == 0 || d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*T)(d.ptr), d.length)
}

// ElemType reports T's reflect.Type. The standard reflect package has no
// API for recovering a generic type's type arguments from a bare
// reflect.Type, so the classifier instead calls this method (via
// reflect.Value.MethodByName) on a zero instance — letting the compiler,
// not reflection, fill in T.
func (d Descriptor[T]) ElemType() reflect.Type {
	var zero T
	return reflect.TypeOf(&zero).Elem()
}

// Get returns the i-th element.
func (d Descriptor[T]) Get(i int) T {
	return d.Slice()[i]
}

// Set overwrites the i-th element in place.
func (d Descriptor[T]) Set(i int, v T) {
	d.Slice()[i] = v
}

// NewDescriptor builds a Descriptor[T] pointing at elems' backing array.
// It does not copy: elems must stay reachable and must not be appended to
// (which could relocate its backing array) for as long as the returned
// descriptor, or anything serialized from it, is in use. This is the
// normal way application code populates a record's dynamic array fields
// before a first Serialize call.
func NewDescriptor[T any](elems []T) Descriptor[T] {
	if len(elems) == 0 {
		return Descriptor[T]{}
	}
	return Descriptor[T]{length: uint64(len(elems)), ptr: unsafe.Pointer(&elems[0])}
}

// bind rewrites the descriptor to point at length elements starting at
// ptr. It is unexported: only the deserializer is allowed to call it,
// since an externally-supplied pointer could violate the containment
// invariant the integrity auditor relies on.
func (d *Descriptor[T]) bind(length uint64, ptr unsafe.Pointer) {
	d.length = length
	d.ptr = ptr
}

// clear nulls the descriptor, which is what the serializer leaves behind
// in the fixed image once a dynamic array's payload has been written out.
func (d *Descriptor[T]) clear(length uint64) {
	d.length = length
	d.ptr = nil
}

// rawLength and rawPointer expose the descriptor's raw fields to the
// reflection-driven walk, which cannot call the generic methods above
// without knowing T at compile time.
func (d Descriptor[T]) rawLength() uint64        { return d.length }
func (d Descriptor[T]) rawPointer() unsafe.Pointer { return d.ptr }

// BindDescriptor is the reflection-callable form of bind, used by the
// deserializer which only has a reflect.Value of unknown element type in
// hand.
func BindDescriptor(addr unsafe.Pointer, length uint64, ptr unsafe.Pointer) {
	raw := (*rawDescriptor)(addr)
	raw.length = length
	raw.ptr = ptr
}

// ClearDescriptor is the reflection-callable form of clear.
func ClearDescriptor(addr unsafe.Pointer, length uint64) {
	raw := (*rawDescriptor)(addr)
	raw.length = length
	raw.ptr = nil
}

// ReadDescriptor is the reflection-callable accessor pair for (length, ptr).
func ReadDescriptor(addr unsafe.Pointer) (uint64, unsafe.Pointer) {
	raw := (*rawDescriptor)(addr)
	return raw.length, raw.ptr
}

// rawDescriptor has the identical memory layout to Descriptor[T] for any T
// — Go guarantees generic instantiations of a struct whose fields don't
// depend on the type parameter's size share one layout, which the
// reflection walk exploits to manipulate a Descriptor[T] value without
// knowing T.
type rawDescriptor struct {
	length uint64
	ptr    unsafe.Pointer
}
