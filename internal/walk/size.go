// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package walk

import (
	"reflect"
	"unsafe"

	"github.com/conser-go/conser/conbuf"
	"github.com/conser-go/conser/contypes"
)

// SizeOf walks a live value tree and returns the exact number of bytes its
// contiguous encoding would occupy: the fixed image plus every dynamic
// array's length word and payload, recursing through branched arrays
// (a dynamic array of dynamic arrays) the way spec.md's worked examples
// do.
//
// v must be addressable (callers pass reflect.ValueOf(r).Elem() for a
// record pointer r *R).
func SizeOf(desc *contypes.TypeDescriptor, v reflect.Value) uint64 {
	total := uint64(desc.Size)
	if desc.ContainsDynamic {
		total += extraSize(desc, v)
	}
	return total
}

// extraSize returns the bytes a value contributes beyond its own flat,
// fixed-image footprint: nothing for KindValue, the sum over elements for
// KindFixedArray/KindRecord, and length word + payload (+ recursive extra)
// for KindDynamicArray.
func extraSize(desc *contypes.TypeDescriptor, v reflect.Value) uint64 {
	switch desc.Kind {
	case contypes.KindValue:
		return 0

	case contypes.KindFixedArray:
		if !desc.ContainsDynamic {
			return 0
		}
		var sum uint64
		for i := 0; i < desc.ArrayLen; i++ {
			sum += extraSize(desc.Elem, v.Index(i))
		}
		return sum

	case contypes.KindRecord, contypes.KindUnion:
		if !desc.ContainsDynamic {
			return 0
		}
		var sum uint64
		for _, f := range desc.Fields {
			if !f.Type.ContainsDynamic && f.Type.Kind != contypes.KindDynamicArray {
				continue
			}
			sum += extraSize(f.Type, v.Field(f.Index))
		}
		return sum

	case contypes.KindDynamicArray:
		return sizeDynamicArray(desc, v)

	default:
		return 0
	}
}

// sizeDynamicArray measures one dynamic array field: an 8-byte length
// word, then its payload. A branched array (element is itself a dynamic
// array) has no flat payload of its own on the wire — the Descriptor[U]
// slot each element occupies in memory is a deserialize-time
// reconstruction, never encoded — so it contributes only the recursive
// sizeDynamicArray of each element; a flat array of records containing
// further dynamic arrays contributes the flat element run plus each
// element's extraSize; anything else contributes a plain length*elemSize
// byte run.
func sizeDynamicArray(desc *contypes.TypeDescriptor, v reflect.Value) uint64 {
	elemDesc := desc.Elem
	length, ptr := contypes.ReadDescriptor(v.Addr().UnsafePointer())
	total := uint64(conbuf.WordSize)

	switch {
	case elemDesc.Kind == contypes.KindDynamicArray:
		for i := uint64(0); i < length; i++ {
			total += sizeDynamicArray(elemDesc, elemAt(elemDesc, ptr, i))
		}

	case elemDesc.ContainsDynamic:
		total += uint64(elemDesc.Size) * length
		for i := uint64(0); i < length; i++ {
			total += extraSize(elemDesc, elemAt(elemDesc, ptr, i))
		}

	default:
		total += uint64(elemDesc.Size) * length
	}

	return total
}

// elemAt returns an addressable reflect.Value for the i-th element of an
// externally-owned array of elemDesc.Go, starting at base.
func elemAt(elemDesc *contypes.TypeDescriptor, base unsafe.Pointer, i uint64) reflect.Value {
	addr := unsafe.Add(base, uintptr(i)*elemDesc.Size)
	return reflect.NewAt(elemDesc.Go, addr).Elem()
}
