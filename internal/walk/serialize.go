// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package walk

import (
	"reflect"
	"runtime"
	"unsafe"

	"github.com/conser-go/conser/conbuf"
	"github.com/conser-go/conser/contypes"
)

// Serialize copies root's fixed image into buf, then walks the type tree
// appending every dynamic array's length word and payload in depth-first
// field order, nulling each descriptor behind it in the copied image.
// buf is resized to exactly SizeOf(desc, root) first; the returned slice
// shares buf's backing array when buf had enough capacity, and is a new
// allocation otherwise.
//
// root must be addressable (reflect.ValueOf(r).Elem() for *R).
func Serialize(desc *contypes.TypeDescriptor, root reflect.Value, buf []byte) ([]byte, error) {
	total := SizeOf(desc, root)
	buf = conbuf.Grow(buf, int(total))

	srcAddr := root.Addr().UnsafePointer()
	copy(buf[:desc.Size], unsafe.Slice((*byte)(srcAddr), desc.Size))

	if desc.ContainsDynamic {
		w := conbuf.NewWriter(buf[:desc.Size])
		dstAddr := unsafe.Pointer(&buf[0])
		if err := serializeValue(desc, root, dstAddr, w); err != nil {
			return nil, err
		}
	}

	// root is read from directly (via unsafe pointer arithmetic off its own
	// address and the addresses reachable through its Descriptor fields)
	// for the whole of the walk above; keep it alive until that's done so
	// the backing arrays those descriptors point at cannot be collected
	// mid-copy.
	runtime.KeepAlive(root.Interface())

	return buf, nil
}

// serializeValue recurses over the live source value, copying each dynamic
// array's payload into w and nulling the corresponding descriptor at
// dstAddr. Everything that isn't KindDynamicArray and has no dynamic
// content nested under it was already captured by Serialize's initial flat
// copy and needs no further action.
func serializeValue(desc *contypes.TypeDescriptor, src reflect.Value, dstAddr unsafe.Pointer, w *conbuf.Writer) error {
	switch desc.Kind {
	case contypes.KindValue:
		return nil

	case contypes.KindFixedArray:
		if !desc.ContainsDynamic {
			return nil
		}
		for i := 0; i < desc.ArrayLen; i++ {
			elemDst := unsafe.Add(dstAddr, uintptr(i)*desc.Elem.Size)
			if err := serializeValue(desc.Elem, src.Index(i), elemDst, w); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindRecord, contypes.KindUnion:
		if !desc.ContainsDynamic {
			return nil
		}
		for _, f := range desc.Fields {
			if !f.Type.ContainsDynamic && f.Type.Kind != contypes.KindDynamicArray {
				continue
			}
			fieldDst := unsafe.Add(dstAddr, f.Offset)
			if err := serializeValue(f.Type, src.Field(f.Index), fieldDst, w); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindDynamicArray:
		return serializeDynamicArray(desc, src, dstAddr, w)

	default:
		return nil
	}
}

// serializeDynamicArray writes one dynamic array's length word and payload,
// recursing into branched and record-shaped elements, then nulls the
// descriptor at dstAddr (leaving its length intact, as spec.md's round-trip
// boundary behavior requires). dstAddr is nil for a branched array's inner
// elements, which have no copied image of their own to null — the
// Descriptor[U] slot they occupy in memory only exists after deserialize
// reconstructs it from the length words and payloads written here.
func serializeDynamicArray(desc *contypes.TypeDescriptor, src reflect.Value, dstAddr unsafe.Pointer, w *conbuf.Writer) error {
	elemDesc := desc.Elem
	length, srcPtr := contypes.ReadDescriptor(src.Addr().UnsafePointer())

	w.WriteLength(length)

	switch {
	case elemDesc.Kind == contypes.KindDynamicArray:
		for i := uint64(0); i < length; i++ {
			innerSrc := elemAt(elemDesc, srcPtr, i)
			if err := serializeDynamicArray(elemDesc, innerSrc, nil, w); err != nil {
				return err
			}
		}

	case elemDesc.ContainsDynamic:
		elementsDst := bufAddr(w.Buf, w.Pos)
		w.WriteBytes(unsafe.Slice((*byte)(srcPtr), uintptr(length)*elemDesc.Size))
		for i := uint64(0); i < length; i++ {
			innerSrc := elemAt(elemDesc, srcPtr, i)
			innerDst := unsafe.Add(elementsDst, uintptr(i)*elemDesc.Size)
			if err := serializeValue(elemDesc, innerSrc, innerDst, w); err != nil {
				return err
			}
		}

	default:
		w.WriteBytes(unsafe.Slice((*byte)(srcPtr), uintptr(length)*elemDesc.Size))
	}

	if dstAddr != nil {
		contypes.ClearDescriptor(dstAddr, length)
	}
	return nil
}
