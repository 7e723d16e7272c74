// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package chandle implements the Contiguous Handle: a typed wrapper over
// the single []byte buffer a deserialized record and all of its dynamic
// arrays live inside. It depends only on contypes and the internal walk
// package, never on the top-level conser package, so that conser can
// depend on chandle without creating an import cycle.
package chandle

import (
	"reflect"
	"unsafe"

	"github.com/conser-go/conser/contypes"
	"github.com/conser-go/conser/internal/walk"
)

// Handle owns a contiguous buffer and exposes it as *R. Every dynamic
// array reachable from *Handle.Ptr() has been bound to point somewhere
// inside data; EnforceIntegrity re-checks that invariant on demand (for
// example after a buffer has been copied, mmap'd from disk, or otherwise
// arrived from a source the caller does not fully trust).
type Handle[R any] struct {
	data  []byte
	cache *contypes.Cache
}

// New wraps an already-bound buffer. Deserialize is the normal way to get
// one of these; New exists for callers that perform their own binding
// (for example a version Decorator rehydrating a cached conversion).
func New[R any](data []byte, cache *contypes.Cache) *Handle[R] {
	return &Handle[R]{data: data, cache: cache}
}

// Ptr returns the record as a live *R, addressable directly over the
// handle's buffer, or nil when the buffer is empty.
func (h *Handle[R]) Ptr() *R {
	if len(h.data) == 0 {
		return nil
	}
	var zero R
	t := reflect.TypeOf(zero)
	return (*R)(reflect.NewAt(t, unsafe.Pointer(&h.data[0])).Interface().(*R))
}

// Len returns the size of the underlying buffer, not sizeof(R) — it
// includes every dynamic array's payload and, for branched arrays, the
// reconstructed tail region.
func (h *Handle[R]) Len() int {
	return len(h.data)
}

// Bytes exposes the raw contiguous buffer, e.g. to write it back out
// unchanged or to hand to a version Decorator.
func (h *Handle[R]) Bytes() []byte {
	return h.data
}

// Replace swaps the handle's backing buffer for data, which the caller
// asserts is already a validly-bound image of *R (as walk.Deserialize
// produces). Used by DeserializeInto to rebind a handle in place.
func (h *Handle[R]) Replace(data []byte) {
	h.data = data
}

// Reset zeroes the buffer and leaves every descriptor nulled, as if *R had
// just been default-constructed, without reallocating.
func (h *Handle[R]) Reset() {
	for i := range h.data {
		h.data[i] = 0
	}
}

// EnforceIntegrity walks every dynamic-array descriptor reachable from
// Ptr() and fails if any pointer, or the span its length implies, falls
// outside the handle's own buffer.
func (h *Handle[R]) EnforceIntegrity() error {
	var zero R
	t := reflect.TypeOf(zero)
	desc, err := h.cache.Describe(t)
	if err != nil {
		return err
	}
	return walk.Audit(desc, unsafe.Pointer(&h.data[0]), h.data, t.Name())
}

// Copy deep-copies h's buffer into dst, rebasing every descriptor so dst
// owns an entirely independent contiguous region. Because every pointer in
// the image refers to an offset within the same buffer, a flat byte copy
// followed by adding the address delta to every live pointer produces a
// correct, fully independent copy — no re-walk of lengths from the source
// is needed. dst's own buffer is reused when large enough.
func (h *Handle[R]) Copy(dst *Handle[R]) error {
	var zero R
	t := reflect.TypeOf(zero)
	desc, err := h.cache.Describe(t)
	if err != nil {
		return err
	}

	if cap(dst.data) < len(h.data) {
		dst.data = make([]byte, len(h.data))
	} else {
		dst.data = dst.data[:len(h.data)]
	}
	copy(dst.data, h.data)
	dst.cache = h.cache

	if desc.ContainsDynamic {
		delta := uintptr(unsafe.Pointer(&dst.data[0])) - uintptr(unsafe.Pointer(&h.data[0]))
		rebase(desc, unsafe.Pointer(&dst.data[0]), delta)
	}

	return nil
}

// rebase adds delta to every dynamic-array pointer reachable from addr, in
// place — used by Copy once the flat byte image has already been
// duplicated into a new backing array at a different address.
func rebase(desc *contypes.TypeDescriptor, addr unsafe.Pointer, delta uintptr) {
	switch desc.Kind {
	case contypes.KindValue:
		return

	case contypes.KindFixedArray:
		if !desc.ContainsDynamic {
			return
		}
		for i := 0; i < desc.ArrayLen; i++ {
			rebase(desc.Elem, unsafe.Add(addr, uintptr(i)*desc.Elem.Size), delta)
		}

	case contypes.KindRecord, contypes.KindUnion:
		if !desc.ContainsDynamic {
			return
		}
		for _, f := range desc.Fields {
			if !f.Type.ContainsDynamic && f.Type.Kind != contypes.KindDynamicArray {
				continue
			}
			rebase(f.Type, unsafe.Add(addr, f.Offset), delta)
		}

	case contypes.KindDynamicArray:
		length, ptr := contypes.ReadDescriptor(addr)
		if ptr == nil {
			return
		}
		newPtr := unsafe.Pointer(uintptr(ptr) + delta)
		contypes.BindDescriptor(addr, length, newPtr)

		elemDesc := desc.Elem
		switch {
		case elemDesc.Kind == contypes.KindDynamicArray:
			for i := uint64(0); i < length; i++ {
				rebase(elemDesc, unsafe.Add(newPtr, uintptr(i)*elemDesc.Size), delta)
			}
		case elemDesc.ContainsDynamic:
			for i := uint64(0); i < length; i++ {
				rebase(elemDesc, unsafe.Add(newPtr, uintptr(i)*elemDesc.Size), delta)
			}
		}
	}
}
