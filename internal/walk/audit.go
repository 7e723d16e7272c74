// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package walk

import (
	"fmt"
	"unsafe"

	"github.com/conser-go/conser/conerr"
	"github.com/conser-go/conser/contypes"
)

// Audit recursively checks that every dynamic-array descriptor reachable
// from root points entirely within [buf's start, buf's end) — the
// containment invariant spec.md requires of every decoded (or
// hand-constructed) record before it is trusted.
func Audit(desc *contypes.TypeDescriptor, root unsafe.Pointer, buf []byte, rootName string) error {
	if !desc.ContainsDynamic {
		return nil
	}
	start := bufAddr(buf, 0)
	end := bufAddr(buf, len(buf))
	return auditValue(desc, root, start, end, rootName)
}

func auditValue(desc *contypes.TypeDescriptor, addr, start, end unsafe.Pointer, path string) error {
	switch desc.Kind {
	case contypes.KindValue:
		return nil

	case contypes.KindFixedArray:
		if !desc.ContainsDynamic {
			return nil
		}
		for i := 0; i < desc.ArrayLen; i++ {
			elemAddr := unsafe.Add(addr, uintptr(i)*desc.Elem.Size)
			if err := auditValue(desc.Elem, elemAddr, start, end, fmt.Sprintf("%s[%d]", path, i)); err != nil {
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
			fieldAddr := unsafe.Add(addr, f.Offset)
			if err := auditValue(f.Type, fieldAddr, start, end, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindDynamicArray:
		return auditDynamicArray(desc, addr, start, end, path)

	default:
		return nil
	}
}

func auditDynamicArray(desc *contypes.TypeDescriptor, addr, start, end unsafe.Pointer, path string) error {
	elemDesc := desc.Elem
	length, ptr := contypes.ReadDescriptor(addr)

	if length == 0 {
		if ptr != nil && (uintptr(ptr) < uintptr(start) || uintptr(ptr) > uintptr(end)) {
			return conerr.NewIntegrityViolation(path)
		}
		return nil
	}
	if ptr == nil {
		return conerr.NewIntegrityViolation(path)
	}

	span := uintptr(elemDesc.Size) * uintptr(length)
	regionEnd := unsafe.Add(ptr, span)
	if uintptr(ptr) < uintptr(start) || uintptr(regionEnd) > uintptr(end) {
		return conerr.NewIntegrityViolation(path)
	}

	switch {
	case elemDesc.Kind == contypes.KindDynamicArray:
		for i := uint64(0); i < length; i++ {
			innerAddr := unsafe.Add(ptr, uintptr(i)*elemDesc.Size)
			if err := auditDynamicArray(elemDesc, innerAddr, start, end, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case elemDesc.ContainsDynamic:
		for i := uint64(0); i < length; i++ {
			elemAddr := unsafe.Add(ptr, uintptr(i)*elemDesc.Size)
			if err := auditValue(elemDesc, elemAddr, start, end, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}

	return nil
}
