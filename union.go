// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package conser

import "unsafe"

// UnionGet reinterprets a `conser-union` payload field as T. Callers are
// responsible for knowing which variant is live (typically via a sibling
// discriminant field); reading as the wrong variant reinterprets bytes,
// it never fails.
func UnionGet[T any](payload []byte) T {
	var zero T
	if len(payload) < int(unsafe.Sizeof(zero)) {
		return zero
	}
	return *(*T)(unsafe.Pointer(&payload[0]))
}

// UnionSet overwrites a `conser-union` payload field in place with v,
// zeroing any trailing bytes the variant doesn't use.
func UnionSet[T any](payload []byte, v T) {
	size := int(unsafe.Sizeof(v))
	for i := range payload {
		payload[i] = 0
	}
	if size > len(payload) {
		size = len(payload)
	}
	copy(payload, unsafe.Slice((*byte)(unsafe.Pointer(&v)), size))
}
