// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

import (
	"reflect"
	"sync"
)

// Registry resolves the variant names used in `conser-union` tags to
// concrete Go types. It is separate from Cache because variant
// registration must happen before the union-bearing record is first
// classified, and a caller may reasonably want to share one registry
// across several Codecs.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]reflect.Type
}

// NewRegistry returns an empty union variant registry.
func NewRegistry() *Registry {
	return &Registry{variants: map[string]reflect.Type{}}
}

// Register associates name with the type of zero, overwriting any prior
// registration under that name.
func (r *Registry) Register(name string, zero any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[name] = reflect.TypeOf(zero)
}

// Lookup returns the registered type for name, if any.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.variants[name]
	return t, ok
}
