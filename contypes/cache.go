// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

import (
	"reflect"
	"sync"
)

// Cache memoizes TypeDescriptor computation per reflect.Type, the same
// role ssztypes.TypeCache plays for the teacher library: classification
// is pure and keyed only on the type, so repeated Describe calls for the
// same record type during the lifetime of a Codec should not re-walk its
// fields. Cache is safe for concurrent use — describing a type never
// mutates shared state outside the cache itself.
type Cache struct {
	mu          sync.RWMutex
	descriptors map[reflect.Type]*TypeDescriptor
	registry    *Registry
}

// NewCache creates an empty type cache backed by registry for union
// variant resolution. A nil registry is replaced with an empty one.
func NewCache(registry *Registry) *Cache {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Cache{
		descriptors: map[reflect.Type]*TypeDescriptor{},
		registry:    registry,
	}
}

// Registry returns the union variant registry backing this cache.
func (c *Cache) Registry() *Registry {
	return c.registry
}

// Describe returns the cached TypeDescriptor for t, computing and caching
// it on first use.
func (c *Cache) Describe(t reflect.Type) (*TypeDescriptor, error) {
	c.mu.RLock()
	if desc, ok := c.descriptors[t]; ok {
		c.mu.RUnlock()
		return desc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have raced us between the RUnlock and Lock.
	if desc, ok := c.descriptors[t]; ok {
		return desc, nil
	}

	desc, err := newClassifier(c.registry).Classify(t)
	if err != nil {
		return nil, err
	}

	c.descriptors[t] = desc
	return desc, nil
}
