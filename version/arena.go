// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package version implements the Version Decorator: a version byte
// prepended to a contiguous image, and chained conversion between
// adjacent record versions when the reader's and the wire's version
// differ. A multi-hop Chain keeps a reusable scratch arena for the
// buffer each intermediate conversion serializes into, grounded on the
// teacher's offsetSlicePool (offsetpool.go) — a sync.Pool of slices.
package version

import "sync"

// arena hands out []byte scratch buffers (256 bytes of capacity when
// freshly made) and takes them back. Only the serialize step of a hop
// writes into the scratch buffer: each hop's deserialize still allocates
// its own output buffer, and a scratch buffer that a hop outgrows is
// replaced by a new allocation that is not returned to the pool.
type arena struct {
	pool sync.Pool
}

func newArena() *arena {
	return &arena{
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, 0, 256)
				return &buf
			},
		},
	}
}

func (a *arena) get() []byte {
	return (*a.pool.Get().(*[]byte))[:0]
}

func (a *arena) put(buf []byte) {
	a.pool.Put(&buf)
}
