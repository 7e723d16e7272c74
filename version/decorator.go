// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"github.com/conser-go/conser"
	"github.com/conser-go/conser/chandle"
)

// Decorator is the single-hop case of Chain: it accepts only a wire
// version that is exactly one step away from R's own version. It is a
// thin convenience constructor over Chain for the common "a record and
// its immediate predecessor or successor" shape; anything with more than
// two live versions should build a Chain directly.
type Decorator[R any] struct {
	*Chain
}

// NewDecorator builds a Decorator for R, registered as wire version
// `version`, accepting only single-hop neighbors.
func NewDecorator[R any](codec *conser.Codec, version uint8) *Decorator[R] {
	ch := NewChain(codec, 1, 1)
	RegisterVersion[R](ch, version)
	return &Decorator[R]{Chain: ch}
}

// WithPrevious registers version-1 as Go type Prev and the converter from
// it, returning the same Decorator for chaining.
func WithPrevious[R, Prev any](d *Decorator[R], prevVersion uint8, upgrade func(dst *R, src *Prev)) *Decorator[R] {
	RegisterVersion[Prev](d.Chain, prevVersion)
	RegisterUpgrade[Prev, R](d.Chain, prevVersion, upgrade)
	return d
}

// WithNext registers version+1 as Go type Next and the converter down
// from it, returning the same Decorator for chaining.
func WithNext[R, Next any](d *Decorator[R], nextVersion uint8, downgrade func(dst *R, src *Next)) *Decorator[R] {
	RegisterVersion[Next](d.Chain, nextVersion)
	RegisterDowngrade[Next, R](d.Chain, nextVersion, downgrade)
	return d
}

// Store prepends R's version byte and appends r's serialized image.
func (d *Decorator[R]) Store(r *R, buf []byte) ([]byte, error) {
	return Store[R](d.Chain, r, buf)
}

// Load deserializes buf as R, converting from the single registered
// neighbor version if the wire version differs by exactly one.
func (d *Decorator[R]) Load(buf []byte) (*chandle.Handle[R], error) {
	return Load[R](d.Chain, buf)
}
