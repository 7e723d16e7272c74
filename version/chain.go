// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/conser-go/conser"
	"github.com/conser-go/conser/chandle"
	"github.com/conser-go/conser/conerr"
)

// Chain is a multi-version decorator: it knows how to decode any
// registered version and walk one hop at a time, via user-supplied
// upgrade/downgrade converters, until it reaches the version the caller
// asked for.
type Chain struct {
	codec  *conser.Codec
	arena  *arena
	log    *zap.Logger
	minHop int
	maxHop int

	order     []uint8
	byType    map[reflect.Type]uint8
	decode    map[uint8]func(buf []byte) (any, error)
	encode    map[uint8]func(v any, buf []byte) ([]byte, error)
	upgrade   map[uint8]func(prev any, scratch []byte) (any, error)
	downgrade map[uint8]func(next any, scratch []byte) (any, error)
}

// NewChain builds an empty version chain. Hops whose distance falls
// outside [minHop, maxHop] are rejected with VersionOutOfRange.
func NewChain(codec *conser.Codec, minHop, maxHop int) *Chain {
	return &Chain{
		codec:     codec,
		arena:     newArena(),
		log:       codec.Logger(),
		minHop:    minHop,
		maxHop:    maxHop,
		byType:    map[reflect.Type]uint8{},
		decode:    map[uint8]func([]byte) (any, error){},
		encode:    map[uint8]func(any, []byte) ([]byte, error){},
		upgrade:   map[uint8]func(any, []byte) (any, error){},
		downgrade: map[uint8]func(any, []byte) (any, error){},
	}
}

// RegisterVersion makes Go type R loadable and storable as wire version v.
func RegisterVersion[R any](ch *Chain, v uint8) {
	var zero R
	t := reflect.TypeOf(zero)

	ch.byType[t] = v
	ch.order = append(ch.order, v)
	sort.Slice(ch.order, func(i, j int) bool { return ch.order[i] < ch.order[j] })

	ch.decode[v] = func(buf []byte) (any, error) {
		return conser.Deserialize[R](ch.codec, buf)
	}
	ch.encode[v] = func(val any, buf []byte) ([]byte, error) {
		return conser.SerializeHandle(ch.codec, val.(*chandle.Handle[R]), buf)
	}
}

// RegisterUpgrade registers how to turn version `from`'s record into
// version `from+1`'s, field by field or however convert chooses. convert
// receives a zero-valued *Next to fill in and the decoded *Prev to read
// from.
func RegisterUpgrade[Prev, Next any](ch *Chain, from uint8, convert func(dst *Next, src *Prev)) {
	ch.upgrade[from] = func(prev any, scratch []byte) (any, error) {
		srcHandle := prev.(*chandle.Handle[Prev])
		var dst Next
		convert(&dst, srcHandle.Ptr())
		encoded, err := conser.Serialize(ch.codec, &dst, scratch)
		if err != nil {
			return nil, err
		}
		return conser.Deserialize[Next](ch.codec, encoded)
	}
}

// RegisterDowngrade is RegisterUpgrade's mirror, for converting version
// `from` down to version `from-1`.
func RegisterDowngrade[Next, Prev any](ch *Chain, from uint8, convert func(dst *Prev, src *Next)) {
	ch.downgrade[from] = func(next any, scratch []byte) (any, error) {
		srcHandle := next.(*chandle.Handle[Next])
		var dst Prev
		convert(&dst, srcHandle.Ptr())
		encoded, err := conser.Serialize(ch.codec, &dst, scratch)
		if err != nil {
			return nil, err
		}
		return conser.Deserialize[Prev](ch.codec, encoded)
	}
}

// Store prepends R's registered version byte to r's serialized image.
func Store[R any](ch *Chain, r *R, buf []byte) ([]byte, error) {
	var zero R
	v, ok := ch.byType[reflect.TypeOf(zero)]
	if !ok {
		return nil, fmt.Errorf("version: type %T not registered with this chain", zero)
	}

	buf = append(buf[:0], v)
	encoded, err := conser.Serialize(ch.codec, r, nil)
	if err != nil {
		return nil, err
	}
	return append(buf, encoded...), nil
}

// Load reads the version byte, deserializes directly if it already
// matches R, and otherwise hops one version at a time — upgrading or
// downgrading as the distance and direction require — until it reaches R
// or a required converter or registration is missing.
func Load[R any](ch *Chain, buf []byte) (*chandle.Handle[R], error) {
	if len(buf) < 1 {
		return nil, conerr.NewShortInput("version byte", 1, 0)
	}

	var zero R
	targetType := reflect.TypeOf(zero)
	target, ok := ch.byType[targetType]
	if !ok {
		return nil, fmt.Errorf("version: type %T not registered with this chain", zero)
	}

	wire := buf[0]
	decode, ok := ch.decode[wire]
	if !ok {
		return nil, conerr.NewVersionUnknown(wire)
	}

	if wire == target {
		return conser.Deserialize[R](ch.codec, buf[1:])
	}

	distance := int(target) - int(wire)
	abs := distance
	if abs < 0 {
		abs = -abs
	}
	if abs < ch.minHop || abs > ch.maxHop {
		return nil, conerr.NewVersionOutOfRange(abs, ch.minHop, ch.maxHop)
	}

	cur, err := decode(buf[1:])
	if err != nil {
		return nil, err
	}

	hops := 0
	curVersion := wire
	for curVersion != target {
		scratch := ch.arena.get()
		var step func(any, []byte) (any, error)
		var next uint8
		if distance > 0 {
			step, ok = ch.upgrade[curVersion]
			next = curVersion + 1
		} else {
			step, ok = ch.downgrade[curVersion]
			next = curVersion - 1
		}
		if !ok {
			return nil, conerr.NewConverterMissing(curVersion, next, "*")
		}

		cur, err = step(cur, scratch)
		ch.arena.put(scratch)
		if err != nil {
			return nil, err
		}
		curVersion = next
		hops++
	}

	ch.log.Debug("version hop", zap.Uint8("from", wire), zap.Uint8("to", target), zap.Int("hop_count", hops))
	return cur.(*chandle.Handle[R]), nil
}
