// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package conser implements a contiguous binary serialization core: it
// encodes a record tree into one self-contained buffer such that, once
// decoded, every dynamic array the record owns lives inside that same
// buffer and never needs to grow independently of it.
//
// A Codec is the entry point. It caches the type introspection (contypes)
// results for every record type it has seen, so the expensive reflection
// walk only runs once per type regardless of how many values of that type
// are serialized or deserialized.
//
// Example usage:
//
//	type Block struct {
//	    Height uint64
//	    Txs    conser.Descriptor[Tx]
//	}
//
//	c := conser.New()
//	buf, err := conser.Serialize(c, &block, nil)
//	handle, err := conser.Deserialize[Block](c, buf)
//	fmt.Println(handle.Ptr().Txs.Len())
package conser

import (
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conser-go/conser/chandle"
	"github.com/conser-go/conser/contypes"
	"github.com/conser-go/conser/internal/walk"
)

// Descriptor is the public alias for the dynamic-array primitive: a field
// of type Descriptor[T] is what the classifier recognizes as a dynamic
// array of T.
type Descriptor[T any] = contypes.Descriptor[T]

// NewDescriptor builds a Descriptor[T] over elems, for populating a
// record's dynamic array fields before serializing it. See
// contypes.NewDescriptor for the aliasing contract.
func NewDescriptor[T any](elems []T) Descriptor[T] {
	return contypes.NewDescriptor(elems)
}

// Codec is a reusable encoder/decoder for contiguous records. It is safe
// for concurrent use: the underlying contypes.Cache and Registry are both
// guarded by their own locks, and a Codec carries no per-call mutable
// state.
//
// Construct one Codec per process (or per configuration, if different
// parts of a program need different max_array_length ceilings or constant
// sets) and share it — every type it classifies stays cached for the
// Codec's lifetime.
type Codec struct {
	id       uuid.UUID
	cache    *contypes.Cache
	registry *contypes.Registry
	ctx      *walk.Context
	log      *zap.Logger
}

// New builds a Codec. With no options, the default Codec imposes no
// array-length ceiling beyond what the buffer itself can hold and logs
// nothing.
func New(opts ...Option) *Codec {
	o := &options{
		maxArrayLength: walk.NewContext().MaxArrayLength,
		consts:         map[string]any{},
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	id := uuid.New()
	registry := contypes.NewRegistry()
	c := &Codec{
		id:       id,
		cache:    contypes.NewCache(registry),
		registry: registry,
		ctx: &walk.Context{
			MaxArrayLength: o.maxArrayLength,
			Consts:         o.consts,
		},
		log: o.logger.With(zap.String("codec_id", id.String())),
	}
	return c
}

// Logger returns the Codec's diagnostic logger, so decorators layered on
// top of a Codec (version.Chain in particular) can log under the same
// codec_id field instead of carrying a second, unrelated logger.
func (c *Codec) Logger() *zap.Logger {
	return c.log
}

// RegisterUnionVariant makes a Go type available as a `conser-union`
// variant under name. zero is any value of the variant type; only its
// reflect.Type is consulted. Call this before the first time a record
// containing that union field is classified (Size, Serialize or
// Deserialize on it).
func (c *Codec) RegisterUnionVariant(name string, zero any) {
	c.registry.Register(name, zero)
}

// describe returns the cached TypeDescriptor for R, classifying it on
// first use.
func describe[R any](c *Codec) (*contypes.TypeDescriptor, error) {
	var zero R
	return c.cache.Describe(reflect.TypeOf(zero))
}

// Size computes the exact number of bytes Serialize would need to encode
// r, without allocating or copying anything.
func Size[R any](c *Codec, r *R) (int, error) {
	desc, err := describe[R](c)
	if err != nil {
		return 0, err
	}
	return int(walk.SizeOf(desc, reflect.ValueOf(r).Elem())), nil
}

// Serialize encodes r into a single contiguous buffer, reusing buf's
// backing array when it has enough capacity. Every dynamic-array
// descriptor in the returned image is nulled (pointer == nil, length
// preserved); Deserialize is what turns it back into something walkable.
func Serialize[R any](c *Codec, r *R, buf []byte) ([]byte, error) {
	desc, err := describe[R](c)
	if err != nil {
		return nil, err
	}
	out, err := walk.Serialize(desc, reflect.ValueOf(r).Elem(), buf)
	if err != nil {
		c.log.Debug("serialize failed", zap.String("type", desc.Go.String()), zap.Error(err))
		return nil, err
	}
	c.log.Debug("serialized", zap.String("type", desc.Go.String()), zap.Int("buffer_len", len(out)))
	return out, nil
}

// Deserialize binds src's descriptors to point back into a freshly
// allocated, self-contained buffer and returns it as a typed Handle.
// Deserialize never modifies src; the returned Handle owns its own copy.
func Deserialize[R any](c *Codec, src []byte) (*chandle.Handle[R], error) {
	desc, err := describe[R](c)
	if err != nil {
		return nil, err
	}
	data, err := walk.Deserialize(c.ctx, desc, src)
	if err != nil {
		c.log.Debug("deserialize failed", zap.String("type", desc.Go.String()), zap.Int("buffer_len", len(src)), zap.Error(err))
		return nil, err
	}
	c.log.Debug("deserialized", zap.String("type", desc.Go.String()), zap.Int("buffer_len", len(data)))
	return chandle.New[R](data, c.cache), nil
}
