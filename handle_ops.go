// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package conser

import (
	"reflect"

	"github.com/conser-go/conser/chandle"
	"github.com/conser-go/conser/internal/walk"
)

// SerializeHandle re-encodes a record that is already backed by a
// chandle.Handle — the common case of "decode, mutate a few fields,
// re-encode" — without requiring the caller to hold a separate *R.
func SerializeHandle[R any](c *Codec, h *chandle.Handle[R], buf []byte) ([]byte, error) {
	desc, err := describe[R](c)
	if err != nil {
		return nil, err
	}
	r := h.Ptr()
	return walk.Serialize(desc, reflect.ValueOf(r).Elem(), buf)
}

// DeserializeInto rebinds src into dst: it decodes src into a freshly
// allocated buffer and swaps that buffer into dst. dst's previous backing
// array is not reused.
func DeserializeInto[R any](c *Codec, src []byte, dst *chandle.Handle[R]) error {
	desc, err := describe[R](c)
	if err != nil {
		return err
	}
	data, err := walk.Deserialize(c.ctx, desc, src)
	if err != nil {
		return err
	}
	dst.Replace(data)
	return nil
}
