// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conser-go/conser"
	"github.com/conser-go/conser/version"
)

type BlockV1 struct {
	X int32
}

type BlockV2 struct {
	X int32
	Y int32
}

type BlockV3 struct {
	X int64
	Y int32
}

func TestDecoratorSameVersionRoundTrips(t *testing.T) {
	codec := conser.New()
	dec := version.NewDecorator[BlockV2](codec, 2)

	src := BlockV2{X: 20, Y: 7}
	buf, err := dec.Store(&src, nil)
	require.NoError(t, err)
	require.Equal(t, byte(2), buf[0])

	got, err := dec.Load(buf)
	require.NoError(t, err)
	require.Equal(t, src, *got.Ptr())
}

func TestDecoratorUpgradesFromPrevious(t *testing.T) {
	codec := conser.New()
	dec := version.NewDecorator[BlockV2](codec, 2)
	version.WithPrevious(dec, 1, func(dst *BlockV2, src *BlockV1) {
		dst.X = src.X
		dst.Y = 0
	})

	old := BlockV1{X: 20}
	v1Codec := version.NewDecorator[BlockV1](codec, 1)
	buf, err := v1Codec.Store(&old, nil)
	require.NoError(t, err)

	got, err := dec.Load(buf)
	require.NoError(t, err)
	require.Equal(t, int32(20), got.Ptr().X)
	require.Equal(t, int32(0), got.Ptr().Y)
}

func TestChainMultiHop(t *testing.T) {
	codec := conser.New()
	chain := version.NewChain(codec, 1, 2)
	version.RegisterVersion[BlockV1](chain, 1)
	version.RegisterVersion[BlockV2](chain, 2)
	version.RegisterVersion[BlockV3](chain, 3)

	version.RegisterUpgrade(chain, uint8(1), func(dst *BlockV2, src *BlockV1) {
		dst.X = src.X
	})
	version.RegisterUpgrade(chain, uint8(2), func(dst *BlockV3, src *BlockV2) {
		dst.X = int64(src.X)
		dst.Y = src.Y
	})
	version.RegisterDowngrade(chain, uint8(3), func(dst *BlockV2, src *BlockV3) {
		dst.X = int32(src.X)
		dst.Y = src.Y
	})

	old := BlockV1{X: 99}
	buf, err := version.Store(chain, &old, nil)
	require.NoError(t, err)

	got, err := version.Load[BlockV3](chain, buf)
	require.NoError(t, err)
	require.Equal(t, int64(99), got.Ptr().X)
}

func TestChainRejectsOutOfRangeHop(t *testing.T) {
	codec := conser.New()
	chain := version.NewChain(codec, 1, 1)
	version.RegisterVersion[BlockV1](chain, 1)
	version.RegisterVersion[BlockV3](chain, 3)

	old := BlockV1{X: 1}
	buf, err := version.Store(chain, &old, nil)
	require.NoError(t, err)

	_, err = version.Load[BlockV3](chain, buf)
	require.Error(t, err)
}

func TestChainRejectsUnknownVersion(t *testing.T) {
	codec := conser.New()
	chain := version.NewChain(codec, 1, 1)
	version.RegisterVersion[BlockV1](chain, 1)

	_, err := version.Load[BlockV1](chain, []byte{9, 0, 0, 0, 0})
	require.Error(t, err)
}
