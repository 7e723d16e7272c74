// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package conser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conser-go/conser"
	"github.com/conser-go/conser/internal/testrecords"
)

func TestSizeFlat(t *testing.T) {
	c := conser.New()
	flat := testrecords.Flat{A: 1, B: 2}
	n, err := conser.Size(c, &flat)
	require.NoError(t, err)
	require.EqualValues(t, 16, n) // uint32 padded to 8-byte alignment ahead of uint64
}

func TestRoundTripInventory(t *testing.T) {
	c := conser.New()
	src := testrecords.Inventory{
		OwnerID: 42,
		Items:   conser.NewDescriptor([]int32{1, 2, 3}),
	}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)
	require.Equal(t, 3, src.Items.Len(), "serializing must not disturb the source value")

	handle, err := conser.Deserialize[testrecords.Inventory](c, buf)
	require.NoError(t, err)
	got := handle.Ptr()
	require.Equal(t, uint64(42), got.OwnerID)
	require.Equal(t, []int32{1, 2, 3}, got.Items.Slice())
	require.NoError(t, handle.EnforceIntegrity())
}

func TestRoundTripNestedRecordArray(t *testing.T) {
	c := conser.New()
	src := testrecords.Shelf{
		Entries: conser.NewDescriptor([]testrecords.Entry{
			{Weight: 1, Labels: conser.NewDescriptor([]int32{10, 20})},
			{Weight: 2, Labels: conser.NewDescriptor([]int32{30})},
		}),
	}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	handle, err := conser.Deserialize[testrecords.Shelf](c, buf)
	require.NoError(t, err)
	got := handle.Ptr()
	require.Equal(t, 2, got.Entries.Len())
	require.Equal(t, []int32{10, 20}, got.Entries.Get(0).Labels.Slice())
	require.Equal(t, []int32{30}, got.Entries.Get(1).Labels.Slice())
	require.NoError(t, handle.EnforceIntegrity())
}

func TestRoundTripBranchedArray(t *testing.T) {
	c := conser.New()
	words := []conser.Descriptor[byte]{
		conser.NewDescriptor([]byte("hello")),
		conser.NewDescriptor([]byte("conser")),
		conser.NewDescriptor([]byte{}),
	}
	src := testrecords.Lexicon{Words: conser.NewDescriptor(words)}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	handle, err := conser.Deserialize[testrecords.Lexicon](c, buf)
	require.NoError(t, err)
	got := handle.Ptr()
	require.Equal(t, 3, got.Words.Len())
	require.Equal(t, []byte("hello"), got.Words.Get(0).Slice())
	require.Equal(t, []byte("conser"), got.Words.Get(1).Slice())
	require.Equal(t, 0, got.Words.Get(2).Len())
	require.NoError(t, handle.EnforceIntegrity())
}

func TestEmptyNestedRecordArrayRoundTrips(t *testing.T) {
	c := conser.New()
	src := testrecords.Shelf{Entries: conser.NewDescriptor([]testrecords.Entry{})}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	handle, err := conser.Deserialize[testrecords.Shelf](c, buf)
	require.NoError(t, err)
	require.Equal(t, 0, handle.Ptr().Entries.Len())
	require.NoError(t, handle.EnforceIntegrity())
}

func TestEmptyArrayRoundTrips(t *testing.T) {
	c := conser.New()
	src := testrecords.Inventory{OwnerID: 1, Items: conser.NewDescriptor([]int32{})}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	handle, err := conser.Deserialize[testrecords.Inventory](c, buf)
	require.NoError(t, err)
	require.Equal(t, 0, handle.Ptr().Items.Len())
	require.NoError(t, handle.EnforceIntegrity())
}

func TestOversizedArrayRejectedByDefaultLimit(t *testing.T) {
	c := conser.New(conser.WithMaxArrayLength(2))
	src := testrecords.Inventory{Items: conser.NewDescriptor([]int32{1, 2, 3})}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	_, err = conser.Deserialize[testrecords.Inventory](c, buf)
	require.Error(t, err)
}

func TestOversizedArrayRejectedByFieldOverride(t *testing.T) {
	c := conser.New() // no codec-wide limit
	src := testrecords.Capped{Values: conser.NewDescriptor([]uint32{1, 2, 3, 4, 5})}

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	_, err = conser.Deserialize[testrecords.Capped](c, buf)
	require.Error(t, err)
}

func TestShortInputRejected(t *testing.T) {
	c := conser.New()
	src := testrecords.Inventory{Items: conser.NewDescriptor([]int32{1, 2, 3})}
	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	_, err = conser.Deserialize[testrecords.Inventory](c, buf[:len(buf)-4])
	require.Error(t, err)
}

func TestUnionRoundTrip(t *testing.T) {
	c := conser.New()
	c.RegisterUnionVariant("Int64Variant", testrecords.Int64Variant{})
	c.RegisterUnionVariant("PairVariant", testrecords.PairVariant{})

	src := testrecords.Event{Kind: 1}
	conser.UnionSet(src.Payload[:], testrecords.PairVariant{A: 7, B: 9})

	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	handle, err := conser.Deserialize[testrecords.Event](c, buf)
	require.NoError(t, err)
	got := handle.Ptr()
	require.Equal(t, uint8(1), got.Kind)
	require.Equal(t, testrecords.PairVariant{A: 7, B: 9}, conser.UnionGet[testrecords.PairVariant](got.Payload[:]))
}
