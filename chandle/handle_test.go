// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package chandle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conser-go/conser"
	"github.com/conser-go/conser/chandle"
	"github.com/conser-go/conser/internal/testrecords"
)

func TestHandleCopyIsIndependent(t *testing.T) {
	c := conser.New()
	src := testrecords.Inventory{
		OwnerID: 7,
		Items:   conser.NewDescriptor([]int32{1, 2, 3}),
	}
	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	orig, err := conser.Deserialize[testrecords.Inventory](c, buf)
	require.NoError(t, err)

	var dup chandle.Handle[testrecords.Inventory]
	require.NoError(t, orig.Copy(&dup))
	require.NoError(t, dup.EnforceIntegrity())
	require.Equal(t, []int32{1, 2, 3}, dup.Ptr().Items.Slice())

	dup.Ptr().Items.Set(0, 99)
	require.Equal(t, int32(1), orig.Ptr().Items.Get(0), "copy must not alias the source buffer")
}

func TestHandleReset(t *testing.T) {
	c := conser.New()
	src := testrecords.Inventory{OwnerID: 1, Items: conser.NewDescriptor([]int32{5})}
	buf, err := conser.Serialize(c, &src, nil)
	require.NoError(t, err)

	h, err := conser.Deserialize[testrecords.Inventory](c, buf)
	require.NoError(t, err)

	h.Reset()
	require.Equal(t, uint64(0), h.Ptr().OwnerID)
	require.Equal(t, 0, h.Ptr().Items.Len())
}
