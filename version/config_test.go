// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conser-go/conser"
	"github.com/conser-go/conser/version"
)

const tableYAML = `
min_hop: 1
max_hop: 2
versions: [1, 2, 3]
`

func TestLoadTableConfig(t *testing.T) {
	cfg, err := version.LoadTableConfig([]byte(tableYAML))
	require.NoError(t, err)
	require.Equal(t, 1, cfg.MinHop)
	require.Equal(t, 2, cfg.MaxHop)
	require.Equal(t, []uint8{1, 2, 3}, cfg.Versions)
}

func TestLoadTableConfigRejectsInvertedRange(t *testing.T) {
	_, err := version.LoadTableConfig([]byte("min_hop: 3\nmax_hop: 1\n"))
	require.Error(t, err)
}

func TestExpectedVersionsCatchesMissingRegistration(t *testing.T) {
	cfg, err := version.LoadTableConfig([]byte(tableYAML))
	require.NoError(t, err)

	codec := conser.New()
	chain := version.NewChainFromConfig(codec, cfg)
	version.RegisterVersion[BlockV1](chain, 1)
	version.RegisterVersion[BlockV2](chain, 2)

	missing, ok := cfg.ExpectedVersions(chain)
	require.False(t, ok)
	require.Equal(t, uint8(3), missing)

	version.RegisterVersion[BlockV3](chain, 3)
	_, ok = cfg.ExpectedVersions(chain)
	require.True(t, ok)
}
