// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/conser-go/conser"
)

// TableConfig is the YAML-loadable shape of a Chain's hop policy. The
// type registrations themselves still happen in code (RegisterVersion
// needs a concrete Go type parameter, which YAML cannot express), but the
// hop bounds and the set of versions an operator expects to see on the
// wire are ordinary deployment configuration and belong in a file that
// can change without a recompile.
type TableConfig struct {
	MinHop   int     `yaml:"min_hop"`
	MaxHop   int     `yaml:"max_hop"`
	Versions []uint8 `yaml:"versions"`
}

// LoadTableConfig parses a YAML document into a TableConfig.
func LoadTableConfig(data []byte) (*TableConfig, error) {
	var cfg TableConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("version: parsing table config: %w", err)
	}
	if cfg.MinHop < 0 || cfg.MaxHop < cfg.MinHop {
		return nil, fmt.Errorf("version: invalid hop range [%d, %d]", cfg.MinHop, cfg.MaxHop)
	}
	return &cfg, nil
}

// NewChainFromConfig builds a Chain with cfg's hop bounds. The caller
// still must RegisterVersion each of cfg.Versions against its concrete Go
// type before the chain can decode anything; ExpectedVersions is provided
// so callers can assert that step was not skipped.
func NewChainFromConfig(codec *conser.Codec, cfg *TableConfig) *Chain {
	return NewChain(codec, cfg.MinHop, cfg.MaxHop)
}

// ExpectedVersions reports whether ch has a registration for every wire
// version cfg declares, returning the first one missing.
func (cfg *TableConfig) ExpectedVersions(ch *Chain) (missing uint8, ok bool) {
	for _, v := range cfg.Versions {
		if _, found := ch.decode[v]; !found {
			return v, false
		}
	}
	return 0, true
}
