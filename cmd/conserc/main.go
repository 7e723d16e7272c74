// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Command conserc statically checks the record types in a Go package
// without running any code: it loads the package with go/packages and
// inspects go/types information, which — unlike reflect.Type — exposes a
// generic instantiation's type arguments directly, so it does not need the
// name-prefix trick contypes.isDescriptorType relies on at runtime.
//
// It is meant to run in CI ahead of `go build`, reporting each exported
// struct's Descriptor[T] fields and any field that contypes.Classify would
// reject as a pointer, interface, map, channel or func. It checks only the
// struct's own fields by kind; union variants and nested field types are
// not examined.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "conserc:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	report, err := scanPackages(cfg.Packages)
	if err != nil {
		return err
	}

	report.Print(os.Stdout)
	if report.HasErrors() {
		return fmt.Errorf("%d record type(s) failed classification", report.ErrorCount())
	}
	return nil
}

// config holds conserc's settings, merged by viper from (in ascending
// priority) a .conserc.yaml file, CONSERC_* environment variables, and
// positional CLI arguments — grounded on xl3lackout-Erupe's viper-backed
// service config.
type config struct {
	Packages []string `mapstructure:"packages"`
}

func loadConfig(args []string) (*config, error) {
	v := viper.New()
	v.SetConfigName(".conserc")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("CONSERC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .conserc.yaml: %w", err)
		}
	}

	packages := args
	if len(packages) == 0 {
		packages = v.GetStringSlice("packages")
	}
	if len(packages) == 0 {
		packages = []string{"."}
	}

	return &config{Packages: packages}, nil
}
