// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package conser

import "go.uber.org/zap"

// Option configures a Codec at construction time.
type Option func(*options)

type options struct {
	maxArrayLength uint64
	consts         map[string]any
	logger         *zap.Logger
}

// WithMaxArrayLength sets the default ceiling every decoded dynamic array's
// length is checked against, overridable per field with a `conser-max`
// struct tag. The default is the maximum representable uint64, i.e. no
// limit beyond what the buffer itself can satisfy.
func WithMaxArrayLength(n uint64) Option {
	return func(o *options) {
		o.maxArrayLength = n
	}
}

// WithConst registers a named value `conser-max` expressions may reference,
// mirroring the teacher's spec-value mechanism for `dynssz-size`/`dynssz-max`
// tags.
func WithConst(name string, value any) Option {
	return func(o *options) {
		o.consts[name] = value
	}
}

// WithLogger attaches a zap.Logger the Codec uses for its own diagnostic
// logging (serialize and deserialize outcomes, including oversized-array
// rejections, and the version hops version.Chain logs through
// Codec.Logger). The default is zap's no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
