// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/casbin/govaluate"
)

// Struct tag names recognized by the classifier.
const (
	tagSkip      = "conser"       // conser:"-" excludes a value-typed field from the walk
	tagMaxExpr   = "conser-max"   // conser-max:"<govaluate expr>" caps a dynamic array's decoded length
	tagUnion     = "conser-union" // conser-union:"VariantA,VariantB" on a [N]byte union payload field
	skipMarker   = "-"
)

// fieldIsSkipped reports whether a struct field carries `conser:"-"`.
func fieldIsSkipped(f reflect.StructField) bool {
	v, ok := f.Tag.Lookup(tagSkip)
	return ok && v == skipMarker
}

// parseMaxExpr compiles a `conser-max` tag into a reusable govaluate
// expression, grounded on the teacher's dynssz-size expression handling
// (specvals.go / sizehints.go): expressions are compiled once and the
// compiled form, not the source text, is what gets evaluated on every
// decode.
func parseMaxExpr(f reflect.StructField) (*govaluate.EvaluableExpression, []string, string, error) {
	raw, ok := f.Tag.Lookup(tagMaxExpr)
	if !ok {
		return nil, nil, "", nil
	}
	expr, err := govaluate.NewEvaluableExpression(raw)
	if err != nil {
		return nil, nil, "", fmt.Errorf("contypes: invalid conser-max expression on field %q: %w", f.Name, err)
	}
	return expr, expr.Vars(), raw, nil
}

// parseUnionTag splits a `conser-union` tag into its ordered variant names.
func parseUnionTag(f reflect.StructField) ([]string, bool) {
	raw, ok := f.Tag.Lookup(tagUnion)
	if !ok || raw == "" {
		return nil, false
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names, len(names) > 0
}
