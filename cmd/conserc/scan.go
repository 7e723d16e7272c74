// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"go/types"
	"io"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

const descriptorTypeName = "github.com/conser-go/conser/contypes.Descriptor"

// finding is one struct type's classification result.
type finding struct {
	Package string
	Type    string
	Dynamic []string // field names whose type is a Descriptor[T] instantiation
	Errors  []string // fields that would be rejected by contypes.Classify
}

// report collects findings across every package scanned.
type report struct {
	findings []finding
}

func (r *report) HasErrors() bool {
	for _, f := range r.findings {
		if len(f.Errors) > 0 {
			return true
		}
	}
	return false
}

func (r *report) ErrorCount() int {
	n := 0
	for _, f := range r.findings {
		n += len(f.Errors)
	}
	return n
}

func (r *report) Print(w io.Writer) {
	sort.Slice(r.findings, func(i, j int) bool {
		return r.findings[i].Package+r.findings[i].Type < r.findings[j].Package+r.findings[j].Type
	})
	for _, f := range r.findings {
		fmt.Fprintf(w, "%s.%s\n", f.Package, f.Type)
		for _, d := range f.Dynamic {
			fmt.Fprintf(w, "  dynamic array: %s\n", d)
		}
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", e)
		}
	}
}

// scanPackages loads patterns with go/packages and classifies every
// exported struct type, reporting those that have at least one direct
// contypes.Descriptor field or at least one rejected field. Fields of
// nested or embedded structs are not descended into.
func scanPackages(patterns []string) (*report, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	r := &report{}
	for _, pkg := range pkgs {
		for _, err := range pkg.Errors {
			return nil, fmt.Errorf("%s: %w", pkg.PkgPath, err)
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !obj.Exported() {
				continue
			}
			st, ok := obj.Type().Underlying().(*types.Struct)
			if !ok {
				continue
			}
			if f := classifyStruct(pkg.PkgPath, obj.Name(), st); f != nil {
				r.findings = append(r.findings, *f)
			}
		}
	}
	return r, nil
}

func classifyStruct(pkgPath, typeName string, st *types.Struct) *finding {
	f := &finding{Package: pkgPath, Type: typeName}
	hasDynamic := false

	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}
		if tag := st.Tag(i); strings.Contains(tag, `conser:"-"`) {
			continue
		}

		if elem, ok := descriptorElem(field.Type()); ok {
			hasDynamic = true
			f.Dynamic = append(f.Dynamic, fmt.Sprintf("%s []%s", field.Name(), elem.String()))
			continue
		}

		if err := rejectReferenceTypes(field.Type()); err != "" {
			f.Errors = append(f.Errors, fmt.Sprintf("field %s: %s", field.Name(), err))
		}
	}

	if !hasDynamic && len(f.Errors) == 0 {
		return nil
	}
	return f
}

// descriptorElem reports whether t is an instantiation of
// contypes.Descriptor[T] and, if so, returns T. Unlike contypes'
// runtime name-prefix match on reflect.Type, go/types exposes a generic
// instantiation's type arguments directly via Named.TypeArgs.
func descriptorElem(t types.Type) (types.Type, bool) {
	named, ok := t.(*types.Named)
	if !ok || named.TypeArgs() == nil || named.TypeArgs().Len() != 1 {
		return nil, false
	}
	origin := named.Origin()
	if origin.Obj() == nil || origin.Obj().Pkg() == nil {
		return nil, false
	}
	qualified := origin.Obj().Pkg().Path() + "." + origin.Obj().Name()
	if qualified != descriptorTypeName {
		return nil, false
	}
	return named.TypeArgs().At(0), true
}

// rejectReferenceTypes reports the pointer, interface, map, channel and
// func cases of contypes.classifier.Classify's default rejection. Other
// kinds Classify also rejects (strings, Go slices, complex numbers,
// unsafe.Pointer) are not reported here.
func rejectReferenceTypes(t types.Type) string {
	switch t.Underlying().(type) {
	case *types.Pointer:
		return "pointer fields are not allowed; use a nested record or Descriptor[T]"
	case *types.Interface:
		return "interface fields are not allowed"
	case *types.Map:
		return "map fields are not allowed"
	case *types.Chan:
		return "channel fields are not allowed"
	case *types.Signature:
		return "func fields are not allowed"
	default:
		return ""
	}
}
