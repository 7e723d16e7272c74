// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

import (
	"reflect"
	"testing"
)

type scalarRecord struct {
	A int32
	B int32
}

type dynamicRecord struct {
	Arr Descriptor[int32]
}

type branchedRecord struct {
	S Descriptor[Descriptor[byte]]
}

type nestedRecord struct {
	Header scalarRecord
	Items  Descriptor[scalarRecord]
}

func TestClassifyScalar(t *testing.T) {
	cache := NewCache(nil)
	desc, err := cache.Describe(reflect.TypeOf(scalarRecord{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc.Kind != KindRecord {
		t.Fatalf("expected KindRecord, got %v", desc.Kind)
	}
	if desc.ContainsDynamic {
		t.Fatalf("scalarRecord should not contain dynamic arrays")
	}
	if len(desc.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(desc.Fields))
	}
	for _, f := range desc.Fields {
		if f.Type.Kind != KindValue {
			t.Errorf("field %s: expected KindValue, got %v", f.Name, f.Type.Kind)
		}
	}
}

func TestClassifyDynamicArray(t *testing.T) {
	cache := NewCache(nil)
	desc, err := cache.Describe(reflect.TypeOf(dynamicRecord{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !desc.ContainsDynamic {
		t.Fatalf("dynamicRecord must report ContainsDynamic")
	}
	arrField := desc.Fields[0]
	if arrField.Type.Kind != KindDynamicArray {
		t.Fatalf("expected KindDynamicArray, got %v", arrField.Type.Kind)
	}
	if arrField.Type.Elem.Kind != KindValue {
		t.Fatalf("expected element kind KindValue, got %v", arrField.Type.Elem.Kind)
	}
}

func TestClassifyBranchedArray(t *testing.T) {
	cache := NewCache(nil)
	desc, err := cache.Describe(reflect.TypeOf(branchedRecord{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	outer := desc.Fields[0].Type
	if outer.Kind != KindDynamicArray {
		t.Fatalf("expected outer KindDynamicArray, got %v", outer.Kind)
	}
	if outer.Elem.Kind != KindDynamicArray {
		t.Fatalf("expected branched element KindDynamicArray, got %v", outer.Elem.Kind)
	}
	if outer.Elem.Elem.Go.Kind() != reflect.Uint8 {
		t.Fatalf("expected innermost element byte, got %v", outer.Elem.Elem.Go)
	}
}

func TestClassifyNestedRecordArray(t *testing.T) {
	cache := NewCache(nil)
	desc, err := cache.Describe(reflect.TypeOf(nestedRecord{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc.Fields[0].Type.ContainsDynamic {
		t.Fatalf("Header field should not be flagged dynamic")
	}
	items := desc.Fields[1].Type
	if items.Kind != KindDynamicArray || items.Elem.Kind != KindRecord {
		t.Fatalf("expected dynamic array of records, got %v of %v", items.Kind, items.Elem.Kind)
	}
}

type badPointerRecord struct {
	P *int32
}

type badInterfaceRecord struct {
	V any
}

func TestClassifyRejectsReferenceTypes(t *testing.T) {
	cache := NewCache(nil)
	for _, tt := range []any{badPointerRecord{}, badInterfaceRecord{}} {
		if _, err := cache.Describe(reflect.TypeOf(tt)); err == nil {
			t.Errorf("expected classification of %T to fail", tt)
		}
	}
}

type unionPayload struct {
	Variant uint8
	Data    [8]byte `conser-union:"asInt64,asTwoInt32"`
}

type asInt64 struct {
	V int64
}

type asTwoInt32 struct {
	A, B int32
}

type badUnionVariant struct {
	Arr Descriptor[int32]
}

func TestClassifyUnion(t *testing.T) {
	registry := NewRegistry()
	registry.Register("asInt64", asInt64{})
	registry.Register("asTwoInt32", asTwoInt32{})
	cache := NewCache(registry)

	desc, err := cache.Describe(reflect.TypeOf(unionPayload{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc.Kind != KindUnion {
		t.Fatalf("expected KindUnion, got %v", desc.Kind)
	}
	variants := desc.Fields[1].UnionVariants
	if len(variants) != 2 {
		t.Fatalf("expected 2 resolved variants, got %d", len(variants))
	}
}

func TestClassifyUnionRejectsDynamicVariant(t *testing.T) {
	registry := NewRegistry()
	registry.Register("bad", badUnionVariant{})
	cache := NewCache(registry)

	type badUnion struct {
		Variant uint8
		Data    [32]byte `conser-union:"bad"`
	}
	if _, err := cache.Describe(reflect.TypeOf(badUnion{})); err == nil {
		t.Fatalf("expected rejection of union variant containing a dynamic array")
	}
}
