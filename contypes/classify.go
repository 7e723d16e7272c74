// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package contypes

import (
	"reflect"
	"strings"
)

// descriptorPkgPath is the package that defines Descriptor[T]. Detecting
// the generic instantiation by name mirrors how the teacher's typecache
// recognizes its own TypeWrapper[D, T] generic (see
// ssztypes/typecache.go's "strings.HasPrefix(t.Name(), \"TypeWrapper[\")"
// check) — Go reflection has no first-class notion of "is this type an
// instantiation of generic type X", so name-prefix matching on the
// defining package is the idiomatic workaround both here and upstream.
const descriptorPkgPath = "github.com/conser-go/conser/contypes"

func isDescriptorType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		t.PkgPath() == descriptorPkgPath &&
		strings.HasPrefix(t.Name(), "Descriptor[")
}

// descriptorElemType recovers T from a Descriptor[T] reflect.Type by
// calling its generic ElemType method through reflection — see the
// ElemType doc comment in descriptor.go.
func descriptorElemType(t reflect.Type) reflect.Type {
	zero := reflect.New(t).Elem()
	result := zero.MethodByName("ElemType").Call(nil)
	return result[0].Interface().(reflect.Type)
}

// classifier walks Go types into TypeDescriptor trees, resolving
// conser-union variant names against a Registry. inFlight holds only the
// record types currently being classified, and each entry is removed once
// its record is done, so a record type that appears in several fields is
// classified again each time (Cache memoizes only the type passed to
// Describe). A record type that recursively embeds itself by value is
// impossible in Go, and pointers are rejected before recursion can occur.
type classifier struct {
	registry *Registry
	inFlight map[reflect.Type]*TypeDescriptor
}

func newClassifier(registry *Registry) *classifier {
	return &classifier{
		registry: registry,
		inFlight: map[reflect.Type]*TypeDescriptor{},
	}
}

// Classify builds (or recalls) the TypeDescriptor for t.
func (c *classifier) Classify(t reflect.Type) (*TypeDescriptor, error) {
	if existing, ok := c.inFlight[t]; ok {
		return existing, nil
	}

	switch {
	case isDescriptorType(t):
		return c.classifyDescriptor(t)
	case t.Kind() == reflect.Struct:
		return c.classifyStruct(t)
	case t.Kind() == reflect.Array:
		return c.classifyFixedArray(t)
	case isValueKind(t.Kind()):
		return c.classifyValue(t), nil
	default:
		return nil, &ClassifyError{
			Type:   t.String(),
			Reason: "reference types (" + t.Kind().String() + ") may not appear in value position; only contypes.Descriptor fields and nested records carry indirection",
		}
	}
}

func isValueKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func (c *classifier) classifyValue(t reflect.Type) *TypeDescriptor {
	return &TypeDescriptor{
		Go:   t,
		Kind: KindValue,
		Size: t.Size(),
	}
}

func (c *classifier) classifyFixedArray(t reflect.Type) (*TypeDescriptor, error) {
	elemDesc, err := c.Classify(t.Elem())
	if err != nil {
		return nil, err
	}

	desc := &TypeDescriptor{
		Go:              t,
		Kind:            KindFixedArray,
		Size:            t.Size(),
		Elem:            elemDesc,
		ArrayLen:        t.Len(),
		ContainsDynamic: elemDesc.ContainsDynamic || elemDesc.Kind == KindDynamicArray,
	}
	return desc, nil
}

func (c *classifier) classifyDescriptor(t reflect.Type) (*TypeDescriptor, error) {
	elemType := descriptorElemType(t)

	elemDesc, err := c.Classify(elemType)
	if err != nil {
		return nil, err
	}

	desc := &TypeDescriptor{
		Go:              t,
		Kind:            KindDynamicArray,
		Size:            t.Size(),
		Elem:            elemDesc,
		ContainsDynamic: true,
	}
	return desc, nil
}

func (c *classifier) classifyStruct(t reflect.Type) (*TypeDescriptor, error) {
	desc := &TypeDescriptor{
		Go:   t,
		Kind: KindRecord,
		Size: t.Size(),
	}
	c.inFlight[t] = desc

	fields := make([]*FieldDescriptor, 0, t.NumField())
	containsDynamic := false
	var unionPayload *FieldDescriptor
	var unionVariantNames []string

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if fieldIsSkipped(sf) {
			if !isValueKind(sf.Type.Kind()) {
				return nil, &ClassifyError{Type: t.String(), Field: sf.Name, Reason: "conser:\"-\" fields must be value types"}
			}
			continue
		}

		fieldDesc, err := c.Classify(sf.Type)
		if err != nil {
			return nil, &ClassifyError{Type: t.String(), Field: sf.Name, Reason: err.Error()}
		}

		fd := &FieldDescriptor{
			Name:   sf.Name,
			Index:  i,
			Offset: sf.Offset,
			Type:   fieldDesc,
		}

		if fieldDesc.Kind == KindDynamicArray {
			expr, vars, raw, err := parseMaxExpr(sf)
			if err != nil {
				return nil, err
			}
			fd.MaxLenExpr, fd.MaxLenVars, fd.MaxLenRawExpr = expr, vars, raw
		}

		if names, ok := parseUnionTag(sf); ok {
			if sf.Type.Kind() != reflect.Array || sf.Type.Elem().Kind() != reflect.Uint8 {
				return nil, &ClassifyError{Type: t.String(), Field: sf.Name, Reason: "conser-union must tag a [N]byte field"}
			}
			variants, err := c.resolveUnionVariants(t.String(), sf.Name, names, int(sf.Type.Len()))
			if err != nil {
				return nil, err
			}
			fd.UnionVariants = variants
			unionPayload = fd
			unionVariantNames = names
		}

		fields = append(fields, fd)
		containsDynamic = containsDynamic || fieldDesc.ContainsDynamic || fieldDesc.Kind == KindDynamicArray
	}

	desc.Fields = fields
	desc.ContainsDynamic = containsDynamic

	if unionPayload != nil {
		desc.Kind = KindUnion
		_ = unionVariantNames
	}

	delete(c.inFlight, t)
	return desc, nil
}

// resolveUnionVariants looks up each declared variant name in the
// registry, classifies it, and rejects the union per spec.md §4.1 if any
// variant is or transitively contains a dynamic array, or if it does not
// fit in the declared payload width.
func (c *classifier) resolveUnionVariants(typeName, fieldName string, names []string, payloadLen int) ([]*UnionVariant, error) {
	variants := make([]*UnionVariant, 0, len(names))
	for _, name := range names {
		vt, ok := c.registry.Lookup(name)
		if !ok {
			return nil, &ClassifyError{Type: typeName, Field: fieldName, Reason: "unregistered union variant " + name + " (call Codec.RegisterUnionVariant first)"}
		}
		vd, err := c.Classify(vt)
		if err != nil {
			return nil, &ClassifyError{Type: typeName, Field: fieldName, Reason: "variant " + name + ": " + err.Error()}
		}
		if vd.ContainsDynamic || vd.Kind == KindDynamicArray {
			return nil, &ClassifyError{Type: typeName, Field: fieldName, Reason: "union variant " + name + " is or contains a dynamic array; unions of dynamic arrays cannot be laid out from type alone"}
		}
		if int(vd.Size) > payloadLen {
			return nil, &ClassifyError{Type: typeName, Field: fieldName, Reason: "union variant " + name + " (" + vt.String() + ") does not fit in the declared payload width"}
		}
		variants = append(variants, &UnionVariant{Name: name, Type: vd})
	}
	return variants, nil
}
