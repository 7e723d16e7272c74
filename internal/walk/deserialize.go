// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

package walk

import (
	"fmt"
	"unsafe"

	"github.com/conser-go/conser/conbuf"
	"github.com/conser-go/conser/conerr"
	"github.com/conser-go/conser/contypes"
)

// Deserialize turns an encoded image into a self-contained buffer whose
// dynamic-array descriptors point back into itself: it first measures the
// image (without binding anything) to learn exactly how large the output
// buffer needs to be, then replays the same walk writing real pointers.
//
// A branched array's elements (a dynamic array of dynamic arrays) need a
// live Descriptor[U] slot in memory that the wire format never encodes —
// those slots are bump-allocated into a "tail region" appended after the
// image bytes, which is why the output buffer is larger than the wire
// image by exactly the branched-array overhead the measure pass computes.
// Bytes of src beyond the wire image are not copied.
func Deserialize(ctx *Context, desc *contypes.TypeDescriptor, src []byte) ([]byte, error) {
	if len(src) < int(desc.Size) {
		return nil, conerr.NewShortInput(desc.Go.String(), int(desc.Size), len(src))
	}

	dataLen, tailLen, err := measure(ctx, desc, src)
	if err != nil {
		return nil, err
	}

	out := make([]byte, dataLen+tailLen)
	copy(out, src[:dataLen])

	if desc.ContainsDynamic {
		r := conbuf.NewReader(out)
		r.Advance(int(desc.Size))
		tail := &tailCursor{buf: out, base: dataLen, end: dataLen + tailLen}
		if err := bindValue(ctx, desc, unsafe.Pointer(&out[0]), r, tail, ctx.MaxArrayLength, desc.Go.Name()); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// measure replays the same walk as bindValue but only counts bytes: it
// returns the length of the main (wire) region and the length of the tail
// region a subsequent bind pass will need to materialize.
func measure(ctx *Context, desc *contypes.TypeDescriptor, src []byte) (dataLen, tailLen int, err error) {
	r := conbuf.NewReader(src)
	r.Advance(int(desc.Size))
	if desc.ContainsDynamic {
		if err := measureValue(ctx, desc, r, &tailLen, ctx.MaxArrayLength, desc.Go.Name()); err != nil {
			return 0, 0, err
		}
	}
	return r.Pos, tailLen, nil
}

func measureValue(ctx *Context, desc *contypes.TypeDescriptor, r *conbuf.Reader, tailLen *int, maxLen uint64, path string) error {
	switch desc.Kind {
	case contypes.KindValue:
		return nil

	case contypes.KindFixedArray:
		if !desc.ContainsDynamic {
			return nil
		}
		for i := 0; i < desc.ArrayLen; i++ {
			if err := measureValue(ctx, desc.Elem, r, tailLen, maxLen, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindRecord, contypes.KindUnion:
		if !desc.ContainsDynamic {
			return nil
		}
		for _, f := range desc.Fields {
			if !f.Type.ContainsDynamic && f.Type.Kind != contypes.KindDynamicArray {
				continue
			}
			fieldMax := ctx.resolveMax(f, maxLen)
			if err := measureValue(ctx, f.Type, r, tailLen, fieldMax, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindDynamicArray:
		return measureDynamicArray(ctx, desc, r, tailLen, maxLen, path)

	default:
		return nil
	}
}

func measureDynamicArray(ctx *Context, desc *contypes.TypeDescriptor, r *conbuf.Reader, tailLen *int, maxLen uint64, path string) error {
	elemDesc := desc.Elem
	length, err := r.ReadLength(desc.Go.String())
	if err != nil {
		return err
	}
	if length > maxLen {
		return conerr.NewOversizedArray(elemDesc.Go.String(), length, maxLen)
	}

	switch {
	case elemDesc.Kind == contypes.KindDynamicArray:
		*tailLen += int(elemDesc.Size) * int(length)
		for i := uint64(0); i < length; i++ {
			if err := measureDynamicArray(ctx, elemDesc, r, tailLen, maxLen, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case elemDesc.ContainsDynamic:
		need := int(uint64(elemDesc.Size) * length)
		if err := r.Require(desc.Go.String(), need); err != nil {
			return err
		}
		r.Advance(need)
		for i := uint64(0); i < length; i++ {
			if err := measureValue(ctx, elemDesc, r, tailLen, maxLen, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	default:
		need := int(uint64(elemDesc.Size) * length)
		if err := r.Require(desc.Go.String(), need); err != nil {
			return err
		}
		r.Advance(need)
	}

	return nil
}

// tailCursor bump-allocates space for branched-array Descriptor[U] slots
// out of the buffer region beyond the wire image.
type tailCursor struct {
	buf      []byte
	base     int
	offset   int
	end      int
}

func (t *tailCursor) reserve(n int) unsafe.Pointer {
	addr := bufAddr(t.buf, t.base+t.offset)
	t.offset += n
	return addr
}

// bindValue rewrites the descriptors in addr's image in place, reading
// lengths from r and handing out buffer addresses for their payloads —
// the "descriptor-binding walk".
func bindValue(ctx *Context, desc *contypes.TypeDescriptor, addr unsafe.Pointer, r *conbuf.Reader, tail *tailCursor, maxLen uint64, path string) error {
	switch desc.Kind {
	case contypes.KindValue:
		return nil

	case contypes.KindFixedArray:
		if !desc.ContainsDynamic {
			return nil
		}
		for i := 0; i < desc.ArrayLen; i++ {
			elemAddr := unsafe.Add(addr, uintptr(i)*desc.Elem.Size)
			if err := bindValue(ctx, desc.Elem, elemAddr, r, tail, maxLen, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindRecord, contypes.KindUnion:
		if !desc.ContainsDynamic {
			return nil
		}
		for _, f := range desc.Fields {
			if !f.Type.ContainsDynamic && f.Type.Kind != contypes.KindDynamicArray {
				continue
			}
			fieldMax := ctx.resolveMax(f, maxLen)
			fieldAddr := unsafe.Add(addr, f.Offset)
			if err := bindValue(ctx, f.Type, fieldAddr, r, tail, fieldMax, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil

	case contypes.KindDynamicArray:
		return bindDynamicArray(ctx, desc, addr, r, tail, maxLen, path)

	default:
		return nil
	}
}

func bindDynamicArray(ctx *Context, desc *contypes.TypeDescriptor, addr unsafe.Pointer, r *conbuf.Reader, tail *tailCursor, maxLen uint64, path string) error {
	elemDesc := desc.Elem
	length, err := r.ReadLength(desc.Go.String())
	if err != nil {
		return err
	}
	if length > maxLen {
		return conerr.NewOversizedArray(elemDesc.Go.String(), length, maxLen)
	}

	switch {
	case elemDesc.Kind == contypes.KindDynamicArray:
		descsPtr := tail.reserve(int(elemDesc.Size) * int(length))
		contypes.BindDescriptor(addr, length, descsPtr)
		for i := uint64(0); i < length; i++ {
			innerAddr := unsafe.Add(descsPtr, uintptr(i)*elemDesc.Size)
			if err := bindDynamicArray(ctx, elemDesc, innerAddr, r, tail, maxLen, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case elemDesc.ContainsDynamic:
		need := int(uint64(elemDesc.Size) * length)
		if err := r.Require(desc.Go.String(), need); err != nil {
			return err
		}
		ptr := bufAddr(r.Buf, r.Pos)
		r.Advance(need)
		contypes.BindDescriptor(addr, length, ptr)
		for i := uint64(0); i < length; i++ {
			elemAddr := unsafe.Add(ptr, uintptr(i)*elemDesc.Size)
			if err := bindValue(ctx, elemDesc, elemAddr, r, tail, maxLen, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	default:
		need := int(uint64(elemDesc.Size) * length)
		if err := r.Require(desc.Go.String(), need); err != nil {
			return err
		}
		ptr := bufAddr(r.Buf, r.Pos)
		r.Advance(need)
		contypes.BindDescriptor(addr, length, ptr)
	}

	return nil
}
