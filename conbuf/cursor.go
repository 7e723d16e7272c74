// Copyright (c) 2025 The conser Authors
// SPDX-License-Identifier: Apache-2.0

// Package conbuf implements the resizable-byte-sequence primitive the
// Serializer and Deserializer share: a length-word read/write cursor over
// a []byte, grounded on the teacher's sszutils.BufferEncoder cursor
// pattern (sszutils/encoder_buffer.go), generalized with bounds-checked
// reads that surface spec.md's ShortInput error instead of panicking.
package conbuf

import (
	"encoding/binary"

	"github.com/conser-go/conser/conerr"
)

// WordSize is the width of a length prefix in the on-wire layout. The
// spec calls this "a machine word"; this module fixes it at 8 bytes
// regardless of GOARCH. The fixed image still holds each descriptor's
// pointer-width slot (zeroed on the wire), so an encoded buffer's layout
// depends on the host's pointer width.
const WordSize = 8

// byteOrder is the module's choice of "host-endian" representation.
// encoding/binary.NativeEndian (Go 1.21+) picks the actual CPU's byte
// order at compile time, which is the literal reading of spec.md §6:
// "bit-exact, host-endian".
var byteOrder = binary.NativeEndian

// Grow returns buf with length exactly n, extending with zero bytes and
// reusing existing capacity where possible. A buf longer than n is
// truncated to n.
func Grow(buf []byte, n int) []byte {
	if cap(buf) >= n {
		old := len(buf)
		buf = buf[:n]
		for i := old; i < n; i++ {
			buf[i] = 0
		}
		return buf
	}
	grown := make([]byte, n)
	copy(grown, buf)
	return grown
}

// Writer is a forward-only cursor over a pre-grown buffer.
type Writer struct {
	Buf []byte
	Pos int
}

// NewWriter returns a Writer positioned at the end of buf's valid prefix
// (len(buf)), writing into buf's existing capacity.
func NewWriter(buf []byte) *Writer {
	return &Writer{Buf: buf[:cap(buf)], Pos: len(buf)}
}

// WriteLength appends an 8-byte length word.
func (w *Writer) WriteLength(n uint64) {
	byteOrder.PutUint64(w.Buf[w.Pos:], n)
	w.Pos += WordSize
}

// WriteBytes copies raw into the buffer at the cursor and advances.
func (w *Writer) WriteBytes(raw []byte) {
	copy(w.Buf[w.Pos:], raw)
	w.Pos += len(raw)
}

// Bytes returns the written prefix.
func (w *Writer) Bytes() []byte {
	return w.Buf[:w.Pos]
}

// Reader is a forward-only, bounds-checked cursor over an encoded image.
// Every read that would run past the end of Buf returns a ShortInput
// error naming typeName instead of panicking, matching spec.md §7's
// failure taxonomy.
type Reader struct {
	Buf []byte
	Pos int
}

// NewReader returns a Reader starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{Buf: buf}
}

// ReadLength reads an 8-byte length word, advancing the cursor.
func (r *Reader) ReadLength(typeName string) (uint64, error) {
	if r.Pos+WordSize > len(r.Buf) {
		return 0, conerr.NewShortInput(typeName, r.Pos+WordSize, len(r.Buf))
	}
	v := byteOrder.Uint64(r.Buf[r.Pos:])
	r.Pos += WordSize
	return v, nil
}

// Require asserts that n more bytes are available without consuming them,
// returning a ShortInput error naming typeName otherwise.
func (r *Reader) Require(typeName string, n int) error {
	if r.Pos+n > len(r.Buf) {
		return conerr.NewShortInput(typeName, r.Pos+n, len(r.Buf))
	}
	return nil
}

// Advance moves the cursor forward by n bytes without reading them (used
// once a region's bytes have been bound into a descriptor rather than
// copied).
func (r *Reader) Advance(n int) {
	r.Pos += n
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.Buf) - r.Pos
}
