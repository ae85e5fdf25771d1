// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package codec encodes and decodes fixed-width records.
// Integers are big-endian and may use any width from 1 to 8 bytes.
package codec

import (
	"github.com/pkg/errors"
)

// ErrShortBuffer is returned when reading past the end of the data.
var ErrShortBuffer = errors.New("codec: short buffer")

// Writer appends fields to a byte slice.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given capacity hint.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Uint appends the low width bytes of v.
// It returns an error if v doesn't fit.
func (w *Writer) Uint(v uint64, width int) error {
	if width < 8 && v>>(8*width) != 0 {
		return errors.Errorf("codec: value %d overflows %d bytes", v, width)
	}
	for i := width - 1; i >= 0; i-- {
		w.buf = append(w.buf, byte(v>>(8*i)))
	}
	return nil
}

// Raw appends b as is.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the encoded data.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader reads fields from a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Uint reads a width bytes integer.
func (r *Reader) Uint(width int) (uint64, error) {
	b, err := r.Raw(width)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// Raw reads the next n bytes. The returned slice aliases the data.
func (r *Reader) Raw(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, ErrShortBuffer
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}
