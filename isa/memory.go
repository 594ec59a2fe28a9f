// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import (
	"errors"
	"fmt"
	"io"
)

// Memory layout of an assembled program. Code starts at address 0 and is
// limited to the image; variables live in a separate data space that
// begins immediately above the image.
const (
	ImageSize = 0x4000        // default capacity of an image, in bytes
	DataBase  = ImageSize + 1 // first data address for a default image
	Sentinel  = 0xff          // terminates the payload of a data definition
)

// Errors
var (
	ErrOutOfBounds = errors.New("image access out of bounds")
)

// An Image is a fixed-capacity, zero-initialized byte buffer holding
// assembled machine code. Stores outside the buffer fail; loads outside the
// buffer read zero.
type Image struct {
	b []byte
}

// NewImage creates an image with the requested capacity. A capacity of
// zero or less selects ImageSize.
func NewImage(capacity int) *Image {
	if capacity <= 0 {
		capacity = ImageSize
	}
	return &Image{b: make([]byte, capacity)}
}

// Len returns the capacity of the image.
func (m *Image) Len() int {
	return len(m.b)
}

// Bytes returns the whole image, including trailing zero padding.
func (m *Image) Bytes() []byte {
	return m.b
}

// Clear zeroes every byte of the image.
func (m *Image) Clear() {
	clear(m.b)
}

// LoadByte loads a single byte from the address and returns it.
func (m *Image) LoadByte(addr int) byte {
	if addr < 0 || addr >= len(m.b) {
		return 0
	}
	return m.b[addr]
}

// LoadBytes loads multiple bytes from the address into the buffer 'b'.
// Bytes beyond the end of the image read as zero.
func (m *Image) LoadBytes(addr int, b []byte) {
	clear(b)
	if addr < 0 || addr >= len(m.b) {
		return
	}
	copy(b, m.b[addr:])
}

// LoadWord loads a big-endian 16-bit value from the address.
func (m *Image) LoadWord(addr int) uint16 {
	return uint16(m.LoadByte(addr))<<8 | uint16(m.LoadByte(addr+1))
}

// StoreByte stores a byte at the requested address.
func (m *Image) StoreByte(addr int, v byte) error {
	if addr < 0 || addr >= len(m.b) {
		return fmt.Errorf("%w: $%04X", ErrOutOfBounds, addr)
	}
	m.b[addr] = v
	return nil
}

// StoreBytes stores multiple bytes starting at the requested address. The
// image is left untouched if the bytes do not fit.
func (m *Image) StoreBytes(addr int, b []byte) error {
	if addr < 0 || addr+len(b) > len(m.b) {
		return fmt.Errorf("%w: $%04X+%d", ErrOutOfBounds, addr, len(b))
	}
	copy(m.b[addr:], b)
	return nil
}

// StoreWord stores a 16-bit value, most significant byte first.
func (m *Image) StoreWord(addr int, v uint16) error {
	return m.StoreBytes(addr, []byte{byte(v >> 8), byte(v)})
}

// ReadFrom replaces the contents of the image with data read from r. Data
// shorter than the image leaves the remainder zeroed.
func (m *Image) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	n = int64(len(b))
	if err != nil {
		return n, err
	}
	if len(b) > len(m.b) {
		return n, fmt.Errorf("image exceeded %d bytes", len(m.b))
	}
	m.Clear()
	copy(m.b, b)
	return n, nil
}

// WriteTo writes the whole image to w.
func (m *Image) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(m.b)
	return int64(nn), err
}
