// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrNotEnoughData is returned when a cursor read would run past the end
// of the underlying buffer.
var ErrNotEnoughData = errors.New("not enough data to satisfy read")

// Cursor is a byte-cursor reader over an in-memory buffer: it owns a
// slice and a current read position and exposes little-endian primitive
// reads, matching the way the table and method-body parsers consume
// their own already-sliced byte ranges.
type Cursor struct {
	buf []byte
	pos uint32
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Tell returns the current read position.
func (c *Cursor) Tell() uint32 {
	return c.pos
}

// Seek moves the read position to pos.
func (c *Cursor) Seek(pos uint32) {
	c.pos = pos
}

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() uint32 {
	return uint32(len(c.buf))
}

func (c *Cursor) need(n uint32) error {
	if c.pos+n > uint32(len(c.buf)) || c.pos+n < c.pos {
		return ErrNotEnoughData
	}
	return nil
}

// ReadU8 reads one unsigned byte and advances the cursor.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// ReadU16 reads a little-endian uint16 and advances the cursor.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32 and advances the cursor.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64 and advances the cursor.
func (c *Cursor) ReadU64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadI8 reads a signed byte and advances the cursor.
func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadI16 reads a little-endian int16 and advances the cursor.
func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian int32 and advances the cursor.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64 and advances the cursor.
func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE-754 single-precision float.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads a little-endian IEEE-754 double-precision float.
func (c *Cursor) ReadF64() (float64, error) {
	v, err := c.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBytes reads n raw bytes and advances the cursor.
func (c *Cursor) ReadBytes(n uint32) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}
