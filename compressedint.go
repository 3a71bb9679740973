// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "errors"

// ErrReadCompressedUsize is returned when the leading byte of a compressed
// unsigned integer does not match any of the three valid encodings.
var ErrReadCompressedUsize = errors.New("invalid compressed unsigned integer")

// ReadCompressedUint reads an ECMA-335 §II.23.2 compressed unsigned
// integer from b starting at offset off, returning the decoded value and
// the number of bytes consumed. Unlike every other integer in the CLI
// metadata format, the bytes of a compressed integer are big-endian
// within the field.
func (pe *File) ReadCompressedUint(b []byte, off uint32) (uint32, uint32, error) {
	if off >= uint32(len(b)) {
		return 0, 0, ErrOutsideBoundary
	}
	b0 := b[off]

	if b0&0x80 == 0 {
		return uint32(b0 & 0x7F), 1, nil
	}

	if b0&0xC0 == 0x80 {
		if off+1 >= uint32(len(b)) {
			return 0, 0, ErrOutsideBoundary
		}
		b1 := b[off+1]
		return (uint32(b0&0x3F) << 8) | uint32(b1), 2, nil
	}

	if b0&0xE0 == 0xC0 {
		if off+3 >= uint32(len(b)) {
			return 0, 0, ErrOutsideBoundary
		}
		b1, b2, b3 := b[off+1], b[off+2], b[off+3]
		v := (uint32(b0&0x1F) << 24) | (uint32(b1) << 16) | (uint32(b2) << 8) | uint32(b3)
		return v, 4, nil
	}

	return 0, 0, ErrReadCompressedUsize
}
