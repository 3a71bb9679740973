// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"bytes"
	"errors"
)

// Heap read errors, spec.md §7 "Bounds".
var (
	ErrStringHeapOutOfBound     = errors.New("string heap read out of bound")
	ErrBlobHeapOutOfBound       = errors.New("blob heap read out of bound")
	ErrUserStringHeapOutOfBound = errors.New("user-string heap read out of bound")
	ErrGUIDHeapOutOfBound       = errors.New("guid heap read out of bound")
)

// GetStringFromData returns the NUL-terminated UTF-8 string found in the
// #Strings heap at byte offset index. Index 0 returns the empty string.
func (pe *File) GetStringFromData(index uint32, heap []byte) (string, error) {
	if index == 0 {
		return "", nil
	}
	if index >= uint32(len(heap)) {
		return "", ErrStringHeapOutOfBound
	}
	end := bytes.IndexByte(heap[index:], 0)
	if end < 0 {
		return "", ErrStringHeapOutOfBound
	}
	return string(heap[index : index+uint32(end)]), nil
}

// GetBlobFromData returns the payload of the #Blob heap entry at byte
// offset index: a compressed-integer length prefix followed by that many
// raw bytes.
func (pe *File) GetBlobFromData(index uint32, heap []byte) ([]byte, error) {
	if index == 0 {
		return nil, nil
	}
	if index >= uint32(len(heap)) {
		return nil, ErrBlobHeapOutOfBound
	}
	length, n, err := pe.ReadCompressedUint(heap, index)
	if err != nil {
		return nil, err
	}
	start := index + n
	end := start + length
	if end > uint32(len(heap)) || end < start {
		return nil, ErrBlobHeapOutOfBound
	}
	return heap[start:end], nil
}

// GetUserStringFromData returns the decoded UTF-16LE string found at byte
// offset index in the #US heap. Entries in this heap use the same
// compressed-length-prefix encoding as the #Blob heap, followed by the
// UTF-16LE payload plus one trailing byte (ignored; it records whether
// any character in the string has its high bit set).
func (pe *File) GetUserStringFromData(index uint32, heap []byte) (string, error) {
	if index == 0 {
		return "", nil
	}
	if index >= uint32(len(heap)) {
		return "", ErrUserStringHeapOutOfBound
	}
	length, n, err := pe.ReadCompressedUint(heap, index)
	if err != nil {
		return "", err
	}
	start := index + n
	end := start + length
	if end > uint32(len(heap)) || end < start {
		return "", ErrUserStringHeapOutOfBound
	}
	if length == 0 {
		return "", nil
	}
	payload := heap[start:end]
	// Drop the trailing "has high byte" marker before decoding.
	if len(payload)%2 == 1 {
		payload = payload[:len(payload)-1]
	}
	return DecodeUTF16String(payload)
}

// GetGUIDFromData returns the 16-byte GUID found at the 1-based slot
// index in the #GUID heap. Index 0 denotes the nil GUID.
func (pe *File) GetGUIDFromData(index uint32, heap []byte) ([]byte, error) {
	if index == 0 {
		return make([]byte, 16), nil
	}
	off := (index - 1) * 16
	if off+16 > uint32(len(heap)) {
		return nil, ErrGUIDHeapOutOfBound
	}
	return heap[off : off+16], nil
}
