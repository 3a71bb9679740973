// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "testing"

func TestReadCompressedUint(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    uint32
		wantLen uint32
		wantErr error
	}{
		{"one byte small", []byte{0x03}, 3, 1, nil},
		{"one byte max", []byte{0x7F}, 127, 1, nil},
		{"two byte min", []byte{0x80, 0x80}, 128, 2, nil},
		{"two byte max", []byte{0xBF, 0xFF}, 16383, 2, nil},
		{"four byte min", []byte{0xC0, 0x00, 0x40, 0x00}, 16384, 4, nil},
		{"four byte max", []byte{0xDF, 0xFF, 0xFF, 0xFF}, 0x1FFFFFFF, 4, nil},
		{"invalid leading byte", []byte{0xE0, 0, 0, 0}, 0, 0, ErrReadCompressedUsize},
	}

	pe := &File{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := pe.ReadCompressedUint(tt.in, 0)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("value = %#x, want %#x", got, tt.want)
			}
			if n != tt.wantLen {
				t.Errorf("consumed = %d, want %d", n, tt.wantLen)
			}
		})
	}
}

func TestReadCompressedUintTruncated(t *testing.T) {
	pe := &File{}
	if _, _, err := pe.ReadCompressedUint([]byte{0x80}, 0); err != ErrOutsideBoundary {
		t.Errorf("err = %v, want %v", err, ErrOutsideBoundary)
	}
	if _, _, err := pe.ReadCompressedUint(nil, 5); err != ErrOutsideBoundary {
		t.Errorf("err = %v, want %v", err, ErrOutsideBoundary)
	}
}
