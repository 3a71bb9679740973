// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "testing"

func newTestFileWithRowCounts(counts map[int]uint32) *File {
	tables := make(map[int]*MetadataTable)
	for idx, n := range counts {
		tables[idx] = &MetadataTable{CountCols: n}
	}
	return &File{
		CLR: &ClrData{
			MetaData: &MetaData{
				Tables: tables,
				TablesStreamHeader: MetadataTableStreamHeader{
					Heaps: 0, // 2-byte heap indices
				},
			},
		},
	}
}

func TestCodedIndexWidth(t *testing.T) {
	tests := []struct {
		name   string
		counts map[int]uint32
		c      codedIndex
		want   uint32
	}{
		{
			name:   "fits in 2 bytes",
			counts: map[int]uint32{TypeDef: 10, TypeRef: 5, TypeSpec: 2},
			c:      idxTypeDefOrRef,
			want:   2,
		},
		{
			name:   "needs 4 bytes",
			counts: map[int]uint32{TypeDef: 20000, TypeRef: 5, TypeSpec: 2},
			c:      idxTypeDefOrRef,
			want:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := newTestFileWithRowCounts(tt.counts)
			got := pe.codedIndexWidth(tt.c)
			if got != tt.want {
				t.Errorf("codedIndexWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveCodedIndex(t *testing.T) {
	pe := newTestFileWithRowCounts(map[int]uint32{TypeDef: 10, TypeRef: 5, TypeSpec: 2})

	// TypeDefOrRef tag_bits=2: tag 0 = TypeDef, row 3.
	value := uint32(3)<<2 | 0
	table, row, err := pe.resolveCodedIndex(idxTypeDefOrRef, value)
	if err != nil {
		t.Fatalf("resolveCodedIndex() error = %v", err)
	}
	if table != TypeDef || row != 3 {
		t.Errorf("got table=%d row=%d, want table=%d row=3", table, row, TypeDef)
	}

	// Out-of-range row for the selected table.
	badValue := uint32(50)<<2 | 0
	if _, _, err := pe.resolveCodedIndex(idxTypeDefOrRef, badValue); err != ErrCodedIndexUndefinedTable {
		t.Errorf("err = %v, want %v", err, ErrCodedIndexUndefinedTable)
	}

	// Nil reference (row 0) never triggers a bounds check.
	table, row, err = pe.resolveCodedIndex(idxTypeDefOrRef, 0)
	if err != nil || row != 0 || table != TypeDef {
		t.Errorf("nil ref: got table=%d row=%d err=%v", table, row, err)
	}
}
