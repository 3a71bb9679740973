// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"reflect"
	"testing"
)

func TestRangeList(t *testing.T) {
	tests := []struct {
		name       string
		first, end uint32
		want       []uint32
	}{
		{"nil owner", 0, 5, nil},
		{"empty range", 3, 3, nil},
		{"single row", 1, 2, []uint32{1}},
		{"several rows", 2, 5, []uint32{2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rangeList(tt.first, tt.end)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rangeList(%d, %d) = %v, want %v", tt.first, tt.end, got, tt.want)
			}
		})
	}
}

func TestFixupTypeDef(t *testing.T) {
	pe := &File{
		CLR: &ClrData{
			MetaData: &MetaData{
				Tables: map[int]*MetadataTable{
					Field:     {CountCols: 5},
					MethodDef: {CountCols: 5},
					TypeDef: {
						Content: []TypeDefTableRow{
							{FieldList: 1, MethodList: 1},
							{FieldList: 3, MethodList: 2},
							{FieldList: 6, MethodList: 5}, // empty field range, one method
						},
					},
				},
			},
		},
	}

	fixupTypeDef(pe)
	rows := pe.CLR.MetaData.Tables[TypeDef].Content.([]TypeDefTableRow)

	if !reflect.DeepEqual(rows[0].Fields, []uint32{1, 2}) {
		t.Errorf("rows[0].Fields = %v, want [1 2]", rows[0].Fields)
	}
	if !reflect.DeepEqual(rows[0].Methods, []uint32{1}) {
		t.Errorf("rows[0].Methods = %v, want [1]", rows[0].Methods)
	}
	if !reflect.DeepEqual(rows[1].Fields, []uint32{3, 4, 5}) {
		t.Errorf("rows[1].Fields = %v, want [3 4 5]", rows[1].Fields)
	}
	if !reflect.DeepEqual(rows[1].Methods, []uint32{2, 3, 4}) {
		t.Errorf("rows[1].Methods = %v, want [2 3 4]", rows[1].Methods)
	}
	if rows[2].Fields != nil {
		t.Errorf("rows[2].Fields = %v, want nil (last row, field_list beyond row count)", rows[2].Fields)
	}
	if !reflect.DeepEqual(rows[2].Methods, []uint32{5}) {
		t.Errorf("rows[2].Methods = %v, want [5]", rows[2].Methods)
	}
}
