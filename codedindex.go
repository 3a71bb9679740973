// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "errors"

// ErrCodedIndexUndefinedTable is returned when a coded index's tag selects
// a table slot that is unused or that the image does not materialize.
var ErrCodedIndexUndefinedTable = errors.New("coded index refers to an undefined table")

// Metadata table indices, §II.22.
const (
	Module                 = 0
	TypeRef                = 1
	TypeDef                = 2
	FieldPtr                = 3
	Field                   = 4
	MethodPtr               = 5
	MethodDef               = 6
	ParamPtr                = 7
	Param                   = 8
	InterfaceImpl           = 9
	MemberRef               = 10
	Constant                = 11
	CustomAttribute         = 12
	FieldMarshal            = 13
	DeclSecurity            = 14
	ClassLayout             = 15
	FieldLayout             = 16
	StandAloneSig           = 17
	EventMap                = 18
	EventPtr                = 19
	Event                   = 20
	PropertyMap             = 21
	PropertyPtr             = 22
	Property                = 23
	MethodSemantics         = 24
	MethodImpl              = 25
	ModuleRef               = 26
	TypeSpec                = 27
	ImplMap                 = 28
	FieldRVA                = 29
	ENCLog                  = 30
	ENCMap                  = 31
	Assembly                = 32
	AssemblyProcessor       = 33
	AssemblyOS              = 34
	AssemblyRef             = 35
	AssemblyRefProcessor    = 36
	AssemblyRefOS           = 37
	FileMD                  = 38
	ExportedType            = 39
	ManifestResource        = 40
	NestedClass             = 41
	GenericParam            = 42
	MethodSpec              = 43
	GenericParamConstraint  = 44

	// NumMetadataTables bounds the valid table index range; indices 45-61
	// are reserved, 62/63 are used by uncompressed-stream encodings this
	// analyzer does not need to distinguish from "absent".
	NumMetadataTables = 45
)

// MetadataTableIndexToString returns the name of a metadata table index.
func MetadataTableIndexToString(k int) string {
	names := map[int]string{
		Module:                 "Module",
		TypeRef:                "TypeRef",
		TypeDef:                "TypeDef",
		FieldPtr:               "FieldPtr",
		Field:                  "Field",
		MethodPtr:              "MethodPtr",
		MethodDef:              "MethodDef",
		ParamPtr:               "ParamPtr",
		Param:                  "Param",
		InterfaceImpl:          "InterfaceImpl",
		MemberRef:              "MemberRef",
		Constant:               "Constant",
		CustomAttribute:        "CustomAttribute",
		FieldMarshal:           "FieldMarshal",
		DeclSecurity:           "DeclSecurity",
		ClassLayout:            "ClassLayout",
		FieldLayout:            "FieldLayout",
		StandAloneSig:          "StandAloneSig",
		EventMap:               "EventMap",
		EventPtr:               "EventPtr",
		Event:                  "Event",
		PropertyMap:            "PropertyMap",
		PropertyPtr:            "PropertyPtr",
		Property:               "Property",
		MethodSemantics:        "MethodSemantics",
		MethodImpl:             "MethodImpl",
		ModuleRef:              "ModuleRef",
		TypeSpec:               "TypeSpec",
		ImplMap:                "ImplMap",
		FieldRVA:               "FieldRVA",
		ENCLog:                 "ENCLog",
		ENCMap:                 "ENCMap",
		Assembly:               "Assembly",
		AssemblyProcessor:      "AssemblyProcessor",
		AssemblyOS:             "AssemblyOS",
		AssemblyRef:            "AssemblyRef",
		AssemblyRefProcessor:   "AssemblyRefProcessor",
		AssemblyRefOS:          "AssemblyRefOS",
		FileMD:                 "File",
		ExportedType:           "ExportedType",
		ManifestResource:       "ManifestResource",
		NestedClass:            "NestedClass",
		GenericParam:           "GenericParam",
		MethodSpec:             "MethodSpec",
		GenericParamConstraint: "GenericParamConstraint",
	}
	return names[k]
}

// Heap stream bit positions within heap_offset_sizes, §II.24.2.6.
const (
	StringStream = 0
	GUIDStream   = 1
	BlobStream   = 2
)

// heap-stream pseudo table indices, kept out of the 0..44 table range so
// they never collide with a real metadata table index; used only as a
// codedIndex's single "table" when the index addresses a heap instead of
// a table.
const (
	idxStringStream = iota + 1000
	idxGUIDStream
	idxBlobStream
)

// codedIndex describes one of the coded-index kinds from spec.md §3: a
// tag width in bits plus the ordered set of tables (or heap) it can
// address.
type codedIndex struct {
	tagBits uint8
	tables  []int
}

// The coded-index kinds fixed by the CLI metadata format, §II.24.2.6.
var (
	idxTypeDefOrRef        = codedIndex{tagBits: 2, tables: []int{TypeDef, TypeRef, TypeSpec}}
	idxResolutionScope     = codedIndex{tagBits: 2, tables: []int{Module, ModuleRef, AssemblyRef, TypeRef}}
	idxMemberRefParent     = codedIndex{tagBits: 3, tables: []int{TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec}}
	idxHasConstant         = codedIndex{tagBits: 2, tables: []int{Field, Param, Property}}
	idxHasCustomAttributes = codedIndex{tagBits: 5, tables: []int{
		MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
		Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
		TypeSpec, Assembly, AssemblyRef, FileMD, ExportedType, ManifestResource,
		GenericParam, GenericParamConstraint, MethodSpec,
	}}
	idxCustomAttributeType = codedIndex{tagBits: 3, tables: []int{-1, -1, MethodDef, MemberRef, -1}}
	idxHasFieldMarshall    = codedIndex{tagBits: 1, tables: []int{Field, Param}}
	idxHasDeclSecurity     = codedIndex{tagBits: 2, tables: []int{TypeDef, MethodDef, Assembly}}
	idxHasSemantics        = codedIndex{tagBits: 1, tables: []int{Event, Property}}
	idxMethodDefOrRef      = codedIndex{tagBits: 1, tables: []int{MethodDef, MemberRef}}
	idxMemberForwarded     = codedIndex{tagBits: 1, tables: []int{Field, MethodDef}}
	idxImplementation      = codedIndex{tagBits: 2, tables: []int{FileMD, AssemblyRef, ExportedType}}
	idxTypeOrMethodDef     = codedIndex{tagBits: 1, tables: []int{TypeDef, MethodDef}}

	idxField        = codedIndex{tables: []int{Field}}
	idxMethodDefOnly = codedIndex{tables: []int{MethodDef}}
	idxParam        = codedIndex{tables: []int{Param}}
	idxTypeDefOnly  = codedIndex{tables: []int{TypeDef}}
	idxEvent        = codedIndex{tables: []int{Event}}
	idxPropertyOnly = codedIndex{tables: []int{Property}}
	idxModuleRefOnly = codedIndex{tables: []int{ModuleRef}}
	idxGenericParamOnly = codedIndex{tables: []int{GenericParam}}

	idxStringHeap = codedIndex{tables: []int{idxStringStream}}
	idxBlobHeap   = codedIndex{tables: []int{idxBlobStream}}
	idxGUIDHeap   = codedIndex{tables: []int{idxGUIDStream}}
)

// CodedIndexKind names one of the tagged coded-index kinds a table row
// column can store, for use with (*ClrData).ResolveCodedIndex.
type CodedIndexKind int

const (
	TypeDefOrRef CodedIndexKind = iota
	ResolutionScope
	MemberRefParent
	HasConstant
	HasCustomAttribute
	CustomAttributeType
	HasFieldMarshal
	HasDeclSecurity
	HasSemantics
	MethodDefOrRef
	MemberForwarded
	Implementation
	TypeOrMethodDef
)

// codedIndexKinds maps each exported CodedIndexKind to the codedIndex
// value that actually drives width/tag decoding.
var codedIndexKinds = map[CodedIndexKind]codedIndex{
	TypeDefOrRef:         idxTypeDefOrRef,
	ResolutionScope:      idxResolutionScope,
	MemberRefParent:      idxMemberRefParent,
	HasConstant:          idxHasConstant,
	HasCustomAttribute:   idxHasCustomAttributes,
	CustomAttributeType:  idxCustomAttributeType,
	HasFieldMarshal:      idxHasFieldMarshall,
	HasDeclSecurity:      idxHasDeclSecurity,
	HasSemantics:         idxHasSemantics,
	MethodDefOrRef:       idxMethodDefOrRef,
	MemberForwarded:      idxMemberForwarded,
	Implementation:       idxImplementation,
	TypeOrMethodDef:      idxTypeOrMethodDef,
}

// codedIndexWidth computes the on-disk width of a coded index: 2 bytes if
// every addressed table's row count fits under 2^(16-tag_bits), else 4.
// A coded index whose single "table" is a heap pseudo-index instead
// defers to the tables-stream header's heap-offset-size bit.
func (pe *File) codedIndexWidth(c codedIndex) uint32 {
	switch c.tables[0] {
	case idxStringStream:
		return uint32(pe.GetMetadataStreamIndexSize(StringStream))
	case idxGUIDStream:
		return uint32(pe.GetMetadataStreamIndexSize(GUIDStream))
	case idxBlobStream:
		return uint32(pe.GetMetadataStreamIndexSize(BlobStream))
	}

	maxIndex16 := uint32(1) << (16 - c.tagBits)
	var maxRows uint32
	for _, t := range c.tables {
		if t < 0 {
			continue
		}
		if tbl, ok := pe.CLR.MetaData.Tables[t]; ok && tbl.CountCols > maxRows {
			maxRows = tbl.CountCols
		}
	}
	if maxRows > maxIndex16 {
		return 4
	}
	return 2
}

// readCodedIndex reads a coded-index field at off into out and returns
// the number of bytes consumed.
func (pe *File) readCodedIndex(c codedIndex, off uint32, out *uint32) (uint32, error) {
	width := pe.codedIndexWidth(c)
	var data uint32
	switch width {
	case 2:
		d, err := pe.ReadUint16(off)
		if err != nil {
			return 0, err
		}
		data = uint32(d)
	case 4:
		d, err := pe.ReadUint32(off)
		if err != nil {
			return 0, err
		}
		data = d
	}
	*out = data
	return width, nil
}

// resolveCodedIndex decodes a coded-index raw value into the table it
// selects and the 1-based row index within that table. A zero row index
// denotes a nil reference and is returned as-is without a table lookup.
func (pe *File) resolveCodedIndex(c codedIndex, value uint32) (table int, row uint32, err error) {
	if c.tagBits == 0 {
		// single-table index: the stored value IS the row index.
		if c.tables[0] == idxStringStream || c.tables[0] == idxGUIDStream || c.tables[0] == idxBlobStream {
			return c.tables[0], value, nil
		}
		return c.tables[0], value, nil
	}
	mask := uint32(1)<<c.tagBits - 1
	tag := value & mask
	row = value >> c.tagBits
	if int(tag) >= len(c.tables) {
		return 0, 0, ErrCodedIndexUndefinedTable
	}
	table = c.tables[tag]
	if table < 0 {
		return 0, 0, ErrCodedIndexUndefinedTable
	}
	if row == 0 {
		return table, 0, nil
	}
	if tbl, ok := pe.CLR.MetaData.Tables[table]; !ok || row > tbl.CountCols {
		return 0, 0, ErrCodedIndexUndefinedTable
	}
	return table, row, nil
}
