// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

// the struct definitions and field comments below are adapted from the
// ECMA-335 spec 6th edition, §II.22.

// ModuleTableRow is table 0x00: the current module descriptor.
type ModuleTableRow struct {
	Generation uint16 `json:"generation"`
	Name       uint32 `json:"name"`
	Mvid       uint32 `json:"mvid"`
	EncID      uint32 `json:"enc_id"`
	EncBaseID  uint32 `json:"enc_base_id"`
}

// TypeRefTableRow is table 0x01: class reference descriptors.
type TypeRefTableRow struct {
	ResolutionScope uint32 `json:"resolution_scope"`
	TypeName        uint32 `json:"type_name"`
	TypeNamespace   uint32 `json:"type_namespace"`
}

// TypeDefTableRow is table 0x02: class or interface definitions.
type TypeDefTableRow struct {
	Flags         uint32   `json:"flags"`
	TypeName      uint32   `json:"type_name"`
	TypeNamespace uint32   `json:"type_namespace"`
	Extends       uint32   `json:"extends"`
	FieldList     uint32   `json:"field_list"`
	MethodList    uint32   `json:"method_list"`
	Fields        []uint32 `json:"fields,omitempty"`
	Methods       []uint32 `json:"methods,omitempty"`
	// ExtendsTable/ExtendsRID are Extends resolved through the
	// TypeDefOrRef coded index (pass B, once every table's row count is
	// known); ExtendsTable is -1 for a type with no base (System.Object
	// or an interface).
	ExtendsTable int    `json:"extends_table"`
	ExtendsRID   uint32 `json:"extends_rid,omitempty"`
}

// FieldPtrTableRow is table 0x03: an indirection table used instead of
// a direct Field row index when a `#-` (unoptimized) tables stream is
// present.
type FieldPtrTableRow struct {
	Field uint32 `json:"field"`
}

// FieldTableRow is table 0x04: field definitions.
type FieldTableRow struct {
	Flags     uint16 `json:"flags"`
	Name      uint32 `json:"name"`
	Signature uint32 `json:"signature"`
}

// MethodPtrTableRow is table 0x05: the MethodDef indirection table, see
// FieldPtrTableRow.
type MethodPtrTableRow struct {
	Method uint32 `json:"method"`
}

// MethodDefTableRow is table 0x06: method definitions.
type MethodDefTableRow struct {
	RVA        uint32 `json:"rva"`
	ImplFlags  uint16 `json:"impl_flags"`
	Flags      uint16 `json:"flags"`
	Name       uint32 `json:"name"`
	Signature  uint32 `json:"signature"`
	ParamList  uint32 `json:"param_list"`
}

// ParamPtrTableRow is table 0x07: the Param indirection table, see
// FieldPtrTableRow.
type ParamPtrTableRow struct {
	Param uint32 `json:"param"`
}

// ParamTableRow is table 0x08: parameter definitions.
type ParamTableRow struct {
	Flags    uint16 `json:"flags"`
	Sequence uint16 `json:"sequence"`
	Name     uint32 `json:"name"`
}

// InterfaceImplTableRow is table 0x09: interface implementation descriptors.
type InterfaceImplTableRow struct {
	Class     uint32 `json:"class"`
	Interface uint32 `json:"interface"`
}

// MemberRefTableRow is table 0x0a: member (field or method) references.
type MemberRefTableRow struct {
	Class     uint32 `json:"class"`
	Name      uint32 `json:"name"`
	Signature uint32 `json:"signature"`
}

// ConstantTableRow is table 0x0b: default-value descriptors.
type ConstantTableRow struct {
	Type    uint8  `json:"type"`
	Padding uint8  `json:"-"`
	Parent  uint32 `json:"parent"`
	Value   uint32 `json:"value"`
}

// CustomAttributeTableRow is table 0x0c: custom attribute descriptors.
type CustomAttributeTableRow struct {
	Parent uint32 `json:"parent"`
	Type   uint32 `json:"type"`
	Value  uint32 `json:"value"`
}

// FieldMarshalTableRow is table 0x0d: field/param marshaling descriptors.
type FieldMarshalTableRow struct {
	Parent     uint32 `json:"parent"`
	NativeType uint32 `json:"native_type"`
}

// DeclSecurityTableRow is table 0x0e: security descriptors.
type DeclSecurityTableRow struct {
	Action        uint16 `json:"action"`
	Parent        uint32 `json:"parent"`
	PermissionSet uint32 `json:"permission_set"`
}

// ClassLayoutTableRow is table 0x0f: class layout descriptors.
type ClassLayoutTableRow struct {
	PackingSize uint16 `json:"packing_size"`
	ClassSize   uint32 `json:"class_size"`
	Parent      uint32 `json:"parent"`
}

// FieldLayoutTableRow is table 0x10: field layout descriptors.
type FieldLayoutTableRow struct {
	Offset uint32 `json:"offset"`
	Field  uint32 `json:"field"`
}

// StandAloneSigTableRow is table 0x11: stand-alone signature descriptors.
type StandAloneSigTableRow struct {
	Signature uint32 `json:"signature"`
}

// EventMapTableRow is table 0x12: class-to-events mapping.
type EventMapTableRow struct {
	Parent    uint32   `json:"parent"`
	EventList uint32   `json:"event_list"`
	Events    []uint32 `json:"events,omitempty"`
}

// EventPtrTableRow is table 0x13: the Event indirection table, see
// FieldPtrTableRow.
type EventPtrTableRow struct {
	Event uint32 `json:"event"`
}

// EventTableRow is table 0x14: event descriptors.
type EventTableRow struct {
	EventFlags uint16 `json:"event_flags"`
	Name       uint32 `json:"name"`
	EventType  uint32 `json:"event_type"`
}

// PropertyMapTableRow is table 0x15: class-to-properties mapping.
type PropertyMapTableRow struct {
	Parent       uint32   `json:"parent"`
	PropertyList uint32   `json:"property_list"`
	Properties   []uint32 `json:"properties,omitempty"`
}

// PropertyPtrTableRow is table 0x16: the Property indirection table,
// see FieldPtrTableRow.
type PropertyPtrTableRow struct {
	Property uint32 `json:"property"`
}

// PropertyTableRow is table 0x17: property descriptors.
type PropertyTableRow struct {
	Flags uint16 `json:"flags"`
	Name  uint32 `json:"name"`
	Type  uint32 `json:"type"`
}

// MethodSemanticsTableRow is table 0x18: method/property/event association.
type MethodSemanticsTableRow struct {
	Semantics   uint16 `json:"semantics"`
	Method      uint32 `json:"method"`
	Association uint32 `json:"association"`
}

// MethodImplTableRow is table 0x19: method implementation descriptors.
type MethodImplTableRow struct {
	Class             uint32 `json:"class"`
	MethodBody        uint32 `json:"method_body"`
	MethodDeclaration uint32 `json:"method_declaration"`
}

// ModuleRefTableRow is table 0x1a: module reference descriptors.
type ModuleRefTableRow struct {
	Name uint32 `json:"name"`
}

// TypeSpecTableRow is table 0x1b: type specification descriptors.
type TypeSpecTableRow struct {
	Signature uint32 `json:"signature"`
}

// ImplMapTableRow is table 0x1c: P/Invoke implementation map descriptors.
type ImplMapTableRow struct {
	MappingFlags    uint16 `json:"mapping_flags"`
	MemberForwarded uint32 `json:"member_forwarded"`
	ImportName      uint32 `json:"import_name"`
	ImportScope     uint32 `json:"import_scope"`
}

// FieldRVATableRow is table 0x1d: field-to-data mapping descriptors.
type FieldRVATableRow struct {
	RVA   uint32 `json:"rva"`
	Field uint32 `json:"field"`
}

// AssemblyTableRow is table 0x20: the current assembly descriptor.
type AssemblyTableRow struct {
	HashAlgId      uint32 `json:"hash_alg_id"`
	MajorVersion   uint16 `json:"major_version"`
	MinorVersion   uint16 `json:"minor_version"`
	BuildNumber    uint16 `json:"build_number"`
	RevisionNumber uint16 `json:"revision_number"`
	Flags          uint32 `json:"flags"`
	PublicKey      uint32 `json:"public_key"`
	Name           uint32 `json:"name"`
	Culture        uint32 `json:"culture"`
}

// AssemblyProcessorTableRow is table 0x21: unused.
type AssemblyProcessorTableRow struct {
	Processor uint32 `json:"processor"`
}

// AssemblyOSTableRow is table 0x22: unused.
type AssemblyOSTableRow struct {
	OSPlatformID   uint32 `json:"os_platform_id"`
	OSMajorVersion uint32 `json:"os_major_version"`
	OSMinorVersion uint32 `json:"os_minor_version"`
}

// AssemblyRefTableRow is table 0x23: assembly reference descriptors.
type AssemblyRefTableRow struct {
	MajorVersion     uint16 `json:"major_version"`
	MinorVersion     uint16 `json:"minor_version"`
	BuildNumber      uint16 `json:"build_number"`
	RevisionNumber   uint16 `json:"revision_number"`
	Flags            uint32 `json:"flags"`
	PublicKeyOrToken uint32 `json:"public_key_or_token"`
	Name             uint32 `json:"name"`
	Culture          uint32 `json:"culture"`
	HashValue        uint32 `json:"hash_value"`
}

// AssemblyRefProcessorTableRow is table 0x24: unused.
type AssemblyRefProcessorTableRow struct {
	Processor   uint32 `json:"processor"`
	AssemblyRef uint32 `json:"assembly_ref"`
}

// AssemblyRefOSTableRow is table 0x25: unused.
type AssemblyRefOSTableRow struct {
	OSPlatformID   uint32 `json:"os_platform_id"`
	OSMajorVersion uint32 `json:"os_major_version"`
	OSMinorVersion uint32 `json:"os_minor_version"`
	AssemblyRef    uint32 `json:"assembly_ref"`
}

// FileTableRow is table 0x26: other files in the current assembly.
type FileTableRow struct {
	Flags     uint32 `json:"flags"`
	Name      uint32 `json:"name"`
	HashValue uint32 `json:"hash_value"`
}

// ExportedTypeTableRow is table 0x27: public classes exported by other modules.
type ExportedTypeTableRow struct {
	Flags          uint32 `json:"flags"`
	TypeDefId      uint32 `json:"type_def_id"`
	TypeName       uint32 `json:"type_name"`
	TypeNamespace  uint32 `json:"type_namespace"`
	Implementation uint32 `json:"implementation"`
}

// ManifestResourceTableRow is table 0x28: managed resource descriptors.
type ManifestResourceTableRow struct {
	Offset         uint32 `json:"offset"`
	Flags          uint32 `json:"flags"`
	Name           uint32 `json:"name"`
	Implementation uint32 `json:"implementation"`
}

// NestedClassTableRow is table 0x29: nested-to-enclosing class mapping.
type NestedClassTableRow struct {
	NestedClass    uint32 `json:"nested_class"`
	EnclosingClass uint32 `json:"enclosing_class"`
}

// GenericParamTableRow is table 0x2a: generic parameter descriptors.
type GenericParamTableRow struct {
	Number uint16 `json:"number"`
	Flags  uint16 `json:"flags"`
	Owner  uint32 `json:"owner"`
	Name   uint32 `json:"name"`
}

// MethodSpecTableRow is table 0x2b: generic method instantiation descriptors.
type MethodSpecTableRow struct {
	Method        uint32 `json:"method"`
	Instantiation uint32 `json:"instantiation"`
}

// GenericParamConstraintTableRow is table 0x2c: generic parameter constraints.
type GenericParamConstraintTableRow struct {
	Owner      uint32 `json:"owner"`
	Constraint uint32 `json:"constraint"`
}

// fixupFn extends a run-length "list" column (field_list, method_list,
// event_list, property_list) from first-element-only (pass A) to a full
// `[first, next.first)` range (pass B), per spec.md §4.6.
type fixupFn func(pe *File)

// tableSpec binds a table index to its row-count-driven parse function
// and, for the three "list owner" tables, its pass-B fixup.
type tableSpec struct {
	index int
	parse func(pe *File, off uint32) (uint32, error)
	fixup fixupFn
}

func (pe *File) tableSpecs() []tableSpec {
	return []tableSpec{
		{Module, parseModuleTable, nil},
		{TypeRef, parseTypeRefTable, nil},
		{TypeDef, parseTypeDefTable, fixupTypeDef},
		{FieldPtr, parseFieldPtrTable, nil},
		{Field, parseFieldTable, nil},
		{MethodPtr, parseMethodPtrTable, nil},
		{MethodDef, parseMethodDefTable, nil},
		{ParamPtr, parseParamPtrTable, nil},
		{Param, parseParamTable, nil},
		{InterfaceImpl, parseInterfaceImplTable, nil},
		{MemberRef, parseMemberRefTable, nil},
		{Constant, parseConstantTable, nil},
		{CustomAttribute, parseCustomAttributeTable, nil},
		{FieldMarshal, parseFieldMarshalTable, nil},
		{DeclSecurity, parseDeclSecurityTable, nil},
		{ClassLayout, parseClassLayoutTable, nil},
		{FieldLayout, parseFieldLayoutTable, nil},
		{StandAloneSig, parseStandAloneSigTable, nil},
		{EventMap, parseEventMapTable, fixupEventMap},
		{EventPtr, parseEventPtrTable, nil},
		{Event, parseEventTable, nil},
		{PropertyMap, parsePropertyMapTable, fixupPropertyMap},
		{PropertyPtr, parsePropertyPtrTable, nil},
		{Property, parsePropertyTable, nil},
		{MethodSemantics, parseMethodSemanticsTable, nil},
		{MethodImpl, parseMethodImplTable, nil},
		{ModuleRef, parseModuleRefTable, nil},
		{TypeSpec, parseTypeSpecTable, nil},
		{ImplMap, parseImplMapTable, nil},
		{FieldRVA, parseFieldRVATable, nil},
		{Assembly, parseAssemblyTable, nil},
		{AssemblyProcessor, parseAssemblyProcessorTable, nil},
		{AssemblyOS, parseAssemblyOSTable, nil},
		{AssemblyRef, parseAssemblyRefTable, nil},
		{AssemblyRefProcessor, parseAssemblyRefProcessorTable, nil},
		{AssemblyRefOS, parseAssemblyRefOSTable, nil},
		{FileMD, parseFileTable, nil},
		{ExportedType, parseExportedTypeTable, nil},
		{ManifestResource, parseManifestResourceTable, nil},
		{NestedClass, parseNestedClassTable, nil},
		{GenericParam, parseGenericParamTable, nil},
		{MethodSpec, parseMethodSpecTable, nil},
		{GenericParamConstraint, parseGenericParamConstraintTable, nil},
	}
}

// parseMetadataTablesStream drives the three passes of spec.md §4.6:
// layout (row counts + table construction), pass A (independent per-row
// decode), and pass B (run-length list fixup). offset points at the
// first row-count u32 following the tables-stream header.
func (pe *File) parseMetadataTablesStream(offset uint32) error {
	hdr := pe.CLR.MetaData.TablesStreamHeader
	pe.CLR.MetaData.Tables = make(map[int]*MetadataTable)
	pe.CLR.MetaData.TableErrors = make(map[int]string)

	for i := 0; i < 64; i++ {
		if !IsBitSet(hdr.MaskValid, i) {
			continue
		}
		count, err := pe.ReadUint32(offset)
		if err != nil {
			return err
		}
		offset += 4
		if i >= NumMetadataTables {
			// Reserved / uncompressed-stream table slots: row count is
			// consumed to keep payload offsets correct, but this analyzer
			// does not materialize a row type for it.
			continue
		}
		pe.CLR.MetaData.Tables[i] = &MetadataTable{
			Name:      MetadataTableIndexToString(i),
			CountCols: count,
		}
	}

	// Bit 0x40 of heap_offset_sizes marks an extra 4-byte field (used by
	// some compilers for an edit-and-continue row id width); skip it.
	if IsBitSet(uint64(hdr.Heaps), 6) {
		offset += 4
	}

	// Pass A: per-row decode, in ascending table index order, matching
	// the on-disk payload concatenation order.
	for _, spec := range pe.tableSpecs() {
		if _, ok := pe.CLR.MetaData.Tables[spec.index]; !ok {
			continue
		}
		n, err := spec.parse(pe, offset)
		if err != nil {
			pe.CLR.MetaData.TableErrors[spec.index] = err.Error()
			continue
		}
		offset += n
	}

	// Pass B: run-length fixups, once every table's first-element values
	// are in place.
	for _, spec := range pe.tableSpecs() {
		if spec.fixup == nil {
			continue
		}
		if _, ok := pe.CLR.MetaData.Tables[spec.index]; !ok {
			continue
		}
		spec.fixup(pe)
	}

	return nil
}

// rowCount returns the row count of table idx, or 0 if the table is
// absent from this image.
func (pe *File) rowCount(idx int) uint32 {
	if t, ok := pe.CLR.MetaData.Tables[idx]; ok {
		return t.CountCols
	}
	return 0
}

func parseModuleTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Module))
	rows := make([]ModuleTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Generation, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		if c, err := pe.readString(off, &rows[i].Name); err != nil {
			return n, err
		} else {
			off += c
			n += c
		}
		for _, f := range []*uint32{&rows[i].Mvid, &rows[i].EncID, &rows[i].EncBaseID} {
			c, err := pe.readGUID(off, f)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[Module].Content = rows
	return n, nil
}

// readString/readBlob/readGUID are thin aliases over readCodedIndex that
// make the per-table parse functions below read like the ECMA-335
// column descriptions they are transcribed from.
func (pe *File) readString(off uint32, out *uint32) (uint32, error) {
	return pe.readCodedIndex(idxStringHeap, off, out)
}
func (pe *File) readBlob(off uint32, out *uint32) (uint32, error) {
	return pe.readCodedIndex(idxBlobHeap, off, out)
}
func (pe *File) readGUID(off uint32, out *uint32) (uint32, error) {
	return pe.readCodedIndex(idxGUIDHeap, off, out)
}

func parseTypeRefTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(TypeRef))
	rows := make([]TypeRefTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		steps := []struct {
			c   codedIndex
			out *uint32
		}{
			{idxResolutionScope, &rows[i].ResolutionScope},
			{idxStringHeap, &rows[i].TypeName},
			{idxStringHeap, &rows[i].TypeNamespace},
		}
		for _, s := range steps {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[TypeRef].Content = rows
	return n, nil
}

func parseTypeDefTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(TypeDef))
	rows := make([]TypeDefTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Flags, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4

		steps := []struct {
			c   codedIndex
			out *uint32
		}{
			{idxStringHeap, &rows[i].TypeName},
			{idxStringHeap, &rows[i].TypeNamespace},
			{idxTypeDefOrRef, &rows[i].Extends},
			{idxField, &rows[i].FieldList},
			{idxMethodDefOnly, &rows[i].MethodList},
		}
		for _, s := range steps {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[TypeDef].Content = rows
	return n, nil
}

// fixupTypeDef implements spec.md §4.6 pass B for TypeDef: each row's
// FieldList/MethodList first-element index is extended into the full
// contiguous range of rows owned by that type, bounded by the next row's
// first-element index (or the owned table's row count for the last row).
func fixupTypeDef(pe *File) {
	rows, ok := pe.CLR.MetaData.Tables[TypeDef].Content.([]TypeDefTableRow)
	if !ok {
		return
	}
	fieldCount := pe.rowCount(Field)
	methodCount := pe.rowCount(MethodDef)
	for i := range rows {
		fieldEnd := fieldCount + 1
		methodEnd := methodCount + 1
		if i+1 < len(rows) {
			fieldEnd = rows[i+1].FieldList
			methodEnd = rows[i+1].MethodList
		}
		rows[i].Fields = rangeList(rows[i].FieldList, fieldEnd)
		rows[i].Methods = rangeList(rows[i].MethodList, methodEnd)

		table, row, err := pe.resolveCodedIndex(idxTypeDefOrRef, rows[i].Extends)
		if err != nil || row == 0 {
			rows[i].ExtendsTable = -1
			continue
		}
		rows[i].ExtendsTable = table
		rows[i].ExtendsRID = row
	}
	pe.CLR.MetaData.Tables[TypeDef].Content = rows
}

// rangeList returns [first, first+1, ..., end-1], or nil if first is nil
// (zero) or the range is empty.
func rangeList(first, end uint32) []uint32 {
	if first == 0 || end <= first {
		return nil
	}
	out := make([]uint32, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, i)
	}
	return out
}

func parseFieldPtrTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(FieldPtr))
	rows := make([]FieldPtrTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readCodedIndex(idxField, off, &rows[i].Field)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[FieldPtr].Content = rows
	return n, nil
}

func parseFieldTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Field))
	rows := make([]FieldTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Flags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxStringHeap, &rows[i].Name}, {idxBlobHeap, &rows[i].Signature}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[Field].Content = rows
	return n, nil
}

func parseMethodPtrTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(MethodPtr))
	rows := make([]MethodPtrTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readCodedIndex(idxMethodDefOnly, off, &rows[i].Method)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[MethodPtr].Content = rows
	return n, nil
}

func parseMethodDefTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(MethodDef))
	rows := make([]MethodDefTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].RVA, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		if rows[i].ImplFlags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		if rows[i].Flags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxStringHeap, &rows[i].Name},
			{idxBlobHeap, &rows[i].Signature},
			{idxParam, &rows[i].ParamList},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[MethodDef].Content = rows
	return n, nil
}

func parseParamPtrTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(ParamPtr))
	rows := make([]ParamPtrTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readCodedIndex(idxParam, off, &rows[i].Param)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[ParamPtr].Content = rows
	return n, nil
}

func parseParamTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Param))
	rows := make([]ParamTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Flags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		if rows[i].Sequence, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		c, err := pe.readString(off, &rows[i].Name)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[Param].Content = rows
	return n, nil
}

func parseInterfaceImplTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(InterfaceImpl))
	rows := make([]InterfaceImplTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxTypeDefOnly, &rows[i].Class}, {idxTypeDefOrRef, &rows[i].Interface}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[InterfaceImpl].Content = rows
	return n, nil
}

func parseMemberRefTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(MemberRef))
	rows := make([]MemberRefTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxMemberRefParent, &rows[i].Class},
			{idxStringHeap, &rows[i].Name},
			{idxBlobHeap, &rows[i].Signature},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[MemberRef].Content = rows
	return n, nil
}

func parseConstantTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Constant))
	rows := make([]ConstantTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Type, err = pe.ReadUint8(off); err != nil {
			return n, err
		}
		off++
		n++
		if rows[i].Padding, err = pe.ReadUint8(off); err != nil {
			return n, err
		}
		off++
		n++
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxHasConstant, &rows[i].Parent}, {idxBlobHeap, &rows[i].Value}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[Constant].Content = rows
	return n, nil
}

func parseCustomAttributeTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(CustomAttribute))
	rows := make([]CustomAttributeTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxHasCustomAttributes, &rows[i].Parent},
			{idxCustomAttributeType, &rows[i].Type},
			{idxBlobHeap, &rows[i].Value},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[CustomAttribute].Content = rows
	return n, nil
}

func parseFieldMarshalTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(FieldMarshal))
	rows := make([]FieldMarshalTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxHasFieldMarshall, &rows[i].Parent}, {idxBlobHeap, &rows[i].NativeType}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[FieldMarshal].Content = rows
	return n, nil
}

func parseDeclSecurityTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(DeclSecurity))
	rows := make([]DeclSecurityTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Action, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxHasDeclSecurity, &rows[i].Parent}, {idxBlobHeap, &rows[i].PermissionSet}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[DeclSecurity].Content = rows
	return n, nil
}

func parseClassLayoutTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(ClassLayout))
	rows := make([]ClassLayoutTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].PackingSize, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		if rows[i].ClassSize, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		c, err := pe.readCodedIndex(idxTypeDefOnly, off, &rows[i].Parent)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[ClassLayout].Content = rows
	return n, nil
}

func parseFieldLayoutTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(FieldLayout))
	rows := make([]FieldLayoutTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Offset, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		c, err := pe.readCodedIndex(idxField, off, &rows[i].Field)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[FieldLayout].Content = rows
	return n, nil
}

func parseStandAloneSigTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(StandAloneSig))
	rows := make([]StandAloneSigTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readBlob(off, &rows[i].Signature)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[StandAloneSig].Content = rows
	return n, nil
}

func parseEventMapTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(EventMap))
	rows := make([]EventMapTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxTypeDefOnly, &rows[i].Parent}, {idxEvent, &rows[i].EventList}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[EventMap].Content = rows
	return n, nil
}

func fixupEventMap(pe *File) {
	rows, ok := pe.CLR.MetaData.Tables[EventMap].Content.([]EventMapTableRow)
	if !ok {
		return
	}
	eventCount := pe.rowCount(Event)
	for i := range rows {
		end := eventCount + 1
		if i+1 < len(rows) {
			end = rows[i+1].EventList
		}
		rows[i].Events = rangeList(rows[i].EventList, end)
	}
	pe.CLR.MetaData.Tables[EventMap].Content = rows
}

func parseEventPtrTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(EventPtr))
	rows := make([]EventPtrTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readCodedIndex(idxEvent, off, &rows[i].Event)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[EventPtr].Content = rows
	return n, nil
}

func parseEventTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Event))
	rows := make([]EventTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].EventFlags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxStringHeap, &rows[i].Name}, {idxTypeDefOrRef, &rows[i].EventType}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[Event].Content = rows
	return n, nil
}

func parsePropertyMapTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(PropertyMap))
	rows := make([]PropertyMapTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxTypeDefOnly, &rows[i].Parent}, {idxPropertyOnly, &rows[i].PropertyList}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[PropertyMap].Content = rows
	return n, nil
}

func fixupPropertyMap(pe *File) {
	rows, ok := pe.CLR.MetaData.Tables[PropertyMap].Content.([]PropertyMapTableRow)
	if !ok {
		return
	}
	propCount := pe.rowCount(Property)
	for i := range rows {
		end := propCount + 1
		if i+1 < len(rows) {
			end = rows[i+1].PropertyList
		}
		rows[i].Properties = rangeList(rows[i].PropertyList, end)
	}
	pe.CLR.MetaData.Tables[PropertyMap].Content = rows
}

func parsePropertyPtrTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(PropertyPtr))
	rows := make([]PropertyPtrTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readCodedIndex(idxPropertyOnly, off, &rows[i].Property)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[PropertyPtr].Content = rows
	return n, nil
}

func parsePropertyTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Property))
	rows := make([]PropertyTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Flags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxStringHeap, &rows[i].Name}, {idxBlobHeap, &rows[i].Type}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[Property].Content = rows
	return n, nil
}

func parseMethodSemanticsTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(MethodSemantics))
	rows := make([]MethodSemanticsTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Semantics, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxMethodDefOnly, &rows[i].Method}, {idxHasSemantics, &rows[i].Association}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[MethodSemantics].Content = rows
	return n, nil
}

func parseMethodImplTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(MethodImpl))
	rows := make([]MethodImplTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxTypeDefOnly, &rows[i].Class},
			{idxMethodDefOrRef, &rows[i].MethodBody},
			{idxMethodDefOrRef, &rows[i].MethodDeclaration},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[MethodImpl].Content = rows
	return n, nil
}

func parseModuleRefTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(ModuleRef))
	rows := make([]ModuleRefTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readString(off, &rows[i].Name)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[ModuleRef].Content = rows
	return n, nil
}

func parseTypeSpecTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(TypeSpec))
	rows := make([]TypeSpecTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		c, err := pe.readBlob(off, &rows[i].Signature)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[TypeSpec].Content = rows
	return n, nil
}

func parseImplMapTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(ImplMap))
	rows := make([]ImplMapTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].MappingFlags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxMemberForwarded, &rows[i].MemberForwarded},
			{idxStringHeap, &rows[i].ImportName},
			{idxModuleRefOnly, &rows[i].ImportScope},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[ImplMap].Content = rows
	return n, nil
}

func parseFieldRVATable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(FieldRVA))
	rows := make([]FieldRVATableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].RVA, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		c, err := pe.readCodedIndex(idxField, off, &rows[i].Field)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[FieldRVA].Content = rows
	return n, nil
}

func parseAssemblyTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(Assembly))
	rows := make([]AssemblyTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].HashAlgId, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		for _, f := range []*uint16{&rows[i].MajorVersion, &rows[i].MinorVersion, &rows[i].BuildNumber, &rows[i].RevisionNumber} {
			if *f, err = pe.ReadUint16(off); err != nil {
				return n, err
			}
			off += 2
			n += 2
		}
		if rows[i].Flags, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxBlobHeap, &rows[i].PublicKey}, {idxStringHeap, &rows[i].Name}, {idxStringHeap, &rows[i].Culture}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[Assembly].Content = rows
	return n, nil
}

func parseAssemblyProcessorTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(AssemblyProcessor))
	rows := make([]AssemblyProcessorTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Processor, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
	}
	pe.CLR.MetaData.Tables[AssemblyProcessor].Content = rows
	return n, nil
}

func parseAssemblyOSTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(AssemblyOS))
	rows := make([]AssemblyOSTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		for _, f := range []*uint32{&rows[i].OSPlatformID, &rows[i].OSMajorVersion, &rows[i].OSMinorVersion} {
			if *f, err = pe.ReadUint32(off); err != nil {
				return n, err
			}
			off += 4
			n += 4
		}
	}
	pe.CLR.MetaData.Tables[AssemblyOS].Content = rows
	return n, nil
}

func parseAssemblyRefTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(AssemblyRef))
	rows := make([]AssemblyRefTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		for _, f := range []*uint16{&rows[i].MajorVersion, &rows[i].MinorVersion, &rows[i].BuildNumber, &rows[i].RevisionNumber} {
			if *f, err = pe.ReadUint16(off); err != nil {
				return n, err
			}
			off += 2
			n += 2
		}
		if rows[i].Flags, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxBlobHeap, &rows[i].PublicKeyOrToken},
			{idxStringHeap, &rows[i].Name},
			{idxStringHeap, &rows[i].Culture},
			{idxBlobHeap, &rows[i].HashValue},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[AssemblyRef].Content = rows
	return n, nil
}

func parseAssemblyRefProcessorTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(AssemblyRefProcessor))
	rows := make([]AssemblyRefProcessorTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Processor, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		c, err := pe.readCodedIndex(codedIndex{tables: []int{AssemblyRef}}, off, &rows[i].AssemblyRef)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[AssemblyRefProcessor].Content = rows
	return n, nil
}

func parseAssemblyRefOSTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(AssemblyRefOS))
	rows := make([]AssemblyRefOSTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		for _, f := range []*uint32{&rows[i].OSPlatformID, &rows[i].OSMajorVersion, &rows[i].OSMinorVersion} {
			if *f, err = pe.ReadUint32(off); err != nil {
				return n, err
			}
			off += 4
			n += 4
		}
		c, err := pe.readCodedIndex(codedIndex{tables: []int{AssemblyRef}}, off, &rows[i].AssemblyRef)
		if err != nil {
			return n, err
		}
		off += c
		n += c
	}
	pe.CLR.MetaData.Tables[AssemblyRefOS].Content = rows
	return n, nil
}

func parseFileTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(FileMD))
	rows := make([]FileTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Flags, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxStringHeap, &rows[i].Name}, {idxBlobHeap, &rows[i].HashValue}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[FileMD].Content = rows
	return n, nil
}

func parseExportedTypeTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(ExportedType))
	rows := make([]ExportedTypeTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Flags, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		if rows[i].TypeDefId, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{
			{idxStringHeap, &rows[i].TypeName},
			{idxStringHeap, &rows[i].TypeNamespace},
			{idxImplementation, &rows[i].Implementation},
		} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[ExportedType].Content = rows
	return n, nil
}

func parseManifestResourceTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(ManifestResource))
	rows := make([]ManifestResourceTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Offset, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		if rows[i].Flags, err = pe.ReadUint32(off); err != nil {
			return n, err
		}
		off += 4
		n += 4
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxStringHeap, &rows[i].Name}, {idxImplementation, &rows[i].Implementation}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[ManifestResource].Content = rows
	return n, nil
}

func parseNestedClassTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(NestedClass))
	rows := make([]NestedClassTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxTypeDefOnly, &rows[i].NestedClass}, {idxTypeDefOnly, &rows[i].EnclosingClass}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[NestedClass].Content = rows
	return n, nil
}

func parseGenericParamTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(GenericParam))
	rows := make([]GenericParamTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		var err error
		if rows[i].Number, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		if rows[i].Flags, err = pe.ReadUint16(off); err != nil {
			return n, err
		}
		off += 2
		n += 2
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxTypeOrMethodDef, &rows[i].Owner}, {idxStringHeap, &rows[i].Name}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[GenericParam].Content = rows
	return n, nil
}

func parseMethodSpecTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(MethodSpec))
	rows := make([]MethodSpecTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxMethodDefOrRef, &rows[i].Method}, {idxBlobHeap, &rows[i].Instantiation}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[MethodSpec].Content = rows
	return n, nil
}

func parseGenericParamConstraintTable(pe *File, off uint32) (uint32, error) {
	count := int(pe.rowCount(GenericParamConstraint))
	rows := make([]GenericParamConstraintTableRow, count)
	var n uint32
	for i := 0; i < count; i++ {
		for _, s := range []struct {
			c   codedIndex
			out *uint32
		}{{idxGenericParamOnly, &rows[i].Owner}, {idxTypeDefOrRef, &rows[i].Constraint}} {
			c, err := pe.readCodedIndex(s.c, off, s.out)
			if err != nil {
				return n, err
			}
			off += c
			n += c
		}
	}
	pe.CLR.MetaData.Tables[GenericParamConstraint].Content = rows
	return n, nil
}
