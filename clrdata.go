// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"errors"
)

// ErrMetadataSignatureNotFound is returned when the metadata root does
// not start with the expected "BSJB" signature.
var ErrMetadataSignatureNotFound = errors.New("metadata root signature (BSJB) not found")

// ErrUndefinedStream is returned when a stream directory entry names a
// stream this analyzer has no parser for.
var ErrUndefinedStream = errors.New("undefined metadata stream")

// metadataSignature is the magic "BSJB" storage signature, §II.24.2.1.
const metadataSignature = 0x424A5342

// COMImageFlagsType is the bitmask of attributes carried by the CLR
// header's Flags field, §II.25.3.3.1.
type COMImageFlagsType uint32

// COR20 header flags.
const (
	COMImageFlagsILOnly           COMImageFlagsType = 0x00000001
	COMImageFlags32BitRequired    COMImageFlagsType = 0x00000002
	COMImageFlagILLibrary         COMImageFlagsType = 0x00000004
	COMImageFlagsStrongNameSigned COMImageFlagsType = 0x00000008
	COMImageFlagsNativeEntrypoint COMImageFlagsType = 0x00000010
	COMImageFlagsTrackDebugData   COMImageFlagsType = 0x00010000
	COMImageFlags32BitPreferred   COMImageFlagsType = 0x00020000
)

// String returns the set of flag names present in flags.
func (flags COMImageFlagsType) String() []string {
	all := map[COMImageFlagsType]string{
		COMImageFlagsILOnly:           "IL Only",
		COMImageFlags32BitRequired:    "32-Bit Required",
		COMImageFlagILLibrary:         "IL Library",
		COMImageFlagsStrongNameSigned: "Strong Name Signed",
		COMImageFlagsNativeEntrypoint: "Native Entrypoint",
		COMImageFlagsTrackDebugData:   "Track Debug Data",
		COMImageFlags32BitPreferred:   "32-Bit Preferred",
	}
	var values []string
	for k, v := range all {
		if flags&k == k {
			values = append(values, v)
		}
	}
	return values
}

// ImageDataDirectory is an RVA+size pair.
type ImageDataDirectory struct {
	VirtualAddress uint32 `json:"virtual_address"`
	Size           uint32 `json:"size"`
}

// ImageCOR20Header is the CLR 2.0 runtime header, §II.25.3.3.
type ImageCOR20Header struct {
	Cb                      uint32              `json:"cb"`
	MajorRuntimeVersion     uint16              `json:"major_runtime_version"`
	MinorRuntimeVersion     uint16              `json:"minor_runtime_version"`
	MetaData                ImageDataDirectory  `json:"meta_data"`
	Flags                   COMImageFlagsType   `json:"flags"`
	EntryPointRVAorToken    uint32              `json:"entry_point_rva_or_token"`
	Resources               ImageDataDirectory  `json:"resources"`
	StrongNameSignature      ImageDataDirectory  `json:"strong_name_signature"`
	CodeManagerTable         ImageDataDirectory  `json:"code_manager_table"`
	VTableFixups             ImageDataDirectory  `json:"vtable_fixups"`
	ExportAddressTableJumps  ImageDataDirectory  `json:"export_address_table_jumps"`
	ManagedNativeHeader      ImageDataDirectory  `json:"managed_native_header"`
}

// MetadataHeader is the metadata root: storage signature, version string,
// and storage header, §II.24.2.1.
type MetadataHeader struct {
	Signature     uint32 `json:"signature"`
	MajorVersion  uint16 `json:"major_version"`
	MinorVersion  uint16 `json:"minor_version"`
	ExtraData     uint32 `json:"extra_data"`
	VersionString uint32 `json:"version_string"`
	Version       string `json:"version"`
	Flags         uint8  `json:"flags"`
	Streams       uint16 `json:"streams"`
}

// MetadataStreamHeader is one entry of the stream directory, §II.24.2.2.
type MetadataStreamHeader struct {
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Name   string `json:"name"`
}

// MetadataTableStreamHeader is the header of the `#~`/`#-` tables
// stream, §II.24.2.6.
type MetadataTableStreamHeader struct {
	Reserved     uint32 `json:"reserved"`
	MajorVersion uint8  `json:"major_version"`
	MinorVersion uint8  `json:"minor_version"`
	Heaps        uint8  `json:"heaps"`
	RID          uint8  `json:"rid"`
	MaskValid    uint64 `json:"mask_valid"`
	Sorted       uint64 `json:"sorted"`
}

// MetadataTable holds one table's decoded rows. Content is one of the
// *TableRow slice types defined in tables.go.
type MetadataTable struct {
	Name      string      `json:"name"`
	CountCols uint32      `json:"count_cols"`
	Content   interface{} `json:"content"`
}

// MetaData is everything decoded from the CLR metadata root: the stream
// directory, the four heaps, and the 45 logical tables.
type MetaData struct {
	Header                     MetadataHeader                 `json:"header"`
	StreamHeaders               []MetadataStreamHeader         `json:"stream_headers"`
	Streams                     map[string][]byte              `json:"-"`
	TablesStreamHeader          MetadataTableStreamHeader      `json:"tables_stream_header"`
	Tables                      map[int]*MetadataTable         `json:"tables"`
	TableErrors                 map[int]string                `json:"table_errors,omitempty"`
	StringStreamIndexSize       int                            `json:"-"`
	GUIDStreamIndexSize         int                            `json:"-"`
	BlobStreamIndexSize         int                            `json:"-"`
}

// ClrData is the fully parsed CLR image: the runtime header, its
// metadata, and every disassembled method body, keyed by MethodDef RID.
type ClrData struct {
	Header   ImageCOR20Header       `json:"header"`
	MetaData *MetaData              `json:"metadata"`
	Methods  map[uint32]*MethodBody `json:"methods"`

	// file backs the heap/coded-index reads behind GetUserString and
	// ResolveCodedIndex; unexported since it is plumbing, not data.
	file *File
}

// GetUserString resolves a Ldstr instruction's string-token operand (an
// Operand with Kind OperandStringToken) to its decoded value in the #US
// heap, grounded on the original implementation's user_string_heap.rs
// get_us. The token's low 24 bits are the #US heap byte offset; the high
// byte (the 0x70 string-token tag, if present) is masked off the same
// way Token.RID splits a table/row token.
func (c *ClrData) GetUserString(rid uint32) (string, error) {
	if c.file == nil || c.MetaData == nil {
		return "", ErrUserStringHeapOutOfBound
	}
	heap, ok := c.MetaData.Streams["#US"]
	if !ok {
		return "", ErrUndefinedStream
	}
	offset := Token(rid).RID()
	return c.file.GetUserStringFromData(offset, heap)
}

// ResolveCodedIndex decodes a coded-index raw value, as stored in a table
// row column such as TypeDef.Extends or CustomAttribute.Parent, into the
// table it selects and the 1-based row index within that table.
func (c *ClrData) ResolveCodedIndex(kind CodedIndexKind, value uint32) (table int, row uint32, err error) {
	if c.file == nil {
		return 0, 0, ErrCodedIndexUndefinedTable
	}
	ci, ok := codedIndexKinds[kind]
	if !ok {
		return 0, 0, ErrCodedIndexUndefinedTable
	}
	return c.file.resolveCodedIndex(ci, value)
}

// GetMetadataStreamIndexSize returns the width, in bytes, of indices into
// the heap named by bitPosition (StringStream/GUIDStream/BlobStream):
// 4 bytes if the corresponding bit of heap_offset_sizes is set, else 2.
func (pe *File) GetMetadataStreamIndexSize(bitPosition int) int {
	heaps := pe.CLR.MetaData.TablesStreamHeader.Heaps
	if IsBitSet(uint64(heaps), bitPosition) {
		return 4
	}
	return 2
}

// readFromMetadataStream reads a coded-index-shaped field whose table set
// is a single heap pseudo-table; kept for symmetry with readCodedIndex.
func (pe *File) readFromMetadataStream(c codedIndex, off uint32, out *uint32) (uint32, error) {
	return pe.readCodedIndex(c, off, out)
}

func (pe *File) parseMetadataHeader(offset uint32) (MetadataHeader, error) {
	var err error
	mh := MetadataHeader{}

	if mh.Signature, err = pe.ReadUint32(offset); err != nil {
		return mh, err
	}
	if mh.Signature != metadataSignature {
		return mh, ErrMetadataSignatureNotFound
	}
	if mh.MajorVersion, err = pe.ReadUint16(offset + 4); err != nil {
		return mh, err
	}
	if mh.MinorVersion, err = pe.ReadUint16(offset + 6); err != nil {
		return mh, err
	}
	if mh.ExtraData, err = pe.ReadUint32(offset + 8); err != nil {
		return mh, err
	}
	if mh.VersionString, err = pe.ReadUint32(offset + 12); err != nil {
		return mh, err
	}

	versionBytes, err := pe.ReadBytesAtOffset(offset+16, mh.VersionString)
	if err != nil {
		return mh, err
	}
	end := 0
	for end < len(versionBytes) && versionBytes[end] != 0 {
		end++
	}
	mh.Version = string(versionBytes[:end])

	offset += 16 + mh.VersionString
	if mh.Flags, err = pe.ReadUint8(offset); err != nil {
		return mh, err
	}
	if mh.Streams, err = pe.ReadUint16(offset + 2); err != nil {
		return mh, err
	}
	return mh, nil
}

func (pe *File) parseMetadataTableStreamHeader(off uint32) (MetadataTableStreamHeader, error) {
	hdr := MetadataTableStreamHeader{}
	size := uint32(binary.Size(hdr))
	err := pe.structUnpack(&hdr, off, size)
	return hdr, err
}

// parseCLRHeaderDirectory is invoked with the RVA and size of the CLR
// data directory entry. It locates the runtime header, the metadata
// root, every stream in the stream directory, the tables stream, and
// (via tables.go / methodbody.go) every metadata table row and managed
// method body.
func (pe *File) parseCLRHeaderDirectory(rva, size uint32) error {
	header := ImageCOR20Header{}
	offset := pe.GetOffsetFromRva(rva)
	if err := pe.structUnpack(&header, offset, size); err != nil {
		return err
	}

	pe.CLR = &ClrData{Header: header, file: pe}
	if header.MetaData.VirtualAddress == 0 || header.MetaData.Size == 0 {
		return nil
	}

	// A CLR header with a metadata directory is enough to report CLR
	// presence even if later stages fail.
	pe.HasCLR = true
	pe.CLR.MetaData = &MetaData{}

	metaOffset := pe.GetOffsetFromRva(header.MetaData.VirtualAddress)
	mh, err := pe.parseMetadataHeader(metaOffset)
	if err != nil {
		return err
	}
	pe.CLR.MetaData.Header = mh
	pe.CLR.MetaData.Streams = make(map[string][]byte)

	streamDirOffset := metaOffset + 16 + mh.VersionString + 4
	var tablesStreamRVAOffset, tablesStreamSize uint32

	for i := uint16(0); i < mh.Streams; i++ {
		sh := MetadataStreamHeader{}
		if sh.Offset, err = pe.ReadUint32(streamDirOffset); err != nil {
			return err
		}
		if sh.Size, err = pe.ReadUint32(streamDirOffset + 4); err != nil {
			return err
		}
		streamDirOffset += 8

		// Name is a NUL-terminated ASCII string padded to a 4-byte boundary.
		nameStart := streamDirOffset
		for {
			c, err := pe.ReadUint8(streamDirOffset)
			if err != nil {
				return err
			}
			streamDirOffset++
			if c == 0 {
				break
			}
		}
		consumed := streamDirOffset - nameStart
		pad := (4 - (consumed % 4)) % 4
		streamDirOffset += pad

		nameBytes, err := pe.ReadBytesAtOffset(nameStart, consumed-1)
		if err != nil {
			return err
		}
		sh.Name = string(nameBytes)

		streamRVA := header.MetaData.VirtualAddress + sh.Offset
		start := pe.GetOffsetFromRva(streamRVA)
		data, err := pe.ReadBytesAtOffset(start, sh.Size)
		if err != nil {
			return err
		}
		pe.CLR.MetaData.Streams[sh.Name] = data
		pe.CLR.MetaData.StreamHeaders = append(pe.CLR.MetaData.StreamHeaders, sh)

		if sh.Name == "#~" || sh.Name == "#-" {
			tablesStreamRVAOffset = start
			tablesStreamSize = sh.Size
		}
	}

	if tablesStreamSize == 0 {
		return nil
	}

	tsHdr, err := pe.parseMetadataTableStreamHeader(tablesStreamRVAOffset)
	if err != nil {
		return err
	}
	pe.CLR.MetaData.TablesStreamHeader = tsHdr
	pe.CLR.MetaData.StringStreamIndexSize = pe.GetMetadataStreamIndexSize(StringStream)
	pe.CLR.MetaData.GUIDStreamIndexSize = pe.GetMetadataStreamIndexSize(GUIDStream)
	pe.CLR.MetaData.BlobStreamIndexSize = pe.GetMetadataStreamIndexSize(BlobStream)

	rowCountsOffset := tablesStreamRVAOffset + uint32(binary.Size(tsHdr))
	if err := pe.parseMetadataTablesStream(rowCountsOffset); err != nil {
		return err
	}

	pe.CLR.Methods = pe.parseMethodBodies()
	return nil
}
