// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/saferwall/dnpe/log"
)

// A File represents an open PE file carrying an embedded CLR image.
type File struct {
	DOSHeader ImageDOSHeader `json:"dos_header,omitempty"`
	NtHeader  ImageNtHeader  `json:"nt_header,omitempty"`
	Sections  []Section      `json:"sections,omitempty"`
	CLR       *ClrData       `json:"clr,omitempty"`
	Anomalies []string       `json:"anomalies,omitempty"`
	Header    []byte
	data      mmap.MMap
	FileInfo
	size          uint32
	OverlayOffset int64
	f             *os.File
	opts          *Options
	logger        *log.Helper
}

// Options for Parsing.
type Options struct {
	// Parse only the DOS, NT and section headers and skip the CLR data
	// directory (no CLR header, tables or method bodies), by default (false).
	Fast bool

	// Includes section entropy, by default (false).
	SectionEntropy bool

	// A custom logger.
	Logger log.Logger
}

// New instantiates a file instance with options given a file name.
func New(name string, opts *Options) (*File, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	var logger log.Logger
	if file.opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
		file.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		file.logger = log.NewHelper(file.opts.Logger)
	}

	file.data = data
	file.size = uint32(len(file.data))
	file.f = f
	return &file, nil
}

// NewBytes instantiates a file instance with options given a memory buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	var logger log.Logger
	if file.opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
		file.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		file.logger = log.NewHelper(file.opts.Logger)
	}

	file.data = data
	file.size = uint32(len(file.data))
	return &file, nil
}

// Close closes the File.
func (pe *File) Close() error {
	if pe.data != nil {
		_ = pe.data.Unmap()
	}

	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

// Parse performs the file parsing for a PE binary carrying a CLR header,
// stopping once the embedded metadata and method bodies have been decoded.
func (pe *File) Parse() error {

	// check for the smallest PE size.
	if len(pe.data) < TinyPESize {
		return ErrInvalidPESize
	}

	// Parse the DOS header.
	err := pe.ParseDOSHeader()
	if err != nil {
		return err
	}

	// Parse the NT header.
	err = pe.ParseNTHeader()
	if err != nil {
		return err
	}

	// Parse the Section Header.
	err = pe.ParseSectionHeader()
	if err != nil {
		return err
	}

	// In fast mode, do not parse the CLR data directory.
	if pe.opts.Fast {
		return nil
	}

	// Parse the Data Directory entries, which locates and decodes the CLR
	// header, metadata root, table stream and method bodies.
	return pe.ParseDataDirectories()
}

// String stringify the data directory entry.
func (entry ImageDirectoryEntry) String() string {
	dataDirMap := map[ImageDirectoryEntry]string{
		ImageDirectoryEntryCLR:      "CLR",
		ImageDirectoryEntryReserved: "Reserved",
	}

	return dataDirMap[entry]
}

// ParseDataDirectories parses the data directories. The DataDirectory is an
// array of 16 structures; only the CLR runtime header entry is acted upon,
// everything else in the directory is left untouched.
func (pe *File) ParseDataDirectories() error {

	foundErr := false
	oh32 := ImageOptionalHeader32{}
	oh64 := ImageOptionalHeader64{}

	switch pe.Is64 {
	case true:
		oh64 = pe.NtHeader.OptionalHeader.(ImageOptionalHeader64)
	case false:
		oh32 = pe.NtHeader.OptionalHeader.(ImageOptionalHeader32)
	}

	// Maps data directory index to function which parses that directory.
	funcMaps := map[ImageDirectoryEntry](func(uint32, uint32) error){
		ImageDirectoryEntryCLR: pe.parseCLRHeaderDirectory,
	}

	for _, entryIndex := range []ImageDirectoryEntry{ImageDirectoryEntryCLR, ImageDirectoryEntryReserved} {

		var va, size uint32
		switch pe.Is64 {
		case true:
			dirEntry := oh64.DataDirectory[entryIndex]
			va = dirEntry.VirtualAddress
			size = dirEntry.Size
		case false:
			dirEntry := oh32.DataDirectory[entryIndex]
			va = dirEntry.VirtualAddress
			size = dirEntry.Size
		}

		// the last entry in the data directories is reserved and must be zero.
		if entryIndex == ImageDirectoryEntryReserved {
			if va != 0 || size != 0 {
				pe.Anomalies = append(pe.Anomalies, AnoReservedDataDirectoryEntry)
			}
			continue
		}

		if va == 0 {
			continue
		}

		func() {
			// keep parsing even though the directory fails.
			defer func() {
				if e := recover(); e != nil {
					pe.logger.Errorf("unhandled exception when parsing data directory %s, reason: %v",
						entryIndex.String(), e)
					foundErr = true
				}
			}()

			err := funcMaps[entryIndex](va, size)
			if err != nil {
				pe.logger.Warnf("failed to parse data directory %s, reason: %v",
					entryIndex.String(), err)
			}
		}()
	}

	if foundErr {
		return errors.New("data directory parsing failed")
	}
	return nil
}
