// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "fmt"

// SectionType is a section's sh_type field.
type SectionType uint32

// Recognised section types.
const (
	SHTNull         SectionType = 0
	SHTProgBits     SectionType = 1
	SHTSymtab       SectionType = 2
	SHTStrtab       SectionType = 3
	SHTRela         SectionType = 4
	SHTHash         SectionType = 5
	SHTDynamic      SectionType = 6
	SHTNote         SectionType = 7
	SHTNobits       SectionType = 8
	SHTRel          SectionType = 9
	SHTShlib        SectionType = 10
	SHTDynsym       SectionType = 11
	SHTInitArray    SectionType = 14
	SHTFiniArray    SectionType = 15
	SHTPreinitArray SectionType = 16
	SHTGroup        SectionType = 17
	SHTSymtabShndx  SectionType = 18
	SHTGNUHash      SectionType = 0x6ffffff6
	SHTGNUVerdef    SectionType = 0x6ffffffd
	SHTGNUVerneed   SectionType = 0x6ffffffe
	SHTGNUVersym    SectionType = 0x6fffffff
)

var sectionTypeNames = map[SectionType]string{
	SHTNull:         "SHT_NULL",
	SHTProgBits:     "SHT_PROGBITS",
	SHTSymtab:       "SHT_SYMTAB",
	SHTStrtab:       "SHT_STRTAB",
	SHTRela:         "SHT_RELA",
	SHTHash:         "SHT_HASH",
	SHTDynamic:      "SHT_DYNAMIC",
	SHTNote:         "SHT_NOTE",
	SHTNobits:       "SHT_NOBITS",
	SHTRel:          "SHT_REL",
	SHTShlib:        "SHT_SHLIB",
	SHTDynsym:       "SHT_DYNSYM",
	SHTInitArray:    "SHT_INIT_ARRAY",
	SHTFiniArray:    "SHT_FINI_ARRAY",
	SHTPreinitArray: "SHT_PREINIT_ARRAY",
	SHTGroup:        "SHT_GROUP",
	SHTSymtabShndx:  "SHT_SYMTAB_SHNDX",
	SHTGNUHash:      "SHT_GNU_HASH",
	SHTGNUVerdef:    "SHT_GNU_VERDEF",
	SHTGNUVerneed:   "SHT_GNU_VERNEED",
	SHTGNUVersym:    "SHT_GNU_VERSYM",
}

func (t SectionType) String() string {
	if n, ok := sectionTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("SHT_UNKNOWN(%d)", uint32(t))
}

// SectionFlags are a section's sh_flags bits.
type SectionFlags uint64

// Recognised section flags.
const (
	SHFWrite      SectionFlags = 0x1
	SHFAlloc      SectionFlags = 0x2
	SHFExecInstr  SectionFlags = 0x4
	SHFMerge      SectionFlags = 0x10
	SHFStrings    SectionFlags = 0x20
	SHFInfoLink   SectionFlags = 0x40
	SHFLinkOrder  SectionFlags = 0x80
	SHFTLS        SectionFlags = 0x400
	SHFCompressed SectionFlags = 0x800
)

func (f SectionFlags) String() string {
	var s string
	add := func(bit SectionFlags, c byte) {
		if f&bit != 0 {
			s += string(c)
		}
	}
	add(SHFWrite, 'W')
	add(SHFAlloc, 'A')
	add(SHFExecInstr, 'X')
	add(SHFMerge, 'M')
	add(SHFStrings, 'S')
	add(SHFInfoLink, 'I')
	add(SHFLinkOrder, 'L')
	add(SHFTLS, 'T')
	add(SHFCompressed, 'C')
	return s
}

// SectionHeader is one projected section header table entry (spec §4.9).
// NameOff is the raw sh_name offset; resolving it into a string requires
// the section header string table, which this type does not carry (a
// section cannot resolve its own name without the one designated by the
// file header's SectHdrStrNdx).
type SectionHeader struct {
	NameOff   uint32
	Type      SectionType
	Flags     SectionFlags
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// Sectiontab is a borrowed view over the section header table.
type Sectiontab struct {
	layout Layout
	data   []byte
}

// NewSectiontab wraps buf as a section header table view.
func NewSectiontab(layout Layout, buf []byte) (Sectiontab, error) {
	stride := layout.SectionHdrEntSize()
	if len(buf)%stride != 0 {
		return Sectiontab{}, &BadSize{Buffer: len(buf), Stride: stride}
	}
	return Sectiontab{layout: layout, data: buf}, nil
}

// NumSections returns the number of entries in the table.
func (t Sectiontab) NumSections() int { return len(t.data) / t.layout.SectionHdrEntSize() }

// Header projects entry i.
func (t Sectiontab) Header(i int) (SectionHeader, error) {
	if i < 0 || i >= t.NumSections() {
		return SectionHeader{}, &BadIdx{Index: i}
	}
	stride := t.layout.SectionHdrEntSize()
	e := t.data[i*stride : (i+1)*stride]
	o := t.layout.Order()

	var h SectionHeader
	h.NameOff = o.Uint32(e[0:4])
	h.Type = SectionType(o.Uint32(e[4:8]))

	if t.layout.Class == Class64 {
		h.Flags = SectionFlags(o.Uint64(e[8:16]))
		h.Addr = o.Uint64(e[16:24])
		h.Offset = o.Uint64(e[24:32])
		h.Size = o.Uint64(e[32:40])
		h.Link = o.Uint32(e[40:44])
		h.Info = o.Uint32(e[44:48])
		h.AddrAlign = o.Uint64(e[48:56])
		h.EntSize = o.Uint64(e[56:64])
	} else {
		h.Flags = SectionFlags(o.Uint32(e[8:12]))
		h.Addr = uint64(o.Uint32(e[12:16]))
		h.Offset = uint64(o.Uint32(e[16:20]))
		h.Size = uint64(o.Uint32(e[20:24]))
		h.Link = o.Uint32(e[24:28])
		h.Info = o.Uint32(e[28:32])
		h.AddrAlign = uint64(o.Uint32(e[32:36]))
		h.EntSize = uint64(o.Uint32(e[36:40]))
	}
	return h, nil
}

// Headers projects every entry in the table.
func (t Sectiontab) Headers() ([]SectionHeader, error) {
	out := make([]SectionHeader, 0, t.NumSections())
	for i := 0; i < t.NumSections(); i++ {
		h, err := t.Header(i)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// Data returns the slice of file that a SHT_PROGBITS-like section
// occupies. It returns ErrOutOfBounds if the header's offset/size would
// run past the end of file. A SHT_NOBITS section occupies no file space;
// callers should check Type before calling Data.
func (h SectionHeader) Data(file []byte) ([]byte, error) {
	if h.Type == SHTNobits {
		return nil, nil
	}
	end := h.Offset + h.Size
	if end < h.Offset || end > uint64(len(file)) {
		return nil, ErrOutOfBounds
	}
	return file[h.Offset:end], nil
}

// Contains reports whether the virtual address addr falls within this
// section's mapped address range.
func (h SectionHeader) Contains(addr uint64) bool {
	if h.Flags&SHFAlloc == 0 {
		return false
	}
	return addr >= h.Addr && addr < h.Addr+h.Size
}
