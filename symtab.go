// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "fmt"

// SymBind is a symbol's binding attribute, the top nibble of st_info.
type SymBind uint8

// Known bindings.
const (
	BindLocal  SymBind = 0
	BindGlobal SymBind = 1
	BindWeak   SymBind = 2

	bindLoOS   SymBind = 10
	bindHiOS   SymBind = 12
	bindLoProc SymBind = 13
	bindHiProc SymBind = 15
)

func (b SymBind) String() string {
	switch b {
	case BindLocal:
		return "LOCAL"
	case BindGlobal:
		return "GLOBAL"
	case BindWeak:
		return "WEAK"
	default:
		return fmt.Sprintf("BIND(%d)", uint8(b))
	}
}

// SymType is a symbol's type attribute, the bottom nibble of st_info.
type SymType uint8

// Known types.
const (
	TypeNoType  SymType = 0
	TypeObject  SymType = 1
	TypeFunc    SymType = 2
	TypeSection SymType = 3
	TypeFile    SymType = 4
	TypeCommon  SymType = 5
	TypeTLS     SymType = 6

	typeLoOS   SymType = 10
	typeHiOS   SymType = 12
	typeLoProc SymType = 13
	typeHiProc SymType = 15
)

func (t SymType) String() string {
	switch t {
	case TypeNoType:
		return "NOTYPE"
	case TypeObject:
		return "OBJECT"
	case TypeFunc:
		return "FUNC"
	case TypeSection:
		return "SECTION"
	case TypeFile:
		return "FILE"
	case TypeCommon:
		return "COMMON"
	case TypeTLS:
		return "TLS"
	default:
		return fmt.Sprintf("TYPE(%d)", uint8(t))
	}
}

// decodeInfo splits a raw st_info byte into its bind and type nibbles,
// validating each against the reserved ranges (bindings 0-2 and types 0-6
// well known, 10-12 OS-specific, 13-15 processor-specific; anything else
// is malformed).
func decodeInfo(info uint8) (SymBind, SymType, error) {
	bind := SymBind(info >> 4)
	typ := SymType(info & 0xf)
	switch {
	case bind <= BindWeak, bind >= bindLoOS && bind <= bindHiProc:
	default:
		return 0, 0, &BadBind{Value: uint8(bind)}
	}
	switch {
	case typ <= TypeTLS, typ >= typeLoOS && typ <= typeHiProc:
	default:
		return 0, 0, &BadType{Value: uint8(typ)}
	}
	return bind, typ, nil
}

func encodeInfo(bind SymBind, typ SymType) uint8 {
	return uint8(bind)<<4 | uint8(typ)&0xf
}

// Reserved section-header indices, st_shndx (spec §4.4).
const (
	shnUndef     = 0x0000
	shnLoProc    = 0xff00
	shnHiProc    = 0xff1f
	shnLoOS      = 0xff20
	shnHiOS      = 0xff3f
	shnAbs       = 0xfff1
	shnCommon    = 0xfff2
	shnXindex    = 0xffff
)

// SectionIndexKind classifies the reserved ranges of a symbol's st_shndx
// field (spec §4.4).
type SectionIndexKind uint8

// Section-base kinds a symbol's st_shndx can decode to.
const (
	SectionIndexUndef SectionIndexKind = iota
	SectionIndexNormal
	SectionIndexAbsolute
	SectionIndexCommon
	SectionIndexArchSpecific
	SectionIndexOSSpecific
	SectionIndexEscape
)

// SectionIndex is the decoded form of a symbol's st_shndx: either an
// ordinary index into the section header table, or one of the reserved
// sentinel meanings.
type SectionIndex struct {
	Kind  SectionIndexKind
	Value uint16 // meaningful for Normal, ArchSpecific, OSSpecific
}

func (s SectionIndex) String() string {
	switch s.Kind {
	case SectionIndexUndef:
		return "UNDEF"
	case SectionIndexNormal:
		return fmt.Sprintf("%d", s.Value)
	case SectionIndexAbsolute:
		return "ABS"
	case SectionIndexCommon:
		return "COMMON"
	case SectionIndexArchSpecific:
		return fmt.Sprintf("PROC(%d)", s.Value)
	case SectionIndexOSSpecific:
		return fmt.Sprintf("OS(%d)", s.Value)
	case SectionIndexEscape:
		return "XINDEX"
	default:
		return "UNKNOWN"
	}
}

// DecodeSectionIndex classifies a raw st_shndx value.
func DecodeSectionIndex(shndx uint16) SectionIndex {
	switch {
	case shndx == shnUndef:
		return SectionIndex{Kind: SectionIndexUndef}
	case shndx == shnAbs:
		return SectionIndex{Kind: SectionIndexAbsolute}
	case shndx == shnCommon:
		return SectionIndex{Kind: SectionIndexCommon}
	case shndx == shnXindex:
		return SectionIndex{Kind: SectionIndexEscape}
	case shndx >= shnLoProc && shndx <= shnHiProc:
		return SectionIndex{Kind: SectionIndexArchSpecific, Value: shndx}
	case shndx >= shnLoOS && shndx <= shnHiOS:
		return SectionIndex{Kind: SectionIndexOSSpecific, Value: shndx}
	default:
		return SectionIndex{Kind: SectionIndexNormal, Value: shndx}
	}
}

// EncodeSectionIndex is the inverse of DecodeSectionIndex.
func EncodeSectionIndex(s SectionIndex) uint16 {
	switch s.Kind {
	case SectionIndexUndef:
		return shnUndef
	case SectionIndexAbsolute:
		return shnAbs
	case SectionIndexCommon:
		return shnCommon
	case SectionIndexEscape:
		return shnXindex
	default:
		return s.Value
	}
}

// SymData is the projected, class-independent form of one symbol table
// entry (spec §4.4): the raw st_name offset has already been resolved
// against a string table, and st_info has been split into Bind/Type.
type SymData struct {
	Name  string
	Bind  SymBind
	Type  SymType
	Other uint8 // visibility, low 2 bits of st_other
	Shndx SectionIndex
	Value uint64
	Size  uint64
}

// Symtab is a borrowed view over a symbol table section: a fixed-stride
// array of entries whose width is governed by a Layout.
type Symtab struct {
	layout Layout
	data   []byte
}

// NewSymtab wraps buf as a symbol table view. len(buf) must be a multiple
// of layout.SymEntSize(); buf is not required to be nonempty (an empty
// symtab is a degenerate but valid one, as spec.md Open Question (i)
// discusses in relation to hash tables).
func NewSymtab(layout Layout, buf []byte) (Symtab, error) {
	stride := layout.SymEntSize()
	if len(buf)%stride != 0 {
		return Symtab{}, &BadSize{Buffer: len(buf), Stride: stride}
	}
	return Symtab{layout: layout, data: buf}, nil
}

// NumSyms returns the number of entries in the table.
func (t Symtab) NumSyms() int { return len(t.data) / t.layout.SymEntSize() }

// rawSym is the unprojected decode of one entry: offsets into a string
// table and an unsplit info byte, before any cross-referencing.
type rawSym struct {
	nameOff uint32
	info    uint8
	other   uint8
	shndx   uint16
	value   uint64
	size    uint64
}

func (t Symtab) raw(i int) (rawSym, error) {
	if i < 0 || i >= t.NumSyms() {
		return rawSym{}, &BadIdx{Index: i}
	}
	stride := t.layout.SymEntSize()
	e := t.data[i*stride : (i+1)*stride]
	o := t.layout.Order()

	var r rawSym
	if t.layout.Class == Class64 {
		r.nameOff = o.Uint32(e[0:4])
		r.info = e[4]
		r.other = e[5]
		r.shndx = o.Uint16(e[6:8])
		r.value = o.Uint64(e[8:16])
		r.size = o.Uint64(e[16:24])
	} else {
		r.nameOff = o.Uint32(e[0:4])
		r.value = uint64(o.Uint32(e[4:8]))
		r.size = uint64(o.Uint32(e[8:12]))
		r.info = e[12]
		r.other = e[13]
		r.shndx = o.Uint16(e[14:16])
	}
	return r, nil
}

// Sym projects entry i against strtab into a SymData, resolving its name
// and splitting its bind/type nibbles.
func (t Symtab) Sym(i int, strtab Strtab) (SymData, error) {
	r, err := t.raw(i)
	if err != nil {
		return SymData{}, err
	}
	bind, typ, err := decodeInfo(r.info)
	if err != nil {
		return SymData{}, err
	}
	name, err := strtab.String(r.nameOff)
	if err != nil {
		return SymData{}, err
	}
	return SymData{
		Name:  name,
		Bind:  bind,
		Type:  typ,
		Other: r.other & 0x3,
		Shndx: DecodeSectionIndex(r.shndx),
		Value: r.value,
		Size:  r.size,
	}, nil
}

// Syms projects every entry in the table, in order. A symbol whose name
// or info byte fails to decode is reported immediately, aborting the
// remaining entries; callers who want best-effort behaviour should walk
// NumSyms themselves and tolerate per-index errors from Sym.
func (t Symtab) Syms(strtab Strtab) ([]SymData, error) {
	out := make([]SymData, 0, t.NumSyms())
	for i := 0; i < t.NumSyms(); i++ {
		s, err := t.Sym(i, strtab)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// EncodeSym encodes sym, with nameOff as its st_name, into a freshly
// allocated buffer holding exactly one symbol table entry. Callers
// building a symbol table accumulate names with a StrtabBuilder and
// append one EncodeSym result per slot.
func EncodeSym(layout Layout, nameOff uint32, sym SymData) []byte {
	stride := layout.SymEntSize()
	buf := make([]byte, stride)
	o := layout.Order()
	info := encodeInfo(sym.Bind, sym.Type)
	shndx := EncodeSectionIndex(sym.Shndx)

	if layout.Class == Class64 {
		o.PutUint32(buf[0:4], nameOff)
		buf[4] = info
		buf[5] = sym.Other & 0x3
		o.PutUint16(buf[6:8], shndx)
		o.PutUint64(buf[8:16], sym.Value)
		o.PutUint64(buf[16:24], sym.Size)
	} else {
		o.PutUint32(buf[0:4], nameOff)
		o.PutUint32(buf[4:8], uint32(sym.Value))
		o.PutUint32(buf[8:12], uint32(sym.Size))
		buf[12] = info
		buf[13] = sym.Other & 0x3
		o.PutUint16(buf[14:16], shndx)
	}
	return buf
}
