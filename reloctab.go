// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

// RelData is the projected, class-independent form of one relocation
// entry (spec §4.6), whether it came from an implicit-addend (Rel) or
// explicit-addend (Rela) table. Addend is 0 for entries read from a Rel
// table.
type RelData struct {
	Offset uint64
	Sym    uint32
	Type   uint32
	Addend int64
}

// splitInfo decodes r_info into its symbol-index and type fields, whose
// split point differs by class: the top 24 bits vs. bottom 8 for Class32,
// the top 32 vs. bottom 32 for Class64.
func splitInfo(class Class, info uint64) (sym uint32, typ uint32) {
	if class == Class64 {
		return uint32(info >> 32), uint32(info)
	}
	return uint32(info >> 8), uint32(info & 0xff)
}

func joinInfo(class Class, sym, typ uint32) uint64 {
	if class == Class64 {
		return uint64(sym)<<32 | uint64(typ)
	}
	return uint64(sym)<<8 | uint64(typ&0xff)
}

// Reltab is a borrowed view over a SHT_REL section: implicit-addend
// relocation entries.
type Reltab struct {
	layout Layout
	data   []byte
}

// NewReltab wraps buf as a Rel table view.
func NewReltab(layout Layout, buf []byte) (Reltab, error) {
	stride := layout.RelEntSize()
	if len(buf)%stride != 0 {
		return Reltab{}, &BadSize{Buffer: len(buf), Stride: stride}
	}
	return Reltab{layout: layout, data: buf}, nil
}

// NumRelocs returns the number of entries.
func (t Reltab) NumRelocs() int { return len(t.data) / t.layout.RelEntSize() }

// Rel projects entry i. Its Addend field is always 0.
func (t Reltab) Rel(i int) (RelData, error) {
	if i < 0 || i >= t.NumRelocs() {
		return RelData{}, &BadIdx{Index: i}
	}
	stride := t.layout.RelEntSize()
	e := t.data[i*stride : (i+1)*stride]

	offset := t.layout.ReadAddr(e[0:t.layout.AddrSize()])
	var info uint64
	if t.layout.Class == Class64 {
		info = t.layout.Order().Uint64(e[8:16])
	} else {
		info = uint64(t.layout.Order().Uint32(e[4:8]))
	}
	sym, typ := splitInfo(t.layout.Class, info)
	return RelData{Offset: offset, Sym: sym, Type: typ}, nil
}

// EncodeRel serialises rel (whose Addend must be 0) as one Rel entry.
func EncodeRel(layout Layout, rel RelData) []byte {
	stride := layout.RelEntSize()
	buf := make([]byte, stride)
	layout.WriteAddr(buf[0:layout.AddrSize()], rel.Offset)
	info := joinInfo(layout.Class, rel.Sym, rel.Type)
	if layout.Class == Class64 {
		layout.Order().PutUint64(buf[8:16], info)
	} else {
		layout.Order().PutUint32(buf[4:8], uint32(info))
	}
	return buf
}

// Relatab is a borrowed view over a SHT_RELA section: explicit-addend
// relocation entries.
type Relatab struct {
	layout Layout
	data   []byte
}

// NewRelatab wraps buf as a Rela table view.
func NewRelatab(layout Layout, buf []byte) (Relatab, error) {
	stride := layout.RelaEntSize()
	if len(buf)%stride != 0 {
		return Relatab{}, &BadSize{Buffer: len(buf), Stride: stride}
	}
	return Relatab{layout: layout, data: buf}, nil
}

// NumRelocs returns the number of entries.
func (t Relatab) NumRelocs() int { return len(t.data) / t.layout.RelaEntSize() }

// Rela projects entry i.
func (t Relatab) Rela(i int) (RelData, error) {
	if i < 0 || i >= t.NumRelocs() {
		return RelData{}, &BadIdx{Index: i}
	}
	stride := t.layout.RelaEntSize()
	e := t.data[i*stride : (i+1)*stride]
	addrSize := t.layout.AddrSize()

	offset := t.layout.ReadAddr(e[0:addrSize])
	var info uint64
	if t.layout.Class == Class64 {
		info = t.layout.Order().Uint64(e[8:16])
	} else {
		info = uint64(t.layout.Order().Uint32(e[4:8]))
	}
	sym, typ := splitInfo(t.layout.Class, info)
	addend := t.layout.ReadAddend(e[2*addrSize : 3*addrSize])
	return RelData{Offset: offset, Sym: sym, Type: typ, Addend: addend}, nil
}

// ResolveSymAddr resolves the absolute address a relocation's referenced
// symbol contributes to its formula (spec §4.7's "sym_value"/"base" pair):
// if the symbol's section index is Absolute, the result is
// imageBase+sym.Value; if it is an ordinary section index i, the result is
// imageBase+sections[i].Addr+sym.Value. Any other section-index kind
// (Undef, Common, ArchSpecific, OSSpecific, Escape) cannot be resolved to
// an address and fails with BadSymBase.
func ResolveSymAddr(sym SymData, sections Sectiontab, imageBase uint64) (uint64, error) {
	switch sym.Shndx.Kind {
	case SectionIndexAbsolute:
		return imageBase + sym.Value, nil
	case SectionIndexNormal:
		idx := int(sym.Shndx.Value)
		if idx < 0 || idx >= sections.NumSections() {
			return 0, &BadIdx{Index: idx}
		}
		h, err := sections.Header(idx)
		if err != nil {
			return 0, err
		}
		return imageBase + h.Addr + sym.Value, nil
	default:
		return 0, &BadSymBase{Base: sym.Shndx}
	}
}

// EncodeRela serialises rel as one Rela entry.
func EncodeRela(layout Layout, rel RelData) []byte {
	stride := layout.RelaEntSize()
	buf := make([]byte, stride)
	addrSize := layout.AddrSize()
	layout.WriteAddr(buf[0:addrSize], rel.Offset)
	info := joinInfo(layout.Class, rel.Sym, rel.Type)
	if layout.Class == Class64 {
		layout.Order().PutUint64(buf[8:16], info)
	} else {
		layout.Order().PutUint32(buf[4:8], uint32(info))
	}
	layout.WriteAddend(buf[2*addrSize:3*addrSize], rel.Addend)
	return buf
}
