// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package x86 implements the IA-32 relocation kinds and their application
// formulas (spec §4.7).
package x86

import (
	"encoding/binary"
	"fmt"

	"github.com/saferwall/elf"
)

// Kind is an IA-32 relocation type, r_info's type field in a R_386_*
// entry.
type Kind uint32

// Recognised IA-32 relocation kinds.
const (
	None     Kind = 0
	Dir32    Kind = 1
	PC32     Kind = 2
	Got32    Kind = 3
	Plt32    Kind = 4
	Copy     Kind = 5
	GlobDat  Kind = 6
	JmpSlot  Kind = 7
	Relative Kind = 8
	GotOff   Kind = 9
	GotPC    Kind = 10
	TLSTPOff Kind = 14
	TLSIE    Kind = 15
	TLSGOTIE Kind = 16
	TLSLE    Kind = 17
	TLSGD    Kind = 18
	TLSLDM   Kind = 19
	Size32   Kind = 38
)

var names = map[Kind]string{
	None:     "R_386_NONE",
	Dir32:    "R_386_32",
	PC32:     "R_386_PC32",
	Got32:    "R_386_GOT32",
	Plt32:    "R_386_PLT32",
	Copy:     "R_386_COPY",
	GlobDat:  "R_386_GLOB_DAT",
	JmpSlot:  "R_386_JMP_SLOT",
	Relative: "R_386_RELATIVE",
	GotOff:   "R_386_GOTOFF",
	GotPC:    "R_386_GOTPC",
	TLSTPOff: "R_386_TLS_TPOFF",
	TLSIE:    "R_386_TLS_IE",
	TLSGOTIE: "R_386_TLS_GOTIE",
	TLSLE:    "R_386_TLS_LE",
	TLSGD:    "R_386_TLS_GD",
	TLSLDM:   "R_386_TLS_LDM",
	Size32:   "R_386_SIZE32",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("R_386_UNKNOWN(%d)", uint32(k))
}

// Width returns the size in bytes of the field a relocation of this kind
// writes. Every IA-32 relocation kind this package recognises targets a
// 4-byte field.
func (k Kind) Width() int { return 4 }

// FromRel converts a generic Rel-table entry into a typed Reloc, rejecting
// kind values this architecture does not recognise.
func FromRel(rel elf.RelData) (Reloc, error) {
	k := Kind(rel.Type)
	if _, ok := names[k]; !ok {
		return Reloc{}, &elf.BadTag{Value: rel.Type}
	}
	return Reloc{Offset: rel.Offset, Sym: rel.Sym, Kind: k, Addend: 0}, nil
}

// Reloc is one IA-32 relocation, already classified by Kind.
type Reloc struct {
	Offset uint64
	Sym    uint32
	Kind   Kind
	Addend int64
}

// Params bundles the addresses Apply needs beyond the relocation itself
// and the symbol it targets: the section's load bias, and (only for
// kinds that need them) the GOT and PLT addresses.
type Params struct {
	Base uint64  // B: load bias applied to this object
	GOT  *uint64 // address of the global offset table, if one exists
	PLT  *uint64 // address of the procedure linkage table, if one exists
}

// Apply computes the value a relocation of this kind should write at its
// target field, given the symbol's resolved address symVal, its st_size
// symSize (used only by Size32), and the address of the relocation's own
// target field place. It returns the raw 4-byte little/big-endian-agnostic
// value to store; callers write it with the file's own Layout.
func Apply(r Reloc, symVal uint64, symSize uint64, place uint64, p Params) (uint32, error) {
	s := int64(symVal)
	a := r.Addend
	pc := int64(place)
	b := int64(p.Base)

	var v int64
	switch r.Kind {
	case None:
		return 0, nil
	case Dir32:
		v = s + a
	case PC32:
		v = s + a - pc
	case Got32:
		if p.GOT == nil {
			return 0, elf.ErrNoGOT
		}
		v = int64(*p.GOT) + a
	case Plt32:
		if p.PLT == nil {
			return 0, elf.ErrNoPLT
		}
		v = int64(*p.PLT) + a - pc
	case Copy:
		return 0, elf.ErrCopyRelocation
	case GlobDat, JmpSlot:
		v = s
	case Relative:
		v = b + a
	case GotOff:
		if p.GOT == nil {
			return 0, elf.ErrNoGOT
		}
		v = s + a - int64(*p.GOT)
	case GotPC:
		if p.GOT == nil {
			return 0, elf.ErrNoGOT
		}
		v = int64(*p.GOT) + a - pc
	case TLSTPOff, TLSIE, TLSGOTIE, TLSLE, TLSGD, TLSLDM:
		return 0, elf.ErrTLSRelocation
	case Size32:
		v = int64(symSize) + a
	default:
		return 0, &elf.BadTag{Value: uint32(r.Kind)}
	}

	if v > 0xffffffff || v < -0x80000000 {
		return 0, &elf.Truncated{Field: r.Kind.String(), Value: v, Width: 4}
	}
	return uint32(v), nil
}

// ApplyRelTable drives the §4.6 table-level apply for an IA-32 Rel section:
// for every entry it resolves the referenced symbol's address via
// elf.ResolveSymAddr, reads the entry's implicit addend out of the current
// contents of target (the psABI convention for Rel, as opposed to Rela,
// tables), computes the relocated value, and writes it back into target at
// the entry's offset. targetBase is the load address of the section target
// holds the bytes of.
func ApplyRelTable(order binary.ByteOrder, table elf.Reltab, target []byte, targetBase uint64, symtab elf.Symtab, strtab elf.Strtab, sections elf.Sectiontab, p Params) error {
	for i := 0; i < table.NumRelocs(); i++ {
		rd, err := table.Rel(i)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}
		r, err := FromRel(rd)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}
		if int(r.Sym) >= symtab.NumSyms() {
			return fmt.Errorf("relocation %d: %w", i, &elf.BadSymIdx{Index: r.Sym})
		}
		sym, err := symtab.Sym(int(r.Sym), strtab)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}
		symVal, err := elf.ResolveSymAddr(sym, sections, p.Base)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}

		width := r.Kind.Width()
		if r.Offset+uint64(width) > uint64(len(target)) {
			return fmt.Errorf("relocation %d: %w", i, elf.ErrOutOfBounds)
		}
		field := target[r.Offset : r.Offset+uint64(width)]
		r.Addend = int64(int32(order.Uint32(field)))

		place := p.Base + targetBase + r.Offset
		v, err := Apply(r, symVal, sym.Size, place, p)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}
		order.PutUint32(field, v)
	}
	return nil
}
