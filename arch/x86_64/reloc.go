// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package x86_64 implements the AMD64 relocation kinds and their
// application formulas (spec §4.7), including the thread-local-storage
// kinds unique to the 64-bit ABI.
package x86_64

import (
	"encoding/binary"
	"fmt"

	"github.com/saferwall/elf"
)

// Kind is an x86-64 relocation type, r_info's type field in a
// R_X86_64_* entry.
type Kind uint32

// Recognised x86-64 relocation kinds.
const (
	None         Kind = 0
	Dir64        Kind = 1
	PC32         Kind = 2
	Got32        Kind = 3
	Plt32        Kind = 4
	Copy         Kind = 5
	GlobDat      Kind = 6
	JumpSlot     Kind = 7
	Relative     Kind = 8
	GotPCRel     Kind = 9
	Dir32        Kind = 10
	Dir32S       Kind = 11
	Dir16        Kind = 12
	PC16         Kind = 13
	Dir8         Kind = 14
	PC8          Kind = 15
	DTPMod64     Kind = 16
	DTPOff64     Kind = 17
	TPOff64      Kind = 18
	TLSGD        Kind = 19
	TLSLD        Kind = 20
	DTPOff32     Kind = 21
	GotTPOff     Kind = 22
	TPOff32      Kind = 23
	PC64         Kind = 24
	GotOff64     Kind = 25
	GotPC32      Kind = 26
	Size32       Kind = 32
	Size64       Kind = 33
	IRelative    Kind = 37
)

var names = map[Kind]string{
	None:      "R_X86_64_NONE",
	Dir64:     "R_X86_64_64",
	PC32:      "R_X86_64_PC32",
	Got32:     "R_X86_64_GOT32",
	Plt32:     "R_X86_64_PLT32",
	Copy:      "R_X86_64_COPY",
	GlobDat:   "R_X86_64_GLOB_DAT",
	JumpSlot:  "R_X86_64_JUMP_SLOT",
	Relative:  "R_X86_64_RELATIVE",
	GotPCRel:  "R_X86_64_GOTPCREL",
	Dir32:     "R_X86_64_32",
	Dir32S:    "R_X86_64_32S",
	Dir16:     "R_X86_64_16",
	PC16:      "R_X86_64_PC16",
	Dir8:      "R_X86_64_8",
	PC8:       "R_X86_64_PC8",
	DTPMod64:  "R_X86_64_DTPMOD64",
	DTPOff64:  "R_X86_64_DTPOFF64",
	TPOff64:   "R_X86_64_TPOFF64",
	TLSGD:     "R_X86_64_TLSGD",
	TLSLD:     "R_X86_64_TLSLD",
	DTPOff32:  "R_X86_64_DTPOFF32",
	GotTPOff:  "R_X86_64_GOTTPOFF",
	TPOff32:   "R_X86_64_TPOFF32",
	PC64:      "R_X86_64_PC64",
	GotOff64:  "R_X86_64_GOTOFF64",
	GotPC32:   "R_X86_64_GOTPC32",
	Size32:    "R_X86_64_SIZE32",
	Size64:    "R_X86_64_SIZE64",
	IRelative: "R_X86_64_IRELATIVE",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("R_X86_64_UNKNOWN(%d)", uint32(k))
}

// Width returns the size in bytes of the field a relocation of this kind
// writes.
func (k Kind) Width() int {
	switch k {
	case Dir16, PC16:
		return 2
	case Dir8, PC8:
		return 1
	case Dir64, Relative, GlobDat, JumpSlot, GotPCRel, DTPMod64, DTPOff64,
		TPOff64, PC64, GotOff64, Size64, IRelative:
		return 8
	default:
		return 4
	}
}

// IsTLS reports whether k is one of the thread-local-storage kinds that
// this codec refuses to apply (see elf.ErrTLSRelocation).
func (k Kind) IsTLS() bool {
	switch k {
	case DTPMod64, DTPOff64, TPOff64, TLSGD, TLSLD, DTPOff32, GotTPOff, TPOff32:
		return true
	default:
		return false
	}
}

// FromRela converts a generic Rela-table entry into a typed Reloc,
// rejecting kind values this architecture does not recognise. x86-64
// relocations are always explicit-addend; a FromRel entry point does not
// exist for this architecture because the psABI never defines a R_X86_64
// Rel table.
func FromRela(rel elf.RelData) (Reloc, error) {
	k := Kind(rel.Type)
	if _, ok := names[k]; !ok {
		return Reloc{}, &elf.BadTag{Value: rel.Type}
	}
	return Reloc{Offset: rel.Offset, Sym: rel.Sym, Kind: k, Addend: rel.Addend}, nil
}

// Reloc is one x86-64 relocation, already classified by Kind.
type Reloc struct {
	Offset uint64
	Sym    uint32
	Kind   Kind
	Addend int64
}

// Params bundles the addresses Apply needs beyond the relocation itself
// and the symbol it targets.
type Params struct {
	Base uint64  // B: load bias applied to this object
	GOT  *uint64 // address of the global offset table, if one exists
	PLT  *uint64 // address of the procedure linkage table, if one exists
}

// Apply computes the value a relocation of this kind should write at its
// target field. symSize is the referenced symbol's st_size, used only by
// the Size32/Size64 kinds. The returned value is widened to int64; callers
// truncate to Kind.Width() bytes with the file's own Layout, after
// checking Apply did not return a *elf.Truncated error.
func Apply(r Reloc, symVal uint64, symSize uint64, place uint64, p Params) (int64, error) {
	s := int64(symVal)
	a := r.Addend
	pc := int64(place)
	b := int64(p.Base)

	var v int64
	switch r.Kind {
	case None:
		return 0, nil
	case Dir64, Dir32, Dir32S, Dir16, Dir8:
		v = s + a
	case PC32, PC16, PC8, PC64:
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
	case GlobDat, JumpSlot:
		v = s
	case Relative, IRelative:
		v = b + a
	case GotPCRel:
		if p.GOT == nil {
			return 0, elf.ErrNoGOT
		}
		v = int64(*p.GOT) + a - pc
	case GotOff64:
		if p.GOT == nil {
			return 0, elf.ErrNoGOT
		}
		v = s + a - int64(*p.GOT)
	case GotPC32:
		if p.GOT == nil {
			return 0, elf.ErrNoGOT
		}
		v = int64(*p.GOT) + a - pc
	case Size32, Size64:
		v = int64(symSize) + a
	default:
		if r.Kind.IsTLS() {
			return 0, elf.ErrTLSRelocation
		}
		return 0, &elf.BadTag{Value: uint32(r.Kind)}
	}

	width := r.Kind.Width()
	if width < 8 {
		bits := uint(width * 8)
		max := int64(1)<<bits - 1
		min := -(int64(1) << (bits - 1))
		if v > max || v < min {
			return 0, &elf.Truncated{Field: r.Kind.String(), Value: v, Width: width}
		}
	}
	return v, nil
}

// writeSized writes the low width bytes of v into field using order,
// field having already been sized to width by the caller.
func writeSized(order binary.ByteOrder, field []byte, v int64, width int) {
	switch width {
	case 1:
		field[0] = byte(v)
	case 2:
		order.PutUint16(field, uint16(v))
	case 4:
		order.PutUint32(field, uint32(v))
	case 8:
		order.PutUint64(field, uint64(v))
	}
}

// ApplyRelaTable drives the §4.6 table-level apply for an x86-64 Rela
// section: for every entry it resolves the referenced symbol's address via
// elf.ResolveSymAddr, computes the relocated value, and writes it back into
// target at the entry's offset with that kind's natural width. targetBase
// is the load address of the section target holds the bytes of.
func ApplyRelaTable(order binary.ByteOrder, table elf.Relatab, target []byte, targetBase uint64, symtab elf.Symtab, strtab elf.Strtab, sections elf.Sectiontab, p Params) error {
	for i := 0; i < table.NumRelocs(); i++ {
		rd, err := table.Rela(i)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}
		r, err := FromRela(rd)
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

		place := p.Base + targetBase + r.Offset
		v, err := Apply(r, symVal, sym.Size, place, p)
		if err != nil {
			return fmt.Errorf("relocation %d: %w", i, err)
		}

		width := r.Kind.Width()
		if r.Offset+uint64(width) > uint64(len(target)) {
			return fmt.Errorf("relocation %d: %w", i, elf.ErrOutOfBounds)
		}
		writeSized(order, target[r.Offset:r.Offset+uint64(width)], v, width)
	}
	return nil
}
