// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package x86_64

import (
	"encoding/binary"
	"testing"

	"github.com/saferwall/elf"
)

func TestFromRelaRejectsUnknownKind(t *testing.T) {
	if _, err := FromRela(elf.RelData{Type: 9999}); err == nil {
		t.Fatal("expected error for unrecognised relocation type")
	}
}

func TestApplyDir64(t *testing.T) {
	r := Reloc{Kind: Dir64, Addend: 8}
	v, err := Apply(r, 0x1000, 0, 0, Params{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v != 0x1008 {
		t.Fatalf("Apply(Dir64) = %#x, want 0x1008", v)
	}
}

func TestApplyPC32(t *testing.T) {
	r := Reloc{Kind: PC32, Addend: -4}
	v, err := Apply(r, 0x2000, 0, 0x1000, Params{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v != 0x0ffc {
		t.Fatalf("Apply(PC32) = %#x, want 0xffc", v)
	}
}

func TestApplyPC32Overflow(t *testing.T) {
	r := Reloc{Kind: PC32, Addend: 0}
	_, err := Apply(r, 1<<40, 0, 0, Params{})
	if _, ok := err.(*elf.Truncated); !ok {
		t.Fatalf("err = %v (%T), want *elf.Truncated", err, err)
	}
}

func TestApplyRelative(t *testing.T) {
	r := Reloc{Kind: Relative, Addend: 0x10}
	v, err := Apply(r, 0, 0, 0, Params{Base: 0x400000})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v != 0x400010 {
		t.Fatalf("Apply(Relative) = %#x, want 0x400010", v)
	}
}

func TestApplyCopyIsHardError(t *testing.T) {
	r := Reloc{Kind: Copy}
	if _, err := Apply(r, 0, 0, 0, Params{}); err != elf.ErrCopyRelocation {
		t.Fatalf("err = %v, want ErrCopyRelocation", err)
	}
}

func TestApplyTLSIsHardError(t *testing.T) {
	r := Reloc{Kind: TLSGD}
	if _, err := Apply(r, 0, 0, 0, Params{}); err != elf.ErrTLSRelocation {
		t.Fatalf("err = %v, want ErrTLSRelocation", err)
	}
}

func TestIsTLS(t *testing.T) {
	if !TLSGD.IsTLS() {
		t.Fatal("TLSGD.IsTLS() = false, want true")
	}
	if Dir64.IsTLS() {
		t.Fatal("Dir64.IsTLS() = true, want false")
	}
}

func TestKindWidth(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Dir64, 8},
		{Dir32, 4},
		{Dir16, 2},
		{Dir8, 1},
	}
	for _, c := range cases {
		if got := c.kind.Width(); got != c.want {
			t.Fatalf("%v.Width() = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestApplyGotpcrelRequiresGOT(t *testing.T) {
	r := Reloc{Kind: GotPCRel}
	if _, err := Apply(r, 0, 0, 0, Params{}); err != elf.ErrNoGOT {
		t.Fatalf("err = %v, want ErrNoGOT", err)
	}
}

func TestApplyGot32IsGotPlusAddend(t *testing.T) {
	got := uint64(0x3000)
	r := Reloc{Kind: Got32, Addend: 8}
	v, err := Apply(r, 0xdeadbeef, 0, 0, Params{GOT: &got})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v != 0x3008 {
		t.Fatalf("Apply(Got32) = %#x, want 0x3008 (got+addend)", v)
	}
}

func TestApplySize64IsSymSizePlusAddend(t *testing.T) {
	r := Reloc{Kind: Size64, Addend: 2}
	v, err := Apply(r, 0xdeadbeef, 0x100, 0, Params{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v != 0x102 {
		t.Fatalf("Apply(Size64) = %#x, want 0x102 (sym_size+addend)", v)
	}
}

func buildAMD64Object(t *testing.T) (symtab elf.Symtab, strtab elf.Strtab, sections elf.Sectiontab) {
	t.Helper()
	layout, err := elf.NewLayout(elf.Class64, elf.DataLSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}

	strBuilder := elf.NewStrtabBuilder()
	nameOff := strBuilder.Add("target_fn")
	strtab, err = elf.NewStrtab(strBuilder.Bytes())
	if err != nil {
		t.Fatalf("NewStrtab: %v", err)
	}

	symBuf := append(elf.EncodeSym(layout, 0, elf.SymData{}),
		elf.EncodeSym(layout, nameOff, elf.SymData{
			Shndx: elf.SectionIndex{Kind: elf.SectionIndexNormal, Value: 1},
			Value: 0x20,
			Size:  0x8,
		})...)
	symtab, err = elf.NewSymtab(layout, symBuf)
	if err != nil {
		t.Fatalf("NewSymtab: %v", err)
	}

	order := layout.Order()
	sectBuf := make([]byte, 64*2)
	order.PutUint32(sectBuf[64+4:64+8], uint32(elf.SHTProgBits))
	order.PutUint64(sectBuf[64+16:64+24], 0x1000) // sh_addr
	sections, err = elf.NewSectiontab(layout, sectBuf)
	if err != nil {
		t.Fatalf("NewSectiontab: %v", err)
	}
	return symtab, strtab, sections
}

func TestApplyRelaTableWritesDir64(t *testing.T) {
	symtab, strtab, sections := buildAMD64Object(t)

	layout, _ := elf.NewLayout(elf.Class64, elf.DataLSB)
	rel := elf.RelData{Offset: 0x10, Sym: 1, Type: uint32(Dir64), Addend: 4}
	relaBuf := elf.EncodeRela(layout, rel)
	table, err := elf.NewRelatab(layout, relaBuf)
	if err != nil {
		t.Fatalf("NewRelatab: %v", err)
	}

	target := make([]byte, 0x20)
	if err := ApplyRelaTable(binary.LittleEndian, table, target, 0x1000, symtab, strtab, sections, Params{}); err != nil {
		t.Fatalf("ApplyRelaTable: %v", err)
	}

	got := binary.LittleEndian.Uint64(target[0x10:0x18])
	want := uint64(0x1000 + 0x20 + 4) // section base + symbol value + addend
	if got != want {
		t.Fatalf("relocated value = %#x, want %#x", got, want)
	}
}

func TestApplyRelaTableWritesSize64(t *testing.T) {
	symtab, strtab, sections := buildAMD64Object(t)

	layout, _ := elf.NewLayout(elf.Class64, elf.DataLSB)
	rel := elf.RelData{Offset: 0x10, Sym: 1, Type: uint32(Size64), Addend: 2}
	relaBuf := elf.EncodeRela(layout, rel)
	table, err := elf.NewRelatab(layout, relaBuf)
	if err != nil {
		t.Fatalf("NewRelatab: %v", err)
	}

	target := make([]byte, 0x20)
	if err := ApplyRelaTable(binary.LittleEndian, table, target, 0x1000, symtab, strtab, sections, Params{}); err != nil {
		t.Fatalf("ApplyRelaTable: %v", err)
	}

	got := binary.LittleEndian.Uint64(target[0x10:0x18])
	want := uint64(0x8 + 2) // sym_size + addend, section base irrelevant to Size64
	if got != want {
		t.Fatalf("relocated value = %#x, want %#x", got, want)
	}
}

func TestApplyRelaTableRejectsBadSymIdx(t *testing.T) {
	symtab, strtab, sections := buildAMD64Object(t)

	layout, _ := elf.NewLayout(elf.Class64, elf.DataLSB)
	rel := elf.RelData{Offset: 0x10, Sym: 99, Type: uint32(Dir64)}
	relaBuf := elf.EncodeRela(layout, rel)
	table, _ := elf.NewRelatab(layout, relaBuf)

	target := make([]byte, 0x20)
	if err := ApplyRelaTable(binary.LittleEndian, table, target, 0x1000, symtab, strtab, sections, Params{}); err == nil {
		t.Fatal("expected error for out-of-range symbol index")
	}
}

func TestApplyRelaTableRejectsUnresolvableSymBase(t *testing.T) {
	layout, _ := elf.NewLayout(elf.Class64, elf.DataLSB)
	strBuilder := elf.NewStrtabBuilder()
	nameOff := strBuilder.Add("undef_fn")
	strtab, _ := elf.NewStrtab(strBuilder.Bytes())

	symBuf := append(elf.EncodeSym(layout, 0, elf.SymData{}),
		elf.EncodeSym(layout, nameOff, elf.SymData{
			Shndx: elf.SectionIndex{Kind: elf.SectionIndexCommon},
		})...)
	symtab, _ := elf.NewSymtab(layout, symBuf)
	sections, _ := elf.NewSectiontab(layout, make([]byte, 64))

	rel := elf.RelData{Offset: 0x10, Sym: 1, Type: uint32(Dir64)}
	relaBuf := elf.EncodeRela(layout, rel)
	table, _ := elf.NewRelatab(layout, relaBuf)

	target := make([]byte, 0x20)
	err := ApplyRelaTable(binary.LittleEndian, table, target, 0, symtab, strtab, sections, Params{})
	if err == nil {
		t.Fatal("expected BadSymBase for a Common-indexed symbol")
	}
}

// TestApplyRelaTablePC32AbsoluteSymbol drives a PC32 relocation against an
// Absolute-indexed symbol end to end through ApplyRelaTable, matching the
// worked PC32 example: offset 0x10, sym value 0x1000 (Absolute), addend
// -4, image base 0x400000, target base 0 resolves to 0x0FEC.
func TestApplyRelaTablePC32AbsoluteSymbol(t *testing.T) {
	layout, _ := elf.NewLayout(elf.Class64, elf.DataLSB)
	strBuilder := elf.NewStrtabBuilder()
	nameOff := strBuilder.Add("abs_sym")
	strtab, _ := elf.NewStrtab(strBuilder.Bytes())

	symBuf := append(elf.EncodeSym(layout, 0, elf.SymData{}),
		elf.EncodeSym(layout, nameOff, elf.SymData{
			Shndx: elf.SectionIndex{Kind: elf.SectionIndexAbsolute},
			Value: 0x1000,
		})...)
	symtab, _ := elf.NewSymtab(layout, symBuf)
	sections, _ := elf.NewSectiontab(layout, make([]byte, 64))

	rel := elf.RelData{Offset: 0x10, Sym: 1, Type: uint32(PC32), Addend: -4}
	relaBuf := elf.EncodeRela(layout, rel)
	table, err := elf.NewRelatab(layout, relaBuf)
	if err != nil {
		t.Fatalf("NewRelatab: %v", err)
	}

	target := make([]byte, 0x20)
	if err := ApplyRelaTable(binary.LittleEndian, table, target, 0, symtab, strtab, sections, Params{Base: 0x400000}); err != nil {
		t.Fatalf("ApplyRelaTable: %v", err)
	}

	got := target[0x10:0x14]
	want := []byte{0xec, 0x0f, 0x00, 0x00}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("relocated bytes = % x, want % x", got, want)
		}
	}
}
