// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "testing"

func TestDecodeSectionIndex(t *testing.T) {
	tests := []struct {
		shndx uint16
		kind  SectionIndexKind
	}{
		{0, SectionIndexUndef},
		{5, SectionIndexNormal},
		{0xfff1, SectionIndexAbsolute},
		{0xfff2, SectionIndexCommon},
		{0xffff, SectionIndexEscape},
		{0xff05, SectionIndexArchSpecific},
		{0xff25, SectionIndexOSSpecific},
	}
	for _, tt := range tests {
		got := DecodeSectionIndex(tt.shndx)
		if got.Kind != tt.kind {
			t.Errorf("DecodeSectionIndex(%#x).Kind = %v, want %v", tt.shndx, got.Kind, tt.kind)
		}
		if EncodeSectionIndex(got) != tt.shndx {
			t.Errorf("EncodeSectionIndex(DecodeSectionIndex(%#x)) round-trip failed", tt.shndx)
		}
	}
}

func TestSymtabRoundTrip(t *testing.T) {
	layout, err := NewLayout(Class64, DataLSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}

	strb := NewStrtabBuilder()
	nameOff := strb.Add("main")
	strtab, err := NewStrtab(strb.Bytes())
	if err != nil {
		t.Fatalf("NewStrtab: %v", err)
	}

	want := SymData{
		Name:  "main",
		Bind:  BindGlobal,
		Type:  TypeFunc,
		Other: 0,
		Shndx: DecodeSectionIndex(1),
		Value: 0x401000,
		Size:  64,
	}
	entry := EncodeSym(layout, nameOff, want)

	symtab, err := NewSymtab(layout, entry)
	if err != nil {
		t.Fatalf("NewSymtab: %v", err)
	}
	if symtab.NumSyms() != 1 {
		t.Fatalf("NumSyms = %d, want 1", symtab.NumSyms())
	}
	got, err := symtab.Sym(0, strtab)
	if err != nil {
		t.Fatalf("Sym: %v", err)
	}
	if got != want {
		t.Fatalf("Sym = %+v, want %+v", got, want)
	}
}

func TestSymtabRoundTrip32(t *testing.T) {
	layout, err := NewLayout(Class32, DataMSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	strb := NewStrtabBuilder()
	nameOff := strb.Add("data_sym")
	strtab, _ := NewStrtab(strb.Bytes())

	want := SymData{
		Name:  "data_sym",
		Bind:  BindLocal,
		Type:  TypeObject,
		Shndx: DecodeSectionIndex(3),
		Value: 0x8000,
		Size:  4,
	}
	entry := EncodeSym(layout, nameOff, want)
	symtab, err := NewSymtab(layout, entry)
	if err != nil {
		t.Fatalf("NewSymtab: %v", err)
	}
	got, err := symtab.Sym(0, strtab)
	if err != nil {
		t.Fatalf("Sym: %v", err)
	}
	if got != want {
		t.Fatalf("Sym = %+v, want %+v", got, want)
	}
}

func TestSymtabBadSize(t *testing.T) {
	layout, _ := NewLayout(Class64, DataLSB)
	if _, err := NewSymtab(layout, make([]byte, 10)); err == nil {
		t.Fatal("expected error for misaligned buffer")
	}
}

func TestSymBadIndex(t *testing.T) {
	layout, _ := NewLayout(Class64, DataLSB)
	symtab, err := NewSymtab(layout, nil)
	if err != nil {
		t.Fatalf("NewSymtab: %v", err)
	}
	strtab, _ := NewStrtab([]byte{0})
	if _, err := symtab.Sym(0, strtab); err == nil {
		t.Fatal("expected error indexing an empty symbol table")
	}
}
