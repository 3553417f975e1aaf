// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "testing"

func TestRelRoundTrip64(t *testing.T) {
	layout, err := NewLayout(Class64, DataLSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	want := RelData{Offset: 0x2010, Sym: 7, Type: 1}
	entry := EncodeRel(layout, want)
	tab, err := NewReltab(layout, entry)
	if err != nil {
		t.Fatalf("NewReltab: %v", err)
	}
	got, err := tab.Rel(0)
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if got != want {
		t.Fatalf("Rel = %+v, want %+v", got, want)
	}
}

func TestRelaRoundTrip64(t *testing.T) {
	layout, err := NewLayout(Class64, DataLSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	want := RelData{Offset: 0x2010, Sym: 3, Type: 1, Addend: -8}
	entry := EncodeRela(layout, want)
	tab, err := NewRelatab(layout, entry)
	if err != nil {
		t.Fatalf("NewRelatab: %v", err)
	}
	got, err := tab.Rela(0)
	if err != nil {
		t.Fatalf("Rela: %v", err)
	}
	if got != want {
		t.Fatalf("Rela = %+v, want %+v", got, want)
	}
}

func TestRelaRoundTrip32(t *testing.T) {
	layout, err := NewLayout(Class32, DataMSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	want := RelData{Offset: 0x8010, Sym: 0xabcdef, Type: 2, Addend: 4}
	entry := EncodeRela(layout, want)
	tab, err := NewRelatab(layout, entry)
	if err != nil {
		t.Fatalf("NewRelatab: %v", err)
	}
	got, err := tab.Rela(0)
	if err != nil {
		t.Fatalf("Rela: %v", err)
	}
	if got != want {
		t.Fatalf("Rela = %+v, want %+v", got, want)
	}
}

func TestSplitJoinInfoRoundTrip(t *testing.T) {
	for _, class := range []Class{Class32, Class64} {
		info := joinInfo(class, 0x1234, 0x56)
		sym, typ := splitInfo(class, info)
		if sym != 0x1234 || typ != 0x56 {
			t.Errorf("class %v: splitInfo(joinInfo(...)) = (%d, %d), want (0x1234, 0x56)", class, sym, typ)
		}
	}
}

func TestRelBadIndex(t *testing.T) {
	layout, _ := NewLayout(Class64, DataLSB)
	tab, err := NewReltab(layout, nil)
	if err != nil {
		t.Fatalf("NewReltab: %v", err)
	}
	if _, err := tab.Rel(0); err == nil {
		t.Fatal("expected error indexing an empty Rel table")
	}
}
