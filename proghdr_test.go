// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "testing"

func encodeProgHeader64(layout Layout, h ProgHeader) []byte {
	buf := make([]byte, 56)
	o := layout.Order()
	o.PutUint32(buf[0:4], uint32(h.Type))
	o.PutUint32(buf[4:8], uint32(h.Flags))
	o.PutUint64(buf[8:16], h.Offset)
	o.PutUint64(buf[16:24], h.VAddr)
	o.PutUint64(buf[24:32], h.PAddr)
	o.PutUint64(buf[32:40], h.FileSz)
	o.PutUint64(buf[40:48], h.MemSz)
	o.PutUint64(buf[48:56], h.Align)
	return buf
}

func TestProghdrtabHeader(t *testing.T) {
	layout, err := NewLayout(Class64, DataLSB)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	want := ProgHeader{
		Type: PTLoad, Flags: PFRead | PFExec,
		Offset: 0, VAddr: 0x400000, PAddr: 0x400000,
		FileSz: 0x1000, MemSz: 0x1000, Align: 0x1000,
	}
	buf := encodeProgHeader64(layout, want)
	tab, err := NewProghdrtab(layout, buf)
	if err != nil {
		t.Fatalf("NewProghdrtab: %v", err)
	}
	got, err := tab.Header(0)
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if got != want {
		t.Fatalf("Header = %+v, want %+v", got, want)
	}
}

func TestProgHeaderContains(t *testing.T) {
	h := ProgHeader{VAddr: 0x400000, MemSz: 0x2000}
	if !h.Contains(0x401000) {
		t.Fatal("expected address inside segment")
	}
	if h.Contains(0x500000) {
		t.Fatal("expected address outside segment to not be contained")
	}
}

func TestProgHeaderDataRespectsFileSz(t *testing.T) {
	file := make([]byte, 0x2000)
	h := ProgHeader{Offset: 0x1000, FileSz: 0x100, MemSz: 0x500}
	data, err := h.Data(file)
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(data) != 0x100 {
		t.Fatalf("len(data) = %#x, want 0x100", len(data))
	}
}

func TestProgFlagsString(t *testing.T) {
	if (PFRead | PFExec).String() != "R-E" {
		t.Fatalf("String() = %q, want R-E", (PFRead | PFExec).String())
	}
}
