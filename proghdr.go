// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "fmt"

// ProgType is a program header's p_type field: the kind of segment it
// describes (spec §4.10).
type ProgType uint32

// Recognised segment types.
const (
	PTNull    ProgType = 0
	PTLoad    ProgType = 1
	PTDynamic ProgType = 2
	PTInterp  ProgType = 3
	PTNote    ProgType = 4
	PTShlib   ProgType = 5
	PTPhdr    ProgType = 6
	PTTLS     ProgType = 7

	ptLoOS   ProgType = 0x60000000
	ptHiOS   ProgType = 0x6fffffff
	ptLoProc ProgType = 0x70000000
	ptHiProc ProgType = 0x7fffffff

	PTGNUEHFrame ProgType = 0x6474e550
	PTGNUStack   ProgType = 0x6474e551
	PTGNURelro   ProgType = 0x6474e552
)

var progTypeNames = map[ProgType]string{
	PTNull:       "PT_NULL",
	PTLoad:       "PT_LOAD",
	PTDynamic:    "PT_DYNAMIC",
	PTInterp:     "PT_INTERP",
	PTNote:       "PT_NOTE",
	PTShlib:      "PT_SHLIB",
	PTPhdr:       "PT_PHDR",
	PTTLS:        "PT_TLS",
	PTGNUEHFrame: "PT_GNU_EH_FRAME",
	PTGNUStack:   "PT_GNU_STACK",
	PTGNURelro:   "PT_GNU_RELRO",
}

func (t ProgType) String() string {
	if n, ok := progTypeNames[t]; ok {
		return n
	}
	switch {
	case t >= ptLoOS && t <= ptHiOS:
		return fmt.Sprintf("PT_OS(%#x)", uint32(t))
	case t >= ptLoProc && t <= ptHiProc:
		return fmt.Sprintf("PT_PROC(%#x)", uint32(t))
	default:
		return fmt.Sprintf("PT_UNKNOWN(%#x)", uint32(t))
	}
}

// ProgFlags are a program header's p_flags bits.
type ProgFlags uint32

// Segment permission flags.
const (
	PFExec  ProgFlags = 0x1
	PFWrite ProgFlags = 0x2
	PFRead  ProgFlags = 0x4
)

func (f ProgFlags) String() string {
	r, w, x := byte('-'), byte('-'), byte('-')
	if f&PFRead != 0 {
		r = 'R'
	}
	if f&PFWrite != 0 {
		w = 'W'
	}
	if f&PFExec != 0 {
		x = 'E'
	}
	return string([]byte{r, w, x})
}

// ProgHeader is one projected program header table entry.
type ProgHeader struct {
	Type   ProgType
	Flags  ProgFlags
	Offset uint64
	VAddr  uint64
	PAddr  uint64
	FileSz uint64
	MemSz  uint64
	Align  uint64
}

// Proghdrtab is a borrowed view over the program header table. Its
// on-disk field order differs between classes: Class64 places p_flags
// right after p_type, while Class32 places it after p_memsz, just before
// p_align.
type Proghdrtab struct {
	layout Layout
	data   []byte
}

// NewProghdrtab wraps buf as a program header table view.
func NewProghdrtab(layout Layout, buf []byte) (Proghdrtab, error) {
	stride := layout.ProgHdrEntSize()
	if len(buf)%stride != 0 {
		return Proghdrtab{}, &BadSize{Buffer: len(buf), Stride: stride}
	}
	return Proghdrtab{layout: layout, data: buf}, nil
}

// NumSegments returns the number of entries in the table.
func (t Proghdrtab) NumSegments() int { return len(t.data) / t.layout.ProgHdrEntSize() }

// Header projects entry i.
func (t Proghdrtab) Header(i int) (ProgHeader, error) {
	if i < 0 || i >= t.NumSegments() {
		return ProgHeader{}, &BadIdx{Index: i}
	}
	stride := t.layout.ProgHdrEntSize()
	e := t.data[i*stride : (i+1)*stride]
	o := t.layout.Order()

	var h ProgHeader
	h.Type = ProgType(o.Uint32(e[0:4]))

	if t.layout.Class == Class64 {
		h.Flags = ProgFlags(o.Uint32(e[4:8]))
		h.Offset = o.Uint64(e[8:16])
		h.VAddr = o.Uint64(e[16:24])
		h.PAddr = o.Uint64(e[24:32])
		h.FileSz = o.Uint64(e[32:40])
		h.MemSz = o.Uint64(e[40:48])
		h.Align = o.Uint64(e[48:56])
	} else {
		h.Offset = uint64(o.Uint32(e[4:8]))
		h.VAddr = uint64(o.Uint32(e[8:12]))
		h.PAddr = uint64(o.Uint32(e[12:16]))
		h.FileSz = uint64(o.Uint32(e[16:20]))
		h.MemSz = uint64(o.Uint32(e[20:24]))
		h.Flags = ProgFlags(o.Uint32(e[24:28]))
		h.Align = uint64(o.Uint32(e[28:32]))
	}
	return h, nil
}

// Headers projects every entry in the table.
func (t Proghdrtab) Headers() ([]ProgHeader, error) {
	out := make([]ProgHeader, 0, t.NumSegments())
	for i := 0; i < t.NumSegments(); i++ {
		h, err := t.Header(i)
		if err != nil {
			return nil, fmt.Errorf("program header %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// Data returns the file-backed portion of the segment h describes. A
// segment's MemSz may exceed its FileSz (the tail is zero-filled at load
// time, as with .bss folded into a PT_LOAD segment); Data only ever
// returns the FileSz-bounded, on-disk portion.
func (h ProgHeader) Data(file []byte) ([]byte, error) {
	end := h.Offset + h.FileSz
	if end < h.Offset || end > uint64(len(file)) {
		return nil, ErrOutOfBounds
	}
	return file[h.Offset:end], nil
}

// Contains reports whether the virtual address addr falls within this
// segment's mapped memory range.
func (h ProgHeader) Contains(addr uint64) bool {
	return addr >= h.VAddr && addr < h.VAddr+h.MemSz
}
