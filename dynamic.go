// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "fmt"

// DynTag identifies the kind of value stored in one dynamic table entry's
// d_un (spec §4.8).
type DynTag int64

// Recognised dynamic tags.
const (
	DTNull         DynTag = 0
	DTNeeded       DynTag = 1
	DTPltRelSz     DynTag = 2
	DTPltGot       DynTag = 3
	DTHash         DynTag = 4
	DTStrtab       DynTag = 5
	DTSymtab       DynTag = 6
	DTRela         DynTag = 7
	DTRelaSz       DynTag = 8
	DTRelaEnt      DynTag = 9
	DTStrSz        DynTag = 10
	DTSymEnt       DynTag = 11
	DTInit         DynTag = 12
	DTFini         DynTag = 13
	DTSoname       DynTag = 14
	DTRpath        DynTag = 15
	DTSymbolic     DynTag = 16
	DTRel          DynTag = 17
	DTRelSz        DynTag = 18
	DTRelEnt       DynTag = 19
	DTPltRel       DynTag = 20
	DTDebug        DynTag = 21
	DTTextRel      DynTag = 22
	DTJmpRel       DynTag = 23
	DTBindNow      DynTag = 24
	DTInitArray    DynTag = 25
	DTFiniArray    DynTag = 26
	DTInitArraySz  DynTag = 27
	DTFiniArraySz  DynTag = 28
	DTRunpath      DynTag = 29
	DTFlags        DynTag = 30
	DTGNUHash      DynTag = 0x6ffffef5
	DTVerSym       DynTag = 0x6ffffff0
	DTVerNeed      DynTag = 0x6ffffffe
	DTVerNeedNum   DynTag = 0x6fffffff
)

var dynTagNames = map[DynTag]string{
	DTNull:        "DT_NULL",
	DTNeeded:      "DT_NEEDED",
	DTPltRelSz:    "DT_PLTRELSZ",
	DTPltGot:      "DT_PLTGOT",
	DTHash:        "DT_HASH",
	DTStrtab:      "DT_STRTAB",
	DTSymtab:      "DT_SYMTAB",
	DTRela:        "DT_RELA",
	DTRelaSz:      "DT_RELASZ",
	DTRelaEnt:     "DT_RELAENT",
	DTStrSz:       "DT_STRSZ",
	DTSymEnt:      "DT_SYMENT",
	DTInit:        "DT_INIT",
	DTFini:        "DT_FINI",
	DTSoname:      "DT_SONAME",
	DTRpath:       "DT_RPATH",
	DTSymbolic:    "DT_SYMBOLIC",
	DTRel:         "DT_REL",
	DTRelSz:       "DT_RELSZ",
	DTRelEnt:      "DT_RELENT",
	DTPltRel:      "DT_PLTREL",
	DTDebug:       "DT_DEBUG",
	DTTextRel:     "DT_TEXTREL",
	DTJmpRel:      "DT_JMPREL",
	DTBindNow:     "DT_BIND_NOW",
	DTInitArray:   "DT_INIT_ARRAY",
	DTFiniArray:   "DT_FINI_ARRAY",
	DTInitArraySz: "DT_INIT_ARRAYSZ",
	DTFiniArraySz: "DT_FINI_ARRAYSZ",
	DTRunpath:     "DT_RUNPATH",
	DTFlags:       "DT_FLAGS",
	DTGNUHash:     "DT_GNU_HASH",
	DTVerSym:      "DT_VERSYM",
	DTVerNeed:     "DT_VERNEED",
	DTVerNeedNum:  "DT_VERNEEDNUM",
}

func (t DynTag) String() string {
	if n, ok := dynTagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("DT_UNKNOWN(%d)", int64(t))
}

// DynEntry is one projected dynamic table entry.
type DynEntry struct {
	Tag DynTag
	Val uint64
}

// Dynamictab is a borrowed view over a SHT_DYNAMIC section.
type Dynamictab struct {
	layout Layout
	data   []byte
}

// NewDynamictab wraps buf as a dynamic table view.
func NewDynamictab(layout Layout, buf []byte) (Dynamictab, error) {
	stride := layout.DynEntSize()
	if len(buf)%stride != 0 {
		return Dynamictab{}, &BadSize{Buffer: len(buf), Stride: stride}
	}
	return Dynamictab{layout: layout, data: buf}, nil
}

// NumEntries returns the number of entries, including any trailing
// DT_NULL terminator present in the section.
func (t Dynamictab) NumEntries() int { return len(t.data) / t.layout.DynEntSize() }

// Entry projects entry i.
func (t Dynamictab) Entry(i int) (DynEntry, error) {
	if i < 0 || i >= t.NumEntries() {
		return DynEntry{}, &BadIdx{Index: i}
	}
	size := t.layout.AddrSize()
	stride := t.layout.DynEntSize()
	e := t.data[i*stride : (i+1)*stride]
	var tag int64
	if t.layout.Class == Class64 {
		tag = int64(t.layout.Order().Uint64(e[0:size]))
	} else {
		tag = int64(int32(t.layout.Order().Uint32(e[0:size])))
	}
	val := t.layout.ReadAddr(e[size : 2*size])
	return DynEntry{Tag: DynTag(tag), Val: val}, nil
}

// Entries projects every entry up to (but not including) the first
// DT_NULL, matching how a loader would stop walking the table.
func (t Dynamictab) Entries() ([]DynEntry, error) {
	out := make([]DynEntry, 0, t.NumEntries())
	for i := 0; i < t.NumEntries(); i++ {
		e, err := t.Entry(i)
		if err != nil {
			return nil, fmt.Errorf("dynamic entry %d: %w", i, err)
		}
		if e.Tag == DTNull {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// DynamicInfo aggregates the dynamic table's tag/value pairs into the
// fields a loader actually cares about (spec §4.8), failing if a pointer
// tag is present without its size tag or a size tag without its pointer
// tag. Entry-size tags are recorded but not checked against anything.
type DynamicInfo struct {
	Needed      []string // resolved via DT_NEEDED + the dynstr table
	SonameIdx   *uint64
	RpathIdx    *uint64
	RunpathIdx  *uint64
	StrtabAddr  uint64
	StrtabSize  uint64
	SymtabAddr  uint64
	SymEntSize  uint64
	HashAddr    uint64
	GNUHashAddr uint64
	RelaAddr    uint64
	RelaSize    uint64
	RelaEntSize uint64
	RelAddr     uint64
	RelSize     uint64
	RelEntSize  uint64
	PltGotAddr  uint64
	PltRelAddr  uint64
	PltRelSize  uint64
	PltRelKind  uint64 // DT_REL or DT_RELA
	InitAddr    uint64
	FiniAddr    uint64
	Flags       uint64
	BindNow     bool
	TextRel     bool
}

// FromDynamic aggregates entries into a DynamicInfo. needed is filled in
// as raw dynstr offsets here; resolving them into strings is the caller's
// job once it has sliced out the dynstr section (this function only sees
// the dynamic table itself).
func FromDynamic(entries []DynEntry) (DynamicInfo, []uint64, error) {
	var info DynamicInfo
	var neededOffsets []uint64

	for _, e := range entries {
		switch e.Tag {
		case DTNeeded:
			neededOffsets = append(neededOffsets, e.Val)
		case DTSoname:
			v := e.Val
			info.SonameIdx = &v
		case DTRpath:
			v := e.Val
			info.RpathIdx = &v
		case DTRunpath:
			v := e.Val
			info.RunpathIdx = &v
		case DTStrtab:
			info.StrtabAddr = e.Val
		case DTStrSz:
			info.StrtabSize = e.Val
		case DTSymtab:
			info.SymtabAddr = e.Val
		case DTSymEnt:
			info.SymEntSize = e.Val
		case DTHash:
			info.HashAddr = e.Val
		case DTGNUHash:
			info.GNUHashAddr = e.Val
		case DTRela:
			info.RelaAddr = e.Val
		case DTRelaSz:
			info.RelaSize = e.Val
		case DTRelaEnt:
			info.RelaEntSize = e.Val
		case DTRel:
			info.RelAddr = e.Val
		case DTRelSz:
			info.RelSize = e.Val
		case DTRelEnt:
			info.RelEntSize = e.Val
		case DTPltGot:
			info.PltGotAddr = e.Val
		case DTJmpRel:
			info.PltRelAddr = e.Val
		case DTPltRelSz:
			info.PltRelSize = e.Val
		case DTPltRel:
			info.PltRelKind = e.Val
		case DTInit:
			info.InitAddr = e.Val
		case DTFini:
			info.FiniAddr = e.Val
		case DTFlags:
			info.Flags = e.Val
		case DTBindNow:
			info.BindNow = true
		case DTTextRel:
			info.TextRel = true
		}
	}

	if (info.StrtabAddr != 0) != (info.StrtabSize != 0) {
		return DynamicInfo{}, nil, ErrInconsistentDynamic
	}
	if (info.RelaAddr != 0) != (info.RelaSize != 0) {
		return DynamicInfo{}, nil, ErrInconsistentDynamic
	}
	if (info.RelAddr != 0) != (info.RelSize != 0) {
		return DynamicInfo{}, nil, ErrInconsistentDynamic
	}
	if (info.PltRelAddr != 0) != (info.PltRelSize != 0) {
		return DynamicInfo{}, nil, ErrInconsistentDynamic
	}

	return info, neededOffsets, nil
}
