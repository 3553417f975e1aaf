// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/elf/internal/elflog"
)

// MaxDefaultSymbolCount bounds how many symbol table entries Parse
// projects by default, guarding against a malformed symtab section whose
// declared size implies an implausible entry count.
const MaxDefaultSymbolCount = 1 << 20

// MaxDefaultRelocEntriesCount bounds how many relocation entries Parse
// projects by default, for the same reason.
const MaxDefaultRelocEntriesCount = 1 << 20

// Options configures Parse.
type Options struct {
	// Fast skips symbol table, dynamic table and note projection; the
	// header, section and program header tables, the Image and any module
	// signature trailer are still populated. By default (false).
	Fast bool

	// MaxSymbolCount bounds the number of symbols Parse will project
	// from .symtab/.dynsym, by default MaxDefaultSymbolCount.
	MaxSymbolCount uint32

	// MaxRelocEntriesCount is a per-section bound on relocation entries,
	// by default MaxDefaultRelocEntriesCount. Parse does not project
	// relocation sections, so it does not consult this limit.
	MaxRelocEntriesCount uint32

	// A custom logger.
	Logger elflog.Logger
}

// File is an open ELF file: the parsed header, tables, and the
// cross-referenced views built from them (spec §5).
type File struct {
	Header   Header
	Layout   Layout
	Sections []SectionHeader
	// SectionNames[i] is the resolved name of Sections[i], via the
	// section header string table.
	SectionNames []string
	Segments     []ProgHeader
	Image        Image

	Symbols    []SymData
	DynSymbols []SymData

	Dynamic       DynamicInfo
	NeededLibs    []string
	Notes         []Note
	ModuleSig     *ModuleSignature
	ModuleSigOff  int
	Anomalies     []string

	data   []byte
	mapped mmap.MMap
	f      *os.File
	opts   *Options
	logger *elflog.Helper
}

func newLogger(opts *Options) *elflog.Helper {
	if opts.Logger != nil {
		return elflog.NewHelper(opts.Logger)
	}
	logger := elflog.NewStdLogger(os.Stdout)
	return elflog.NewHelper(elflog.NewFilter(logger, elflog.LevelError))
}

func normalizeOptions(opts *Options) *Options {
	if opts == nil {
		opts = &Options{}
	}
	if opts.MaxSymbolCount == 0 {
		opts.MaxSymbolCount = MaxDefaultSymbolCount
	}
	if opts.MaxRelocEntriesCount == 0 {
		opts.MaxRelocEntriesCount = MaxDefaultRelocEntriesCount
	}
	return opts
}

// New opens the file at name and memory-maps it for zero-copy parsing.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := &File{opts: normalizeOptions(opts)}
	file.logger = newLogger(file.opts)
	file.mapped = data
	file.data = data
	file.f = f
	return file, nil
}

// NewBytes wraps an in-memory buffer for zero-copy parsing, without
// opening or mapping any file.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := &File{opts: normalizeOptions(opts)}
	file.logger = newLogger(file.opts)
	file.data = data
	return file, nil
}

// Close releases the memory mapping and underlying file descriptor, if
// this File was opened with New.
func (file *File) Close() error {
	if file.mapped != nil {
		_ = file.mapped.Unmap()
	}
	if file.f != nil {
		return file.f.Close()
	}
	return nil
}

func (file *File) sectionByType(typ SectionType) (int, bool) {
	for i, s := range file.Sections {
		if s.Type == typ {
			return i, true
		}
	}
	return 0, false
}

func (file *File) sectionByName(name string) (int, bool) {
	for i, n := range file.SectionNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Parse performs the full parse of an ELF file: header, section and
// program header tables, the load Image and any appended kernel-module
// signature trailer, then (unless Options.Fast is set) the symbol
// tables, the dynamic table and notes. Relocation sections are not
// parsed.
func (file *File) Parse() error {
	header, layout, err := ParseHeader(file.data)
	if err != nil {
		return err
	}
	file.Header = header
	file.Layout = layout

	if err := file.parseSections(); err != nil {
		return err
	}
	if err := file.parseSegments(); err != nil {
		return err
	}
	file.Image = NewImage(file.Segments)

	if sig, elfEnd, err := ParseModuleSignature(file.data); err == nil {
		file.ModuleSig = &sig
		file.ModuleSigOff = elfEnd
	} else if err != ErrNoModuleSignature {
		file.logger.Debugf("module signature trailer present but malformed: %v", err)
	}

	if file.opts.Fast {
		return nil
	}

	if err := file.parseSymbols(); err != nil {
		file.logger.Warnf("symbol table parsing failed: %v", err)
		file.Anomalies = append(file.Anomalies, "symtab")
	}
	if err := file.parseDynamic(); err != nil {
		file.logger.Debugf("dynamic table parsing failed: %v", err)
	}
	if err := file.parseNotes(); err != nil {
		file.logger.Debugf("note parsing failed: %v", err)
	}

	return nil
}

func (file *File) parseSections() error {
	if file.Header.SectHdrOffset == 0 || file.Header.SectHdrNum == 0 {
		return nil
	}
	end := file.Header.SectHdrOffset + uint64(file.Header.SectHdrNum)*uint64(file.Layout.SectionHdrEntSize())
	if end > uint64(len(file.data)) {
		return ErrOutOfBounds
	}
	buf := file.data[file.Header.SectHdrOffset:end]
	tab, err := NewSectiontab(file.Layout, buf)
	if err != nil {
		return err
	}
	headers, err := tab.Headers()
	if err != nil {
		return err
	}
	file.Sections = headers

	if int(file.Header.SectHdrStrNdx) >= len(headers) {
		file.Anomalies = append(file.Anomalies, "bad shstrndx")
		return nil
	}
	shstrtabHdr := headers[file.Header.SectHdrStrNdx]
	raw, err := shstrtabHdr.Data(file.data)
	if err != nil {
		return nil
	}
	shstrtab, err := NewStrtab(raw)
	if err != nil {
		return nil
	}
	names := make([]string, len(headers))
	for i, h := range headers {
		if n, err := shstrtab.String(h.NameOff); err == nil {
			names[i] = n
		}
	}
	file.SectionNames = names
	return nil
}

func (file *File) parseSegments() error {
	if file.Header.ProgHdrOffset == 0 || file.Header.ProgHdrNum == 0 {
		return nil
	}
	end := file.Header.ProgHdrOffset + uint64(file.Header.ProgHdrNum)*uint64(file.Layout.ProgHdrEntSize())
	if end > uint64(len(file.data)) {
		return ErrOutOfBounds
	}
	buf := file.data[file.Header.ProgHdrOffset:end]
	tab, err := NewProghdrtab(file.Layout, buf)
	if err != nil {
		return err
	}
	headers, err := tab.Headers()
	if err != nil {
		return err
	}
	file.Segments = headers
	return nil
}

func (file *File) symsFromSection(symIdx int) ([]SymData, error) {
	symHdr := file.Sections[symIdx]
	symBuf, err := symHdr.Data(file.data)
	if err != nil {
		return nil, err
	}
	if symHdr.Link == 0 || int(symHdr.Link) >= len(file.Sections) {
		return nil, &BadIdx{Index: int(symHdr.Link)}
	}
	strHdr := file.Sections[symHdr.Link]
	strBuf, err := strHdr.Data(file.data)
	if err != nil {
		return nil, err
	}
	strtab, err := NewStrtab(strBuf)
	if err != nil {
		return nil, err
	}
	symtab, err := NewSymtab(file.Layout, symBuf)
	if err != nil {
		return nil, err
	}
	if uint32(symtab.NumSyms()) > file.opts.MaxSymbolCount {
		return nil, fmt.Errorf("elf: symbol count %d exceeds limit %d", symtab.NumSyms(), file.opts.MaxSymbolCount)
	}
	return symtab.Syms(strtab)
}

func (file *File) parseSymbols() error {
	if i, ok := file.sectionByType(SHTSymtab); ok {
		syms, err := file.symsFromSection(i)
		if err != nil {
			return err
		}
		file.Symbols = syms
	}
	if i, ok := file.sectionByType(SHTDynsym); ok {
		syms, err := file.symsFromSection(i)
		if err != nil {
			return err
		}
		file.DynSymbols = syms
	}
	return nil
}

func (file *File) parseDynamic() error {
	i, ok := file.sectionByType(SHTDynamic)
	if !ok {
		return nil
	}
	buf, err := file.Sections[i].Data(file.data)
	if err != nil {
		return err
	}
	tab, err := NewDynamictab(file.Layout, buf)
	if err != nil {
		return err
	}
	entries, err := tab.Entries()
	if err != nil {
		return err
	}
	info, neededOffsets, err := FromDynamic(entries)
	if err != nil {
		return err
	}
	file.Dynamic = info

	if di, ok := file.sectionByName(".dynstr"); ok {
		raw, err := file.Sections[di].Data(file.data)
		if err == nil {
			if dynstr, err := NewStrtab(raw); err == nil {
				for _, off := range neededOffsets {
					if name, err := dynstr.String(uint32(off)); err == nil {
						file.NeededLibs = append(file.NeededLibs, name)
					}
				}
			}
		}
	}
	file.Dynamic.Needed = file.NeededLibs
	return nil
}

func (file *File) parseNotes() error {
	for i, s := range file.Sections {
		if s.Type != SHTNote {
			continue
		}
		buf, err := s.Data(file.data)
		if err != nil {
			continue
		}
		notes, err := ParseNotes(file.Layout.Order(), buf)
		if err != nil {
			file.logger.Debugf("note section %d: %v", i, err)
			continue
		}
		file.Notes = append(file.Notes, notes...)
	}
	return nil
}
