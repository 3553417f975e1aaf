// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "bytes"

// Strtab is a borrowed view over an ELF string table section: a sequence
// of NUL-terminated strings packed back to back, indexed by byte offset
// rather than by entry number (spec §4.3). The zero value is not usable;
// build one with NewStrtab.
type Strtab struct {
	data []byte
}

// NewStrtab wraps buf as a string table view, validating that it is
// nonempty and begins and ends with a NUL byte as required of a
// conforming SHT_STRTAB section.
func NewStrtab(buf []byte) (Strtab, error) {
	if len(buf) == 0 {
		return Strtab{}, ErrTooShort
	}
	if buf[0] != 0 {
		return Strtab{}, ErrBadFirst
	}
	if buf[len(buf)-1] != 0 {
		return Strtab{}, ErrBadLast
	}
	return Strtab{data: buf}, nil
}

// String returns the NUL-terminated string starting at off, without the
// terminator. An offset at or past the end of the table, or one with no
// following NUL byte, is reported as ErrBadName.
func (s Strtab) String(off uint32) (string, error) {
	if int(off) >= len(s.data) {
		return "", ErrBadName
	}
	rest := s.data[off:]
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return "", ErrBadName
	}
	return string(rest[:i]), nil
}

// Len returns the size in bytes of the underlying table.
func (s Strtab) Len() int { return len(s.data) }

// StrtabBuilder accumulates strings into a new string table, appending
// each new string followed by a NUL. A string equal to one already added
// reuses that string's offset; a string that is only a suffix of an
// earlier one is written out again in full.
type StrtabBuilder struct {
	buf     []byte
	offsets map[string]uint32
}

// NewStrtabBuilder returns a builder seeded with the mandatory leading NUL
// byte (offset 0 is always the empty string).
func NewStrtabBuilder() *StrtabBuilder {
	return &StrtabBuilder{
		buf:     []byte{0},
		offsets: map[string]uint32{"": 0},
	}
}

// Add inserts s (if not already present) and returns its offset into the
// eventual table.
func (b *StrtabBuilder) Add(s string) uint32 {
	if off, ok := b.offsets[s]; ok {
		return off
	}
	off := uint32(len(b.buf))
	b.buf = append(b.buf, []byte(s)...)
	b.buf = append(b.buf, 0)
	b.offsets[s] = off
	return off
}

// Bytes returns the accumulated table, including its leading and trailing
// NUL bytes.
func (b *StrtabBuilder) Bytes() []byte { return b.buf }
