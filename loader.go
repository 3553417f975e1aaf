// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "sort"

// Image is the loadable view of a file built from its PT_LOAD segments
// (spec §4.11): it translates between virtual addresses and file offsets
// the way a loader mapping the file into a process's address space would,
// without actually performing any mapping or allocation.
type Image struct {
	segments []ProgHeader // PT_LOAD only, sorted by VAddr
}

// NewImage builds an Image from a program header table, keeping only the
// PT_LOAD entries and sorting them by virtual address. Overlapping
// PT_LOAD ranges are accepted (some linkers legitimately emit adjacent,
// touching segments); lookups simply resolve to the first matching one.
func NewImage(headers []ProgHeader) Image {
	var segs []ProgHeader
	for _, h := range headers {
		if h.Type == PTLoad {
			segs = append(segs, h)
		}
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].VAddr < segs[j].VAddr })
	return Image{segments: segs}
}

// AddrToOffset translates a virtual address into a file offset, per the
// PT_LOAD segment that maps it. It returns ErrOutOfBounds if no segment
// covers addr, or if addr falls past the segment's on-disk FileSz (inside
// the zero-filled MemSz tail, which has no file offset).
func (img Image) AddrToOffset(addr uint64) (uint64, error) {
	for _, s := range img.segments {
		if addr >= s.VAddr && addr < s.VAddr+s.MemSz {
			delta := addr - s.VAddr
			if delta >= s.FileSz {
				return 0, ErrOutOfBounds
			}
			return s.Offset + delta, nil
		}
	}
	return 0, ErrOutOfBounds
}

// OffsetToAddr translates a file offset into the virtual address it is
// mapped to, the inverse of AddrToOffset.
func (img Image) OffsetToAddr(off uint64) (uint64, error) {
	for _, s := range img.segments {
		if off >= s.Offset && off < s.Offset+s.FileSz {
			return s.VAddr + (off - s.Offset), nil
		}
	}
	return 0, ErrOutOfBounds
}

// ReadAt returns the n bytes of file data mapped at virtual address addr,
// failing if any byte of the requested range falls outside a single
// PT_LOAD segment's file-backed region.
func (img Image) ReadAt(file []byte, addr uint64, n int) ([]byte, error) {
	for _, s := range img.segments {
		if addr < s.VAddr || addr >= s.VAddr+s.MemSz {
			continue
		}
		delta := addr - s.VAddr
		if delta+uint64(n) > s.FileSz {
			return nil, ErrOutOfBounds
		}
		off := s.Offset + delta
		end := off + uint64(n)
		if end > uint64(len(file)) {
			return nil, ErrOutOfBounds
		}
		return file[off:end], nil
	}
	return nil, ErrOutOfBounds
}

// Segments returns the PT_LOAD segments backing this image, in ascending
// virtual-address order.
func (img Image) Segments() []ProgHeader { return img.segments }
