// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

// The 16-byte ELF identifier, e_ident[EI_NIDENT].
const identSize = 16

var magic = [4]byte{0x7f, 'E', 'L', 'F'}

// Offsets within e_ident.
const (
	identClass      = 4
	identData       = 5
	identVersion    = 6
	identOSABI      = 7
	identABIVersion = 8
)

// Kind is the object file type, e_type.
type Kind uint16

// Known object file kinds.
const (
	KindNone Kind = 0
	KindRel  Kind = 1 // relocatable
	KindExec Kind = 2 // executable
	KindDyn  Kind = 3 // shared object
	KindCore Kind = 4 // core dump

	KindLoOS   Kind = 0xfe00
	KindHiOS   Kind = 0xfeff
	KindLoProc Kind = 0xff00
	KindHiProc Kind = 0xffff
)

func (k Kind) String() string {
	switch {
	case k == KindNone:
		return "NONE"
	case k == KindRel:
		return "REL"
	case k == KindExec:
		return "EXEC"
	case k == KindDyn:
		return "DYN"
	case k == KindCore:
		return "CORE"
	case k >= KindLoOS && k <= KindHiOS:
		return "OS-SPECIFIC"
	case k >= KindLoProc && k <= KindHiProc:
		return "PROC-SPECIFIC"
	default:
		return "UNKNOWN"
	}
}

// Machine is the target architecture, e_machine.
type Machine uint16

// Architectures this codec's relocation engine understands. Other values
// decode fine at the header level; only the arch/x86 and arch/x86_64
// packages know how to apply their relocations.
const (
	MachineNone  Machine = 0
	Machine386   Machine = 3
	MachineX8664 Machine = 62
)

// Ident is the parsed 16-byte ELF identifier, decoded without knowing
// class or endianness in advance (spec §4.13).
type Ident struct {
	Class      Class
	Data       Data
	Version    uint8
	OSABI      uint8
	ABIVersion uint8
}

// ParseIdent decodes e_ident from the first 16 bytes of buf and validates
// the magic number, version, and class/endian enumerations.
func ParseIdent(buf []byte) (Ident, error) {
	if len(buf) < identSize {
		return Ident{}, ErrTooShort
	}
	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return Ident{}, ErrBadMagic
	}
	class := Class(buf[identClass])
	if class != Class32 && class != Class64 {
		return Ident{}, &BadClass{Value: buf[identClass]}
	}
	data := Data(buf[identData])
	if data != DataLSB && data != DataMSB {
		return Ident{}, &BadEndian{Value: buf[identData]}
	}
	if buf[identVersion] != 1 {
		return Ident{}, &BadVersion{Value: buf[identVersion]}
	}
	return Ident{
		Class:      class,
		Data:       data,
		Version:    buf[identVersion],
		OSABI:      buf[identOSABI],
		ABIVersion: buf[identABIVersion],
	}, nil
}

// Header is the decoded ELF top-level header (identifier plus the fields
// that follow it), independent of class: every field that differs in
// on-disk width between Class32 and Class64 is widened here to its Class64
// representation.
type Header struct {
	Ident         Ident
	Type          Kind
	Machine       Machine
	Version       uint32
	Entry         uint64
	ProgHdrOffset uint64
	SectHdrOffset uint64
	Flags         uint32
	EhSize        uint16
	ProgHdrEntSz  uint16
	ProgHdrNum    uint16
	SectHdrEntSz  uint16
	SectHdrNum    uint16
	SectHdrStrNdx uint16
}

// ParseHeader decodes the full ELF header from buf, dispatching on the
// class/endianness multiplexer described in spec §4.13. It returns the
// decoded Header together with the Layout a caller should use to decode
// the rest of the file (program headers, section headers, ...).
func ParseHeader(buf []byte) (Header, Layout, error) {
	ident, err := ParseIdent(buf)
	if err != nil {
		return Header{}, Layout{}, err
	}
	layout, err := NewLayout(ident.Class, ident.Data)
	if err != nil {
		return Header{}, Layout{}, err
	}
	size := layout.EhdrSize()
	if len(buf) < size {
		return Header{}, Layout{}, ErrTooShort
	}

	h := Header{Ident: ident}
	o := layout.Order()
	p := buf[identSize:]

	h.Type = Kind(o.Uint16(p[0:2]))
	h.Machine = Machine(o.Uint16(p[2:4]))
	h.Version = o.Uint32(p[4:8])

	if layout.Class == Class64 {
		h.Entry = o.Uint64(p[8:16])
		h.ProgHdrOffset = o.Uint64(p[16:24])
		h.SectHdrOffset = o.Uint64(p[24:32])
		h.Flags = o.Uint32(p[32:36])
		h.EhSize = o.Uint16(p[36:38])
		h.ProgHdrEntSz = o.Uint16(p[38:40])
		h.ProgHdrNum = o.Uint16(p[40:42])
		h.SectHdrEntSz = o.Uint16(p[42:44])
		h.SectHdrNum = o.Uint16(p[44:46])
		h.SectHdrStrNdx = o.Uint16(p[46:48])
	} else {
		h.Entry = uint64(o.Uint32(p[8:12]))
		h.ProgHdrOffset = uint64(o.Uint32(p[12:16]))
		h.SectHdrOffset = uint64(o.Uint32(p[16:20]))
		h.Flags = o.Uint32(p[20:24])
		h.EhSize = o.Uint16(p[24:26])
		h.ProgHdrEntSz = o.Uint16(p[26:28])
		h.ProgHdrNum = o.Uint16(p[28:30])
		h.SectHdrEntSz = o.Uint16(p[30:32])
		h.SectHdrNum = o.Uint16(p[32:34])
		h.SectHdrStrNdx = o.Uint16(p[34:36])
	}

	if int(h.ProgHdrEntSz) != 0 && int(h.ProgHdrEntSz) != layout.ProgHdrEntSize() {
		return Header{}, Layout{}, &BadSize{Buffer: int(h.ProgHdrEntSz), Stride: layout.ProgHdrEntSize()}
	}
	if int(h.SectHdrEntSz) != 0 && int(h.SectHdrEntSz) != layout.SectionHdrEntSize() {
		return Header{}, Layout{}, &BadSize{Buffer: int(h.SectHdrEntSz), Stride: layout.SectionHdrEntSize()}
	}

	return h, layout, nil
}

// Encode serialises h back into buf (which must be at least
// layout.EhdrSize() bytes), mirroring ParseHeader.
func (h Header) Encode(buf []byte, layout Layout) error {
	if len(buf) < layout.EhdrSize() {
		return ErrTooShort
	}
	copy(buf[0:4], magic[:])
	buf[identClass] = byte(h.Ident.Class)
	buf[identData] = byte(h.Ident.Data)
	buf[identVersion] = h.Ident.Version
	buf[identOSABI] = h.Ident.OSABI
	buf[identABIVersion] = h.Ident.ABIVersion
	for i := identABIVersion + 1; i < identSize; i++ {
		buf[i] = 0
	}

	o := layout.Order()
	p := buf[identSize:]
	o.PutUint16(p[0:2], uint16(h.Type))
	o.PutUint16(p[2:4], uint16(h.Machine))
	o.PutUint32(p[4:8], h.Version)

	if layout.Class == Class64 {
		o.PutUint64(p[8:16], h.Entry)
		o.PutUint64(p[16:24], h.ProgHdrOffset)
		o.PutUint64(p[24:32], h.SectHdrOffset)
		o.PutUint32(p[32:36], h.Flags)
		o.PutUint16(p[36:38], h.EhSize)
		o.PutUint16(p[38:40], h.ProgHdrEntSz)
		o.PutUint16(p[40:42], h.ProgHdrNum)
		o.PutUint16(p[42:44], h.SectHdrEntSz)
		o.PutUint16(p[44:46], h.SectHdrNum)
		o.PutUint16(p[46:48], h.SectHdrStrNdx)
	} else {
		o.PutUint32(p[8:12], uint32(h.Entry))
		o.PutUint32(p[12:16], uint32(h.ProgHdrOffset))
		o.PutUint32(p[16:20], uint32(h.SectHdrOffset))
		o.PutUint32(p[20:24], h.Flags)
		o.PutUint16(p[24:26], h.EhSize)
		o.PutUint16(p[26:28], h.ProgHdrEntSz)
		o.PutUint16(p[28:30], h.ProgHdrNum)
		o.PutUint16(p[30:32], h.SectHdrEntSz)
		o.PutUint16(p[32:34], h.SectHdrNum)
		o.PutUint16(p[34:36], h.SectHdrStrNdx)
	}
	return nil
}
