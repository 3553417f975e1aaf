// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import (
	"errors"
	"fmt"
)

// Structural errors. These are fatal to the call that produced them: the
// buffer cannot be interpreted in the requested class/endianness at all.
var (
	// ErrTooShort is returned when a buffer is smaller than the structure
	// being decoded from it requires.
	ErrTooShort = errors.New("elf: buffer too short")

	// ErrBadFirst is returned when a string table's first byte is not zero.
	ErrBadFirst = errors.New("elf: strtab first byte is not NUL")

	// ErrBadLast is returned when a string table's last byte is not zero.
	ErrBadLast = errors.New("elf: strtab last byte is not NUL")

	// ErrBadMagic is returned when the ELF magic number does not match
	// {0x7f, 'E', 'L', 'F'}.
	ErrBadMagic = errors.New("elf: bad magic number")

	// ErrBadHashes is returned when a hash table declares zero buckets.
	ErrBadHashes = errors.New("elf: hash table has zero buckets")

	// ErrOutOfBounds is returned when an index or offset falls outside the
	// buffer it addresses.
	ErrOutOfBounds = errors.New("elf: index out of bounds")
)

// BadSize is reported when a buffer's length is not a multiple of the
// fixed-stride record size for the table being decoded.
type BadSize struct {
	Buffer int
	Stride int
}

func (e *BadSize) Error() string {
	return fmt.Sprintf("elf: buffer size %d is not a multiple of stride %d", e.Buffer, e.Stride)
}

// BadVersion is reported when the ELF identifier's version byte is not 1.
type BadVersion struct{ Value byte }

func (e *BadVersion) Error() string { return fmt.Sprintf("elf: bad version %d", e.Value) }

// BadClass is reported when the ELF identifier's class byte is not 1 or 2.
type BadClass struct{ Value byte }

func (e *BadClass) Error() string { return fmt.Sprintf("elf: bad class %d", e.Value) }

// BadEndian is reported when the ELF identifier's data byte is not 1 or 2.
type BadEndian struct{ Value byte }

func (e *BadEndian) Error() string { return fmt.Sprintf("elf: bad endianness %d", e.Value) }

// Semantic errors. Reported during projection of a single record; the
// buffer structure itself was fine, but a field carries an unrecognised
// value in the context the caller asked about.

// BadBind is reported when a symbol's binding nibble does not match any
// known binding and also falls outside the arch-specific range.
type BadBind struct{ Value uint8 }

func (e *BadBind) Error() string { return fmt.Sprintf("elf: bad symbol binding %d", e.Value) }

// BadType is reported when a symbol's type nibble does not match any known
// type and also falls outside the arch-specific range.
type BadType struct{ Value uint8 }

func (e *BadType) Error() string { return fmt.Sprintf("elf: bad symbol type %d", e.Value) }

// BadTag is reported when a relocation's kind tag is not recognised by the
// architecture decoding it.
type BadTag struct{ Value uint32 }

func (e *BadTag) Error() string { return fmt.Sprintf("elf: bad relocation tag %d", e.Value) }

// BadAddend is reported when converting an architecture-specific relocation
// that must not carry an addend (an implicit-addend "Rel" kind) back into
// RelData, and it carries a non-zero addend.
type BadAddend struct{ Value int64 }

func (e *BadAddend) Error() string { return fmt.Sprintf("elf: non-zero addend %d for Rel kind", e.Value) }

// BadChains is reported when a hash table's declared chain count does not
// equal the linked symbol table's symbol count.
type BadChains struct{ Expected, Actual int }

func (e *BadChains) Error() string {
	return fmt.Sprintf("elf: hash table chain count %d does not match symbol count %d", e.Actual, e.Expected)
}

// Cross-reference errors. Reported during resolution against a
// collaborator table.

// BadIdx is reported when a symbol (or other) index is out of range of its
// table.
type BadIdx struct{ Index int }

func (e *BadIdx) Error() string { return fmt.Sprintf("elf: index %d out of range", e.Index) }

// ErrBadName is returned when a name offset is out of range of its string
// table, or (in a strict-decode context) fails to decode as UTF-8.
var ErrBadName = errors.New("elf: bad name reference")

// ErrInconsistentDynamic is returned when FromDynamic finds a size tag
// with no matching pointer tag or vice versa.
var ErrInconsistentDynamic = errors.New("elf: inconsistent dynamic table pairing")

// Relocation application errors. Reported when Apply cannot produce a
// value for the targeted field.

// BadSymBase is reported when a relocation references a symbol whose
// section-base kind cannot be resolved to an address (anything other than
// Absolute or Index(i)).
type BadSymBase struct{ Base SectionIndex }

func (e *BadSymBase) Error() string {
	return fmt.Sprintf("elf: relocation symbol has unresolvable section base %v", e.Base)
}

// BadSymIdx is reported when a relocation's symbol index does not exist in
// the linked symbol table.
type BadSymIdx struct{ Index uint32 }

func (e *BadSymIdx) Error() string {
	return fmt.Sprintf("elf: relocation symbol index %d out of range", e.Index)
}

// ErrNoGOT is returned when applying a GOT-relative relocation without a
// GOT address in the parameter bundle.
var ErrNoGOT = errors.New("elf: relocation requires GOT address, none supplied")

// ErrNoPLT is returned when applying a PLT-relative relocation without a
// PLT address in the parameter bundle.
var ErrNoPLT = errors.New("elf: relocation requires PLT address, none supplied")

// ErrCopyRelocation is returned for R_*_COPY relocations, which require
// loader policy (copying data out of a shared object into the executable's
// BSS) outside the codec's scope.
var ErrCopyRelocation = errors.New("elf: COPY relocation requires loader policy, not supported")

// ErrTLSRelocation is returned for thread-local-storage relocation kinds,
// which require runtime module/offset structures outside the codec's scope.
var ErrTLSRelocation = errors.New("elf: TLS relocation requires runtime support, not supported")

// Truncated is returned when a relocation's computed value does not fit in
// the target field's width. See DESIGN.md Open Question (ii).
type Truncated struct {
	Field string
	Value int64
	Width int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("elf: relocation value 0x%x for field %s does not fit in %d bytes", e.Value, e.Field, e.Width)
}
