// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "encoding/binary"

// Hash computes the classic PJW-derived ELF string hash (spec §4.5), used
// to pick a symbol's bucket in a SHT_HASH section.
func Hash(name string) uint32 {
	var h, g uint32
	for i := 0; i < len(name); i++ {
		h = (h << 4) + uint32(name[i])
		g = h & 0xf0000000
		if g != 0 {
			h ^= g >> 24
		}
		h &^= g
	}
	return h
}

// Hashtab is a borrowed view over a SHT_HASH section. Unlike every other
// table in this package, its entries are always 4-byte words regardless
// of class: the ELF hash table format predates the 64-bit ABI and was
// never widened.
type Hashtab struct {
	nbucket uint32
	nchain  uint32
	data    []byte // the full section, buckets then chains
}

// NewHashtab wraps buf as a hash table view. numSyms is the symbol count
// of the table this hash table indexes, used to validate nchain per
// DESIGN.md's Open Question (i) resolution: nchain must equal numSyms
// whenever numSyms is nonzero.
func NewHashtab(order binary.ByteOrder, buf []byte, numSyms int) (Hashtab, error) {
	if len(buf) < 8 {
		return Hashtab{}, ErrTooShort
	}
	nbucket := order.Uint32(buf[0:4])
	nchain := order.Uint32(buf[4:8])
	if nbucket == 0 {
		return Hashtab{}, ErrBadHashes
	}
	if numSyms > 0 && int(nchain) != numSyms {
		return Hashtab{}, &BadChains{Expected: numSyms, Actual: int(nchain)}
	}
	want := 8 + 4*int(nbucket) + 4*int(nchain)
	if len(buf) < want {
		return Hashtab{}, ErrTooShort
	}
	return Hashtab{nbucket: nbucket, nchain: nchain, data: buf}, nil
}

func (h Hashtab) word(order binary.ByteOrder, i int) uint32 {
	return order.Uint32(h.data[4+4*i : 8+4*i])
}

// NumBuckets returns the table's bucket count.
func (h Hashtab) NumBuckets() int { return int(h.nbucket) }

// NumChains returns the table's chain-slot count (equal to the linked
// symbol table's symbol count, when that count is nonzero).
func (h Hashtab) NumChains() int { return int(h.nchain) }

// bucket returns the first chain index for hash bucket i.
func (h Hashtab) bucket(order binary.ByteOrder, i uint32) uint32 {
	return order.Uint32(h.data[8+4*i : 12+4*i])
}

// chain returns the next chain index following i, or 0 (STN_UNDEF) at the
// end of a chain.
func (h Hashtab) chain(order binary.ByteOrder, i uint32) uint32 {
	base := 8 + 4*int(h.nbucket)
	return order.Uint32(h.data[base+4*int(i) : base+4*int(i)+4])
}

// Lookup walks the hash chain for name and returns the symbol index it
// resolves to, consulting syms/strtab to compare candidate names. It
// returns ok == false when no entry in the chain matches, which is not
// itself an error: an absent symbol is an ordinary negative lookup result.
func (h Hashtab) Lookup(order binary.ByteOrder, name string, syms Symtab, strtab Strtab) (idx uint32, ok bool, err error) {
	if h.nbucket == 0 {
		return 0, false, ErrBadHashes
	}
	y := h.bucket(order, Hash(name)%h.nbucket)
	for i := uint32(0); i < h.nchain; i++ {
		if y == 0 {
			return 0, false, nil
		}
		if y >= h.nchain {
			return 0, false, &BadIdx{Index: int(y)}
		}
		sym, err := syms.Sym(int(y), strtab)
		if err != nil {
			return 0, false, err
		}
		if sym.Name == name {
			return y, true, nil
		}
		y = h.chain(order, y)
	}
	if y != 0 {
		return 0, false, &BadIdx{Index: int(y)}
	}
	return 0, false, nil
}

// BuildHashtab constructs a SHT_HASH section's bytes for the given
// symbols, bucketed over nbucket buckets. Chain slot 0 is always
// STN_UNDEF; syms[0] is conventionally the null symbol and is never
// indexed by a bucket.
func BuildHashtab(order binary.ByteOrder, nbucket uint32, names []string) []byte {
	nchain := uint32(len(names))
	buf := make([]byte, 8+4*nbucket+4*nchain)
	order.PutUint32(buf[0:4], nbucket)
	order.PutUint32(buf[4:8], nchain)

	buckets := buf[8 : 8+4*nbucket]
	chains := buf[8+4*nbucket:]

	for i := uint32(1); i < nchain; i++ {
		if names[i] == "" {
			continue
		}
		b := Hash(names[i]) % nbucket
		head := order.Uint32(buckets[4*b : 4*b+4])
		order.PutUint32(chains[4*i:4*i+4], head)
		order.PutUint32(buckets[4*b:4*b+4], i)
	}
	return buf
}
