// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "encoding/binary"

// Note is one projected ELF note record (spec §4.12): a named,
// typed, owner-tagged blob embedded in a PT_NOTE segment or SHT_NOTE
// section. Name conventionally includes its own NUL terminator in the
// encoded form but Note.Name has it stripped.
type Note struct {
	Name string
	Type uint32
	Desc []byte
}

// align4 rounds n up to the next multiple of 4, the padding unit every
// note field is aligned to regardless of ELF class.
func align4(n int) int { return (n + 3) &^ 3 }

// ParseNotes walks buf as a sequence of packed note records, returning
// every record it can fully decode. A truncated trailing record (fewer
// bytes remaining than its own header, or than its padded name/desc
// claim) is reported as ErrTooShort.
func ParseNotes(order binary.ByteOrder, buf []byte) ([]Note, error) {
	var notes []Note
	for len(buf) > 0 {
		if len(buf) < 12 {
			return notes, ErrTooShort
		}
		namesz := order.Uint32(buf[0:4])
		descsz := order.Uint32(buf[4:8])
		typ := order.Uint32(buf[8:12])
		buf = buf[12:]

		nameEnd := align4(int(namesz))
		if len(buf) < nameEnd {
			return notes, ErrTooShort
		}
		name := ""
		if namesz > 0 {
			raw := buf[:namesz]
			if raw[len(raw)-1] == 0 {
				raw = raw[:len(raw)-1]
			}
			name = string(raw)
		}
		buf = buf[nameEnd:]

		descEnd := align4(int(descsz))
		if len(buf) < descEnd {
			return notes, ErrTooShort
		}
		desc := append([]byte(nil), buf[:descsz]...)
		buf = buf[descEnd:]

		notes = append(notes, Note{Name: name, Type: typ, Desc: desc})
	}
	return notes, nil
}

// EncodeNote serialises n as one packed, 4-byte-padded note record.
func EncodeNote(order binary.ByteOrder, n Note) []byte {
	rawName := append([]byte(n.Name), 0)
	namesz := len(rawName)
	descsz := len(n.Desc)

	out := make([]byte, 12+align4(namesz)+align4(descsz))
	order.PutUint32(out[0:4], uint32(namesz))
	order.PutUint32(out[4:8], uint32(descsz))
	order.PutUint32(out[8:12], n.Type)
	copy(out[12:12+namesz], rawName)
	copy(out[12+align4(namesz):12+align4(namesz)+descsz], n.Desc)
	return out
}

// Well-known note owner names, used to interpret Note.Name before
// dispatching on Note.Type.
const (
	NoteOwnerGNU   = "GNU"
	NoteOwnerCore  = "CORE"
	NoteOwnerLinux = "LINUX"
)

// Well-known GNU note types, Note.Type when Note.Name == NoteOwnerGNU.
const (
	NTGNUABITag      uint32 = 1
	NTGNUHwcap       uint32 = 2
	NTGNUBuildID     uint32 = 3
	NTGNUGoldVersion uint32 = 4
	NTGNUPropertyType0 uint32 = 5
)

// BuildID returns the raw descriptor bytes of a GNU build-id note, or
// reports ok == false if notes contains none.
func BuildID(notes []Note) (id []byte, ok bool) {
	for _, n := range notes {
		if n.Name == NoteOwnerGNU && n.Type == NTGNUBuildID {
			return n.Desc, true
		}
	}
	return nil, false
}
