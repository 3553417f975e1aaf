// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import (
	"encoding/binary"
	"testing"
)

func TestNoteRoundTrip(t *testing.T) {
	want := Note{Name: NoteOwnerGNU, Type: NTGNUBuildID, Desc: []byte{0xde, 0xad, 0xbe, 0xef}}
	encoded := EncodeNote(binary.LittleEndian, want)

	notes, err := ParseNotes(binary.LittleEndian, encoded)
	if err != nil {
		t.Fatalf("ParseNotes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len(notes) = %d, want 1", len(notes))
	}
	if notes[0].Name != want.Name || notes[0].Type != want.Type {
		t.Fatalf("note = %+v, want %+v", notes[0], want)
	}
	if string(notes[0].Desc) != string(want.Desc) {
		t.Fatalf("Desc = %x, want %x", notes[0].Desc, want.Desc)
	}
}

func TestParseNotesMultiple(t *testing.T) {
	n1 := Note{Name: NoteOwnerGNU, Type: NTGNUABITag, Desc: []byte{1, 2, 3, 4, 5}}
	n2 := Note{Name: NoteOwnerGNU, Type: NTGNUBuildID, Desc: []byte{6, 7}}
	buf := append(EncodeNote(binary.LittleEndian, n1), EncodeNote(binary.LittleEndian, n2)...)

	notes, err := ParseNotes(binary.LittleEndian, buf)
	if err != nil {
		t.Fatalf("ParseNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2", len(notes))
	}
}

func TestParseNotesRejectsTruncated(t *testing.T) {
	if _, err := ParseNotes(binary.LittleEndian, []byte{1, 2, 3}); err != ErrTooShort {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}

func TestBuildID(t *testing.T) {
	notes := []Note{{Name: NoteOwnerGNU, Type: NTGNUBuildID, Desc: []byte{0xaa, 0xbb}}}
	id, ok := BuildID(notes)
	if !ok || string(id) != "\xaa\xbb" {
		t.Fatalf("BuildID = (%x, %v)", id, ok)
	}
	if _, ok := BuildID(nil); ok {
		t.Fatal("BuildID should report ok=false with no notes")
	}
}
