// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import "testing"

func TestNewStrtabRejectsBadBoundaries(t *testing.T) {
	if _, err := NewStrtab([]byte{}); err != ErrTooShort {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
	if _, err := NewStrtab([]byte{'a', 0}); err != ErrBadFirst {
		t.Fatalf("err = %v, want ErrBadFirst", err)
	}
	if _, err := NewStrtab([]byte{0, 'a'}); err != ErrBadLast {
		t.Fatalf("err = %v, want ErrBadLast", err)
	}
}

func TestStrtabString(t *testing.T) {
	buf := []byte{0, '.', 't', 'e', 'x', 't', 0, '.', 'd', 'a', 't', 'a', 0}
	tab, err := NewStrtab(buf)
	if err != nil {
		t.Fatalf("NewStrtab: %v", err)
	}
	if s, err := tab.String(1); err != nil || s != ".text" {
		t.Fatalf("String(1) = %q, %v", s, err)
	}
	if s, err := tab.String(7); err != nil || s != ".data" {
		t.Fatalf("String(7) = %q, %v", s, err)
	}
	if s, err := tab.String(0); err != nil || s != "" {
		t.Fatalf("String(0) = %q, %v, want empty string", s, err)
	}
	if _, err := tab.String(999); err != ErrBadName {
		t.Fatalf("String(999) err = %v, want ErrBadName", err)
	}
}

func TestStrtabBuilderDedup(t *testing.T) {
	b := NewStrtabBuilder()
	off1 := b.Add(".text")
	off2 := b.Add(".data")
	off3 := b.Add(".text")
	if off1 != off3 {
		t.Fatalf("duplicate Add returned different offsets: %d vs %d", off1, off3)
	}
	if off1 == off2 {
		t.Fatal("distinct strings collided on the same offset")
	}

	tab, err := NewStrtab(b.Bytes())
	if err != nil {
		t.Fatalf("NewStrtab(builder output): %v", err)
	}
	if s, _ := tab.String(off1); s != ".text" {
		t.Fatalf("String(off1) = %q, want .text", s)
	}
	if s, _ := tab.String(off2); s != ".data" {
		t.Fatalf("String(off2) = %q, want .data", s)
	}
}
