// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import (
	"encoding/binary"
	"testing"
)

func buildSignedModule(elfContent, sigData, signer, keyID []byte) []byte {
	desc := make([]byte, descriptorSize)
	desc[0] = 0                     // algo
	desc[1] = 0                     // hash
	desc[2] = PkeyIDPKCS7           // id_type
	desc[3] = byte(len(signer))     // signer_len
	desc[4] = byte(len(keyID))      // key_id_len
	binary.BigEndian.PutUint32(desc[8:12], uint32(len(sigData)))

	out := append([]byte(nil), elfContent...)
	out = append(out, sigData...)
	out = append(out, signer...)
	out = append(out, keyID...)
	out = append(out, desc...)
	out = append(out, []byte(sigMagic)...)
	return out
}

func TestParseModuleSignature(t *testing.T) {
	elfContent := []byte{0x7f, 'E', 'L', 'F', 1, 2, 3, 4}
	sigData := []byte{0xaa, 0xbb, 0xcc}
	signer := []byte("builder@example.com")
	keyID := []byte{0x01, 0x02}

	file := buildSignedModule(elfContent, sigData, signer, keyID)
	sig, elfEnd, err := ParseModuleSignature(file)
	if err != nil {
		t.Fatalf("ParseModuleSignature: %v", err)
	}
	if elfEnd != len(elfContent) {
		t.Fatalf("elfEnd = %d, want %d", elfEnd, len(elfContent))
	}
	if string(sig.RawSig) != string(sigData) {
		t.Fatalf("RawSig = %x, want %x", sig.RawSig, sigData)
	}
	if string(sig.Signer) != string(signer) {
		t.Fatalf("Signer = %q, want %q", sig.Signer, signer)
	}
	if sig.IDType != PkeyIDPKCS7 {
		t.Fatalf("IDType = %d, want PkeyIDPKCS7", sig.IDType)
	}
}

func TestParseModuleSignatureNoTrailer(t *testing.T) {
	if _, _, err := ParseModuleSignature([]byte{1, 2, 3}); err != ErrNoModuleSignature {
		t.Fatalf("err = %v, want ErrNoModuleSignature", err)
	}
}

func TestParseModuleSignatureBadDescriptor(t *testing.T) {
	file := append([]byte("short"), []byte(sigMagic)...)
	if _, _, err := ParseModuleSignature(file); err != ErrBadModuleSignature {
		t.Fatalf("err = %v, want ErrBadModuleSignature", err)
	}
}
