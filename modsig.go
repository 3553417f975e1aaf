// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package elf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	"go.mozilla.org/pkcs7"
)

// sigMagic is the trailing marker a signed Linux kernel module (.ko) file
// ends with, appended by the kernel's sign-file tool after the module's
// own ELF content.
const sigMagic = "~Module signature appended~\n"

// Key identifier types, struct module_signature's id_type field.
const (
	PkeyIDPGP   uint8 = 0
	PkeyIDX509  uint8 = 1
	PkeyIDPKCS7 uint8 = 2
)

// ErrNoModuleSignature is returned by ParseModuleSignature when the file
// does not end with the module-signature trailer at all.
var ErrNoModuleSignature = errors.New("elf: no module signature trailer")

// ErrBadModuleSignature is returned when the trailer is present but its
// fixed-size descriptor does not agree with the file's total length.
var ErrBadModuleSignature = errors.New("elf: module signature descriptor size mismatch")

// ModuleSignature is the decoded struct module_signature descriptor plus
// the PKCS#7 blob it describes (spec §11.1): Linux kernel modules are
// themselves ELF relocatable objects with an out-of-band signature
// appended after their last byte of ELF content, rather than carried in
// any section or segment.
type ModuleSignature struct {
	Algo      uint8
	Hash      uint8
	IDType    uint8
	SignerLen uint8
	KeyIDLen  uint8
	SigLen    uint32

	Signer  []byte
	KeyID   []byte
	RawSig  []byte // the PKCS#7 signature blob itself
	Content *pkcs7.PKCS7
}

// descriptorSize is the on-disk size of struct module_signature: 5 tag
// bytes, 3 padding bytes, one big-endian uint32.
const descriptorSize = 12

// ParseModuleSignature looks for the module-signature trailer at the end
// of file and, if present, decodes it. elfEnd is the offset at which the
// module's own ELF content ends, i.e. len(file) minus the trailer.
func ParseModuleSignature(file []byte) (sig ModuleSignature, elfEnd int, err error) {
	if len(file) < len(sigMagic) || !bytes.HasSuffix(file, []byte(sigMagic)) {
		return ModuleSignature{}, 0, ErrNoModuleSignature
	}
	rest := file[:len(file)-len(sigMagic)]
	if len(rest) < descriptorSize {
		return ModuleSignature{}, 0, ErrBadModuleSignature
	}

	desc := rest[len(rest)-descriptorSize:]
	sig.Algo = desc[0]
	sig.Hash = desc[1]
	sig.IDType = desc[2]
	sig.SignerLen = desc[3]
	sig.KeyIDLen = desc[4]
	sig.SigLen = binary.BigEndian.Uint32(desc[8:12])

	body := rest[:len(rest)-descriptorSize]
	total := int(sig.SigLen) + int(sig.SignerLen) + int(sig.KeyIDLen)
	if total > len(body) {
		return ModuleSignature{}, 0, ErrBadModuleSignature
	}

	elfEnd = len(body) - total
	cursor := body[elfEnd:]
	sig.RawSig, cursor = cursor[:sig.SigLen], cursor[sig.SigLen:]
	sig.Signer, cursor = cursor[:sig.SignerLen], cursor[sig.SignerLen:]
	sig.KeyID = cursor[:sig.KeyIDLen]

	return sig, elfEnd, nil
}

// Parse decodes RawSig as a PKCS#7 SignedData structure, populating
// Content. It does not itself verify the signature; call Verify for that.
func (s *ModuleSignature) Parse() error {
	p7, err := pkcs7.Parse(s.RawSig)
	if err != nil {
		return err
	}
	s.Content = p7
	return nil
}

// ModuleCertInfo mirrors the subset of a signing certificate's fields a
// caller typically wants to display, the same projection the teacher's
// Authenticode verifier exposes for PE signing certificates.
type ModuleCertInfo struct {
	Issuer    string
	Subject   string
	NotBefore time.Time
	NotAfter  time.Time
}

// Verify checks that the PKCS#7 signature over moduleContent (the
// module's own ELF bytes, i.e. file[:elfEnd]) was produced by one of the
// certificates embedded in the signature, and returns the projected info
// of the first embedded certificate.
func (s *ModuleSignature) Verify(moduleContent []byte) (ModuleCertInfo, error) {
	if s.Content == nil {
		if err := s.Parse(); err != nil {
			return ModuleCertInfo{}, err
		}
	}
	s.Content.Content = moduleContent
	if err := s.Content.Verify(); err != nil {
		return ModuleCertInfo{}, err
	}
	if len(s.Content.Certificates) == 0 {
		return ModuleCertInfo{}, errors.New("elf: signature carries no certificates")
	}
	cert := s.Content.Certificates[0]
	return ModuleCertInfo{
		Issuer:    cert.Issuer.CommonName,
		Subject:   cert.Subject.CommonName,
		NotBefore: cert.NotBefore,
		NotAfter:  cert.NotAfter,
	}, nil
}
