// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"log"

	goelf "github.com/saferwall/elf"
	"github.com/spf13/cobra"
)

func runVerifyModSig(cmd *cobra.Command, args []string) {
	filename := args[0]
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Fatalf("reading %s: %v", filename, err)
	}

	sig, elfEnd, err := goelf.ParseModuleSignature(data)
	if err != nil {
		log.Fatalf("%s: %v", filename, err)
	}

	info, err := sig.Verify(data[:elfEnd])
	if err != nil {
		log.Fatalf("%s: signature verification failed: %v", filename, err)
	}

	fmt.Printf("signature OK, signed by %q (issuer %q)\n", info.Subject, info.Issuer)
}

var verifyModSigCmd = &cobra.Command{
	Use:   "verify-modsig [path]",
	Short: "Verify a Linux kernel module's appended PKCS#7 signature",
	Long:  "Parses the module-signature trailer appended to a signed kernel module and verifies it against its embedded certificates",
	Args:  cobra.ExactArgs(1),
	Run:   runVerifyModSig,
}
