// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "elfdump",
	Short: "An ELF object file inspector",
	Long:  "A zero-copy ELF parser and inspector, built for toolchain and malware-analysis work by Saferwall",
}

func main() {
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(verifyModSigCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version number",
	Long:  "Print version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("You are using version 0.1.0")
	},
}
