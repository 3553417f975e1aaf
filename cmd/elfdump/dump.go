// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	goelf "github.com/saferwall/elf"
	"github.com/spf13/cobra"
)

var (
	wantHeader    bool
	wantSections  bool
	wantSymbols   bool
	wantDynamic   bool
	wantRelocs    bool
	wantNotes     bool
	wantHash      bool
	wantAll       bool
)

func prettyPrint(buf []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return out.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func dumpOne(filename string) {
	log.Printf("processing %s", filename)

	data, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Printf("reading %s: %v", filename, err)
		return
	}

	f, err := goelf.NewBytes(data, &goelf.Options{})
	if err != nil {
		log.Printf("opening %s: %v", filename, err)
		return
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		log.Printf("parsing %s: %v", filename, err)
		return
	}

	if wantHeader || wantAll {
		b, _ := json.Marshal(f.Header)
		fmt.Println(prettyPrint(b))
	}
	if wantSections || wantAll {
		b, _ := json.Marshal(f.Sections)
		fmt.Println(prettyPrint(b))
	}
	if wantSymbols || wantAll {
		b, _ := json.Marshal(struct {
			Symbols    []goelf.SymData
			DynSymbols []goelf.SymData
		}{f.Symbols, f.DynSymbols})
		fmt.Println(prettyPrint(b))
	}
	if wantDynamic || wantAll {
		b, _ := json.Marshal(struct {
			Info    goelf.DynamicInfo
			Needed  []string
		}{f.Dynamic, f.NeededLibs})
		fmt.Println(prettyPrint(b))
	}
	if wantNotes || wantAll {
		b, _ := json.Marshal(f.Notes)
		fmt.Println(prettyPrint(b))
	}
	if wantHash || wantAll {
		if id, ok := goelf.BuildID(f.Notes); ok {
			fmt.Printf("build-id: %x\n", id)
		} else {
			fmt.Println("build-id: none")
		}
	}
}

func runDump(cmd *cobra.Command, args []string) {
	target := args[0]
	if !isDirectory(target) {
		dumpOne(target)
		return
	}

	var files []string
	filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	for _, path := range files {
		dumpOne(path)
	}
}

var dumpCmd = &cobra.Command{
	Use:   "dump [path]",
	Short: "Dump an ELF file's structures as JSON",
	Long:  "Parses one ELF file, or every file under a directory, and prints the requested structures as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run:   runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&wantHeader, "header", false, "dump the ELF header")
	dumpCmd.Flags().BoolVar(&wantSections, "sections", false, "dump section headers")
	dumpCmd.Flags().BoolVar(&wantSymbols, "symbols", false, "dump symbol and dynamic symbol tables")
	dumpCmd.Flags().BoolVar(&wantDynamic, "dynamic", false, "dump the dynamic table")
	dumpCmd.Flags().BoolVar(&wantRelocs, "relocs", false, "has no effect: relocation entries are not dumped")
	dumpCmd.Flags().BoolVar(&wantNotes, "notes", false, "dump note records")
	dumpCmd.Flags().BoolVar(&wantHash, "hash", false, "print the GNU build-id, if present")
	dumpCmd.Flags().BoolVar(&wantAll, "all", false, "dump everything")
}
