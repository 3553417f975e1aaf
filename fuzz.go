// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build gofuzz

package elf

// Fuzz is the go-fuzz entry point: it feeds data through the full parse
// path and reports 1 when the result is worth prioritising as a corpus
// seed (a successful parse), 0 otherwise.
func Fuzz(data []byte) int {
	f, err := NewBytes(data, &Options{Fast: false})
	if err != nil {
		return 0
	}
	if err := f.Parse(); err != nil {
		return 0
	}
	return 1
}
