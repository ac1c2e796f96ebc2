// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"fmt"

	"github.com/grailbio/base/bitset"
	"github.com/grailbio/base/errors"
)

// baseUnknown is the complement of every byte outside {A, C, G, T}.  It never
// appears in a normalized sequence, so it never matches.
const baseUnknown = 0

var complementTable = func() (t [256]byte) {
	t['A'] = 'T'
	t['C'] = 'G'
	t['G'] = 'C'
	t['T'] = 'A'
	return
}()

// Complement returns the Watson-Crick complement of an uppercase base, or 0
// for anything else.
func Complement(base byte) byte {
	return complementTable[base]
}

// isPalindromeAt checks whether seq[start:start+k] (taken circularly) is its
// own reverse complement.  For odd k the middle base is unconstrained.
//
// REQUIRES: 0 <= start < len(seq), 0 < k <= len(seq).
func isPalindromeAt(seq []byte, start, k int) bool {
	n := len(seq)
	lo := start
	hi := start + k - 1
	if hi >= n {
		hi -= n
	}
	for j := k / 2; j != 0; j-- {
		c := complementTable[seq[lo]]
		if c == baseUnknown || c != seq[hi] {
			return false
		}
		lo++
		if lo == n {
			lo = 0
		}
		hi--
		if hi < 0 {
			hi = n - 1
		}
	}
	return true
}

// PalindromeFlags returns a bitset with bit i set iff the length-k circular
// substring of seq starting at i is self-complementary.  Pairs involving a
// base outside {A, C, G, T} never match.
func PalindromeFlags(seq []byte, k int) ([]uintptr, error) {
	n := len(seq)
	if n == 0 {
		return nil, errors.E(errors.Invalid, "density: empty sequence")
	}
	if k <= 0 || k > n {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("density: palindrome length k=%d must be in [1, %d]", k, n))
	}
	flags := make([]uintptr, (n+bitset.BitsPerWord-1)/bitset.BitsPerWord)
	for i := 0; i < n; i++ {
		if isPalindromeAt(seq, i, k) {
			bitset.Set(flags, i)
		}
	}
	return flags, nil
}
