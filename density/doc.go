// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
Package density computes sliding-window statistics over circular nucleotide
sequences such as plasmids.

Two metrics are supported:

  - GC: the fraction of G/C bases in each window.
  - Palindrome: the fraction of window positions at which a length-k
    self-complementary (reverse-complement palindromic) substring starts.

Windows are laid out by circular.Scan: with window size w and step size s,
a sequence of length n yields n/s windows (integer division), the window
starting at i*s covering positions [i*s, i*s+w) modulo n.

Results are written as tab-separated rows, either "<position>\t<value>" or
"<label>\t<position>\t<value>".  In batch mode, sequences listed in a
manifest are processed by a fixed pool of workers; a single writer emits each
sequence's rows as one contiguous block, in manifest order.
*/
package density
