// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
bio-density computes sliding-window statistics over circular sequences such
as plasmids.  Windows that run past the end of a sequence wrap around to its
start.

Two statistics are supported:

	gc          fraction of G/C bases in each window
	palindrome  fraction of window positions that start a length-k reverse
	            complement palindrome

Each command reads either a single FASTA file (-input) or a manifest listing
one FASTA path per line (-files), and writes tab-separated rows of
label, window start and value.  Single-file palindrome output omits the
label column.  Manifest entries are processed in parallel but written in
manifest order.

Sample usage:

	bio-density gc -input pUC19.fa -window-size 500 -step-size 100
	bio-density palindrome -files plasmids.txt -k 6 -output pal.tsv.gz
	bio-density palindrome -config density.toml -parallelism 8

Options may also be read from a TOML file given by -config.  Keys are the
snake_case flag names (window_size, step_size, skip_failed, ...).  Flags given
on the command line override the file.
*/
package main
