// Package fasta contains code for parsing FASTA files holding circular
// sequences.  FASTA files consist of a number of named sequences that may be
// interrupted by newlines.  For example:
//
// >pUC19
// TCGCGCGTTT
// CGGTGATGAC
// GG
// >pBR322
// TTCTCATGTT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>pUC19 cloning vector' becomes 'pUC19'.
//
// Sequence lines are trimmed of surrounding whitespace and uppercased, so
// callers only ever see 'A', 'C', 'G', 'T' and whatever other symbols the file
// contains, in upper case.
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// appendSeqLine appends the trimmed, uppercased content of line to dst.
func appendSeqLine(dst, line []byte) []byte {
	line = bytes.TrimSpace(line)
	start := len(dst)
	dst = append(dst, line...)
	for i := start; i < len(dst); i++ {
		if c := dst[i]; c >= 'a' && c <= 'z' {
			dst[i] = c - ('a' - 'A')
		}
	}
	return dst
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory.  Sequence names must be unique.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seqName string
	var seq []byte
	started := false
	store := func() error {
		if _, ok := f.seqs[seqName]; ok {
			return errors.Errorf("duplicate sequence name: %s", seqName)
		}
		f.seqs[seqName] = string(seq)
		f.seqNames = append(f.seqNames, seqName)
		seq = seq[:0]
		return nil
	}
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if started {
				if err := store(); err != nil {
					return nil, err
				}
			} else if len(seq) != 0 {
				return nil, errors.Errorf("malformed FASTA file: sequence data before first header")
			}
			seqName = strings.Split(string(line[1:]), " ")[0]
			started = true
		} else {
			seq = appendSeqLine(seq, line)
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if !started {
		if len(seq) == 0 {
			return nil, errors.Errorf("empty FASTA file")
		}
		return nil, errors.Errorf("malformed FASTA file: no sequence header")
	}
	if err := store(); err != nil {
		return nil, err
	}
	return f, nil
}

// Concat reads every sequence line from r, skipping header lines (those
// beginning with '>'), and returns their trimmed, uppercased contents
// concatenated in file order.  Files holding a single plasmid with no header
// at all are accepted.
func Concat(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seq []byte
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) != 0 && line[0] == '>' {
			continue
		}
		seq = appendSeqLine(seq, line)
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	return seq, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seq string) (uint64, error) {
	s, ok := f.seqs[seq]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seq)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
