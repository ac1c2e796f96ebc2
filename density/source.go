// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/plasmidlab/bio/encoding/fasta"
)

// Record is one circular sequence loaded from a source.
type Record struct {
	// Name labels the record in the output.
	Name string
	// Seq holds uppercase nucleotide symbols.
	Seq []byte
}

// Source loads the sequence(s) identified by id.  Load errors should name id.
type Source interface {
	Load(ctx context.Context, id string) ([]Record, error)
}

// LabelMode controls how a record's label is derived from its path.
type LabelMode int

const (
	// LabelDefault picks LabelBase for the gc metric and LabelPath for the
	// palindrome metric.
	LabelDefault LabelMode = iota
	// LabelBase labels records with the final path component.
	LabelBase
	// LabelPath labels records with the path exactly as given.
	LabelPath
)

// ParseLabelMode parses "base" or "path".  The empty string maps to
// LabelDefault.
func ParseLabelMode(s string) (LabelMode, error) {
	switch s {
	case "":
		return LabelDefault, nil
	case "base":
		return LabelBase, nil
	case "path":
		return LabelPath, nil
	}
	return LabelDefault, errors.E(errors.Invalid, fmt.Sprintf("density: unknown label mode %q (want \"base\" or \"path\")", s))
}

func (m LabelMode) String() string {
	switch m {
	case LabelBase:
		return "base"
	case LabelPath:
		return "path"
	}
	return "default"
}

// FileSource reads FASTA files through grailbio/base/file, so any registered
// file implementation works.  Paths ending in ".gz" are decompressed.
type FileSource struct {
	// Label controls the record label; LabelDefault behaves as LabelBase.
	Label LabelMode
	// PerRecord treats every FASTA record as its own sequence, labeled
	// "<label>:<record name>".  Otherwise all sequence lines in the file are
	// concatenated into a single record.
	PerRecord bool
}

func (s FileSource) label(path string) string {
	if s.Label == LabelPath {
		return path
	}
	return filepath.Base(path)
}

// openReader opens path for reading, transparently decompressing gzip input.
// The returned closer must be called once the reader is no longer needed.
func openReader(ctx context.Context, path string) (r io.Reader, closer func() error, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, nil, err
	}
	r = in.Reader(ctx)
	closer = func() error { return in.Close(ctx) }
	if strings.HasSuffix(path, ".gz") {
		gz, e := gzip.NewReader(r)
		if e != nil {
			_ = in.Close(ctx)
			return nil, nil, e
		}
		r = gz
		closer = func() error {
			err := gz.Close()
			if e := in.Close(ctx); e != nil && err == nil {
				err = e
			}
			return err
		}
	}
	return r, closer, nil
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context, path string) (recs []Record, err error) {
	r, closer, err := openReader(ctx, path)
	if err != nil {
		return nil, errors.E(err, "density: open", path)
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = errors.E(e, "density: close", path)
		}
	}()
	label := s.label(path)
	if !s.PerRecord {
		seq, err := fasta.Concat(r)
		if err != nil {
			return nil, errors.E(err, "density: read", path)
		}
		return []Record{{Name: label, Seq: seq}}, nil
	}
	fa, err := fasta.New(r)
	if err != nil {
		return nil, errors.E(err, "density: read", path)
	}
	for _, name := range fa.SeqNames() {
		rec := Record{Name: label + ":" + name}
		n, err := fa.Len(name)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			seq, err := fa.Get(name, 0, n)
			if err != nil {
				return nil, err
			}
			rec.Seq = []byte(seq)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ReadManifest reads a newline-delimited list of source paths.  Surrounding
// whitespace is trimmed and blank lines are skipped.
func ReadManifest(ctx context.Context, path string) (ids []string, err error) {
	r, closer, err := openReader(ctx, path)
	if err != nil {
		return nil, errors.E(err, "density: open manifest", path)
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.E(err, "density: read manifest", path)
	}
	return ids, nil
}
