// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
	"github.com/plasmidlab/bio/circular"
)

// FormatValue renders a window value as the shortest decimal string that
// parses back to v, without an exponent ("1", "0.5", "0.0002").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Writer appends density rows to a TSV stream.  It is not thread-safe; the
// batch coordinator funnels all blocks through a single goroutine.
type Writer struct {
	tsvw      *tsv.Writer
	withLabel bool
}

// NewWriter returns a Writer on w.  When withLabel is false the label column
// is omitted.
func NewWriter(w io.Writer, withLabel bool) *Writer {
	return &Writer{tsvw: tsv.NewWriter(w), withLabel: withLabel}
}

// WriteBlock writes one row per point.
func (w *Writer) WriteBlock(label string, points []circular.Point) error {
	for _, p := range points {
		if w.withLabel {
			w.tsvw.WriteString(label)
		}
		w.tsvw.WriteInt64(int64(p.Pos))
		w.tsvw.WriteString(FormatValue(p.Value))
		if err := w.tsvw.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered rows to the underlying stream.
func (w *Writer) Flush() error {
	return w.tsvw.Flush()
}

// Output is a Writer bound to a destination path.
type Output struct {
	*Writer
	path string
	f    file.File // nil for stdout
	gz   *gzip.Writer
}

// CreateOutput creates the destination at path.  "" and "-" write to stdout;
// paths ending in ".gz" are gzip-compressed.
func CreateOutput(ctx context.Context, path string, withLabel bool) (*Output, error) {
	o := &Output{path: path}
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := file.Create(ctx, path)
		if err != nil {
			return nil, errors.E(err, "density: create", path)
		}
		o.f = f
		w = f.Writer(ctx)
		if strings.HasSuffix(path, ".gz") {
			o.gz = gzip.NewWriter(w)
			w = o.gz
		}
	}
	o.Writer = NewWriter(w, withLabel)
	return o, nil
}

// Close flushes buffered rows and closes the destination.
func (o *Output) Close(ctx context.Context) error {
	err := o.Flush()
	if o.gz != nil {
		if e := o.gz.Close(); e != nil && err == nil {
			err = e
		}
	}
	if o.f != nil {
		if e := o.f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}
	if err != nil {
		return errors.E(err, "density: write", o.path)
	}
	return nil
}
