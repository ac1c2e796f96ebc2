// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Run computes the configured metric for a single input or a batch manifest
// and writes the result rows to opts.Output.
//
// Row layout:
//
//	single gc:          label  position  value
//	single palindrome:  position  value
//	batch (either):     label  position  value
//
// Single palindrome runs keep the label column when PerRecord is set, since
// rows from different records would be indistinguishable otherwise.
func Run(ctx context.Context, opts Opts) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	metric, err := ParseMetric(opts.Metric, opts.K)
	if err != nil {
		return err
	}
	src := FileSource{Label: opts.labelMode(), PerRecord: opts.PerRecord}
	log.Debug.Printf("density: %s, window %d, step %d, labels by %s, per-record %v",
		metric.Name(), opts.WindowSize, opts.StepSize, src.Label, opts.PerRecord)
	if opts.Input != "" {
		withLabel := opts.Metric == MetricGC || opts.PerRecord
		return runSingle(ctx, opts, src, metric, withLabel)
	}
	return runBatch(ctx, opts, src, metric)
}

func runSingle(ctx context.Context, opts Opts, src Source, metric Metric, withLabel bool) (err error) {
	spec := opts.WindowSpec()
	recs, err := src.Load(ctx, opts.Input)
	if err != nil {
		return err
	}
	// Everything is computed before the destination is touched, so a failed
	// run leaves no output behind.
	blocks := make([]Block, len(recs))
	for i, rec := range recs {
		points, err := Compute(rec.Seq, metric, spec)
		if err != nil {
			return errors.E(err, fmt.Sprintf("density: %s (record %s)", opts.Input, rec.Name))
		}
		blocks[i] = Block{Label: rec.Name, Points: points}
	}
	out, err := CreateOutput(ctx, opts.Output, withLabel)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	for _, b := range blocks {
		if err = out.WriteBlock(b.Label, b.Points); err != nil {
			return err
		}
	}
	log.Printf("density: %s: wrote %d block(s) to %s", opts.Input, len(blocks), outputName(opts.Output))
	return nil
}

func runBatch(ctx context.Context, opts Opts, src Source, metric Metric) (err error) {
	ids, err := ReadManifest(ctx, opts.Files)
	if err != nil {
		return err
	}
	out, err := CreateOutput(ctx, opts.Output, true)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	bopts := BatchOpts{Parallelism: opts.Parallelism, SkipFailed: opts.SkipFailed}
	return Batch(ctx, ids, src, metric, opts.WindowSpec(), bopts, func(r Result) error {
		for _, b := range r.Blocks {
			if err := out.WriteBlock(b.Label, b.Points); err != nil {
				return err
			}
		}
		return nil
	})
}

func outputName(path string) string {
	if path == "" || path == "-" {
		return "stdout"
	}
	return path
}
