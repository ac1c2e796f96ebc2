// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/plasmidlab/bio/circular"
)

// Opts holds the options for Run.  Field tags name the keys accepted in a
// TOML config file.
type Opts struct {
	// Metric is "gc" or "palindrome".
	Metric string `toml:"metric"`
	// Input is the path of a single FASTA file.  Exactly one of Input and
	// Files must be set.
	Input string `toml:"input"`
	// Files is the path of a batch manifest listing one FASTA path per line.
	Files string `toml:"files"`
	// Output is the destination path; "" or "-" means stdout.
	Output string `toml:"output"`

	WindowSize int `toml:"window_size"`
	StepSize   int `toml:"step_size"`
	// K is the palindrome length.  Required by the palindrome metric, ignored
	// otherwise.
	K int `toml:"k"`

	Parallelism int `toml:"parallelism"`
	// Label is "base", "path", or "" for the metric's default.
	Label      string `toml:"label"`
	PerRecord  bool   `toml:"per_record"`
	SkipFailed bool   `toml:"skip_failed"`
}

// DefaultOpts holds the default option values.
var DefaultOpts = Opts{
	Metric:      MetricGC,
	WindowSize:  5000,
	StepSize:    1000,
	K:           0,
	Parallelism: 0,
}

// LoadConfig decodes the TOML file at path on top of opts.  Keys that don't
// correspond to an Opts field are rejected.
func LoadConfig(ctx context.Context, path string, opts *Opts) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, "density: open config", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	md, err := toml.NewDecoder(in.Reader(ctx)).Decode(opts)
	if err != nil {
		return errors.E(errors.Invalid, err, "density: parse config", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.E(errors.Invalid, fmt.Sprintf("density: config %s: unknown keys %s", path, strings.Join(keys, ", ")))
	}
	return nil
}

// Validate checks opts for consistency.
func (o *Opts) Validate() error {
	if _, err := ParseMetric(o.Metric, o.K); err != nil {
		return err
	}
	if (o.Input == "") == (o.Files == "") {
		return errors.E(errors.Invalid, "density: exactly one of input and files must be set")
	}
	if o.WindowSize <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("density: window size must be positive, got %d", o.WindowSize))
	}
	if o.StepSize <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("density: step size must be positive, got %d", o.StepSize))
	}
	if o.Parallelism < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("density: parallelism must be non-negative, got %d", o.Parallelism))
	}
	if _, err := ParseLabelMode(o.Label); err != nil {
		return err
	}
	return nil
}

// WindowSpec returns the window layout described by opts.
func (o *Opts) WindowSpec() circular.WindowSpec {
	return circular.WindowSpec{Size: o.WindowSize, Step: o.StepSize}
}

// labelMode resolves LabelDefault for the configured metric.
func (o *Opts) labelMode() LabelMode {
	mode, _ := ParseLabelMode(o.Label)
	if mode != LabelDefault {
		return mode
	}
	// Palindrome rows carry the manifest path; gc rows the file's base name.
	if o.Metric == MetricPalindrome {
		return LabelPath
	}
	return LabelBase
}
