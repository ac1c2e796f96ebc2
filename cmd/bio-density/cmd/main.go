// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"flag"
	"fmt"
	golog "log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/plasmidlab/bio/density"
	"v.io/x/lib/cmdline"
)

// densityFlags holds the values of a subcommand's flags.  Only flags set on
// the command line are applied on top of the -config file.
type densityFlags struct {
	opts   density.Opts
	config string
}

func registerFlags(fs *flag.FlagSet, metric string) *densityFlags {
	f := &densityFlags{opts: density.DefaultOpts}
	f.opts.Metric = metric
	fs.StringVar(&f.config, "config", "", "TOML file holding default values for the flags below")
	fs.StringVar(&f.opts.Input, "input", "", "Input FASTA path; this xor -files required")
	fs.StringVar(&f.opts.Files, "files", "", "Manifest listing one input FASTA path per line; this xor -input required")
	fs.StringVar(&f.opts.Output, "output", "", `Output TSV path; "" or "-" writes to stdout, a ".gz" suffix compresses`)
	fs.IntVar(&f.opts.WindowSize, "window-size", density.DefaultOpts.WindowSize, "Number of bases in each window")
	fs.IntVar(&f.opts.WindowSize, "w", density.DefaultOpts.WindowSize, "Shorthand for -window-size")
	fs.IntVar(&f.opts.StepSize, "step-size", density.DefaultOpts.StepSize, "Distance between consecutive window starts")
	fs.IntVar(&f.opts.StepSize, "s", density.DefaultOpts.StepSize, "Shorthand for -step-size")
	if metric == density.MetricPalindrome {
		fs.IntVar(&f.opts.K, "k", density.DefaultOpts.K, "Palindrome length; required")
	}
	fs.IntVar(&f.opts.Parallelism, "parallelism", density.DefaultOpts.Parallelism, "Number of manifest entries processed concurrently; 0 = runtime.NumCPU()")
	fs.StringVar(&f.opts.Label, "label", "", `Row label: "base" for the file name, "path" for the path as given. Default is "base" for gc and "path" for palindrome`)
	fs.BoolVar(&f.opts.PerRecord, "per-record", false, "Treat each FASTA record as its own sequence instead of concatenating them")
	fs.BoolVar(&f.opts.SkipFailed, "skip-failed", false, "Log and skip manifest entries that fail instead of aborting")
	return f
}

// resolve merges the -config file, if any, with the flags explicitly set in
// fs.  The subcommand always determines the metric.
func (f *densityFlags) resolve(ctx context.Context, fs *flag.FlagSet) (density.Opts, error) {
	metric := f.opts.Metric
	opts := density.DefaultOpts
	opts.Metric = metric
	if f.config != "" {
		if err := density.LoadConfig(ctx, f.config, &opts); err != nil {
			return opts, err
		}
		if opts.Metric != metric {
			return opts, errors.E(errors.Invalid, fmt.Sprintf("config %s sets metric %q, but the command is %q", f.config, opts.Metric, metric))
		}
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "input":
			opts.Input = f.opts.Input
		case "files":
			opts.Files = f.opts.Files
		case "output":
			opts.Output = f.opts.Output
		case "window-size", "w":
			opts.WindowSize = f.opts.WindowSize
		case "step-size", "s":
			opts.StepSize = f.opts.StepSize
		case "k":
			opts.K = f.opts.K
		case "parallelism":
			opts.Parallelism = f.opts.Parallelism
		case "label":
			opts.Label = f.opts.Label
		case "per-record":
			opts.PerRecord = f.opts.PerRecord
		case "skip-failed":
			opts.SkipFailed = f.opts.SkipFailed
		}
	})
	return opts, opts.Validate()
}

func newCmdMetric(metric, short string) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  metric,
		Short: short,
	}
	flags := registerFlags(&cmd.Flags, metric)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("%s takes no positional arguments, but got %v", metric, argv)
		}
		ctx := vcontext.Background()
		opts, err := flags.resolve(ctx, &cmd.Flags)
		if err != nil {
			return err
		}
		if err := density.Run(ctx, opts); err != nil {
			return err
		}
		log.Debug.Printf("exiting")
		return nil
	})
	return cmd
}

func Run() {
	golog.SetFlags(golog.Ldate | golog.Ltime | golog.Lmicroseconds | golog.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-density",
			Short:    "Sliding-window statistics over circular sequences",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdMetric(density.MetricGC, "Compute windowed GC content"),
				newCmdMetric(density.MetricPalindrome, "Compute windowed reverse-complement palindrome density"),
			},
		})
}
