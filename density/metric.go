// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"fmt"

	"github.com/grailbio/base/bitset"
	"github.com/grailbio/base/errors"
	"github.com/plasmidlab/bio/circular"
)

// Metric names accepted by ParseMetric.
const (
	MetricGC         = "gc"
	MetricPalindrome = "palindrome"
)

// Metric is a per-position property of a sequence.  The window scan counts
// the positions where it holds.
type Metric interface {
	// Name returns the metric's name, e.g. "gc".
	Name() string
	// Prepare performs any per-sequence precomputation and returns the
	// predicate evaluated by the window scan.  seq must not be modified while
	// the predicate is in use.
	Prepare(seq []byte) (circular.Predicate, error)
}

// gcTable[b] is true iff b is 'G' or 'C'.
var gcTable = func() (t [256]bool) {
	t['G'] = true
	t['C'] = true
	return
}()

// GC flags G and C bases.  Every other symbol, including ambiguity codes,
// counts as non-GC.
type GC struct{}

// Name implements Metric.
func (GC) Name() string { return MetricGC }

// Prepare implements Metric.  No precomputation is needed.
func (GC) Prepare(seq []byte) (circular.Predicate, error) {
	return func(pos int) bool { return gcTable[seq[pos]] }, nil
}

// Palindrome flags the start positions of length-K circular substrings which
// equal their own reverse complement.
type Palindrome struct {
	K int
}

// Name implements Metric.
func (Palindrome) Name() string { return MetricPalindrome }

// Prepare implements Metric.  It computes the palindrome flags for every
// start position of seq up front, in O(n*K) time.
func (p Palindrome) Prepare(seq []byte) (circular.Predicate, error) {
	flags, err := PalindromeFlags(seq, p.K)
	if err != nil {
		return nil, err
	}
	return func(pos int) bool { return bitset.Test(flags, pos) }, nil
}

// ParseMetric returns the metric with the given name.  k is only used by the
// palindrome metric.
func ParseMetric(name string, k int) (Metric, error) {
	switch name {
	case MetricGC:
		return GC{}, nil
	case MetricPalindrome:
		if k <= 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("density: palindrome metric requires k > 0, got %d", k))
		}
		return Palindrome{K: k}, nil
	}
	return nil, errors.E(errors.Invalid, fmt.Sprintf("density: unknown metric %q", name))
}

// Compute runs metric over every window of spec on the circular sequence seq.
func Compute(seq []byte, metric Metric, spec circular.WindowSpec) ([]circular.Point, error) {
	if err := spec.Validate(len(seq)); err != nil {
		return nil, err
	}
	pred, err := metric.Prepare(seq)
	if err != nil {
		return nil, err
	}
	return circular.Scan(len(seq), spec, pred)
}
