// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// WindowSpec describes the family of windows laid over a circular sequence.
type WindowSpec struct {
	// Size is the number of positions covered by each window.  It may exceed
	// the sequence length, in which case the window wraps around more than
	// once and some positions are counted repeatedly.
	Size int
	// Step is the distance between the starts of consecutive windows.
	Step int
}

// Point is the aggregate computed for one window.
type Point struct {
	// Pos is the window's starting offset in the original (unwrapped)
	// coordinates.
	Pos int
	// Value is in [0, 1].
	Value float64
}

// Predicate reports whether a per-position property holds at circular
// position pos, where 0 <= pos < n.
type Predicate func(pos int) bool

// Validate checks that spec can be applied to a sequence of length n.
func (spec WindowSpec) Validate(n int) error {
	if n <= 0 {
		return errors.E(errors.Invalid, "circular: empty sequence")
	}
	if spec.Step <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("circular: step size must be positive, got %d", spec.Step))
	}
	if spec.Size <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("circular: window size must be positive, got %d", spec.Size))
	}
	return nil
}

// NumWindows returns the number of windows Scan produces for a sequence of
// length n.  The division truncates: when Step does not divide n, the tail
// past the last full step never starts a window of its own.
func (spec WindowSpec) NumWindows(n int) int {
	if spec.Step <= 0 {
		return 0
	}
	return n / spec.Step
}

// Scan evaluates pred over every window of spec on a circular sequence of
// length n.  Window w covers positions [w*Step, w*Step+Size) modulo n, and its
// value is the number of positions in the window where pred holds, divided by
// Size.  Points are returned in increasing position order.
//
// Each window is recomputed from scratch; no state carries across windows.
func Scan(n int, spec WindowSpec, pred Predicate) ([]Point, error) {
	if err := spec.Validate(n); err != nil {
		return nil, err
	}
	nWindow := spec.NumWindows(n)
	points := make([]Point, nWindow)
	denom := float64(spec.Size)
	for w := 0; w < nWindow; w++ {
		start := w * spec.Step
		// start < n always holds, since w < n/Step.
		pos := start
		cnt := 0
		for i := 0; i < spec.Size; i++ {
			if pred(pos) {
				cnt++
			}
			pos++
			if pos == n {
				pos = 0
			}
		}
		points[w] = Point{Pos: start, Value: float64(cnt) / denom}
	}
	return points, nil
}
