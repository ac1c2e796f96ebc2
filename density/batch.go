// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/traverse"
	"github.com/plasmidlab/bio/circular"
)

// Block is the complete, position-ordered output for one record.
type Block struct {
	Label  string
	Points []circular.Point
}

// Result is the output for one batch entry.  Blocks holds one Block per
// record loaded from the entry, in load order.
type Result struct {
	ID     string
	Blocks []Block
	// Err is set when the entry could not be loaded or computed.
	Err error
}

// BatchOpts configures Batch.
type BatchOpts struct {
	// Parallelism is the number of worker goroutines; 0 = runtime.NumCPU().
	Parallelism int
	// SkipFailed logs and skips entries that fail instead of aborting the
	// batch.
	SkipFailed bool
}

type memoKey struct {
	hi, lo uint64
	n      int
}

// memo caches window results by sequence content, so that identical
// sequences listed more than once in a batch are only scanned once.  Metric
// and window spec are fixed for the lifetime of a memo.  Workers asking for a
// key that is still being computed wait for the first computation.
//
// Entries live until the batch ends; each holds one Point per window, which is
// small next to the sequence it summarizes.
type memo struct {
	mu sync.Mutex
	m  map[memoKey]*memoEntry
}

type memoEntry struct {
	once   sync.Once
	points []circular.Point
	err    error
}

func newMemo() *memo {
	return &memo{m: make(map[memoKey]*memoEntry)}
}

func (m *memo) compute(seq []byte, metric Metric, spec circular.WindowSpec) ([]circular.Point, error) {
	key := memoKey{n: len(seq)}
	key.hi, key.lo = farm.Fingerprint128(seq)
	m.mu.Lock()
	ent, ok := m.m[key]
	if !ok {
		ent = &memoEntry{}
		m.m[key] = ent
	}
	m.mu.Unlock()
	ent.once.Do(func() {
		ent.points, ent.err = Compute(seq, metric, spec)
	})
	return ent.points, ent.err
}

func computeEntry(ctx context.Context, id string, src Source, metric Metric, spec circular.WindowSpec, cache *memo) ([]Block, error) {
	recs, err := src.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	blocks := make([]Block, len(recs))
	for i, rec := range recs {
		points, err := cache.compute(rec.Seq, metric, spec)
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("density: %s (record %s)", id, rec.Name))
		}
		log.Debug.Printf("density: %s: %d bases, %d windows", rec.Name, len(rec.Seq), len(points))
		blocks[i] = Block{Label: rec.Name, Points: points}
	}
	return blocks, nil
}

// lowerFailedIdx atomically sets *p = min(*p, idx).
func lowerFailedIdx(p *int64, idx int64) {
	for {
		old := atomic.LoadInt64(p)
		if idx >= old || atomic.CompareAndSwapInt64(p, old, idx) {
			return
		}
	}
}

// Batch loads and scans every entry of ids with metric and spec, using a
// fixed pool of workers.  emit is called from a single goroutine, once per
// successful entry, in the order of ids; it therefore owns the output sink
// and never sees two entries interleaved.
//
// By default the first failing entry (in ids order) aborts the batch: entries
// before it have already been emitted, nothing after it is emitted, and its
// error is returned.  Workers skip entries listed after a known failure;
// entries listed before it still run to completion.  With opts.SkipFailed,
// failures are logged and skipped instead, except that a canceled ctx always
// fails the batch.
func Batch(ctx context.Context, ids []string, src Source, metric Metric, spec circular.WindowSpec, opts BatchOpts, emit func(Result) error) error {
	nJob := len(ids)
	if nJob == 0 {
		return nil
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > nJob {
		parallelism = nJob
	}
	jobCh := make(chan int, nJob)
	for i := range ids {
		jobCh <- i
	}
	close(jobCh)

	// Smallest index of a failed job.  Only jobs after it are skipped.
	failedIdx := int64(math.MaxInt64)

	var (
		e     = errors.Once{}
		oq    = syncqueue.NewOrderedQueue(2 * parallelism)
		cache = newMemo()
		wg    sync.WaitGroup
		nEmit int
		nSkip int
	)

	// The writer thread.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			val, ok, err := oq.Next()
			if err != nil {
				e.Set(err)
				return
			}
			if !ok {
				return
			}
			r := val.(Result)
			if e.Err() != nil {
				continue
			}
			if r.Err != nil {
				if !opts.SkipFailed {
					e.Set(r.Err)
					continue
				}
				// Cancellation ends the batch even when failures are skipped.
				if err := ctx.Err(); err != nil {
					e.Set(err)
					continue
				}
				log.Error.Printf("density.Batch: skipping %s: %v", r.ID, r.Err)
				nSkip++
				continue
			}
			if err := emit(r); err != nil {
				e.Set(err)
				continue
			}
			nEmit++
		}
	}()

	log.Printf("density.Batch: starting %d jobs (%s, window %d, step %d, parallelism %d)",
		nJob, metric.Name(), spec.Size, spec.Step, parallelism)
	err := traverse.Each(parallelism, func(int) error {
		for idx := range jobCh {
			r := Result{ID: ids[idx]}
			if int64(idx) < atomic.LoadInt64(&failedIdx) {
				if r.Err = ctx.Err(); r.Err == nil {
					r.Blocks, r.Err = computeEntry(ctx, r.ID, src, metric, spec, cache)
				}
				if r.Err != nil && (!opts.SkipFailed || ctx.Err() != nil) {
					lowerFailedIdx(&failedIdx, int64(idx))
				}
			} else {
				r.Err = errors.E(errors.Canceled, "density: skipped after earlier failure:", r.ID)
			}
			if err := oq.Insert(idx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if cerr := oq.Close(err); cerr != nil && err == nil {
		err = cerr
	}
	wg.Wait()
	if err != nil {
		e.Set(err)
	}
	if err := e.Err(); err != nil {
		return err
	}
	log.Printf("density.Batch: done, %d emitted, %d skipped", nEmit, nSkip)
	return nil
}
