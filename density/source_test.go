// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/plasmidlab/bio/density"
)

func writeFile(t *testing.T, path, data string) {
	assert.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func writeGzipFile(t *testing.T, path, data string) {
	f, err := os.Create(path)
	assert.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(data))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, f.Close())
}

func TestFileSource(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	plain := filepath.Join(tmpdir, "pA.fa")
	writeFile(t, plain, ">seq1 first\nacgt\nNN\n>seq2\n  GGCC \n")
	gz := filepath.Join(tmpdir, "pB.fa.gz")
	writeGzipFile(t, gz, ">pB\nAAAA\nTTTT\n")

	recs, err := density.FileSource{}.Load(ctx, plain)
	assert.NoError(t, err)
	expect.EQ(t, recs, []density.Record{{Name: "pA.fa", Seq: []byte("ACGTNNGGCC")}})

	recs, err = density.FileSource{Label: density.LabelPath}.Load(ctx, gz)
	assert.NoError(t, err)
	expect.EQ(t, recs, []density.Record{{Name: gz, Seq: []byte("AAAATTTT")}})

	recs, err = density.FileSource{PerRecord: true}.Load(ctx, plain)
	assert.NoError(t, err)
	expect.EQ(t, recs, []density.Record{
		{Name: "pA.fa:seq1", Seq: []byte("ACGTNN")},
		{Name: "pA.fa:seq2", Seq: []byte("GGCC")},
	})

	missing := filepath.Join(tmpdir, "missing.fa")
	_, err = density.FileSource{}.Load(ctx, missing)
	assert.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), missing)
}

func TestParseLabelMode(t *testing.T) {
	for s, want := range map[string]density.LabelMode{
		"":     density.LabelDefault,
		"base": density.LabelBase,
		"path": density.LabelPath,
	} {
		got, err := density.ParseLabelMode(s)
		assert.NoError(t, err)
		expect.EQ(t, got, want)
		if s != "" {
			expect.EQ(t, got.String(), s)
		}
	}
	expect.EQ(t, density.LabelDefault.String(), "default")
	_, err := density.ParseLabelMode("name")
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestReadManifest(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "files.txt")
	writeFile(t, path, "a.fa\n\n  b.fa  \nsub/c.fa")
	ids, err := density.ReadManifest(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, ids, []string{"a.fa", "b.fa", "sub/c.fa"})

	empty := filepath.Join(tmpdir, "empty.txt")
	writeFile(t, empty, "\n \n")
	ids, err = density.ReadManifest(ctx, empty)
	assert.NoError(t, err)
	expect.EQ(t, len(ids), 0)

	_, err = density.ReadManifest(ctx, filepath.Join(tmpdir, "nope.txt"))
	assert.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "nope.txt")
}
