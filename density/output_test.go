// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package density_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/plasmidlab/bio/circular"
	"github.com/plasmidlab/bio/density"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{0.5, "0.5"},
		{0.25, "0.25"},
		{2.0 / 1000, "0.002"},
		{1.0 / 5000, "0.0002"},
		{1.0 / 3, "0.3333333333333333"},
		{2.0 / 12, "0.16666666666666666"},
	}
	for _, test := range tests {
		expect.EQ(t, density.FormatValue(test.v), test.want, "value %v", test.v)
	}
}

func TestWriteBlock(t *testing.T) {
	points := []circular.Point{{Pos: 0, Value: 1}, {Pos: 4, Value: 0.25}}

	var buf bytes.Buffer
	w := density.NewWriter(&buf, true)
	assert.NoError(t, w.WriteBlock("pUC19.fa", points))
	assert.NoError(t, w.WriteBlock("pBR322.fa", points[:1]))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), "pUC19.fa\t0\t1\npUC19.fa\t4\t0.25\npBR322.fa\t0\t1\n")

	buf.Reset()
	w = density.NewWriter(&buf, false)
	assert.NoError(t, w.WriteBlock("ignored", points))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), "0\t1\n4\t0.25\n")

	buf.Reset()
	w = density.NewWriter(&buf, true)
	assert.NoError(t, w.WriteBlock("empty", nil))
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.Len(), 0)
}

func TestCreateOutputGzip(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "out.tsv.gz")
	out, err := density.CreateOutput(ctx, path, true)
	assert.NoError(t, err)
	assert.NoError(t, out.WriteBlock("p", []circular.Point{{Pos: 0, Value: 0.5}}))
	assert.NoError(t, out.Close(ctx))

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close() // nolint: errcheck
	gz, err := gzip.NewReader(f)
	assert.NoError(t, err)
	data, err := ioutil.ReadAll(gz)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "p\t0\t0.5\n")
}
