// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import "github.com/plasmidlab/bio/cmd/bio-density/cmd"

func main() {
	cmd.Run()
}
