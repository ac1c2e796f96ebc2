// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides sliding-window scans over circular sequences
// such as plasmids, where position n-1 is followed by position 0.
package circular
