// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cclayout runs a directory of C record layout conformance tests
// against the modernc.org/cc/v4 front end and reports aggregate results.
package main // import "modernc.org/cclayout"

import (
	"fmt"
	"os"

	cclayout "modernc.org/cclayout/lib"
)

func main() {
	if err := cclayout.NewTask(os.Args, os.Stdout, os.Stderr, nil).Main(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
