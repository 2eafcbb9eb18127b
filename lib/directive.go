// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"bufio"
	"bytes"
	"strings"
)

// A TestCase pairs one macro define with one target string. Each TestCase
// runs as an independent task.
type TestCase struct {
	Define string
	Target string
}

const mappingMarker = "// MAPPING|"

// scanDirectives extracts the (define, target) pairs from one test file.
// A mapping line has the form
//
//	// MAPPING|<define>|<target1>|<target2>|...|END
//
// Tokens after END are ignored. A mapping line with fewer than two
// segments after the marker is a corpus format violation.
func scanDirectives(name string, src []byte) (r []TestCase, err error) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, mappingMarker) {
			continue
		}

		toks := strings.Split(strings.TrimPrefix(line, "// "), "|")
		// toks[0] is the MAPPING marker itself.
		if len(toks) < 3 {
			return nil, errorf("%s:%d: malformed mapping directive: %q", name, ln, line)
		}

		define := toks[1]
		for _, tok := range toks[2:] {
			if strings.HasPrefix(tok, "END") {
				break
			}

			r = append(r, TestCase{Define: define, Target: tok})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errorf("%s: %v", name, err)
	}

	return r, nil
}
