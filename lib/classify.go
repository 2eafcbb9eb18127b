// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"strings"
)

// failure is the four-category classification of diagnostic failure for
// one (target, test) pair. Flags are a union over the task's qualifying
// diagnostics, not a count.
type failure struct {
	parse  bool
	layout bool
	extra  bool
	offset bool
}

func (f failure) any() bool { return f.parse || f.layout || f.extra || f.offset }

func (f failure) String() string {
	var a []string
	if f.parse {
		a = append(a, "parse")
	}
	if f.layout {
		a = append(a, "layout")
	}
	if f.extra {
		a = append(a, "extra")
	}
	if f.offset {
		a = append(a, "offset")
	}
	if len(a) == 0 {
		return "none"
	}

	return strings.Join(a, "+")
}

// classify derives the observed failure vector from one task's
// diagnostics. Only error and fatal severities participate. A static
// assertion of a shape outside the four the corpus uses panics: the
// corpus is curated, such a line means the classifier and the corpus are
// out of sync.
func classify(diags []Diag) (r failure) {
	for _, d := range diags {
		if d.Sev < SevError {
			continue
		}

		line := strings.ToLower(d.LineText)
		if !strings.Contains(line, "static_assert") {
			r.parse = true
			continue
		}

		switch {
		case strings.Contains(line, "extra"):
			r.extra = true
		case strings.Contains(line, "bitoffsetof"):
			r.offset = true
		case strings.Contains(line, "sizeof"), strings.Contains(line, "alignof"):
			r.layout = true
		default:
			panic(todo("internal error: unclassifiable static assertion: %q", d.LineText))
		}
	}
	return r
}
