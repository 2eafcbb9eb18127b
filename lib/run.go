// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Task verdicts. Drops and anomalies never count towards ok/fail/skip.
const (
	verdictAnomaly = "anomaly"
	verdictDrop    = "drop"
	verdictFail    = "fail"
	verdictOk      = "ok"
	verdictSkip    = "skip"
)

// run1 executes one (file, define, target) combination to completion:
// acquire a scratch block, drive the compiler under test, classify, record
// exactly one verdict, release the block. Release runs on every exit path.
// Panics are internal-invariant violations and abort the whole run.
func (t *Task) run1(p *parallel, pool *blockPool, path string, src []byte, tc TestCase) {
	defer func() {
		if e := recover(); e != nil {
			trc("%s: %s: %s: PANIC: %v\n%s", path, tc.Define, tc.Target, e, debug.Stack())
			os.Exit(1)
		}
	}()

	blk := pool.get()

	defer pool.put(blk)

	a := newArena(blk)

	defer func() { p.bump(uint64(a.use())) }()

	v := t.run2(p, a, path, src, tc)
	if t.report != nil {
		t.report(path, tc, v)
	}
}

func (t *Task) run2(p *parallel, a *arena, path string, src []byte, tc TestCase) string {
	target, err := DecodeTarget(tc.Target)
	if err != nil {
		// Not scored in any way.
		if t.verbose {
			fmt.Fprintf(t.stderr, "%s: %s: dropped: %v\n", path, tc.Define, err)
		}
		p.drop()
		return verdictDrop
	}

	if !target.Supported() {
		p.drop()
		return verdictDrop
	}

	s := t.newSession(a)
	if err := s.SetTarget(target); err != nil {
		p.fail()
		p.err(errorf("%s: %s: %s: %v", path, tc.Define, tc.Target, err))
		return verdictFail
	}

	primary, err := s.AddUnit(path, src)
	if err != nil {
		p.fail()
		p.err(errorf("%s: %s: %s: %v", path, tc.Define, tc.Target, err))
		return verdictFail
	}

	defs := fmt.Sprintf("#define %s 1\n", tc.Define)
	if target.Compiler == CompilerMsvc {
		// MS language extensions are on for the emulated MSVC.
		defs += "#define MSVC 1\n#define _MSC_VER 1933\n"
	}
	cmdline, err := s.AddUnit("<command-line>", []byte(defs))
	if err != nil {
		p.fail()
		p.err(errorf("%s: %s: %s: %v", path, tc.Define, tc.Target, err))
		return verdictFail
	}

	if err := s.Preprocess(cmdline); err != nil {
		p.fail()
		p.err(errorf("%s: %s: %s: %v", path, tc.Define, tc.Target, err))
		return verdictFail
	}

	if err := s.Preprocess(primary); err != nil {
		// Malformed-encoding fixtures are expected, not scored.
		if d := s.Diags(); len(d) != 0 && d[len(d)-1].Msg == "invalid encoding" {
			p.drop()
			return verdictDrop
		}

		p.fail()
		p.err(errorf("%s: %s: %s: %v", path, tc.Define, tc.Target, err))
		return verdictFail
	}

	// The tree is discarded, parse diagnostics feed classification below.
	s.Parse()

	base := baseName(path)
	if _, ok := excluded[base]; ok {
		p.skip()
		return verdictSkip
	}

	expected := expectedFor(tc.Target, base)
	diags := s.Diags()
	hard := 0
	for _, d := range diags {
		if d.Sev >= SevError {
			hard++
		}
	}
	if hard == 0 && expected.any() {
		// Soft pass-with-warning, logged but not scored.
		p.anomaly()
		trc("%s: %s: %s: expected failure (%v) did not materialize", path, tc.Define, tc.Target, expected)
		return verdictAnomaly
	}

	observed := classify(diags)
	switch {
	case observed != expected:
		p.fail()
		p.err(errorf("%s: %s: %s: observed %v, expected %v\n%s", path, tc.Define, tc.Target, observed, expected, renderDiags(diags)))
		return verdictFail
	case observed.any():
		// Anticipated, known failure.
		p.skip()
		return verdictSkip
	default:
		p.ok()
		return verdictOk
	}
}

// baseName returns the test name of a corpus file: the file name, without
// extension, up to its first underscore.
func baseName(path string) string {
	b := filepath.Base(path)
	b = strings.TrimSuffix(b, filepath.Ext(b))
	if x := strings.IndexByte(b, '_'); x >= 0 {
		b = b[:x]
	}
	return b
}

func renderDiags(diags []Diag) string {
	var sb strings.Builder
	for _, d := range diags {
		if d.Sev < SevError {
			continue
		}

		switch {
		case d.Unit == "":
			fmt.Fprintf(&sb, "\t%s\n", d.Msg)
		default:
			fmt.Fprintf(&sb, "\t%s:%d: %s\n", d.Unit, d.Line, d.Msg)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
