// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cclayout implements the cclayout command, a parallel record
// layout conformance harness for the cc/v4 C front end.
//
// The harness feeds (source file, macro define, target platform)
// combinations enumerated by in-file MAPPING directives to the compiler
// under test, classifies the emitted diagnostics against a table of known
// expected failures and reports aggregate ok/fail/skip counts plus peak
// scratch memory use.
package cclayout // import "modernc.org/cclayout/lib"

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"modernc.org/opt"
)

// Task represents one harness run.
type Task struct {
	args       []string // command name in args[0]
	corpus     string   // positional argument
	fs         fs.FS
	newSession func(*arena) Session
	re         *regexp.Regexp                                  // -re
	report     func(path string, tc TestCase, verdict string)  // test hook
	stderr     io.Writer
	stdout     io.Writer
	workers    int // -workers

	trace   bool // -trc
	verbose bool // -v
}

// NewTask returns a newly created Task. args[0] is the command name. A nil
// fsys makes Main read the corpus directory from the host file system.
func NewTask(args []string, stdout, stderr io.Writer, fsys fs.FS) *Task {
	return &Task{
		args:       args,
		fs:         fsys,
		newSession: newCCSession,
		stderr:     stderr,
		stdout:     stdout,
	}
}

type job struct {
	path string
	src  []byte
	tc   TestCase
}

// Main executes the task. It returns a non-nil error when the run could
// not start, when corpus files were malformed or when any task recorded a
// failure.
func (t *Task) Main() (err error) {
	if len(t.args) < 2 {
		return errorf("invalid arguments %v: expected a corpus directory", t.args)
	}

	set := opt.NewSet()
	set.Arg("re", true, func(opt, val string) error {
		re, err := regexp.Compile(val)
		if err != nil {
			return err
		}

		t.re = re
		return nil
	})
	set.Arg("workers", true, func(opt, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return errorf("invalid %s value: %q", opt, val)
		}

		t.workers = n
		return nil
	})
	set.Opt("trc", func(opt string) error { t.trace = true; return nil })
	set.Opt("v", func(opt string) error { t.verbose = true; return nil })
	if err := set.Parse(t.args[1:], func(arg string) error {
		if strings.HasPrefix(arg, "-") {
			return errorf("unrecognized option '%s'", arg)
		}

		if t.corpus != "" {
			return errorf("unexpected argument %s", arg)
		}

		t.corpus = arg
		return nil
	}); err != nil {
		return errorf("parsing %v: %v", t.args[1:], err)
	}

	if t.corpus == "" {
		return errorf("expected a corpus directory argument")
	}

	root := t.corpus
	if t.fs == nil {
		t.fs = os.DirFS(t.corpus)
		root = "."
	}
	if t.workers == 0 {
		t.workers = runtime.GOMAXPROCS(0)
	}
	if t.workers < 1 {
		t.workers = 1
	}
	if t.newSession == nil {
		t.newSession = newCCSession
	}

	p := newParallel(t.workers)
	pool := newBlockPool(t.workers + 1)

	// All tasks from all loaded files are enumerated up front.
	var jobs []job
	if err := fs.WalkDir(t.fs, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, "_test.c") {
			return nil
		}

		p.file()
		if t.re != nil && !t.re.MatchString(path) {
			return nil
		}

		b, err := fs.ReadFile(t.fs, path)
		if err != nil {
			return err
		}

		cases, err := scanDirectives(path, b)
		if err != nil {
			// Corpus format violation: this file does not load, the
			// run goes on.
			p.err(err)
			return nil
		}

		for _, tc := range cases {
			jobs = append(jobs, job{path, b, tc})
		}
		return nil
	}); err != nil {
		return errorf("%s: %v", t.corpus, err)
	}

	for _, j := range jobs {
		j := j
		p.task()
		p.exec(func() error {
			if t.trace {
				fmt.Fprintln(t.stderr, j.path, j.tc.Define, j.tc.Target)
			}

			t.run1(p, pool, j.path, j.src, j.tc)
			return nil
		})
	}
	werr := p.wait()
	fmt.Fprintf(t.stdout, "TOTAL: files %v, tasks %v, ok %v, fails %v, skips %v, drops %v, anomalies %v, mem %v\n",
		h(p.files), h(p.tasks), h(p.oks), h(p.fails), h(p.skips), h(p.drops), h(p.anomalies), humanize.IBytes(p.mem()))
	if werr != nil {
		return werr
	}

	if p.fails != 0 {
		return errorf("%v failures", p.fails)
	}

	return nil
}
