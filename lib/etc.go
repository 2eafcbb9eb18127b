// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"fmt"
	"go/token"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

var (
	extendedErrors bool // true: Errors will include origin info.
)

// origin returns caller's short position, skipping skip frames.
func origin(skip int) string {
	pc, fn, fl, _ := runtime.Caller(skip)
	f := runtime.FuncForPC(pc)
	var fns string
	if f != nil {
		fns = f.Name()
		if x := strings.LastIndex(fns, "."); x > 0 {
			fns = fns[x+1:]
		}
		if strings.HasPrefix(fns, "func") {
			num := true
			for _, c := range fns[len("func"):] {
				if c < '0' || c > '9' {
					num = false
					break
				}
			}
			if num {
				return origin(skip + 2)
			}
		}
	}
	return fmt.Sprintf("%s:%d:%s", filepath.Base(fn), fl, fns)
}

// todo returns caller's position and an optional message tagged with TODO.
func todo(s string, args ...interface{}) string {
	switch {
	case s == "":
		s = fmt.Sprintf(strings.Repeat("%v ", len(args)), args...)
	default:
		s = fmt.Sprintf(s, args...)
	}
	return fmt.Sprintf("%s\n\tTODO %s", origin(2), s)
}

// trc prints and returns caller's position and an optional message tagged
// with TRC. Output goes to stderr.
func trc(s string, args ...interface{}) string {
	switch {
	case s == "":
		s = fmt.Sprintf(strings.Repeat("%v ", len(args)), args...)
	default:
		s = fmt.Sprintf(s, args...)
	}
	r := fmt.Sprintf("%s: TRC %s", origin(2), s)
	fmt.Fprintf(os.Stderr, "%s\n", r)
	os.Stderr.Sync()
	return r
}

type errors []string

// Error implements error.
func (e errors) Error() string { return strings.Join(e, "\n") }

func (e *errors) add(err error) { *e = append(*e, err.Error()) }

func (e errors) err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// errorf constructs an error value. If extendedErrors is true, the error
// will contain its origin.
func errorf(s string, args ...interface{}) error {
	switch {
	case s == "":
		s = fmt.Sprintf(strings.Repeat("%v ", len(args)), args...)
	default:
		s = fmt.Sprintf(s, args...)
	}
	switch {
	case extendedErrors:
		return fmt.Errorf("%s (%v:)", s, origin(2))
	default:
		return fmt.Errorf("%s", s)
	}
}

// parallel fans independent tasks out to a bounded set of goroutines and
// aggregates their verdicts. Verdict counters and the peak scratch memory
// maximum are the only state tasks share, all of it updated atomically.
// The error list is guarded by the embedded mutex.
type parallel struct {
	errors errors
	limit  chan struct{}
	sync.Mutex
	wg sync.WaitGroup

	anomalies int32
	drops     int32
	fails     int32
	files     int32
	oks       int32
	skips     int32
	tasks     int32

	maxAlloc uint64
}

func newParallel(workers int) *parallel {
	if workers < 1 {
		workers = 1
	}
	return &parallel{
		limit: make(chan struct{}, workers),
	}
}

func (p *parallel) anomaly() { atomic.AddInt32(&p.anomalies, 1) }
func (p *parallel) drop()    { atomic.AddInt32(&p.drops, 1) }
func (p *parallel) fail()    { atomic.AddInt32(&p.fails, 1) }
func (p *parallel) file()    { atomic.AddInt32(&p.files, 1) }
func (p *parallel) ok()      { atomic.AddInt32(&p.oks, 1) }
func (p *parallel) skip()    { atomic.AddInt32(&p.skips, 1) }
func (p *parallel) task()    { atomic.AddInt32(&p.tasks, 1) }

// bump raises the running peak scratch memory maximum to n if n is larger.
func (p *parallel) bump(n uint64) {
	for {
		o := atomic.LoadUint64(&p.maxAlloc)
		if n <= o || atomic.CompareAndSwapUint64(&p.maxAlloc, o, n) {
			return
		}
	}
}

func (p *parallel) mem() uint64 { return atomic.LoadUint64(&p.maxAlloc) }

func (p *parallel) exec(run func() error) {
	p.limit <- struct{}{}
	p.wg.Add(1)

	go func() {
		defer func() {
			p.wg.Done()
			<-p.limit
		}()

		p.err(run())
	}()
}

func (p *parallel) wait() error {
	p.wg.Wait()
	return p.errors.err()
}

func (p *parallel) err(err error) {
	if err == nil {
		return
	}

	p.Lock()
	p.errors.add(err)
	p.Unlock()
}

func h(v interface{}) string {
	switch x := v.(type) {
	case int32:
		return humanize.Comma(int64(x))
	case int64:
		return humanize.Comma(x)
	case uint64:
		if x <= math.MaxInt64 {
			return humanize.Comma(int64(x))
		}
	}
	return fmt.Sprint(v)
}

func extractPos(s string) (p token.Position, ok bool) {
	var prefix string
	if len(s) > 1 && s[1] == ':' { // c:\foo
		prefix = s[:2]
		s = s[2:]
	}
	// "testdata/cases/bitfield_test.c:12:6: ..."
	a := strings.SplitN(s, ":", 4)
	// ["testdata/cases/bitfield_test.c" "12" "6" "..."]
	if len(a) < 3 {
		return p, false
	}

	line, err := strconv.Atoi(a[1])
	if err != nil {
		return p, false
	}

	col, err := strconv.Atoi(a[2])
	if err != nil {
		return p, false
	}

	return token.Position{Filename: prefix + a[0], Line: line, Column: col}, true
}
