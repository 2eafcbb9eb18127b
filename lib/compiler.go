// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"modernc.org/cc/v4"
)

// Severity of one diagnostic reported by the compiler under test.
type Severity int

// Severities, in ascending order.
const (
	SevNote Severity = iota
	SevWarning
	SevError
	SevFatal
)

// Diag is one diagnostic message of the compiler under test.
type Diag struct {
	Sev      Severity
	Unit     string // name of the source unit the message points at
	Line     int
	LineText string // text of the offending source line, if resolvable
	Msg      string
}

// UnitID identifies a source unit registered with a Session.
type UnitID int

// Session is one compilation session of the compiler under test, scoped to
// a single task and its scratch arena. The first unit registered is the
// primary compilation unit.
type Session interface {
	// SetTarget configures the session for the given platform.
	SetTarget(*Target) error
	// AddUnit registers a named source unit.
	AddUnit(name string, src []byte) (UnitID, error)
	// Preprocess runs the preprocessor over the unit. Preprocessing the
	// primary unit runs the pipeline over all units, built-in macros
	// first, then the units in the order they were preprocessed with the
	// primary last.
	Preprocess(UnitID) error
	// Parse parses the preprocessed token stream. The resulting tree is
	// discarded, only diagnostics are retained.
	Parse() error
	// Diags returns the diagnostics emitted so far, in order.
	Diags() []Diag
}

type unit struct {
	name string
	src  []byte
}

// ccSession drives the cc/v4 front end. Source texts and the preprocessor
// output live in the task arena, so one session's footprint is bounded by
// one scratch block.
type ccSession struct {
	a     *arena
	cfg   *cc.Config
	diags []Diag
	order []UnitID // units in preprocess-call order
	units []unit
}

func newCCSession(a *arena) Session { return &ccSession{a: a} }

func (s *ccSession) SetTarget(t *Target) error {
	goos, goarch, ok := t.goTarget()
	if !ok {
		return errorf("unsupported target platform %s/%s", t.OS, t.Arch)
	}

	cfg, err := cc.NewConfig(goos, goarch)
	if err != nil {
		return err
	}

	s.cfg = cfg
	return nil
}

func (s *ccSession) AddUnit(name string, src []byte) (UnitID, error) {
	p, err := s.a.alloc(len(src))
	if err != nil {
		return -1, err
	}

	copy(p, src)
	s.units = append(s.units, unit{name, p})
	return UnitID(len(s.units) - 1), nil
}

func (s *ccSession) Preprocess(id UnitID) error {
	if s.cfg == nil {
		return errorf("session target not set")
	}

	u := s.units[id]
	if !utf8.Valid(u.src) {
		s.diags = append(s.diags, Diag{Sev: SevFatal, Unit: u.name, Msg: "invalid encoding"})
		return errorf("%s: invalid encoding", u.name)
	}

	s.order = append(s.order, id)
	if id != 0 {
		// Only the primary unit triggers the front end, see Session.
		return nil
	}

	w := &arenaWriter{a: s.a}
	if err := cc.Preprocess(s.cfg, s.sources(), w); err != nil {
		s.collect(err)
		return err
	}

	return nil
}

func (s *ccSession) Parse() error {
	if s.cfg == nil {
		return errorf("session target not set")
	}

	if _, err := cc.Parse(s.cfg, s.sources()); err != nil {
		s.collect(err)
		return err
	}

	return nil
}

func (s *ccSession) Diags() []Diag { return s.diags }

// sources builds the ordered cc source list: predefined and built-in
// macros first, then the preprocessed units with the primary last.
func (s *ccSession) sources() []cc.Source {
	r := []cc.Source{
		{Name: "<predefined>", Value: s.cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
	}
	for _, id := range s.order {
		if id == 0 {
			continue
		}

		u := s.units[id]
		r = append(r, cc.Source{Name: u.name, Value: u.src})
	}
	u := s.units[0]
	r = append(r, cc.Source{Name: u.name, Value: u.src})
	return r
}

// collect converts a cc error list into diagnostics. Positioned messages
// become errors with the offending line attached, anything else is fatal.
func (s *ccSession) collect(err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		if line == "" {
			continue
		}

		pos, ok := extractPos(line)
		if !ok {
			s.diags = append(s.diags, Diag{Sev: SevFatal, Msg: line})
			continue
		}

		msg := line
		if x := strings.Index(line, ": "); x > 0 {
			msg = line[x+2:]
		}
		s.diags = append(s.diags, Diag{
			Sev:      SevError,
			Unit:     pos.Filename,
			Line:     pos.Line,
			LineText: s.lineText(pos.Filename, pos.Line),
			Msg:      msg,
		})
	}
}

func (s *ccSession) lineText(name string, ln int) string {
	for _, u := range s.units {
		if u.name != name {
			continue
		}

		b := u.src
		for ln > 1 {
			x := bytes.IndexByte(b, '\n')
			if x < 0 {
				return ""
			}

			b = b[x+1:]
			ln--
		}
		if x := bytes.IndexByte(b, '\n'); x >= 0 {
			b = b[:x]
		}
		return string(b)
	}
	return ""
}
