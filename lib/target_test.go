// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"strings"
	"testing"
)

func TestDecodeTarget(t *testing.T) {
	for _, v := range []struct {
		s    string
		want Target
	}{
		{"x86_64-x86_64-linux-gnu:Gcc", Target{"x86_64", "x86_64", "linux", "gnu", CompilerGcc}},
		{"x86_64-skylake-windows-msvc:Msvc", Target{"x86_64", "skylake", "windows", "msvc", CompilerMsvc}},
		{"aarch64-apple_m1-macos-none:Clang", Target{"aarch64", "apple_m1", "macos", "none", CompilerClang}},
		{"arm-cortex_a8-linux-gnueabi:Gcc", Target{"arm", "cortex_a8", "linux", "gnueabi", CompilerGcc}},
		{"s390x-z13-linux-gnu:Gcc", Target{"s390x", "z13", "linux", "gnu", CompilerGcc}},
		{"x86-i686-windows-gnu:Gcc", Target{"x86", "i686", "windows", "gnu", CompilerGcc}},
		{"riscv64-sifive_u74-linux-musl:Gcc", Target{"riscv64", "sifive_u74", "linux", "musl", CompilerGcc}},
	} {
		got, err := DecodeTarget(v.s)
		if err != nil {
			t.Errorf("%s: %v", v.s, err)
			continue
		}

		if *got != v.want {
			t.Errorf("%s: got %+v, want %+v", v.s, *got, v.want)
		}
	}
}

func TestDecodeTargetErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"x86_64-x86_64-linux-gnu",          // no compiler suffix
		"x86_64-x86_64-linux-gnu:",         // empty compiler suffix
		"x86_64-linux-gnu:Gcc",             // missing field
		"x86_64-x86_64-linux-gnu-extra:Gcc", // extra field
		"mips-generic-linux-gnu:Gcc",       // unknown architecture
		"x86_64-x86_64-plan9-gnu:Gcc",      // unknown OS
		"x86_64-x86_64-linux-fancy:Gcc",    // unknown ABI
		"x86_64--linux-gnu:Gcc",            // empty CPU model
		"x86_64-Sky.Lake-linux-gnu:Gcc",    // malformed CPU model
		"x86-i686-macos-none:Clang",        // macos has no 32 bit targets
		"aarch64-generic-haiku-gnu:Gcc",    // 32 bit only OS, 64 bit architecture
	} {
		if _, err := DecodeTarget(s); err == nil {
			t.Errorf("%q: expected a decode error", s)
		}
	}
}

// Decoding a valid target string and re-deriving the emulated compiler from
// the platform reproduces the identity encoded in the suffix.
func TestDecodeTargetRoundTrip(t *testing.T) {
	targets := []string{
		"aarch64-generic-linux-gnu:Gcc",
		"powerpc64le-pwr9-linux-gnu:Gcc",
		"x86_64-haswell-macos-none:Clang",
		"x86_64-x86_64-freebsd-gnu:Gcc",
		"x86_64-x86_64_v3-windows-msvc:Msvc",
	}
	for k := range expectedFailures {
		targets = append(targets, k[:strings.IndexByte(k, '|')])
	}
	for _, s := range targets {
		got, err := DecodeTarget(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}

		if g := got.String(); g != s {
			t.Errorf("got %q, want %q", g, s)
		}
	}
}

func TestDecodeTargetUnknownCPU(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unknown CPU model")
		}
	}()

	DecodeTarget("x86_64-quantum9000-linux-gnu:Gcc")
}

func TestDecodeTargetCompilerMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a compiler suffix mismatch")
		}
	}()

	DecodeTarget("x86_64-x86_64-linux-gnu:Clang")
}

func TestTargetSupported(t *testing.T) {
	for _, v := range []struct {
		s    string
		want bool
	}{
		{"x86_64-x86_64-linux-gnu:Gcc", true},
		{"aarch64-apple_m1-macos-none:Clang", true},
		{"x86_64-x86_64-solaris-gnu:Gcc", false},
		{"x86_64-x86_64-illumos-gnu:Gcc", false},
		{"riscv32-generic_rv32-linux-gnu:Gcc", false}, // no front end support
	} {
		tgt, err := DecodeTarget(v.s)
		if err != nil {
			t.Errorf("%s: %v", v.s, err)
			continue
		}

		if g := tgt.Supported(); g != v.want {
			t.Errorf("%s: got %v, want %v", v.s, g, v.want)
		}
	}
}
