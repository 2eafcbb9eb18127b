// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"fmt"
	"strings"
)

// Target describes one cross compilation scenario, decoded from a compact
// target string of the form
//
//	arch-cpuModel-osTag-abiTag:compilerName
//
// Compiler is derived from the resolved platform, never from the string
// suffix. The suffix only cross-checks the corpus against the decoder.
type Target struct {
	Arch string
	CPU  string
	OS   string
	ABI  string

	Compiler string
}

// Emulated compiler identities.
const (
	CompilerClang = "Clang"
	CompilerGcc   = "Gcc"
	CompilerMsvc  = "Msvc"
)

// archBits maps known architecture families to their word size.
var archBits = map[string]int{
	"aarch64":     64,
	"arm":         32,
	"powerpc64le": 64,
	"riscv32":     32,
	"riscv64":     64,
	"s390x":       64,
	"x86":         32,
	"x86_64":      64,
}

// cpuModels lists the known CPU models per architecture family. The corpus
// is curated, a target string naming a model outside these lists is a
// corpus/decoder inconsistency, not an input error.
var cpuModels = map[string][]string{
	"aarch64":     {"generic", "cortex_a53", "cortex_a72", "neoverse_n1", "apple_m1"},
	"arm":         {"generic", "cortex_a8", "cortex_a9", "cortex_m4"},
	"powerpc64le": {"pwr8", "pwr9"},
	"riscv32":     {"generic_rv32"},
	"riscv64":     {"generic_rv64", "sifive_u74"},
	"s390x":       {"z13", "z14", "z15"},
	"x86":         {"i386", "i486", "i586", "i686", "pentium4"},
	"x86_64":      {"x86_64", "x86_64_v2", "x86_64_v3", "nehalem", "haswell", "skylake", "znver2"},
}

// osBits maps known OS tags to the word sizes their versioning scheme
// supports. An os/arch pairing outside this table is an invalid target,
// e.g. macos dropped 32 bit support and haiku here stands for its 32 bit
// only flavor.
var osBits = map[string][]int{
	"freebsd": {32, 64},
	"haiku":   {32},
	"illumos": {64},
	"linux":   {32, 64},
	"macos":   {64},
	"netbsd":  {32, 64},
	"openbsd": {32, 64},
	"solaris": {64},
	"windows": {32, 64},
}

var abis = map[string]struct{}{
	"gnu":       {},
	"gnueabi":   {},
	"gnueabihf": {},
	"msvc":      {},
	"musl":      {},
	"musleabi":  {},
	"none":      {},
}

// unsupportedOS lists OS tags the compiler under test cannot target. Tasks
// for these decode fine and are then dropped without a verdict.
var unsupportedOS = map[string]struct{}{
	"haiku":   {},
	"illumos": {},
	"solaris": {},
}

// goTargets maps platform os/arch pairs to the GOOS/GOARCH identifiers the
// cc/v4 front end understands.
var goTargets = map[string][2]string{
	"freebsd/arm":        {"freebsd", "arm"},
	"freebsd/aarch64":    {"freebsd", "arm64"},
	"freebsd/x86":        {"freebsd", "386"},
	"freebsd/x86_64":     {"freebsd", "amd64"},
	"linux/aarch64":      {"linux", "arm64"},
	"linux/arm":          {"linux", "arm"},
	"linux/powerpc64le":  {"linux", "ppc64le"},
	"linux/riscv64":      {"linux", "riscv64"},
	"linux/s390x":        {"linux", "s390x"},
	"linux/x86":          {"linux", "386"},
	"linux/x86_64":       {"linux", "amd64"},
	"macos/aarch64":      {"darwin", "arm64"},
	"macos/x86_64":       {"darwin", "amd64"},
	"netbsd/x86_64":      {"netbsd", "amd64"},
	"openbsd/aarch64":    {"openbsd", "arm64"},
	"openbsd/x86_64":     {"openbsd", "amd64"},
	"windows/aarch64":    {"windows", "arm64"},
	"windows/x86":        {"windows", "386"},
	"windows/x86_64":     {"windows", "amd64"},
}

// DecodeTarget decodes and validates a target string. Malformed or unknown
// encodings return an error. A syntactically plausible CPU model missing
// from the curated model lists and an emulated compiler disagreeing with
// the string's suffix both panic: they mean the corpus and the decoder are
// out of sync.
func DecodeTarget(s string) (*Target, error) {
	x := strings.IndexByte(s, ':')
	if x < 0 || x == len(s)-1 {
		return nil, errorf("invalid target %q: missing compiler suffix", s)
	}

	plat, suffix := s[:x], s[x+1:]
	f := strings.Split(plat, "-")
	if len(f) != 4 {
		return nil, errorf("invalid target %q: expected arch-cpu-os-abi", s)
	}

	t := &Target{Arch: f[0], CPU: f[1], OS: f[2], ABI: f[3]}
	bits, ok := archBits[t.Arch]
	if !ok {
		return nil, errorf("invalid target %q: unknown architecture %q", s, t.Arch)
	}

	osb, ok := osBits[t.OS]
	if !ok {
		return nil, errorf("invalid target %q: unknown OS %q", s, t.OS)
	}

	if _, ok := abis[t.ABI]; !ok {
		return nil, errorf("invalid target %q: unknown ABI %q", s, t.ABI)
	}

	if !plausibleCPU(t.CPU) {
		return nil, errorf("invalid target %q: malformed CPU model %q", s, t.CPU)
	}

	if !knownCPU(t.Arch, t.CPU) {
		panic(todo("internal error: target %q: CPU model %q not in the %s model list", s, t.CPU, t.Arch))
	}

	ok = false
	for _, v := range osb {
		if v == bits {
			ok = true
			break
		}
	}
	if !ok {
		return nil, errorf("invalid target %q: %s does not support %v bit architectures", s, t.OS, bits)
	}

	t.Compiler = emulatedCompiler(t)
	if t.Compiler != suffix {
		panic(todo("internal error: target %q: emulated compiler %s does not match suffix %s", s, t.Compiler, suffix))
	}

	return t, nil
}

// String returns the compact encoding the target was decoded from.
func (t *Target) String() string {
	return fmt.Sprintf("%s-%s-%s-%s:%s", t.Arch, t.CPU, t.OS, t.ABI, t.Compiler)
}

// emulatedCompiler returns the vendor toolchain identity whose semantics
// the compiler under test mimics on the given platform.
func emulatedCompiler(t *Target) string {
	switch {
	case t.ABI == "msvc":
		return CompilerMsvc
	case t.OS == "macos":
		return CompilerClang
	default:
		return CompilerGcc
	}
}

// Supported reports whether the compiler under test can target t at all.
func (t *Target) Supported() bool {
	if _, ok := unsupportedOS[t.OS]; ok {
		return false
	}

	_, ok := goTargets[t.OS+"/"+t.Arch]
	return ok
}

// goTarget maps t to the GOOS/GOARCH pair consumed by the cc/v4 adapter.
func (t *Target) goTarget() (goos, goarch string, ok bool) {
	v, ok := goTargets[t.OS+"/"+t.Arch]
	return v[0], v[1], ok
}

func plausibleCPU(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			// ok
		default:
			return false
		}
	}
	return true
}

func knownCPU(arch, cpu string) bool {
	for _, v := range cpuModels[arch] {
		if v == cpu {
			return true
		}
	}
	return false
}
