// Copyright 2025 The CCLAYOUT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cclayout // import "modernc.org/cclayout/lib"

import (
	"golang.org/x/mod/semver"
)

// expectTableVersion tags the expected-failure table format. Entries and
// the verdict logic consuming them must move in lockstep, bump the major
// version when the vector layout changes.
const expectTableVersion = "v1"

func init() {
	if !semver.IsValid(expectTableVersion) {
		panic(todo("internal error: invalid expectTableVersion: %q", expectTableVersion))
	}
}

// excluded lists test base names never scored on any target.
var excluded = map[string]struct{}{
	"atomic": {},
	"vla":    {},
}

// expectedFailures maps "<targetString>|<testBaseName>" to the failure
// vector anticipated for that combination. An absent key means no failure
// is expected. Built once, never mutated.
var expectedFailures = map[string]failure{
	"aarch64-apple_m1-macos-none:Clang|packed":    {extra: true},
	"arm-cortex_a8-linux-gnueabi:Gcc|alignment":   {layout: true},
	"s390x-z13-linux-gnu:Gcc|bitfield":            {parse: true},
	"x86_64-x86_64-windows-msvc:Msvc|bitfield":    {offset: true},
	"x86_64-x86_64-windows-msvc:Msvc|packed":      {layout: true, offset: true},
	"x86_64-x86_64_v2-windows-msvc:Msvc|bitfield": {offset: true},
}

func expectedFor(target, base string) failure { return expectedFailures[target+"|"+base] }
