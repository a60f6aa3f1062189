// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fuseops

import (
	"fmt"
	"strings"
	"time"
)

// Options accompanying a successful entry reply (lookup, mkdir, create, and
// each record of a ReadDirPlus listing).
//
// The zero value is the default: a negative entry with no cache lifetimes and
// generation zero. Always construct with field names; the blank field makes
// positional literals a compile error so fields can be added later.
type EntryOptions struct {
	// The inode ID of the entry.
	//
	// Zero means the entry is negative: the name is known not to exist. A
	// negative entry with a non-zero EntryTTL lets the kernel cache the
	// absence, which an ENOENT error cannot do.
	Inode InodeID

	// How long the kernel may trust the returned attributes, and the name to
	// inode mapping, without asking again. Nil means zero.
	//
	// File systems that are only ever modified through FUSE may set these very
	// large, since the kernel handles invalidation itself.
	AttrTTL  *time.Duration
	EntryTTL *time.Duration

	// The generation of the inode. See notes on GenerationNumber.
	Generation GenerationNumber

	_ struct{}
}

// Bits of the open flags word sent in open and create replies. These match
// FOPEN_* in fuse_kernel.h.
type OpenFlags uint32

const (
	OpenDirectIO    OpenFlags = 1 << 0
	OpenKeepCache   OpenFlags = 1 << 1
	OpenNonSeekable OpenFlags = 1 << 2
	OpenCacheDir    OpenFlags = 1 << 3
)

func (fl OpenFlags) String() string {
	var names []string
	for _, f := range []struct {
		bit  OpenFlags
		name string
	}{
		{OpenDirectIO, "DirectIO"},
		{OpenKeepCache, "KeepCache"},
		{OpenNonSeekable, "NonSeekable"},
		{OpenCacheDir, "CacheDir"},
	} {
		if fl&f.bit != 0 {
			names = append(names, f.name)
			fl &^= f.bit
		}
	}

	if fl != 0 {
		names = append(names, fmt.Sprintf("%#x", uint32(fl)))
	}

	if len(names) == 0 {
		return "0"
	}

	return strings.Join(names, "|")
}

// Options accompanying a successful open, opendir or create reply. The zero
// value sets no flags. As with EntryOptions, construct with field names.
type OpenOptions struct {
	// Bypass the page cache for this handle.
	DirectIO bool

	// Keep data the kernel already has cached for the inode rather than
	// invalidating it on open.
	KeepCache bool

	// The handle does not support seeking.
	NonSeekable bool

	// Allow the kernel to cache the entries returned by ReadDir. Only
	// meaningful when replying to OpenDirOp.
	CacheDir bool

	_ struct{}
}

// Flags returns the open flags word with one bit set per enabled option.
func (o *OpenOptions) Flags() (fl OpenFlags) {
	if o.DirectIO {
		fl |= OpenDirectIO
	}

	if o.KeepCache {
		fl |= OpenKeepCache
	}

	if o.NonSeekable {
		fl |= OpenNonSeekable
	}

	if o.CacheDir {
		fl |= OpenCacheDir
	}

	return
}
