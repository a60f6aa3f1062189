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

package fuseutil

import (
	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
)

// A directory entry together with what ReadDirPlus needs to build an entry
// for it.
type DirentPlus struct {
	Dirent fuseops.Dirent
	Attr   fuseops.FileAttr
	Opts   *fuseops.EntryOptions
}

// Add to the reply the entries of a directory listing that follow the
// supplied offset, stopping when the reply is full, and return the number
// added. The caller then sends the reply.
//
// The listing is addressed by position: the entry at index i carries offset
// i+1, so a listing resumed from the offset of the last entry the kernel
// consumed picks up with the entry after it. The listing must not be
// reordered between calls for the same handle, so removed entries should be
// left in place with inode zero; such holes are skipped.
func ReadDirents(
	reply fusereply.ReplyDirs,
	entries []fuseops.Dirent,
	offset fuseops.DirOffset) (n int) {
	if offset > fuseops.DirOffset(len(entries)) {
		return
	}

	for i := int(offset); i < len(entries); i++ {
		if entries[i].Inode == 0 {
			continue
		}

		if !reply.Add(entries[i], fuseops.DirOffset(i+1)) {
			break
		}

		n++
	}

	return
}

// As ReadDirents, for ReadDirPlus.
func ReadDirentsPlus(
	reply fusereply.ReplyDirsPlus,
	entries []DirentPlus,
	offset fuseops.DirOffset) (n int) {
	if offset > fuseops.DirOffset(len(entries)) {
		return
	}

	for i := int(offset); i < len(entries); i++ {
		e := entries[i]
		if e.Dirent.Inode == 0 {
			continue
		}

		if !reply.Add(e.Dirent, fuseops.DirOffset(i+1), e.Attr, e.Opts) {
			break
		}

		n++
	}

	return
}
