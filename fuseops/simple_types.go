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
	"time"
)

// A 64-bit number used to uniquely identify a file or directory in the file
// system. File systems may mint inode IDs with any value except for
// RootInodeID.
//
// A value of zero in an entry reply means "this name does not exist", and is
// never a valid ID for a live inode.
type InodeID uint64

// A distinguished inode ID that identifies the root of the file system, e.g.
// in an OpenDirOp or LookUpInodeOp. Unlike all other inode IDs, which are
// minted by the file system, the FUSE VFS layer may send a request for this
// ID without the file system ever having referenced it in a previous
// response.
const RootInodeID = 1

func (id InodeID) String() string {
	return fmt.Sprintf("%d", uint64(id))
}

// Generation numbers distinguish inodes that reuse an ID. The file system
// must ensure that the pair (InodeID, GenerationNumber) is unique over the
// lifetime of the file system, so if an ID is reissued it must come with a
// generation number it has never been issued with before.
type GenerationNumber uint64

// An opaque 64-bit number used to identify a particular open handle to a file
// or directory.
//
// This corresponds to fuse_file_info::fh.
type HandleID uint64

// An opaque offset into a directory, used to resume a listing. The file
// system chooses these values; the kernel echoes the offset of the last entry
// it consumed in the next ReadDirOp.
//
// Offsets of the entries within one listing must be strictly increasing.
type DirOffset uint64

// A header that is included with every op.
type OpHeader struct {
	// Credentials information for the process making the request.
	Uid uint32
	Gid uint32

	// The process that made the request.
	Pid uint32
}

// TTL returns a pointer to d, for filling in the optional cache lifetimes of
// EntryOptions and attribute replies.
func TTL(d time.Duration) *time.Duration {
	return &d
}
