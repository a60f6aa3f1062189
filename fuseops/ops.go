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

// Package fuseops contains the value types exchanged between a file system
// and the reply layer: decoded requests, the options and views a file system
// hands to a reply, and the outcomes a reply produces. See the fusereply
// package for the contracts that tie them together.
package fuseops

import (
	"os"
	"time"
)

// The ops below carry only what the kernel sent. A file system answers each
// of them through the reply contract it is handed alongside the op, never by
// filling in fields.

////////////////////////////////////////////////////////////////////////
// Inodes
////////////////////////////////////////////////////////////////////////

// Look up a child by name within a parent directory. The kernel sends this
// when resolving user paths to dentry structs, which are then cached.
//
// If the child doesn't exist the file system may either fail with ENOENT or
// reply with a negative entry (inode zero) carrying an entry TTL, which lets
// the kernel cache the absence.
type LookUpInodeOp struct {
	Header OpHeader

	// The ID of the directory inode to which the child belongs.
	Parent InodeID

	// The name of the child of interest, relative to the parent.
	Name string
}

// Refresh the attributes for an inode whose ID was previously returned in an
// entry. The kernel sends this when its cache of inode attributes is stale,
// as controlled by the attribute TTL of that entry.
type GetInodeAttributesOp struct {
	Header OpHeader

	// The inode of interest.
	Inode InodeID

	// The handle through which the request was made, if any.
	Handle *HandleID
}

// Change attributes for an inode.
//
// The kernel sends this for obvious cases like chmod(2), and for less obvious
// cases like ftrunctate(2).
type SetInodeAttributesOp struct {
	Header OpHeader

	// The inode of interest.
	Inode InodeID

	// The attributes to modify, or nil for attributes that don't need a change.
	Size  *uint64
	Mode  *os.FileMode
	Uid   *uint32
	Gid   *uint32
	Atime *time.Time
	Mtime *time.Time
}

////////////////////////////////////////////////////////////////////////
// Inode creation
////////////////////////////////////////////////////////////////////////

// Create a directory inode as a child of an existing directory inode. The
// kernel sends this in response to a mkdir(2) call.
type MkDirOp struct {
	Header OpHeader

	// The ID of parent directory inode within which to create the child.
	Parent InodeID

	// The name of the child to create, and the mode with which to create it.
	Name string
	Mode os.FileMode
}

// Create a file inode and open it.
//
// The kernel sends this when the user asks to open a file with the O_CREAT
// flag and the kernel has observed that the file doesn't exist. File systems
// that are volatile from the kernel's point of view should still check, and
// fail with EEXIST when the file already exists.
type CreateFileOp struct {
	Header OpHeader

	// The ID of parent directory inode within which to create the child file.
	Parent InodeID

	// The name of the child to create, and the mode with which to create it.
	Name string
	Mode os.FileMode

	// The flags passed to open(2).
	Flags uint32
}

////////////////////////////////////////////////////////////////////////
// Unlinking
////////////////////////////////////////////////////////////////////////

// Unlink a directory from its parent. The file system is responsible for
// checking that the directory is empty.
type RmDirOp struct {
	Header OpHeader

	Parent InodeID
	Name   string
}

// Unlink a file from its parent.
type UnlinkOp struct {
	Header OpHeader

	Parent InodeID
	Name   string
}

////////////////////////////////////////////////////////////////////////
// Directory handles
////////////////////////////////////////////////////////////////////////

// Open a directory inode. The handle in the reply is echoed in ReadDirOp and
// ReleaseDirHandleOp.
type OpenDirOp struct {
	Header OpHeader

	// The ID of the inode to be opened.
	Inode InodeID

	// The flags passed to open(2).
	Flags uint32
}

// Read entries from a directory previously opened with OpenDir.
type ReadDirOp struct {
	Header OpHeader

	// The directory inode that we are reading, and the handle previously
	// returned by OpenDir when opening that inode.
	Inode  InodeID
	Handle HandleID

	// The offset within the directory at which to read. Zero for the start of
	// the listing, otherwise the offset of the last record the kernel consumed
	// from a previous response.
	Offset DirOffset

	// The maximum number of bytes the response may occupy. Records are
	// accounted by fuseops.DirentSize.
	Size int
}

// As ReadDirOp, but each record carries an entry for its child as well. The
// kernel uses these to populate its dentry and attribute caches without
// further lookups. Records are accounted by fuseops.DirentPlusSize.
type ReadDirPlusOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID
	Offset DirOffset
	Size   int
}

// Release a previously-minted directory handle. The kernel sends this when
// there are no more references to an open directory.
//
// The file system may not reply with an error.
type ReleaseDirHandleOp struct {
	Header OpHeader

	Handle HandleID
}

////////////////////////////////////////////////////////////////////////
// File handles
////////////////////////////////////////////////////////////////////////

// Open a file inode.
type OpenFileOp struct {
	Header OpHeader

	// The ID of the inode to be opened.
	Inode InodeID

	// The flags passed to open(2).
	Flags uint32
}

// Read data from a file previously opened with CreateFile or OpenFile.
//
// A reply shorter than Size is taken by the kernel to mean EOF, unless the
// handle was opened with DirectIO.
type ReadFileOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID

	// The range of the file to read.
	Offset int64
	Size   int
}

// Write data to a file previously opened with CreateFile or OpenFile.
//
// The reply carries the number of bytes accepted, which may be less than
// len(Data).
type WriteFileOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID

	// The offset at which to write the data below.
	Offset int64

	// The data to write. The file system must not retain this slice after
	// replying.
	Data []byte
}

// Synchronize the current contents of an open file to storage, in response
// to fsync(2).
type SyncFileOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID
}

// Flush the current state of an open file to storage upon closing a file
// descriptor. The kernel may send this more than once per handle.
type FlushFileOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID
}

// Release a previously-minted file handle. The file system may not reply
// with an error.
type ReleaseFileHandleOp struct {
	Header OpHeader

	Handle HandleID
}

////////////////////////////////////////////////////////////////////////
// Reading symlinks
////////////////////////////////////////////////////////////////////////

// Read the target of a symlink inode.
type ReadSymlinkOp struct {
	Header OpHeader

	Inode InodeID
}

////////////////////////////////////////////////////////////////////////
// File system statistics
////////////////////////////////////////////////////////////////////////

// Return statistics about the file system's capacity and available
// resources, in response to statfs(2).
type StatFSOp struct {
	Header OpHeader
}

////////////////////////////////////////////////////////////////////////
// Extended attributes
////////////////////////////////////////////////////////////////////////

// Get the value of an extended attribute.
//
// When Size is zero the caller only wants to know how large the value is, and
// the reply must carry the size. Otherwise the reply must carry the value
// itself, or the request fails with ERANGE when the value is larger than
// Size. A missing attribute fails with ENODATA.
type GetXattrOp struct {
	Header OpHeader

	Inode InodeID
	Name  string
	Size  uint32
}

// List the names of the extended attributes of an inode. The reply follows
// the same size or data rule as GetXattrOp; the data is the NUL-terminated
// names concatenated.
type ListXattrOp struct {
	Header OpHeader

	Inode InodeID
	Size  uint32
}

// Set the value of an extended attribute.
type SetXattrOp struct {
	Header OpHeader

	Inode InodeID
	Name  string
	Value []byte

	// XATTR_CREATE or XATTR_REPLACE, or zero.
	Flags uint32
}

type RemoveXattrOp struct {
	Header OpHeader

	Inode InodeID
	Name  string
}

////////////////////////////////////////////////////////////////////////
// Locks, block mapping, polling
////////////////////////////////////////////////////////////////////////

// Test for a POSIX lock, as in fcntl(F_GETLK). The reply carries the
// conflicting lock, or the requested range with type F_UNLCK when there is no
// conflict.
type GetLkOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID

	// The lock owner, as assigned by the kernel.
	Owner uint64

	// The lock being tested.
	Lock FileLock
}

// Map a block index within a file to a block index within the backing
// device. Only meaningful for file systems mounted with a block device.
type BmapOp struct {
	Header OpHeader

	Inode     InodeID
	BlockSize uint32
	Block     uint64
}

// Poll an open file for I/O readiness.
type PollOp struct {
	Header OpHeader

	Inode  InodeID
	Handle HandleID

	// The kernel's handle for a later readiness notification.
	Kh uint64

	// FUSE_POLL_* flags.
	Flags uint32

	// The events the caller is interested in.
	Events PollEvents
}
