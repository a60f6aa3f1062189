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
	"os"
	"time"
)

// A read-only view of the attributes of an inode. Replies read from the view
// once, when the reply is produced, and never retain or modify it.
type FileAttr interface {
	Ino() uint64
	Size() uint64

	// The number of 512-byte blocks allocated to the inode.
	Blocks() uint64

	Atime() time.Time
	Mtime() time.Time
	Ctime() time.Time

	Mode() os.FileMode
	Nlink() uint32
	Uid() uint32
	Gid() uint32
	Rdev() uint32
	Blksize() uint32
}

// A read-only view of file system wide statistics, as returned by statfs(2).
type FsStatistics interface {
	// Total data blocks, free blocks, and free blocks available to an
	// unprivileged user, all in units of Frsize.
	Blocks() uint64
	Bfree() uint64
	Bavail() uint64

	// Total and free inodes.
	Files() uint64
	Ffree() uint64

	// The preferred I/O size.
	Bsize() uint32

	// The maximum length of a name within a directory.
	Namelen() uint32

	// The fragment size, i.e. the unit of Blocks.
	Frsize() uint32
}

// A snapshot of a FileAttr taken when a reply was produced.
type Attr struct {
	Ino    uint64
	Size   uint64
	Blocks uint64

	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	Mode    os.FileMode
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Rdev    uint32
	Blksize uint32
}

// Snapshot the supplied view.
func SnapshotAttr(a FileAttr) Attr {
	return Attr{
		Ino:     a.Ino(),
		Size:    a.Size(),
		Blocks:  a.Blocks(),
		Atime:   a.Atime(),
		Mtime:   a.Mtime(),
		Ctime:   a.Ctime(),
		Mode:    a.Mode(),
		Nlink:   a.Nlink(),
		Uid:     a.Uid(),
		Gid:     a.Gid(),
		Rdev:    a.Rdev(),
		Blksize: a.Blksize(),
	}
}

func (a Attr) String() string {
	return fmt.Sprintf("{ino=%d size=%d mode=%v nlink=%d}", a.Ino, a.Size, a.Mode, a.Nlink)
}

// A snapshot of an FsStatistics taken when a reply was produced.
type Statfs struct {
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Bsize   uint32
	Namelen uint32
	Frsize  uint32
}

// Snapshot the supplied view.
func SnapshotStatfs(st FsStatistics) Statfs {
	return Statfs{
		Blocks:  st.Blocks(),
		Bfree:   st.Bfree(),
		Bavail:  st.Bavail(),
		Files:   st.Files(),
		Ffree:   st.Ffree(),
		Bsize:   st.Bsize(),
		Namelen: st.Namelen(),
		Frsize:  st.Frsize(),
	}
}
