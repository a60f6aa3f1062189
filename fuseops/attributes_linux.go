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
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// A FileAttr backed by the result of stat(2), for file systems that pass
// through to a local directory.
type StatAttr struct {
	st unix.Stat_t
}

var _ FileAttr = StatAttr{}

// Create a view of the supplied stat result. The struct is copied.
func NewStatAttr(st *unix.Stat_t) StatAttr {
	return StatAttr{st: *st}
}

func (a StatAttr) Ino() uint64      { return uint64(a.st.Ino) }
func (a StatAttr) Size() uint64     { return uint64(a.st.Size) }
func (a StatAttr) Blocks() uint64   { return uint64(a.st.Blocks) }
func (a StatAttr) Atime() time.Time { return time.Unix(a.st.Atim.Unix()) }
func (a StatAttr) Mtime() time.Time { return time.Unix(a.st.Mtim.Unix()) }
func (a StatAttr) Ctime() time.Time { return time.Unix(a.st.Ctim.Unix()) }
func (a StatAttr) Mode() os.FileMode {
	return ConvertUnixMode(uint32(a.st.Mode))
}
func (a StatAttr) Nlink() uint32   { return uint32(a.st.Nlink) }
func (a StatAttr) Uid() uint32     { return a.st.Uid }
func (a StatAttr) Gid() uint32     { return a.st.Gid }
func (a StatAttr) Rdev() uint32    { return uint32(a.st.Rdev) }
func (a StatAttr) Blksize() uint32 { return uint32(a.st.Blksize) }

// An FsStatistics backed by the result of statfs(2).
type StatfsStatistics struct {
	st unix.Statfs_t
}

var _ FsStatistics = StatfsStatistics{}

// Create a view of the supplied statfs result. The struct is copied.
func NewStatfsStatistics(st *unix.Statfs_t) StatfsStatistics {
	return StatfsStatistics{st: *st}
}

func (s StatfsStatistics) Blocks() uint64  { return uint64(s.st.Blocks) }
func (s StatfsStatistics) Bfree() uint64   { return uint64(s.st.Bfree) }
func (s StatfsStatistics) Bavail() uint64  { return uint64(s.st.Bavail) }
func (s StatfsStatistics) Files() uint64   { return uint64(s.st.Files) }
func (s StatfsStatistics) Ffree() uint64   { return uint64(s.st.Ffree) }
func (s StatfsStatistics) Bsize() uint32   { return uint32(s.st.Bsize) }
func (s StatfsStatistics) Namelen() uint32 { return uint32(s.st.Namelen) }
func (s StatfsStatistics) Frsize() uint32  { return uint32(s.st.Frsize) }
