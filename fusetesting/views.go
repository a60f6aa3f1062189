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

package fusetesting

import (
	"os"
	"time"

	"github.com/jacobsa/fusereply/fuseops"
)

// Return a view over the supplied attributes, for feeding literal values to
// reply contracts.
func AttrOf(a fuseops.Attr) fuseops.FileAttr {
	return attrView{a}
}

type attrView struct {
	a fuseops.Attr
}

func (v attrView) Ino() uint64       { return v.a.Ino }
func (v attrView) Size() uint64      { return v.a.Size }
func (v attrView) Blocks() uint64    { return v.a.Blocks }
func (v attrView) Atime() time.Time  { return v.a.Atime }
func (v attrView) Mtime() time.Time  { return v.a.Mtime }
func (v attrView) Ctime() time.Time  { return v.a.Ctime }
func (v attrView) Mode() os.FileMode { return v.a.Mode }
func (v attrView) Nlink() uint32     { return v.a.Nlink }
func (v attrView) Uid() uint32       { return v.a.Uid }
func (v attrView) Gid() uint32       { return v.a.Gid }
func (v attrView) Rdev() uint32      { return v.a.Rdev }
func (v attrView) Blksize() uint32   { return v.a.Blksize }

// Return a view over the supplied statistics.
func StatfsOf(st fuseops.Statfs) fuseops.FsStatistics {
	return statfsView{st}
}

type statfsView struct {
	st fuseops.Statfs
}

func (v statfsView) Blocks() uint64  { return v.st.Blocks }
func (v statfsView) Bfree() uint64   { return v.st.Bfree }
func (v statfsView) Bavail() uint64  { return v.st.Bavail }
func (v statfsView) Files() uint64   { return v.st.Files }
func (v statfsView) Ffree() uint64   { return v.st.Ffree }
func (v statfsView) Bsize() uint32   { return v.st.Bsize }
func (v statfsView) Namelen() uint32 { return v.st.Namelen }
func (v statfsView) Frsize() uint32  { return v.st.Frsize }
