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

import "fmt"

// Sizes of the fixed parts of the kernel's directory records: struct
// fuse_dirent (ino, off, namelen, type) and struct fuse_entry_out.
const (
	direntHeaderSize = 24
	entryOutSize     = 128
	direntAlignment  = 8
)

// A single entry within a directory listing.
//
// Construct with field names.
type Dirent struct {
	// The ID of the inode this entry names.
	Inode InodeID

	// The type of the child.
	Type DirentType

	// The name of the child. Must be non-empty and must not contain '/' or
	// NUL.
	Name string

	_ struct{}
}

func (d Dirent) String() string {
	return fmt.Sprintf("%q (%v, %v)", d.Name, d.Inode, d.Type)
}

func align(n int) int {
	return (n + direntAlignment - 1) &^ (direntAlignment - 1)
}

// Return the number of bytes a plain directory record with a name of the
// given length occupies in a ReadDir response, including padding.
func DirentSize(nameLen int) int {
	return align(direntHeaderSize + nameLen)
}

// Return the number of bytes a directory record with an embedded entry
// occupies in a ReadDirPlus response, including padding.
func DirentPlusSize(nameLen int) int {
	return align(entryOutSize + direntHeaderSize + nameLen)
}

// A record accepted into a ReadDir response.
type DirentRecord struct {
	Dirent

	// The offset at which the next listing resumes if the kernel stops after
	// this record.
	Offset DirOffset
}

// A record accepted into a ReadDirPlus response.
type DirentPlusRecord struct {
	Dirent
	Offset DirOffset

	// The entry for the child, as for a lookup of its name.
	Entry EntryOut
}
