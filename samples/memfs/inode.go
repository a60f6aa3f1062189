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

package memfs

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/jacobsa/fusereply/fuseops"
)

// The attributes of an inode, usable as a fuseops.FileAttr.
type inodeAttributes struct {
	ino   fuseops.InodeID
	size  uint64
	nlink uint32
	mode  os.FileMode
	uid   uint32
	gid   uint32
	atime time.Time
	mtime time.Time
	ctime time.Time
}

var _ fuseops.FileAttr = inodeAttributes{}

func (a inodeAttributes) Ino() uint64  { return uint64(a.ino) }
func (a inodeAttributes) Size() uint64 { return a.size }

func (a inodeAttributes) Blocks() uint64 {
	return (a.size + 511) / 512
}

func (a inodeAttributes) Atime() time.Time  { return a.atime }
func (a inodeAttributes) Mtime() time.Time  { return a.mtime }
func (a inodeAttributes) Ctime() time.Time  { return a.ctime }
func (a inodeAttributes) Mode() os.FileMode { return a.mode }
func (a inodeAttributes) Nlink() uint32     { return a.nlink }
func (a inodeAttributes) Uid() uint32       { return a.uid }
func (a inodeAttributes) Gid() uint32       { return a.gid }
func (a inodeAttributes) Rdev() uint32      { return 0 }
func (a inodeAttributes) Blksize() uint32   { return blockSize }

// Common attributes for files and directories.
//
// External synchronization is required.
type inode struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	clock timeutil.Clock

	/////////////////////////
	// Mutable state
	/////////////////////////

	// The current attributes of this inode.
	//
	// INVARIANT: attrs.mode &^ (os.ModePerm|os.ModeDir) == 0
	// INVARIANT: attrs.size == len(contents)
	attrs inodeAttributes

	// The generation this inode was minted with. A later inode reusing the
	// same ID gets a larger one.
	generation fuseops.GenerationNumber

	// For directories, entries describing the children of the directory. Unused
	// entries have inode zero.
	//
	// This array can never be shortened, nor can its elements be moved, because
	// we use its indices for offsets in directory listings, which are exposed to
	// the user who might be calling readdir in a loop while concurrently
	// modifying the directory. Unused entries can, however, be reused.
	//
	// INVARIANT: If !isDir(), len(entries) == 0
	// INVARIANT: Contains no duplicate names in used entries.
	entries []fuseops.Dirent

	// For files, the current contents of the file.
	//
	// INVARIANT: If !isFile(), len(contents) == 0
	contents []byte

	// Extended attributes, by name.
	xattrs map[string][]byte
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// Create a new inode with the supplied attributes, which need not contain
// time-related information (the inode object will take care of that).
func newInode(
	clock timeutil.Clock,
	attrs inodeAttributes,
	generation fuseops.GenerationNumber) (in *inode) {
	// Update time info.
	now := clock.Now()
	attrs.atime = now
	attrs.mtime = now
	attrs.ctime = now

	// Create the object.
	in = &inode{
		clock:      clock,
		attrs:      attrs,
		generation: generation,
		xattrs:     make(map[string][]byte),
	}

	return
}

func (in *inode) CheckInvariants() {
	// INVARIANT: attrs.mode &^ (os.ModePerm|os.ModeDir) == 0
	if !(in.attrs.mode&^(os.ModePerm|os.ModeDir) == 0) {
		panic(fmt.Sprintf("Unexpected mode: %v", in.attrs.mode))
	}

	// INVARIANT: attrs.size == len(contents)
	if in.attrs.size != uint64(len(in.contents)) {
		panic(fmt.Sprintf(
			"Size mismatch: %d vs. %d",
			in.attrs.size,
			len(in.contents)))
	}

	// INVARIANT: If !isDir(), len(entries) == 0
	if !in.isDir() && len(in.entries) != 0 {
		panic(fmt.Sprintf("Unexpected entries length: %d", len(in.entries)))
	}

	// INVARIANT: Contains no duplicate names in used entries.
	childNames := make(map[string]struct{})
	for _, e := range in.entries {
		if e.Inode != 0 {
			if _, ok := childNames[e.Name]; ok {
				panic(fmt.Sprintf("Duplicate name: %s", e.Name))
			}

			childNames[e.Name] = struct{}{}
		}
	}

	// INVARIANT: If !isFile(), len(contents) == 0
	if !in.isFile() && len(in.contents) != 0 {
		panic(fmt.Sprintf("Unexpected length: %d", len(in.contents)))
	}
}

func (in *inode) isDir() bool {
	return in.attrs.mode&os.ModeDir != 0
}

func (in *inode) isFile() bool {
	return !in.isDir()
}

// Return the index of the child within in.entries, if it exists.
//
// REQUIRES: in.isDir()
func (in *inode) findChild(name string) (i int, ok bool) {
	if !in.isDir() {
		panic("findChild called on non-directory.")
	}

	var e fuseops.Dirent
	for i, e = range in.entries {
		if e.Inode != 0 && e.Name == name {
			ok = true
			return
		}
	}

	return
}

////////////////////////////////////////////////////////////////////////
// Public methods
////////////////////////////////////////////////////////////////////////

// Return a copy of the current attributes.
func (in *inode) Attributes() inodeAttributes {
	return in.attrs
}

// Return the number of children of the directory.
//
// REQUIRES: in.isDir()
func (in *inode) Len() (n int) {
	for _, e := range in.entries {
		if e.Inode != 0 {
			n++
		}
	}

	return
}

// Find an entry for the given child name and return its inode ID.
//
// REQUIRES: in.isDir()
func (in *inode) LookUpChild(name string) (id fuseops.InodeID, ok bool) {
	index, ok := in.findChild(name)
	if ok {
		id = in.entries[index].Inode
	}

	return
}

// Add an entry for a child.
//
// REQUIRES: in.isDir()
// REQUIRES: dt != fuseops.DT_Unknown
func (in *inode) AddChild(
	id fuseops.InodeID,
	name string,
	dt fuseops.DirentType) {
	// Update the modification time.
	in.attrs.mtime = in.clock.Now()
	in.attrs.ctime = in.attrs.mtime

	// Set up the entry.
	e := fuseops.Dirent{
		Inode: id,
		Name:  name,
		Type:  dt,
	}

	// Look for a gap in which we can insert it.
	for i := range in.entries {
		if in.entries[i].Inode == 0 {
			in.entries[i] = e
			return
		}
	}

	// Append it to the end.
	in.entries = append(in.entries, e)
}

// Remove an entry for a child.
//
// REQUIRES: in.isDir()
// REQUIRES: An entry for the given name exists.
func (in *inode) RemoveChild(name string) {
	// Update the modification time.
	in.attrs.mtime = in.clock.Now()
	in.attrs.ctime = in.attrs.mtime

	// Find the entry.
	i, ok := in.findChild(name)
	if !ok {
		panic(fmt.Sprintf("Unknown child: %s", name))
	}

	// Mark it as unused.
	in.entries[i] = fuseops.Dirent{}
}

// Return the directory's entries, including unused ones, indexed by offset
// minus one.
//
// REQUIRES: in.isDir()
func (in *inode) Entries() []fuseops.Dirent {
	return append([]fuseops.Dirent(nil), in.entries...)
}

// Read from the file's contents. See documentation for ioutil.ReaderAt.
//
// REQUIRES: in.isFile()
func (in *inode) ReadAt(p []byte, off int64) (n int, err error) {
	if !in.isFile() {
		panic("ReadAt called on non-file.")
	}

	// Ensure the offset is in range.
	if off > int64(len(in.contents)) {
		err = io.EOF
		return
	}

	// Read what we can.
	n = copy(p, in.contents[off:])
	if n < len(p) {
		err = io.EOF
	}

	return
}

// Write to the file's contents. See documentation for ioutil.WriterAt.
//
// REQUIRES: in.isFile()
func (in *inode) WriteAt(p []byte, off int64) (n int, err error) {
	if !in.isFile() {
		panic("WriteAt called on non-file.")
	}

	// Update the modification time.
	in.attrs.mtime = in.clock.Now()
	in.attrs.ctime = in.attrs.mtime

	// Ensure that the contents slice is long enough.
	newLen := int(off) + len(p)
	if len(in.contents) < newLen {
		padding := make([]byte, newLen-len(in.contents))
		in.contents = append(in.contents, padding...)
		in.attrs.size = uint64(newLen)
	}

	// Copy in the data.
	n = copy(in.contents[off:], p)

	// Sanity check.
	if n != len(p) {
		panic(fmt.Sprintf("Unexpected short copy: %v", n))
	}

	return
}

// Update attributes from non-nil parameters.
func (in *inode) SetAttributes(
	size *uint64,
	mode *os.FileMode,
	uid *uint32,
	gid *uint32,
	atime *time.Time,
	mtime *time.Time) {
	now := in.clock.Now()
	in.attrs.ctime = now

	// Truncate?
	if size != nil {
		intSize := int(*size)

		// Update contents.
		if intSize <= len(in.contents) {
			in.contents = in.contents[:intSize]
		} else {
			padding := make([]byte, intSize-len(in.contents))
			in.contents = append(in.contents, padding...)
		}

		// Update attributes.
		in.attrs.size = *size
		in.attrs.mtime = now
	}

	// Change mode?
	if mode != nil {
		in.attrs.mode = (in.attrs.mode &^ os.ModePerm) | (*mode & os.ModePerm)
	}

	if uid != nil {
		in.attrs.uid = *uid
	}

	if gid != nil {
		in.attrs.gid = *gid
	}

	if atime != nil {
		in.attrs.atime = *atime
	}

	// Change mtime?
	if mtime != nil {
		in.attrs.mtime = *mtime
	}
}

////////////////////////////////////////////////////////////////////////
// Extended attributes
////////////////////////////////////////////////////////////////////////

func (in *inode) GetXattr(name string) (value []byte, ok bool) {
	value, ok = in.xattrs[name]
	return
}

// Return the names of all extended attributes, sorted, each followed by a
// NUL byte, as listxattr(2) does.
func (in *inode) ListXattr() (list []byte) {
	names := make([]string, 0, len(in.xattrs))
	for name := range in.xattrs {
		names = append(names, name)
	}

	sort.Strings(names)
	for _, name := range names {
		list = append(list, name...)
		list = append(list, 0)
	}

	return
}

func (in *inode) SetXattr(name string, value []byte) {
	in.xattrs[name] = append([]byte(nil), value...)
	in.attrs.ctime = in.clock.Now()
}

// Return false if the attribute didn't exist.
func (in *inode) RemoveXattr(name string) (ok bool) {
	if _, ok = in.xattrs[name]; !ok {
		return
	}

	delete(in.xattrs, name)
	in.attrs.ctime = in.clock.Now()
	return
}
