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

package errorfs

import (
	"context"
	"os"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
	"github.com/jacobsa/fusereply/fuseutil"
)

const FooContents = "xxxx"

const fooInodeID = fuseops.RootInodeID + 1

var fooAttrs = fuseops.Attr{
	Ino:   fooInodeID,
	Nlink: 1,
	Size:  uint64(len(FooContents)),
	Mode:  0444,
}

var rootAttrs = fuseops.Attr{
	Ino:   fuseops.RootInodeID,
	Nlink: 2,
	Mode:  0555 | os.ModeDir,
}

// A file system whose sole contents are a file named "foo" containing the
// string defined by FooContents.
//
// The file system can be configured to return canned errors for particular
// operations using the method SetError.
type FS interface {
	fusereply.FileSystem

	// Cause the file system to return the supplied error for all future
	// operations matching the supplied type.
	SetError(t reflect.Type, err syscall.Errno)
}

func New() (FS, error) {
	return &errorFS{
		errors: make(map[reflect.Type]syscall.Errno),
	}, nil
}

type errorFS struct {
	fuseutil.NotImplementedFileSystem

	mu sync.Mutex

	// GUARDED_BY(mu)
	errors map[reflect.Type]syscall.Errno
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *errorFS) SetError(t reflect.Type, err syscall.Errno) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.errors[t] = err
}

// LOCKS_EXCLUDED(fs.mu)
func (fs *errorFS) transformError(op interface{}) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err, ok := fs.errors[reflect.TypeOf(op).Elem()]; ok {
		return err
	}

	return nil
}

// A view of one of the fixed attribute sets.
type attrs struct{ a *fuseops.Attr }

func (v attrs) Ino() uint64       { return v.a.Ino }
func (v attrs) Size() uint64      { return v.a.Size }
func (v attrs) Blocks() uint64    { return v.a.Blocks }
func (v attrs) Atime() time.Time  { return v.a.Atime }
func (v attrs) Mtime() time.Time  { return v.a.Mtime }
func (v attrs) Ctime() time.Time  { return v.a.Ctime }
func (v attrs) Mode() os.FileMode { return v.a.Mode }
func (v attrs) Nlink() uint32     { return v.a.Nlink }
func (v attrs) Uid() uint32       { return v.a.Uid }
func (v attrs) Gid() uint32       { return v.a.Gid }
func (v attrs) Rdev() uint32      { return v.a.Rdev }
func (v attrs) Blksize() uint32   { return v.a.Blksize }

////////////////////////////////////////////////////////////////////////
// File system methods
////////////////////////////////////////////////////////////////////////

func (fs *errorFS) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	if err := fs.transformError(op); err != nil {
		return fusereply.Replied{}, err
	}

	if op.Parent != fuseops.RootInodeID || op.Name != "foo" {
		return fusereply.Replied{}, fusereply.ENOENT
	}

	return reply.Entry(attrs{&fooAttrs}, &fuseops.EntryOptions{Inode: fooInodeID})
}

func (fs *errorFS) GetInodeAttributes(
	ctx context.Context,
	op *fuseops.GetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	if err := fs.transformError(op); err != nil {
		return fusereply.Replied{}, err
	}

	switch op.Inode {
	case fuseops.RootInodeID:
		return reply.Attr(attrs{&rootAttrs}, nil)

	case fooInodeID:
		return reply.Attr(attrs{&fooAttrs}, nil)
	}

	return fusereply.Replied{}, fusereply.ENOENT
}

func (fs *errorFS) OpenFile(
	ctx context.Context,
	op *fuseops.OpenFileOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	if err := fs.transformError(op); err != nil {
		return fusereply.Replied{}, err
	}

	if op.Inode != fooInodeID {
		return fusereply.Replied{}, fusereply.EISDIR
	}

	return reply.Open(0, nil)
}

func (fs *errorFS) ReadFile(
	ctx context.Context,
	op *fuseops.ReadFileOp,
	reply fusereply.ReplyData) (fusereply.Replied, error) {
	if err := fs.transformError(op); err != nil {
		return fusereply.Replied{}, err
	}

	if op.Inode != fooInodeID || op.Offset != 0 {
		return fusereply.Replied{}, fusereply.EINVAL
	}

	data := []byte(FooContents)
	if op.Size < len(data) {
		data = data[:op.Size]
	}

	return reply.Data(data)
}

func (fs *errorFS) OpenDir(
	ctx context.Context,
	op *fuseops.OpenDirOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	if err := fs.transformError(op); err != nil {
		return fusereply.Replied{}, err
	}

	if op.Inode != fuseops.RootInodeID {
		return fusereply.Replied{}, fusereply.ENOTDIR
	}

	return reply.Open(0, nil)
}

func (fs *errorFS) ReadDir(
	ctx context.Context,
	op *fuseops.ReadDirOp,
	reply fusereply.ReplyDirs) (fusereply.Replied, error) {
	if err := fs.transformError(op); err != nil {
		return fusereply.Replied{}, err
	}

	if op.Inode != fuseops.RootInodeID {
		return fusereply.Replied{}, fusereply.ENOTDIR
	}

	entries := []fuseops.Dirent{
		{Inode: fooInodeID, Name: "foo", Type: fuseops.DT_File},
	}

	fuseutil.ReadDirents(reply, entries, op.Offset)
	return reply.Send()
}
