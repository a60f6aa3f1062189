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

// Package roloopbackfs contains a file system that mirrors a local directory
// tree, read-only. Errors from the underlying system calls are handed back
// as-is and reported to the kernel with their own error numbers.
package roloopbackfs

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sys/unix"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
	"github.com/jacobsa/fusereply/fuseutil"
)

// The underlying tree may change behind our back, so keep cache lifetimes
// short.
const cacheTTL = time.Second

type readonlyLoopbackFs struct {
	fuseutil.NotImplementedFileSystem

	root   *inodeEntry
	inodes inodeTable
	logger log.Logger
}

var _ fusereply.FileSystem = &readonlyLoopbackFs{}

// Create a file system that mirrors an existing physical path, in a readonly
// mode.
func NewReadonlyLoopbackFS(
	loopbackPath string,
	logger log.Logger) (fusereply.FileSystem, error) {
	if _, err := os.Stat(loopbackPath); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	fs := &readonlyLoopbackFs{
		root: &inodeEntry{
			id:   fuseops.RootInodeID,
			path: loopbackPath,
		},
		logger: log.With(logger, "fs", "roloopback"),
	}

	fs.inodes.m.Store(fs.root.id, fs.root)
	return fs, nil
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

func (fs *readonlyLoopbackFs) getInode(
	id fuseops.InodeID) (in *inodeEntry, err error) {
	in, ok := fs.inodes.get(id)
	if !ok {
		level.Warn(fs.logger).Log("msg", "unknown inode", "inode", id)
		err = fusereply.ENOENT
	}

	return
}

func entryOptions(in *inodeEntry) *fuseops.EntryOptions {
	return &fuseops.EntryOptions{
		Inode:      in.id,
		Generation: in.generation,
		AttrTTL:    fuseops.TTL(cacheTTL),
		EntryTTL:   fuseops.TTL(cacheTTL),
	}
}

// Build the ReadDirPlus form of the listing, skipping children that vanished
// since they were listed.
func (fs *readonlyLoopbackFs) plusEntries(
	dirents []fuseops.Dirent) (plus []fuseutil.DirentPlus) {
	for _, d := range dirents {
		in, ok := fs.inodes.get(d.Inode)
		if !ok {
			d.Inode = 0
			plus = append(plus, fuseutil.DirentPlus{Dirent: d})
			continue
		}

		st, err := in.stat()
		if err != nil {
			d.Inode = 0
			plus = append(plus, fuseutil.DirentPlus{Dirent: d})
			continue
		}

		plus = append(plus, fuseutil.DirentPlus{
			Dirent: d,
			Attr:   fuseops.NewStatAttr(&st),
			Opts:   entryOptions(in),
		})
	}

	return
}

func errROFS() (fusereply.Replied, error) {
	return fusereply.Replied{}, unix.EROFS
}

////////////////////////////////////////////////////////////////////////
// Inodes
////////////////////////////////////////////////////////////////////////

func (fs *readonlyLoopbackFs) StatFS(
	ctx context.Context,
	op *fuseops.StatFSOp,
	reply fusereply.ReplyStatfs) (fusereply.Replied, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(fs.root.path, &st); err != nil {
		err = &os.PathError{Op: "statfs", Path: fs.root.path, Err: err}
		return fusereply.Replied{}, err
	}

	return reply.Statfs(fuseops.NewStatfsStatistics(&st))
}

func (fs *readonlyLoopbackFs) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	parent, err := fs.getInode(op.Parent)
	if err != nil {
		return fusereply.Replied{}, err
	}

	child, st, err := fs.inodes.lookUpChild(parent, op.Name)
	if err != nil {
		level.Debug(fs.logger).Log(
			"msg", "lookup failed",
			"parent", parent,
			"name", op.Name,
			"err", err)

		return fusereply.Replied{}, err
	}

	return reply.Entry(fuseops.NewStatAttr(&st), entryOptions(child))
}

func (fs *readonlyLoopbackFs) GetInodeAttributes(
	ctx context.Context,
	op *fuseops.GetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	st, err := in.stat()
	if err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Attr(fuseops.NewStatAttr(&st), fuseops.TTL(cacheTTL))
}

func (fs *readonlyLoopbackFs) SetInodeAttributes(
	ctx context.Context,
	op *fuseops.SetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	return errROFS()
}

func (fs *readonlyLoopbackFs) MkDir(
	ctx context.Context,
	op *fuseops.MkDirOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	return errROFS()
}

func (fs *readonlyLoopbackFs) CreateFile(
	ctx context.Context,
	op *fuseops.CreateFileOp,
	reply fusereply.ReplyCreate) (fusereply.Replied, error) {
	return errROFS()
}

func (fs *readonlyLoopbackFs) RmDir(
	ctx context.Context,
	op *fuseops.RmDirOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return errROFS()
}

func (fs *readonlyLoopbackFs) Unlink(
	ctx context.Context,
	op *fuseops.UnlinkOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return errROFS()
}

////////////////////////////////////////////////////////////////////////
// Directories
////////////////////////////////////////////////////////////////////////

func (fs *readonlyLoopbackFs) OpenDir(
	ctx context.Context,
	op *fuseops.OpenDirOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	if _, err := fs.getInode(op.Inode); err != nil {
		return fusereply.Replied{}, err
	}

	// Listings are read afresh for each ReadDir, so no handle state.
	return reply.Open(0, nil)
}

func (fs *readonlyLoopbackFs) ReadDir(
	ctx context.Context,
	op *fuseops.ReadDirOp,
	reply fusereply.ReplyDirs) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	dirents, err := fs.inodes.children(in)
	if err != nil {
		level.Warn(fs.logger).Log("msg", "listing failed", "inode", in, "err", err)
		return fusereply.Replied{}, err
	}

	fuseutil.ReadDirents(reply, dirents, op.Offset)
	return reply.Send()
}

func (fs *readonlyLoopbackFs) ReadDirPlus(
	ctx context.Context,
	op *fuseops.ReadDirPlusOp,
	reply fusereply.ReplyDirsPlus) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	dirents, err := fs.inodes.children(in)
	if err != nil {
		level.Warn(fs.logger).Log("msg", "listing failed", "inode", in, "err", err)
		return fusereply.Replied{}, err
	}

	fuseutil.ReadDirentsPlus(reply, fs.plusEntries(dirents), op.Offset)
	return reply.Send()
}

func (fs *readonlyLoopbackFs) ReleaseDirHandle(
	ctx context.Context,
	op *fuseops.ReleaseDirHandleOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

////////////////////////////////////////////////////////////////////////
// Files
////////////////////////////////////////////////////////////////////////

func (fs *readonlyLoopbackFs) OpenFile(
	ctx context.Context,
	op *fuseops.OpenFileOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	if _, err := fs.getInode(op.Inode); err != nil {
		return fusereply.Replied{}, err
	}

	if op.Flags&unix.O_ACCMODE != unix.O_RDONLY {
		return errROFS()
	}

	return reply.Open(0, nil)
}

func (fs *readonlyLoopbackFs) ReadFile(
	ctx context.Context,
	op *fuseops.ReadFileOp,
	reply fusereply.ReplyData) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	f, err := os.Open(in.path)
	if err != nil {
		return fusereply.Replied{}, err
	}

	defer f.Close()

	buf := make([]byte, op.Size)
	n, err := f.ReadAt(buf, op.Offset)

	// A short read at the end of the file is not an error.
	if err != nil && err != io.EOF {
		return fusereply.Replied{}, err
	}

	return reply.Data(buf[:n])
}

func (fs *readonlyLoopbackFs) WriteFile(
	ctx context.Context,
	op *fuseops.WriteFileOp,
	reply fusereply.ReplyWrite) (fusereply.Replied, error) {
	return errROFS()
}

func (fs *readonlyLoopbackFs) FlushFile(
	ctx context.Context,
	op *fuseops.FlushFileOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

func (fs *readonlyLoopbackFs) ReleaseFileHandle(
	ctx context.Context,
	op *fuseops.ReleaseFileHandleOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

func (fs *readonlyLoopbackFs) ReadSymlink(
	ctx context.Context,
	op *fuseops.ReadSymlinkOp,
	reply fusereply.ReplyData) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	target, err := os.Readlink(in.path)
	if err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Data([]byte(target))
}

////////////////////////////////////////////////////////////////////////
// Extended attributes
////////////////////////////////////////////////////////////////////////

// lgetxattr(2) shares the size-query convention of the reply: a zero size asks
// for the length, and a short buffer fails with ERANGE.
func (fs *readonlyLoopbackFs) GetXattr(
	ctx context.Context,
	op *fuseops.GetXattrOp,
	reply fusereply.ReplyXattr) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	if op.Size == 0 {
		n, err := unix.Lgetxattr(in.path, op.Name, nil)
		if err != nil {
			return fusereply.Replied{}, err
		}

		return reply.Size(uint32(n))
	}

	buf := make([]byte, op.Size)
	n, err := unix.Lgetxattr(in.path, op.Name, buf)
	if err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Data(buf[:n])
}

func (fs *readonlyLoopbackFs) ListXattr(
	ctx context.Context,
	op *fuseops.ListXattrOp,
	reply fusereply.ReplyXattr) (fusereply.Replied, error) {
	in, err := fs.getInode(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	if op.Size == 0 {
		n, err := unix.Llistxattr(in.path, nil)
		if err != nil {
			return fusereply.Replied{}, err
		}

		return reply.Size(uint32(n))
	}

	buf := make([]byte, op.Size)
	n, err := unix.Llistxattr(in.path, buf)
	if err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Data(buf[:n])
}

func (fs *readonlyLoopbackFs) SetXattr(
	ctx context.Context,
	op *fuseops.SetXattrOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return errROFS()
}

func (fs *readonlyLoopbackFs) RemoveXattr(
	ctx context.Context,
	op *fuseops.RemoveXattrOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return errROFS()
}
