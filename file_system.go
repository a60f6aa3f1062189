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

package fusereply

import (
	"context"

	"github.com/jacobsa/fusereply/fuseops"
)

// An interface that must be implemented by file systems served with Server.
// See also the comments on the op structs in package fuseops.
//
// Each method is handed the op and the reply contract for it. A method either
// answers through the contract and returns its result, or returns a non-nil
// error without answering, in which case the server fails the request with
// the error number Errno derives from the error.
//
// Not all methods need to have interesting implementations. Embed a field of
// type fuseutil.NotImplementedFileSystem to inherit defaults that return
// ENOSYS to the kernel.
//
// Must be safe for concurrent access via all methods.
type FileSystem interface {
	///////////////////////////////////
	// Inodes
	///////////////////////////////////

	LookUpInode(
		ctx context.Context,
		op *fuseops.LookUpInodeOp,
		reply ReplyEntry) (Replied, error)

	GetInodeAttributes(
		ctx context.Context,
		op *fuseops.GetInodeAttributesOp,
		reply ReplyAttr) (Replied, error)

	SetInodeAttributes(
		ctx context.Context,
		op *fuseops.SetInodeAttributesOp,
		reply ReplyAttr) (Replied, error)

	///////////////////////////////////
	// Inode creation
	///////////////////////////////////

	MkDir(
		ctx context.Context,
		op *fuseops.MkDirOp,
		reply ReplyEntry) (Replied, error)

	CreateFile(
		ctx context.Context,
		op *fuseops.CreateFileOp,
		reply ReplyCreate) (Replied, error)

	///////////////////////////////////
	// Inode destruction
	///////////////////////////////////

	RmDir(
		ctx context.Context,
		op *fuseops.RmDirOp,
		reply ReplyOk) (Replied, error)

	Unlink(
		ctx context.Context,
		op *fuseops.UnlinkOp,
		reply ReplyOk) (Replied, error)

	///////////////////////////////////
	// Directory handles
	///////////////////////////////////

	OpenDir(
		ctx context.Context,
		op *fuseops.OpenDirOp,
		reply ReplyOpen) (Replied, error)

	// The contract's capacity is op.Size.
	ReadDir(
		ctx context.Context,
		op *fuseops.ReadDirOp,
		reply ReplyDirs) (Replied, error)

	ReadDirPlus(
		ctx context.Context,
		op *fuseops.ReadDirPlusOp,
		reply ReplyDirsPlus) (Replied, error)

	ReleaseDirHandle(
		ctx context.Context,
		op *fuseops.ReleaseDirHandleOp,
		reply ReplyOk) (Replied, error)

	///////////////////////////////////
	// File handles
	///////////////////////////////////

	OpenFile(
		ctx context.Context,
		op *fuseops.OpenFileOp,
		reply ReplyOpen) (Replied, error)

	ReadFile(
		ctx context.Context,
		op *fuseops.ReadFileOp,
		reply ReplyData) (Replied, error)

	WriteFile(
		ctx context.Context,
		op *fuseops.WriteFileOp,
		reply ReplyWrite) (Replied, error)

	SyncFile(
		ctx context.Context,
		op *fuseops.SyncFileOp,
		reply ReplyOk) (Replied, error)

	FlushFile(
		ctx context.Context,
		op *fuseops.FlushFileOp,
		reply ReplyOk) (Replied, error)

	ReleaseFileHandle(
		ctx context.Context,
		op *fuseops.ReleaseFileHandleOp,
		reply ReplyOk) (Replied, error)

	///////////////////////////////////
	// Miscellaneous
	///////////////////////////////////

	ReadSymlink(
		ctx context.Context,
		op *fuseops.ReadSymlinkOp,
		reply ReplyData) (Replied, error)

	StatFS(
		ctx context.Context,
		op *fuseops.StatFSOp,
		reply ReplyStatfs) (Replied, error)

	GetXattr(
		ctx context.Context,
		op *fuseops.GetXattrOp,
		reply ReplyXattr) (Replied, error)

	ListXattr(
		ctx context.Context,
		op *fuseops.ListXattrOp,
		reply ReplyXattr) (Replied, error)

	SetXattr(
		ctx context.Context,
		op *fuseops.SetXattrOp,
		reply ReplyOk) (Replied, error)

	RemoveXattr(
		ctx context.Context,
		op *fuseops.RemoveXattrOp,
		reply ReplyOk) (Replied, error)

	GetLk(
		ctx context.Context,
		op *fuseops.GetLkOp,
		reply ReplyLk) (Replied, error)

	Bmap(
		ctx context.Context,
		op *fuseops.BmapOp,
		reply ReplyBmap) (Replied, error)

	Poll(
		ctx context.Context,
		op *fuseops.PollOp,
		reply ReplyPoll) (Replied, error)
}
