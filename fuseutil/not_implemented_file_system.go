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

package fuseutil

import (
	"context"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
)

// Embed this within your file system type to inherit default implementations
// of all methods that return fusereply.ENOSYS.
type NotImplementedFileSystem struct {
}

var _ fusereply.FileSystem = &NotImplementedFileSystem{}

func (fs *NotImplementedFileSystem) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) GetInodeAttributes(
	ctx context.Context,
	op *fuseops.GetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) SetInodeAttributes(
	ctx context.Context,
	op *fuseops.SetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) MkDir(
	ctx context.Context,
	op *fuseops.MkDirOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) CreateFile(
	ctx context.Context,
	op *fuseops.CreateFileOp,
	reply fusereply.ReplyCreate) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) RmDir(
	ctx context.Context,
	op *fuseops.RmDirOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) Unlink(
	ctx context.Context,
	op *fuseops.UnlinkOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) OpenDir(
	ctx context.Context,
	op *fuseops.OpenDirOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadDir(
	ctx context.Context,
	op *fuseops.ReadDirOp,
	reply fusereply.ReplyDirs) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadDirPlus(
	ctx context.Context,
	op *fuseops.ReadDirPlusOp,
	reply fusereply.ReplyDirsPlus) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ReleaseDirHandle(
	ctx context.Context,
	op *fuseops.ReleaseDirHandleOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) OpenFile(
	ctx context.Context,
	op *fuseops.OpenFileOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadFile(
	ctx context.Context,
	op *fuseops.ReadFileOp,
	reply fusereply.ReplyData) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) WriteFile(
	ctx context.Context,
	op *fuseops.WriteFileOp,
	reply fusereply.ReplyWrite) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) SyncFile(
	ctx context.Context,
	op *fuseops.SyncFileOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) FlushFile(
	ctx context.Context,
	op *fuseops.FlushFileOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ReleaseFileHandle(
	ctx context.Context,
	op *fuseops.ReleaseFileHandleOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadSymlink(
	ctx context.Context,
	op *fuseops.ReadSymlinkOp,
	reply fusereply.ReplyData) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) StatFS(
	ctx context.Context,
	op *fuseops.StatFSOp,
	reply fusereply.ReplyStatfs) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) GetXattr(
	ctx context.Context,
	op *fuseops.GetXattrOp,
	reply fusereply.ReplyXattr) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) ListXattr(
	ctx context.Context,
	op *fuseops.ListXattrOp,
	reply fusereply.ReplyXattr) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) SetXattr(
	ctx context.Context,
	op *fuseops.SetXattrOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) RemoveXattr(
	ctx context.Context,
	op *fuseops.RemoveXattrOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) GetLk(
	ctx context.Context,
	op *fuseops.GetLkOp,
	reply fusereply.ReplyLk) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) Bmap(
	ctx context.Context,
	op *fuseops.BmapOp,
	reply fusereply.ReplyBmap) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}

func (fs *NotImplementedFileSystem) Poll(
	ctx context.Context,
	op *fuseops.PollOp,
	reply fusereply.ReplyPoll) (fusereply.Replied, error) {
	return fusereply.Replied{}, fusereply.ENOSYS
}
