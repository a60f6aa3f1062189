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

// Package memfs contains a file system that stores data and metadata in
// memory, answering every op through the fusereply contracts.
package memfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
	"golang.org/x/sys/unix"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
	"github.com/jacobsa/fusereply/fuseutil"
)

const (
	// We don't spontaneously mutate, so the kernel can cache as long as it
	// wants, since it also handles invalidation. This includes the absence of
	// names.
	cacheTTL = 365 * 24 * time.Hour

	blockSize = 4096

	// The capacity reported by StatFS.
	totalBlocks = 1 << 20
	totalInodes = 1 << 20
	maxNameLen  = 255
)

type memFS struct {
	fuseutil.NotImplementedFileSystem

	/////////////////////////
	// Dependencies
	/////////////////////////

	clock timeutil.Clock

	/////////////////////////
	// Constant data
	/////////////////////////

	// The UID and GID that every inode receives.
	uid uint32
	gid uint32

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu syncutil.InvariantMutex

	// The collection of live inodes, indexed by ID. IDs that are not in use
	// have a nil inode. No inode with ID less than fuseops.RootInodeID is ever
	// used.
	//
	// INVARIANT: len(inodes) > fuseops.RootInodeID
	// INVARIANT: For all i < fuseops.RootInodeID, inodes[i] == nil
	// INVARIANT: inodes[fuseops.RootInodeID] != nil
	// INVARIANT: inodes[fuseops.RootInodeID].isDir()
	inodes []*inode // GUARDED_BY(mu)

	// A list of inode IDs within inodes available for reuse, not including the
	// reserved IDs less than fuseops.RootInodeID.
	//
	// INVARIANT: This is all and only indices i of inodes such that i >
	// fuseops.RootInodeID and inodes[i] == nil
	freeInodes []fuseops.InodeID // GUARDED_BY(mu)

	// The generation most recently issued for each inode ID. Reusing an ID
	// bumps its generation, so the pair (ID, generation) is never issued twice.
	//
	// INVARIANT: len(generations) == len(inodes)
	// INVARIANT: For all live i, inodes[i].generation == generations[i]
	generations []fuseops.GenerationNumber // GUARDED_BY(mu)
}

// Create a file system that stores data and metadata in memory.
//
// The supplied UID/GID pair will own the root inode. This file system does no
// permissions checking, and should therefore be mounted with the
// default_permissions option.
func NewMemFS(
	uid uint32,
	gid uint32,
	clock timeutil.Clock) fusereply.FileSystem {
	// Set up the basic struct.
	fs := &memFS{
		clock:       clock,
		uid:         uid,
		gid:         gid,
		inodes:      make([]*inode, fuseops.RootInodeID+1),
		generations: make([]fuseops.GenerationNumber, fuseops.RootInodeID+1),
	}

	// Set up the root inode.
	rootAttrs := inodeAttributes{
		ino:   fuseops.RootInodeID,
		mode:  0700 | os.ModeDir,
		nlink: 2,
		uid:   uid,
		gid:   gid,
	}

	fs.inodes[fuseops.RootInodeID] = newInode(clock, rootAttrs, 0)

	// Set up invariant checking.
	fs.mu = syncutil.NewInvariantMutex(fs.checkInvariants)

	return fs
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

func (fs *memFS) checkInvariants() {
	// Check reserved inodes.
	for i := 0; i < fuseops.RootInodeID; i++ {
		if fs.inodes[i] != nil {
			panic(fmt.Sprintf("Non-nil inode for ID: %v", i))
		}
	}

	// Check the root inode.
	if !fs.inodes[fuseops.RootInodeID].isDir() {
		panic("Expected root to be a directory.")
	}

	if len(fs.generations) != len(fs.inodes) {
		panic(fmt.Sprintf(
			"Generations length mismatch: %v vs. %v",
			len(fs.generations),
			len(fs.inodes)))
	}

	// Check each inode, and the free list.
	freeIDsEncountered := make(map[fuseops.InodeID]struct{})
	for i := fuseops.RootInodeID; i < len(fs.inodes); i++ {
		in := fs.inodes[i]
		if in == nil {
			freeIDsEncountered[fuseops.InodeID(i)] = struct{}{}
			continue
		}

		in.CheckInvariants()

		if in.generation != fs.generations[i] {
			panic(fmt.Sprintf(
				"Generation mismatch for ID %v: %v vs. %v",
				i,
				in.generation,
				fs.generations[i]))
		}
	}

	// Check fs.freeInodes.
	if len(fs.freeInodes) != len(freeIDsEncountered) {
		panic(
			fmt.Sprintf(
				"Length mismatch: %v vs. %v",
				len(fs.freeInodes),
				len(freeIDsEncountered)))
	}

	for _, id := range fs.freeInodes {
		if _, ok := freeIDsEncountered[id]; !ok {
			panic(fmt.Sprintf("Unexected free inode ID: %v", id))
		}
	}
}

// Find the given inode. Panic if it doesn't exist.
//
// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) getInodeOrDie(id fuseops.InodeID) (in *inode) {
	if id >= fuseops.InodeID(len(fs.inodes)) {
		panic(fmt.Sprintf("Inode out of range: %v vs. %v", id, len(fs.inodes)))
	}

	in = fs.inodes[id]
	if in == nil {
		panic(fmt.Sprintf("Unknown inode: %v", id))
	}

	return
}

// Find the given directory, failing with ENOTDIR if the inode isn't one.
//
// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) getDir(id fuseops.InodeID) (in *inode, err error) {
	in = fs.getInodeOrDie(id)
	if !in.isDir() {
		err = fusereply.ENOTDIR
	}

	return
}

// Find the given file, failing with EISDIR if the inode is a directory.
//
// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) getFile(id fuseops.InodeID) (in *inode, err error) {
	in = fs.getInodeOrDie(id)
	if in.isDir() {
		err = fusereply.EISDIR
	}

	return
}

// Allocate a new inode, assigning it an ID that is not in use and a
// generation that has never been issued with that ID.
//
// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) allocateInode(
	attrs inodeAttributes) (id fuseops.InodeID, in *inode) {
	// Create and assign an inode ID.
	numFree := len(fs.freeInodes)
	if numFree != 0 {
		id = fs.freeInodes[numFree-1]
		fs.freeInodes = fs.freeInodes[:numFree-1]
		fs.generations[id]++
	} else {
		id = fuseops.InodeID(len(fs.inodes))
		fs.inodes = append(fs.inodes, nil)
		fs.generations = append(fs.generations, 0)
	}

	attrs.ino = id
	in = newInode(fs.clock, attrs, fs.generations[id])
	fs.inodes[id] = in

	return
}

// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) deallocateInode(id fuseops.InodeID) {
	fs.freeInodes = append(fs.freeInodes, id)
	fs.inodes[id] = nil
}

// The options of a positive entry for the given inode.
//
// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) entryOptions(
	id fuseops.InodeID,
	in *inode) *fuseops.EntryOptions {
	return &fuseops.EntryOptions{
		Inode:      id,
		Generation: in.generation,
		AttrTTL:    fuseops.TTL(cacheTTL),
		EntryTTL:   fuseops.TTL(cacheTTL),
	}
}

// Create a child of the given parent, failing with EEXIST if the name is
// taken.
//
// LOCKS_REQUIRED(fs.mu)
func (fs *memFS) createChild(
	parentID fuseops.InodeID,
	name string,
	mode os.FileMode) (id fuseops.InodeID, child *inode, err error) {
	parent, err := fs.getDir(parentID)
	if err != nil {
		return
	}

	if _, exists := parent.LookUpChild(name); exists {
		err = fusereply.EEXIST
		return
	}

	attrs := inodeAttributes{
		nlink: 1,
		mode:  mode,
		uid:   fs.uid,
		gid:   fs.gid,
	}

	dt := fuseops.DT_File
	if mode&os.ModeDir != 0 {
		attrs.nlink = 2
		dt = fuseops.DT_Directory
		parent.attrs.nlink++
	}

	id, child = fs.allocateInode(attrs)
	parent.AddChild(id, name, dt)

	return
}

////////////////////////////////////////////////////////////////////////
// Inodes
////////////////////////////////////////////////////////////////////////

func (fs *memFS) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	// Grab the parent directory.
	parent, err := fs.getDir(op.Parent)
	if err != nil {
		return fusereply.Replied{}, err
	}

	// Does the directory have an entry with the given name? If not, tell the
	// kernel it may remember that.
	childID, ok := parent.LookUpChild(op.Name)
	if !ok {
		return reply.Entry(nil, &fuseops.EntryOptions{
			EntryTTL: fuseops.TTL(cacheTTL),
		})
	}

	child := fs.getInodeOrDie(childID)
	return reply.Entry(child.Attributes(), fs.entryOptions(childID, child))
}

func (fs *memFS) GetInodeAttributes(
	ctx context.Context,
	op *fuseops.GetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in := fs.getInodeOrDie(op.Inode)
	return reply.Attr(in.Attributes(), fuseops.TTL(cacheTTL))
}

func (fs *memFS) SetInodeAttributes(
	ctx context.Context,
	op *fuseops.SetInodeAttributesOp,
	reply fusereply.ReplyAttr) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in := fs.getInodeOrDie(op.Inode)
	if op.Size != nil && in.isDir() {
		return fusereply.Replied{}, fusereply.EISDIR
	}

	in.SetAttributes(op.Size, op.Mode, op.Uid, op.Gid, op.Atime, op.Mtime)
	return reply.Attr(in.Attributes(), fuseops.TTL(cacheTTL))
}

////////////////////////////////////////////////////////////////////////
// Inode creation and destruction
////////////////////////////////////////////////////////////////////////

func (fs *memFS) MkDir(
	ctx context.Context,
	op *fuseops.MkDirOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	mode := os.ModeDir | (op.Mode & os.ModePerm)
	id, child, err := fs.createChild(op.Parent, op.Name, mode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Entry(child.Attributes(), fs.entryOptions(id, child))
}

func (fs *memFS) CreateFile(
	ctx context.Context,
	op *fuseops.CreateFileOp,
	reply fusereply.ReplyCreate) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	id, child, err := fs.createChild(op.Parent, op.Name, op.Mode&os.ModePerm)
	if err != nil {
		return fusereply.Replied{}, err
	}

	// We have no per-handle state.
	return reply.Create(
		0,
		child.Attributes(),
		fs.entryOptions(id, child),
		&fuseops.OpenOptions{KeepCache: true})
}

func (fs *memFS) RmDir(
	ctx context.Context,
	op *fuseops.RmDirOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, err := fs.getDir(op.Parent)
	if err != nil {
		return fusereply.Replied{}, err
	}

	childID, ok := parent.LookUpChild(op.Name)
	if !ok {
		return fusereply.Replied{}, fusereply.ENOENT
	}

	child := fs.getInodeOrDie(childID)
	if !child.isDir() {
		return fusereply.Replied{}, fusereply.ENOTDIR
	}

	if child.Len() != 0 {
		return fusereply.Replied{}, fusereply.ENOTEMPTY
	}

	parent.RemoveChild(op.Name)
	parent.attrs.nlink--
	fs.deallocateInode(childID)

	return reply.Ok()
}

func (fs *memFS) Unlink(
	ctx context.Context,
	op *fuseops.UnlinkOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, err := fs.getDir(op.Parent)
	if err != nil {
		return fusereply.Replied{}, err
	}

	childID, ok := parent.LookUpChild(op.Name)
	if !ok {
		return fusereply.Replied{}, fusereply.ENOENT
	}

	child := fs.getInodeOrDie(childID)
	if child.isDir() {
		return fusereply.Replied{}, fusereply.EISDIR
	}

	parent.RemoveChild(op.Name)

	// There are no hard links, so the file is gone.
	child.attrs.nlink--
	fs.deallocateInode(childID)

	return reply.Ok()
}

////////////////////////////////////////////////////////////////////////
// Directory handles
////////////////////////////////////////////////////////////////////////

func (fs *memFS) OpenDir(
	ctx context.Context,
	op *fuseops.OpenDirOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := fs.getDir(op.Inode); err != nil {
		return fusereply.Replied{}, err
	}

	// Listings only change through us, so the kernel may keep them.
	return reply.Open(0, &fuseops.OpenOptions{
		CacheDir:  true,
		KeepCache: true,
	})
}

func (fs *memFS) ReadDir(
	ctx context.Context,
	op *fuseops.ReadDirOp,
	reply fusereply.ReplyDirs) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir, err := fs.getDir(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	fuseutil.ReadDirents(reply, dir.Entries(), op.Offset)
	return reply.Send()
}

func (fs *memFS) ReadDirPlus(
	ctx context.Context,
	op *fuseops.ReadDirPlusOp,
	reply fusereply.ReplyDirsPlus) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir, err := fs.getDir(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	entries := dir.Entries()
	plus := make([]fuseutil.DirentPlus, len(entries))
	for i, e := range entries {
		plus[i].Dirent = e
		if e.Inode == 0 {
			continue
		}

		child := fs.getInodeOrDie(e.Inode)
		plus[i].Attr = child.Attributes()
		plus[i].Opts = fs.entryOptions(e.Inode, child)
	}

	fuseutil.ReadDirentsPlus(reply, plus, op.Offset)
	return reply.Send()
}

func (fs *memFS) ReleaseDirHandle(
	ctx context.Context,
	op *fuseops.ReleaseDirHandleOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

////////////////////////////////////////////////////////////////////////
// File handles
////////////////////////////////////////////////////////////////////////

func (fs *memFS) OpenFile(
	ctx context.Context,
	op *fuseops.OpenFileOp,
	reply fusereply.ReplyOpen) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := fs.getFile(op.Inode); err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Open(0, &fuseops.OpenOptions{KeepCache: true})
}

func (fs *memFS) ReadFile(
	ctx context.Context,
	op *fuseops.ReadFileOp,
	reply fusereply.ReplyData) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in, err := fs.getFile(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	buf := make([]byte, op.Size)
	n, err := in.ReadAt(buf, op.Offset)

	// Don't return EOF errors; we just indicate EOF to fuse using a short read.
	if err != nil && err != io.EOF {
		return fusereply.Replied{}, err
	}

	return reply.Data(buf[:n])
}

func (fs *memFS) WriteFile(
	ctx context.Context,
	op *fuseops.WriteFileOp,
	reply fusereply.ReplyWrite) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in, err := fs.getFile(op.Inode)
	if err != nil {
		return fusereply.Replied{}, err
	}

	n, err := in.WriteAt(op.Data, op.Offset)
	if err != nil {
		return fusereply.Replied{}, err
	}

	return reply.Size(uint32(n))
}

func (fs *memFS) SyncFile(
	ctx context.Context,
	op *fuseops.SyncFileOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

func (fs *memFS) FlushFile(
	ctx context.Context,
	op *fuseops.FlushFileOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

func (fs *memFS) ReleaseFileHandle(
	ctx context.Context,
	op *fuseops.ReleaseFileHandleOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return reply.Ok()
}

////////////////////////////////////////////////////////////////////////
// File system statistics
////////////////////////////////////////////////////////////////////////

// Statistics for a file system of fixed nominal capacity.
type statistics struct {
	usedBlocks uint64
	usedInodes uint64
}

func (s statistics) Blocks() uint64  { return totalBlocks }
func (s statistics) Bfree() uint64   { return totalBlocks - s.usedBlocks }
func (s statistics) Bavail() uint64  { return totalBlocks - s.usedBlocks }
func (s statistics) Files() uint64   { return totalInodes }
func (s statistics) Ffree() uint64   { return totalInodes - s.usedInodes }
func (s statistics) Bsize() uint32   { return blockSize }
func (s statistics) Namelen() uint32 { return maxNameLen }
func (s statistics) Frsize() uint32  { return blockSize }

func (fs *memFS) StatFS(
	ctx context.Context,
	op *fuseops.StatFSOp,
	reply fusereply.ReplyStatfs) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var st statistics
	for _, in := range fs.inodes {
		if in == nil {
			continue
		}

		st.usedInodes++
		st.usedBlocks += (in.attrs.size + blockSize - 1) / blockSize
	}

	return reply.Statfs(st)
}

////////////////////////////////////////////////////////////////////////
// Extended attributes
////////////////////////////////////////////////////////////////////////

// Reply with the size of value when the caller asked for it, with the value
// itself when it fits in the caller's buffer, and fail with ERANGE otherwise.
func replyXattr(
	reply fusereply.ReplyXattr,
	size uint32,
	value []byte) (fusereply.Replied, error) {
	switch {
	case size == 0:
		return reply.Size(uint32(len(value)))

	case uint32(len(value)) > size:
		return fusereply.Replied{}, fusereply.ERANGE
	}

	return reply.Data(value)
}

func (fs *memFS) GetXattr(
	ctx context.Context,
	op *fuseops.GetXattrOp,
	reply fusereply.ReplyXattr) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in := fs.getInodeOrDie(op.Inode)
	value, ok := in.GetXattr(op.Name)
	if !ok {
		return fusereply.Replied{}, fusereply.ENODATA
	}

	return replyXattr(reply, op.Size, value)
}

func (fs *memFS) ListXattr(
	ctx context.Context,
	op *fuseops.ListXattrOp,
	reply fusereply.ReplyXattr) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in := fs.getInodeOrDie(op.Inode)
	return replyXattr(reply, op.Size, in.ListXattr())
}

func (fs *memFS) SetXattr(
	ctx context.Context,
	op *fuseops.SetXattrOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in := fs.getInodeOrDie(op.Inode)
	_, exists := in.GetXattr(op.Name)

	switch {
	case op.Flags&unix.XATTR_CREATE != 0 && exists:
		return fusereply.Replied{}, fusereply.EEXIST

	case op.Flags&unix.XATTR_REPLACE != 0 && !exists:
		return fusereply.Replied{}, fusereply.ENODATA
	}

	in.SetXattr(op.Name, op.Value)
	return reply.Ok()
}

func (fs *memFS) RemoveXattr(
	ctx context.Context,
	op *fuseops.RemoveXattrOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	in := fs.getInodeOrDie(op.Inode)
	if !in.RemoveXattr(op.Name) {
		return fusereply.Replied{}, fusereply.ENODATA
	}

	return reply.Ok()
}

////////////////////////////////////////////////////////////////////////
// Locks and polling
////////////////////////////////////////////////////////////////////////

// No locks are ever held, so no lock ever conflicts.
func (fs *memFS) GetLk(
	ctx context.Context,
	op *fuseops.GetLkOp,
	reply fusereply.ReplyLk) (fusereply.Replied, error) {
	return reply.Lk(fuseops.LockUnlock, op.Lock.Start, op.Lock.End, 0)
}

// Memory never blocks, so files are always ready for reading and writing.
func (fs *memFS) Poll(
	ctx context.Context,
	op *fuseops.PollOp,
	reply fusereply.ReplyPoll) (fusereply.Replied, error) {
	const ready = fuseops.PollIn |
		fuseops.PollOut |
		fuseops.PollRdNorm |
		fuseops.PollWrNorm

	return reply.Revents(op.Events & ready)
}
