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
	"fmt"
	"time"

	"github.com/jacobsa/fusereply/fuseops"
)

// Each contract below is the only way to answer the op it is handed with.
// Every method returning Replied is terminal: it consumes the token the
// contract was built from, and calling a second terminal method panics. A nil
// options pointer means the zero value of the options.
//
// Views passed to a terminal method are read before it returns and are not
// retained.

////////////////////////////////////////////////////////////////////////
// Interfaces
////////////////////////////////////////////////////////////////////////

// Reply to LookUpInodeOp, MkDirOp and the like with an entry for a name.
//
// An entry with inode zero is negative: the name does not exist, and the
// kernel may remember that for the entry TTL. attr may be nil only for a
// negative entry; a nil attr with a non-zero inode panics.
type ReplyEntry interface {
	Entry(attr fuseops.FileAttr, opts *fuseops.EntryOptions) (Replied, error)
}

// Reply to GetInodeAttributesOp and SetInodeAttributesOp. ttl is how long the
// kernel may cache the attributes; nil means zero.
type ReplyAttr interface {
	Attr(attr fuseops.FileAttr, ttl *time.Duration) (Replied, error)
}

// Reply to ops whose success carries no payload.
type ReplyOk interface {
	Ok() (Replied, error)
}

// Reply with raw bytes, e.g. to ReadFileOp or ReadSymlinkOp. The length need
// not match the size the kernel asked for.
type ReplyData interface {
	Data(p []byte) (Replied, error)
}

// Reply to OpenFileOp and OpenDirOp with a handle.
type ReplyOpen interface {
	Open(fh fuseops.HandleID, opts *fuseops.OpenOptions) (Replied, error)
}

// Reply to WriteFileOp with the number of bytes accepted.
type ReplyWrite interface {
	Size(n uint32) (Replied, error)
}

type ReplyStatfs interface {
	Statfs(st fuseops.FsStatistics) (Replied, error)
}

// Reply to GetXattrOp and ListXattrOp. Exactly one of the two methods may be
// called: Size when the op's Size is zero, Data otherwise.
type ReplyXattr interface {
	Size(n uint32) (Replied, error)
	Data(p []byte) (Replied, error)
}

// Reply to GetLkOp with the conflicting lock, or with type LockUnlock when
// there is none. end is inclusive.
type ReplyLk interface {
	Lk(typ fuseops.LockType, start, end uint64, pid uint32) (Replied, error)
}

// Reply to CreateFileOp with both the new entry and the open handle.
type ReplyCreate interface {
	Create(
		fh fuseops.HandleID,
		attr fuseops.FileAttr,
		entryOpts *fuseops.EntryOptions,
		openOpts *fuseops.OpenOptions) (Replied, error)
}

type ReplyBmap interface {
	Block(block uint64) (Replied, error)
}

type ReplyPoll interface {
	Revents(ev fuseops.PollEvents) (Replied, error)
}

////////////////////////////////////////////////////////////////////////
// Constructors
////////////////////////////////////////////////////////////////////////

func NewReplyEntry(t *Token) ReplyEntry   { return &replyEntry{t} }
func NewReplyAttr(t *Token) ReplyAttr     { return &replyAttr{t} }
func NewReplyOk(t *Token) ReplyOk         { return &replyOk{t} }
func NewReplyData(t *Token) ReplyData     { return &replyData{t} }
func NewReplyOpen(t *Token) ReplyOpen     { return &replyOpen{t} }
func NewReplyWrite(t *Token) ReplyWrite   { return &replyWrite{t} }
func NewReplyStatfs(t *Token) ReplyStatfs { return &replyStatfs{t} }
func NewReplyXattr(t *Token) ReplyXattr   { return &replyXattr{t} }
func NewReplyLk(t *Token) ReplyLk         { return &replyLk{t} }
func NewReplyCreate(t *Token) ReplyCreate { return &replyCreate{t} }
func NewReplyBmap(t *Token) ReplyBmap     { return &replyBmap{t} }
func NewReplyPoll(t *Token) ReplyPoll     { return &replyPoll{t} }

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

func ttlOrZero(ttl *time.Duration) time.Duration {
	if ttl == nil {
		return 0
	}

	return *ttl
}

func makeEntryOut(
	attr fuseops.FileAttr,
	opts *fuseops.EntryOptions) (out fuseops.EntryOut) {
	if opts == nil {
		opts = &fuseops.EntryOptions{}
	}

	out.Inode = opts.Inode
	out.Generation = opts.Generation
	out.AttrTTL = ttlOrZero(opts.AttrTTL)
	out.EntryTTL = ttlOrZero(opts.EntryTTL)

	// Only a negative entry may go without attributes.
	switch {
	case attr != nil:
		out.Attr = fuseops.SnapshotAttr(attr)

	case opts.Inode != 0:
		panic(fmt.Sprintf("entry for inode %v has no attributes", opts.Inode))
	}

	return
}

func makeOpenOut(
	fh fuseops.HandleID,
	opts *fuseops.OpenOptions) fuseops.OpenOut {
	if opts == nil {
		opts = &fuseops.OpenOptions{}
	}

	return fuseops.OpenOut{
		Handle: fh,
		Flags:  opts.Flags(),
	}
}

////////////////////////////////////////////////////////////////////////
// Implementations
////////////////////////////////////////////////////////////////////////

type replyEntry struct{ t *Token }

func (r *replyEntry) Entry(
	attr fuseops.FileAttr,
	opts *fuseops.EntryOptions) (Replied, error) {
	out := makeEntryOut(attr, opts)
	return r.t.send(&out)
}

type replyAttr struct{ t *Token }

func (r *replyAttr) Attr(
	attr fuseops.FileAttr,
	ttl *time.Duration) (Replied, error) {
	return r.t.send(&fuseops.AttrOut{
		Attr: fuseops.SnapshotAttr(attr),
		TTL:  ttlOrZero(ttl),
	})
}

type replyOk struct{ t *Token }

func (r *replyOk) Ok() (Replied, error) {
	return r.t.send(&fuseops.OkOut{})
}

type replyData struct{ t *Token }

func (r *replyData) Data(p []byte) (Replied, error) {
	return r.t.send(&fuseops.DataOut{Data: p})
}

type replyOpen struct{ t *Token }

func (r *replyOpen) Open(
	fh fuseops.HandleID,
	opts *fuseops.OpenOptions) (Replied, error) {
	out := makeOpenOut(fh, opts)
	return r.t.send(&out)
}

type replyWrite struct{ t *Token }

func (r *replyWrite) Size(n uint32) (Replied, error) {
	return r.t.send(&fuseops.WriteOut{Size: n})
}

type replyStatfs struct{ t *Token }

func (r *replyStatfs) Statfs(st fuseops.FsStatistics) (Replied, error) {
	return r.t.send(&fuseops.StatfsOut{Stat: fuseops.SnapshotStatfs(st)})
}

type replyXattr struct{ t *Token }

func (r *replyXattr) Size(n uint32) (Replied, error) {
	return r.t.send(&fuseops.XattrSizeOut{Size: n})
}

func (r *replyXattr) Data(p []byte) (Replied, error) {
	return r.t.send(&fuseops.XattrDataOut{Data: p})
}

type replyLk struct{ t *Token }

func (r *replyLk) Lk(
	typ fuseops.LockType,
	start uint64,
	end uint64,
	pid uint32) (Replied, error) {
	return r.t.send(&fuseops.LkOut{
		Lock: fuseops.FileLock{
			Start: start,
			End:   end,
			Type:  typ,
			Pid:   pid,
		},
	})
}

type replyCreate struct{ t *Token }

func (r *replyCreate) Create(
	fh fuseops.HandleID,
	attr fuseops.FileAttr,
	entryOpts *fuseops.EntryOptions,
	openOpts *fuseops.OpenOptions) (Replied, error) {
	return r.t.send(&fuseops.CreateOut{
		Entry: makeEntryOut(attr, entryOpts),
		Open:  makeOpenOut(fh, openOpts),
	})
}

type replyBmap struct{ t *Token }

func (r *replyBmap) Block(block uint64) (Replied, error) {
	return r.t.send(&fuseops.BmapOut{Block: block})
}

type replyPoll struct{ t *Token }

func (r *replyPoll) Revents(ev fuseops.PollEvents) (Replied, error) {
	return r.t.send(&fuseops.PollEventsOut{Revents: ev})
}
