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
	"github.com/jacobsa/fusereply/fuseops"
)

// Accumulates the records of a ReadDir response within the byte budget the
// kernel declared, then sends them.
//
// Add returns false when the record does not fit. Nothing of a rejected
// record is kept, and once a record has been rejected the response is full:
// every later Add returns false too, even for a record small enough to fit.
// The file system should stop and Send what it has; the kernel will ask
// again from the offset of the last record it consumed.
//
// Offsets must be strictly increasing within one response. Calling Add after
// Send panics. A ReplyDirs is not safe for concurrent use.
type ReplyDirs interface {
	Add(d fuseops.Dirent, offset fuseops.DirOffset) bool
	Send() (Replied, error)
}

// As ReplyDirs, for ReadDirPlus. Each record also carries an entry for the
// child, built from attr and opts exactly as ReplyEntry would build it.
type ReplyDirsPlus interface {
	Add(
		d fuseops.Dirent,
		offset fuseops.DirOffset,
		attr fuseops.FileAttr,
		opts *fuseops.EntryOptions) bool

	Send() (Replied, error)
}

// Create a ReplyDirs whose records may occupy at most size bytes, as
// accounted by fuseops.DirentSize.
func NewReplyDirs(t *Token, size int) ReplyDirs {
	return &replyDirs{
		t:     t,
		space: dirSpace{capacity: size},
	}
}

// Create a ReplyDirsPlus whose records may occupy at most size bytes, as
// accounted by fuseops.DirentPlusSize.
func NewReplyDirsPlus(t *Token, size int) ReplyDirsPlus {
	return &replyDirsPlus{
		t:     t,
		space: dirSpace{capacity: size},
	}
}

////////////////////////////////////////////////////////////////////////
// Capacity accounting
////////////////////////////////////////////////////////////////////////

type dirSpace struct {
	capacity int
	used     int

	// Set when a record has been rejected. Never cleared.
	full bool

	// Set by Send.
	sent bool
}

func (s *dirSpace) checkNotSent() {
	if s.sent {
		panic("Add called on a directory reply that was already sent")
	}
}

// Reserve n bytes, returning false if they do not fit.
func (s *dirSpace) reserve(n int) bool {
	s.checkNotSent()

	if s.full {
		return false
	}

	if s.used+n > s.capacity {
		s.full = true
		return false
	}

	s.used += n
	return true
}

////////////////////////////////////////////////////////////////////////
// Implementations
////////////////////////////////////////////////////////////////////////

type replyDirs struct {
	t       *Token
	space   dirSpace
	entries []fuseops.DirentRecord
}

func (r *replyDirs) Add(d fuseops.Dirent, offset fuseops.DirOffset) bool {
	if !r.space.reserve(fuseops.DirentSize(len(d.Name))) {
		return false
	}

	r.entries = append(r.entries, fuseops.DirentRecord{
		Dirent: d,
		Offset: offset,
	})

	return true
}

func (r *replyDirs) Send() (Replied, error) {
	r.space.sent = true
	return r.t.send(&fuseops.DirsOut{Entries: r.entries})
}

type replyDirsPlus struct {
	t       *Token
	space   dirSpace
	entries []fuseops.DirentPlusRecord
}

func (r *replyDirsPlus) Add(
	d fuseops.Dirent,
	offset fuseops.DirOffset,
	attr fuseops.FileAttr,
	opts *fuseops.EntryOptions) bool {
	r.space.checkNotSent()

	entry := makeEntryOut(attr, opts)
	if !r.space.reserve(fuseops.DirentPlusSize(len(d.Name))) {
		return false
	}

	r.entries = append(r.entries, fuseops.DirentPlusRecord{
		Dirent: d,
		Offset: offset,
		Entry:  entry,
	})

	return true
}

func (r *replyDirsPlus) Send() (Replied, error) {
	r.space.sent = true
	return r.t.send(&fuseops.DirsPlusOut{Entries: r.entries})
}
