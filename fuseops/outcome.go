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

import (
	"fmt"
	"syscall"
	"time"
)

// The protocol-level result of answering one request, handed to the
// transport for encoding. Exactly one outcome is produced per request.
type Outcome interface {
	// A short name for the kind of outcome, e.g. "entry" or "error". Used as a
	// metric label.
	Kind() string

	String() string
}

// The outcome of a lookup, mkdir, mknod, symlink or link.
type EntryOut struct {
	// Zero for a negative entry.
	Inode      InodeID
	Generation GenerationNumber
	Attr       Attr

	AttrTTL  time.Duration
	EntryTTL time.Duration
}

// Negative reports whether the entry records that the name does not exist.
func (o *EntryOut) Negative() bool {
	return o.Inode == 0
}

func (o *EntryOut) Kind() string { return "entry" }

func (o *EntryOut) String() string {
	if o.Negative() {
		return fmt.Sprintf("negative entry (entry_ttl=%v)", o.EntryTTL)
	}

	return fmt.Sprintf(
		"entry ino=%v gen=%d attr=%v attr_ttl=%v entry_ttl=%v",
		o.Inode,
		o.Generation,
		o.Attr,
		o.AttrTTL,
		o.EntryTTL)
}

type AttrOut struct {
	Attr Attr
	TTL  time.Duration
}

func (o *AttrOut) Kind() string { return "attr" }
func (o *AttrOut) String() string {
	return fmt.Sprintf("attr %v ttl=%v", o.Attr, o.TTL)
}

// An empty success.
type OkOut struct{}

func (o *OkOut) Kind() string   { return "ok" }
func (o *OkOut) String() string { return "OK" }

type DataOut struct {
	Data []byte
}

func (o *DataOut) Kind() string { return "data" }
func (o *DataOut) String() string {
	return fmt.Sprintf("data (%d bytes)", len(o.Data))
}

type OpenOut struct {
	Handle HandleID
	Flags  OpenFlags
}

func (o *OpenOut) Kind() string { return "open" }
func (o *OpenOut) String() string {
	return fmt.Sprintf("open fh=%d flags=%v", o.Handle, o.Flags)
}

// The number of bytes accepted by a write. May be less than requested.
type WriteOut struct {
	Size uint32
}

func (o *WriteOut) Kind() string { return "write" }
func (o *WriteOut) String() string {
	return fmt.Sprintf("wrote %d bytes", o.Size)
}

type StatfsOut struct {
	Stat Statfs
}

func (o *StatfsOut) Kind() string { return "statfs" }
func (o *StatfsOut) String() string {
	return fmt.Sprintf("statfs %+v", o.Stat)
}

// The size of an extended attribute value or list, in answer to a request
// with a zero-sized buffer.
type XattrSizeOut struct {
	Size uint32
}

func (o *XattrSizeOut) Kind() string { return "xattr_size" }
func (o *XattrSizeOut) String() string {
	return fmt.Sprintf("xattr size %d", o.Size)
}

type XattrDataOut struct {
	Data []byte
}

func (o *XattrDataOut) Kind() string { return "xattr_data" }
func (o *XattrDataOut) String() string {
	return fmt.Sprintf("xattr data (%d bytes)", len(o.Data))
}

type LkOut struct {
	Lock FileLock
}

func (o *LkOut) Kind() string { return "lk" }
func (o *LkOut) String() string {
	return fmt.Sprintf("lk %v", o.Lock)
}

type CreateOut struct {
	Entry EntryOut
	Open  OpenOut
}

func (o *CreateOut) Kind() string { return "create" }
func (o *CreateOut) String() string {
	return fmt.Sprintf("create (%v) (%v)", &o.Entry, &o.Open)
}

type BmapOut struct {
	Block uint64
}

func (o *BmapOut) Kind() string { return "bmap" }
func (o *BmapOut) String() string {
	return fmt.Sprintf("bmap block=%d", o.Block)
}

type PollEventsOut struct {
	Revents PollEvents
}

func (o *PollEventsOut) Kind() string { return "poll" }
func (o *PollEventsOut) String() string {
	return fmt.Sprintf("poll revents=%v", o.Revents)
}

type DirsOut struct {
	Entries []DirentRecord
}

// Size returns the number of bytes the records occupy in the response.
func (o *DirsOut) Size() (n int) {
	for _, e := range o.Entries {
		n += DirentSize(len(e.Name))
	}

	return
}

func (o *DirsOut) Kind() string { return "dirs" }
func (o *DirsOut) String() string {
	return fmt.Sprintf("dirs (%d entries, %d bytes)", len(o.Entries), o.Size())
}

type DirsPlusOut struct {
	Entries []DirentPlusRecord
}

func (o *DirsPlusOut) Size() (n int) {
	for _, e := range o.Entries {
		n += DirentPlusSize(len(e.Name))
	}

	return
}

func (o *DirsPlusOut) Kind() string { return "dirs_plus" }
func (o *DirsPlusOut) String() string {
	return fmt.Sprintf("dirs plus (%d entries, %d bytes)", len(o.Entries), o.Size())
}

// A failed request. Errno is never zero.
type ErrorOut struct {
	Errno syscall.Errno
}

func (o *ErrorOut) Kind() string { return "error" }
func (o *ErrorOut) String() string {
	return fmt.Sprintf("error: %v", o.Errno)
}
