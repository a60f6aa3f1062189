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
	"strings"

	"golang.org/x/sys/unix"
)

// The type of a POSIX record lock, as in struct flock's l_type.
type LockType uint32

const (
	LockRead   LockType = unix.F_RDLCK
	LockWrite  LockType = unix.F_WRLCK
	LockUnlock LockType = unix.F_UNLCK
)

func (t LockType) String() string {
	switch t {
	case LockRead:
		return "F_RDLCK"
	case LockWrite:
		return "F_WRLCK"
	case LockUnlock:
		return "F_UNLCK"
	}

	return fmt.Sprintf("LockType(%d)", uint32(t))
}

// A byte range lock on a file. End is inclusive.
type FileLock struct {
	Start uint64
	End   uint64
	Type  LockType

	// The process holding the lock.
	Pid uint32
}

func (l FileLock) String() string {
	return fmt.Sprintf("%v [%d, %d] pid=%d", l.Type, l.Start, l.End, l.Pid)
}

// A mask of poll(2) events.
type PollEvents uint32

const (
	PollIn   PollEvents = unix.POLLIN
	PollPri  PollEvents = unix.POLLPRI
	PollOut  PollEvents = unix.POLLOUT
	PollErr  PollEvents = unix.POLLERR
	PollHup  PollEvents = unix.POLLHUP
	PollNval PollEvents = unix.POLLNVAL

	// Values from the Linux <poll.h>; golang.org/x/sys/unix only exports the
	// EPOLL forms of these.
	PollRdNorm PollEvents = 0x40
	PollRdBand PollEvents = 0x80
	PollWrNorm PollEvents = 0x100
	PollWrBand PollEvents = 0x200
)

var pollEventNames = []struct {
	ev   PollEvents
	name string
}{
	{PollIn, "IN"},
	{PollPri, "PRI"},
	{PollOut, "OUT"},
	{PollErr, "ERR"},
	{PollHup, "HUP"},
	{PollNval, "NVAL"},
	{PollRdNorm, "RDNORM"},
	{PollRdBand, "RDBAND"},
	{PollWrNorm, "WRNORM"},
	{PollWrBand, "WRBAND"},
}

func (ev PollEvents) String() string {
	var names []string
	for _, e := range pollEventNames {
		if ev&e.ev != 0 {
			names = append(names, e.name)
			ev &^= e.ev
		}
	}

	if ev != 0 {
		names = append(names, fmt.Sprintf("%#x", uint32(ev)))
	}

	if len(names) == 0 {
		return "0"
	}

	return strings.Join(names, "|")
}
