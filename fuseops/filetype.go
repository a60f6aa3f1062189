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
	"os"

	"golang.org/x/sys/unix"
)

// The type of a directory record, as in the d_type field of struct dirent.
type DirentType uint32

const (
	DT_Unknown   DirentType = unix.DT_UNKNOWN
	DT_Socket    DirentType = unix.DT_SOCK
	DT_Link      DirentType = unix.DT_LNK
	DT_File      DirentType = unix.DT_REG
	DT_Block     DirentType = unix.DT_BLK
	DT_Directory DirentType = unix.DT_DIR
	DT_Char      DirentType = unix.DT_CHR
	DT_FIFO      DirentType = unix.DT_FIFO
)

func (t DirentType) String() string {
	switch t {
	case DT_Socket:
		return "socket"
	case DT_Link:
		return "symlink"
	case DT_File:
		return "file"
	case DT_Block:
		return "block"
	case DT_Directory:
		return "directory"
	case DT_Char:
		return "char"
	case DT_FIFO:
		return "fifo"
	}

	return "unknown"
}

// Return the directory record type matching the type bits of the supplied
// mode.
func DirentTypeForMode(mode os.FileMode) DirentType {
	switch {
	case mode&os.ModeDir != 0:
		return DT_Directory
	case mode&os.ModeSymlink != 0:
		return DT_Link
	case mode&os.ModeNamedPipe != 0:
		return DT_FIFO
	case mode&os.ModeSocket != 0:
		return DT_Socket
	case mode&os.ModeCharDevice != 0:
		return DT_Char
	case mode&os.ModeDevice != 0:
		return DT_Block
	case mode&os.ModeType == 0:
		return DT_File
	}

	return DT_Unknown
}

// Convert a raw st_mode word into an os.FileMode.
func ConvertUnixMode(m uint32) (mode os.FileMode) {
	mode = os.FileMode(m & 0777)

	switch m & unix.S_IFMT {
	case unix.S_IFDIR:
		mode |= os.ModeDir
	case unix.S_IFLNK:
		mode |= os.ModeSymlink
	case unix.S_IFIFO:
		mode |= os.ModeNamedPipe
	case unix.S_IFSOCK:
		mode |= os.ModeSocket
	case unix.S_IFCHR:
		mode |= os.ModeDevice | os.ModeCharDevice
	case unix.S_IFBLK:
		mode |= os.ModeDevice
	}

	if m&unix.S_ISUID != 0 {
		mode |= os.ModeSetuid
	}

	if m&unix.S_ISGID != 0 {
		mode |= os.ModeSetgid
	}

	if m&unix.S_ISVTX != 0 {
		mode |= os.ModeSticky
	}

	return
}
