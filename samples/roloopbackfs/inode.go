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

package roloopbackfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/jacobsa/fusereply/fuseops"
)

// A file or directory in the mirrored tree. Inodes other than the root are
// identified by their inode number in the underlying file system. Entries are
// never modified; a refreshed entry replaces the old one in the table.
type inodeEntry struct {
	id         fuseops.InodeID
	generation fuseops.GenerationNumber
	path       string
}

func (in *inodeEntry) String() string {
	return fmt.Sprintf("%v::%v", in.id, in.path)
}

// Stat the entry without following symlinks.
func (in *inodeEntry) stat() (st unix.Stat_t, err error) {
	if err = unix.Lstat(in.path, &st); err != nil {
		err = &os.PathError{Op: "lstat", Path: in.path, Err: err}
	}

	return
}

// Does the entry's path still lead to the inode it was recorded for?
func (in *inodeEntry) current() bool {
	st, err := in.stat()
	return err == nil && fuseops.InodeID(st.Ino) == in.id
}

// An index of the entries the kernel has been told about, by inode ID.
type inodeTable struct {
	// Serializes changes to m. Readers don't take it.
	mu sync.Mutex

	m sync.Map
}

func (t *inodeTable) get(id fuseops.InodeID) (in *inodeEntry, ok bool) {
	v, ok := t.m.Load(id)
	if ok {
		in = v.(*inodeEntry)
	}

	return
}

// Find the named child of the given directory on disk and record it in the
// table. The returned error wraps the errno from lstat(2) when the child
// doesn't exist.
//
// If the inode number is already recorded under a path that no longer leads
// to it, the file was renamed or its number was reused by the underlying file
// system. Either way the entry moves to the new path with the next
// generation, so the kernel never sees the same (inode, generation) pair for
// two different files. Hard links keep the entry they already have.
func (t *inodeTable) lookUpChild(
	parent *inodeEntry,
	name string) (in *inodeEntry, st unix.Stat_t, err error) {
	path := filepath.Join(parent.path, name)
	if err = unix.Lstat(path, &st); err != nil {
		err = &os.PathError{Op: "lstat", Path: path, Err: err}
		return
	}

	id := fuseops.InodeID(st.Ino)
	if id == fuseops.RootInodeID {
		// Reserved for the mirrored root itself.
		err = fmt.Errorf("%s: inode number collides with the root", path)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	in = &inodeEntry{id: id, path: path}
	if old, ok := t.get(id); ok {
		if old.path == path || old.current() {
			in = old
			return
		}

		in.generation = old.generation + 1
	}

	t.m.Store(id, in)
	return
}

// List the children of the directory, in name order, recording each in the
// table.
func (t *inodeTable) children(dir *inodeEntry) (dirents []fuseops.Dirent, err error) {
	entries, err := os.ReadDir(dir.path)
	if err != nil {
		return
	}

	for _, e := range entries {
		child, _, err := t.lookUpChild(dir, e.Name())
		if err != nil {
			// Removed since the listing was read.
			continue
		}

		dirents = append(dirents, fuseops.Dirent{
			Inode: child.id,
			Name:  e.Name(),
			Type:  fuseops.DirentTypeForMode(e.Type()),
		})
	}

	return
}
