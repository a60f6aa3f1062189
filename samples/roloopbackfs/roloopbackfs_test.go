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

package roloopbackfs_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"golang.org/x/sys/unix"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
	"github.com/jacobsa/fusereply/fusetesting"
	"github.com/jacobsa/fusereply/samples/roloopbackfs"
)

func TestReadonlyLoopbackFS(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type ReadonlyLoopbackFSTest struct {
	ctx          context.Context
	physicalPath string
	recorder     fusetesting.Recorder
	server       *fusereply.Server
	nextUnique   uint64
}

func init() { RegisterTestSuite(&ReadonlyLoopbackFSTest{}) }

func (t *ReadonlyLoopbackFSTest) SetUp(ti *TestInfo) {
	var err error
	t.ctx = context.Background()

	t.physicalPath, err = os.MkdirTemp("", "roloopbackfs_test")
	AssertEq(nil, err)

	t.fillPhysicalFS()

	fs, err := roloopbackfs.NewReadonlyLoopbackFS(t.physicalPath, log.NewNopLogger())
	AssertEq(nil, err)

	t.server = fusereply.NewServer(
		fs,
		&t.recorder,
		&fusereply.ServerConfig{Logger: log.NewNopLogger()})
}

func (t *ReadonlyLoopbackFSTest) TearDown() {
	err := os.RemoveAll(t.physicalPath)
	if err != nil {
		panic(err)
	}
}

// Lay out:
//
//     dir_1/file.txt  ("dir 1")
//     dir_2/file.txt  ("dir 2")
//     dir_3/file.txt  ("dir 3")
//     link -> dir_1/file.txt
//     top.txt         ("taco")
func (t *ReadonlyLoopbackFSTest) fillPhysicalFS() {
	for i := 1; i <= 3; i++ {
		dir := filepath.Join(t.physicalPath, fmt.Sprintf("dir_%d", i))
		AssertEq(nil, os.Mkdir(dir, 0755))

		contents := []byte(fmt.Sprintf("dir %d", i))
		AssertEq(nil, os.WriteFile(filepath.Join(dir, "file.txt"), contents, 0644))
	}

	AssertEq(nil, os.Symlink("dir_1/file.txt", filepath.Join(t.physicalPath, "link")))

	top := filepath.Join(t.physicalPath, "top.txt")
	AssertEq(nil, os.WriteFile(top, []byte("taco"), 0644))
	AssertEq(nil, os.Chmod(top, 0644))
}

// Hand the op to the server and return the outcome it produced.
func (t *ReadonlyLoopbackFSTest) do(op interface{}) fuseops.Outcome {
	t.nextUnique++
	err := t.server.HandleOp(t.ctx, t.nextUnique, op)
	AssertEq(nil, err)

	return t.recorder.Outcome(t.nextUnique)
}

func (t *ReadonlyLoopbackFSTest) lookUp(
	parent fuseops.InodeID,
	name string) *fuseops.EntryOut {
	out := t.do(&fuseops.LookUpInodeOp{Parent: parent, Name: name})
	AssertThat(out, fusetesting.IsKind("entry"))

	return out.(*fuseops.EntryOut)
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *ReadonlyLoopbackFSTest) RootAttributes() {
	out := t.do(&fuseops.GetInodeAttributesOp{Inode: fuseops.RootInodeID})
	AssertThat(out, fusetesting.IsKind("attr"))

	ExpectTrue(out.(*fuseops.AttrOut).Attr.Mode.IsDir())
}

func (t *ReadonlyLoopbackFSTest) LookUpFile() {
	entry := t.lookUp(fuseops.RootInodeID, "top.txt")

	var st unix.Stat_t
	AssertEq(nil, unix.Lstat(filepath.Join(t.physicalPath, "top.txt"), &st))

	ExpectEq(st.Ino, entry.Inode)
	ExpectEq(4, entry.Attr.Size)
	ExpectEq(os.FileMode(0644), entry.Attr.Mode)
	ExpectNe(0, entry.EntryTTL)
}

func (t *ReadonlyLoopbackFSTest) LookUpNonExistent() {
	out := t.do(&fuseops.LookUpInodeOp{
		Parent: fuseops.RootInodeID,
		Name:   "burrito",
	})

	ExpectThat(out, fusetesting.IsErrno(fusereply.ENOENT))
}

func (t *ReadonlyLoopbackFSTest) LookUpInsideFile() {
	file := t.lookUp(fuseops.RootInodeID, "top.txt")

	out := t.do(&fuseops.LookUpInodeOp{Parent: file.Inode, Name: "foo"})
	ExpectThat(out, fusetesting.IsErrno(fusereply.ENOTDIR))
}

func (t *ReadonlyLoopbackFSTest) HardLinksShareAnEntry() {
	AssertEq(
		nil,
		os.Link(
			filepath.Join(t.physicalPath, "top.txt"),
			filepath.Join(t.physicalPath, "hard.txt")))

	top := t.lookUp(fuseops.RootInodeID, "top.txt")
	hard := t.lookUp(fuseops.RootInodeID, "hard.txt")

	ExpectEq(top.Inode, hard.Inode)
	ExpectEq(top.Generation, hard.Generation)

	// Looking up the first name again doesn't disturb the entry.
	ExpectEq(top.Generation, t.lookUp(fuseops.RootInodeID, "top.txt").Generation)
}

func (t *ReadonlyLoopbackFSTest) MovedInodeGetsNextGeneration() {
	before := t.lookUp(fuseops.RootInodeID, "top.txt")

	// Move the file away and put something else at its old path.
	AssertEq(
		nil,
		os.Rename(
			filepath.Join(t.physicalPath, "top.txt"),
			filepath.Join(t.physicalPath, "moved.txt")))

	AssertEq(
		nil,
		os.WriteFile(filepath.Join(t.physicalPath, "top.txt"), []byte("burrito"), 0644))

	after := t.lookUp(fuseops.RootInodeID, "moved.txt")
	AssertEq(before.Inode, after.Inode)
	ExpectEq(before.Generation+1, after.Generation)

	// The inode is now served from its new path.
	out := t.do(&fuseops.GetInodeAttributesOp{Inode: after.Inode})
	AssertThat(out, fusetesting.IsKind("attr"))
	ExpectEq(4, out.(*fuseops.AttrOut).Attr.Size)

	replacement := t.lookUp(fuseops.RootInodeID, "top.txt")
	ExpectNe(after.Inode, replacement.Inode)
	ExpectEq(7, replacement.Attr.Size)
}

func (t *ReadonlyLoopbackFSTest) UnknownInode() {
	out := t.do(&fuseops.GetInodeAttributesOp{Inode: 1 << 40})
	ExpectThat(out, fusetesting.IsErrno(fusereply.ENOENT))
}

func (t *ReadonlyLoopbackFSTest) ReadDir() {
	out := t.do(&fuseops.ReadDirOp{Inode: fuseops.RootInodeID, Size: 4096})
	AssertThat(out, fusetesting.IsKind("dirs"))

	ExpectThat(
		fusetesting.DirentNames(out),
		ElementsAre("dir_1", "dir_2", "dir_3", "link", "top.txt"))

	ExpectThat(out, fusetesting.HasIncreasingOffsets())

	entries := out.(*fuseops.DirsOut).Entries
	AssertEq(5, len(entries))
	ExpectEq(fuseops.DT_Directory, entries[0].Type)
	ExpectEq(fuseops.DT_Link, entries[3].Type)
	ExpectEq(fuseops.DT_File, entries[4].Type)
}

func (t *ReadonlyLoopbackFSTest) ReadDir_Paged() {
	// Every name here has at most eight bytes, so each record takes 32.
	const pageSize = 64

	var names []string
	offset := fuseops.DirOffset(0)
	for {
		out := t.do(&fuseops.ReadDirOp{
			Inode:  fuseops.RootInodeID,
			Offset: offset,
			Size:   pageSize,
		})

		AssertThat(out, fusetesting.IsKind("dirs"))
		dirs := out.(*fuseops.DirsOut)
		if len(dirs.Entries) == 0 {
			break
		}

		AssertLe(dirs.Size(), pageSize)
		names = append(names, fusetesting.DirentNames(out)...)
		offset = dirs.Entries[len(dirs.Entries)-1].Offset
	}

	ExpectThat(names, ElementsAre("dir_1", "dir_2", "dir_3", "link", "top.txt"))
}

func (t *ReadonlyLoopbackFSTest) ReadDirPlus() {
	out := t.do(&fuseops.ReadDirPlusOp{Inode: fuseops.RootInodeID, Size: 4096})
	AssertThat(out, fusetesting.IsKind("dirs_plus"))

	entries := out.(*fuseops.DirsPlusOut).Entries
	AssertEq(5, len(entries))

	for _, e := range entries {
		ExpectEq(e.Inode, e.Entry.Inode, "name: %s", e.Name)
	}

	ExpectTrue(entries[0].Entry.Attr.Mode.IsDir())
	ExpectEq(4, entries[4].Entry.Attr.Size)
}

func (t *ReadonlyLoopbackFSTest) ReadFile() {
	dir := t.lookUp(fuseops.RootInodeID, "dir_2")
	file := t.lookUp(dir.Inode, "file.txt")

	AssertThat(
		t.do(&fuseops.OpenFileOp{Inode: file.Inode, Flags: unix.O_RDONLY}),
		fusetesting.IsKind("open"))

	out := t.do(&fuseops.ReadFileOp{Inode: file.Inode, Offset: 2, Size: 100})
	AssertThat(out, fusetesting.IsKind("data"))
	ExpectEq("r 2", string(out.(*fuseops.DataOut).Data))
}

func (t *ReadonlyLoopbackFSTest) ReadFile_PastEnd() {
	file := t.lookUp(fuseops.RootInodeID, "top.txt")

	out := t.do(&fuseops.ReadFileOp{Inode: file.Inode, Offset: 100, Size: 10})
	AssertThat(out, fusetesting.IsKind("data"))
	ExpectEq(0, len(out.(*fuseops.DataOut).Data))
}

func (t *ReadonlyLoopbackFSTest) ReadSymlink() {
	link := t.lookUp(fuseops.RootInodeID, "link")
	ExpectEq(os.ModeSymlink, link.Attr.Mode&os.ModeType)

	out := t.do(&fuseops.ReadSymlinkOp{Inode: link.Inode})
	AssertThat(out, fusetesting.IsKind("data"))
	ExpectEq("dir_1/file.txt", string(out.(*fuseops.DataOut).Data))
}

func (t *ReadonlyLoopbackFSTest) StatFS() {
	out := t.do(&fuseops.StatFSOp{})
	AssertThat(out, fusetesting.IsKind("statfs"))

	ExpectGt(out.(*fuseops.StatfsOut).Stat.Bsize, 0)
}

func (t *ReadonlyLoopbackFSTest) WritesAreRefused() {
	file := t.lookUp(fuseops.RootInodeID, "top.txt")

	ExpectThat(
		t.do(&fuseops.OpenFileOp{Inode: file.Inode, Flags: unix.O_RDWR}),
		fusetesting.IsErrno(unix.EROFS))

	ExpectThat(
		t.do(&fuseops.WriteFileOp{Inode: file.Inode, Data: []byte("x")}),
		fusetesting.IsErrno(unix.EROFS))

	ExpectThat(
		t.do(&fuseops.MkDirOp{Parent: fuseops.RootInodeID, Name: "foo"}),
		fusetesting.IsErrno(unix.EROFS))

	ExpectThat(
		t.do(&fuseops.UnlinkOp{Parent: fuseops.RootInodeID, Name: "top.txt"}),
		fusetesting.IsErrno(unix.EROFS))

	// The underlying file is untouched.
	contents, err := os.ReadFile(filepath.Join(t.physicalPath, "top.txt"))
	AssertEq(nil, err)
	ExpectEq("taco", string(contents))
}

func (t *ReadonlyLoopbackFSTest) GetXattr_Missing() {
	file := t.lookUp(fuseops.RootInodeID, "top.txt")

	// ENODATA where the underlying file system supports extended attributes,
	// EOPNOTSUPP where it doesn't.
	out := t.do(&fuseops.GetXattrOp{Inode: file.Inode, Name: "user.foo"})
	ExpectThat(
		out,
		AnyOf(
			fusetesting.IsErrno(fusereply.ENODATA),
			fusetesting.IsErrno(unix.EOPNOTSUPP)))
}
