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

package fusereply_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
	"github.com/jacobsa/fusereply/fusetesting"
	"github.com/jacobsa/fusereply/fuseutil"
)

func TestServer(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// A file system whose LookUpInode and Unlink behave as the test says.
type scriptedFS struct {
	fuseutil.NotImplementedFileSystem

	lookUp func(
		op *fuseops.LookUpInodeOp,
		reply fusereply.ReplyEntry) (fusereply.Replied, error)

	unlink func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error)
}

func (fs *scriptedFS) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp,
	reply fusereply.ReplyEntry) (fusereply.Replied, error) {
	return fs.lookUp(op, reply)
}

func (fs *scriptedFS) Unlink(
	ctx context.Context,
	op *fuseops.UnlinkOp,
	reply fusereply.ReplyOk) (fusereply.Replied, error) {
	return fs.unlink(op, reply)
}

// An op type the server knows nothing about.
type frobnicateOp struct{}

const misuseHeader = `
# HELP fuse_reply_misuse_total Ops the file system answered incorrectly, by kind of mistake.
# TYPE fuse_reply_misuse_total counter
`

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type ServerTest struct {
	ctx      context.Context
	fs       scriptedFS
	recorder fusetesting.Recorder
	registry *prometheus.Registry
	logs     bytes.Buffer
	server   *fusereply.Server
}

func init() { RegisterTestSuite(&ServerTest{}) }

func (t *ServerTest) SetUp(ti *TestInfo) {
	t.ctx = context.Background()
	t.registry = prometheus.NewRegistry()
	t.server = fusereply.NewServer(
		&t.fs,
		&t.recorder,
		&fusereply.ServerConfig{
			Logger:     log.NewLogfmtLogger(log.NewSyncWriter(&t.logs)),
			Registerer: t.registry,
		})
}

// The number of series the registry holds for the named metric.
func (t *ServerTest) seriesCount(name string) int {
	n, err := testutil.GatherAndCount(t.registry, name)
	AssertEq(nil, err)
	return n
}

// Expect the misuse counter to have exactly one series, with the given kind
// and count, or none at all if count is zero.
func (t *ServerTest) expectMisuse(kind string, count int) {
	if count == 0 {
		ExpectEq(0, t.seriesCount("fuse_reply_misuse_total"))
		return
	}

	expected := misuseHeader +
		fmt.Sprintf("fuse_reply_misuse_total{kind=%q} %d\n", kind, count)

	err := testutil.GatherAndCompare(
		t.registry,
		strings.NewReader(expected),
		"fuse_reply_misuse_total")

	ExpectEq(nil, err)
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *ServerTest) Replied() {
	t.fs.lookUp = func(
		op *fuseops.LookUpInodeOp,
		reply fusereply.ReplyEntry) (fusereply.Replied, error) {
		return reply.Entry(
			fusetesting.AttrOf(fuseops.Attr{Ino: 2}),
			&fuseops.EntryOptions{Inode: 2})
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.LookUpInodeOp{
		Parent: fuseops.RootInodeID,
		Name:   "foo",
	})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsKind("entry"))
	ExpectEq(1, t.seriesCount("fuse_ops_total"))
	t.expectMisuse("", 0)
}

func (t *ServerTest) ErrorWithoutReply() {
	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		return fusereply.Replied{}, fusereply.ENOENT
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.ENOENT))
	t.expectMisuse("", 0)
}

func (t *ServerTest) WrappedErrorWithoutReply() {
	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		return fusereply.Replied{}, errors.New("taco")
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.EIO))
}

func (t *ServerTest) NotImplemented() {
	err := t.server.HandleOp(t.ctx, 11, &fuseops.StatFSOp{})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.ENOSYS))
	t.expectMisuse("", 0)
}

func (t *ServerTest) ReturnedWithoutReplying() {
	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		return fusereply.Replied{}, nil
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.EIO))
	ExpectThat(t.logs.String(), HasSubstr("without replying"))
	t.expectMisuse("no_reply", 1)
}

func (t *ServerTest) ErrorAfterReply() {
	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		if _, err := reply.Ok(); err != nil {
			return fusereply.Replied{}, err
		}

		return fusereply.Replied{}, errors.New("cleanup failed")
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	// The reply stands; the late error is only logged.
	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsKind("ok"))
	ExpectThat(t.logs.String(), HasSubstr("cleanup failed"))
	t.expectMisuse("error_after_reply", 1)
}

func (t *ServerTest) SinkFailure() {
	sinkErr := errors.New("connection reset")
	t.recorder.SetError(sinkErr)

	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		return reply.Ok()
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, sinkErr))
	ExpectEq(1, len(t.recorder.Replies()))
	t.expectMisuse("", 0)
}

func (t *ServerTest) SinkFailureOnErrorReply() {
	sinkErr := errors.New("connection reset")
	t.recorder.SetError(sinkErr)

	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		return fusereply.Replied{}, fusereply.ENOENT
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	ExpectTrue(errors.Is(err, sinkErr))
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.ENOENT))
}

func (t *ServerTest) SinkFailureIgnoredByFileSystem() {
	sinkErr := errors.New("connection reset")
	t.recorder.SetError(sinkErr)

	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		r, _ := reply.Ok()
		return r, nil
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, sinkErr))
	ExpectEq(fusereply.EIO, fusereply.Errno(err))
	ExpectEq(1, len(t.recorder.Replies()))
	ExpectThat(t.logs.String(), HasSubstr("failed to send reply"))
	t.expectMisuse("", 0)
}

func (t *ServerTest) SinkFailureThenUnrelatedError() {
	sinkErr := errors.New("connection reset")
	t.recorder.SetError(sinkErr)

	t.fs.unlink = func(
		op *fuseops.UnlinkOp,
		reply fusereply.ReplyOk) (fusereply.Replied, error) {
		reply.Ok()
		return fusereply.Replied{}, errors.New("cleanup failed")
	}

	err := t.server.HandleOp(t.ctx, 11, &fuseops.UnlinkOp{Name: "foo"})

	AssertNe(nil, err)
	ExpectTrue(errors.Is(err, sinkErr))
	ExpectEq(1, len(t.recorder.Replies()))
	ExpectThat(t.logs.String(), HasSubstr("cleanup failed"))
	t.expectMisuse("error_after_reply", 1)
}

func (t *ServerTest) UnknownOp() {
	err := t.server.HandleOp(t.ctx, 11, &frobnicateOp{})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.ENOSYS))
	t.expectMisuse("unknown_op", 1)
}

func (t *ServerTest) ReadDirCapacityComesFromOp() {
	err := t.server.HandleOp(t.ctx, 11, &fuseops.ReadDirOp{Size: 4096})

	// NotImplementedFileSystem never touches the contract.
	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(11), fusetesting.IsErrno(fusereply.ENOSYS))
}

func (t *ServerTest) NilConfig() {
	server := fusereply.NewServer(&t.fs, &t.recorder, nil)

	err := server.HandleOp(t.ctx, 12, &fuseops.StatFSOp{})

	AssertEq(nil, err)
	ExpectThat(t.recorder.Outcome(12), fusetesting.IsErrno(fusereply.ENOSYS))
}
