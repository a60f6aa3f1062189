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

package fuseutil_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/go-kit/log"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
	"github.com/jacobsa/fusereply/fusetesting"
	"github.com/jacobsa/fusereply/fuseutil"
)

func TestFileSystem(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// An OpSource that hands out a fixed list of ops, then the final error.
type sliceSource struct {
	ops   []interface{}
	final error
	read  int
}

func (s *sliceSource) ReadOp(
	ctx context.Context) (unique uint64, op interface{}, err error) {
	if s.read == len(s.ops) {
		err = s.final
		return
	}

	op = s.ops[s.read]
	s.read++
	unique = uint64(s.read)
	return
}

// Answers StatFS; everything else is not implemented.
type statFS struct {
	fuseutil.NotImplementedFileSystem
}

func (fs *statFS) StatFS(
	ctx context.Context,
	op *fuseops.StatFSOp,
	reply fusereply.ReplyStatfs) (fusereply.Replied, error) {
	return reply.Statfs(fusetesting.StatfsOf(fuseops.Statfs{Bsize: 4096}))
}

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type ServeOpsTest struct {
	ctx      context.Context
	recorder fusetesting.Recorder
	server   *fusereply.Server
}

func init() { RegisterTestSuite(&ServeOpsTest{}) }

func (t *ServeOpsTest) SetUp(ti *TestInfo) {
	t.ctx = context.Background()
	t.server = fusereply.NewServer(
		&statFS{},
		&t.recorder,
		&fusereply.ServerConfig{Logger: log.NewNopLogger()})
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *ServeOpsTest) EmptySource() {
	src := &sliceSource{final: io.EOF}

	err := fuseutil.ServeOps(t.ctx, src, t.server)

	ExpectEq(nil, err)
	ExpectEq(0, len(t.recorder.Replies()))
}

func (t *ServeOpsTest) AnswersEveryOpInOrder() {
	src := &sliceSource{
		ops: []interface{}{
			&fuseops.StatFSOp{},
			&fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "foo"},
			&fuseops.StatFSOp{},
		},
		final: io.EOF,
	}

	err := fuseutil.ServeOps(t.ctx, src, t.server)
	AssertEq(nil, err)

	replies := t.recorder.Replies()
	AssertEq(3, len(replies))

	ExpectEq(1, replies[0].Unique)
	ExpectThat(replies[0].Out, fusetesting.IsKind("statfs"))

	ExpectEq(2, replies[1].Unique)
	ExpectThat(replies[1].Out, fusetesting.IsErrno(fusereply.ENOSYS))

	ExpectEq(3, replies[2].Unique)
	ExpectThat(replies[2].Out, fusetesting.IsKind("statfs"))
}

func (t *ServeOpsTest) SourceError() {
	src := &sliceSource{
		ops:   []interface{}{&fuseops.StatFSOp{}},
		final: errors.New("device gone"),
	}

	err := fuseutil.ServeOps(t.ctx, src, t.server)

	ExpectThat(err, Error(HasSubstr("ReadOp")))
	ExpectThat(err, Error(HasSubstr("device gone")))
	ExpectEq(1, len(t.recorder.Replies()))
}

func (t *ServeOpsTest) SinkError() {
	sinkErr := errors.New("connection reset")
	t.recorder.SetError(sinkErr)

	src := &sliceSource{
		ops: []interface{}{
			&fuseops.StatFSOp{},
			&fuseops.StatFSOp{},
		},
		final: io.EOF,
	}

	err := fuseutil.ServeOps(t.ctx, src, t.server)

	ExpectThat(err, Error(HasSubstr("HandleOp(1)")))
	ExpectTrue(errors.Is(err, sinkErr))

	// Serving stops at the first failure.
	ExpectEq(1, src.read)
}
