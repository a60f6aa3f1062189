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
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jacobsa/fusereply/fuseops"
)

// Optional configuration accepted by NewServer.
type ServerConfig struct {
	// The logger to which received ops and protocol misuse are written. If nil,
	// the server logs to stderr when the -fuse.debug flag is set and discards
	// output otherwise.
	Logger log.Logger

	// If non-nil, the server registers its metrics here.
	Registerer prometheus.Registerer
}

// Relays decoded ops to a FileSystem, handing each the reply contract for the
// op and making sure every op is answered exactly once.
//
// Reading ops from the kernel, and choosing which goroutine handles each, is
// left to the caller. HandleOp may be called concurrently.
type Server struct {
	fs     FileSystem
	sink   Sink
	logger log.Logger

	opsTotal    *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	misuseTotal *prometheus.CounterVec
}

// Create a server that relays ops to the supplied file system and replies to
// the supplied sink. cfg may be nil.
func NewServer(fs FileSystem, sink Sink, cfg *ServerConfig) (s *Server) {
	if cfg == nil {
		cfg = &ServerConfig{}
	}

	s = &Server{
		fs:     fs,
		sink:   sink,
		logger: cfg.Logger,

		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuse",
				Name:      "ops_total",
				Help:      "Ops handed to the file system, by op type.",
			},
			[]string{"op"}),

		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fuse",
				Name:      "op_duration_seconds",
				Help:      "Time spent in the file system per op, by op type.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"op"}),

		misuseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuse",
				Name:      "reply_misuse_total",
				Help:      "Ops the file system answered incorrectly, by kind of mistake.",
			},
			[]string{"kind"}),
	}

	if s.logger == nil {
		s.logger = getLogger()
	}

	if cfg.Registerer != nil {
		cfg.Registerer.MustRegister(s.opsTotal, s.opDuration, s.misuseTotal)
	}

	return
}

// Answer the op with the supplied unique ID by calling the matching
// FileSystem method. op must be a pointer to one of the op structs in package
// fuseops; anything else is answered with ENOSYS.
//
// The error returned is the one from handing a reply to the sink, if any.
// Errors returned by the file system are not returned here: they are sent to
// the kernel.
func (s *Server) HandleOp(
	ctx context.Context,
	unique uint64,
	op interface{}) (err error) {
	t := NewToken(unique, s.sink)
	opType := fuseops.DescribeOpType(op)

	level.Debug(s.logger).Log(
		"msg", "received op",
		"unique", unique,
		"op", fuseops.DescribeOp(op))

	start := time.Now()
	known, fsErr := s.dispatch(ctx, t, op)
	if !known {
		level.Warn(s.logger).Log("msg", "unknown op type", "unique", unique, "op", opType)
		s.misuseTotal.WithLabelValues("unknown_op").Inc()
		return t.Fail(ENOSYS)
	}

	s.opsTotal.WithLabelValues(opType).Inc()
	s.opDuration.WithLabelValues(opType).Observe(time.Since(start).Seconds())

	return s.finish(t, opType, fsErr)
}

// Make sure the op behind t has been answered once the file system returned.
// A failure to hand the reply to the sink is returned whatever the file
// system returned.
func (s *Server) finish(t *Token, opType string, fsErr error) (err error) {
	unique := t.Unique()

	// The sink failed while the file system was replying. The kernel can't be
	// told anything more.
	if sendErr := t.sendError(); sendErr != nil {
		level.Error(s.logger).Log(
			"msg", "failed to send reply",
			"unique", unique,
			"op", opType,
			"err", sendErr)

		if fsErr != nil && !errors.Is(fsErr, sendErr) {
			s.errorAfterReply(unique, opType, fsErr)
		}

		return sendErr
	}

	switch {
	case fsErr != nil && !t.Consumed():
		level.Debug(s.logger).Log(
			"msg", "op failed",
			"unique", unique,
			"op", opType,
			"errno", Errno(fsErr),
			"err", fsErr)

		err = t.Fail(fsErr)

	case fsErr != nil:
		s.errorAfterReply(unique, opType, fsErr)

	case !t.Consumed():
		level.Error(s.logger).Log(
			"msg", "file system returned without replying; replying with EIO",
			"unique", unique,
			"op", opType)

		s.misuseTotal.WithLabelValues("no_reply").Inc()
		err = t.Fail(EIO)

	default:
		level.Debug(s.logger).Log("msg", "op replied", "unique", unique, "op", opType)
	}

	return
}

func (s *Server) errorAfterReply(unique uint64, opType string, fsErr error) {
	level.Warn(s.logger).Log(
		"msg", "file system returned an error after replying; error dropped",
		"unique", unique,
		"op", opType,
		"err", fsErr)

	s.misuseTotal.WithLabelValues("error_after_reply").Inc()
}

// Call the FileSystem method matching op with the matching contract. known is
// false if the op type is not recognized, in which case nothing was called.
func (s *Server) dispatch(
	ctx context.Context,
	t *Token,
	op interface{}) (known bool, err error) {
	known = true

	switch typed := op.(type) {
	case *fuseops.LookUpInodeOp:
		_, err = s.fs.LookUpInode(ctx, typed, NewReplyEntry(t))

	case *fuseops.GetInodeAttributesOp:
		_, err = s.fs.GetInodeAttributes(ctx, typed, NewReplyAttr(t))

	case *fuseops.SetInodeAttributesOp:
		_, err = s.fs.SetInodeAttributes(ctx, typed, NewReplyAttr(t))

	case *fuseops.MkDirOp:
		_, err = s.fs.MkDir(ctx, typed, NewReplyEntry(t))

	case *fuseops.CreateFileOp:
		_, err = s.fs.CreateFile(ctx, typed, NewReplyCreate(t))

	case *fuseops.RmDirOp:
		_, err = s.fs.RmDir(ctx, typed, NewReplyOk(t))

	case *fuseops.UnlinkOp:
		_, err = s.fs.Unlink(ctx, typed, NewReplyOk(t))

	case *fuseops.OpenDirOp:
		_, err = s.fs.OpenDir(ctx, typed, NewReplyOpen(t))

	case *fuseops.ReadDirOp:
		_, err = s.fs.ReadDir(ctx, typed, NewReplyDirs(t, typed.Size))

	case *fuseops.ReadDirPlusOp:
		_, err = s.fs.ReadDirPlus(ctx, typed, NewReplyDirsPlus(t, typed.Size))

	case *fuseops.ReleaseDirHandleOp:
		_, err = s.fs.ReleaseDirHandle(ctx, typed, NewReplyOk(t))

	case *fuseops.OpenFileOp:
		_, err = s.fs.OpenFile(ctx, typed, NewReplyOpen(t))

	case *fuseops.ReadFileOp:
		_, err = s.fs.ReadFile(ctx, typed, NewReplyData(t))

	case *fuseops.WriteFileOp:
		_, err = s.fs.WriteFile(ctx, typed, NewReplyWrite(t))

	case *fuseops.SyncFileOp:
		_, err = s.fs.SyncFile(ctx, typed, NewReplyOk(t))

	case *fuseops.FlushFileOp:
		_, err = s.fs.FlushFile(ctx, typed, NewReplyOk(t))

	case *fuseops.ReleaseFileHandleOp:
		_, err = s.fs.ReleaseFileHandle(ctx, typed, NewReplyOk(t))

	case *fuseops.ReadSymlinkOp:
		_, err = s.fs.ReadSymlink(ctx, typed, NewReplyData(t))

	case *fuseops.StatFSOp:
		_, err = s.fs.StatFS(ctx, typed, NewReplyStatfs(t))

	case *fuseops.GetXattrOp:
		_, err = s.fs.GetXattr(ctx, typed, NewReplyXattr(t))

	case *fuseops.ListXattrOp:
		_, err = s.fs.ListXattr(ctx, typed, NewReplyXattr(t))

	case *fuseops.SetXattrOp:
		_, err = s.fs.SetXattr(ctx, typed, NewReplyOk(t))

	case *fuseops.RemoveXattrOp:
		_, err = s.fs.RemoveXattr(ctx, typed, NewReplyOk(t))

	case *fuseops.GetLkOp:
		_, err = s.fs.GetLk(ctx, typed, NewReplyLk(t))

	case *fuseops.BmapOp:
		_, err = s.fs.Bmap(ctx, typed, NewReplyBmap(t))

	case *fuseops.PollOp:
		_, err = s.fs.Poll(ctx, typed, NewReplyPoll(t))

	default:
		known = false
	}

	return
}
