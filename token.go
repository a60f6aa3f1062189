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

	"go.uber.org/atomic"

	"github.com/jacobsa/fusereply/fuseops"
)

// The receiving end of replies: something that encodes an outcome and writes
// it to the kernel as the answer to the request with the given unique ID.
type Sink interface {
	Send(unique uint64, out fuseops.Outcome) error
}

// A Sink implemented by a function.
type SinkFunc func(unique uint64, out fuseops.Outcome) error

func (f SinkFunc) Send(unique uint64, out fuseops.Outcome) error {
	return f(unique, out)
}

// Proof that a request was answered successfully. Returned by every terminal
// reply method.
type Replied struct {
	unique uint64
}

// The unique ID of the request that was answered.
func (r Replied) Unique() uint64 {
	return r.unique
}

// The right to answer exactly one kernel request. Every reply contract is
// built from a token, and every terminal method on a contract consumes it.
//
// Consuming a token twice, through the same contract or through two
// contracts built from it, is a programming error and panics.
type Token struct {
	unique uint64
	sink   Sink
	used   atomic.Bool

	// The error returned by the sink, if any. Written once by the winner of
	// used.
	sendErr error
}

// Create a token for the request with the given unique ID, whose reply will
// be handed to the supplied sink.
func NewToken(unique uint64, sink Sink) *Token {
	return &Token{
		unique: unique,
		sink:   sink,
	}
}

// The unique ID of the request this token answers.
func (t *Token) Unique() uint64 {
	return t.unique
}

// Consumed reports whether a reply has been sent with this token.
func (t *Token) Consumed() bool {
	return t.used.Load()
}

// Fail the request with the error number Errno(err) derives. err must be
// non-nil. Like any terminal reply this consumes the token.
func (t *Token) Fail(err error) error {
	if err == nil {
		panic("Token.Fail called with a nil error")
	}

	_, sendErr := t.send(&fuseops.ErrorOut{Errno: Errno(err)})
	return sendErr
}

func (t *Token) sendError() error {
	return t.sendErr
}

// Consume the token and hand the outcome to the sink.
func (t *Token) send(out fuseops.Outcome) (r Replied, err error) {
	if !t.used.CAS(false, true) {
		panic(fmt.Sprintf(
			"reply token for request %d used twice (second reply: %v)",
			t.unique,
			out))
	}

	if err = t.sink.Send(t.unique, out); err != nil {
		err = IOError(err)
		t.sendErr = err
		return
	}

	r = Replied{unique: t.unique}
	return
}
