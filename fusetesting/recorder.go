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

// Package fusetesting contains helpers for testing file systems and the
// reply layer without a kernel: a sink that records outcomes, and matchers
// for them.
package fusetesting

import (
	"sync"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
)

// A reply sent to a Recorder.
type Reply struct {
	Unique uint64
	Out    fuseops.Outcome
}

// A fusereply.Sink that records every outcome it is sent. Safe for
// concurrent use.
type Recorder struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	replies []Reply

	// If set, returned from Send after recording. GUARDED_BY(mu)
	err error
}

var _ fusereply.Sink = &Recorder{}

func (r *Recorder) Send(unique uint64, out fuseops.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replies = append(r.replies, Reply{Unique: unique, Out: out})
	return r.err
}

// Cause future calls to Send to fail with the supplied error. nil restores
// success.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

// Return a copy of the replies recorded so far, in the order they were sent.
func (r *Recorder) Replies() []Reply {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Reply(nil), r.replies...)
}

// Return the outcome of the only reply recorded for the given request, or
// nil if there is none. Panics if there is more than one.
func (r *Recorder) Outcome(unique uint64) (out fuseops.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reply := range r.replies {
		if reply.Unique != unique {
			continue
		}

		if out != nil {
			panic("more than one reply recorded for a single request")
		}

		out = reply.Out
	}

	return
}

// Return the outcome of the most recent reply, or nil if there is none.
func (r *Recorder) Last() fuseops.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.replies) == 0 {
		return nil
	}

	return r.replies[len(r.replies)-1].Out
}

// Forget all recorded replies.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replies = nil
}

// Return a token for the given request that replies to the recorder.
func (r *Recorder) Token(unique uint64) *fusereply.Token {
	return fusereply.NewToken(unique, r)
}
