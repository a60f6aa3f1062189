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

package fuseutil

import (
	"context"
	"fmt"
	"io"

	"github.com/jacobsa/fusereply"
)

// A source of decoded ops, e.g. a reader of /dev/fuse.
type OpSource interface {
	// Return the next op and the unique ID of the request it came from, or
	// io.EOF when there are no more.
	ReadOp(ctx context.Context) (unique uint64, op interface{}, err error)
}

// Read ops from the source and hand them to the server one at a time, until
// the source returns io.EOF (in which case nil is returned) or another error.
//
// Ops are handled in the order they are read, each to completion before the
// next is read. File systems that want concurrency should run their own loop
// around Server.HandleOp.
func ServeOps(
	ctx context.Context,
	src OpSource,
	server *fusereply.Server) (err error) {
	for {
		var unique uint64
		var op interface{}

		unique, op, err = src.ReadOp(ctx)
		if err == io.EOF {
			err = nil
			return
		}

		if err != nil {
			err = fmt.Errorf("ReadOp: %w", err)
			return
		}

		if err = server.HandleOp(ctx, unique, op); err != nil {
			err = fmt.Errorf("HandleOp(%d): %w", unique, err)
			return
		}
	}
}
