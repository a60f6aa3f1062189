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

package fusetesting

import (
	"fmt"
	"reflect"
	"syscall"

	"github.com/jacobsa/oglematchers"

	"github.com/jacobsa/fusereply/fuseops"
)

// Match *fuseops.ErrorOut values carrying the given error number.
func IsErrno(expected syscall.Errno) oglematchers.Matcher {
	return oglematchers.NewMatcher(
		func(c interface{}) error { return isErrno(c, expected) },
		fmt.Sprintf("error reply %v", expected))
}

func isErrno(c interface{}, expected syscall.Errno) error {
	out, ok := c.(*fuseops.ErrorOut)
	if !ok {
		return fmt.Errorf("which is of type %v", reflect.TypeOf(c))
	}

	if out.Errno != expected {
		return fmt.Errorf("which has errno %v", out.Errno)
	}

	return nil
}

// Match outcomes of the given kind, e.g. "entry".
func IsKind(kind string) oglematchers.Matcher {
	return oglematchers.NewMatcher(
		func(c interface{}) error {
			out, ok := c.(fuseops.Outcome)
			if !ok {
				return fmt.Errorf("which is of type %v", reflect.TypeOf(c))
			}

			if out.Kind() != kind {
				return fmt.Errorf("which is of kind %q (%v)", out.Kind(), out)
			}

			return nil
		},
		fmt.Sprintf("%s reply", kind))
}

// Match *fuseops.EntryOut values that are negative entries.
func IsNegativeEntry() oglematchers.Matcher {
	return oglematchers.NewMatcher(
		func(c interface{}) error {
			out, ok := c.(*fuseops.EntryOut)
			if !ok {
				return fmt.Errorf("which is of type %v", reflect.TypeOf(c))
			}

			if !out.Negative() {
				return fmt.Errorf("which names inode %v", out.Inode)
			}

			return nil
		},
		"negative entry")
}

// Match directory replies (*fuseops.DirsOut or *fuseops.DirsPlusOut) whose
// record offsets are strictly increasing.
func HasIncreasingOffsets() oglematchers.Matcher {
	return oglematchers.NewMatcher(
		hasIncreasingOffsets,
		"directory reply with strictly increasing offsets")
}

func hasIncreasingOffsets(c interface{}) error {
	var offsets []fuseops.DirOffset

	switch out := c.(type) {
	case *fuseops.DirsOut:
		for _, e := range out.Entries {
			offsets = append(offsets, e.Offset)
		}

	case *fuseops.DirsPlusOut:
		for _, e := range out.Entries {
			offsets = append(offsets, e.Offset)
		}

	default:
		return fmt.Errorf("which is of type %v", reflect.TypeOf(c))
	}

	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return fmt.Errorf(
				"which has offset %d at index %d after offset %d",
				offsets[i],
				i,
				offsets[i-1])
		}
	}

	return nil
}

// Return the names of the records in a directory reply, in order.
func DirentNames(out fuseops.Outcome) (names []string) {
	switch typed := out.(type) {
	case *fuseops.DirsOut:
		for _, e := range typed.Entries {
			names = append(names, e.Name)
		}

	case *fuseops.DirsPlusOut:
		for _, e := range typed.Entries {
			names = append(names, e.Name)
		}
	}

	return
}
