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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
	"golang.org/x/sys/unix"

	"github.com/jacobsa/fusereply"
)

func TestErrors(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// An error type that chooses its own error number.
type quotaError struct{}

func (quotaError) Error() string        { return "over quota" }
func (quotaError) Errno() syscall.Errno { return unix.EDQUOT }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type ErrorsTest struct {
}

func init() { RegisterTestSuite(&ErrorsTest{}) }

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *ErrorsTest) Nil() {
	ExpectEq(0, fusereply.Errno(nil))
}

func (t *ErrorsTest) BareErrno() {
	ExpectEq(fusereply.ENOTEMPTY, fusereply.Errno(fusereply.ENOTEMPTY))
	ExpectEq(unix.EACCES, fusereply.Errno(unix.EACCES))
}

func (t *ErrorsTest) WrappedErrno() {
	err := fmt.Errorf("removing directory: %w", fusereply.ENOTEMPTY)
	ExpectEq(fusereply.ENOTEMPTY, fusereply.Errno(err))
}

func (t *ErrorsTest) PathError() {
	err := &fs.PathError{Op: "open", Path: "/foo", Err: unix.EROFS}
	ExpectEq(unix.EROFS, fusereply.Errno(err))
}

func (t *ErrorsTest) CustomErrno() {
	ExpectEq(unix.EDQUOT, fusereply.Errno(quotaError{}))
	ExpectEq(
		unix.EDQUOT,
		fusereply.Errno(fmt.Errorf("write: %w", quotaError{})))
}

func (t *ErrorsTest) Sentinels() {
	ExpectEq(fusereply.ENOENT, fusereply.Errno(os.ErrNotExist))
	ExpectEq(fusereply.EEXIST, fusereply.Errno(os.ErrExist))
	ExpectEq(unix.EPERM, fusereply.Errno(os.ErrPermission))
	ExpectEq(unix.ETIMEDOUT, fusereply.Errno(context.DeadlineExceeded))
	ExpectEq(unix.EINTR, fusereply.Errno(context.Canceled))
}

func (t *ErrorsTest) Unclassified() {
	ExpectEq(fusereply.EIO, fusereply.Errno(errors.New("taco")))
}

func (t *ErrorsTest) IOError_Unwraps() {
	cause := &fs.PathError{Op: "read", Path: "/bar", Err: unix.ENOENT}
	err := fusereply.IOError(cause)

	ExpectEq(fusereply.ENOENT, err.Errno())
	ExpectTrue(errors.Is(err, cause))
	ExpectTrue(errors.Is(err, os.ErrNotExist))
	ExpectThat(err, Error(HasSubstr("/bar")))
}

func (t *ErrorsTest) IOError_KeepsErrnoWhenWrapped() {
	err := fmt.Errorf("context: %w", fusereply.IOError(errors.New("disk on fire")))

	ExpectEq(fusereply.EIO, fusereply.Errno(err))
	ExpectThat(err, Error(HasSubstr("disk on fire")))
}

func (t *ErrorsTest) ErrorCode() {
	err := fusereply.ErrorCode(fusereply.ERANGE)

	ExpectEq(fusereply.ERANGE, err.Errno())
	ExpectEq(fusereply.ERANGE.Error(), err.Error())
	ExpectTrue(errors.Is(err, fusereply.ERANGE))
}
