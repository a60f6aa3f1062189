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
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	// Errors corresponding to kernel error numbers. These may be treated
	// specially when returned by a FileSystem method.
	EBADF     = unix.EBADF
	EEXIST    = unix.EEXIST
	EINVAL    = unix.EINVAL
	EIO       = unix.EIO
	EISDIR    = unix.EISDIR
	ENODATA   = unix.ENODATA
	ENOENT    = unix.ENOENT
	ENOSYS    = unix.ENOSYS
	ENOTDIR   = unix.ENOTDIR
	ENOTEMPTY = unix.ENOTEMPTY
	ERANGE    = unix.ERANGE
)

// An error that knows which kernel error number it should be reported as.
// Custom error types may implement this to control the code the kernel sees.
type errnoer interface {
	Errno() syscall.Errno
}

// The error type used to report failures to the kernel. It pairs an error
// number with the I/O failure it was derived from.
type Error struct {
	errno syscall.Errno
	err   error
}

var _ errnoer = &Error{}

// Create an Error from an arbitrary I/O failure. The error number is derived
// from err; see Errno.
func IOError(err error) *Error {
	return &Error{
		errno: Errno(err),
		err:   err,
	}
}

// Create an Error from a raw error number.
func ErrorCode(code syscall.Errno) *Error {
	return IOError(code)
}

func (e *Error) Error() string {
	if e.err == nil || e.err == e.errno {
		return e.errno.Error()
	}

	return fmt.Sprintf("%v (%v)", e.err, e.errno)
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Errno() syscall.Errno {
	return e.errno
}

// Return the kernel error number the supplied error should be reported as.
// nil maps to zero; anything that cannot be classified maps to EIO.
func Errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	var e errnoer
	if errors.As(err, &e) {
		if errno := e.Errno(); errno != 0 {
			return errno
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return errno
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return ENOENT

	case errors.Is(err, os.ErrExist):
		return EEXIST

	case errors.Is(err, os.ErrPermission):
		return unix.EPERM

	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded):
		return unix.ETIMEDOUT

	case errors.Is(err, context.Canceled):
		return unix.EINTR
	}

	return EIO
}
