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

package fuseops

import (
	"fmt"
	"reflect"
	"strings"
)

// Return a short description of the type of the supplied op, e.g.
// "LookUpInode" for *LookUpInodeOp.
func DescribeOpType(op interface{}) (desc string) {
	t := reflect.TypeOf(op)
	if t == nil {
		return "nil"
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	desc = strings.TrimSuffix(t.Name(), "Op")
	if desc == "" {
		desc = t.String()
	}

	return
}

// Return a one-line description of the op for debug logging. Payloads such as
// write data are summarized rather than printed.
func DescribeOp(op interface{}) string {
	switch typed := op.(type) {
	case *LookUpInodeOp:
		return fmt.Sprintf("LookUpInode (parent %v, name %q)", typed.Parent, typed.Name)

	case *MkDirOp:
		return fmt.Sprintf("MkDir (parent %v, name %q)", typed.Parent, typed.Name)

	case *CreateFileOp:
		return fmt.Sprintf("CreateFile (parent %v, name %q)", typed.Parent, typed.Name)

	case *ReadDirOp:
		return fmt.Sprintf(
			"ReadDir (inode %v, offset %d, size %d)",
			typed.Inode,
			typed.Offset,
			typed.Size)

	case *ReadDirPlusOp:
		return fmt.Sprintf(
			"ReadDirPlus (inode %v, offset %d, size %d)",
			typed.Inode,
			typed.Offset,
			typed.Size)

	case *ReadFileOp:
		return fmt.Sprintf(
			"ReadFile (inode %v, offset %d, size %d)",
			typed.Inode,
			typed.Offset,
			typed.Size)

	case *WriteFileOp:
		return fmt.Sprintf(
			"WriteFile (inode %v, offset %d, %d bytes)",
			typed.Inode,
			typed.Offset,
			len(typed.Data))

	case *GetXattrOp:
		return fmt.Sprintf(
			"GetXattr (inode %v, name %q, size %d)",
			typed.Inode,
			typed.Name,
			typed.Size)
	}

	return DescribeOpType(op)
}
