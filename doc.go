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

// Package fusereply implements the reply half of the FUSE protocol: typed,
// single-use contracts through which a user-space file system answers the
// kernel's requests.
//
// The primary elements of interest are:
//
//  *  Token, the right to answer one request. Every reply contract is built
//     from a token and every terminal reply consumes it; replying twice
//     panics.
//
//  *  The reply contracts (ReplyEntry, ReplyAttr, ReplyOpen, ReplyDirs and
//     so on), one per shape of answer the kernel accepts.
//
//  *  The FileSystem interface, which defines the methods a file system must
//     implement, and Server, which hands each decoded op to the matching
//     method along with its contract.
//
//  *  fuseutil.NotImplementedFileSystem, which may be embedded to obtain
//     default implementations for all methods that are not of interest to a
//     particular file system.
//
// Decoding requests from /dev/fuse and encoding the outcomes onto it are the
// job of the transport behind a Sink.
package fusereply
