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
	"flag"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var fEnableDebug = flag.Bool(
	"fuse.debug",
	false,
	"Write FUSE debugging messages to stderr.")

var gLogger log.Logger
var gLoggerOnce sync.Once

func initLogger() {
	// Flags may not have been parsed yet if a server is created from an init
	// function or a test helper; treat that as debugging disabled.
	if !flag.Parsed() || !*fEnableDebug {
		gLogger = log.NewNopLogger()
		return
	}

	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = level.NewFilter(l, level.AllowDebug())
	gLogger = log.With(
		l,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
		"component", "fuse")
}

// Return the logger used when a ServerConfig doesn't supply one.
func getLogger() log.Logger {
	gLoggerOnce.Do(initLogger)
	return gLogger
}
