// Copyright 2025 The MIDIFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris || zos
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris zos

package midiflux

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// NotifyShutdown arranges for ch to receive SIGINT and SIGTERM, the two
// signals a host process uses to request the dispatcher's graceful
// shutdown path (§4.8). Delegates to golang.org/x/sys/unix rather than
// syscall so the signal set stays in one place alongside the rest of
// the platform-specific pieces this module carries forward from the
// teacher's tty package.
func NotifyShutdown(ch chan<- os.Signal) {
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}
