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

// Command midifluxd is the daemon host for the dispatch engine: it
// loads a profile, attaches to real MIDI hardware via driver/gomidi,
// and runs until signalled to stop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cozmopolit/midiflux/encoding"
)

var rootCmd = &cobra.Command{
	Use:   "midifluxd",
	Short: "MIDI-event-to-host-action dispatch daemon",
}

func main() {
	encoding.Register()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
