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

package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/cozmopolit/midiflux"
	"github.com/cozmopolit/midiflux/driver/gomidi"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input and output devices visible to the host",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	drv, err := gomidi.New()
	if err != nil {
		return fmt.Errorf("opening MIDI backend: %w", err)
	}
	defer drv.Shutdown(cmd.Context())

	out := cmd.OutOrStdout()
	printDeviceTable(out, "Inputs", drv.ListInputDevices())
	fmt.Fprintln(out)
	printDeviceTable(out, "Outputs", drv.ListOutputDevices())
	return nil
}

func printDeviceTable(out io.Writer, title string, devices []midiflux.DeviceIdentity) {
	fmt.Fprintf(out, "%s:\n", title)
	if len(devices) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	width := len("Name")
	for _, d := range devices {
		if w := runewidth.StringWidth(d.Name); w > width {
			width = w
		}
	}
	fmt.Fprintf(out, "  %s  ID\n", runewidth.FillRight("Name", width))
	for _, d := range devices {
		fmt.Fprintf(out, "  %s  %s\n", runewidth.FillRight(d.Name, width), d.ID)
	}
}
