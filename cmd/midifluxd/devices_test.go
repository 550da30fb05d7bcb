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
	"bytes"
	"strings"
	"testing"

	"github.com/cozmopolit/midiflux"
)

func TestPrintDeviceTableEmpty(t *testing.T) {
	var out bytes.Buffer
	printDeviceTable(&out, "Inputs", nil)
	if !strings.Contains(out.String(), "Inputs:") || !strings.Contains(out.String(), "(none)") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestPrintDeviceTableListsEachDevice(t *testing.T) {
	var out bytes.Buffer
	devices := []midiflux.DeviceIdentity{
		{ID: "0", Name: "Launchpad X"},
		{ID: "1", Name: "Keystep 37"},
	}
	printDeviceTable(&out, "Inputs", devices)
	got := out.String()
	if !strings.Contains(got, "Launchpad X") || !strings.Contains(got, "Keystep 37") {
		t.Fatalf("expected both device names in output, got %q", got)
	}
	if !strings.Contains(got, "0") || !strings.Contains(got, "1") {
		t.Fatalf("expected both device IDs in output, got %q", got)
	}
}

func TestPrintDeviceTableAlignsColumnToWidestName(t *testing.T) {
	var out bytes.Buffer
	devices := []midiflux.DeviceIdentity{
		{ID: "0", Name: "A"},
		{ID: "1", Name: "A Much Longer Device Name"},
	}
	printDeviceTable(&out, "Inputs", devices)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected a title, a header and 2 device lines, got %+v", lines)
	}
	header := lines[1]
	if !strings.Contains(header, "Name") {
		t.Fatalf("expected a Name header column, got %q", header)
	}
	col := strings.Index(header, "ID")
	if strings.LastIndex(lines[2], "0") != col || strings.LastIndex(lines[3], "1") != col {
		t.Fatalf("expected every ID to start in the header's ID column %d, got %+v", col, lines)
	}
}
