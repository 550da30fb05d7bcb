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

package profileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cozmopolit/midiflux"
)

const samplePad = `{
  "name": "pad-to-keys",
  "description": "note pads trigger key presses",
  "initialStates": {"shift": 0},
  "devices": [
    {
      "deviceName": "Launchpad X",
      "mappings": [
        {
          "id": "pad-36",
          "input": {"channel": 1, "inputType": "NoteOn", "inputNumber": 36},
          "action": {"type": "KeyPressRelease", "keyCode": 65}
        },
        {
          "id": "knob-1",
          "input": {"channel": 1, "inputType": "ControlChangeRel", "inputNumber": 21},
          "action": {
            "type": "RelativeCC",
            "increaseAction": {"type": "KeyPressRelease", "keyCode": 187},
            "decreaseAction": {"type": "KeyPressRelease", "keyCode": 189}
          }
        }
      ]
    }
  ]
}`

func TestLoadBytesDecodesProfile(t *testing.T) {
	p, err := LoadBytes([]byte(samplePad))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if p.Name != "pad-to-keys" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(p.Devices) != 1 || p.Devices[0].DeviceName != "Launchpad X" {
		t.Fatalf("unexpected devices: %+v", p.Devices)
	}
	if len(p.Devices[0].Mappings) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(p.Devices[0].Mappings))
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadFileReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte(samplePad), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Name != "pad-to-keys" {
		t.Errorf("Name = %q", p.Name)
	}
}

func TestLoadBytesRejectsUnknownActionField(t *testing.T) {
	doc := `{
		"name": "bad",
		"devices": [{
			"deviceName": "*",
			"mappings": [{
				"input": {"inputType": "NoteOn", "inputNumber": 1},
				"action": {"type": "KeyPressRelease", "keyCode": 1, "bogusField": true}
			}]
		}]
	}`
	if _, err := LoadBytes([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown action field")
	}
}

func TestLoadBytesRejectsMissingRequiredTopLevel(t *testing.T) {
	if _, err := LoadBytes([]byte(`{"description": "no name or devices"}`)); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestLoadBytesRejectsUnknownInputType(t *testing.T) {
	doc := `{
		"name": "bad",
		"devices": [{
			"deviceName": "*",
			"mappings": [{
				"input": {"inputType": "Bogus", "inputNumber": 1},
				"action": {"type": "KeyPressRelease", "keyCode": 1}
			}]
		}]
	}`
	if _, err := LoadBytes([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown inputType")
	}
}

func TestLoadBytesDecodesComposite(t *testing.T) {
	doc := `{
		"name": "composite",
		"devices": [{
			"deviceName": "*",
			"mappings": [{
				"input": {"inputType": "NoteOn", "inputNumber": 1},
				"action": {
					"type": "Sequence",
					"errorPolicy": "stop",
					"subActions": [
						{"type": "KeyDown", "keyCode": 1, "autoReleaseMs": 0},
						{"type": "Delay", "ms": 10},
						{"type": "KeyUp", "keyCode": 1}
					]
				}
			}]
		}]
	}`
	p, err := LoadBytes([]byte(doc))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	action := p.Devices[0].Mappings[0].Action
	seq, ok := action.(*midiflux.Sequence)
	if !ok {
		t.Fatalf("expected *midiflux.Sequence, got %T", action)
	}
	if len(seq.SubActions) != 3 {
		t.Fatalf("expected 3 sub-actions, got %d", len(seq.SubActions))
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadBytesDefaultsEnabledAndID(t *testing.T) {
	doc := `{
		"name": "defaults",
		"devices": [{
			"deviceName": "*",
			"mappings": [{
				"input": {"inputType": "NoteOn", "inputNumber": 1},
				"action": {"type": "KeyPressRelease", "keyCode": 1}
			}]
		}]
	}`
	p, err := LoadBytes([]byte(doc))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	m := p.Devices[0].Mappings[0]
	if !m.Enabled {
		t.Error("expected mapping to default to enabled")
	}
	if m.ID == "" {
		t.Error("expected a generated mapping ID")
	}
}
