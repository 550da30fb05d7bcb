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
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/cozmopolit/midiflux"
)

type inputDoc struct {
	Channel     int    `json:"channel"`
	InputType   string `json:"inputType"`
	InputNumber int    `json:"inputNumber"`
}

type mappingDoc struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Enabled     *bool           `json:"enabled"`
	Input       inputDoc        `json:"input"`
	Action      json.RawMessage `json:"action"`
}

type deviceDoc struct {
	DeviceName string       `json:"deviceName"`
	Mappings   []mappingDoc `json:"mappings"`
}

type profileDoc struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	InitialStates map[string]int32 `json:"initialStates"`
	Devices       []deviceDoc      `json:"devices"`
}

// LoadFile reads, schema-validates, and decodes the profile document at
// path into a midiflux.Profile. It does not call Profile.Validate; the
// caller (typically ProfileController.Load) owns that step.
func LoadFile(path string) (*midiflux.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes validates and decodes one profile document already in
// memory (e.g. fetched by a management API rather than read from disk).
func LoadBytes(data []byte) (*midiflux.Profile, error) {
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing profile JSON: %w", err)
	}
	if err := validateStructure(generic); err != nil {
		return nil, fmt.Errorf("profile document failed schema validation: %w", err)
	}

	var doc profileDoc
	if err := strictUnmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	devices := make([]midiflux.DeviceConfig, 0, len(doc.Devices))
	for _, dd := range doc.Devices {
		mappings := make([]*midiflux.ActionMapping, 0, len(dd.Mappings))
		for _, md := range dd.Mappings {
			mapping, err := decodeMapping(md)
			if err != nil {
				return nil, fmt.Errorf("device %q: %w", dd.DeviceName, err)
			}
			mappings = append(mappings, mapping)
		}
		devices = append(devices, midiflux.DeviceConfig{DeviceName: dd.DeviceName, Mappings: mappings})
	}

	return &midiflux.Profile{
		Name:          doc.Name,
		Description:   doc.Description,
		InitialStates: doc.InitialStates,
		Devices:       devices,
	}, nil
}

func decodeMapping(md mappingDoc) (*midiflux.ActionMapping, error) {
	inputType, err := parseInputType(md.Input.InputType)
	if err != nil {
		return nil, fmt.Errorf("mapping %q: %w", md.ID, err)
	}
	action, err := decodeActionBytes(md.Action)
	if err != nil {
		return nil, fmt.Errorf("mapping %q: %w", md.ID, err)
	}

	id := md.ID
	if id == "" {
		id = uuid.NewString()
	}
	enabled := true
	if md.Enabled != nil {
		enabled = *md.Enabled
	}

	return &midiflux.ActionMapping{
		ID:          id,
		Description: md.Description,
		Enabled:     enabled,
		Input: midiflux.MidiInput{
			Channel:     md.Input.Channel,
			InputType:   inputType,
			InputNumber: md.Input.InputNumber,
		},
		Action: action,
	}, nil
}
