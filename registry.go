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

package midiflux

import (
	"fmt"
	"strconv"
)

// MidiInput is a mapping key: the (device, channel, input) tuple an
// ActionMapping is triggered by. Channel of AnyChannel matches any
// channel; DeviceName of "*" matches any device.
type MidiInput struct {
	DeviceName  string
	Channel     int // 1..16, or AnyChannel
	InputType   InputType
	InputNumber int // meaningless for ProgramChange/PitchBend/SysEx
}

const anyDevice = "*"

// ActionMapping binds one MidiInput to the Action it triggers. Immutable
// after it is built into a Registry.
type ActionMapping struct {
	ID          string
	Description string
	Enabled     bool
	Input       MidiInput
	Action      Action
}

type bucketKey struct {
	slot      string
	inputType InputType
	number    int
}

// tier is one of the four priority buckets in §4.3. slot is the exact
// device name, the channel (as a string), or "" for the any/any tier.
type tier map[bucketKey][]*ActionMapping

func (t tier) add(slot string, inputType InputType, number int, m *ActionMapping) {
	k := bucketKey{slot: slot, inputType: inputType, number: number}
	t[k] = append(t[k], m)
}

func (t tier) lookup(slot string, inputType InputType, number int) []*ActionMapping {
	return t[bucketKey{slot: slot, inputType: inputType, number: number}]
}

// Registry is the built, immutable index of an active profile's mappings.
// A new Registry is constructed wholesale on every profile load and
// published atomically; it is never mutated in place once built.
type Registry struct {
	exactDevExactCh tier
	exactDevAnyCh   tier
	anyDevExactCh   tier
	anyDevAnyCh     tier

	totalMappings   int
	enabledMappings int
	devices         map[string]struct{}
	channels        map[int]struct{}
}

// NewRegistry builds a Registry from the given mappings. Disabled
// mappings are retained for statistics purposes but never returned by
// Lookup.
func NewRegistry(mappings []*ActionMapping) *Registry {
	r := &Registry{
		exactDevExactCh: make(tier),
		exactDevAnyCh:   make(tier),
		anyDevExactCh:   make(tier),
		anyDevAnyCh:     make(tier),
		devices:         make(map[string]struct{}),
		channels:        make(map[int]struct{}),
	}
	for _, m := range mappings {
		r.totalMappings++
		if m.Enabled {
			r.enabledMappings++
		}
		dev := m.Input.DeviceName
		if dev == "" {
			dev = anyDevice
		}
		if dev != anyDevice {
			r.devices[dev] = struct{}{}
		}
		ch := m.Input.Channel
		if ch != AnyChannel {
			r.channels[ch] = struct{}{}
		}

		exactDev := dev != anyDevice
		exactCh := ch != AnyChannel

		switch {
		case exactDev && exactCh:
			r.exactDevExactCh.add(dev+"|"+strconv.Itoa(ch), m.Input.InputType, m.Input.InputNumber, m)
		case exactDev && !exactCh:
			r.exactDevAnyCh.add(dev, m.Input.InputType, m.Input.InputNumber, m)
		case !exactDev && exactCh:
			r.anyDevExactCh.add(strconv.Itoa(ch), m.Input.InputType, m.Input.InputNumber, m)
		default:
			r.anyDevAnyCh.add("", m.Input.InputType, m.Input.InputNumber, m)
		}
	}
	return r
}

// ccLookupKinds returns the InputTypes a tier lookup must try for an
// incoming event's kind. Every CC event a Source decodes arrives as
// ControlChangeAbs — relative-vs-absolute is a mapping-level decision
// (§4.2, §4.3), not a wire-format one — so a CC lookup must also check
// the ControlChangeRel bucket a RelativeCC mapping was registered under.
func ccLookupKinds(k InputType) []InputType {
	if k == ControlChangeAbs || k == ControlChangeRel {
		return []InputType{ControlChangeAbs, ControlChangeRel}
	}
	return []InputType{k}
}

func lookupKinds(t tier, slot string, kinds []InputType, number int) []*ActionMapping {
	for _, k := range kinds {
		if ms := t.lookup(slot, k, number); len(ms) > 0 {
			return ms
		}
	}
	return nil
}

// Lookup returns the ordered list of action mappings matching an incoming
// event's (device, channel, inputType, number), per the four-tier
// priority rule in §4.3: exact/exact, exact/any, any/exact, any/any, first
// non-empty tier wins.
func (r *Registry) Lookup(deviceName string, channel int, inputType InputType, number int) []*ActionMapping {
	kinds := ccLookupKinds(inputType)
	if ms := filterEnabled(lookupKinds(r.exactDevExactCh, deviceName+"|"+strconv.Itoa(channel), kinds, number)); len(ms) > 0 {
		return ms
	}
	if ms := filterEnabled(lookupKinds(r.exactDevAnyCh, deviceName, kinds, number)); len(ms) > 0 {
		return ms
	}
	if ms := filterEnabled(lookupKinds(r.anyDevExactCh, strconv.Itoa(channel), kinds, number)); len(ms) > 0 {
		return ms
	}
	if ms := filterEnabled(lookupKinds(r.anyDevAnyCh, "", kinds, number)); len(ms) > 0 {
		return ms
	}
	return nil
}

func filterEnabled(ms []*ActionMapping) []*ActionMapping {
	var out []*ActionMapping
	for _, m := range ms {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// Stats is the read-only statistics snapshot described in §4.3.
type Stats struct {
	TotalMappings   int
	EnabledMappings int
	UniqueDevices   int
	UniqueChannels  int
	BucketCount     int
}

// Stats returns the registry's read-only statistics.
func (r *Registry) Stats() Stats {
	return Stats{
		TotalMappings:   r.totalMappings,
		EnabledMappings: r.enabledMappings,
		UniqueDevices:   len(r.devices),
		UniqueChannels:  len(r.channels),
		BucketCount:     len(r.exactDevExactCh) + len(r.exactDevAnyCh) + len(r.anyDevExactCh) + len(r.anyDevAnyCh),
	}
}

func (k MidiInput) String() string {
	dev := k.DeviceName
	if dev == "" {
		dev = anyDevice
	}
	ch := "any"
	if k.Channel != AnyChannel {
		ch = fmt.Sprintf("%d", k.Channel)
	}
	return fmt.Sprintf("%s/ch=%s/%s(%d)", dev, ch, k.InputType, k.InputNumber)
}
