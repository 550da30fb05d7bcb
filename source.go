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
	"context"

	"github.com/cozmopolit/midiflux/color"
)

// DeviceIdentity names one MIDI device as reported by a Source. ID is
// opaque and supplied by the backing driver; it is not guaranteed stable
// across a disconnect/reconnect cycle, so Name is the key the registry and
// profile device selectors actually match against.
type DeviceIdentity struct {
	ID   string
	Name string
}

// Handle identifies an open input device, returned by Source.OpenInput and
// passed back to Source.CloseInput.
type Handle interface{}

// MidiMessage is a single outbound MIDI message, as sent via Source.Send
// or carried in a MidiOutput action's command list.
//
// PadColor is an optional RGB parameter for controllers whose pads/LEDs
// are addressed by color rather than a plain velocity or CC value (e.g.
// Launchpad-style grids). When PadColor is valid, a Source encodes the
// device's native color-setting message instead of Kind/Channel/Value,
// using Number as the pad/LED index; see driver/gomidi for the concrete
// wire encoding this module ships.
type MidiMessage struct {
	Kind     InputType
	Channel  int
	Number   int
	Value    int32
	SysEx    []byte
	PadColor color.Color
}

// SourceListener receives events raised by a Source. Implementations must
// not block; the dispatcher's own listener enqueues onto its event queue
// and returns immediately.
type SourceListener interface {
	OnEvent(sourceDeviceName string, ev MidiEvent)
	OnConnected(id DeviceIdentity)
	OnDisconnected(id DeviceIdentity)
}

// Source abstracts the hardware MIDI backend. It is the only boundary
// across which real device I/O crosses; every other component consumes
// normalized MidiEvents and never speaks to hardware directly.
//
// Source implementations must not raise exceptions/panics across this
// boundary in steady state: a device going away surfaces as OnDisconnected,
// and a failed Send returns a *DeviceError.
type Source interface {
	// ListInputDevices and ListOutputDevices enumerate currently visible
	// devices. The list may change between calls as hardware is
	// hot-plugged; OnConnected/OnDisconnected are the authoritative
	// signal for churn, these are a point-in-time snapshot.
	ListInputDevices() []DeviceIdentity
	ListOutputDevices() []DeviceIdentity

	// OpenInput opens an input device for event delivery to the
	// registered listener. Idempotent if already open for this id.
	OpenInput(id DeviceIdentity) (Handle, error)

	// CloseInput closes a previously opened input handle. Idempotent if
	// already closed.
	CloseInput(h Handle) error

	// Send transmits a message to an output device by name. Returns a
	// *DeviceError if the device is not open or the backend refuses the
	// write.
	Send(deviceName string, msg MidiMessage) error

	// SetListener installs the single listener that receives events from
	// every open input device and all hotplug notifications. Must be
	// called before any OpenInput.
	SetListener(l SourceListener)

	// Shutdown stops all input delivery and releases backend resources.
	Shutdown(ctx context.Context) error
}
