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

// Package gomidi is the concrete C1 adapter binding midiflux.Source to
// real hardware via gitlab.com/gomidi/midi/v2, with the rtmidi backend
// registered by blank import.
package gomidi

import (
	"context"
	"fmt"
	"sync"

	"github.com/cozmopolit/midiflux"
	"github.com/cozmopolit/midiflux/color"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Driver is a midiflux.Source backed by rtmidi. Construct with New, call
// SetListener once, then OpenInput per device the profile controller
// wants attached.
type Driver struct {
	mu       sync.Mutex
	listener midiflux.SourceListener
	stops    map[string]func()
	senders  map[string]func(midi.Message) error
}

// New returns a Driver ready to enumerate and open ports. The rtmidi
// backend self-registers via this package's blank import; there is no
// separate driver handle to construct.
func New() (*Driver, error) {
	return &Driver{stops: make(map[string]func()), senders: make(map[string]func(midi.Message) error)}, nil
}

func (d *Driver) SetListener(l midiflux.SourceListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = l
}

func (d *Driver) ListInputDevices() []midiflux.DeviceIdentity {
	ins := midi.GetInPorts()
	out := make([]midiflux.DeviceIdentity, 0, len(ins))
	for _, in := range ins {
		out = append(out, midiflux.DeviceIdentity{ID: fmt.Sprintf("%v", in.Number()), Name: in.String()})
	}
	return out
}

func (d *Driver) ListOutputDevices() []midiflux.DeviceIdentity {
	outs := midi.GetOutPorts()
	out := make([]midiflux.DeviceIdentity, 0, len(outs))
	for _, o := range outs {
		out = append(out, midiflux.DeviceIdentity{ID: fmt.Sprintf("%v", o.Number()), Name: o.String()})
	}
	return out
}

func findIn(name string) (drivers.In, error) {
	for _, in := range midi.GetInPorts() {
		if in.String() == name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", name)
}

func findOut(name string) (drivers.Out, error) {
	for _, o := range midi.GetOutPorts() {
		if o.String() == name {
			return o, nil
		}
	}
	return nil, fmt.Errorf("output device %q not found", name)
}

// OpenInput opens the named input device and begins delivering decoded
// events to the installed listener. Idempotent if already open.
func (d *Driver) OpenInput(id midiflux.DeviceIdentity) (midiflux.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.stops[id.Name]; ok {
		return id.Name, nil
	}
	in, err := findIn(id.Name)
	if err != nil {
		return nil, midiflux.NewDeviceError(id.Name, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		d.deliver(id.Name, msg)
	})
	if err != nil {
		return nil, midiflux.NewDeviceError(id.Name, err)
	}
	d.stops[id.Name] = stop
	return id.Name, nil
}

func (d *Driver) CloseInput(h midiflux.Handle) error {
	name, _ := h.(string)
	d.mu.Lock()
	defer d.mu.Unlock()
	if stop, ok := d.stops[name]; ok {
		stop()
		delete(d.stops, name)
	}
	return nil
}

// Send transmits m on the named output device, opening and caching a
// sender closure for that device on first use.
func (d *Driver) Send(deviceName string, m midiflux.MidiMessage) error {
	d.mu.Lock()
	send, ok := d.senders[deviceName]
	d.mu.Unlock()

	if !ok {
		out, err := findOut(deviceName)
		if err != nil {
			return midiflux.NewDeviceError(deviceName, err)
		}
		s, err := midi.SendTo(out)
		if err != nil {
			return midiflux.NewDeviceError(deviceName, err)
		}
		d.mu.Lock()
		d.senders[deviceName] = s
		d.mu.Unlock()
		send = s
	}

	wire, err := encode(m)
	if err != nil {
		return midiflux.NewDeviceError(deviceName, err)
	}
	if err := send(wire); err != nil {
		return midiflux.NewDeviceError(deviceName, err)
	}
	return nil
}

// Shutdown stops every active listener and closes the rtmidi driver
// process-wide. Safe to call once, at process exit.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	for name, stop := range d.stops {
		stop()
		delete(d.stops, name)
	}
	d.senders = make(map[string]func(midi.Message) error)
	d.mu.Unlock()
	midi.CloseDriver()
	return nil
}

// deliver decodes a gomidi message into a midiflux.MidiEvent and forwards
// it to the installed listener. gomidi's midi.Message already exposes
// typed getters, so no byte-level decoding is needed here (see
// midiflux.Decoder for the raw-byte-stream case used by other sources).
func (d *Driver) deliver(device string, msg midi.Message) {
	d.mu.Lock()
	l := d.listener
	d.mu.Unlock()
	if l == nil {
		return
	}
	ev, ok := decodeMessage(msg)
	if !ok {
		return
	}
	l.OnEvent(device, ev)
}

func decodeMessage(msg midi.Message) (midiflux.MidiEvent, bool) {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		return midiflux.MidiEvent{Kind: midiflux.NoteOn, Channel: int(ch) + 1, Number: int(key), Value: int32(vel), HasValue: true}.Normalize(), true
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		return midiflux.MidiEvent{Kind: midiflux.NoteOff, Channel: int(ch) + 1, Number: int(key), Value: int32(vel), HasValue: true}, true
	}
	var cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		return midiflux.MidiEvent{Kind: midiflux.ControlChangeAbs, Channel: int(ch) + 1, Number: int(cc), Value: int32(val), HasValue: true}, true
	}
	var prog uint8
	if msg.GetProgramChange(&ch, &prog) {
		return midiflux.MidiEvent{Kind: midiflux.ProgramChange, Channel: int(ch) + 1, Number: int(prog)}, true
	}
	var pressure uint8
	if msg.GetAfterTouch(&ch, &pressure) {
		return midiflux.MidiEvent{Kind: midiflux.ChannelPressure, Channel: int(ch) + 1, Value: int32(pressure), HasValue: true}, true
	}
	var rel int16
	if msg.GetPitchBend(&ch, nil, &rel) {
		return midiflux.MidiEvent{Kind: midiflux.PitchBend, Channel: int(ch) + 1, Value: int32(rel), HasValue: true}, true
	}
	var sysex []byte
	if msg.GetSysEx(&sysex) {
		return midiflux.MidiEvent{Kind: midiflux.SysEx, Channel: midiflux.AnyChannel, SysExData: append([]byte(nil), sysex...)}, true
	}
	return midiflux.MidiEvent{}, false
}

func encode(m midiflux.MidiMessage) (midi.Message, error) {
	if m.PadColor.Valid() {
		return midi.SysEx(padColorSysEx(uint8(m.Number), m.PadColor)), nil
	}
	ch := uint8(m.Channel - 1)
	switch m.Kind {
	case midiflux.NoteOn:
		return midi.NoteOn(ch, uint8(m.Number), uint8(m.Value)), nil
	case midiflux.NoteOff:
		return midi.NoteOff(ch, uint8(m.Number)), nil
	case midiflux.ControlChangeAbs, midiflux.ControlChangeRel:
		return midi.ControlChange(ch, uint8(m.Number), uint8(m.Value)), nil
	case midiflux.ProgramChange:
		return midi.ProgramChange(ch, uint8(m.Number)), nil
	case midiflux.SysEx:
		return midi.SysEx(m.SysEx), nil
	default:
		return nil, fmt.Errorf("unsupported outbound message kind %v", m.Kind)
	}
}

// padColorSysEx builds the Novation Launchpad Mini Mk3 RGB LED SysEx frame
// (F0 00 20 29 02 0D 03 03 <led> <r> <g> <b> F7), scaling color's 8-bit
// components down to the 7-bit range this wire format uses.
func padColorSysEx(led uint8, c color.Color) []byte {
	r, g, b := c.RGB()
	return []byte{
		0x00, 0x20, 0x29, 0x02, 0x0D, 0x03,
		0x03,
		led,
		uint8(r) >> 1,
		uint8(g) >> 1,
		uint8(b) >> 1,
	}
}
