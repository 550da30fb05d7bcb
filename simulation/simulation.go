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

// Package simulation provides in-memory test doubles for midiflux.Source
// and every C10 effect sink, modelled directly on the teacher's
// SimulationScreen: an injectable source plus fakes that record every
// call so dispatcher/registry/state-manager tests never touch real
// hardware.
package simulation

import (
	"context"
	"sync"

	"github.com/cozmopolit/midiflux"
)

// Source is a midiflux.Source double driven by Inject* calls instead of
// real hardware.
type Source struct {
	mu       sync.Mutex
	inputs   map[string]midiflux.DeviceIdentity
	outputs  map[string]midiflux.DeviceIdentity
	opened   map[string]bool
	listener midiflux.SourceListener
	sent     []midiflux.MidiMessage
}

// NewSource returns an empty Source with no devices registered.
func NewSource() *Source {
	return &Source{
		inputs:  make(map[string]midiflux.DeviceIdentity),
		outputs: make(map[string]midiflux.DeviceIdentity),
		opened:  make(map[string]bool),
	}
}

// AddInputDevice registers an input device as visible, without raising a
// connect notification (use InjectConnect for that).
func (s *Source) AddInputDevice(id midiflux.DeviceIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[id.Name] = id
}

// AddOutputDevice registers an output device as visible.
func (s *Source) AddOutputDevice(id midiflux.DeviceIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[id.Name] = id
}

func (s *Source) ListInputDevices() []midiflux.DeviceIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]midiflux.DeviceIdentity, 0, len(s.inputs))
	for _, id := range s.inputs {
		out = append(out, id)
	}
	return out
}

func (s *Source) ListOutputDevices() []midiflux.DeviceIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]midiflux.DeviceIdentity, 0, len(s.outputs))
	for _, id := range s.outputs {
		out = append(out, id)
	}
	return out
}

func (s *Source) OpenInput(id midiflux.DeviceIdentity) (midiflux.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened[id.Name] = true
	return id.Name, nil
}

func (s *Source) CloseInput(h midiflux.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _ := h.(string)
	delete(s.opened, name)
	return nil
}

func (s *Source) Send(deviceName string, msg midiflux.MidiMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outputs[deviceName]; !ok {
		return midiflux.NewDeviceError(deviceName, context.DeadlineExceeded)
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *Source) SetListener(l midiflux.SourceListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *Source) Shutdown(context.Context) error { return nil }

// SentMessages returns every message handed to Send, in order.
func (s *Source) SentMessages() []midiflux.MidiMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]midiflux.MidiMessage(nil), s.sent...)
}

// InjectEvent delivers ev as if it arrived from deviceName, via whatever
// listener is currently installed.
func (s *Source) InjectEvent(deviceName string, ev midiflux.MidiEvent) {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l.OnEvent(deviceName, ev)
	}
}

// InjectNoteOn/InjectNoteOff/InjectCC are convenience wrappers over
// InjectEvent for the common channel-voice shapes.
func (s *Source) InjectNoteOn(device string, channel, note int, velocity int32) {
	s.InjectEvent(device, midiflux.MidiEvent{Kind: midiflux.NoteOn, Channel: channel, Number: note, Value: velocity, HasValue: true})
}

func (s *Source) InjectNoteOff(device string, channel, note int) {
	s.InjectEvent(device, midiflux.MidiEvent{Kind: midiflux.NoteOff, Channel: channel, Number: note, HasValue: true})
}

func (s *Source) InjectCC(device string, channel, controller int, value int32) {
	s.InjectEvent(device, midiflux.MidiEvent{Kind: midiflux.ControlChangeAbs, Channel: channel, Number: controller, Value: value, HasValue: true})
}

func (s *Source) InjectSysEx(device string, data []byte) {
	s.InjectEvent(device, midiflux.MidiEvent{Kind: midiflux.SysEx, Channel: midiflux.AnyChannel, SysExData: data})
}

// InjectConnect and InjectDisconnect raise hotplug notifications.
func (s *Source) InjectConnect(id midiflux.DeviceIdentity) {
	s.AddInputDevice(id)
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l.OnConnected(id)
	}
}

func (s *Source) InjectDisconnect(id midiflux.DeviceIdentity) {
	s.mu.Lock()
	delete(s.inputs, id.Name)
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l.OnDisconnected(id)
	}
}
