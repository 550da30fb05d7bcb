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

// InputType enumerates the shape of the trigger a mapping can key on.
type InputType int

const (
	NoteOn InputType = iota
	NoteOff
	ControlChangeAbs
	ControlChangeRel
	ProgramChange
	PitchBend
	Aftertouch
	ChannelPressure
	SysEx
)

func (t InputType) String() string {
	switch t {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case ControlChangeAbs:
		return "ControlChangeAbs"
	case ControlChangeRel:
		return "ControlChangeRel"
	case ProgramChange:
		return "ProgramChange"
	case PitchBend:
		return "PitchBend"
	case Aftertouch:
		return "Aftertouch"
	case ChannelPressure:
		return "ChannelPressure"
	case SysEx:
		return "SysEx"
	default:
		return "Unknown"
	}
}

// AnyChannel is the wildcard channel value used both in MidiInput keys and
// on events that carry no channel of their own (SysEx).
const AnyChannel = 0

// MidiEvent is the normalized, transient representation of one incoming
// MIDI message. It is never persisted past a single dispatch pass.
//
// Channel uses the 1..16 external convention; AnyChannel (0) is used only
// on events with no channel, i.e. SysEx. Number is the note or controller
// number in 0..127 and is meaningless for ProgramChange/PitchBend/SysEx.
// Value carries the 7-bit data value, the 14-bit pitch-bend value, or is
// unused for SysEx, whose payload lives in SysExData.
type MidiEvent struct {
	Kind       InputType
	Channel    int
	Number     int
	Value      int32
	HasValue   bool
	SysExData  []byte
	DeviceName string
}

// Normalize applies the C2 wire-to-core conversion rules: channel is
// already assumed to have been converted from 0-based wire to 1-based
// external by the caller (the decoder), and a NoteOn with velocity zero is
// renormalized to NoteOff.
func (e MidiEvent) Normalize() MidiEvent {
	if e.Kind == NoteOn && e.Value == 0 {
		e.Kind = NoteOff
	}
	if e.Kind == SysEx {
		e.Channel = AnyChannel
	}
	return e
}

// Text decodes SysExData as text using the named registered charset (see
// RegisterCharset). An empty or unregistered charset name is treated as
// UTF-8/ASCII and the bytes are returned unconverted. Used only for
// diagnostic logging of SysEx payloads that embed device text (patch
// names, device identity strings); nothing in the dispatch path depends
// on the result.
func (e MidiEvent) Text(charset string) string {
	if e.Kind != SysEx || len(e.SysExData) == 0 {
		return ""
	}
	enc := GetCharset(charset)
	if enc == nil {
		return string(e.SysExData)
	}
	out, err := enc.NewDecoder().Bytes(e.SysExData)
	if err != nil {
		return string(e.SysExData)
	}
	return string(out)
}

// Clamp7 clamps a value into the 7-bit MIDI data range.
func Clamp7(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
