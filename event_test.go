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

import "testing"

func TestMidiEventNormalizeNoteOnZeroVelocity(t *testing.T) {
	ev := MidiEvent{Kind: NoteOn, Channel: 1, Number: 60, Value: 0, HasValue: true}.Normalize()
	if ev.Kind != NoteOff {
		t.Fatalf("expected NoteOn/velocity-0 to renormalize to NoteOff, got %v", ev.Kind)
	}
}

func TestMidiEventNormalizeSysExForcesAnyChannel(t *testing.T) {
	ev := MidiEvent{Kind: SysEx, Channel: 5}.Normalize()
	if ev.Channel != AnyChannel {
		t.Fatalf("expected SysEx channel to be forced to AnyChannel, got %d", ev.Channel)
	}
}

func TestMidiEventNormalizeLeavesOthersAlone(t *testing.T) {
	ev := MidiEvent{Kind: ControlChangeAbs, Channel: 3, Number: 7, Value: 64, HasValue: true}.Normalize()
	if ev.Kind != ControlChangeAbs || ev.Channel != 3 || ev.Value != 64 {
		t.Fatalf("unexpected mutation: %+v", ev)
	}
}

func TestClamp7(t *testing.T) {
	cases := []struct {
		in, want int32
	}{
		{-1, 0}, {0, 0}, {64, 64}, {127, 127}, {128, 127}, {9999, 127},
	}
	for _, c := range cases {
		if got := Clamp7(c.in); got != c.want {
			t.Errorf("Clamp7(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestInputTypeString(t *testing.T) {
	cases := []struct {
		k    InputType
		want string
	}{
		{NoteOn, "NoteOn"},
		{NoteOff, "NoteOff"},
		{ControlChangeAbs, "ControlChangeAbs"},
		{ControlChangeRel, "ControlChangeRel"},
		{ProgramChange, "ProgramChange"},
		{PitchBend, "PitchBend"},
		{Aftertouch, "Aftertouch"},
		{ChannelPressure, "ChannelPressure"},
		{SysEx, "SysEx"},
		{InputType(999), "Unknown"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("%d.String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestMidiEventTextNonSysExIsEmpty(t *testing.T) {
	ev := MidiEvent{Kind: NoteOn, Number: 60}
	if got := ev.Text(""); got != "" {
		t.Fatalf("Text() on a non-SysEx event = %q, want empty", got)
	}
}

func TestMidiEventTextUnregisteredCharsetReturnsRawASCII(t *testing.T) {
	ev := MidiEvent{Kind: SysEx, SysExData: []byte("hello")}
	if got := ev.Text("NoSuchCharset"); got != "hello" {
		t.Fatalf("Text() = %q, want %q", got, "hello")
	}
}

func TestMidiEventTextEmptyCharsetReturnsRaw(t *testing.T) {
	ev := MidiEvent{Kind: SysEx, SysExData: []byte("patch-1")}
	if got := ev.Text(""); got != "patch-1" {
		t.Fatalf("Text() = %q, want %q", got, "patch-1")
	}
}

func TestMidiEventTextNoPayloadIsEmpty(t *testing.T) {
	ev := MidiEvent{Kind: SysEx}
	if got := ev.Text(""); got != "" {
		t.Fatalf("Text() with no payload = %q, want empty", got)
	}
}
