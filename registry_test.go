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

func mapping(id string, enabled bool, in MidiInput) *ActionMapping {
	return &ActionMapping{ID: id, Enabled: enabled, Input: in, Action: NewKeyPressRelease(1)}
}

func TestRegistryTierPriority(t *testing.T) {
	exact := mapping("exact", true, MidiInput{DeviceName: "Launchpad", Channel: 1, InputType: NoteOn, InputNumber: 60})
	devAny := mapping("dev-any-ch", true, MidiInput{DeviceName: "Launchpad", Channel: AnyChannel, InputType: NoteOn, InputNumber: 60})
	anyDevCh := mapping("any-dev-ch", true, MidiInput{DeviceName: "", Channel: 1, InputType: NoteOn, InputNumber: 60})
	wildcard := mapping("wildcard", true, MidiInput{DeviceName: "", Channel: AnyChannel, InputType: NoteOn, InputNumber: 60})

	reg := NewRegistry([]*ActionMapping{wildcard, anyDevCh, devAny, exact})

	got := reg.Lookup("Launchpad", 1, NoteOn, 60)
	if len(got) != 1 || got[0].ID != "exact" {
		t.Fatalf("expected the exact/exact tier to win, got %+v", got)
	}

	got = reg.Lookup("Launchpad", 2, NoteOn, 60)
	if len(got) != 1 || got[0].ID != "dev-any-ch" {
		t.Fatalf("expected the exact-device/any-channel tier, got %+v", got)
	}

	got = reg.Lookup("OtherController", 1, NoteOn, 60)
	if len(got) != 1 || got[0].ID != "any-dev-ch" {
		t.Fatalf("expected the any-device/exact-channel tier, got %+v", got)
	}

	got = reg.Lookup("OtherController", 5, NoteOn, 60)
	if len(got) != 1 || got[0].ID != "wildcard" {
		t.Fatalf("expected the any/any wildcard tier, got %+v", got)
	}
}

func TestRegistryDisabledMappingsNeverMatch(t *testing.T) {
	m := mapping("disabled", false, MidiInput{DeviceName: "Pad", Channel: 1, InputType: NoteOn, InputNumber: 10})
	reg := NewRegistry([]*ActionMapping{m})
	if got := reg.Lookup("Pad", 1, NoteOn, 10); len(got) != 0 {
		t.Fatalf("disabled mapping matched: %+v", got)
	}
	stats := reg.Stats()
	if stats.TotalMappings != 1 || stats.EnabledMappings != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRegistryMultipleMappingsSameKeyAllReturned(t *testing.T) {
	a := mapping("a", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: NoteOn, InputNumber: 10})
	b := mapping("b", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: NoteOn, InputNumber: 10})
	reg := NewRegistry([]*ActionMapping{a, b})
	got := reg.Lookup("Pad", 1, NoteOn, 10)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected both mappings in registration order, got %+v", got)
	}
}

func TestRegistryNoMatchReturnsNil(t *testing.T) {
	reg := NewRegistry(nil)
	if got := reg.Lookup("Pad", 1, NoteOn, 10); got != nil {
		t.Fatalf("expected nil for an empty registry, got %+v", got)
	}
}

func TestRegistryStatsCountsUniqueDevicesAndChannels(t *testing.T) {
	mappings := []*ActionMapping{
		mapping("1", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: NoteOn, InputNumber: 1}),
		mapping("2", true, MidiInput{DeviceName: "Pad", Channel: 2, InputType: NoteOn, InputNumber: 2}),
		mapping("3", true, MidiInput{DeviceName: "Keys", Channel: 1, InputType: NoteOn, InputNumber: 3}),
		mapping("4", true, MidiInput{DeviceName: "", Channel: AnyChannel, InputType: NoteOn, InputNumber: 4}),
	}
	reg := NewRegistry(mappings)
	stats := reg.Stats()
	if stats.UniqueDevices != 2 {
		t.Fatalf("UniqueDevices = %d, want 2", stats.UniqueDevices)
	}
	if stats.UniqueChannels != 2 {
		t.Fatalf("UniqueChannels = %d, want 2", stats.UniqueChannels)
	}
	if stats.TotalMappings != 4 || stats.EnabledMappings != 4 {
		t.Fatalf("unexpected mapping counts: %+v", stats)
	}
}

func TestRegistryLookupFindsRelativeCCMappingForAbsWireEvent(t *testing.T) {
	m := mapping("knob", true, MidiInput{DeviceName: "Pad", Channel: 3, InputType: ControlChangeRel, InputNumber: 30})
	reg := NewRegistry([]*ActionMapping{m})

	// Every Source decodes CC as ControlChangeAbs on the wire; the
	// registry must still resolve a mapping registered as Rel.
	got := reg.Lookup("Pad", 3, ControlChangeAbs, 30)
	if len(got) != 1 || got[0].ID != "knob" {
		t.Fatalf("expected the ControlChangeRel mapping to match an Abs-kind lookup, got %+v", got)
	}
}

func TestRegistryLookupPrefersAbsOverRelAtSameTier(t *testing.T) {
	abs := mapping("abs", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: ControlChangeAbs, InputNumber: 10})
	rel := mapping("rel", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: ControlChangeRel, InputNumber: 11})
	reg := NewRegistry([]*ActionMapping{abs, rel})

	if got := reg.Lookup("Pad", 1, ControlChangeAbs, 10); len(got) != 1 || got[0].ID != "abs" {
		t.Fatalf("expected the Abs mapping to match its own number, got %+v", got)
	}
	if got := reg.Lookup("Pad", 1, ControlChangeAbs, 11); len(got) != 1 || got[0].ID != "rel" {
		t.Fatalf("expected the Rel mapping to match via CC-kind-agnostic lookup, got %+v", got)
	}

	shadowed := mapping("rel-12", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: ControlChangeRel, InputNumber: 12})
	preferred := mapping("abs-12", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: ControlChangeAbs, InputNumber: 12})
	both := NewRegistry([]*ActionMapping{shadowed, preferred})
	if got := both.Lookup("Pad", 1, ControlChangeAbs, 12); len(got) != 1 || got[0].ID != "abs-12" {
		t.Fatalf("expected the Abs mapping to win over a Rel mapping with the same number, got %+v", got)
	}
}

func TestRegistryLookupCCAgnosticRespectsTierPriority(t *testing.T) {
	wildcard := mapping("wildcard", true, MidiInput{DeviceName: "", Channel: AnyChannel, InputType: ControlChangeRel, InputNumber: 30})
	exact := mapping("exact", true, MidiInput{DeviceName: "Pad", Channel: 3, InputType: ControlChangeAbs, InputNumber: 30})
	reg := NewRegistry([]*ActionMapping{wildcard, exact})

	got := reg.Lookup("Pad", 3, ControlChangeAbs, 30)
	if len(got) != 1 || got[0].ID != "exact" {
		t.Fatalf("expected the exact/exact tier to still win over a CC-agnostic wildcard match, got %+v", got)
	}
}

func TestRegistryStatsBucketCount(t *testing.T) {
	mappings := []*ActionMapping{
		mapping("1", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: NoteOn, InputNumber: 1}),
		mapping("2", true, MidiInput{DeviceName: "Pad", Channel: 1, InputType: NoteOn, InputNumber: 2}),
		mapping("3", true, MidiInput{DeviceName: "Keys", Channel: AnyChannel, InputType: NoteOn, InputNumber: 3}),
		mapping("4", true, MidiInput{DeviceName: "", Channel: 5, InputType: NoteOn, InputNumber: 4}),
		mapping("5", true, MidiInput{DeviceName: "", Channel: AnyChannel, InputType: NoteOn, InputNumber: 5}),
	}
	reg := NewRegistry(mappings)
	// Each mapping above lands in a distinct bucket: the two (Pad, ch1)
	// mappings share the exact/exact slot but differ in number, and the
	// number is part of the bucket key, so 5 mappings produce 5 buckets.
	if stats := reg.Stats(); stats.BucketCount != 5 {
		t.Fatalf("BucketCount = %d, want 5, stats=%+v", stats.BucketCount, stats)
	}
}

func TestMidiInputString(t *testing.T) {
	k := MidiInput{DeviceName: "", Channel: AnyChannel, InputType: NoteOn, InputNumber: 64}
	if got, want := k.String(), "*/ch=any/NoteOn(64)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	k2 := MidiInput{DeviceName: "Pad", Channel: 3, InputType: ControlChangeAbs, InputNumber: 7}
	if got, want := k2.String(), "Pad/ch=3/ControlChangeAbs(7)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
