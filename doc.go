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

// Package midiflux provides the core of a MIDI-event-to-host-action
// dispatch engine: it normalizes raw hardware MIDI messages into events,
// matches them against a profile's mapping registry, and executes the
// resulting actions (key presses, composite sequences, stateful toggles)
// against a set of host-side effect sinks.
//
// The package itself is hardware- and host-agnostic. Real MIDI I/O is
// supplied by an implementation of Source (see driver/gomidi for a
// concrete binding over rtmididrv, or package simulation for an
// in-memory one used by tests); real host effects are supplied by
// implementations of the sink interfaces in sinks.go.
package midiflux
