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

import "context"

// KeyboardSink is the boundary to OS key-injection. Repeated KeyDown calls
// for the same code within one profile session are made idempotent by the
// StateManager's held-key tracking upstream, not by the sink itself.
type KeyboardSink interface {
	KeyDown(code int) error
	KeyUp(code int) error
	KeyToggle(code int) error
}

// MouseSink is the boundary to OS cursor/button injection.
type MouseSink interface {
	Click(button string) error
	Scroll(direction string, amount int) error
}

// GamepadSink is the boundary to a virtual gamepad driver. Availability
// can be false (no virtual controller bridge installed); callers must
// no-op with a logged warning rather than fail loudly.
type GamepadSink interface {
	Available() bool
	SetButton(idx int, name string, pressed bool) error
	SetAxis(idx int, name string, rawValue int32, durationMs *int) error
}

// CommandSink spawns a child process. Spawn returns the exit code once the
// process has actually exited; if waitForExit is false the returned exit
// code is always 0 and the process is not awaited.
type CommandSink interface {
	Spawn(ctx context.Context, command string, shellKind int, hide, waitForExit bool) (exitCode int, err error)
}

// AudioSink plays a sound file. Play is non-blocking; overlapping plays on
// the same sink are allowed.
type AudioSink interface {
	Play(path string, volume int, device string) error
}

// MidiOutputSink sends a message to a named output device.
type MidiOutputSink interface {
	Send(deviceName string, msg MidiMessage) error
}

// Sinks bundles every effect-sink boundary an ExecContext threads to
// actions. A host wires its concrete implementations (or the simulation
// package's fakes, for tests) once at startup.
type Sinks struct {
	Keyboard KeyboardSink
	Mouse    MouseSink
	Gamepad  GamepadSink
	Command  CommandSink
	Audio    AudioSink
	MidiOut  MidiOutputSink
}
