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

package simulation

import (
	"context"
	"fmt"
	"sync"

	"github.com/cozmopolit/midiflux"
)

// Call records one sink invocation, for assertions in tests that care
// about order across sink kinds, not just within one.
type Call struct {
	Sink string
	Args []interface{}
}

// Sinks bundles a midiflux.Sinks worth of fakes that share one call log.
type Sinks struct {
	mu    sync.Mutex
	calls []Call

	heldKeys    map[int]bool
	heldButtons map[string]bool
	gamepadOK   bool
}

// NewSinks returns a fresh Sinks with the gamepad fake reporting
// available.
func NewSinks() *Sinks {
	return &Sinks{
		heldKeys:    make(map[int]bool),
		heldButtons: make(map[string]bool),
		gamepadOK:   true,
	}
}

// Bundle returns a midiflux.Sinks pointing at this fake's methods.
func (s *Sinks) Bundle() *midiflux.Sinks {
	return &midiflux.Sinks{
		Keyboard: s,
		Mouse:    s,
		Gamepad:  s,
		Command:  s,
		Audio:    s,
		MidiOut:  s,
	}
}

func (s *Sinks) record(sink string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Sink: sink, Args: args})
}

// Calls returns every recorded call, in order.
func (s *Sinks) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// HeldKeys returns the set of key codes currently down per this fake's own
// bookkeeping (independent of midiflux.StateManager, for cross-checking).
func (s *Sinks) HeldKeys() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]bool, len(s.heldKeys))
	for k, v := range s.heldKeys {
		if v {
			out[k] = true
		}
	}
	return out
}

// --- KeyboardSink -------------------------------------------------------

func (s *Sinks) KeyDown(code int) error {
	s.record("keyDown", code)
	s.mu.Lock()
	s.heldKeys[code] = true
	s.mu.Unlock()
	return nil
}

func (s *Sinks) KeyUp(code int) error {
	s.record("keyUp", code)
	s.mu.Lock()
	s.heldKeys[code] = false
	s.mu.Unlock()
	return nil
}

func (s *Sinks) KeyToggle(code int) error {
	s.record("keyToggle", code)
	return nil
}

// --- MouseSink ----------------------------------------------------------

func (s *Sinks) Click(button string) error {
	s.record("click", button)
	return nil
}

func (s *Sinks) Scroll(direction string, amount int) error {
	s.record("scroll", direction, amount)
	return nil
}

// --- GamepadSink --------------------------------------------------------

func (s *Sinks) Available() bool { return s.gamepadOK }

// SetUnavailable makes Available report false, for exercising the
// no-op-with-warning path.
func (s *Sinks) SetUnavailable() { s.gamepadOK = false }

func (s *Sinks) SetButton(idx int, name string, pressed bool) error {
	s.record("setButton", idx, name, pressed)
	key := fmt.Sprintf("%d_%s", idx, name)
	s.mu.Lock()
	s.heldButtons[key] = pressed
	s.mu.Unlock()
	return nil
}

func (s *Sinks) SetAxis(idx int, name string, rawValue int32, durationMs *int) error {
	s.record("setAxis", idx, name, rawValue, durationMs)
	return nil
}

// --- CommandSink --------------------------------------------------------

func (s *Sinks) Spawn(ctx context.Context, command string, shellKind int, hide, waitForExit bool) (int, error) {
	s.record("spawn", command, shellKind, hide, waitForExit)
	return 0, nil
}

// --- AudioSink ------------------------------------------------------------

func (s *Sinks) Play(path string, volume int, device string) error {
	s.record("play", path, volume, device)
	return nil
}

// --- MidiOutputSink -------------------------------------------------------

func (s *Sinks) Send(deviceName string, msg midiflux.MidiMessage) error {
	s.record("midiSend", deviceName, msg)
	return nil
}
