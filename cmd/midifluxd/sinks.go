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

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// unboundSink answers the keyboard/mouse/gamepad/command sink
// interfaces with a logged warning and no effect. Per spec.md §1 these
// are external collaborators this repository does not itself bind to
// an OS input-injection backend; a host wiring midifluxd for real use
// supplies its own sinks in place of this one.
type unboundSink struct {
	log *zap.SugaredLogger
}

func (s *unboundSink) KeyDown(code int) error   { return s.warn("keyboard.keyDown") }
func (s *unboundSink) KeyUp(code int) error     { return s.warn("keyboard.keyUp") }
func (s *unboundSink) KeyToggle(code int) error { return s.warn("keyboard.keyToggle") }

func (s *unboundSink) Click(button string) error               { return s.warn("mouse.click") }
func (s *unboundSink) Scroll(direction string, amount int) error { return s.warn("mouse.scroll") }

func (s *unboundSink) Available() bool { return false }
func (s *unboundSink) SetButton(idx int, name string, pressed bool) error {
	return s.warn("gamepad.setButton")
}
func (s *unboundSink) SetAxis(idx int, name string, rawValue int32, durationMs *int) error {
	return s.warn("gamepad.setAxis")
}

func (s *unboundSink) Spawn(ctx context.Context, command string, shellKind int, hide, waitForExit bool) (int, error) {
	s.log.Warnw("command sink not bound, refusing to spawn", "command", command)
	return 0, fmt.Errorf("command sink not bound in this host")
}

func (s *unboundSink) Play(path string, volume int, device string) error {
	return s.warn("audio.play")
}

func (s *unboundSink) warn(call string) error {
	s.log.Warnw("sink call has no concrete binding in this host", "call", call)
	return nil
}
