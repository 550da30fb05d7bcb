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
	"errors"
	"testing"
)

func TestConfigErrorFormatsWithPath(t *testing.T) {
	err := NewConfigError("mappings[3].action.params.keys", ErrUnknownKey)
	want := "mappings[3].action.params.keys: state key has no value"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConfigErrorFormatsWithoutPath(t *testing.T) {
	err := NewConfigError("", ErrUnknownKey)
	if err.Error() != ErrUnknownKey.Error() {
		t.Fatalf("Error() = %q, want %q", err.Error(), ErrUnknownKey.Error())
	}
}

func TestConfigErrorUnwraps(t *testing.T) {
	err := NewConfigError("name", ErrNoProfile)
	if !errors.Is(err, ErrNoProfile) {
		t.Fatal("expected errors.Is to see through ConfigError to its wrapped error")
	}
}

func TestActionErrorFormatsWithIDAndKind(t *testing.T) {
	err := NewActionError("m1", "KeyPressRelease", ErrMaxDepthExceeded)
	want := `action m1 (KeyPressRelease): composite action nesting exceeds maximum depth`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestActionErrorUnwraps(t *testing.T) {
	err := NewActionError("m1", "Sequence", ErrMaxDepthExceeded)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatal("expected errors.Is to see through ActionError to its wrapped error")
	}
}

func TestStateErrorFormatsWithKey(t *testing.T) {
	err := NewStateError("__dispatcher_internal", ErrUnknownKey)
	want := `state key "__dispatcher_internal": state key has no value`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStateErrorUnwraps(t *testing.T) {
	err := NewStateError("mode", ErrUnknownKey)
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatal("expected errors.Is to see through StateError to its wrapped error")
	}
}

func TestDeviceErrorFormatsWithDeviceName(t *testing.T) {
	err := NewDeviceError("Launchpad X", ErrNoDevice)
	want := `device "Launchpad X": no matching MIDI device available`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDeviceErrorUnwraps(t *testing.T) {
	err := NewDeviceError("Keystep", ErrNoDevice)
	if !errors.Is(err, ErrNoDevice) {
		t.Fatal("expected errors.Is to see through DeviceError to its wrapped error")
	}
}
