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
	"fmt"
)

var (
	// ErrNoDevice indicates that no suitable MIDI device could be found,
	// e.g. the device named in a profile's input selector is not
	// currently connected.
	ErrNoDevice = errors.New("no matching MIDI device available")

	// ErrNoProfile indicates that the profile controller has no active
	// profile loaded yet.
	ErrNoProfile = errors.New("no profile loaded")

	// ErrEventQFull indicates that the dispatcher's incoming event queue
	// is full and cannot accept more raw events without blocking the
	// source.
	ErrEventQFull = errors.New("event queue full")

	// ErrShutdown reports that the dispatcher has begun shutting down.
	// No function in this package returns it.
	ErrShutdown = errors.New("dispatcher is shutting down")

	// ErrMaxDepthExceeded is returned by Action.Validate when a
	// composite action nests beyond MaxCompositeDepth.
	ErrMaxDepthExceeded = errors.New("composite action nesting exceeds maximum depth")

	// ErrUnknownKey reports a state key that has no value. StateManager
	// does not return it: GetState reads a key that was never set as 0.
	ErrUnknownKey = errors.New("state key has no value")
)

// ConfigError reports a problem found while validating or loading a
// profile document. Path identifies the JSON location of the offending
// field (e.g. "mappings[3].action.params.keys"), using the same dotted /
// bracketed notation jsonschema uses in its own validation errors.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err with the profile-document path at which it was
// encountered.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}

// ActionError reports a failure that occurred while validating or
// executing a specific action. ActionID is the stable identity assigned
// to the action at construction, so a failure can be traced back to the
// mapping that produced it even when the action is nested inside a
// composite.
type ActionError struct {
	ActionID string
	Kind     string
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s (%s): %s", e.ActionID, e.Kind, e.Err.Error())
}

func (e *ActionError) Unwrap() error { return e.Err }

// NewActionError wraps err with the identity and kind of the action that
// produced it.
func NewActionError(id, kind string, err error) *ActionError {
	return &ActionError{ActionID: id, Kind: kind, Err: err}
}

// StateError reports a failure in a state-manager operation: an internal
// key reserved for the dispatcher being written by user-facing action
// parameters, a type mismatch between a declared default and a stored
// value, or similar invariant violations.
type StateError struct {
	Key string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state key %q: %s", e.Key, e.Err.Error())
}

func (e *StateError) Unwrap() error { return e.Err }

// NewStateError wraps err with the offending state key.
func NewStateError(key string, err error) *StateError {
	return &StateError{Key: key, Err: err}
}

// DeviceError reports a failure originating from a Source implementation:
// device enumeration, open/close, or send failures.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %q: %s", e.Device, e.Err.Error())
}

func (e *DeviceError) Unwrap() error { return e.Err }

// NewDeviceError wraps err with the identity of the device that produced
// it.
func NewDeviceError(device string, err error) *DeviceError {
	return &DeviceError{Device: device, Err: err}
}
