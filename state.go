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
	"fmt"
	"regexp"
	"sync"
)

var userKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// internalKeyPatterns recognizes the three internal namespaces named in
// §4.6. Writes to a key beginning with '*' that matches none of these are
// rejected with a *StateError.
var internalKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\*Key\d+$`),          // held virtual key code
	regexp.MustCompile(`^\*Btn\d+_[A-Za-z0-9]+$`), // held gamepad button
	regexp.MustCompile(`^\*Alt[A-Za-z0-9-]+$`),    // alternating toggle
}

// HeldKeyName and HeldButtonName and AltStateName build the internal state
// keys used to track held resources and toggle positions, per the
// extensible internal-namespace convention in §9.
func HeldKeyName(code int) string                 { return fmt.Sprintf("*Key%d", code) }
func HeldButtonName(idx int, name string) string  { return fmt.Sprintf("*Btn%d_%s", idx, name) }
func AltStateName(actionID string) string         { return fmt.Sprintf("*Alt%s", actionID) }

func isInternalKey(key string) bool {
	return len(key) > 0 && key[0] == '*'
}

func validInternalKey(key string) bool {
	for _, p := range internalKeyPatterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// StateManager is the profile-scoped, thread-safe integer state store
// described in §4.6. Operations are individually atomic; composites that
// perform several state operations get no cross-operation transactionality
// (§5).
type StateManager struct {
	mu       sync.Mutex
	values   map[string]int32
	heldKeys map[string]struct{} // subset of values' keys currently "held"
}

// NewStateManager returns an empty state manager.
func NewStateManager() *StateManager {
	return &StateManager{
		values:   make(map[string]int32),
		heldKeys: make(map[string]struct{}),
	}
}

// Init seeds the store from a profile's initialStates. Only user keys are
// accepted here; internal keys always start absent.
func (s *StateManager) Init(initial map[string]int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]int32, len(initial))
	s.heldKeys = make(map[string]struct{})
	for k, v := range initial {
		if isInternalKey(k) {
			continue
		}
		s.values[k] = v
	}
}

func (s *StateManager) validateKey(key string) error {
	if isInternalKey(key) {
		if !validInternalKey(key) {
			return NewStateError(key, fmt.Errorf("unrecognized internal key namespace"))
		}
		return nil
	}
	if !userKeyPattern.MatchString(key) {
		return NewStateError(key, fmt.Errorf("user keys must match %s", userKeyPattern.String()))
	}
	return nil
}

// GetState reads a key's current value. Missing user keys read as 0;
// missing internal keys also read 0, there being no per-namespace default
// richer than "not held".
func (s *StateManager) GetState(key string) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// SetState unconditionally writes key.
func (s *StateManager) SetState(key string, value int32) error {
	if err := s.validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// IncreaseState adds delta to key's current value (0 if absent).
func (s *StateManager) IncreaseState(key string, delta int32) error {
	if err := s.validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] += delta
	return nil
}

// DecreaseState subtracts delta from key's current value (0 if absent);
// the result may go negative.
func (s *StateManager) DecreaseState(key string, delta int32) error {
	return s.IncreaseState(key, -delta)
}

// ClearState removes a single key.
func (s *StateManager) ClearState(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.heldKeys, key)
}

// ClearAll removes every key, used on profile swap and shutdown before
// reinitializing from a new profile's initialStates.
func (s *StateManager) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]int32)
	s.heldKeys = make(map[string]struct{})
}

// MarkHeld records that the internal key identifies a currently-held
// resource (a pressed-and-not-yet-released key or gamepad button), for
// release on profile swap or shutdown.
func (s *StateManager) MarkHeld(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heldKeys[key] = struct{}{}
}

// ReleaseHeld clears the held marker for key. It is a no-op if the key was
// not marked (e.g. an auto-release timer firing after the key was already
// explicitly released).
func (s *StateManager) ReleaseHeld(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.heldKeys[key]; !ok {
		return false
	}
	delete(s.heldKeys, key)
	return true
}

// HeldKeys returns a snapshot of the currently held internal keys, used by
// the profile controller and dispatcher shutdown to synthesize releases.
func (s *StateManager) HeldKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.heldKeys))
	for k := range s.heldKeys {
		out = append(out, k)
	}
	return out
}

// StateStats is the statistics snapshot described in §4.6.
type StateStats struct {
	Total    int
	User     int
	Internal int
}

// Stats returns the state manager's read-only statistics. Held keys count
// toward Internal even when MarkHeld never wrote a value for them, since a
// held resource is state the manager is tracking regardless of whether it
// also carries an int32 value.
func (s *StateManager) Stats() StateStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.values)+len(s.heldKeys))
	for k := range s.values {
		seen[k] = struct{}{}
	}
	for k := range s.heldKeys {
		seen[k] = struct{}{}
	}
	st := StateStats{Total: len(seen)}
	for k := range seen {
		if isInternalKey(k) {
			st.Internal++
		} else {
			st.User++
		}
	}
	return st
}

// Snapshot returns a copy of the full state map, for the management
// surface's "get current config" query. Never consulted by the dispatch
// hot path — see SPEC_FULL §"C6 — State Manager (expanded)".
func (s *StateManager) Snapshot() map[string]int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int32, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
