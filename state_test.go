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

func TestStateManagerSetGet(t *testing.T) {
	s := NewStateManager()
	if got := s.GetState("missing"); got != 0 {
		t.Fatalf("missing key read as %d, want 0", got)
	}
	if err := s.SetState("shiftMode", 3); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if got := s.GetState("shiftMode"); got != 3 {
		t.Fatalf("GetState = %d, want 3", got)
	}
}

func TestStateManagerIncreaseDecrease(t *testing.T) {
	s := NewStateManager()
	if err := s.IncreaseState("counter", 5); err != nil {
		t.Fatalf("IncreaseState: %v", err)
	}
	if err := s.DecreaseState("counter", 2); err != nil {
		t.Fatalf("DecreaseState: %v", err)
	}
	if got := s.GetState("counter"); got != 3 {
		t.Fatalf("GetState = %d, want 3", got)
	}
	if err := s.DecreaseState("counter", 10); err != nil {
		t.Fatalf("DecreaseState: %v", err)
	}
	if got := s.GetState("counter"); got != -7 {
		t.Fatalf("expected state to go negative, got %d", got)
	}
}

func TestStateManagerRejectsInvalidUserKey(t *testing.T) {
	s := NewStateManager()
	if err := s.SetState("bad key!", 1); err == nil {
		t.Fatal("expected an error for a key with invalid characters")
	}
}

func TestStateManagerInternalKeyNamespaces(t *testing.T) {
	s := NewStateManager()
	valid := []string{HeldKeyName(65), HeldButtonName(0, "A"), AltStateName("some-action-id")}
	for _, k := range valid {
		if err := s.SetState(k, 1); err != nil {
			t.Errorf("SetState(%q) rejected a valid internal key: %v", k, err)
		}
	}
	if err := s.SetState("*Bogus", 1); err == nil {
		t.Fatal("expected an unrecognized internal namespace to be rejected")
	}
}

func TestStateManagerHeldKeyLifecycle(t *testing.T) {
	s := NewStateManager()
	key := HeldKeyName(10)
	s.MarkHeld(key)
	held := s.HeldKeys()
	if len(held) != 1 || held[0] != key {
		t.Fatalf("HeldKeys() = %v, want [%s]", held, key)
	}
	if !s.ReleaseHeld(key) {
		t.Fatal("ReleaseHeld should report true for a held key")
	}
	if s.ReleaseHeld(key) {
		t.Fatal("ReleaseHeld should report false once already released")
	}
	if len(s.HeldKeys()) != 0 {
		t.Fatal("expected no held keys after release")
	}
}

func TestStateManagerInitSeedsUserKeysOnly(t *testing.T) {
	s := NewStateManager()
	s.Init(map[string]int32{"mode": 2, "bank": 1})
	if s.GetState("mode") != 2 || s.GetState("bank") != 1 {
		t.Fatal("Init did not seed the expected values")
	}
	stats := s.Stats()
	if stats.Total != 2 || stats.User != 2 || stats.Internal != 0 {
		t.Fatalf("unexpected stats after Init: %+v", stats)
	}
}

func TestStateManagerClearStateAndClearAll(t *testing.T) {
	s := NewStateManager()
	_ = s.SetState("mode", 1)
	_ = s.SetState("bank", 2)
	s.MarkHeld(HeldKeyName(1))

	s.ClearState("mode")
	if s.GetState("mode") != 0 {
		t.Fatal("ClearState did not remove the key")
	}
	if s.GetState("bank") != 2 {
		t.Fatal("ClearState removed an unrelated key")
	}

	s.ClearAll()
	if stats := s.Stats(); stats.Total != 0 {
		t.Fatalf("expected empty state after ClearAll, got %+v", stats)
	}
	if len(s.HeldKeys()) != 0 {
		t.Fatal("expected no held keys after ClearAll")
	}
}

func TestStateManagerSnapshotIsACopy(t *testing.T) {
	s := NewStateManager()
	_ = s.SetState("mode", 7)
	snap := s.Snapshot()
	snap["mode"] = 99
	if got := s.GetState("mode"); got != 7 {
		t.Fatalf("Snapshot mutation leaked into state manager: got %d, want 7", got)
	}
}

func TestStateManagerStatsSeparatesUserAndInternal(t *testing.T) {
	s := NewStateManager()
	_ = s.SetState("mode", 1)
	_ = s.SetState(HeldKeyName(1), 1)
	stats := s.Stats()
	if stats.Total != 2 || stats.User != 1 || stats.Internal != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStateManagerStatsCountsMarkHeldWithoutAValue(t *testing.T) {
	s := NewStateManager()
	_ = s.SetState("mode", 1)
	s.MarkHeld(HeldKeyName(7)) // KeyDown/GameControllerButton never SetState the held key directly
	stats := s.Stats()
	if stats.Total != 2 || stats.User != 1 || stats.Internal != 1 {
		t.Fatalf("expected a MarkHeld-only key to count toward Internal, got %+v", stats)
	}
}
