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
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cozmopolit/midiflux/simulation"
)

var errActionBoom = errors.New("boom")

// countingAction records how many times Execute was called.
type countingAction struct {
	simpleAction
	calls int
	err   error
}

func newCountingAction(kind string) *countingAction {
	return &countingAction{simpleAction: simpleAction{newID(), kind}}
}
func (a *countingAction) Validate() error                       { return nil }
func (a *countingAction) Categories() map[InputCategory]bool    { return categorySet(RelativeValue) }
func (a *countingAction) RequiresAsync() bool                   { return false }
func (a *countingAction) Execute(_ *ExecContext, _ *int32) error { a.calls++; return a.err }
func (a *countingAction) ExecuteAsync(_ context.Context, ctx *ExecContext, v *int32) error {
	return a.Execute(ctx, v)
}

func testExecContext() *ExecContext {
	log := zap.NewNop().Sugar()
	return &ExecContext{State: NewStateManager(), Sinks: simulation.NewSinks().Bundle(), Log: log}
}

func TestDecodeRelativeCC(t *testing.T) {
	cases := []struct {
		wire int32
		want int32
	}{
		{64, 0},
		{1, 1},
		{63, 63},
		{65, -1},
		{127, -63},
		{0, 0},
	}
	for _, c := range cases {
		if got := DecodeRelativeCC(c.wire); got != c.want {
			t.Errorf("DecodeRelativeCC(%d) = %d, want %d", c.wire, got, c.want)
		}
	}
}

func TestRelativeCCDispatchesIncrease(t *testing.T) {
	inc := newCountingAction("inc")
	dec := newCountingAction("dec")
	rcc := NewRelativeCC(inc, dec)
	ctx := testExecContext()
	v := int32(5)
	if err := rcc.Execute(ctx, &v); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if inc.calls != 5 || dec.calls != 0 {
		t.Fatalf("inc.calls=%d dec.calls=%d, want 5/0", inc.calls, dec.calls)
	}
}

func TestRelativeCCDispatchesDecrease(t *testing.T) {
	inc := newCountingAction("inc")
	dec := newCountingAction("dec")
	rcc := NewRelativeCC(inc, dec)
	ctx := testExecContext()
	v := int32(70) // decodes to -6
	if err := rcc.Execute(ctx, &v); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if dec.calls != 6 || inc.calls != 0 {
		t.Fatalf("inc.calls=%d dec.calls=%d, want 0/6", inc.calls, dec.calls)
	}
}

func TestRelativeCCCenterValueIsNoOp(t *testing.T) {
	inc := newCountingAction("inc")
	dec := newCountingAction("dec")
	rcc := NewRelativeCC(inc, dec)
	ctx := testExecContext()
	v := int32(64)
	if err := rcc.Execute(ctx, &v); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if inc.calls != 0 || dec.calls != 0 {
		t.Fatalf("expected no dispatch at center value, got inc=%d dec=%d", inc.calls, dec.calls)
	}
}

func TestRelativeCCNilValueIsNoOp(t *testing.T) {
	inc := newCountingAction("inc")
	dec := newCountingAction("dec")
	rcc := NewRelativeCC(inc, dec)
	ctx := testExecContext()
	if err := rcc.Execute(ctx, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if inc.calls != 0 || dec.calls != 0 {
		t.Fatal("expected no dispatch for a nil value")
	}
}

func TestRelativeCCContinuesPastChildErrors(t *testing.T) {
	inc := newCountingAction("inc")
	inc.err = errActionBoom
	dec := newCountingAction("dec")
	rcc := NewRelativeCC(inc, dec)
	ctx := testExecContext()
	v := int32(3)
	err := rcc.Execute(ctx, &v)
	if err == nil {
		t.Fatal("expected the first child error to be returned")
	}
	if inc.calls != 3 {
		t.Fatalf("expected all 3 iterations to run despite errors, got %d", inc.calls)
	}
}

func TestRelativeCCValidatePropagatesDepth(t *testing.T) {
	inc := newCountingAction("inc")
	dec := newCountingAction("dec")
	rcc := NewRelativeCC(inc, dec)
	rcc.setDepth(MaxCompositeDepth + 1)
	if err := rcc.Validate(); err == nil {
		t.Fatal("expected depth validation to fail once MaxCompositeDepth is exceeded")
	}
}
