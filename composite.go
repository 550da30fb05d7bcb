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
	"fmt"
)

// ErrorPolicy governs how a Sequence reacts to a failing child.
type ErrorPolicy int

const (
	ContinueOnError ErrorPolicy = iota
	StopOnError
)

// unionCategories merges the declared compatibility of a set of children,
// per §4.4 "Composite actions inherit the union of their children's
// categories."
func unionCategories(children ...Action) map[InputCategory]bool {
	out := make(map[InputCategory]bool)
	for _, c := range children {
		for cat := range c.Categories() {
			out[cat] = true
		}
	}
	return out
}

func validateDepth(depth int) error {
	if depth > MaxCompositeDepth {
		return ErrMaxDepthExceeded
	}
	return nil
}

// --- Sequence -----------------------------------------------------------

type Sequence struct {
	simpleAction
	SubActions  []Action
	ErrorPolicy ErrorPolicy
	depth       int
}

func NewSequence(subActions []Action, policy ErrorPolicy) *Sequence {
	return &Sequence{simpleAction: simpleAction{newID(), "Sequence"}, SubActions: subActions, ErrorPolicy: policy}
}

func (a *Sequence) Validate() error {
	if len(a.SubActions) == 0 {
		return fmt.Errorf("sequence must have at least one sub-action")
	}
	if err := validateDepth(a.depth); err != nil {
		return err
	}
	for _, c := range a.SubActions {
		if setter, ok := c.(interface{ setDepth(int) }); ok {
			setter.setDepth(a.depth + 1)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Sequence) setDepth(d int) { a.depth = d }

func (a *Sequence) Categories() map[InputCategory]bool { return unionCategories(a.SubActions...) }
func (a *Sequence) RequiresAsync() bool {
	for _, c := range a.SubActions {
		if c.RequiresAsync() {
			return true
		}
	}
	return false
}

func (a *Sequence) Execute(ctx *ExecContext, value *int32) error {
	var first error
	for _, c := range a.SubActions {
		if err := c.Execute(ctx, value); err != nil {
			wrapped := NewActionError(a.id, a.kind, err)
			if first == nil {
				first = wrapped
			}
			if a.ErrorPolicy == StopOnError {
				return wrapped
			}
			ctx.Log.Warnw("sequence child failed, continuing", "err", err)
		}
	}
	return first
}

func (a *Sequence) ExecuteAsync(ctx context.Context, ec *ExecContext, value *int32) error {
	var first error
	for _, c := range a.SubActions {
		var err error
		if c.RequiresAsync() {
			err = c.ExecuteAsync(ctx, ec, value)
		} else {
			err = c.Execute(ec, value)
		}
		if err != nil {
			wrapped := NewActionError(a.id, a.kind, err)
			if first == nil {
				first = wrapped
			}
			if a.ErrorPolicy == StopOnError {
				return wrapped
			}
			ec.Log.Warnw("sequence child failed, continuing", "err", err)
		}
	}
	return first
}

// --- Conditional (value range) ------------------------------------------

type ValueCondition struct {
	MinValue    int32
	MaxValue    int32
	Action      Action
	Description string
}

type Conditional struct {
	simpleAction
	Conditions []ValueCondition
	depth      int
}

func NewConditional(conditions []ValueCondition) *Conditional {
	return &Conditional{simpleAction: simpleAction{newID(), "Conditional"}, Conditions: conditions}
}

func (a *Conditional) setDepth(d int) { a.depth = d }

func (a *Conditional) Validate() error {
	if len(a.Conditions) == 0 {
		return fmt.Errorf("conditional must have at least one condition")
	}
	if err := validateDepth(a.depth); err != nil {
		return err
	}
	type span struct{ lo, hi int32 }
	var spans []span
	for _, c := range a.Conditions {
		if c.MinValue < 0 || c.MaxValue > 127 || c.MinValue > c.MaxValue {
			return fmt.Errorf("condition range [%d,%d] invalid: require 0 <= min <= max <= 127", c.MinValue, c.MaxValue)
		}
		for _, s := range spans {
			if c.MinValue <= s.hi && s.lo <= c.MaxValue {
				return fmt.Errorf("condition range [%d,%d] overlaps [%d,%d]", c.MinValue, c.MaxValue, s.lo, s.hi)
			}
		}
		spans = append(spans, span{c.MinValue, c.MaxValue})
		if setter, ok := c.Action.(interface{ setDepth(int) }); ok {
			setter.setDepth(a.depth + 1)
		}
		if err := c.Action.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Conditional) Categories() map[InputCategory]bool { return categorySet(AbsoluteValue) }
func (a *Conditional) RequiresAsync() bool {
	for _, c := range a.Conditions {
		if c.Action.RequiresAsync() {
			return true
		}
	}
	return false
}

func (a *Conditional) match(value *int32) Action {
	if value == nil {
		return nil
	}
	for _, c := range a.Conditions {
		if *value >= c.MinValue && *value <= c.MaxValue {
			return c.Action
		}
	}
	return nil
}

func (a *Conditional) Execute(ctx *ExecContext, value *int32) error {
	child := a.match(value)
	if child == nil {
		return nil
	}
	if err := child.Execute(ctx, value); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}

func (a *Conditional) ExecuteAsync(ctx context.Context, ec *ExecContext, value *int32) error {
	child := a.match(value)
	if child == nil {
		return nil
	}
	var err error
	if child.RequiresAsync() {
		err = child.ExecuteAsync(ctx, ec, value)
	} else {
		err = child.Execute(ec, value)
	}
	if err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}

// --- StateConditional -----------------------------------------------------

type ComparisonType int

const (
	Equals ComparisonType = iota
	GreaterThan
	LessThan
)

type StateLogic int

const (
	Single StateLogic = iota
	And
)

type StateCondition struct {
	StateKey       string
	ComparisonType ComparisonType
	ComparisonValue int32
}

type StateConditional struct {
	simpleAction
	Conditions  []StateCondition
	Logic       StateLogic
	TrueAction  Action
	FalseAction Action // nil means no-op
	depth       int
}

func NewStateConditional(conditions []StateCondition, logic StateLogic, trueAction, falseAction Action) *StateConditional {
	return &StateConditional{simpleAction: simpleAction{newID(), "StateConditional"}, Conditions: conditions, Logic: logic, TrueAction: trueAction, FalseAction: falseAction}
}

func (a *StateConditional) setDepth(d int) { a.depth = d }

func (a *StateConditional) Validate() error {
	if len(a.Conditions) == 0 {
		return fmt.Errorf("stateConditional must have at least one condition")
	}
	if a.Logic == Single && len(a.Conditions) != 1 {
		return fmt.Errorf("single logic requires exactly one condition")
	}
	if err := validateDepth(a.depth); err != nil {
		return err
	}
	children := []Action{a.TrueAction}
	if a.FalseAction != nil {
		children = append(children, a.FalseAction)
	}
	for _, c := range children {
		if setter, ok := c.(interface{ setDepth(int) }); ok {
			setter.setDepth(a.depth + 1)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a *StateConditional) Categories() map[InputCategory]bool {
	if a.FalseAction != nil {
		return unionCategories(a.TrueAction, a.FalseAction)
	}
	return unionCategories(a.TrueAction)
}
func (a *StateConditional) RequiresAsync() bool {
	if a.TrueAction.RequiresAsync() {
		return true
	}
	return a.FalseAction != nil && a.FalseAction.RequiresAsync()
}

func evalCondition(c StateCondition, state *StateManager) bool {
	v := state.GetState(c.StateKey)
	switch c.ComparisonType {
	case Equals:
		return v == c.ComparisonValue
	case GreaterThan:
		return v > c.ComparisonValue
	case LessThan:
		return v < c.ComparisonValue
	default:
		return false
	}
}

func (a *StateConditional) evaluate(state *StateManager) bool {
	if a.Logic == Single {
		return evalCondition(a.Conditions[0], state)
	}
	for _, c := range a.Conditions {
		if !evalCondition(c, state) {
			return false
		}
	}
	return true
}

func (a *StateConditional) chosen(state *StateManager) Action {
	if a.evaluate(state) {
		return a.TrueAction
	}
	return a.FalseAction
}

func (a *StateConditional) Execute(ctx *ExecContext, value *int32) error {
	child := a.chosen(ctx.State)
	if child == nil {
		return nil
	}
	if err := child.Execute(ctx, value); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}

func (a *StateConditional) ExecuteAsync(ctx context.Context, ec *ExecContext, value *int32) error {
	child := a.chosen(ec.State)
	if child == nil {
		return nil
	}
	var err error
	if child.RequiresAsync() {
		err = child.ExecuteAsync(ctx, ec, value)
	} else {
		err = child.Execute(ec, value)
	}
	if err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}

// --- Alternating ----------------------------------------------------------

type Alternating struct {
	simpleAction
	FirstAction    Action
	SecondAction   Action
	StartWithFirst bool
	depth          int
}

func NewAlternating(first, second Action, startWithFirst bool) *Alternating {
	return &Alternating{simpleAction: simpleAction{newID(), "Alternating"}, FirstAction: first, SecondAction: second, StartWithFirst: startWithFirst}
}

func (a *Alternating) setDepth(d int) { a.depth = d }

func (a *Alternating) Validate() error {
	if err := validateDepth(a.depth); err != nil {
		return err
	}
	for _, c := range []Action{a.FirstAction, a.SecondAction} {
		if setter, ok := c.(interface{ setDepth(int) }); ok {
			setter.setDepth(a.depth + 1)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Alternating) Categories() map[InputCategory]bool {
	return unionCategories(a.FirstAction, a.SecondAction)
}
func (a *Alternating) RequiresAsync() bool {
	return a.FirstAction.RequiresAsync() || a.SecondAction.RequiresAsync()
}

// toggleKey is the internal state entry tracking this Alternating's
// current position, per §4.5 "stored as an internal state entry".
func (a *Alternating) toggleKey() string { return AltStateName(a.id) }

// current returns which child fires next, without mutating state.
func (a *Alternating) current(state *StateManager) Action {
	toggle := state.GetState(a.toggleKey())
	useFirst := a.StartWithFirst
	if toggle != 0 {
		useFirst = !useFirst
	}
	if useFirst {
		return a.FirstAction
	}
	return a.SecondAction
}

// advance flips the toggle; only called after a successful dispatch.
func (a *Alternating) advance(state *StateManager) {
	cur := state.GetState(a.toggleKey())
	if cur == 0 {
		_ = state.SetState(a.toggleKey(), 1)
	} else {
		_ = state.SetState(a.toggleKey(), 0)
	}
}

func (a *Alternating) Execute(ctx *ExecContext, value *int32) error {
	child := a.current(ctx.State)
	err := child.Execute(ctx, value)
	if err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	a.advance(ctx.State)
	return nil
}

func (a *Alternating) ExecuteAsync(ctx context.Context, ec *ExecContext, value *int32) error {
	child := a.current(ec.State)
	var err error
	if child.RequiresAsync() {
		err = child.ExecuteAsync(ctx, ec, value)
	} else {
		err = child.Execute(ec, value)
	}
	if err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	a.advance(ec.State)
	return nil
}
