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

// DecodeRelativeCC applies the sign-magnitude decode in §4.7 to a raw
// 7-bit CC wire value, returning the signed delta. Only sign-magnitude is
// supported; two's-complement and binary-offset encodings are explicitly
// out of scope (§9).
func DecodeRelativeCC(wire int32) int32 {
	switch {
	case wire == 64:
		return 0
	case wire >= 1 && wire <= 63:
		return wire
	case wire >= 65 && wire <= 127:
		return -(wire - 64)
	default:
		return 0
	}
}

// RelativeCC is the action bound to a ControlChangeRel mapping. It
// dispatches IncreaseAction or DecreaseAction |delta| times, per decoded
// wire value.
type RelativeCC struct {
	simpleAction
	IncreaseAction Action
	DecreaseAction Action
	depth          int
}

func NewRelativeCC(increase, decrease Action) *RelativeCC {
	return &RelativeCC{simpleAction: simpleAction{newID(), "RelativeCC"}, IncreaseAction: increase, DecreaseAction: decrease}
}

func (a *RelativeCC) setDepth(d int) { a.depth = d }

func (a *RelativeCC) Validate() error {
	if err := validateDepth(a.depth); err != nil {
		return err
	}
	for _, c := range []Action{a.IncreaseAction, a.DecreaseAction} {
		if setter, ok := c.(interface{ setDepth(int) }); ok {
			setter.setDepth(a.depth + 1)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a *RelativeCC) Categories() map[InputCategory]bool { return categorySet(RelativeValue) }
func (a *RelativeCC) RequiresAsync() bool {
	return a.IncreaseAction.RequiresAsync() || a.DecreaseAction.RequiresAsync()
}

func (a *RelativeCC) dispatch(child Action, times int, ctx *ExecContext, wire int32) error {
	var first error
	for i := 0; i < times; i++ {
		v := wire
		if err := child.Execute(ctx, &v); err != nil {
			if first == nil {
				first = NewActionError(a.id, a.kind, err)
			}
			ctx.Log.Warnw("relativeCC iteration failed, continuing", "err", err)
		}
	}
	return first
}

func (a *RelativeCC) Execute(ctx *ExecContext, value *int32) error {
	if value == nil {
		return nil
	}
	delta := DecodeRelativeCC(*value)
	if delta == 0 {
		return nil
	}
	if delta > 0 {
		return a.dispatch(a.IncreaseAction, int(delta), ctx, *value)
	}
	return a.dispatch(a.DecreaseAction, int(-delta), ctx, *value)
}

func (a *RelativeCC) ExecuteAsync(ctx context.Context, ec *ExecContext, value *int32) error {
	if value == nil {
		return nil
	}
	delta := DecodeRelativeCC(*value)
	if delta == 0 {
		return nil
	}
	child := a.IncreaseAction
	times := int(delta)
	if delta < 0 {
		child = a.DecreaseAction
		times = int(-delta)
	}
	var first error
	for i := 0; i < times; i++ {
		v := *value
		var err error
		if child.RequiresAsync() {
			err = child.ExecuteAsync(ctx, ec, &v)
		} else {
			err = child.Execute(ec, &v)
		}
		if err != nil {
			if first == nil {
				first = NewActionError(a.id, a.kind, err)
			}
			ec.Log.Warnw("relativeCC iteration failed, continuing", "err", err)
		}
	}
	return first
}
