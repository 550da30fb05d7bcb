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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InputCategory is one of the three shapes of incoming value an Action can
// declare itself compatible with, per §4.4.
type InputCategory int

const (
	Trigger InputCategory = iota
	AbsoluteValue
	RelativeValue
)

// MaxCompositeDepth bounds how deeply Sequence/Conditional/StateConditional
// /Alternating may nest, enforced at Validate time (§9 "Composite
// recursion").
const MaxCompositeDepth = 256

// ExecContext carries everything an Action needs to run: state, sinks, a
// way to schedule auto-release timers and track async work, and a logger.
// It is threaded explicitly through every call rather than reached via
// package-level globals (§9 "Global service access").
type ExecContext struct {
	State      *StateManager
	Sinks      *Sinks
	Scheduler  AsyncScheduler
	Log        *zap.SugaredLogger
}

// AsyncScheduler is the subset of the Dispatcher that actions need: the
// ability to schedule a deferred auto-release and to spawn a tracked async
// task. Declared as an interface here so action.go has no dependency on
// dispatcher.go's concrete type.
type AsyncScheduler interface {
	ScheduleRelease(after time.Duration, key string, release func())
	Spawn(fn func(context.Context) error)
}

// Action is the polymorphic unit of work a mapping triggers. Identity is a
// stable id assigned at construction; actions own no runtime state of
// their own; any persistent state lives in the StateManager keyed by the
// action's logical purpose.
type Action interface {
	// ID returns this action's stable, opaque identity.
	ID() string

	// Kind names the action variant, for error messages and statistics.
	Kind() string

	// Validate is pure and called at profile load time; any returned
	// error fails the load.
	Validate() error

	// Categories returns the InputCategory set this action is
	// compatible with, for load-time validation against its mapping's
	// inputType.
	Categories() map[InputCategory]bool

	// RequiresAsync reports whether this action (or, for composites, any
	// descendant) needs the async execution path.
	RequiresAsync() bool

	// Execute runs the synchronous path: fast, non-suspending. Delay
	// is a no-op here; CommandExecution does not wait for exit.
	Execute(ctx *ExecContext, value *int32) error

	// ExecuteAsync runs the full path including real suspension
	// (delays, waiting on child-process exit). Only invoked by the
	// dispatcher when RequiresAsync is true.
	ExecuteAsync(ctx context.Context, ec *ExecContext, value *int32) error
}

func newID() string { return uuid.NewString() }

func categorySet(cats ...InputCategory) map[InputCategory]bool {
	m := make(map[InputCategory]bool, len(cats))
	for _, c := range cats {
		m[c] = true
	}
	return m
}

// simpleAction is embedded by every action type to supply its ID and Kind.
type simpleAction struct {
	id   string
	kind string
}

func (a *simpleAction) ID() string   { return a.id }
func (a *simpleAction) Kind() string { return a.kind }

// --- KeyPressRelease ---------------------------------------------------

type KeyPressRelease struct {
	simpleAction
	KeyCode int
}

func NewKeyPressRelease(keyCode int) *KeyPressRelease {
	return &KeyPressRelease{simpleAction{newID(), "KeyPressRelease"}, keyCode}
}

func (a *KeyPressRelease) Validate() error { return nil }
func (a *KeyPressRelease) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *KeyPressRelease) RequiresAsync() bool { return false }
func (a *KeyPressRelease) Execute(ctx *ExecContext, value *int32) error {
	if err := ctx.Sinks.Keyboard.KeyDown(a.KeyCode); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	if err := ctx.Sinks.Keyboard.KeyUp(a.KeyCode); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *KeyPressRelease) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// --- KeyDown ------------------------------------------------------------

type KeyDown struct {
	simpleAction
	KeyCode      int
	AutoReleaseMs int // 0 means no auto-release
}

func NewKeyDown(keyCode, autoReleaseMs int) *KeyDown {
	return &KeyDown{simpleAction{newID(), "KeyDown"}, keyCode, autoReleaseMs}
}

func (a *KeyDown) Validate() error {
	if a.AutoReleaseMs < 0 {
		return fmt.Errorf("autoReleaseMs must be >= 0")
	}
	return nil
}
func (a *KeyDown) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *KeyDown) RequiresAsync() bool                { return false }

func (a *KeyDown) Execute(ctx *ExecContext, value *int32) error {
	if err := ctx.Sinks.Keyboard.KeyDown(a.KeyCode); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	key := HeldKeyName(a.KeyCode)
	ctx.State.MarkHeld(key)
	if a.AutoReleaseMs > 0 {
		code := a.KeyCode
		ctx.Scheduler.ScheduleRelease(time.Duration(a.AutoReleaseMs)*time.Millisecond, key, func() {
			if ctx.State.ReleaseHeld(key) {
				_ = ctx.Sinks.Keyboard.KeyUp(code)
			}
		})
	}
	return nil
}
func (a *KeyDown) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// --- KeyUp ----------------------------------------------------------------

type KeyUp struct {
	simpleAction
	KeyCode int
}

func NewKeyUp(keyCode int) *KeyUp {
	return &KeyUp{simpleAction{newID(), "KeyUp"}, keyCode}
}

func (a *KeyUp) Validate() error                        { return nil }
func (a *KeyUp) Categories() map[InputCategory]bool      { return categorySet(Trigger) }
func (a *KeyUp) RequiresAsync() bool                     { return false }
func (a *KeyUp) Execute(ctx *ExecContext, value *int32) error {
	key := HeldKeyName(a.KeyCode)
	ctx.State.ReleaseHeld(key) // idempotent whether or not it was held
	if err := ctx.Sinks.Keyboard.KeyUp(a.KeyCode); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *KeyUp) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// --- KeyToggle --------------------------------------------------------

type KeyToggle struct {
	simpleAction
	KeyCode int
}

func NewKeyToggle(keyCode int) *KeyToggle {
	return &KeyToggle{simpleAction{newID(), "KeyToggle"}, keyCode}
}

func (a *KeyToggle) Validate() error                   { return nil }
func (a *KeyToggle) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *KeyToggle) RequiresAsync() bool                { return false }
func (a *KeyToggle) Execute(ctx *ExecContext, value *int32) error {
	if err := ctx.Sinks.Keyboard.KeyToggle(a.KeyCode); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *KeyToggle) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// --- MouseClick / MouseScroll ------------------------------------------

type MouseClick struct {
	simpleAction
	Button string
}

func NewMouseClick(button string) *MouseClick {
	return &MouseClick{simpleAction{newID(), "MouseClick"}, button}
}
func (a *MouseClick) Validate() error                   { return nil }
func (a *MouseClick) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *MouseClick) RequiresAsync() bool                { return false }
func (a *MouseClick) Execute(ctx *ExecContext, value *int32) error {
	if err := ctx.Sinks.Mouse.Click(a.Button); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *MouseClick) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

type MouseScroll struct {
	simpleAction
	Direction string
	Amount    int
}

func NewMouseScroll(direction string, amount int) *MouseScroll {
	return &MouseScroll{simpleAction{newID(), "MouseScroll"}, direction, amount}
}
func (a *MouseScroll) Validate() error {
	if a.Amount <= 0 {
		return fmt.Errorf("amount must be > 0")
	}
	return nil
}
func (a *MouseScroll) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *MouseScroll) RequiresAsync() bool                { return false }
func (a *MouseScroll) Execute(ctx *ExecContext, value *int32) error {
	if err := ctx.Sinks.Mouse.Scroll(a.Direction, a.Amount); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *MouseScroll) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// --- Delay --------------------------------------------------------------

type Delay struct {
	simpleAction
	Ms int
}

func NewDelay(ms int) *Delay { return &Delay{simpleAction{newID(), "Delay"}, ms} }
func (a *Delay) Validate() error {
	if a.Ms < 0 {
		return fmt.Errorf("ms must be >= 0")
	}
	return nil
}
func (a *Delay) Categories() map[InputCategory]bool { return categorySet(Trigger, AbsoluteValue, RelativeValue) }
func (a *Delay) RequiresAsync() bool                { return true }
func (a *Delay) Execute(_ *ExecContext, _ *int32) error { return nil } // no-op on sync path
func (a *Delay) ExecuteAsync(ctx context.Context, _ *ExecContext, _ *int32) error {
	t := time.NewTimer(time.Duration(a.Ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- CommandExecution -----------------------------------------------------

type ShellKind int

const (
	ShellNone ShellKind = iota
	ShellDefault
)

type CommandExecution struct {
	simpleAction
	Command      string
	ShellKind    ShellKind
	HideConsole  bool
	WaitForExit  bool
}

func NewCommandExecution(command string, shellKind ShellKind, hideConsole, waitForExit bool) *CommandExecution {
	return &CommandExecution{simpleAction{newID(), "CommandExecution"}, command, shellKind, hideConsole, waitForExit}
}
func (a *CommandExecution) Validate() error {
	if a.Command == "" {
		return fmt.Errorf("command must not be empty")
	}
	return nil
}
func (a *CommandExecution) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *CommandExecution) RequiresAsync() bool                { return a.WaitForExit }
func (a *CommandExecution) Execute(ctx *ExecContext, _ *int32) error {
	_, err := ctx.Sinks.Command.Spawn(context.Background(), a.Command, int(a.ShellKind), a.HideConsole, false)
	if err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *CommandExecution) ExecuteAsync(ctx context.Context, ec *ExecContext, _ *int32) error {
	exitCode, err := ec.Sinks.Command.Spawn(ctx, a.Command, int(a.ShellKind), a.HideConsole, a.WaitForExit)
	if err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	if exitCode != 0 {
		ec.Log.Warnw("command exited non-zero", "command", a.Command, "exitCode", exitCode)
	}
	return nil
}

// --- GameControllerButton / Axis ---------------------------------------

type PressType int

const (
	Press PressType = iota
	Release
	PressRelease
)

type GameControllerButton struct {
	simpleAction
	ControllerIndex int
	ButtonName      string
	Type            PressType
}

func NewGameControllerButton(idx int, button string, t PressType) *GameControllerButton {
	return &GameControllerButton{simpleAction{newID(), "GameControllerButton"}, idx, button, t}
}
func (a *GameControllerButton) Validate() error {
	if a.ControllerIndex < 0 || a.ControllerIndex > 3 {
		return fmt.Errorf("controllerIndex must be 0..3")
	}
	return nil
}
func (a *GameControllerButton) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *GameControllerButton) RequiresAsync() bool                { return false }
func (a *GameControllerButton) pressOnce(ctx *ExecContext, pressed bool) error {
	if err := ctx.Sinks.Gamepad.SetButton(a.ControllerIndex, a.ButtonName, pressed); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	key := HeldButtonName(a.ControllerIndex, a.ButtonName)
	if pressed {
		ctx.State.MarkHeld(key)
	} else {
		ctx.State.ReleaseHeld(key)
	}
	return nil
}
func (a *GameControllerButton) Execute(ctx *ExecContext, _ *int32) error {
	switch a.Type {
	case Press:
		return a.pressOnce(ctx, true)
	case Release:
		return a.pressOnce(ctx, false)
	default: // PressRelease
		if err := a.pressOnce(ctx, true); err != nil {
			return err
		}
		return a.pressOnce(ctx, false)
	}
}
func (a *GameControllerButton) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

type AxisMode int

const (
	AxisFixedValue AxisMode = iota
	AxisMidiMapped
)

type GameControllerAxis struct {
	simpleAction
	ControllerIndex int
	AxisName        string
	Mode            AxisMode
	FixedValue      int32
	DurationMs      int
}

func NewGameControllerAxis(idx int, axis string, mode AxisMode, fixedValue int32, durationMs int) *GameControllerAxis {
	return &GameControllerAxis{simpleAction{newID(), "GameControllerAxis"}, idx, axis, mode, fixedValue, durationMs}
}
func (a *GameControllerAxis) Validate() error {
	if a.ControllerIndex < 0 || a.ControllerIndex > 3 {
		return fmt.Errorf("controllerIndex must be 0..3")
	}
	return nil
}
func (a *GameControllerAxis) Categories() map[InputCategory]bool {
	if a.Mode == AxisMidiMapped {
		return categorySet(AbsoluteValue)
	}
	return categorySet(Trigger)
}
func (a *GameControllerAxis) RequiresAsync() bool { return false }
func (a *GameControllerAxis) Execute(ctx *ExecContext, value *int32) error {
	var raw int32
	var duration *int
	if a.Mode == AxisFixedValue {
		raw = a.FixedValue
		d := a.DurationMs
		duration = &d
	} else {
		w := int32(0)
		if value != nil {
			w = *value
		}
		raw = w
	}
	if err := ctx.Sinks.Gamepad.SetAxis(a.ControllerIndex, a.AxisName, raw, duration); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *GameControllerAxis) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// StickAxisValue and TriggerAxisValue implement the §4.10 value mapping
// rules for MidiMapped axes.
func StickAxisValue(w int32) int32 {
	v := (w - 64) * 512
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return v
}

func TriggerAxisValue(w int32) int32 {
	v := w * 2
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// --- MidiOutput -----------------------------------------------------------

type MidiOutput struct {
	simpleAction
	OutputDeviceName string
	Commands         []MidiMessage
}

func NewMidiOutput(device string, commands []MidiMessage) *MidiOutput {
	return &MidiOutput{simpleAction{newID(), "MidiOutput"}, device, commands}
}
func (a *MidiOutput) Validate() error {
	if a.OutputDeviceName == "" {
		return fmt.Errorf("outputDeviceName must not be empty")
	}
	if len(a.Commands) == 0 {
		return fmt.Errorf("commands must not be empty")
	}
	return nil
}
func (a *MidiOutput) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *MidiOutput) RequiresAsync() bool                { return false }
func (a *MidiOutput) Execute(ctx *ExecContext, _ *int32) error {
	for _, msg := range a.Commands {
		if err := ctx.Sinks.MidiOut.Send(a.OutputDeviceName, msg); err != nil {
			return NewActionError(a.id, a.kind, err)
		}
	}
	return nil
}
func (a *MidiOutput) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}

// --- PlaySound --------------------------------------------------------

type PlaySound struct {
	simpleAction
	FilePath    string
	Volume      int
	AudioDevice string
}

func NewPlaySound(path string, volume int, device string) *PlaySound {
	return &PlaySound{simpleAction{newID(), "PlaySound"}, path, volume, device}
}
func (a *PlaySound) Validate() error {
	if a.FilePath == "" {
		return fmt.Errorf("filePath must not be empty")
	}
	if a.Volume < 0 || a.Volume > 100 {
		return fmt.Errorf("volume must be 0..100")
	}
	return nil
}
func (a *PlaySound) Categories() map[InputCategory]bool { return categorySet(Trigger) }
func (a *PlaySound) RequiresAsync() bool                { return false }
func (a *PlaySound) Execute(ctx *ExecContext, _ *int32) error {
	if err := ctx.Sinks.Audio.Play(a.FilePath, a.Volume, a.AudioDevice); err != nil {
		return NewActionError(a.id, a.kind, err)
	}
	return nil
}
func (a *PlaySound) ExecuteAsync(_ context.Context, ctx *ExecContext, value *int32) error {
	return a.Execute(ctx, value)
}
