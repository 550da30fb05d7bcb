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

package profileio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cozmopolit/midiflux"
	"github.com/cozmopolit/midiflux/color"
)

// actionEnvelope carries just the discriminator every action document
// has; the rest of the bytes are re-decoded against the variant's own
// strict struct once the type is known.
type actionEnvelope struct {
	Type string `json:"type"`
}

// midiMessageDoc mirrors midiflux.MidiMessage for MidiOutput's command
// list. Color is an alternative to Kind/Value for controllers addressed
// by RGB pad color rather than a plain velocity or CC value; it accepts
// either one of color.ByName's named colors or a "#RRGGBB" hex triple,
// and when present Number is the device's pad/LED index.
type midiMessageDoc struct {
	Kind    string `json:"kind"`
	Channel int    `json:"channel"`
	Number  int    `json:"number"`
	Value   int32  `json:"value"`
	SysEx   []byte `json:"sysEx"`
	Color   string `json:"color"`
}

func parseMessageColor(s string) (color.Color, error) {
	if s == "" {
		return color.Default, nil
	}
	if c, ok := color.ByName(s); ok {
		return c, nil
	}
	var hex string
	if _, err := fmt.Sscanf(s, "#%s", &hex); err == nil && len(hex) == 6 {
		var v int64
		if _, err := fmt.Sscanf(hex, "%06x", &v); err == nil {
			return color.NewHexColor(int32(v)), nil
		}
	}
	return color.Default, fmt.Errorf("unrecognized color %q", s)
}

func decodeActionBytes(raw json.RawMessage) (midiflux.Action, error) {
	var env actionEnvelope
	if err := strictUnmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding action envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("action missing required \"type\" field")
	}

	switch env.Type {
	case "KeyPressRelease":
		var p struct {
			KeyCode int `json:"keyCode"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewKeyPressRelease(p.KeyCode), nil

	case "KeyDown":
		var p struct {
			KeyCode       int `json:"keyCode"`
			AutoReleaseMs int `json:"autoReleaseMs"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewKeyDown(p.KeyCode, p.AutoReleaseMs), nil

	case "KeyUp":
		var p struct {
			KeyCode int `json:"keyCode"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewKeyUp(p.KeyCode), nil

	case "KeyToggle":
		var p struct {
			KeyCode int `json:"keyCode"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewKeyToggle(p.KeyCode), nil

	case "MouseClick":
		var p struct {
			Button string `json:"button"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewMouseClick(p.Button), nil

	case "MouseScroll":
		var p struct {
			Direction string `json:"direction"`
			Amount    int    `json:"amount"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewMouseScroll(p.Direction, p.Amount), nil

	case "Delay":
		var p struct {
			Ms int `json:"ms"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewDelay(p.Ms), nil

	case "CommandExecution":
		var p struct {
			Command     string `json:"command"`
			ShellKind   string `json:"shellKind"`
			HideConsole bool   `json:"hideConsole"`
			WaitForExit bool   `json:"waitForExit"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		kind, err := parseShellKind(p.ShellKind)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewCommandExecution(p.Command, kind, p.HideConsole, p.WaitForExit), nil

	case "GameControllerButton":
		var p struct {
			ControllerIndex int    `json:"controllerIndex"`
			ButtonName      string `json:"buttonName"`
			PressType       string `json:"pressType"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		pt, err := parsePressType(p.PressType)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewGameControllerButton(p.ControllerIndex, p.ButtonName, pt), nil

	case "GameControllerAxis":
		var p struct {
			ControllerIndex int    `json:"controllerIndex"`
			AxisName        string `json:"axisName"`
			Mode            string `json:"mode"`
			FixedValue      int32  `json:"fixedValue"`
			DurationMs      int    `json:"durationMs"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		mode, err := parseAxisMode(p.Mode)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewGameControllerAxis(p.ControllerIndex, p.AxisName, mode, p.FixedValue, p.DurationMs), nil

	case "MidiOutput":
		var p struct {
			OutputDeviceName string           `json:"outputDeviceName"`
			Commands         []midiMessageDoc `json:"commands"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		cmds := make([]midiflux.MidiMessage, 0, len(p.Commands))
		for _, c := range p.Commands {
			padColor, err := parseMessageColor(c.Color)
			if err != nil {
				return nil, wrapActionDecode(env.Type, err)
			}
			if padColor.Valid() {
				cmds = append(cmds, midiflux.MidiMessage{Number: c.Number, PadColor: padColor})
				continue
			}
			kind, err := parseInputType(c.Kind)
			if err != nil {
				return nil, wrapActionDecode(env.Type, err)
			}
			cmds = append(cmds, midiflux.MidiMessage{Kind: kind, Channel: c.Channel, Number: c.Number, Value: c.Value, SysEx: c.SysEx})
		}
		return midiflux.NewMidiOutput(p.OutputDeviceName, cmds), nil

	case "PlaySound":
		var p struct {
			FilePath    string `json:"filePath"`
			Volume      int    `json:"volume"`
			AudioDevice string `json:"audioDevice"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewPlaySound(p.FilePath, p.Volume, p.AudioDevice), nil

	case "Sequence":
		var p struct {
			SubActions  []json.RawMessage `json:"subActions"`
			ErrorPolicy string            `json:"errorPolicy"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		subs, err := decodeActionList(p.SubActions)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		policy, err := parseErrorPolicy(p.ErrorPolicy)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewSequence(subs, policy), nil

	case "Conditional":
		var p struct {
			Conditions []struct {
				MinValue    int32           `json:"minValue"`
				MaxValue    int32           `json:"maxValue"`
				Description string          `json:"description"`
				Action      json.RawMessage `json:"action"`
			} `json:"conditions"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		conds := make([]midiflux.ValueCondition, 0, len(p.Conditions))
		for _, c := range p.Conditions {
			child, err := decodeActionBytes(c.Action)
			if err != nil {
				return nil, wrapActionDecode(env.Type, err)
			}
			conds = append(conds, midiflux.ValueCondition{MinValue: c.MinValue, MaxValue: c.MaxValue, Description: c.Description, Action: child})
		}
		return midiflux.NewConditional(conds), nil

	case "StateConditional":
		var p struct {
			Conditions []struct {
				StateKey        string `json:"stateKey"`
				ComparisonType  string `json:"comparisonType"`
				ComparisonValue int32  `json:"comparisonValue"`
			} `json:"conditions"`
			Logic       string          `json:"logic"`
			TrueAction  json.RawMessage `json:"trueAction"`
			FalseAction json.RawMessage `json:"falseAction"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		conds := make([]midiflux.StateCondition, 0, len(p.Conditions))
		for _, c := range p.Conditions {
			ct, err := parseComparisonType(c.ComparisonType)
			if err != nil {
				return nil, wrapActionDecode(env.Type, err)
			}
			conds = append(conds, midiflux.StateCondition{StateKey: c.StateKey, ComparisonType: ct, ComparisonValue: c.ComparisonValue})
		}
		logic, err := parseStateLogic(p.Logic)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		trueAction, err := decodeActionBytes(p.TrueAction)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		var falseAction midiflux.Action
		if len(p.FalseAction) > 0 && string(p.FalseAction) != "null" {
			falseAction, err = decodeActionBytes(p.FalseAction)
			if err != nil {
				return nil, wrapActionDecode(env.Type, err)
			}
		}
		return midiflux.NewStateConditional(conds, logic, trueAction, falseAction), nil

	case "Alternating":
		var p struct {
			FirstAction    json.RawMessage `json:"firstAction"`
			SecondAction   json.RawMessage `json:"secondAction"`
			StartWithFirst bool            `json:"startWithFirst"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		first, err := decodeActionBytes(p.FirstAction)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		second, err := decodeActionBytes(p.SecondAction)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewAlternating(first, second, p.StartWithFirst), nil

	case "RelativeCC":
		var p struct {
			IncreaseAction json.RawMessage `json:"increaseAction"`
			DecreaseAction json.RawMessage `json:"decreaseAction"`
		}
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		inc, err := decodeActionBytes(p.IncreaseAction)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		dec, err := decodeActionBytes(p.DecreaseAction)
		if err != nil {
			return nil, wrapActionDecode(env.Type, err)
		}
		return midiflux.NewRelativeCC(inc, dec), nil

	default:
		return nil, fmt.Errorf("unknown action type %q", env.Type)
	}
}

func decodeActionList(raws []json.RawMessage) ([]midiflux.Action, error) {
	out := make([]midiflux.Action, 0, len(raws))
	for _, r := range raws {
		a, err := decodeActionBytes(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func wrapActionDecode(kind string, err error) error {
	return fmt.Errorf("action %q: %w", kind, err)
}

// strictUnmarshal decodes raw into v, rejecting any field v does not
// declare, per the config-layer's DisallowUnknownFields convention.
func strictUnmarshal(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseShellKind(s string) (midiflux.ShellKind, error) {
	switch s {
	case "", "none":
		return midiflux.ShellNone, nil
	case "default":
		return midiflux.ShellDefault, nil
	default:
		return 0, fmt.Errorf("unknown shellKind %q", s)
	}
}

func parsePressType(s string) (midiflux.PressType, error) {
	switch s {
	case "press":
		return midiflux.Press, nil
	case "release":
		return midiflux.Release, nil
	case "", "pressRelease":
		return midiflux.PressRelease, nil
	default:
		return 0, fmt.Errorf("unknown pressType %q", s)
	}
}

func parseAxisMode(s string) (midiflux.AxisMode, error) {
	switch s {
	case "", "fixedValue":
		return midiflux.AxisFixedValue, nil
	case "midiMapped":
		return midiflux.AxisMidiMapped, nil
	default:
		return 0, fmt.Errorf("unknown axis mode %q", s)
	}
}

func parseErrorPolicy(s string) (midiflux.ErrorPolicy, error) {
	switch s {
	case "", "continue":
		return midiflux.ContinueOnError, nil
	case "stop":
		return midiflux.StopOnError, nil
	default:
		return 0, fmt.Errorf("unknown errorPolicy %q", s)
	}
}

func parseComparisonType(s string) (midiflux.ComparisonType, error) {
	switch s {
	case "", "equals":
		return midiflux.Equals, nil
	case "greaterThan":
		return midiflux.GreaterThan, nil
	case "lessThan":
		return midiflux.LessThan, nil
	default:
		return 0, fmt.Errorf("unknown comparisonType %q", s)
	}
}

func parseStateLogic(s string) (midiflux.StateLogic, error) {
	switch s {
	case "", "single":
		return midiflux.Single, nil
	case "and":
		return midiflux.And, nil
	default:
		return 0, fmt.Errorf("unknown logic %q", s)
	}
}

func parseInputType(s string) (midiflux.InputType, error) {
	switch s {
	case "NoteOn":
		return midiflux.NoteOn, nil
	case "NoteOff":
		return midiflux.NoteOff, nil
	case "ControlChangeAbs":
		return midiflux.ControlChangeAbs, nil
	case "ControlChangeRel":
		return midiflux.ControlChangeRel, nil
	case "ProgramChange":
		return midiflux.ProgramChange, nil
	case "PitchBend":
		return midiflux.PitchBend, nil
	case "Aftertouch":
		return midiflux.Aftertouch, nil
	case "ChannelPressure":
		return midiflux.ChannelPressure, nil
	case "SysEx":
		return midiflux.SysEx, nil
	default:
		return 0, fmt.Errorf("unknown inputType %q", s)
	}
}
