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
	"sync"

	"go.uber.org/zap"
)

// DeviceConfig names which input devices a profile wants opened, and the
// mappings that apply once they are. DeviceName of "*" matches every
// currently-connected input device.
type DeviceConfig struct {
	DeviceName string
	Mappings   []*ActionMapping
}

// Profile is the complete, named set of device configurations and initial
// state values loaded as a unit (§3).
type Profile struct {
	Name          string
	Description   string
	InitialStates map[string]int32
	Devices       []DeviceConfig
}

// allMappings flattens every DeviceConfig's mappings, tagging each with
// its owning device selector so the Registry can be built in one pass.
func (p *Profile) allMappings() []*ActionMapping {
	var out []*ActionMapping
	for _, dc := range p.Devices {
		for _, m := range dc.Mappings {
			mm := *m
			mm.Input.DeviceName = dc.DeviceName
			out = append(out, &mm)
		}
	}
	return out
}

// Validate runs §4.4/§4.5 validation over every action and condition
// range in the profile, failing the whole load if any mapping is invalid.
func (p *Profile) Validate() error {
	for _, dc := range p.Devices {
		for _, m := range dc.Mappings {
			if m.Action == nil {
				return NewConfigError(fmt.Sprintf("devices[%s].mappings[%s]", dc.DeviceName, m.ID), fmt.Errorf("action is required"))
			}
			if err := m.Action.Validate(); err != nil {
				return NewConfigError(fmt.Sprintf("devices[%s].mappings[%s].action", dc.DeviceName, m.ID), err)
			}
			if !compatibleWithInput(m.Action, m.Input.InputType) {
				return NewConfigError(fmt.Sprintf("devices[%s].mappings[%s]", dc.DeviceName, m.ID), fmt.Errorf("action kind %s is not compatible with input type %s", m.Action.Kind(), m.Input.InputType))
			}
		}
	}
	return nil
}

// compatibleWithInput enforces §4.4's input-category compatibility table.
func compatibleWithInput(a Action, t InputType) bool {
	cats := a.Categories()
	switch t {
	case ControlChangeRel:
		return cats[RelativeValue]
	case ControlChangeAbs, PitchBend:
		return cats[AbsoluteValue] || cats[Trigger]
	default:
		return cats[Trigger] || cats[AbsoluteValue]
	}
}

// DeviceAttacher is the subset of Source the controller needs to open and
// close input devices when reconciling a profile's device selectors.
type DeviceAttacher interface {
	ListInputDevices() []DeviceIdentity
	OpenInput(id DeviceIdentity) (Handle, error)
	CloseInput(h Handle) error
}

// ProfileController implements C9: it applies a Profile to a Dispatcher,
// releasing the outgoing profile's held resources, publishing a fresh
// Registry, and reconciling device attachments.
type ProfileController struct {
	mu       sync.Mutex
	disp     *Dispatcher
	state    *StateManager
	source   DeviceAttacher
	log      *zap.SugaredLogger
	active   *Profile
	handles  map[string]Handle // device name -> open handle
}

// NewProfileController wires a controller to the dispatcher, state
// manager, and device source it will drive.
func NewProfileController(disp *Dispatcher, state *StateManager, source DeviceAttacher, log *zap.SugaredLogger) *ProfileController {
	return &ProfileController{disp: disp, state: state, source: source, log: log, handles: make(map[string]Handle)}
}

// Load applies a new profile following the sequence in §4.9: validate,
// build registry, release old holds, clear+reinit state, publish, then
// reconcile device attachments. On any validation failure the previous
// profile is left completely intact.
func (c *ProfileController) Load(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	mappings := p.allMappings()
	reg := NewRegistry(mappings)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.disp.releaseAllHeld()
	c.state.ClearAll()
	c.state.Init(p.InitialStates)
	c.disp.SetRegistry(reg)

	c.closeAllLocked()
	c.active = p
	c.reconcileLocked()

	return nil
}

// closeAllLocked closes every currently open device handle, used before
// re-attaching under the new profile's device selectors.
func (c *ProfileController) closeAllLocked() {
	for name, h := range c.handles {
		if err := c.source.CloseInput(h); err != nil {
			c.log.Warnw("failed closing device on profile swap", "device", name, "err", err)
		}
	}
	c.handles = make(map[string]Handle)
}

// reconcileLocked opens devices per the active profile's selectors: a
// literal name opens that device if connected, "*" opens every currently
// connected input device, unmentioned devices are left unopened.
func (c *ProfileController) reconcileLocked() {
	if c.active == nil {
		return
	}
	wantAny := false
	wantNames := make(map[string]bool)
	for _, dc := range c.active.Devices {
		if dc.DeviceName == anyDevice {
			wantAny = true
		} else {
			wantNames[dc.DeviceName] = true
		}
	}
	for _, id := range c.source.ListInputDevices() {
		if _, already := c.handles[id.Name]; already {
			continue
		}
		if wantAny || wantNames[id.Name] {
			h, err := c.source.OpenInput(id)
			if err != nil {
				c.log.Warnw("failed opening device", "device", id.Name, "err", err)
				continue
			}
			c.handles[id.Name] = h
		}
	}
}

// OnConnected reapplies the active profile's device-attachment rule to a
// newly visible device (§4.9 "Hot-plug").
func (c *ProfileController) OnConnected(id DeviceIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return
	}
	if _, already := c.handles[id.Name]; already {
		return
	}
	wantAny := false
	for _, dc := range c.active.Devices {
		if dc.DeviceName == anyDevice || dc.DeviceName == id.Name {
			wantAny = wantAny || dc.DeviceName == anyDevice
			if dc.DeviceName == id.Name || dc.DeviceName == anyDevice {
				h, err := c.source.OpenInput(id)
				if err != nil {
					c.log.Warnw("failed opening reconnected device", "device", id.Name, "err", err)
					return
				}
				c.handles[id.Name] = h
				return
			}
		}
	}
}

// OnDisconnected closes the handle for a device that went away, leaving
// its mapping in place so a future OnConnected can reopen it.
func (c *ProfileController) OnDisconnected(id DeviceIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handles[id.Name]; ok {
		_ = c.source.CloseInput(h)
		delete(c.handles, id.Name)
	}
}

// Active returns the currently loaded profile, or nil if none has been
// loaded yet.
func (c *ProfileController) Active() *Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
