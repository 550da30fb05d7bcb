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

// Package color provides the color model used by MidiOutput commands that
// target color-capable controllers (pad/LED grids such as Launchpad-style
// devices). Most such controllers only light a pad from a small fixed
// palette rather than true RGB, so a Color here is always reducible to the
// nearest palette entry a given device advertises, via NearestPaletteColor.
package color

import (
	"fmt"
	ic "image/color"
)

// Color is an RGB color, optionally tagged as one of a small set of named
// colors for convenience when authoring profiles by hand.
type Color uint32

const (
	// Default leaves a pad's color unchanged. It is the zero value.
	Default Color = 0

	// IsValid marks a Color as having been explicitly set, so the zero
	// value can still be distinguished from "black".
	IsValid Color = 1 << 31

	// IsRGB marks the lower 24 bits of a Color as a literal RGB triple
	// rather than one of the named constants below.
	IsRGB Color = 1 << 24
)

// Named colors. These cover the common case of authoring a profile by hand
// ("color": "red") without requiring an RGB triple; anything outside this
// set is specified as an RGB or hex value instead.
const (
	Black Color = IsValid + iota
	White
	Red
	Orange
	Yellow
	Green
	Cyan
	Blue
	Purple
	Pink
	Amber
)

var namedRGB = map[Color][3]int32{
	Black:  {0, 0, 0},
	White:  {255, 255, 255},
	Red:    {255, 0, 0},
	Orange: {255, 128, 0},
	Yellow: {255, 255, 0},
	Green:  {0, 255, 0},
	Cyan:   {0, 255, 255},
	Blue:   {0, 0, 255},
	Purple: {128, 0, 255},
	Pink:   {255, 0, 128},
	Amber:  {255, 191, 0},
}

var namesByColor = map[Color]string{
	Black:  "black",
	White:  "white",
	Red:    "red",
	Orange: "orange",
	Yellow: "yellow",
	Green:  "green",
	Cyan:   "cyan",
	Blue:   "blue",
	Purple: "purple",
	Pink:   "pink",
	Amber:  "amber",
}

var colorsByName map[string]Color

func init() {
	colorsByName = make(map[string]Color, len(namesByColor))
	for c, name := range namesByColor {
		colorsByName[name] = c
	}
}

// Valid reports whether c carries an explicit value, as opposed to Default.
func (c Color) Valid() bool {
	return c&IsValid != 0
}

// IsRGB reports whether c is a literal RGB triple rather than a named color.
func (c Color) IsRGB() bool {
	return c&IsRGB != 0
}

// RGB returns the red, green and blue components of c in the range [0, 255].
func (c Color) RGB() (r, g, b int32) {
	if c.IsRGB() {
		v := int32(c & 0xffffff)
		return (v >> 16) & 0xff, (v >> 8) & 0xff, v & 0xff
	}
	if rgb, ok := namedRGB[c]; ok {
		return rgb[0], rgb[1], rgb[2]
	}
	return 0, 0, 0
}

// Hex returns c packed as 0xRRGGBB.
func (c Color) Hex() int32 {
	r, g, b := c.RGB()
	return (r << 16) | (g << 8) | b
}

// Name returns the named-color identifier for c, or "" if c is an RGB
// value with no matching name.
func (c Color) Name() string {
	return namesByColor[c]
}

// String implements fmt.Stringer.
func (c Color) String() string {
	if !c.Valid() {
		return "default"
	}
	if name := c.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

// NewRGBColor constructs a Color from 8-bit red, green and blue components.
func NewRGBColor(r, g, b int32) Color {
	v := Color(((r & 0xff) << 16) | ((g & 0xff) << 8) | (b & 0xff))
	return v | IsRGB | IsValid
}

// NewHexColor constructs a Color from a packed 0xRRGGBB value.
func NewHexColor(v int32) Color {
	return NewRGBColor((v>>16)&0xff, (v>>8)&0xff, v&0xff)
}

// ByName looks up one of the named colors above by its lower-case name.
// The second return value is false if name does not match a known color.
func ByName(name string) (Color, bool) {
	c, ok := colorsByName[name]
	return c, ok
}

// FromImageColor converts an image/color.Color into a Color, e.g. to let a
// profile author reuse Go's standard image/color package for palette art.
func FromImageColor(imageColor ic.Color) Color {
	r, g, b, a := imageColor.RGBA()
	if a == 0 {
		return Default
	}
	return NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}
