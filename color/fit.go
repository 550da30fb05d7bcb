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

package color

import (
	"github.com/lucasb-eyer/go-colorful"
)

// NearestPaletteColor finds the closest match for c among palette, the set
// of colors a given pad/LED controller actually supports. Most such
// controllers expose a small fixed palette rather than true RGB, so a
// MidiOutput command's requested Color is reduced to the nearest palette
// entry before being sent. This is an expensive operation; callers that
// color many pads from the same palette should cache results.
func NearestPaletteColor(c Color, palette []Color) Color {
	var match Color
	var found bool
	dist := float64(0)
	r, g, b := c.RGB()
	c1 := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	for _, d := range palette {
		r, g, b = d.RGB()
		c2 := colorful.Color{
			R: float64(r) / 255.0,
			G: float64(g) / 255.0,
			B: float64(b) / 255.0,
		}
		// CIE94 is more accurate, but really really expensive.
		nd := c1.DistanceCIE76(c2)
		// NB: nd < dist is false if is NaN; CIE76 never returns NaN here.
		if !found || nd < dist {
			match = d
			dist = nd
			found = true
		}
	}
	return match
}
