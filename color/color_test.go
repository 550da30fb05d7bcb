// Copyright 2025 The MIDIFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
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
	ic "image/color"
	"testing"
)

func TestColorValues(t *testing.T) {
	values := []struct {
		color Color
		hex   int32
	}{
		{Red, 0xFF0000},
		{Green, 0x00FF00},
		{Blue, 0x0000FF},
		{Black, 0x000000},
		{White, 0xFFFFFF},
		{Default, 0x000000},
	}
	for _, tc := range values {
		if tc.color.Hex() != tc.hex {
			t.Errorf("Color: %x != %x", tc.color.Hex(), tc.hex)
		}
	}
}

func TestNearestPaletteColor(t *testing.T) {
	pal := []Color{Red, Green, Blue, White, Black}

	for _, c := range pal {
		if NearestPaletteColor(c, pal) != c {
			t.Errorf("exact palette member %v did not match itself", c)
		}
	}

	// A near-white request should land on White, not a saturated color.
	near := NewRGBColor(250, 250, 245)
	if got := NearestPaletteColor(near, pal); got != White {
		t.Errorf("near-white fit %v, want White", got)
	}
}

func TestNearestPaletteColorWithDefaultInPalette(t *testing.T) {
	// Default is the zero Color; it must not disable the distance
	// comparison for palette entries that come after it.
	pal := []Color{Default, Red, Blue}
	if got := NearestPaletteColor(Red, pal); got != Red {
		t.Errorf("NearestPaletteColor(Red) = %v, want Red", got)
	}
	if got := NearestPaletteColor(Blue, pal); got != Blue {
		t.Errorf("NearestPaletteColor(Blue) = %v, want Blue", got)
	}
}

func TestColorNameLookup(t *testing.T) {
	values := []struct {
		name string
		want Color
		ok   bool
	}{
		{"black", Black, true},
		{"orange", Orange, true},
		{"door", Default, false},
	}
	for _, v := range values {
		c, ok := ByName(v.name)
		if ok != v.ok {
			t.Errorf("ByName(%q) ok=%v, want %v", v.name, ok, v.ok)
			continue
		}
		if ok && c != v.want {
			t.Errorf("ByName(%q) = %v, want %v", v.name, c, v.want)
		}
	}
}

func TestColorRGB(t *testing.T) {
	r, g, b := NewHexColor(0x112233).RGB()
	if r != 0x11 || g != 0x22 || b != 0x33 {
		t.Errorf("RGB wrong (%x, %x, %x)", r, g, b)
	}
}

func TestFromImageColor(t *testing.T) {
	red := ic.RGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}
	white := ic.Gray{Y: 0xFF}
	transparent := ic.RGBA{R: 0x01, G: 0x02, B: 0x03, A: 0x00}

	if hex := FromImageColor(red).Hex(); hex != 0xFF0000 {
		t.Errorf("%v is not 0xFF0000", hex)
	}
	if hex := FromImageColor(white).Hex(); hex != 0xFFFFFF {
		t.Errorf("%v is not 0xFFFFFF", hex)
	}
	if c := FromImageColor(transparent); c != Default {
		t.Errorf("transparent should be default")
	}
}

func TestColorString(t *testing.T) {
	if s := Default.String(); s != "default" {
		t.Errorf("zero color not default: %q", s)
	}
	if s := Red.String(); s != "red" {
		t.Errorf("wrong string for red: %q", s)
	}
	if s := NewHexColor(0x123456).String(); s != "#123456" {
		t.Errorf("wrong string for rgb color: %q", s)
	}
}
