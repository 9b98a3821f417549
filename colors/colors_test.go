// colors/colors_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package colors

import (
	"errors"
	"testing"
)

func testPalette() *PaletteTable {
	return MakePaletteTable([]PaletteEntry{
		{Index: 0, Name: "Very Light Red", Color: 0xFF8080FF},
		{Index: 2, Name: "Red", Color: 0xFF0000FF},
		{Index: 88, Name: "Black", Color: 0x000000FF},
		{Index: 200, Name: "Panel Blue", Color: 0x1020F0FF},
	})
}

func TestAMXColorHex(t *testing.T) {
	r := NewResolver(testPalette(), nil)

	if c := r.AMXColor("#FF00807F"); c != (Color{R: 255, G: 0, B: 128, A: 127}) {
		t.Errorf("expected {255 0 128 127}, got %+v", c)
	}
	if c := r.AMXColor("#ffffff"); c != (Color{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected opaque white, got %+v", c)
	}
	if c := r.AMXColor("#12345"); c != (Color{}) {
		t.Errorf("expected zero color for short hex, got %+v", c)
	}
	if _, err := r.Parse("#12345"); !errors.Is(err, ErrMalformedColor) {
		t.Errorf("expected ErrMalformedColor, got %v", err)
	}
	if r.Failed() {
		t.Errorf("malformed input must not mark the resolver as failed")
	}
}

func TestAMXColorPalette(t *testing.T) {
	r := NewResolver(testPalette(), nil)

	for _, tc := range []struct {
		str    string
		expect Color
	}{
		{"2", Color{255, 0, 0, 255}},
		{"200", Color{0x10, 0x20, 0xF0, 0xff}},
		{"red", Color{255, 0, 0, 255}},
		{"Very Light Red", Color{0xff, 0x80, 0x80, 0xff}},
		{"FF000080", Color{255, 0, 0, 0x80}},
	} {
		if c := r.AMXColor(tc.str); c != tc.expect {
			t.Errorf("%q: expected %+v, got %+v", tc.str, tc.expect, c)
		}
	}

	if _, err := r.Parse("Mauve"); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("expected ErrUnknownColor, got %v", err)
	}
}

func TestAMXColorNoPalette(t *testing.T) {
	r := NewResolver(nil, nil)
	if c := r.AMXColor("Red"); c != Transparent {
		t.Errorf("expected transparent, got %+v", c)
	}
	if !r.Failed() {
		t.Errorf("expected resolver to be marked as failed")
	}

	// Hex colours don't need a palette.
	r = NewResolver(nil, nil)
	if c := r.AMXColor("#010203"); c != (Color{1, 2, 3, 255}) {
		t.Errorf("unexpected color %+v", c)
	}
	if r.Failed() {
		t.Errorf("hex colour marked resolver as failed")
	}
}

func TestIsValidAMXColor(t *testing.T) {
	r := NewResolver(testPalette(), nil)
	for _, tc := range []struct {
		str   string
		valid bool
	}{
		{"0", true},
		{"88", true},
		{"89", false},
		{"200", false},
		{"#A0B0C0", true},
		{"#A0B0C0D0", true},
		{"#A0B0C", false},
		{"#A0B0C0D", false},
		{"Black", true},
		{"Mauve", false},
		{"", false},
	} {
		if v := r.IsValidAMXColor(tc.str); v != tc.valid {
			t.Errorf("%q: expected %v, got %v", tc.str, tc.valid, v)
		}
	}
}

func TestColorRangeLightDark(t *testing.T) {
	base := Color{R: 200, G: 25, B: 100, A: 77}
	cr := ColorRange(base, 4, 40, DirLightDark)
	if len(cr) != 4 {
		t.Fatalf("expected 4 colors, got %d", len(cr))
	}
	for i := 1; i < len(cr); i++ {
		if cr[i].R > cr[i-1].R || cr[i].G > cr[i-1].G || cr[i].B > cr[i-1].B {
			t.Errorf("channel increased at %d: %v -> %v", i, cr[i-1], cr[i])
		}
		if cr[i].A != base.A {
			t.Errorf("alpha not preserved at %d", i)
		}
	}
	if cr[3].R != 170 || cr[3].G != 0 || cr[3].B != 70 {
		t.Errorf("unexpected last color %+v", cr[3])
	}
}

func TestColorRangeRoundTrip(t *testing.T) {
	base := Color{R: 100, G: 100, B: 100, A: 255}
	cr := ColorRange(base, 6, 60, DirDarkLightDark)
	expect := []uint8{100, 120, 140, 140, 120, 100}
	if len(cr) != len(expect) {
		t.Fatalf("expected %d colors, got %d", len(expect), len(cr))
	}
	for i, e := range expect {
		if cr[i].R != e {
			t.Errorf("%d: expected red %d, got %d", i, e, cr[i].R)
		}
	}

	cr = ColorRange(base, 4, 40, DirLightDarkLight)
	if cr[0] != base || cr[3] != base || cr[1].R != 80 {
		t.Errorf("unexpected light-dark-light range %v", cr)
	}
}

func TestColorRangeCollapse(t *testing.T) {
	base := Color{R: 1, G: 2, B: 3, A: 4}
	if cr := ColorRange(base, 10, 10, DirDarkLight); len(cr) != 1 || cr[0] != base {
		t.Errorf("expected single base color, got %v", cr)
	}
	if cr := ColorRange(base, 1, 100, DirLightDarkLight); len(cr) != 1 {
		t.Errorf("expected single base color, got %v", cr)
	}
	if cr := ColorRange(base, 0, 100, DirLightDark); cr != nil {
		t.Errorf("expected nil for zero count")
	}
}

func TestAlphaHelpers(t *testing.T) {
	c := Color{10, 20, 30, 100}
	if SetAlpha(c, 300).A != 255 || SetAlpha(c, -3).A != 0 {
		t.Errorf("SetAlpha does not clamp")
	}
	if SetAlphaThreshold(c, 200).A != 100 {
		t.Errorf("SetAlphaThreshold raised alpha")
	}
	if SetAlphaThreshold(c, 50).A != 50 {
		t.Errorf("SetAlphaThreshold did not lower alpha")
	}
	if AverageAlpha(255, 0) != 127 {
		t.Errorf("expected 127, got %d", AverageAlpha(255, 0))
	}
}

func TestBlendAndPacking(t *testing.T) {
	if Blend(Black, White) != White {
		t.Errorf("opaque source must replace destination")
	}
	if Blend(Black, Transparent) != Black {
		t.Errorf("transparent source must keep destination")
	}
	half := Blend(Black, Color{255, 255, 255, 128})
	if half.A != 255 || half.R < 126 || half.R > 129 {
		t.Errorf("unexpected half blend %+v", half)
	}

	c := Color{0x12, 0x34, 0x56, 0x78}
	if FromPacked(c.Packed()) != c || c.String() != "#12345678" {
		t.Errorf("packing mismatch: %s", c)
	}
}

func TestDirectionString(t *testing.T) {
	for d, expect := range map[Direction]string{
		DirLightDark:     "light-dark",
		DirDarkLightDark: "dark-light-dark",
		Direction(4):     "Direction(4)",
		Direction(-1):    "Direction(-1)",
	} {
		if s := d.String(); s != expect {
			t.Errorf("expected %q, got %q", expect, s)
		}
	}
}
