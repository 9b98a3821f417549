// colors/range.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package colors

import (
	"strconv"

	"github.com/tpanel/tpanel/util"
)

type Direction int

const (
	DirLightDark Direction = iota
	DirDarkLight
	DirLightDarkLight
	DirDarkLightDark
)

func (d Direction) String() string {
	names := [...]string{"light-dark", "dark-light", "light-dark-light", "dark-light-dark"}
	if d < 0 || int(d) >= len(names) {
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
	return names[d]
}

// ColorRange returns count colours starting at base, each channel moving
// by bandwidth/count per step (bandwidth/(count/2) for the round-trip
// directions). Channels are clamped to [0,255] and alpha is preserved.
// If the step would be 1 or less, the result is just base.
func ColorRange(base Color, count, bandwidth int, dir Direction) []Color {
	if count <= 0 {
		return nil
	}

	roundTrip := dir == DirLightDarkLight || dir == DirDarkLightDark
	div := count
	if roundTrip {
		div = count / 2
	}
	if div == 0 || bandwidth/div <= 1 {
		return []Color{base}
	}
	step := bandwidth / div
	if dir == DirLightDark || dir == DirLightDarkLight {
		step = -step
	}

	mid := count / 2
	out := make([]Color, count)
	for i := range count {
		n := i
		if roundTrip && i >= mid {
			n = count - 1 - i
		}
		d := n * step
		out[i] = Color{
			R: util.ClampByte(int(base.R) + d),
			G: util.ClampByte(int(base.G) + d),
			B: util.ClampByte(int(base.B) + d),
			A: base.A,
		}
	}
	return out
}
